// manager_test.go: Tests for the CLI manager and helpers
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agilira/jobmatrix/internal/ci"
)

// TestNewManager verifies proper initialization of CLI manager.
func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager() returned nil")
	}
	if manager.newApp() == nil {
		t.Fatal("Manager built no command tree")
	}
	if manager.out != os.Stdout {
		t.Error("Manager should print to stdout by default")
	}
}

// TestManagerWithOutput verifies the fluent output redirection.
func TestManagerWithOutput(t *testing.T) {
	var buf bytes.Buffer
	manager := NewManager().WithOutput(&buf)
	if manager.out != &buf {
		t.Fatal("WithOutput did not replace the writer")
	}

	if err := manager.Run([]string{"presets", "list"}); err != nil {
		t.Fatalf("presets list failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("Expected output in the redirected writer")
	}
}

// TestManagerRunIsReentrant verifies that flags of one run do not carry over
// to the next.
func TestManagerRunIsReentrant(t *testing.T) {
	t.Setenv(ci.EnvGitHubOutput, "")

	var buf bytes.Buffer
	manager := NewManager().WithOutput(&buf)
	outPath := filepath.Join(t.TempDir(), "github_output")

	if err := manager.Run([]string{"generate", "--preset", "freestanding", "--seed", "4",
		"--debug", "none", "--output", outPath}); err != nil {
		t.Fatalf("first generate failed: %v", err)
	}
	first, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}

	buf.Reset()
	if err := manager.Run([]string{"generate", "--preset-file", writeMSVCPresetFile(t), "--seed", "4",
		"--debug", "none"}); err != nil {
		t.Fatalf("second generate failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No output file received!") {
		t.Errorf("Output flag leaked into the second run:\n%s", buf.String())
	}
	second, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("Second run rewrote the first run's output file")
	}
}

func writeMSVCPresetFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "msvc.yaml")
	content := "steps:\n  - kind: all\n    overrides:\n      platform: MSVC 14.4\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPlatformRow(t *testing.T) {
	gcc, err := ci.LookupPlatform("GCC-12")
	if err != nil {
		t.Fatal(err)
	}
	row := platformRow(gcc)
	if !strings.HasPrefix(row, "GCC-12") || !strings.Contains(row, "default") {
		t.Errorf("Unexpected GCC row: %q", row)
	}
	if !strings.HasSuffix(row, "freestanding") {
		t.Errorf("GCC-12 supports freestanding only: %q", row)
	}

	apple, err := ci.LookupPlatform("Apple Clang 15.2")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(platformRow(apple), "-") {
		t.Errorf("Expected empty feature marker: %q", platformRow(apple))
	}
}

func TestCheckOutputFile(t *testing.T) {
	dir := t.TempDir()

	if err := checkOutputFile(filepath.Join(dir, "new")); err != nil {
		t.Errorf("New file in writable dir: %v", err)
	}

	readOnly := filepath.Join(dir, "ro")
	if err := os.WriteFile(readOnly, nil, 0400); err != nil {
		t.Fatal(err)
	}
	if err := checkOutputFile(readOnly); err == nil {
		t.Error("Expected read-only file to be rejected")
	}

	if err := checkOutputFile(filepath.Join(dir, "missing", "file")); err == nil {
		t.Error("Expected missing directory to be rejected")
	}

	if err := checkOutputFile(dir); err == nil || !strings.Contains(err.Error(), "is a directory") {
		t.Errorf("Expected directory output path to be rejected, got: %v", err)
	}

	notDir := filepath.Join(dir, "plain")
	if err := os.WriteFile(notDir, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if err := checkOutputDir(notDir); err == nil {
		t.Error("Expected regular file to be rejected as directory")
	}
}
