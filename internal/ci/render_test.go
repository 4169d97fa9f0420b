// render_test.go: Tests for GitHub output and debug renderers
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ci

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func sampleData() []Configuration {
	return []Configuration{
		{
			Features:  Features{StdFormat: true},
			Platform:  mustPlatform("GCC-14"),
			Std:       20,
			Contracts: ContractsGSLLite,
			BuildType: BuildDebug,
		},
		importStdConfig(),
	}
}

func TestRenderDebug_Combinations(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderDebug(&buf, DebugCombinations, sampleData()))

	assert.Equal(t,
		"GCC-14             c++20  std_format=yes  cxx_modules=no   import_std=no   gsl-lite  Debug   \n"+
			"Clang-18 (x86-64)  c++23  std_format=yes  cxx_modules=yes  import_std=yes  none      Release \n",
		buf.String())
}

func TestRenderDebug_Counts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderDebug(&buf, DebugCounts, sampleData()))
	assert.Equal(t, "Total combinations 2\n", buf.String())
}

func TestRenderDebug_None(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderDebug(&buf, DebugNone, sampleData()))
	assert.Empty(t, buf.String())
}

func TestRenderDebug_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderDebug(&buf, DebugJSON, sampleData()))

	out := buf.String()
	assert.Contains(t, out, "\n    {", "four-space indentation")
	assert.Contains(t, out, "-o '&:cxx_modules=False'", "no HTML escaping")

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "std::format", entries[0]["formatting"])
}

func TestRenderDebug_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderDebug(&buf, DebugYAML, sampleData()))

	var entries []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 2)

	platform := entries[0]["platform"].(map[string]any)
	compiler := platform["compiler"].(map[string]any)
	assert.Equal(t, 14, compiler["version"])
	assert.Nil(t, platform["lib"])
	assert.Contains(t, entries[0], "conan-config")
}

func TestRenderDebug_UnknownMode(t *testing.T) {
	err := RenderDebug(&bytes.Buffer{}, "table", sampleData())
	assert.Equal(t, ErrCodeUnknownDebugMode, errorCode(err))
}

func TestWriteGitHubOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "github_output")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0600))

	require.NoError(t, WriteGitHubOutput(path, sampleData()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	require.True(t, strings.HasPrefix(text, "matrix=["), text)
	assert.NotContains(t, text, "\n")
	assert.NotContains(t, text, "stale")

	var entries []GitHubEntry
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(text, "matrix=")), &entries))
	assert.Len(t, entries, 2)
	assert.Equal(t, "GCC-14", entries[0].Platform.Name)
}

func TestWriteGitHubOutput_BadPath(t *testing.T) {
	err := WriteGitHubOutput(filepath.Join(t.TempDir(), "missing", "out"), sampleData())
	assert.Equal(t, ErrCodeOutputError, errorCode(err))
}
