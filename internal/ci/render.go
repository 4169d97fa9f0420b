// render.go: GitHub output and debug renderers for a finished matrix
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ci

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/agilira/go-errors"
	"go.yaml.in/yaml/v3"
)

// Debug modes
const (
	DebugYAML         = "yaml"
	DebugJSON         = "json"
	DebugCombinations = "combinations"
	DebugCounts       = "counts"
	DebugNone         = "none"
)

var debugModes = map[string]func(w io.Writer, data []Configuration) error{
	DebugYAML:         renderYAML,
	DebugJSON:         renderJSON,
	DebugCombinations: renderCombinations,
	DebugCounts:       renderCounts,
	DebugNone:         func(io.Writer, []Configuration) error { return nil },
}

// DebugModes lists the accepted debug modes.
func DebugModes() []string {
	return []string{DebugYAML, DebugJSON, DebugCombinations, DebugCounts, DebugNone}
}

// ForGitHub converts sorted configurations to workflow matrix entries.
func ForGitHub(data []Configuration) []GitHubEntry {
	out := make([]GitHubEntry, len(data))
	for i, c := range data {
		out[i] = c.ForGitHub()
	}
	return out
}

// MarshalMatrix encodes the matrix JSON array on a single line. HTML
// escaping is off so conan options keep their literal "&".
func MarshalMatrix(data []Configuration) ([]byte, error) {
	return encodeJSON(ForGitHub(data), "")
}

// WriteGitHubOutput writes "matrix=<json>" to the GITHUB_OUTPUT file,
// truncating it.
func WriteGitHubOutput(path string, data []Configuration) error {
	payload, err := MarshalMatrix(data)
	if err != nil {
		return errors.Wrap(err, ErrCodeOutputError, "failed to encode matrix")
	}
	// #nosec G306 -- the runner reads this file after the step
	if err := os.WriteFile(path, append([]byte("matrix="), payload...), 0644); err != nil {
		return errors.Wrap(err, ErrCodeOutputError, "failed to write GitHub output")
	}
	return nil
}

// RenderDebug prints the matrix in the given debug mode.
func RenderDebug(w io.Writer, mode string, data []Configuration) error {
	render, ok := debugModes[mode]
	if !ok {
		return errors.New(ErrCodeUnknownDebugMode, fmt.Sprintf("unknown debug mode %q", mode))
	}
	return render(w, data)
}

func encodeJSON(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// renderYAML round-trips through JSON so keys come out sorted and versions
// keep their numeric form.
func renderYAML(w io.Writer, data []Configuration) error {
	raw, err := MarshalMatrix(data)
	if err != nil {
		return err
	}
	var generic []map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func renderJSON(w io.Writer, data []Configuration) error {
	out, err := encodeJSON(ForGitHub(data), "    ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func renderCombinations(w io.Writer, data []Configuration) error {
	for _, c := range data {
		if _, err := fmt.Fprintf(w, "%-17s  c++%2d  std_format=%-3s  cxx_modules=%-3s  import_std=%-3s  %-8s  %-8s\n",
			c.Platform, c.Std, yesNo(c.StdFormat), yesNo(c.CXXModules), yesNo(c.ImportStd),
			c.Contracts, c.BuildType); err != nil {
			return err
		}
	}
	return nil
}

func renderCounts(w io.Writer, data []Configuration) error {
	_, err := fmt.Fprintf(w, "Total combinations %d\n", len(data))
	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no "
}
