// presetfile_test.go: Tests for YAML and JSON preset files
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ci

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nightlyYAML = `
name: nightly
description: GCC-14 and Clang-20 release builds plus sampled coverage
steps:
  - kind: all
    overrides:
      platform: [GCC-14, "Clang-20 (x86-64)"]
      std: 23
      contracts: none
      build_type: Release
      freestanding: false
  - kind: sample
    min_samples_per_value: 1
    min_samples: 5
    overrides:
      std: [20, 23]
      build_type: Debug
`

func writePresetFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestParsePresetFile_YAML(t *testing.T) {
	pf, err := ParsePresetFile([]byte(nightlyYAML))
	require.NoError(t, err)
	assert.Equal(t, "nightly", pf.Name)
	require.Len(t, pf.Steps, 2)
	assert.Equal(t, StepAll, pf.Steps[0].Kind)
	assert.Equal(t, 5, pf.Steps[1].MinSamples)

	c := quietCollector()
	require.NoError(t, pf.Apply(c, NewRand(3)))
	require.NotZero(t, c.Len())

	debug := 0
	for _, conf := range c.Combinations() {
		assert.False(t, HardExcludes(conf))
		if conf.BuildType == BuildRelease {
			assert.Contains(t, []string{"GCC-14", "Clang-20 (x86-64)"}, conf.Platform.Name)
			assert.Equal(t, 23, conf.Std)
			assert.False(t, conf.Freestanding)
		} else {
			debug++
		}
	}
	assert.GreaterOrEqual(t, debug, 5)
}

func TestLoadPresetFile_JSON(t *testing.T) {
	path := writePresetFile(t, "tidy.json", `{
		"steps": [
			{
				"kind": "sample",
				"min_samples_per_value": 1,
				"filter": "has-modules",
				"overrides": {"platform": "Clang-18 (x86-64)", "freestanding": false}
			}
		]
	}`)

	pf, err := LoadPresetFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tidy", pf.Name, "name defaults to the file name")

	c := quietCollector()
	require.NoError(t, pf.Apply(c, NewRand(11)))
	require.NotZero(t, c.Len())
	for _, conf := range c.Combinations() {
		assert.Equal(t, "Clang-18 (x86-64)", conf.Platform.Name)
		assert.False(t, conf.Freestanding)
	}
}

func TestPresetFile_Deterministic(t *testing.T) {
	run := func() []Configuration {
		pf, err := ParsePresetFile([]byte(nightlyYAML))
		require.NoError(t, err)
		c := quietCollector()
		require.NoError(t, pf.Apply(c, NewRand(99)))
		return c.Combinations()
	}
	assert.Equal(t, run(), run())
}

func TestParsePresetFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"no steps", "name: empty\nsteps: []\n"},
		{"unknown field", "steps:\n  - kind: all\n    repeat: 2\n"},
		{"unknown kind", "steps:\n  - kind: some\n"},
		{"minimums on all", "steps:\n  - kind: all\n    min_samples: 2\n"},
		{"negative minimum", "steps:\n  - kind: sample\n    min_samples_per_value: -1\n"},
		{"unknown filter", "steps:\n  - kind: all\n    filter: fast-only\n"},
		{"unknown option", "steps:\n  - kind: all\n    overrides:\n      arch: arm64\n"},
		{"unknown platform", "steps:\n  - kind: all\n    overrides:\n      platform: GCC-9\n"},
		{"value outside matrix", "steps:\n  - kind: all\n    overrides:\n      std: 17\n"},
		{"wrong value type", "steps:\n  - kind: all\n    overrides:\n      std: latest\n"},
		{"empty override", "steps:\n  - kind: all\n    overrides:\n      std: []\n"},
		{"overrides not a mapping", "steps:\n  - kind: all\n    overrides: [std]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePresetFile([]byte(tt.content))
			require.Error(t, err)
			assert.Equal(t, ErrCodeInvalidPresetFile, errorCode(err))
		})
	}
}

func TestLoadPresetFile_Errors(t *testing.T) {
	_, err := LoadPresetFile(writePresetFile(t, "nightly.toml", "steps = []"))
	assert.Equal(t, ErrCodeInvalidPresetFile, errorCode(err))

	_, err = LoadPresetFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, ErrCodeInvalidPresetFile, errorCode(err))
}
