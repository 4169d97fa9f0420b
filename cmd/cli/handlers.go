// Command handlers for the jobmatrix CLI
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/agilira/go-errors"
	"github.com/agilira/jobmatrix"
	"github.com/agilira/jobmatrix/internal/ci"
	"github.com/agilira/orpheus/pkg/orpheus"
)

// handleGenerate runs one generation with the command flags.
func (m *Manager) handleGenerate(ctx *orpheus.Context) error {
	seed := ctx.GetFlagInt("seed")
	if seed < 0 {
		return errors.New(ci.ErrCodeInvalidConfig, "seed must not be negative")
	}

	output := ctx.GetFlagString("output")
	if output == "" {
		output = os.Getenv(ci.EnvGitHubOutput)
	}
	suppress := ctx.GetFlagBool("suppress-output")
	if output != "" && !suppress {
		if err := checkOutputFile(output); err != nil {
			return errors.Wrap(err, ci.ErrCodeOutputError, "output file is not writable")
		}
	}

	debug := ci.SplitDebugModes(ctx.GetFlagString("debug"))
	// "--debug yaml counts" leaves "counts" as a positional argument
	for i := 0; ctx.GetArg(i) != ""; i++ {
		debug = append(debug, ci.SplitDebugModes(ctx.GetArg(i))...)
	}

	cfg := &ci.Config{
		Seed:             uint64(seed),
		Preset:           ctx.GetFlagString("preset"),
		PresetFile:       ctx.GetFlagString("preset-file"),
		Debug:            debug,
		SuppressOutput:   suppress,
		OutputFile:       output,
		AuditFile:        ctx.GetFlagString("audit-file"),
		FailureThreshold: ctx.GetFlagInt("failure-threshold"),
	}

	_, err := ci.Generate(cfg, m.out)
	return err
}

// handlePresetList prints the built-in presets.
func (m *Manager) handlePresetList(ctx *orpheus.Context) error {
	for _, name := range ci.PresetNames() {
		fmt.Fprintf(m.out, "%-14s %s\n", name, ci.PresetDescription(name))
	}
	return nil
}

// handlePresetValidate loads a preset file and reports its steps.
func (m *Manager) handlePresetValidate(ctx *orpheus.Context) error {
	path := ctx.GetArg(0)
	if path == "" {
		return errors.New(ci.ErrCodeInvalidPresetFile, "preset file path is required")
	}

	pf, err := ci.LoadPresetFile(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(m.out, "Preset file is valid: %s\n", path)
	fmt.Fprintf(m.out, "Name: %s\n", pf.Name)
	fmt.Fprintf(m.out, "Steps: %d\n", len(pf.Steps))
	return nil
}

// handlePlatforms prints the runner table.
func (m *Manager) handlePlatforms(ctx *orpheus.Context) error {
	platforms := ci.Platforms()

	if ctx.GetFlagBool("json") {
		entries := make([]ci.GitHubPlatform, len(platforms))
		for i, p := range platforms {
			entries[i] = p.ForGitHub()
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return errors.Wrap(err, ci.ErrCodeOutputError, "failed to encode platforms")
		}
		fmt.Fprintln(m.out, string(data))
		return nil
	}

	for _, p := range platforms {
		fmt.Fprintln(m.out, platformRow(p))
	}
	return nil
}

// handleAuditStats summarizes an existing audit trail.
func (m *Manager) handleAuditStats(ctx *orpheus.Context) error {
	path := ctx.GetArg(0)
	if path == "" {
		return errors.New(jobmatrix.ErrCodeAuditError, "audit file path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return errors.Wrap(err, jobmatrix.ErrCodeAuditError, "audit file not accessible")
	}

	logger, err := jobmatrix.NewAuditLogger(jobmatrix.DefaultAuditConfig(path))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	stats, err := logger.Stats()
	if err != nil {
		return errors.Wrap(err, jobmatrix.ErrCodeAuditError, "failed to read audit statistics")
	}

	fmt.Fprintf(m.out, "Audit file: %s\n", path)
	fmt.Fprintf(m.out, "Total events: %d\n", stats.TotalEvents)
	for _, level := range sortedKeys(stats.EventsByLevel) {
		fmt.Fprintf(m.out, "  level %-10s %d\n", level, stats.EventsByLevel[level])
	}
	for _, name := range sortedKeys(stats.EventsByName) {
		fmt.Fprintf(m.out, "  event %-20s %d\n", name, stats.EventsByName[name])
	}
	return nil
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
