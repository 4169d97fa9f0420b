// Package cli provides the command-line interface for job matrix generation.
//
// The CLI is built on the Orpheus framework with git-style subcommands:
//
//	jobmatrix generate --preset conan --seed 42 --debug counts
//	jobmatrix presets list
//	jobmatrix presets validate nightly.yaml
//	jobmatrix platforms [--json]
//	jobmatrix audit stats audit.db
//
// Architecture:
// - Manager: command tree and output routing
// - Handlers: one function per command
// - Utils: path checks and table formatting
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package cli

import (
	"io"
	"os"

	"github.com/agilira/jobmatrix/internal/ci"
	"github.com/agilira/orpheus/pkg/orpheus"
)

// Version of the jobmatrix CLI
const Version = "1.0.0"

// Manager routes command output. The Orpheus command tree keeps parsed flag
// values, so every Run builds a fresh one.
type Manager struct {
	out io.Writer
}

// NewManager creates a CLI manager printing to standard output.
func NewManager() *Manager {
	return &Manager{out: os.Stdout}
}

// WithOutput redirects command output, mostly for tests.
func (m *Manager) WithOutput(w io.Writer) *Manager {
	m.out = w
	return m
}

// Run executes the CLI with the provided arguments (without program name).
func (m *Manager) Run(args []string) error {
	return m.newApp().Run(args)
}

// newApp builds the command tree.
func (m *Manager) newApp() *orpheus.App {
	app := orpheus.New("jobmatrix").
		SetDescription("Reproducible CI job matrices with per-value coverage").
		SetVersion(Version)

	m.setupGenerateCommand(app)
	m.setupPresetCommands(app)
	m.setupPlatformCommand(app)
	m.setupAuditCommands(app)

	return app
}

// setupGenerateCommand configures 'generate', flag-compatible with the
// standalone generate-job-matrix binary.
func (m *Manager) setupGenerateCommand(app *orpheus.App) {
	generateCmd := orpheus.NewCommand("generate", "Generate the job matrix")
	generateCmd.SetHandler(m.handleGenerate)
	generateCmd.AddIntFlag("seed", "s", 0, "Random seed (0 picks one and prints it)")
	generateCmd.AddFlag("preset", "p", "", "Built-in preset")
	generateCmd.AddFlag("preset-file", "f", "", "YAML or JSON preset file")
	generateCmd.AddFlag("debug", "d", ci.DebugCombinations, "Comma separated debug modes (yaml|json|combinations|counts|none)")
	generateCmd.AddBoolFlag("suppress-output", "", false, "Do not write the GitHub output file")
	generateCmd.AddFlag("output", "o", "", "Output file (defaults to $GITHUB_OUTPUT)")
	generateCmd.AddFlag("audit-file", "a", "", "Audit trail file (.jsonl for JSONL, SQLite otherwise)")
	generateCmd.AddIntFlag("failure-threshold", "", 0, "Consecutive rejected draws before a sampling pass gives up")
	app.AddCommand(generateCmd)
}

// setupPresetCommands configures the 'presets' command group.
func (m *Manager) setupPresetCommands(app *orpheus.App) {
	presetsCmd := orpheus.NewCommand("presets", "Built-in presets and preset files")

	presetsCmd.Subcommand("list", "List built-in presets", m.handlePresetList)
	presetsCmd.Subcommand("validate", "Validate a preset file", m.handlePresetValidate)

	app.AddCommand(presetsCmd)
}

// setupPlatformCommand configures 'platforms'.
func (m *Manager) setupPlatformCommand(app *orpheus.App) {
	platformsCmd := orpheus.NewCommand("platforms", "Show the CI platform table")
	platformsCmd.SetHandler(m.handlePlatforms)
	platformsCmd.AddBoolFlag("json", "j", false, "Print the GitHub representation as JSON")
	app.AddCommand(platformsCmd)
}

// setupAuditCommands configures the 'audit' command group.
func (m *Manager) setupAuditCommands(app *orpheus.App) {
	auditCmd := orpheus.NewCommand("audit", "Audit trail inspection")
	auditCmd.Subcommand("stats", "Show audit trail statistics", m.handleAuditStats)
	app.AddCommand(auditCmd)
}
