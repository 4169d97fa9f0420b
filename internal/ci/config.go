// config.go: Run configuration for matrix generation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ci

import (
	"fmt"
	"os"
	"strings"

	flashflags "github.com/agilira/flash-flags"
	"github.com/agilira/go-errors"
)

// EnvGitHubOutput names the file the runner collects step outputs from.
const EnvGitHubOutput = "GITHUB_OUTPUT"

// EnvPrefix is the prefix of environment variables backing the flags.
const EnvPrefix = "JOBMATRIX"

// ErrHelpRequested is returned by ParseFlags when --help or -h is present.
var ErrHelpRequested = errors.New(ErrCodeInvalidConfig, "help requested")

// Config describes one generation run.
type Config struct {
	// Seed drives every random choice. Zero picks a fresh seed.
	Seed uint64

	// Preset names a built-in preset; PresetFile points to a preset file.
	// At most one of them may be set. With neither, nothing is generated
	// and the run fails on the empty matrix.
	Preset     string
	PresetFile string

	// Debug lists the renderers printed after generation, in order.
	Debug []string

	// SuppressOutput skips writing the GitHub output file.
	SuppressOutput bool

	// OutputFile receives "matrix=<json>". Usually taken from GITHUB_OUTPUT.
	OutputFile string

	// AuditFile enables the audit trail when set.
	AuditFile string

	// FailureThreshold overrides the consecutive failure limit of sampling
	// passes. Zero keeps the collector default.
	FailureThreshold int
}

// WithDefaults returns a copy with unset fields filled in.
func (c *Config) WithDefaults() *Config {
	config := *c
	if len(config.Debug) == 0 {
		config.Debug = []string{DebugCombinations}
	}
	return &config
}

// Validate rejects configurations that would fail mid-run, so unknown
// presets or debug modes surface before any sampling happens.
func (c *Config) Validate() error {
	if c.Preset != "" && c.PresetFile != "" {
		return errors.New(ErrCodeInvalidConfig, "preset and preset file are mutually exclusive")
	}
	if c.Preset != "" && !HasPreset(c.Preset) {
		return errors.New(ErrCodeUnknownPreset,
			fmt.Sprintf("unsupported preset %q (known: %s)", c.Preset, strings.Join(PresetNames(), ", ")))
	}
	for _, mode := range c.Debug {
		if _, ok := debugModes[mode]; !ok {
			return errors.New(ErrCodeUnknownDebugMode,
				fmt.Sprintf("unknown debug mode %q (known: %s)", mode, strings.Join(DebugModes(), ", ")))
		}
	}
	if c.FailureThreshold < 0 {
		return errors.New(ErrCodeInvalidConfig, "failure threshold must not be negative")
	}
	return nil
}

// NewFlagSet declares the generation flags on a flash-flags set.
func NewFlagSet(name string) *flashflags.FlagSet {
	fs := flashflags.New(name)
	fs.SetDescription("Generate a GitHub Actions job matrix")
	fs.Int("seed", 0, "Random seed (0 picks one and prints it)")
	fs.String("preset", "", "Built-in preset: "+strings.Join(PresetNames(), ", "))
	fs.String("preset-file", "", "YAML or JSON preset file")
	fs.String("debug", DebugCombinations, "Comma separated debug modes: "+strings.Join(DebugModes(), ", "))
	fs.Bool("suppress-output", false, "Do not write the GitHub output file")
	fs.String("audit-file", "", "Audit trail file (.jsonl for JSONL, SQLite otherwise)")
	fs.Int("failure-threshold", 0, "Consecutive rejected draws before a sampling pass gives up")
	fs.SetEnvPrefix(EnvPrefix)
	return fs
}

// ParseFlags builds a validated Config from command-line arguments (without
// the program name). The output file comes from GITHUB_OUTPUT.
func ParseFlags(name string, args []string) (*Config, *flashflags.FlagSet, error) {
	fs := NewFlagSet(name)
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return nil, fs, ErrHelpRequested
		}
	}
	flagArgs, extraDebug, err := splitDebugArgs(args)
	if err != nil {
		return nil, fs, err
	}
	if err := fs.Parse(flagArgs); err != nil {
		return nil, fs, errors.Wrap(err, ErrCodeInvalidConfig, "failed to parse command-line flags")
	}

	seed := fs.GetInt("seed")
	if seed < 0 {
		return nil, fs, errors.New(ErrCodeInvalidConfig, "seed must not be negative")
	}

	cfg := (&Config{
		Seed:             uint64(seed),
		Preset:           fs.GetString("preset"),
		PresetFile:       fs.GetString("preset-file"),
		Debug:            append(SplitDebugModes(fs.GetString("debug")), extraDebug...),
		SuppressOutput:   fs.GetBool("suppress-output"),
		OutputFile:       os.Getenv(EnvGitHubOutput),
		AuditFile:        fs.GetString("audit-file"),
		FailureThreshold: fs.GetInt("failure-threshold"),
	}).WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fs, err
	}
	return cfg, fs, nil
}

// SplitDebugModes splits a comma or space separated list of modes.
func SplitDebugModes(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// boolFlags take no value on the command line.
var boolFlags = map[string]bool{"suppress-output": true}

// splitDebugArgs separates the words following a --debug value, so that
// "--debug yaml counts" selects both modes. Any other positional argument is
// an error.
func splitDebugArgs(args []string) (flagArgs, extraDebug []string, err error) {
	inDebug := false
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			if !inDebug {
				return nil, nil, errors.New(ErrCodeInvalidConfig,
					fmt.Sprintf("unexpected argument %q", arg))
			}
			extraDebug = append(extraDebug, SplitDebugModes(arg)...)
			continue
		}
		if arg == "--" {
			if i+1 < len(args) {
				return nil, nil, errors.New(ErrCodeInvalidConfig,
					fmt.Sprintf("unexpected argument %q", args[i+1]))
			}
			break
		}

		flagArgs = append(flagArgs, arg)
		name, _, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		inDebug = name == "debug"
		if hasValue || boolFlags[name] {
			continue
		}
		if i+1 < len(args) {
			i++
			flagArgs = append(flagArgs, args[i])
		}
	}
	return flagArgs, extraDebug, nil
}
