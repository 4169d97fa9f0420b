// generate.go: Seed, preset and output orchestration of one run
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ci

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/agilira/go-errors"
	"github.com/agilira/jobmatrix"
)

// Result is the outcome of a generation run.
type Result struct {
	Seed           uint64
	Preset         string
	Configurations []Configuration
}

// NewCollector returns a collector over the full CI matrix with the hard
// exclusion rules installed.
func NewCollector(opts ...jobmatrix.CollectorOption[Configuration]) *Collector {
	all := append([]jobmatrix.CollectorOption[Configuration]{
		jobmatrix.WithHardExcludes(HardExcludes),
	}, opts...)
	return jobmatrix.NewCollector[Configuration](FullMatrix(), NewConfiguration, all...)
}

// NewRand returns the deterministic random source for a seed.
func NewRand(seed uint64) *rand.Rand {
	// #nosec G404 -- reproducible sampling, not security sensitive
	return rand.New(rand.NewSource(int64(seed)))
}

// Generate runs the configured preset and writes the results. Progress and
// debug renderings go to out.
func Generate(cfg *Config, out io.Writer) (*Result, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	presetName := cfg.Preset
	var pf *PresetFile
	if cfg.PresetFile != "" {
		var err error
		if pf, err = LoadPresetFile(cfg.PresetFile); err != nil {
			return nil, err
		}
		presetName = pf.Name
	}

	seed := cfg.Seed
	if seed == 0 {
		// #nosec G404 -- the seed is printed, not secret
		seed = uint64(rand.Uint32())
	}
	fmt.Fprintf(out, "Random-seed for this matrix is %d\n", seed)
	rng := NewRand(seed)

	var audit *jobmatrix.AuditLogger
	if cfg.AuditFile != "" {
		var err error
		if audit, err = jobmatrix.NewAuditLogger(jobmatrix.DefaultAuditConfig(cfg.AuditFile)); err != nil {
			return nil, err
		}
		defer func() {
			if audit != nil {
				_ = audit.Close()
			}
		}()
	}

	c := NewCollector(
		jobmatrix.WithFailureThreshold[Configuration](cfg.FailureThreshold),
		jobmatrix.WithAuditLogger[Configuration](audit),
		jobmatrix.WithShortfallHandler(func(s jobmatrix.Shortfall[Configuration]) {
			fmt.Fprintln(out, s.String())
		}),
	)

	var err error
	if pf != nil {
		err = pf.Apply(c, rng)
	} else {
		err = ApplyPreset(c, rng, cfg.Preset)
	}
	if err != nil {
		return nil, err
	}
	if presetName != "" {
		audit.LogPreset(presetName, c.Len())
	}

	if c.Len() == 0 {
		return nil, errors.New(ErrCodeEmptyMatrix, "no combination has been produced")
	}
	data := c.Combinations()

	if !cfg.SuppressOutput {
		if cfg.OutputFile != "" {
			fmt.Fprintf(out, "Writing outputs to %s\n", cfg.OutputFile)
			if err := WriteGitHubOutput(cfg.OutputFile, data); err != nil {
				return nil, err
			}
		} else {
			fmt.Fprintln(out, "No output file received!")
		}
	}

	for _, mode := range cfg.Debug {
		if err := RenderDebug(out, mode, data); err != nil {
			return nil, err
		}
	}

	audit.LogGeneration(seed, presetName, len(data))
	err = closeAudit(audit)
	audit = nil
	if err != nil {
		return nil, err
	}
	return &Result{Seed: seed, Preset: presetName, Configurations: data}, nil
}

// closeAudit flushes and closes the audit trail of a successful run.
func closeAudit(al *jobmatrix.AuditLogger) error {
	if err := al.Close(); err != nil {
		return errors.Wrap(err, jobmatrix.ErrCodeAuditError, "failed to write the audit trail")
	}
	return nil
}
