// presets.go: Named sequences of collector calls tailored to a CI workflow
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ci

import (
	"fmt"
	"slices"

	"github.com/agilira/go-errors"
	"github.com/agilira/jobmatrix"
)

// Collector is the collector specialised to CI configurations.
type Collector = jobmatrix.Collector[Configuration]

// Override aliases jobmatrix.Override for preset definitions.
type Override = jobmatrix.Override

// PresetFunc issues the collector calls of one preset.
type PresetFunc func(c *Collector, rng jobmatrix.Rand) error

type preset struct {
	description string
	run         PresetFunc
}

var presets = map[string]preset{
	"all": {
		description: "every supported combination",
		run: func(c *Collector, _ jobmatrix.Rand) error {
			_, err := c.AllCombinations(nil)
			return err
		},
	},
	"conan": {
		description: "package-manager builds: Debug gsl-lite C++20 on every platform plus sampled coverage",
		run:         packagingPreset,
	},
	"cmake": {
		description: "plain CMake builds, same selection as conan",
		run:         packagingPreset,
	},
	"clang-tidy": {
		description: "static analysis on Clang-18",
		run: func(c *Collector, rng jobmatrix.Rand) error {
			return sample(c, rng, jobmatrix.SampleOptions[Configuration]{
				MinSamplesPerValue: 1,
				Overrides: []Override{
					jobmatrix.Set(OptPlatform, mustPlatform("Clang-18 (x86-64)")),
					jobmatrix.Set(OptFreestanding, false),
				},
			})
		},
	},
	"freestanding": {
		description: "freestanding C++23 builds on GCC-14 and Clang-20",
		run: func(c *Collector, _ jobmatrix.Rand) error {
			_, err := c.AllCombinations(nil,
				jobmatrix.Set(OptPlatform, mustPlatform("GCC-14"), mustPlatform("Clang-20 (x86-64)")),
				jobmatrix.Set(OptContracts, ContractsNone),
				jobmatrix.Set(OptFreestanding, true),
				jobmatrix.Set(OptStd, 23),
			)
			return err
		},
	},
}

// PresetNames lists the known presets in alphabetical order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// PresetDescription returns the one-line description of a preset.
func PresetDescription(name string) string {
	return presets[name].description
}

// HasPreset reports whether name is a known preset.
func HasPreset(name string) bool {
	_, ok := presets[name]
	return ok
}

// ApplyPreset runs a named preset. An empty name adds nothing.
//
// Every named preset first samples one import_std configuration on
// Clang-18: that feature needs a very specific setup which random sampling
// would almost never hit.
func ApplyPreset(c *Collector, rng jobmatrix.Rand, name string) error {
	if name == "" {
		return nil
	}
	p, ok := presets[name]
	if !ok {
		return errors.New(ErrCodeUnknownPreset, fmt.Sprintf("unsupported preset %q", name))
	}

	if err := sample(c, rng, jobmatrix.SampleOptions[Configuration]{
		MinSamples: 1,
		Overrides: []Override{
			jobmatrix.Set(OptStdFormat, true),
			jobmatrix.Set(OptImportStd, true),
			jobmatrix.Set(OptCXXModules, true),
			jobmatrix.Set(OptFreestanding, name == "freestanding"),
			jobmatrix.Set(OptStd, 23),
			jobmatrix.Set(OptContracts, ContractsNone),
			jobmatrix.Set(OptPlatform, mustPlatform("Clang-18 (x86-64)")),
		},
	}); err != nil {
		return err
	}
	return p.run(c, rng)
}

// packagingPreset backs both the conan and the cmake presets.
func packagingPreset(c *Collector, rng jobmatrix.Rand) error {
	base := []Override{
		jobmatrix.Set(OptContracts, ContractsGSLLite),
		jobmatrix.Set(OptBuildType, BuildDebug),
		jobmatrix.Set(OptStd, 20),
		jobmatrix.Set(OptFreestanding, false),
	}

	if _, err := c.AllCombinations(nil, append(base, jobmatrix.Set(OptStdFormat, true))...); err != nil {
		return err
	}
	// fmtlib for the platforms without std::format
	if _, err := c.AllCombinations(LacksStdFormat, append(base, jobmatrix.Set(OptStdFormat, false))...); err != nil {
		return err
	}

	if err := sample(c, rng, jobmatrix.SampleOptions[Configuration]{
		MinSamplesPerValue: 1,
		Overrides:          []Override{jobmatrix.Set(OptFreestanding, false)},
	}); err != nil {
		return err
	}
	// more coverage for the common import_std=false configurations
	return sample(c, rng, jobmatrix.SampleOptions[Configuration]{
		MinSamplesPerValue: 2,
		Overrides: []Override{
			jobmatrix.Set(OptImportStd, false),
			jobmatrix.Set(OptFreestanding, false),
		},
	})
}

// LacksStdFormat keeps configurations whose platform has no std::format.
func LacksStdFormat(c Configuration) bool {
	return !c.Platform.FeatureSupport.StdFormat
}

func sample(c *Collector, rng jobmatrix.Rand, opts jobmatrix.SampleOptions[Configuration]) error {
	_, err := c.SampleCombinations(rng, opts)
	return err
}
