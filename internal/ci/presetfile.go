// presetfile.go: Declarative preset definitions loaded from YAML or JSON
//
// A preset file lists collector steps in order:
//
//	name: nightly
//	steps:
//	  - kind: all
//	    overrides:
//	      platform: [GCC-14, "Clang-20 (x86-64)"]
//	      std: 23
//	  - kind: sample
//	    min_samples_per_value: 1
//	    filter: lacks-std-format
//	    overrides:
//	      freestanding: false
//
// JSON files use the same keys. Override values are checked against the full
// matrix when the file is loaded, so a bad file fails before any sampling.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ci

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agilira/go-errors"
	"github.com/agilira/jobmatrix"
	"go.yaml.in/yaml/v3"
)

// Step kinds
const (
	StepAll    = "all"
	StepSample = "sample"
)

// namedFilters are the filters a preset file may refer to.
var namedFilters = map[string]jobmatrix.Filter[Configuration]{
	"lacks-std-format": LacksStdFormat,
	"has-std-format":   func(c Configuration) bool { return c.Platform.FeatureSupport.StdFormat },
	"has-modules":      func(c Configuration) bool { return c.Platform.FeatureSupport.CXXModules },
}

// PresetFile is the decoded form of a preset file.
type PresetFile struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Steps       []PresetStep `yaml:"steps"`

	compiled []compiledStep
}

// PresetStep is one collector call of a preset file.
type PresetStep struct {
	Kind               string    `yaml:"kind"`
	MinSamplesPerValue int       `yaml:"min_samples_per_value"`
	MinSamples         int       `yaml:"min_samples"`
	Filter             string    `yaml:"filter"`
	Overrides          yaml.Node `yaml:"overrides"`
}

type compiledStep struct {
	kind string
	opts jobmatrix.SampleOptions[Configuration]
}

// LoadPresetFile reads and validates a preset file. The format follows the
// extension: .yaml, .yml or .json.
func LoadPresetFile(path string) (*PresetFile, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil, errors.New(ErrCodeInvalidPresetFile,
			fmt.Sprintf("unsupported preset file extension %q", filepath.Ext(path)))
	}

	// #nosec G304 -- preset path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeInvalidPresetFile, "failed to read preset file")
	}
	pf, err := ParsePresetFile(data)
	if err != nil {
		return nil, err
	}
	if pf.Name == "" {
		pf.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return pf, nil
}

// ParsePresetFile decodes and validates preset file content. JSON is accepted
// as a subset of YAML.
func ParsePresetFile(data []byte) (*PresetFile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var pf PresetFile
	if err := dec.Decode(&pf); err != nil {
		if err == io.EOF {
			return nil, errors.New(ErrCodeInvalidPresetFile, "preset file is empty")
		}
		return nil, errors.Wrap(err, ErrCodeInvalidPresetFile, "failed to decode preset file")
	}
	if len(pf.Steps) == 0 {
		return nil, errors.New(ErrCodeInvalidPresetFile, "preset file declares no steps")
	}

	full := FullMatrix()
	pf.compiled = make([]compiledStep, len(pf.Steps))
	for i, step := range pf.Steps {
		cs, err := step.compile(full)
		if err != nil {
			return nil, errors.Wrap(err, ErrCodeInvalidPresetFile, fmt.Sprintf("step %d", i+1))
		}
		pf.compiled[i] = cs
	}
	return &pf, nil
}

// Apply runs every step of the file against the collector.
func (pf *PresetFile) Apply(c *Collector, rng jobmatrix.Rand) error {
	for _, step := range pf.compiled {
		var err error
		switch step.kind {
		case StepAll:
			_, err = c.AllCombinations(step.opts.Filter, step.opts.Overrides...)
		case StepSample:
			_, err = c.SampleCombinations(rng, step.opts)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s PresetStep) compile(full *jobmatrix.Matrix) (compiledStep, error) {
	cs := compiledStep{kind: s.Kind}
	switch s.Kind {
	case StepAll:
		if s.MinSamplesPerValue != 0 || s.MinSamples != 0 {
			return cs, fmt.Errorf("%q steps take no sample minimums", StepAll)
		}
	case StepSample:
		if s.MinSamplesPerValue < 0 || s.MinSamples < 0 {
			return cs, fmt.Errorf("sample minimums must not be negative")
		}
	default:
		return cs, fmt.Errorf("unknown step kind %q (want %q or %q)", s.Kind, StepAll, StepSample)
	}

	cs.opts.MinSamplesPerValue = s.MinSamplesPerValue
	cs.opts.MinSamples = s.MinSamples
	if s.Filter != "" {
		f, ok := namedFilters[s.Filter]
		if !ok {
			return cs, fmt.Errorf("unknown filter %q", s.Filter)
		}
		cs.opts.Filter = f
	}

	overrides, err := decodeOverrides(&s.Overrides, full)
	if err != nil {
		return cs, err
	}
	cs.opts.Overrides = overrides
	return cs, nil
}

// decodeOverrides converts an overrides mapping in document order. Each value
// is a scalar or a sequence.
func decodeOverrides(node *yaml.Node, full *jobmatrix.Matrix) ([]Override, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("overrides must be a mapping")
	}

	out := make([]Override, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		values, err := decodeOptionValues(name, node.Content[i+1])
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("override for %q has no values", name)
		}
		for _, v := range values {
			if !full.Has(name, v) {
				return nil, fmt.Errorf("%v is not a candidate of %q", v, name)
			}
		}
		out = append(out, Override{Name: name, Values: values})
	}
	return out, nil
}

func decodeOptionValues(name string, node *yaml.Node) ([]any, error) {
	switch name {
	case OptPlatform:
		names, err := decodeList[string](node)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(names))
		for i, n := range names {
			p, err := LookupPlatform(n)
			if err != nil {
				return nil, err
			}
			out[i] = p
		}
		return out, nil
	case OptStd:
		return decodeAny[int](node)
	case OptStdFormat, OptImportStd, OptCXXModules, OptFreestanding:
		return decodeAny[bool](node)
	case OptContracts, OptBuildType:
		return decodeAny[string](node)
	default:
		return nil, fmt.Errorf("unknown option %q", name)
	}
}

func decodeList[V any](node *yaml.Node) ([]V, error) {
	if node.Kind == yaml.ScalarNode {
		var v V
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return []V{v}, nil
	}
	var vs []V
	if err := node.Decode(&vs); err != nil {
		return nil, err
	}
	return vs, nil
}

func decodeAny[V any](node *yaml.Node) ([]any, error) {
	vs, err := decodeList[V](node)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out, nil
}
