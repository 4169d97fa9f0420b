// configuration.go: The CI job record and its option space
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ci

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/agilira/jobmatrix"
)

// Error codes for the CI domain
const (
	ErrCodeUnsupportedPlatform = "JOBMATRIX_UNSUPPORTED_PLATFORM"
	ErrCodeUnknownPreset       = "JOBMATRIX_UNKNOWN_PRESET"
	ErrCodeUnknownDebugMode    = "JOBMATRIX_UNKNOWN_DEBUG_MODE"
	ErrCodeInvalidPresetFile   = "JOBMATRIX_INVALID_PRESET_FILE"
	ErrCodeInvalidConfig       = "JOBMATRIX_INVALID_CONFIG"
	ErrCodeEmptyMatrix         = "JOBMATRIX_EMPTY_MATRIX"
	ErrCodeOutputError         = "JOBMATRIX_OUTPUT_ERROR"
)

// Option names of the CI matrix
const (
	OptPlatform     = "platform"
	OptStd          = "std"
	OptStdFormat    = "std_format"
	OptImportStd    = "import_std"
	OptCXXModules   = "cxx_modules"
	OptFreestanding = "freestanding"
	OptContracts    = "contracts"
	OptBuildType    = "build_type"
)

// Contract-checking modes
const (
	ContractsNone    = "none"
	ContractsGSLLite = "gsl-lite"
	ContractsMSGSL   = "ms-gsl"
)

// Build types
const (
	BuildRelease = "Release"
	BuildDebug   = "Debug"
)

// Configuration is one CI job: a platform plus the enabled features,
// language standard, contract mode and build type.
type Configuration struct {
	Features
	Platform  Platform
	Std       int
	Contracts string
	BuildType string
}

// Lookup exposes the configuration as an option-name to value mapping.
func (c Configuration) Lookup(option string) (any, bool) {
	switch option {
	case OptPlatform:
		return c.Platform, true
	case OptStd:
		return c.Std, true
	case OptStdFormat:
		return c.StdFormat, true
	case OptImportStd:
		return c.ImportStd, true
	case OptCXXModules:
		return c.CXXModules, true
	case OptFreestanding:
		return c.Freestanding, true
	case OptContracts:
		return c.Contracts, true
	case OptBuildType:
		return c.BuildType, true
	default:
		return nil, false
	}
}

// Compare orders configurations by features first, then platform, standard,
// contracts and build type.
func (c Configuration) Compare(o Configuration) int {
	return cmp.Or(
		c.Features.Compare(o.Features),
		c.Platform.Compare(o.Platform),
		cmp.Compare(c.Std, o.Std),
		cmp.Compare(c.Contracts, o.Contracts),
		cmp.Compare(c.BuildType, o.BuildType),
	)
}

// IsSupported reports whether the platform supports every enabled feature and
// the import_std prerequisites hold.
func (c Configuration) IsSupported() bool {
	s := c.Platform.FeatureSupport
	if (c.CXXModules && !s.CXXModules) ||
		(c.StdFormat && !s.StdFormat) ||
		(c.ImportStd && !s.ImportStd) ||
		(c.Freestanding && !s.Freestanding) {
		return false
	}
	if c.ImportStd {
		if c.Std < 23 || !c.CXXModules || !c.StdFormat || c.Contracts != ContractsNone {
			return false
		}
	}
	return true
}

// HardExcludes marks configurations that must never be scheduled.
func HardExcludes(c Configuration) bool {
	if !c.IsSupported() {
		return true
	}
	// Clang-18 Debug with -ffreestanding fails CMakeTestCXXCompiler
	return c.Freestanding && strings.HasPrefix(c.Platform.Name, "Clang-18") && c.BuildType == BuildDebug
}

// NewConfiguration is the record factory for the CI matrix.
func NewConfiguration(a jobmatrix.Assignment) (Configuration, error) {
	var (
		c   Configuration
		err error
	)
	if c.Platform, err = jobmatrix.Field[Platform](a, OptPlatform); err != nil {
		return c, err
	}
	if c.Std, err = jobmatrix.Field[int](a, OptStd); err != nil {
		return c, err
	}
	if c.StdFormat, err = jobmatrix.Field[bool](a, OptStdFormat); err != nil {
		return c, err
	}
	if c.ImportStd, err = jobmatrix.Field[bool](a, OptImportStd); err != nil {
		return c, err
	}
	if c.CXXModules, err = jobmatrix.Field[bool](a, OptCXXModules); err != nil {
		return c, err
	}
	if c.Freestanding, err = jobmatrix.Field[bool](a, OptFreestanding); err != nil {
		return c, err
	}
	if c.Contracts, err = jobmatrix.Field[string](a, OptContracts); err != nil {
		return c, err
	}
	if c.BuildType, err = jobmatrix.Field[string](a, OptBuildType); err != nil {
		return c, err
	}
	return c, nil
}

// FullMatrix returns the complete CI option space over the default platforms.
func FullMatrix() *jobmatrix.Matrix {
	platforms := make([]any, len(defaultPlatforms))
	for i, p := range defaultPlatforms {
		platforms[i] = p
	}
	return jobmatrix.MustMatrix(
		jobmatrix.Option{Name: OptPlatform, Values: platforms},
		jobmatrix.Option{Name: OptStd, Values: []any{20, 23}},
		jobmatrix.Option{Name: OptStdFormat, Values: []any{false, true}},
		jobmatrix.Option{Name: OptImportStd, Values: []any{false, true}},
		jobmatrix.Option{Name: OptCXXModules, Values: []any{false, true}},
		jobmatrix.Option{Name: OptFreestanding, Values: []any{false, true}},
		jobmatrix.Option{Name: OptContracts, Values: []any{ContractsNone, ContractsGSLLite, ContractsMSGSL}},
		jobmatrix.Option{Name: OptBuildType, Values: []any{BuildRelease, BuildDebug}},
	)
}

// GitHubEntry is one element of the matrix JSON array consumed by workflows.
type GitHubEntry struct {
	Platform    GitHubPlatform `json:"platform" yaml:"platform"`
	Std         int            `json:"std" yaml:"std"`
	Contracts   string         `json:"contracts" yaml:"contracts"`
	BuildType   string         `json:"build_type" yaml:"build_type"`
	Formatting  string         `json:"formatting" yaml:"formatting"`
	ConanConfig string         `json:"conan-config" yaml:"conan-config"`
}

// ForGitHub flattens the configuration for the workflow matrix. Features are
// passed to Conan as "-o '&:name=Value'" options.
func (c Configuration) ForGitHub() GitHubEntry {
	formatting := "fmtlib"
	if c.StdFormat {
		formatting = "std::format"
	}

	options := []struct {
		name  string
		value string
	}{
		{OptCXXModules, pyBool(c.CXXModules)},
		{OptStdFormat, pyBool(c.StdFormat)},
		{OptImportStd, pyBool(c.ImportStd)},
		{OptFreestanding, pyBool(c.Freestanding)},
		{OptContracts, c.Contracts},
	}
	parts := make([]string, len(options))
	for i, o := range options {
		parts[i] = fmt.Sprintf("-o '&:%s=%s'", o.name, o.value)
	}

	return GitHubEntry{
		Platform:    c.Platform.ForGitHub(),
		Std:         c.Std,
		Contracts:   c.Contracts,
		BuildType:   c.BuildType,
		Formatting:  formatting,
		ConanConfig: strings.Join(parts, " "),
	}
}

// pyBool spells booleans the way Conan option values expect them.
func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
