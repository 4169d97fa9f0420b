// platform.go: Compilers, feature support and the CI platform table
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ci

import (
	"cmp"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/agilira/go-errors"
)

// CompilerType identifies a compiler family
type CompilerType string

const (
	CompilerGCC        CompilerType = "GCC"
	CompilerClang      CompilerType = "CLANG"
	CompilerAppleClang CompilerType = "APPLE_CLANG"
	CompilerMSVC       CompilerType = "MSVC"
)

// Architecture of a Clang runner
type Architecture string

const (
	ArchX86_64 Architecture = "x86-64"
	ArchARM64  Architecture = "arm64"
)

// Version is a compiler version. Purely numeric versions are emitted as JSON
// and YAML numbers, the rest as strings.
type Version string

func (v Version) number() (int, bool) {
	n, err := strconv.Atoi(string(v))
	return n, err == nil
}

// Compare orders versions component by component, numerically where both
// components are numbers, so "20" sorts before "194" and "15.2" before "16.1".
func (v Version) Compare(o Version) int {
	a, b := strings.Split(string(v), "."), strings.Split(string(o), ".")
	for i := 0; i < len(a) && i < len(b); i++ {
		x, errX := strconv.Atoi(a[i])
		y, errY := strconv.Atoi(b[i])
		var c int
		if errX == nil && errY == nil {
			c = cmp.Compare(x, y)
		} else {
			c = cmp.Compare(a[i], b[i])
		}
		if c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// MarshalJSON implements json.Marshaler
func (v Version) MarshalJSON() ([]byte, error) {
	if n, ok := v.number(); ok {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(string(v))
}

// UnmarshalJSON accepts both the numeric and the string form.
func (v *Version) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Version(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = Version(n.String())
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (v Version) MarshalYAML() (interface{}, error) {
	if n, ok := v.number(); ok {
		return n, nil
	}
	return string(v), nil
}

// Compiler describes the toolchain of a platform
type Compiler struct {
	Type    CompilerType `json:"type" yaml:"type"`
	Version Version      `json:"version" yaml:"version"`
	CC      string       `json:"cc" yaml:"cc"`
	CXX     string       `json:"cxx" yaml:"cxx"`
}

// Compare orders compilers field by field.
func (c Compiler) Compare(o Compiler) int {
	return cmp.Or(
		cmp.Compare(c.Type, o.Type),
		c.Version.Compare(o.Version),
		cmp.Compare(c.CC, o.CC),
		cmp.Compare(c.CXX, o.CXX),
	)
}

// Features is the set of optional library features. On a Platform it states
// what the toolchain supports; on a Configuration what the job enables.
type Features struct {
	CXXModules   bool
	StdFormat    bool
	ImportStd    bool
	Freestanding bool
}

// Compare orders feature sets with false before true, field by field.
func (f Features) Compare(o Features) int {
	return cmp.Or(
		compareBool(f.CXXModules, o.CXXModules),
		compareBool(f.StdFormat, o.StdFormat),
		compareBool(f.ImportStd, o.ImportStd),
		compareBool(f.Freestanding, o.Freestanding),
	)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// Platform is a CI runner plus its compiler.
type Platform struct {
	Name           string
	OS             string
	Compiler       Compiler
	Lib            string // "libc++", "libstdc++" or empty for the default
	FeatureSupport Features
}

func (p Platform) String() string { return p.Name }

// Compare orders platforms field by field.
func (p Platform) Compare(o Platform) int {
	return cmp.Or(
		cmp.Compare(p.Name, o.Name),
		cmp.Compare(p.OS, o.OS),
		p.Compiler.Compare(o.Compiler),
		cmp.Compare(p.Lib, o.Lib),
		p.FeatureSupport.Compare(o.FeatureSupport),
	)
}

// GitHubPlatform is the platform as seen by workflow expressions. Feature
// support is an input to matrix generation only and is left out.
type GitHubPlatform struct {
	Name     string   `json:"name" yaml:"name"`
	OS       string   `json:"os" yaml:"os"`
	Compiler Compiler `json:"compiler" yaml:"compiler"`
	Lib      *string  `json:"lib" yaml:"lib"`
}

// ForGitHub converts the platform for serialization.
func (p Platform) ForGitHub() GitHubPlatform {
	out := GitHubPlatform{Name: p.Name, OS: p.OS, Compiler: p.Compiler}
	if p.Lib != "" {
		lib := p.Lib
		out.Lib = &lib
	}
	return out
}

// GCCPlatform builds an Ubuntu GCC platform.
func GCCPlatform(version int) Platform {
	return Platform{
		Name: fmt.Sprintf("GCC-%d", version),
		OS:   "ubuntu-24.04",
		Compiler: Compiler{
			Type:    CompilerGCC,
			Version: Version(strconv.Itoa(version)),
			CC:      fmt.Sprintf("gcc-%d", version),
			CXX:     fmt.Sprintf("g++-%d", version),
		},
		FeatureSupport: Features{
			StdFormat:    version >= 13,
			Freestanding: true,
		},
	}
}

// ClangPlatform builds a libc++ Clang platform on Ubuntu (x86-64) or
// macOS with Homebrew LLVM (arm64).
func ClangPlatform(version int, arch Architecture) (Platform, error) {
	p := Platform{
		Name: fmt.Sprintf("Clang-%d (%s)", version, arch),
		Compiler: Compiler{
			Type:    CompilerClang,
			Version: Version(strconv.Itoa(version)),
		},
		Lib: "libc++",
		FeatureSupport: Features{
			CXXModules:   version >= 17,
			StdFormat:    version >= 17,
			ImportStd:    version >= 18,
			Freestanding: true,
		},
	}

	switch arch {
	case ArchX86_64:
		p.OS = "ubuntu-24.04"
		if version < 17 {
			p.OS = "ubuntu-22.04"
		}
		p.Compiler.CC = fmt.Sprintf("clang-%d", version)
		p.Compiler.CXX = fmt.Sprintf("clang++-%d", version)
	case ArchARM64:
		p.OS = "macos-14"
		prefix := fmt.Sprintf("/opt/homebrew/opt/llvm@%d/bin", version)
		p.Compiler.CC = prefix + "/clang"
		p.Compiler.CXX = prefix + "/clang++"
	default:
		return Platform{}, errors.New(ErrCodeUnsupportedPlatform,
			fmt.Sprintf("unsupported architecture %q for Clang", arch))
	}
	return p, nil
}

// AppleClangPlatform builds an Xcode platform. std::format is available from
// Xcode 16.1 on, so support is stated explicitly.
func AppleClangPlatform(os, version string, stdFormat bool) Platform {
	return Platform{
		Name: "Apple Clang " + version,
		OS:   os,
		Compiler: Compiler{
			Type:    CompilerAppleClang,
			Version: Version(version),
			CC:      "clang",
			CXX:     "clang++",
		},
		FeatureSupport: Features{StdFormat: stdFormat},
	}
}

// MSVCPlatform builds a Windows MSVC platform.
func MSVCPlatform(release string, version int) Platform {
	return Platform{
		Name: "MSVC " + release,
		OS:   "windows-2022",
		Compiler: Compiler{
			Type:    CompilerMSVC,
			Version: Version(strconv.Itoa(version)),
		},
		FeatureSupport: Features{StdFormat: true},
	}
}

func mustClang(version int, arch Architecture) Platform {
	p, err := ClangPlatform(version, arch)
	if err != nil {
		panic(err)
	}
	return p
}

// defaultPlatforms is the runner table in declaration order.
var defaultPlatforms = buildDefaultPlatforms()

func buildDefaultPlatforms() []Platform {
	var out []Platform
	for _, v := range []int{12, 13, 14} {
		out = append(out, GCCPlatform(v))
	}
	for _, v := range []int{16, 17, 18, 20} {
		for _, arch := range []Architecture{ArchX86_64, ArchARM64} {
			// arm64 runners are expensive; only one version
			if arch == ArchARM64 && v != 18 {
				continue
			}
			out = append(out, mustClang(v, arch))
		}
	}
	out = append(out,
		AppleClangPlatform("macos-13", "15.2", false),
		AppleClangPlatform("macos-14", "16.1", true),
		MSVCPlatform("14.4", 194),
	)
	return out
}

// Platforms returns the default runner table.
func Platforms() []Platform {
	return append([]Platform(nil), defaultPlatforms...)
}

// LookupPlatform finds a platform of the default table by name.
func LookupPlatform(name string) (Platform, error) {
	for _, p := range defaultPlatforms {
		if p.Name == name {
			return p, nil
		}
	}
	return Platform{}, errors.New(ErrCodeUnsupportedPlatform, fmt.Sprintf("unknown platform %q", name))
}

func mustPlatform(name string) Platform {
	p, err := LookupPlatform(name)
	if err != nil {
		panic(err)
	}
	return p
}
