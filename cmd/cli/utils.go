// Utility functions for the jobmatrix CLI
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agilira/jobmatrix/internal/ci"
)

// platformRow formats one line of the platform table.
func platformRow(p ci.Platform) string {
	var features []string
	s := p.FeatureSupport
	if s.CXXModules {
		features = append(features, "modules")
	}
	if s.StdFormat {
		features = append(features, "std::format")
	}
	if s.ImportStd {
		features = append(features, "import std")
	}
	if s.Freestanding {
		features = append(features, "freestanding")
	}
	if len(features) == 0 {
		features = append(features, "-")
	}

	lib := p.Lib
	if lib == "" {
		lib = "default"
	}
	return fmt.Sprintf("%-17s  %-13s  %-11s  %-6s  %-9s  %s",
		p.Name, p.OS, p.Compiler.Type, p.Compiler.Version, lib, strings.Join(features, ", "))
}

// checkOutputFile reports whether the matrix output file can be written
// before any sampling starts. A missing file is fine when its directory
// accepts new files.
func checkOutputFile(path string) error {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return checkOutputDir(filepath.Dir(path))
	case err != nil:
		return fmt.Errorf("cannot inspect output file %s: %w", path, err)
	case info.IsDir():
		return fmt.Errorf("output path %s is a directory", path)
	case info.Mode().Perm()&0200 == 0:
		return fmt.Errorf("output file %s is read-only (mode %v)", path, info.Mode().Perm())
	}
	return nil
}

// checkOutputDir reports whether new output files can be created in dir.
func checkOutputDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output directory %s is not accessible: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output directory %s is not a directory", dir)
	}
	if info.Mode().Perm()&0200 == 0 {
		return fmt.Errorf("output directory %s is read-only (mode %v)", dir, info.Mode().Perm())
	}
	return nil
}
