// generate-job-matrix: single-step matrix generator for GitHub Actions
//
// Usage in a workflow step:
//
//	go run ./cmd/generate-job-matrix --preset conan --debug combinations,counts
//
// The matrix is written to $GITHUB_OUTPUT as "matrix=<json>". Every flag can
// also be set through JOBMATRIX_<FLAG> environment variables.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/agilira/jobmatrix/internal/ci"
)

func main() {
	cfg, fs, err := ci.ParseFlags("generate-job-matrix", os.Args[1:])
	if err != nil {
		if errors.Is(err, ci.ErrHelpRequested) {
			fs.PrintHelp()
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		fs.PrintHelp()
		os.Exit(1)
	}

	if _, err := ci.Generate(cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
