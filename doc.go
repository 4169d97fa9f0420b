// Package jobmatrix builds continuous-integration job matrices from a declared
// option space without enumerating its full Cartesian product.
//
// # Overview
//
// A CI matrix for a library that supports several compilers, language
// standards, optional features and build types grows multiplicatively. Running
// every combination wastes CI minutes; picking a handful by hand loses
// coverage. jobmatrix sits in between: a Collector accumulates a set of
// records, each call narrowing the option space with overrides and then
// either taking every combination of that small sub-matrix or sampling it
// until each candidate value has appeared a minimum number of times.
//
// # Option Space
//
// A Matrix is an ordered list of options and their candidate values. Order
// matters only for reproducibility: it fixes the enumeration order and the
// order in which random values are drawn.
//
//	full := jobmatrix.MustMatrix(
//		jobmatrix.Option{Name: "toolchain", Values: []any{"gcc-14", "clang-18"}},
//		jobmatrix.Option{Name: "std", Values: []any{20, 23}},
//		jobmatrix.Option{Name: "build_type", Values: []any{"Release", "Debug"}},
//	)
//
// Overrides replace the candidates of one option for a single call:
//
//	jobmatrix.Set("std", 23)                       // single value
//	jobmatrix.Set("build_type", "Debug", "Release") // several values
//
// # Records
//
// Records are caller-defined value types. They must be comparable (they are
// deduplicated with ==), expose their option values through Lookup and define
// a total order through Compare. A Factory turns an Assignment into a record;
// the Field helper extracts typed values:
//
//	func newJob(a jobmatrix.Assignment) (Job, error) {
//		toolchain, err := jobmatrix.Field[string](a, "toolchain")
//		if err != nil {
//			return Job{}, err
//		}
//		std, err := jobmatrix.Field[int](a, "std")
//		...
//	}
//
// # Collecting
//
// AllCombinations adds the full product of a sub-matrix. SampleCombinations
// forces each still-uncovered value in turn and fills every other option
// uniformly at random from the supplied Rand; a draw that is filtered,
// excluded or already present counts as a failure. After more than the
// failure threshold (100 by default) of consecutive failures the pass is
// abandoned and reported as a Shortfall. This is deliberate: some coverage
// targets are impossible under the exclusion rules, and an under-covered
// matrix is still useful.
//
//	rng := rand.New(rand.NewSource(seed))
//	report, err := collector.SampleCombinations(rng, jobmatrix.SampleOptions[Job]{
//		MinSamplesPerValue: 2,
//		Overrides:          []jobmatrix.Override{jobmatrix.Set("build_type", "Debug")},
//	})
//
// With the same seed and the same call sequence the accumulated set is
// identical, so logging the seed is enough to reproduce a matrix.
//
// # Audit Trail
//
// An optional AuditLogger records generated matrices, applied presets and
// coverage shortfalls to SQLite (default) or JSONL (".jsonl" extension).
//
// # Errors
//
// Errors carry github.com/agilira/go-errors codes (JOBMATRIX_*). Only
// configuration problems are errors: unknown options, empty overrides,
// invalid matrices and factory failures.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package jobmatrix
