// jobmatrix: Incremental CI job-matrix builder with coverage-driven sampling
//
// Philosophy:
// - The option space is declared once, calls narrow it with overrides
// - Invalid combinations are excluded at a single choke point
// - Sampling is seeded and reproducible, never a full cross product
// - Coverage shortfalls degrade gracefully instead of failing the run
//
// Example Usage:
//   full, _ := jobmatrix.NewMatrix(
//       jobmatrix.Option{Name: "toolchain", Values: []any{"gcc", "clang"}},
//       jobmatrix.Option{Name: "std", Values: []any{20, 23}},
//   )
//
//   collector := jobmatrix.NewCollector(full, newJob,
//       jobmatrix.WithHardExcludes(isBroken))
//
//   _, _ = collector.AllCombinations(nil, jobmatrix.Set("toolchain", "gcc"))
//   _, _ = collector.SampleCombinations(rand.New(rand.NewSource(seed)),
//       jobmatrix.SampleOptions[Job]{MinSamplesPerValue: 2})
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package jobmatrix

import (
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for jobmatrix operations
const (
	ErrCodeInvalidMatrix     = "JOBMATRIX_INVALID_MATRIX"
	ErrCodeUnknownOption     = "JOBMATRIX_UNKNOWN_OPTION"
	ErrCodeEmptyOverride     = "JOBMATRIX_EMPTY_OVERRIDE"
	ErrCodeInvalidAssignment = "JOBMATRIX_INVALID_ASSIGNMENT"
	ErrCodeFactoryFailed     = "JOBMATRIX_FACTORY_FAILED"
	ErrCodeInvalidSampling   = "JOBMATRIX_INVALID_SAMPLING"
	ErrCodeAuditError        = "JOBMATRIX_AUDIT_ERROR"
)

// DefaultFailureThreshold is the number of consecutive rejected draws after
// which a sampling pass is abandoned.
const DefaultFailureThreshold = 100

// Sentinel errors
var (
	ErrEmptyMatrix = errors.New(ErrCodeInvalidMatrix, "matrix must declare at least one option")
	ErrNilRand     = errors.New(ErrCodeInvalidSampling, "random source must not be nil")
)

// Rand is the random source used to fill unforced options while sampling.
// *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Record is the constraint for configuration records produced by a Factory.
//
// Records are compared with == for deduplication, so every field (and every
// option value they expose) must be comparable. Lookup exposes the record as
// an option-name to value mapping; Compare provides the total order used to
// sort the accumulated set.
type Record[T any] interface {
	comparable
	Lookup(option string) (any, bool)
	Compare(other T) int
}

// Factory builds a record from a complete assignment of option values.
type Factory[T any] func(a Assignment) (T, error)

// Filter scopes one collector call to a subset of candidates.
type Filter[T any] func(T) bool

// Assignment is an ordered option-name to value mapping covering every option
// of the matrix it was drawn from.
type Assignment struct {
	names  []string
	values []any
}

// Get returns the value assigned to an option.
func (a Assignment) Get(name string) (any, bool) {
	for i, n := range a.names {
		if n == name {
			return a.values[i], true
		}
	}
	return nil, false
}

// Len returns the number of assigned options.
func (a Assignment) Len() int { return len(a.names) }

// Each visits the assignment in option order.
func (a Assignment) Each(fn func(name string, value any)) {
	for i, n := range a.names {
		fn(n, a.values[i])
	}
}

// String renders the assignment as "name=value" pairs in option order.
func (a Assignment) String() string {
	out := make([]byte, 0, 16*len(a.names))
	for i, n := range a.names {
		if i > 0 {
			out = append(out, ", "...)
		}
		out = fmt.Appendf(out, "%s=%v", n, a.values[i])
	}
	return string(out)
}

// Field extracts a typed value from an assignment.
// Factories use it to turn the generic mapping into record fields.
func Field[V any](a Assignment, name string) (V, error) {
	var zero V
	raw, ok := a.Get(name)
	if !ok {
		return zero, errors.New(ErrCodeInvalidAssignment, fmt.Sprintf("assignment has no option %q", name))
	}
	v, ok := raw.(V)
	if !ok {
		return zero, errors.New(ErrCodeInvalidAssignment,
			fmt.Sprintf("option %q holds %T, want %T", name, raw, zero))
	}
	return v, nil
}
