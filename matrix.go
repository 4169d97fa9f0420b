// matrix.go: Ordered option space and sub-matrix derivation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package jobmatrix

import (
	"fmt"

	"github.com/agilira/go-errors"
)

// Option declares one dimension of the matrix and its candidate values.
type Option struct {
	Name   string
	Values []any
}

// Override replaces the candidates of one option for a single collector call.
type Override struct {
	Name   string
	Values []any
}

// Set builds an override. A single value becomes a one-element candidate list.
//
//	jobmatrix.Set("std", 23)
//	jobmatrix.Set("build_type", "Debug", "Release")
func Set(name string, values ...any) Override {
	return Override{Name: name, Values: values}
}

// SetValues builds an override from an existing candidate slice.
func SetValues[V any](name string, values []V) Override {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return Override{Name: name, Values: out}
}

// Matrix is an immutable, ordered option space.
// Option order determines enumeration order and the order in which random
// values are drawn, which keeps seeded runs reproducible.
type Matrix struct {
	options []Option
	index   map[string]int
}

// NewMatrix validates and freezes an option space.
func NewMatrix(options ...Option) (*Matrix, error) {
	if len(options) == 0 {
		return nil, ErrEmptyMatrix
	}

	m := &Matrix{
		options: make([]Option, len(options)),
		index:   make(map[string]int, len(options)),
	}
	for i, opt := range options {
		if opt.Name == "" {
			return nil, errors.New(ErrCodeInvalidMatrix, fmt.Sprintf("option #%d has no name", i))
		}
		if _, dup := m.index[opt.Name]; dup {
			return nil, errors.New(ErrCodeInvalidMatrix, fmt.Sprintf("option %q declared twice", opt.Name))
		}
		if len(opt.Values) == 0 {
			return nil, errors.New(ErrCodeInvalidMatrix, fmt.Sprintf("option %q has no candidate values", opt.Name))
		}
		m.index[opt.Name] = i
		m.options[i] = Option{Name: opt.Name, Values: append([]any(nil), opt.Values...)}
	}
	return m, nil
}

// MustMatrix is like NewMatrix but panics on an invalid declaration.
// Intended for package-level option spaces.
func MustMatrix(options ...Option) *Matrix {
	m, err := NewMatrix(options...)
	if err != nil {
		panic(err)
	}
	return m
}

// Names returns the option names in declaration order.
func (m *Matrix) Names() []string {
	names := make([]string, len(m.options))
	for i, opt := range m.options {
		names[i] = opt.Name
	}
	return names
}

// Values returns a copy of the candidates of an option, or nil if unknown.
func (m *Matrix) Values(name string) []any {
	i, ok := m.index[name]
	if !ok {
		return nil
	}
	return append([]any(nil), m.options[i].Values...)
}

// Len returns the number of options.
func (m *Matrix) Len() int { return len(m.options) }

// Size returns the number of points in the full Cartesian product.
func (m *Matrix) Size() int {
	size := 1
	for _, opt := range m.options {
		size *= len(opt.Values)
	}
	return size
}

// Has reports whether value is a candidate of the named option.
func (m *Matrix) Has(name string, value any) bool {
	i, ok := m.index[name]
	if !ok {
		return false
	}
	for _, v := range m.options[i].Values {
		if v == value {
			return true
		}
	}
	return false
}

// Contains reports whether every option value exposed by lookup lies inside
// this matrix. Records missing an option are never contained.
func (m *Matrix) Contains(lookup func(option string) (any, bool)) bool {
	for _, opt := range m.options {
		v, ok := lookup(opt.Name)
		if !ok || !m.Has(opt.Name, v) {
			return false
		}
	}
	return true
}

// Submatrix derives a new matrix in which every override replaces the
// candidates of its option. Options not named keep their candidates.
// The receiver is left untouched.
func (m *Matrix) Submatrix(overrides ...Override) (*Matrix, error) {
	sub := &Matrix{
		options: make([]Option, len(m.options)),
		index:   m.index,
	}
	copy(sub.options, m.options)

	for _, o := range overrides {
		i, ok := m.index[o.Name]
		if !ok {
			return nil, errors.New(ErrCodeUnknownOption, fmt.Sprintf("unknown option %q", o.Name))
		}
		if len(o.Values) == 0 {
			return nil, errors.New(ErrCodeEmptyOverride, fmt.Sprintf("override for %q has no values", o.Name))
		}
		sub.options[i] = Option{Name: o.Name, Values: append([]any(nil), o.Values...)}
	}
	return sub, nil
}

// assignment pairs option names with one chosen value each.
func (m *Matrix) assignment(values []any) Assignment {
	names := make([]string, len(m.options))
	for i, opt := range m.options {
		names[i] = opt.Name
	}
	return Assignment{names: names, values: values}
}

// each enumerates the Cartesian product in declaration order, last option
// varying fastest. Enumeration stops when fn returns an error.
func (m *Matrix) each(fn func(values []any) error) error {
	idx := make([]int, len(m.options))
	for {
		values := make([]any, len(m.options))
		for i, opt := range m.options {
			values[i] = opt.Values[idx[i]]
		}
		if err := fn(values); err != nil {
			return err
		}

		// odometer increment
		pos := len(idx) - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(m.options[pos].Values) {
				break
			}
			idx[pos] = 0
			pos--
		}
		if pos < 0 {
			return nil
		}
	}
}
