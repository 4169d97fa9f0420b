// matrix_test.go: Tests for option spaces, sub-matrices and assignments
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package jobmatrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatrix_Validation(t *testing.T) {
	tests := []struct {
		name    string
		options []Option
	}{
		{"empty", nil},
		{"unnamed option", []Option{{Values: []any{1}}}},
		{"duplicate option", []Option{
			{Name: "std", Values: []any{20}},
			{Name: "std", Values: []any{23}},
		}},
		{"no candidates", []Option{{Name: "std"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatrix(tt.options...)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.Equal(t, ErrCodeInvalidMatrix, errorCode(err))
		})
	}

	assert.Panics(t, func() { MustMatrix() })
}

func TestMatrix_Accessors(t *testing.T) {
	m := largeMatrix()

	assert.Equal(t, []string{"toolchain", "std", "build_type"}, m.Names())
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 6*4*3, m.Size())
	assert.Equal(t, []any{17, 20, 23, 26}, m.Values("std"))
	assert.Nil(t, m.Values("arch"))

	assert.True(t, m.Has("std", 23))
	assert.False(t, m.Has("std", "23"), "values compare with their dynamic type")
	assert.False(t, m.Has("arch", "x86"))

	// returned slices are copies
	vals := m.Values("std")
	vals[0] = 99
	assert.True(t, m.Has("std", 17))
}

func TestMatrix_InputIsCopied(t *testing.T) {
	values := []any{"A", "B"}
	m := MustMatrix(Option{Name: "toolchain", Values: values})
	values[0] = "Z"

	assert.True(t, m.Has("toolchain", "A"))
	assert.False(t, m.Has("toolchain", "Z"))
}

func TestMatrix_Submatrix(t *testing.T) {
	full := largeMatrix()

	sub, err := full.Submatrix(
		Set("std", 23),
		SetValues("toolchain", []string{"gcc-14", "clang-18"}),
	)
	require.NoError(t, err)

	assert.Equal(t, []any{23}, sub.Values("std"))
	assert.Equal(t, []any{"gcc-14", "clang-18"}, sub.Values("toolchain"))
	assert.Equal(t, full.Values("build_type"), sub.Values("build_type"))
	assert.Equal(t, full.Names(), sub.Names())

	// the full matrix is untouched
	assert.Equal(t, []any{17, 20, 23, 26}, full.Values("std"))
	assert.Equal(t, 72, full.Size())
	assert.Equal(t, 6, sub.Size())
}

func TestMatrix_SubmatrixOverrideValuesOutsideFullMatrix(t *testing.T) {
	sub, err := twoByTwo().Submatrix(Set("std", 26))
	require.NoError(t, err)
	assert.Equal(t, []any{26}, sub.Values("std"))
}

func TestMatrix_SubmatrixErrors(t *testing.T) {
	full := twoByTwo()

	_, err := full.Submatrix(Set("arch", "arm64"))
	assert.Equal(t, ErrCodeUnknownOption, errorCode(err))

	_, err = full.Submatrix(Set("std"))
	assert.Equal(t, ErrCodeEmptyOverride, errorCode(err))

	_, err = full.Submatrix(SetValues[int]("std", nil))
	assert.Equal(t, ErrCodeEmptyOverride, errorCode(err))
}

func TestMatrix_Contains(t *testing.T) {
	sub, err := twoByTwo().Submatrix(Set("std", 23))
	require.NoError(t, err)

	assert.True(t, sub.Contains(job{Toolchain: "A", Std: 23}.Lookup))
	assert.False(t, sub.Contains(job{Toolchain: "A", Std: 20}.Lookup))
	assert.False(t, sub.Contains(job{Toolchain: "C", Std: 23}.Lookup))
	assert.False(t, sub.Contains(flagRecord{}.Lookup), "records missing an option are outside")
}

func TestMatrix_EachOdometerOrder(t *testing.T) {
	m := MustMatrix(
		Option{Name: "a", Values: []any{1, 2}},
		Option{Name: "b", Values: []any{"x", "y", "z"}},
	)

	var got [][]any
	require.NoError(t, m.each(func(values []any) error {
		got = append(got, values)
		return nil
	}))
	assert.Equal(t, [][]any{
		{1, "x"}, {1, "y"}, {1, "z"},
		{2, "x"}, {2, "y"}, {2, "z"},
	}, got)
}

func TestAssignment(t *testing.T) {
	a := largeMatrix().assignment([]any{"gcc-14", 23, "Debug"})

	assert.Equal(t, 3, a.Len())
	v, ok := a.Get("std")
	assert.True(t, ok)
	assert.Equal(t, 23, v)
	_, ok = a.Get("arch")
	assert.False(t, ok)
	assert.Equal(t, "toolchain=gcc-14, std=23, build_type=Debug", a.String())

	var names []string
	a.Each(func(name string, _ any) { names = append(names, name) })
	assert.Equal(t, []string{"toolchain", "std", "build_type"}, names)

	std, err := Field[int](a, "std")
	require.NoError(t, err)
	assert.Equal(t, 23, std)

	_, err = Field[string](a, "std")
	assert.Equal(t, ErrCodeInvalidAssignment, errorCode(err))

	_, err = Field[string](a, "arch")
	assert.Equal(t, ErrCodeInvalidAssignment, errorCode(err))
}
