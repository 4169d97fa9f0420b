// coverage_test.go: Tests for the per-value coverage tracker
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

func TestCoverageTracker_InsertionOrder(t *testing.T) {
	tr := newCoverageTracker(twoByTwo(), 1)

	assert.Equal(t, []Need{
		{Option: "toolchain", Value: "A", Remaining: 1},
		{Option: "toolchain", Value: "B", Remaining: 1},
		{Option: "std", Value: 20, Remaining: 1},
		{Option: "std", Value: 23, Remaining: 1},
	}, tr.unmet())

	p, remaining := tr.front()
	assert.Equal(t, pair{option: "toolchain", value: "A"}, p)
	assert.Equal(t, 1, remaining)
}

func TestCoverageTracker_DuplicateCandidates(t *testing.T) {
	sub, err := twoByTwo().Submatrix(Set("std", 23, 23))
	require.NoError(t, err)

	tr := newCoverageTracker(sub, 2)
	assert.Len(t, tr.unmet(), 3)
}

func TestCoverageTracker_ConsumeRotates(t *testing.T) {
	tr := newCoverageTracker(twoByTwo(), 2)

	tr.consume(pair{option: "toolchain", value: "A"})
	p, remaining := tr.front()
	assert.Equal(t, pair{option: "toolchain", value: "B"}, p)
	assert.Equal(t, 2, remaining)

	unmet := tr.unmet()
	assert.Equal(t, Need{Option: "toolchain", Value: "A", Remaining: 1}, unmet[len(unmet)-1])

	tr.consume(pair{option: "toolchain", value: "A"})
	for _, n := range tr.unmet() {
		assert.NotEqual(t, "A", n.Value, "satisfied values are dropped")
	}

	// unknown pairs are ignored
	tr.consume(pair{option: "toolchain", value: "Z"})
	assert.Len(t, tr.unmet(), 3)
}

func TestCoverageTracker_CreditAndPrune(t *testing.T) {
	tr := newCoverageTracker(twoByTwo(), 1)

	tr.credit(pair{option: "std", value: 20})
	tr.credit(pair{option: "std", value: 20})
	tr.credit(pair{option: "std", value: 26})
	// credit keeps positions
	assert.Equal(t, Need{Option: "std", Value: 20, Remaining: -1}, tr.unmet()[2])

	tr.prune()
	assert.Equal(t, []Need{
		{Option: "toolchain", Value: "A", Remaining: 1},
		{Option: "toolchain", Value: "B", Remaining: 1},
		{Option: "std", Value: 23, Remaining: 1},
	}, tr.unmet())
}

func TestCoverageTracker_ZeroTarget(t *testing.T) {
	tr := newCoverageTracker(twoByTwo(), 0)
	require.False(t, tr.empty())
	tr.prune()
	assert.True(t, tr.empty())
}

func TestCoverageTracker_Remove(t *testing.T) {
	tr := newCoverageTracker(twoByTwo(), 1)
	tr.remove(pair{option: "toolchain", value: "A"})
	tr.remove(pair{option: "toolchain", value: "A"})

	p, _ := tr.front()
	assert.Equal(t, pair{option: "toolchain", value: "B"}, p)
	assert.Len(t, tr.unmet(), 3)
}

func TestNeed_String(t *testing.T) {
	assert.Equal(t, "std=23 (2)", Need{Option: "std", Value: 23, Remaining: 2}.String())
}
