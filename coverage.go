// coverage.go: Per-value coverage bookkeeping for one sampling pass
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package jobmatrix

import (
	"container/list"
	"fmt"
)

// pair identifies one candidate value of one option.
type pair struct {
	option string
	value  any
}

// Need reports how many more accepted records a value still requires.
type Need struct {
	Option    string
	Value     any
	Remaining int
}

// String renders the need as "option=value (n)".
func (n Need) String() string {
	return fmt.Sprintf("%s=%v (%d)", n.Option, n.Value, n.Remaining)
}

// coverageTracker is an insertion-ordered map from (option, value) to the
// remaining need. The front entry is the next value to force. A value that
// is credited but still short moves to the back, so forcing rotates through
// the unmet values instead of hammering the first one.
type coverageTracker struct {
	order *list.List
	elems map[pair]*list.Element
	need  map[pair]int
}

func newCoverageTracker(sub *Matrix, perValue int) *coverageTracker {
	t := &coverageTracker{
		order: list.New(),
		elems: make(map[pair]*list.Element),
		need:  make(map[pair]int),
	}
	for _, opt := range sub.options {
		for _, v := range opt.Values {
			p := pair{option: opt.Name, value: v}
			if _, seen := t.elems[p]; seen {
				continue
			}
			t.elems[p] = t.order.PushBack(p)
			t.need[p] = perValue
		}
	}
	return t
}

// credit counts an already accepted record towards a value without
// changing its position.
func (t *coverageTracker) credit(p pair) {
	if _, ok := t.elems[p]; ok {
		t.need[p]--
	}
}

// prune drops every satisfied entry.
func (t *coverageTracker) prune() {
	for e := t.order.Front(); e != nil; {
		next := e.Next()
		p := e.Value.(pair)
		if t.need[p] <= 0 {
			t.remove(p)
		}
		e = next
	}
}

func (t *coverageTracker) empty() bool { return t.order.Len() == 0 }

func (t *coverageTracker) front() (pair, int) {
	p := t.order.Front().Value.(pair)
	return p, t.need[p]
}

func (t *coverageTracker) remove(p pair) {
	if e, ok := t.elems[p]; ok {
		t.order.Remove(e)
		delete(t.elems, p)
		delete(t.need, p)
	}
}

// consume records one more accepted sample for p. Satisfied or unknown
// values are dropped, the rest are requeued at the back.
func (t *coverageTracker) consume(p pair) {
	e, ok := t.elems[p]
	if !ok {
		return
	}
	remaining := t.need[p] - 1
	if remaining <= 0 {
		t.remove(p)
		return
	}
	t.need[p] = remaining
	t.order.MoveToBack(e)
}

// unmet snapshots the remaining needs in queue order.
func (t *coverageTracker) unmet() []Need {
	out := make([]Need, 0, t.order.Len())
	for e := t.order.Front(); e != nil; e = e.Next() {
		p := e.Value.(pair)
		out = append(out, Need{Option: p.option, Value: p.value, Remaining: t.need[p]})
	}
	return out
}
