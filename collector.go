// collector.go: Incremental builder of matrix records
//
// The collector owns the full option space and an accumulated set of accepted
// records. Callers narrow the space per call with overrides and either take
// every combination of a small sub-matrix or sample a large one until each
// value is covered often enough.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package jobmatrix

import (
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/agilira/go-errors"
)

// Sampling phases reported in a Shortfall.
const (
	PhasePerValue = "per-value"
	PhaseTotal    = "total"
)

// Shortfall describes a sampling pass that was abandoned after too many
// consecutive rejected draws.
type Shortfall[T any] struct {
	Phase       string
	Unmet       []Need
	InSubmatrix int
	MinSamples  int
	// Failed lists the distinct rejected candidates of the abandoned streak,
	// sorted.
	Failed []T
}

// String renders the diagnostic emitted when a pass is abandoned.
func (s Shortfall[T]) String() string {
	if s.Phase == PhaseTotal {
		return fmt.Sprintf("unable to reach the requested minimum number of samples, in_submatrix=%d of %d",
			s.InSubmatrix, s.MinSamples)
	}
	parts := make([]string, len(s.Unmet))
	for i, n := range s.Unmet {
		parts[i] = n.String()
	}
	return "unable to reach the requested minimum number of samples, missing: " + strings.Join(parts, ", ")
}

// ShortfallHandler receives every abandoned sampling pass.
type ShortfallHandler[T any] func(Shortfall[T])

// SampleOptions configures one SampleCombinations call.
type SampleOptions[T any] struct {
	// MinSamplesPerValue is the number of accepted records inside the
	// sub-matrix that every candidate value must appear in.
	MinSamplesPerValue int

	// MinSamples is the number of accepted records the sub-matrix must hold
	// in total once per-value coverage is done.
	MinSamples int

	// Filter, if set, rejects candidates before exclusion is checked.
	Filter Filter[T]

	// Overrides narrow the full matrix for this call.
	Overrides []Override
}

// SampleReport summarizes one SampleCombinations call.
type SampleReport[T any] struct {
	Added       int
	Attempts    int
	InSubmatrix int
	Shortfalls  []Shortfall[T]
}

// Complete reports whether every requested target was reached.
func (r *SampleReport[T]) Complete() bool { return len(r.Shortfalls) == 0 }

// CollectorOption customizes a Collector at construction.
type CollectorOption[T any] func(*collectorConfig[T])

type collectorConfig[T any] struct {
	excludes    func(T) bool
	threshold   int
	onShortfall ShortfallHandler[T]
	audit       *AuditLogger
}

// WithHardExcludes installs the predicate marking records that must never be
// accepted.
func WithHardExcludes[T any](fn func(T) bool) CollectorOption[T] {
	return func(c *collectorConfig[T]) { c.excludes = fn }
}

// WithFailureThreshold sets how many consecutive rejected draws abandon a
// sampling pass. Non-positive values keep the default.
func WithFailureThreshold[T any](n int) CollectorOption[T] {
	return func(c *collectorConfig[T]) {
		if n > 0 {
			c.threshold = n
		}
	}
}

// WithShortfallHandler replaces the default log-based shortfall diagnostic.
func WithShortfallHandler[T any](fn ShortfallHandler[T]) CollectorOption[T] {
	return func(c *collectorConfig[T]) { c.onShortfall = fn }
}

// WithAuditLogger records shortfalls in the audit trail.
func WithAuditLogger[T any](al *AuditLogger) CollectorOption[T] {
	return func(c *collectorConfig[T]) { c.audit = al }
}

// Collector accumulates unique, non-excluded records drawn from a matrix.
// It is not safe for concurrent use.
type Collector[T Record[T]] struct {
	full    *Matrix
	factory Factory[T]
	config  collectorConfig[T]

	accepted map[T]struct{}
	order    []T // acceptance order, keeps coverage counting deterministic
}

// NewCollector creates an empty collector over the full option space.
func NewCollector[T Record[T]](full *Matrix, factory Factory[T], opts ...CollectorOption[T]) *Collector[T] {
	cfg := collectorConfig[T]{threshold: DefaultFailureThreshold}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.onShortfall == nil {
		cfg.onShortfall = func(s Shortfall[T]) {
			log.Printf("jobmatrix: %s", s)
		}
	}
	return &Collector[T]{
		full:     full,
		factory:  factory,
		config:   cfg,
		accepted: make(map[T]struct{}),
	}
}

// Matrix returns the full option space.
func (c *Collector[T]) Matrix() *Matrix { return c.full }

// Len returns the number of accepted records.
func (c *Collector[T]) Len() int { return len(c.order) }

// Contains reports whether rec has been accepted.
func (c *Collector[T]) Contains(rec T) bool {
	_, ok := c.accepted[rec]
	return ok
}

// Combinations returns the accepted records sorted by Compare.
func (c *Collector[T]) Combinations() []T {
	out := slices.Clone(c.order)
	slices.SortFunc(out, func(a, b T) int { return a.Compare(b) })
	return out
}

// add is the single entry point into the accepted set.
func (c *Collector[T]) add(rec T) bool {
	if _, dup := c.accepted[rec]; dup {
		return false
	}
	if c.config.excludes != nil && c.config.excludes(rec) {
		return false
	}
	c.accepted[rec] = struct{}{}
	c.order = append(c.order, rec)
	return true
}

func (c *Collector[T]) build(sub *Matrix, values []any) (T, error) {
	rec, err := c.factory(sub.assignment(values))
	if err != nil {
		var zero T
		return zero, errors.Wrap(err, ErrCodeFactoryFailed, "failed to build record")
	}
	return rec, nil
}

// AllCombinations adds every combination of the sub-matrix defined by
// overrides. Keep the sub-matrix small: this is a full product.
// It returns the number of newly accepted records.
func (c *Collector[T]) AllCombinations(filter Filter[T], overrides ...Override) (int, error) {
	sub, err := c.full.Submatrix(overrides...)
	if err != nil {
		return 0, err
	}

	added := 0
	err = sub.each(func(values []any) error {
		rec, err := c.build(sub, values)
		if err != nil {
			return err
		}
		if filter != nil && !filter(rec) {
			return nil
		}
		if c.add(rec) {
			added++
		}
		return nil
	})
	return added, err
}

// SampleCombinations adds random samples from the sub-matrix defined by
// opts.Overrides until every value appears in at least MinSamplesPerValue
// accepted records of the sub-matrix, then until the sub-matrix holds at
// least MinSamples records.
//
// A pass that sees more than the failure threshold of consecutive rejected
// draws is abandoned and reported as a Shortfall; this is not an error.
// Errors are returned only for invalid overrides or factory failures.
func (c *Collector[T]) SampleCombinations(rng Rand, opts SampleOptions[T]) (*SampleReport[T], error) {
	if rng == nil {
		return nil, ErrNilRand
	}
	if opts.MinSamplesPerValue < 0 || opts.MinSamples < 0 {
		return nil, errors.New(ErrCodeInvalidSampling, "sample minimums must not be negative")
	}
	sub, err := c.full.Submatrix(opts.Overrides...)
	if err != nil {
		return nil, err
	}

	s := &samplingPass[T]{
		c:       c,
		sub:     sub,
		filter:  opts.Filter,
		tracker: newCoverageTracker(sub, opts.MinSamplesPerValue),
		failed:  make(map[T]struct{}),
		report:  &SampleReport[T]{},
	}

	for _, rec := range c.order {
		if !sub.Contains(rec.Lookup) {
			continue
		}
		s.report.InSubmatrix++
		for _, opt := range sub.options {
			v, _ := rec.Lookup(opt.Name)
			s.tracker.credit(pair{option: opt.Name, value: v})
		}
	}
	s.tracker.prune()

	for !s.tracker.empty() {
		forced, remaining := s.tracker.front()
		if remaining <= 0 {
			s.tracker.remove(forced)
			continue
		}
		values := make([]any, sub.Len())
		for i, opt := range sub.options {
			if opt.Name == forced.option {
				values[i] = forced.value
			} else {
				values[i] = opt.Values[rng.Intn(len(opt.Values))]
			}
		}
		if err := s.try(values); err != nil {
			return nil, err
		}
		if s.failures > c.config.threshold {
			s.abandon(PhasePerValue, opts.MinSamples)
			break
		}
	}

	for s.report.InSubmatrix < opts.MinSamples {
		values := make([]any, sub.Len())
		for i, opt := range sub.options {
			values[i] = opt.Values[rng.Intn(len(opt.Values))]
		}
		if err := s.try(values); err != nil {
			return nil, err
		}
		if s.failures > c.config.threshold {
			s.abandon(PhaseTotal, opts.MinSamples)
			break
		}
	}

	return s.report, nil
}

// samplingPass holds the mutable bookkeeping of one SampleCombinations call.
type samplingPass[T Record[T]] struct {
	c        *Collector[T]
	sub      *Matrix
	filter   Filter[T]
	tracker  *coverageTracker
	failures int
	failed   map[T]struct{}
	report   *SampleReport[T]
}

func (s *samplingPass[T]) try(values []any) error {
	s.report.Attempts++
	rec, err := s.c.build(s.sub, values)
	if err != nil {
		return err
	}

	added := false
	if s.filter == nil || s.filter(rec) {
		added = s.c.add(rec)
	}
	if !added {
		if !s.c.Contains(rec) {
			s.failed[rec] = struct{}{}
		}
		s.failures++
		return nil
	}

	s.failures = 0
	clear(s.failed)
	s.report.Added++
	s.report.InSubmatrix++
	for i, opt := range s.sub.options {
		s.tracker.consume(pair{option: opt.Name, value: values[i]})
	}
	return nil
}

func (s *samplingPass[T]) abandon(phase string, minSamples int) {
	failed := make([]T, 0, len(s.failed))
	for rec := range s.failed {
		failed = append(failed, rec)
	}
	slices.SortFunc(failed, func(a, b T) int { return a.Compare(b) })

	shortfall := Shortfall[T]{
		Phase:       phase,
		Unmet:       s.tracker.unmet(),
		InSubmatrix: s.report.InSubmatrix,
		MinSamples:  minSamples,
		Failed:      failed,
	}
	s.report.Shortfalls = append(s.report.Shortfalls, shortfall)
	s.c.config.onShortfall(shortfall)
	if al := s.c.config.audit; al != nil {
		al.LogShortfall(phase, shortfall.String(), map[string]interface{}{
			"unmet":        len(shortfall.Unmet),
			"in_submatrix": shortfall.InSubmatrix,
			"min_samples":  minSamples,
			"failed":       len(failed),
		})
	}

	s.failures = 0
	clear(s.failed)
}
