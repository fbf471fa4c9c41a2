// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package measure implements the normalized measurement model shared
// by every benchmark input format.
//
// A measurement run is a Tree of named Tests. Each Test owns an
// ordered list of child Tests and an ordered list of Results, and
// each Result holds the samples observed for one Metric. Metrics are
// interned by a Registry so that structurally identical metrics
// produced by different readers are the same *Metric.
//
// Format readers produce Triples; the merge orchestrator validates
// them, resolves their Metric and Test, and hands the parsed value to
// an Accumulator. Nothing in a Tree is ever deleted.
package measure

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidName is returned for a test name that is empty or
	// consists only of white space.
	ErrInvalidName = errors.New("test name cannot be null, empty, or white space")

	// ErrNotNumber is returned for a raw value that is neither a
	// real number nor a hexadecimal integer.
	ErrNotNumber = errors.New("test value is not a number")

	// ErrInvalidMetric is returned for an incomplete metric
	// descriptor or an unknown direction token.
	ErrInvalidMetric = errors.New("invalid metric")

	// ErrOverflow is matched by every *OverflowError.
	ErrOverflow = errors.New("too many values")
)

// An OverflowError reports that a Result would exceed its maximum
// number of values.
type OverflowError struct {
	Test   string
	Metric *Metric
	Max    int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("number of values for %s (%s) exceeded %d", e.Test, e.Metric, e.Max)
}

func (e *OverflowError) Is(target error) bool {
	return target == ErrOverflow
}

// ValidName reports whether name can be used as a Test name.
func ValidName(name string) bool {
	return strings.TrimSpace(name) != ""
}

// A Triple is a single measurement as produced by a format reader.
// It is transient: readers typically reuse the same Triple between
// calls to Scan, so consumers must copy anything they retain.
type Triple struct {
	// Path is the test path from the root of the tree.
	Path []string

	// Value is the textual form of the measured number.
	Value string

	// Metric describes what was measured.
	Metric MetricInfo
}

func (t *Triple) String() string {
	return fmt.Sprintf("tests: %q, value: %q, metric: %s", t.Path, t.Value, t.Metric)
}
