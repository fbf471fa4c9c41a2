// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measure

// DefaultMaxValues is the default limit on the number of samples in
// a single Result.
const DefaultMaxValues = 128

// An Accumulator appends samples to Results while enforcing the
// sample-count limit and the drop-first policy.
type Accumulator struct {
	// Max is the maximum number of values in a Result. If Max is
	// zero, DefaultMaxValues is used.
	Max int
}

// Limit returns the effective maximum number of values per Result.
func (a *Accumulator) Limit() int {
	if a == nil || a.Max <= 0 {
		return DefaultMaxValues
	}
	return a.Max
}

// Insert records value for (test, metric).
//
// If test has no Result for metric yet, one is appended to
// test.Results. When dropFirst is set and the Result was created by
// this call, value is discarded; this only ever suppresses the first
// sample of a pair. Insert returns an *OverflowError if the Result
// already holds Limit values.
func (a *Accumulator) Insert(test *Test, metric *Metric, value float64, dropFirst bool) error {
	res := test.Result(metric)
	if res == nil {
		res = &Result{Metric: metric}
		test.Results = append(test.Results, res)
		if dropFirst {
			return nil
		}
	}
	if max := a.Limit(); len(res.Values) >= max {
		return &OverflowError{Test: test.Name, Metric: metric, Max: max}
	}
	res.Values = append(res.Values, value)
	return nil
}
