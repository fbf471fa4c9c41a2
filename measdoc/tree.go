// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measdoc

import (
	"fmt"
	"strings"

	"golang.org/x/benchmeasure/measure"
)

// FromTree converts tree to its document form.
func FromTree(tree *measure.Tree) []Test {
	return fromTests(tree.Tests)
}

func fromTests(tests []*measure.Test) []Test {
	out := make([]Test, 0, len(tests))
	for _, t := range tests {
		dt := Test{
			Name:    t.Name,
			Tests:   fromTests(t.Tests),
			Results: make([]Result, 0, len(t.Results)),
		}
		for _, r := range t.Results {
			dt.Results = append(dt.Results, Result{
				Metric: Metric{Name: r.Metric.Name, Unit: r.Metric.Unit, GreaterIsBetter: r.Metric.GreaterIsBetter},
				Values: append([]float64(nil), r.Values...),
			})
		}
		out = append(out, dt)
	}
	return out
}

// ToTree builds a measure.Tree from a decoded document, interning its
// metrics in reg. It rejects invalid test names, duplicate siblings,
// duplicate metrics within a test, and results holding more than max
// values (measure.DefaultMaxValues if max <= 0).
func ToTree(tests []Test, reg *measure.Registry, max int) (*measure.Tree, error) {
	if max <= 0 {
		max = measure.DefaultMaxValues
	}
	c := converter{reg: reg, max: max}
	tree := &measure.Tree{}
	var err error
	tree.Tests, err = c.tests(nil, tests)
	if err != nil {
		return nil, err
	}
	return tree, nil
}

type converter struct {
	reg *measure.Registry
	max int
}

func (c *converter) tests(parent []string, tests []Test) ([]*measure.Test, error) {
	out := make([]*measure.Test, 0, len(tests))
	seen := make(map[string]bool, len(tests))
	for i := range tests {
		dt := &tests[i]
		path := append(parent[:len(parent):len(parent)], dt.Name)
		if !measure.ValidName(dt.Name) {
			return nil, fmt.Errorf("test %q: %w", strings.Join(path, "/"), measure.ErrInvalidName)
		}
		if seen[dt.Name] {
			return nil, fmt.Errorf("duplicate test %q", strings.Join(path, "/"))
		}
		seen[dt.Name] = true

		t := &measure.Test{Name: dt.Name}
		for _, dr := range dt.Results {
			info := measure.MetricInfo{Name: dr.Metric.Name, Unit: dr.Metric.Unit, Better: measure.BetterDesc}
			if dr.Metric.GreaterIsBetter {
				info.Better = measure.BetterAsc
			}
			m, err := c.reg.GetOrCreate(info)
			if err != nil {
				return nil, fmt.Errorf("test %q: %w", strings.Join(path, "/"), err)
			}
			if t.Result(m) != nil {
				return nil, fmt.Errorf("test %q: duplicate result for metric %s", strings.Join(path, "/"), m)
			}
			if len(dr.Values) > c.max {
				return nil, &measure.OverflowError{Test: dt.Name, Metric: m, Max: c.max}
			}
			t.Results = append(t.Results, &measure.Result{
				Metric: m,
				Values: append([]float64(nil), dr.Values...),
			})
		}
		var err error
		if t.Tests, err = c.tests(path, dt.Tests); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
