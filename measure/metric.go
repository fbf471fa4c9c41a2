// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measure

import (
	"fmt"
	"strings"
)

// Direction tokens accepted in MetricInfo.Better.
const (
	BetterAsc  = "asc"  // greater values are better
	BetterDesc = "desc" // smaller values are better
)

// A Metric is an interned measured quantity. Metrics must be obtained
// from a Registry and must not be modified.
type Metric struct {
	Name string
	Unit string

	// GreaterIsBetter reports whether an increase in value is an
	// improvement.
	GreaterIsBetter bool
}

func (m *Metric) String() string {
	better := BetterDesc
	if m.GreaterIsBetter {
		better = BetterAsc
	}
	return fmt.Sprintf("%s/%s/%s", m.Name, m.Unit, better)
}

// MetricInfo is the unvalidated metric descriptor carried by a
// Triple.
type MetricInfo struct {
	Name   string
	Unit   string
	Better string // BetterAsc or BetterDesc
}

func (mi MetricInfo) String() string {
	return fmt.Sprintf("{metric: %q, unit: %q, better: %q}", mi.Name, mi.Unit, mi.Better)
}

// Validate checks that mi names a metric and a unit and carries a
// known direction token.
func (mi MetricInfo) Validate() error {
	if strings.TrimSpace(mi.Name) == "" {
		return fmt.Errorf("%w: metric must contain a \"metric\" field: %s", ErrInvalidMetric, mi)
	}
	if mi.Unit == "" {
		return fmt.Errorf("%w: metric must contain a \"unit\" field: %s", ErrInvalidMetric, mi)
	}
	switch mi.Better {
	case BetterAsc, BetterDesc:
	case "":
		return fmt.Errorf("%w: metric must contain a \"better\" field: %s", ErrInvalidMetric, mi)
	default:
		return fmt.Errorf("%w: metric \"better\" must be either %q or %q: %q", ErrInvalidMetric, BetterAsc, BetterDesc, mi.Better)
	}
	return nil
}

type metricKey struct {
	name, unit string
	greater    bool
}

// A Registry interns Metrics by (name, unit, direction) for the
// duration of a run.
//
// The zero Registry is ready to use.
type Registry struct {
	metrics map[metricKey]*Metric
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{metrics: make(map[metricKey]*Metric)}
}

// GetOrCreate validates info and returns the interned Metric for it.
// The direction token is converted to Metric.GreaterIsBetter once,
// when the Metric is first created.
func (r *Registry) GetOrCreate(info MetricInfo) (*Metric, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	return r.Intern(info.Name, info.Unit, info.Better == BetterAsc), nil
}

// Intern returns the Metric with the given identity, creating it if
// necessary. It is used when rehydrating a previously written
// document, where the direction is already a boolean.
func (r *Registry) Intern(name, unit string, greaterIsBetter bool) *Metric {
	if r.metrics == nil {
		r.metrics = make(map[metricKey]*Metric)
	}
	key := metricKey{name, unit, greaterIsBetter}
	if m, ok := r.metrics[key]; ok {
		return m
	}
	m := &Metric{Name: name, Unit: unit, GreaterIsBetter: greaterIsBetter}
	r.metrics[key] = m
	return m
}

// Len returns the number of distinct metrics seen so far.
func (r *Registry) Len() int {
	return len(r.metrics)
}
