// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package measdoc reads and writes measurement documents, the JSON
// serialization of a measure.Tree.
//
// A document is an array of tests:
//
//	[
//	  {
//	    "name": "System",
//	    "tests": [ ... ],
//	    "results": [
//	      {
//	        "metric": {"name": "Duration", "unit": "ms", "greaterTheBetter": false},
//	        "values": [1.5, 1.25]
//	      }
//	    ]
//	  }
//	]
//
// Decoding is strict: unknown fields are rejected and every field is
// required. Documents are checked against a JSON Schema before they
// are written.
package measdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// A Test is the document form of a measure.Test.
type Test struct {
	Name    string   `json:"name"`
	Tests   []Test   `json:"tests"`
	Results []Result `json:"results"`
}

// A Result is the document form of a measure.Result.
type Result struct {
	Metric Metric    `json:"metric"`
	Values []float64 `json:"values"`
}

// A Metric is the document form of a measure.Metric.
type Metric struct {
	Name            string `json:"name"`
	Unit            string `json:"unit"`
	GreaterIsBetter bool   `json:"greaterTheBetter"`
}

// Decode reads a whole document from r.
func Decode(r io.Reader) ([]Test, error) {
	d := json.NewDecoder(r)
	d.DisallowUnknownFields()
	var tests []Test
	if err := d.Decode(&tests); err != nil {
		return nil, fmt.Errorf("decoding measurement document: %w", err)
	}
	if tests == nil {
		return nil, fmt.Errorf("decoding measurement document: top level must be an array")
	}
	if d.More() {
		return nil, fmt.Errorf("decoding measurement document: trailing data after array")
	}
	return tests, nil
}

// Encode returns the indented JSON encoding of tests.
func Encode(tests []Test) ([]byte, error) {
	if tests == nil {
		tests = []Test{}
	}
	data, err := json.MarshalIndent(tests, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// MarshalJSON encodes t with empty rather than null lists.
func (t Test) MarshalJSON() ([]byte, error) {
	type test Test
	if t.Tests == nil {
		t.Tests = []Test{}
	}
	if t.Results == nil {
		t.Results = []Result{}
	}
	return json.Marshal(test(t))
}

func (r Result) MarshalJSON() ([]byte, error) {
	type result Result
	if r.Values == nil {
		r.Values = []float64{}
	}
	return json.Marshal(result(r))
}

func (t *Test) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name    *string   `json:"name"`
		Tests   *[]Test   `json:"tests"`
		Results *[]Result `json:"results"`
	}
	if err := strict(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Name == nil:
		return missing("test", "name")
	case raw.Tests == nil:
		return missing(fmt.Sprintf("test %q", *raw.Name), "tests")
	case raw.Results == nil:
		return missing(fmt.Sprintf("test %q", *raw.Name), "results")
	}
	*t = Test{Name: *raw.Name, Tests: *raw.Tests, Results: *raw.Results}
	return nil
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var raw struct {
		Metric *Metric     `json:"metric"`
		Values *[]float64 `json:"values"`
	}
	if err := strict(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Metric == nil:
		return missing("result", "metric")
	case raw.Values == nil:
		return missing("result", "values")
	}
	*r = Result{Metric: *raw.Metric, Values: *raw.Values}
	return nil
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name            *string `json:"name"`
		Unit            *string `json:"unit"`
		GreaterIsBetter *bool   `json:"greaterTheBetter"`
	}
	if err := strict(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Name == nil:
		return missing("metric", "name")
	case raw.Unit == nil:
		return missing("metric", "unit")
	case raw.GreaterIsBetter == nil:
		return missing("metric", "greaterTheBetter")
	}
	*m = Metric{Name: *raw.Name, Unit: *raw.Unit, GreaterIsBetter: *raw.GreaterIsBetter}
	return nil
}

// strict decodes a single JSON value, rejecting unknown fields. The
// standard decoder does not carry DisallowUnknownFields into custom
// unmarshalers, so each level applies it itself.
func strict(data []byte, v any) error {
	d := json.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	return d.Decode(v)
}

func missing(what, field string) error {
	return fmt.Errorf("%s: missing required field %q", what, field)
}
