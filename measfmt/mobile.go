// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measfmt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/benchmeasure/measure"
)

// Mobile is the JSON format written by the mobile benchmarker:
//
//	{"runs": [
//	  {"benchmark": {"name": "binarytrees"},
//	   "metrics": {"time": 1234.5, "instructions": 5012345678}}
//	]}
//
// Metric codes are translated to display names and units through a
// fixed table.
type Mobile struct{}

func (Mobile) Name() string { return "mobile-benchmark-json" }

func (Mobile) NewReader(r io.Reader, fileName string) Reader {
	return &mobileReader{s: newJSONArrayStream(r, fileName, "runs")}
}

// mobileMetrics maps metric codes to their descriptors.
var mobileMetrics = map[string]measure.MetricInfo{
	"time":                {Name: "Execution Time", Unit: "ms", Better: measure.BetterDesc},
	"instructions":        {Name: "Instructions", Unit: "Count", Better: measure.BetterDesc},
	"memory-integral":     {Name: "Memory Integral", Unit: "MB*Giga-instructions", Better: measure.BetterDesc},
	"cache-miss":          {Name: "Cache Miss Rate", Unit: "%", Better: measure.BetterDesc},
	"branch-mispred":      {Name: "Branch Misprediction Rate", Unit: "%", Better: measure.BetterDesc},
	"jit-time":            {Name: "JIT Time", Unit: "ms", Better: measure.BetterDesc},
	"code-size":           {Name: "Code Size", Unit: "bytes", Better: measure.BetterDesc},
	"gc-count":            {Name: "GC Count", Unit: "Count", Better: measure.BetterDesc},
	"max-rss":             {Name: "Peak Working Set", Unit: "bytes", Better: measure.BetterDesc},
	"startup-time":        {Name: "Startup Time", Unit: "ms", Better: measure.BetterDesc},
	"requests-per-second": {Name: "Requests Per Second", Unit: "Count", Better: measure.BetterAsc},
}

// mobileIgnored lists metric codes that carry structured or per-event
// data rather than a single sample.
var mobileIgnored = map[string]bool{
	"cachegrind":   true,
	"pause-starts": true,
	"pause-times":  true,
}

type mobileRun struct {
	Benchmark struct {
		Name string `json:"name"`
	} `json:"benchmark"`
	Metrics orderedMetrics `json:"metrics"`
}

type namedValue struct {
	name  string
	value json.RawMessage
}

// orderedMetrics is a JSON object decoded with its members in
// document order.
type orderedMetrics []namedValue

func (m *orderedMetrics) UnmarshalJSON(data []byte) error {
	d := json.NewDecoder(bytes.NewReader(data))
	tok, err := d.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if tok != json.Delim('{') {
		return fmt.Errorf("metrics must be an object")
	}
	for d.More() {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		var nv namedValue
		nv.name, _ = tok.(string)
		if err := d.Decode(&nv.value); err != nil {
			return err
		}
		*m = append(*m, nv)
	}
	_, err = d.Token()
	return err
}

type mobileReader struct {
	s *jsonArrayStream

	run mobileRun
	q   tripleQueue
	err error
}

func (r *mobileReader) Scan() bool {
	if r.q.advance() {
		return true
	}
	if r.err != nil {
		return false
	}
	for !r.q.ready() {
		r.run = mobileRun{}
		if err := r.s.next(&r.run); err != nil {
			r.err = err
			return false
		}
		if err := r.emit(&r.run); err != nil {
			r.err = err
			return false
		}
	}
	return true
}

func (r *mobileReader) emit(run *mobileRun) error {
	if run.Benchmark.Name == "" {
		return r.s.errorf("run has no benchmark name")
	}
	path := []string{run.Benchmark.Name}
	for _, nv := range run.Metrics {
		if mobileIgnored[nv.name] {
			continue
		}
		info, ok := mobileMetrics[nv.name]
		if !ok {
			return r.s.errorf("benchmark %q: unknown metric %q", run.Benchmark.Name, nv.name)
		}
		var v json.Number
		if err := json.Unmarshal(nv.value, &v); err != nil {
			return r.s.errorf("benchmark %q: metric %q is not a number", run.Benchmark.Name, nv.name)
		}
		r.q.push(path, v.String(), info)
	}
	return nil
}

func (r *mobileReader) Triple() *measure.Triple { return r.q.current() }

func (r *mobileReader) Err() error {
	if r.err == io.EOF {
		return nil
	}
	return r.err
}
