// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measfmt

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/benchmeasure/measure"
)

// BenchmarkDotNet is the structured JSON report written by
// BenchmarkDotNet's full JSON exporter. Each benchmark reports the
// per-iteration workload durations and any custom metrics it
// declares.
type BenchmarkDotNet struct{}

func (BenchmarkDotNet) Name() string { return "structured-benchmark-json" }

func (BenchmarkDotNet) NewReader(r io.Reader, fileName string) Reader {
	return &bdnReader{s: newJSONArrayStream(r, fileName, "Benchmarks")}
}

type bdnBenchmark struct {
	Namespace    string
	Type         string
	Method       string
	FullName     string
	Measurements []bdnMeasurement
	Metrics      []bdnMetric
}

type bdnMeasurement struct {
	IterationMode  string
	IterationStage string
	LaunchIndex    int
	IterationIndex int
	Operations     int64
	Nanoseconds    float64
}

type bdnMetric struct {
	Value      json.Number
	Descriptor struct {
		Id                  string
		DisplayName         string
		Unit                string
		TheGreaterTheBetter bool
	}
}

const (
	bdnDuration       = "Duration"
	bdnSingleDuration = "Duration of single invocation"
)

// Hardware counter metrics whose reported unit is not useful.
var bdnCountMetrics = map[string]bool{
	"BranchMispredictions": true,
	"CacheMisses":          true,
	"InstructionRetired":   true,
}

type bdnReader struct {
	s *jsonArrayStream

	bench bdnBenchmark
	q     tripleQueue
	err   error
}

func (r *bdnReader) Scan() bool {
	if r.q.advance() {
		return true
	}
	if r.err != nil {
		return false
	}
	for !r.q.ready() {
		r.bench = bdnBenchmark{}
		if err := r.s.next(&r.bench); err != nil {
			r.err = err
			return false
		}
		if err := r.emit(&r.bench); err != nil {
			r.err = err
			return false
		}
	}
	return true
}

func (r *bdnReader) emit(b *bdnBenchmark) error {
	if b.Type == "" {
		return r.s.errorf("benchmark %q has no Type", b.FullName)
	}
	path := bdnPath(b)
	if path[len(path)-1] == "" {
		return r.s.errorf("benchmark of type %q has no Method", b.Type)
	}

	var ms []bdnMeasurement
	for _, m := range b.Measurements {
		if m.IterationMode == "Workload" && m.IterationStage == "Result" {
			ms = append(ms, m)
		}
	}
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].LaunchIndex != ms[j].LaunchIndex {
			return ms[i].LaunchIndex < ms[j].LaunchIndex
		}
		return ms[i].IterationIndex < ms[j].IterationIndex
	})
	for _, m := range ms {
		if m.Operations <= 0 {
			return r.s.errorf("benchmark %q: workload measurement with %d operations", strings.Join(path, "."), m.Operations)
		}
		r.q.push(path, formatFloat(m.Nanoseconds/1e6), metricInfo(bdnDuration, "ms", measure.BetterDesc))
		r.q.push(path, formatFloat(m.Nanoseconds/float64(m.Operations)), metricInfo(bdnSingleDuration, "ns", measure.BetterDesc))
	}

	for _, m := range b.Metrics {
		d := m.Descriptor
		unit := d.Unit
		if bdnCountMetrics[d.Id] {
			unit = "Count"
		}
		if unit == "" {
			continue
		}
		name := d.DisplayName
		if name == "" {
			name = d.Id
		}
		better := measure.BetterDesc
		if d.TheGreaterTheBetter {
			better = measure.BetterAsc
		}
		r.q.push(path, m.Value.String(), metricInfo(name, unit, better))
	}
	return nil
}

// bdnPath returns the test path of b: its namespace split on '.', its
// type, and its method name, which may carry parameters and is not
// split.
func bdnPath(b *bdnBenchmark) []string {
	var path []string
	prefix := b.Type + "."
	if b.Namespace != "" {
		path = strings.Split(b.Namespace, ".")
		prefix = b.Namespace + "." + prefix
	}
	path = append(path, b.Type)
	leaf, ok := strings.CutPrefix(b.FullName, prefix)
	if !ok || leaf == "" {
		leaf = b.Method
	}
	return append(path, leaf)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (r *bdnReader) Triple() *measure.Triple { return r.q.current() }

func (r *bdnReader) Err() error {
	if r.err == io.EOF {
		return nil
	}
	return r.err
}
