// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measfmt

import (
	"encoding/xml"
	"io"
	"strings"

	"golang.org/x/benchmeasure/measure"
)

// XUnit is the xunit-performance XML format:
//
//	<assemblies><assembly><collection>
//	  <test type="Ns.Type" name="Ns.Type.Method">
//	    <performance>
//	      <metrics><Duration displayName="Duration" unit="msec"/></metrics>
//	      <iterations><iteration index="0" Duration="1.5"/></iterations>
//	    </performance>
//	  </test>
//	</collection></assembly></assemblies>
//
// A test's path is its type split on '.' followed by its name with
// the type prefix removed.
type XUnit struct {
	// Better is the direction ("asc" or "desc") of every metric.
	Better string
}

func (XUnit) Name() string { return "xunit" }

func (f XUnit) NewReader(r io.Reader, fileName string) Reader {
	return &xunitReader{s: newXMLStream(r, fileName), better: f.Better}
}

const (
	xunitTest      = "assemblies/assembly/collection/test"
	xunitMetrics   = xunitTest + "/performance/metrics"
	xunitIteration = xunitTest + "/performance/iterations/iteration"
)

type xunitReader struct {
	s      *xmlStream
	better string

	path []string
	perf perfSection

	q   tripleQueue
	err error
}

func (r *xunitReader) Scan() bool {
	if r.q.advance() {
		return true
	}
	if r.err != nil {
		return false
	}
	for !r.q.ready() {
		tok, err := r.s.next()
		if err != nil {
			r.err = err
			return false
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			switch {
			case r.s.path == xunitTest:
				if err := r.startTest(tok); err != nil {
					r.err = err
					return false
				}
			case parentPath(r.s.path) == xunitMetrics:
				r.perf.declare(tok)
			case r.s.path == xunitIteration:
				r.perf.emit(&r.q, r.path, tok, r.better)
			}
		case xml.EndElement:
			if r.s.path == xunitTest {
				r.path = nil
			}
		}
	}
	return true
}

func (r *xunitReader) startTest(se xml.StartElement) error {
	typ, ok := attr(se, "type")
	if !ok {
		return r.s.errorf("test element has no type attribute")
	}
	name, ok := attr(se, "name")
	if !ok {
		return r.s.errorf("test element has no name attribute")
	}
	r.perf.reset()
	// A fresh slice per test: queued triples from the previous test
	// may still reference the old one.
	r.path = append(strings.Split(typ, "."), strings.TrimPrefix(name, typ+"."))
	return nil
}

func (r *xunitReader) Triple() *measure.Triple { return r.q.current() }

func (r *xunitReader) Err() error {
	if r.err == io.EOF {
		return nil
	}
	return r.err
}

func metricInfo(name, unit, better string) measure.MetricInfo {
	return measure.MetricInfo{Name: name, Unit: unit, Better: better}
}
