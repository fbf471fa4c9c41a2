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

// ScenarioXUnit is the scenario variant of xunit-performance XML:
//
//	<ScenarioBenchmark Namespace="Ns" Name="Scenario">
//	  <Tests>
//	    <Test Namespace="Sub" Name="Step">
//	      <Performance>
//	        <metrics>...</metrics>
//	        <iterations><iteration .../></iterations>
//	      </Performance>
//	    </Test>
//	  </Tests>
//	</ScenarioBenchmark>
//
// A test's path is the benchmark namespace, the benchmark name, the
// test namespace and the test name. Namespaces are split on Separator
// when it is set and omitted when blank.
type ScenarioXUnit struct {
	Better string

	// Separator splits namespaces into path components. If empty,
	// a namespace is a single component.
	Separator string
}

func (ScenarioXUnit) Name() string { return "scenario-xunit" }

func (f ScenarioXUnit) NewReader(r io.Reader, fileName string) Reader {
	return &scenarioReader{s: newXMLStream(r, fileName), f: f}
}

const (
	scenarioRoot      = "ScenarioBenchmark"
	scenarioTest      = scenarioRoot + "/Tests/Test"
	scenarioMetrics   = scenarioTest + "/Performance/metrics"
	scenarioIteration = scenarioTest + "/Performance/iterations/iteration"
)

type scenarioReader struct {
	s *xmlStream
	f ScenarioXUnit

	root []string // namespace and name of the ScenarioBenchmark
	path []string
	perf perfSection

	q   tripleQueue
	err error
}

func (f ScenarioXUnit) split(ns string) []string {
	if strings.TrimSpace(ns) == "" {
		return nil
	}
	if f.Separator == "" {
		return []string{ns}
	}
	return strings.Split(ns, f.Separator)
}

func (r *scenarioReader) Scan() bool {
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
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch {
		case r.s.path == scenarioRoot:
			name, _ := attr(se, "Name")
			if name == "" {
				r.err = r.s.errorf("ScenarioBenchmark has no Name attribute")
				return false
			}
			ns, _ := attr(se, "Namespace")
			r.root = append(r.f.split(ns), name)
		case r.s.path == scenarioTest:
			ns, _ := attr(se, "Namespace")
			name, _ := attr(se, "Name")
			path := make([]string, 0, len(r.root)+2)
			path = append(path, r.root...)
			path = append(path, r.f.split(ns)...)
			r.path = append(path, name)
			r.perf.reset()
		case parentPath(r.s.path) == scenarioMetrics:
			r.perf.declare(se)
		case r.s.path == scenarioIteration:
			r.perf.emit(&r.q, r.path, se, r.f.Better)
		}
	}
	return true
}

func (r *scenarioReader) Triple() *measure.Triple { return r.q.current() }

func (r *scenarioReader) Err() error {
	if r.err == io.EOF {
		return nil
	}
	return r.err
}
