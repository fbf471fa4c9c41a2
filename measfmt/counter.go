// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measfmt

import (
	"encoding/xml"
	"io"

	"golang.org/x/benchmeasure/measure"
)

// Counters is the scenario-counter XML format:
//
//	<ScenarioResults>
//	  <ScenarioResult Name="Startup">
//	    <CounterResults>
//	      <CounterResult Name="Elapsed Time" Units="ms">12.5</CounterResult>
//	    </CounterResults>
//	  </ScenarioResult>
//	</ScenarioResults>
//
// In the legacy layout counters sit directly under ScenarioResult and
// carry their value in an attribute:
//
//	<CounterResult Name="Elapsed Time" Units="ms" Value="12.5"/>
//
// Each counter sample is reported under the single-component path
// of its scenario. The aggregate scenario named "Total" is skipped.
type Counters struct {
	Better string

	// Counters, if non-empty, restricts the output to counters with
	// these names.
	Counters []string

	// Legacy selects the legacy layout.
	Legacy bool
}

// TotalScenario is the name of the aggregate scenario that counter
// readers skip.
const TotalScenario = "Total"

func (f Counters) Name() string {
	if f.Legacy {
		return "legacy-counter-xml"
	}
	return "scenario-counter-xml"
}

func (f Counters) NewReader(r io.Reader, fileName string) Reader {
	cr := &counterReader{s: newXMLStream(r, fileName), f: f}
	if f.Legacy {
		cr.counter = counterScenario + "/CounterResult"
	} else {
		cr.counter = counterScenario + "/CounterResults/CounterResult"
	}
	if len(f.Counters) > 0 {
		cr.want = make(map[string]bool, len(f.Counters))
		for _, c := range f.Counters {
			cr.want[c] = true
		}
	}
	return cr
}

const counterScenario = "ScenarioResults/ScenarioResult"

type counterReader struct {
	s       *xmlStream
	f       Counters
	counter string
	want    map[string]bool

	path []string

	q   tripleQueue
	err error
}

func (r *counterReader) Scan() bool {
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
		switch r.s.path {
		case counterScenario:
			name, ok := attr(se, "Name")
			if !ok {
				r.err = r.s.errorf("ScenarioResult has no Name attribute")
				return false
			}
			if name == TotalScenario {
				if err := r.s.skip(); err != nil {
					r.err = err
					return false
				}
				continue
			}
			r.path = []string{name}
		case r.counter:
			if err := r.counterResult(se); err != nil {
				r.err = err
				return false
			}
		}
	}
	return true
}

func (r *counterReader) counterResult(se xml.StartElement) error {
	name, _ := attr(se, "Name")
	units, _ := attr(se, "Units")
	if r.want != nil && !r.want[name] {
		return r.s.skip()
	}
	var value string
	if r.f.Legacy {
		v, ok := attr(se, "Value")
		if !ok {
			return r.s.errorf("CounterResult %q has no Value attribute", name)
		}
		value = v
		if err := r.s.skip(); err != nil {
			return err
		}
	} else {
		v, err := r.s.text()
		if err != nil {
			return err
		}
		value = v
	}
	r.q.push(r.path, value, metricInfo(name, units, r.f.Better))
	return nil
}

func (r *counterReader) Triple() *measure.Triple { return r.q.current() }

func (r *counterReader) Err() error {
	if r.err == io.EOF {
		return nil
	}
	return r.err
}
