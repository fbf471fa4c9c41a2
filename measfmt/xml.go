// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measfmt

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// xmlStream is a pull parser over an XML document that tracks the
// slash-separated path of local element names from the root to the
// current element. It never builds a tree: each token is discarded
// once the caller has looked at it.
type xmlStream struct {
	d        *xml.Decoder
	fileName string

	path string
	// ends[i] is the length of path before the i'th open element
	// was pushed.
	ends []int
	// pop is set after an end element so the path is trimmed on
	// the following call to next.
	pop bool
}

func newXMLStream(r io.Reader, fileName string) *xmlStream {
	d := xml.NewDecoder(r)
	// Inputs are produced by .NET tooling and may declare
	// encodings other than UTF-8; treat them as raw bytes.
	d.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	return &xmlStream{d: d, fileName: fileName}
}

// next returns the next start element, end element or character data
// token. For an end element, path still names the closed element until
// the following call to next. next returns io.EOF at the end of the
// document.
func (s *xmlStream) next() (xml.Token, error) {
	if s.pop {
		s.pop = false
		n := len(s.ends) - 1
		s.path, s.ends = s.path[:s.ends[n]], s.ends[:n]
	}
	for {
		tok, err := s.d.Token()
		if err != nil {
			if err == io.EOF {
				if len(s.ends) > 0 {
					return nil, s.errorf("unexpected end of document inside %s", s.path)
				}
				return nil, io.EOF
			}
			return nil, s.wrap(err)
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			s.ends = append(s.ends, len(s.path))
			if s.path != "" {
				s.path += "/"
			}
			s.path += tok.Name.Local
			return tok, nil
		case xml.EndElement:
			s.pop = true
			return tok, nil
		case xml.CharData:
			return tok, nil
		}
	}
}

// skip discards the rest of the element whose start was just returned
// by next.
func (s *xmlStream) skip() error {
	if err := s.d.Skip(); err != nil {
		return s.wrap(err)
	}
	s.pop = true
	return nil
}

// text reads character data up to the end of the current element and
// returns it. The element must not have child elements.
func (s *xmlStream) text() (string, error) {
	var buf bytes.Buffer
	for {
		tok, err := s.next()
		if err != nil {
			return "", err
		}
		switch tok := tok.(type) {
		case xml.CharData:
			buf.Write(tok)
		case xml.StartElement:
			return "", s.errorf("unexpected element <%s> in text of %s", tok.Name.Local, parentPath(s.path))
		case xml.EndElement:
			return buf.String(), nil
		}
	}
}

func (s *xmlStream) line() int {
	line, _ := s.d.InputPos()
	return line
}

func (s *xmlStream) errorf(format string, args ...any) error {
	return &SyntaxError{FileName: s.fileName, Line: s.line(), Msg: fmt.Sprintf(format, args...)}
}

func (s *xmlStream) wrap(err error) error {
	if serr, ok := err.(*xml.SyntaxError); ok {
		return &SyntaxError{FileName: s.fileName, Line: serr.Line, Msg: serr.Msg}
	}
	return &SyntaxError{FileName: s.fileName, Line: s.line(), Msg: err.Error()}
}

func parentPath(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return ""
}

// attr returns the value of the attribute with the given local name.
func attr(se xml.StartElement, name string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// xmlMetric is a metric declared in a performance/metrics element.
type xmlMetric struct {
	id          string
	displayName string
	unit        string
}

// perfSection reads the "performance" subtree shared by the xUnit
// formats: a metrics element declaring metric ids followed by
// iteration elements whose attributes are keyed by those ids.
type perfSection struct {
	metrics []xmlMetric
}

func (p *perfSection) reset() {
	p.metrics = p.metrics[:0]
}

func (p *perfSection) lookup(id string) (xmlMetric, bool) {
	for _, m := range p.metrics {
		if m.id == id {
			return m, true
		}
	}
	return xmlMetric{}, false
}

// declare records the metric declared by se, a child of the metrics
// element.
func (p *perfSection) declare(se xml.StartElement) {
	m := xmlMetric{id: se.Name.Local}
	m.displayName, _ = attr(se, "displayName")
	m.unit, _ = attr(se, "unit")
	if m.displayName == "" {
		m.displayName = m.id
	}
	// A repeated id replaces the earlier declaration.
	for i := range p.metrics {
		if p.metrics[i].id == m.id {
			p.metrics[i] = m
			return
		}
	}
	p.metrics = append(p.metrics, m)
}

// emit queues one triple per attribute of the iteration element se
// that names a declared metric, in attribute order.
func (p *perfSection) emit(q *tripleQueue, path []string, se xml.StartElement, better string) {
	for _, a := range se.Attr {
		m, ok := p.lookup(a.Name.Local)
		if !ok {
			continue
		}
		q.push(path, a.Value, metricInfo(m.displayName, m.unit, better))
	}
}
