// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measfmt

import (
	"encoding/csv"
	"errors"
	"io"

	"golang.org/x/benchmeasure/measure"
)

// CSV is a comma-separated format with one sample per row. The last
// column of a row is the sample value and the preceding columns are
// the test path. Rows may have different numbers of columns. All
// samples share one metric.
type CSV struct {
	Metric string
	Unit   string
	Better string

	// HasHeader causes the first row to be skipped, whatever it
	// contains.
	HasHeader bool
}

func (CSV) Name() string { return "csv" }

func (f CSV) NewReader(r io.Reader, fileName string) Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	return &csvReader{
		r:        cr,
		fileName: fileName,
		metric:   metricInfo(f.Metric, f.Unit, f.Better),
		header:   f.HasHeader,
	}
}

type csvReader struct {
	r        *csv.Reader
	fileName string
	metric   measure.MetricInfo
	header   bool

	triple measure.Triple
	err    error
}

func (r *csvReader) Scan() bool {
	if r.err != nil {
		return false
	}
	if r.header {
		r.header = false
		if _, err := r.r.Read(); err != nil {
			r.err = r.wrap(err)
			return false
		}
	}
	rec, err := r.r.Read()
	if err != nil {
		r.err = r.wrap(err)
		return false
	}
	if len(rec) < 2 {
		line, _ := r.r.FieldPos(0)
		r.err = &SyntaxError{FileName: r.fileName, Line: line, Msg: "row must have a test name and a value"}
		return false
	}
	n := len(rec) - 1
	r.triple = measure.Triple{Path: rec[:n], Value: rec[n], Metric: r.metric}
	return true
}

func (r *csvReader) wrap(err error) error {
	if err == io.EOF {
		return err
	}
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &SyntaxError{FileName: r.fileName, Line: perr.Line, Msg: perr.Err.Error()}
	}
	return err
}

func (r *csvReader) Triple() *measure.Triple { return &r.triple }

func (r *csvReader) Err() error {
	if r.err == io.EOF {
		return nil
	}
	return r.err
}
