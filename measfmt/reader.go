// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package measfmt reads benchmark output files in the formats
// understood by benchmeasure and translates them into measurement
// triples.
//
// Every format is read as a stream: XML inputs are consumed token by
// token and JSON inputs one array element at a time, so memory use is
// bounded by the size of a single test rather than by the size of the
// file. Readers do no validation beyond what is needed to understand
// the format; triples are validated by the merge orchestrator.
package measfmt

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"golang.org/x/benchmeasure/measure"
)

// A Reader reads measurement triples from one input file.
//
// Its API is modeled on bufio.Scanner. A Reader is single-pass and
// cannot be restarted. To minimize allocation, a Reader retains
// ownership of the Triples it returns; a caller should copy anything
// it needs to retain past the next call to Scan.
type Reader interface {
	// Scan advances to the next triple and reports whether there
	// was one. It returns false at the end of the input or on the
	// first error, in which case Err reports the error.
	Scan() bool

	// Triple returns the triple read by the last call to Scan.
	Triple() *measure.Triple

	// Err returns the error that stopped Scan, or nil if the input
	// was read to completion.
	Err() error
}

// A Format constructs Readers for one input format. Format values
// carry the format-specific options.
type Format interface {
	// Name returns the command-line name of the format.
	Name() string

	// NewReader returns a Reader for r. fileName is used in error
	// messages; it is purely diagnostic.
	NewReader(r io.Reader, fileName string) Reader
}

// A SyntaxError reports malformed input at a position in a file.
type SyntaxError struct {
	FileName string
	Line     int // 0 if unknown
	Msg      string
}

// Pos returns the position of the error.
func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.FileName, e.Msg)
}

// ErrNotExist is returned by Open for a missing input file.
var ErrNotExist = errors.New("input file does not exist")

// A File is a Reader over an open input file.
type File struct {
	Reader

	// Path is the path the file was opened with.
	Path string

	f afero.File
}

// Open opens path on fsys and returns a Reader for it in the given
// format. The caller must Close the returned File.
func Open(fsys afero.Fs, format Format, path string) (*File, error) {
	f, err := fsys.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s input %q", ErrNotExist, format.Name(), path)
		}
		return nil, err
	}
	fi, err := f.Stat()
	if err == nil && fi.IsDir() {
		err = fmt.Errorf("input %q is a directory", path)
	}
	if err != nil {
		return nil, multierr.Append(err, f.Close())
	}
	return &File{Reader: format.NewReader(f, path), Path: path, f: f}, nil
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.f.Close()
}

// tripleQueue holds the triples produced by one input element so
// readers can return them one per Scan. qPos is the index of the
// current triple; it is tracked explicitly rather than slicing q so
// that q's storage is reused once drained.
type tripleQueue struct {
	q    []measure.Triple
	qPos int
}

// advance moves to the next queued triple, if any. If the queue is
// drained it is emptied for reuse and advance returns false.
func (q *tripleQueue) advance() bool {
	if q.qPos+1 < len(q.q) {
		q.qPos++
		return true
	}
	q.qPos = 0
	q.q = q.q[:0]
	return false
}

func (q *tripleQueue) push(path []string, value string, metric measure.MetricInfo) {
	q.q = append(q.q, measure.Triple{Path: path, Value: value, Metric: metric})
}

func (q *tripleQueue) ready() bool {
	return len(q.q) > 0
}

var noTriple = &measure.Triple{}

func (q *tripleQueue) current() *measure.Triple {
	if q.qPos >= len(q.q) {
		// Scan has not been called or returned false.
		return noTriple
	}
	return &q.q[q.qPos]
}
