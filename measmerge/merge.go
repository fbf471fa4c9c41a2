// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package measmerge merges benchmark output files into a measurement
// document.
//
// Run is the whole pipeline: it optionally loads the document already
// at the output path, merges every input file into it in order, and
// writes the validated result back. Any failure leaves the output
// path untouched.
package measmerge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"golang.org/x/benchmeasure/measfmt"
	"golang.org/x/benchmeasure/measure"
)

// ErrNoTests is returned by Run when the merged tree is empty.
var ErrNoTests = errors.New("There are no tests in the input files.")

// Validate checks a triple produced by a reader before it is merged.
func Validate(t *measure.Triple) error {
	for _, name := range t.Path {
		if !measure.ValidName(name) {
			return fmt.Errorf("%w: %s", measure.ErrInvalidName, t)
		}
	}
	if len(t.Path) == 0 {
		return fmt.Errorf("%w: %s", measure.ErrInvalidName, t)
	}
	if !measure.IsNumber(t.Value) {
		return fmt.Errorf("%w: %s", measure.ErrNotNumber, t)
	}
	if err := t.Metric.Validate(); err != nil {
		return fmt.Errorf("%w: %s", err, t)
	}
	return nil
}

// A Merger folds input files into a tree.
type Merger struct {
	// Format reads the input files.
	Format measfmt.Format

	// Fs is the filesystem inputs are read from. If nil, the OS
	// filesystem is used.
	Fs afero.Fs

	// Registry interns metrics. It must be shared with anything
	// that built the tree being merged into.
	Registry *measure.Registry

	// Acc enforces the per-result sample limit.
	Acc measure.Accumulator

	// DropFirst discards the first sample of every (test, metric)
	// pair first seen while merging.
	DropFirst bool

	log *zap.Logger
}

// checkEvery is how many triples are merged between checks for
// cancellation.
const checkEvery = 1024

// Merge reads the file at path and adds its samples to tree.
func (m *Merger) Merge(ctx context.Context, tree *measure.Tree, path string) (err error) {
	if m.Registry == nil {
		m.Registry = measure.NewRegistry()
	}
	if m.log == nil {
		m.log = zap.L().Named("measmerge")
	}
	fsys := m.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	ix, err := measure.BuildIndex(tree)
	if err != nil {
		return err
	}
	f, err := measfmt.Open(fsys, m.Format, path)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	n := 0
	for f.Scan() {
		if n++; n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		t := f.Triple()
		if err := Validate(t); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		metric, err := m.Registry.GetOrCreate(t.Metric)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		value, err := measure.ParseValue(t.Value)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		test := ix.ResolveOrCreate(tree, t.Path)
		if err := m.Acc.Insert(test, metric, value, m.DropFirst); err != nil {
			return fmt.Errorf("%s: tests %q: %w", path, strings.Join(t.Path, "/"), err)
		}
	}
	if err := f.Err(); err != nil {
		return err
	}
	m.log.Debug("Merged input file",
		zap.String("path", path), zap.String("format", m.Format.Name()),
		zap.Int("samples", n), zap.Int("tests", ix.Len()))
	return nil
}
