// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measmerge

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"golang.org/x/benchmeasure/measdoc"
	"golang.org/x/benchmeasure/measfmt"
	"golang.org/x/benchmeasure/measure"
)

// DefaultOutfile is the default output path.
const DefaultOutfile = "measurement.json"

// Options configures Run.
type Options struct {
	// Files are the input files, merged in order.
	Files []string

	// Format reads the input files.
	Format measfmt.Format

	// Outfile is the output path. If empty, DefaultOutfile is used.
	Outfile string

	// Append merges into the document already at Outfile, if any.
	Append bool

	// DropFirst discards the first sample of each new (test, metric)
	// pair.
	DropFirst bool

	// MaxValues limits the number of samples per result. If zero,
	// measure.DefaultMaxValues is used.
	MaxValues int

	// Schema is the path of the schema used to validate the output.
	// If empty, the built-in schema set is used.
	Schema string
}

// Run merges opts.Files and writes the result to opts.Outfile. It
// returns the merged tree.
func Run(ctx context.Context, fsys afero.Fs, opts Options) (*measure.Tree, error) {
	log := zap.L().Named("measmerge")
	if opts.Format == nil {
		return nil, fmt.Errorf("no input format")
	}
	if len(opts.Files) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	outfile := opts.Outfile
	if outfile == "" {
		outfile = DefaultOutfile
	}

	// Compile the schema first so a bad schema fails before any
	// input is read.
	v, err := measdoc.NewValidator(fsys, opts.Schema)
	if err != nil {
		return nil, err
	}

	m := &Merger{
		Format:    opts.Format,
		Fs:        fsys,
		Registry:  measure.NewRegistry(),
		Acc:       measure.Accumulator{Max: opts.MaxValues},
		DropFirst: opts.DropFirst,
		log:       log,
	}

	tree := &measure.Tree{}
	if opts.Append {
		exists, err := afero.Exists(fsys, outfile)
		if err != nil {
			return nil, err
		}
		if exists {
			if tree, err = measdoc.Load(fsys, outfile, m.Registry, m.Acc.Limit()); err != nil {
				return nil, err
			}
			log.Info("Appending to existing measurement document", zap.String("path", outfile))
		}
	}

	for _, path := range opts.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := m.Merge(ctx, tree, path); err != nil {
			return nil, err
		}
	}
	if tree.Empty() {
		return nil, ErrNoTests
	}

	if err := measdoc.WriteFile(fsys, outfile, tree, v); err != nil {
		return nil, err
	}
	log.Info("Wrote measurement document",
		zap.String("path", outfile), zap.Int("inputs", len(opts.Files)), zap.Int("metrics", m.Registry.Len()))
	return tree, nil
}
