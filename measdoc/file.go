// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measdoc

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"golang.org/x/benchmeasure/measure"
)

// Load reads the document at path and rebuilds its tree, interning
// metrics in reg. See ToTree for the checks applied.
func Load(fsys afero.Fs, path string, reg *measure.Registry, max int) (tree *measure.Tree, err error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	tests, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tree, err = ToTree(tests, reg, max)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	zap.L().Named("measdoc").Debug("Loaded measurement document",
		zap.String("path", path), zap.Int("tests", len(tree.Tests)))
	return tree, nil
}

// WriteFile encodes tree, validates the encoding with v and writes it
// to path. The document is written to a temporary file in the same
// directory and renamed over path, so path is either left untouched
// or replaced by a complete, valid document.
func WriteFile(fsys afero.Fs, path string, tree *measure.Tree, v *Validator) error {
	data, err := Encode(FromTree(tree))
	if err != nil {
		return fmt.Errorf("encoding measurement document: %w", err)
	}
	if err := v.Validate(data); err != nil {
		return err
	}
	return writeAtomic(fsys, path, data)
}

func writeAtomic(fsys afero.Fs, path string, data []byte) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := afero.TempFile(fsys, dir, "."+base+".tmp*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, fsys.Remove(tmp.Name()))
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return multierr.Append(fmt.Errorf("writing %s: %w", path, err), tmp.Close())
	}
	if err := tmp.Sync(); err != nil {
		return multierr.Append(fmt.Errorf("writing %s: %w", path, err), tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := fsys.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	zap.L().Named("measdoc").Debug("Wrote measurement document",
		zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}
