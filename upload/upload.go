// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package upload copies measurement documents to blob storage.
package upload

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MaxNameLen is the longest object name UniqueName produces.
const MaxNameLen = 1024

// UniqueName returns the object name for the file at path in the
// upload identified by id: id, a hyphen, and the base name of path.
//
// Names longer than MaxNameLen bytes are shortened by truncating the
// base name, keeping its extension when there is room for it. The id
// prefix is always kept unless it alone exceeds the limit.
func UniqueName(path, id string) string {
	base := filepath.Base(path)
	name := id + "-" + base
	if len(name) <= MaxNameLen {
		return name
	}
	room := MaxNameLen - len(id) - 1
	if room <= 0 {
		return truncate(name, MaxNameLen)
	}
	ext := filepath.Ext(base)
	if len(ext) < room {
		stem := base[:len(base)-len(ext)]
		return id + "-" + truncate(stem, room-len(ext)) + ext
	}
	return id + "-" + truncate(base, room)
}

// truncate returns the longest prefix of s of at most n bytes that
// does not split a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// NewID returns a fresh upload ID.
func NewID() string {
	return uuid.NewString()
}

// A Bucket is a destination for uploaded objects.
type Bucket interface {
	// NewWriter returns a writer for the object name. The object is
	// complete once the writer is closed without error.
	NewWriter(ctx context.Context, name string) io.WriteCloser
}

// An Uploader copies files from Fs to Bucket.
type Uploader struct {
	Bucket Bucket

	// Fs is the filesystem files are read from. If nil, the OS
	// filesystem is used.
	Fs afero.Fs

	// Prefix is prepended to every object name.
	Prefix string

	// ID identifies the upload. If empty, Upload assigns a new one.
	ID string

	// Parallel limits the number of concurrent uploads. If <= 0,
	// all files are uploaded at once.
	Parallel int
}

// An Object describes one uploaded file.
type Object struct {
	Path string // local path
	Name string // object name in the bucket
	Size int64
}

// Upload copies every file in paths to the bucket and returns the
// uploaded objects in the order of paths. The first error cancels
// the remaining uploads.
func (u *Uploader) Upload(ctx context.Context, paths []string) ([]Object, error) {
	if u.ID == "" {
		u.ID = NewID()
	}
	fsys := u.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	log := zap.L().Named("upload")
	start := time.Now()

	objs := make([]Object, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if u.Parallel > 0 {
		g.SetLimit(u.Parallel)
	}
	for i, path := range paths {
		i, path := i, path
		objs[i] = Object{Path: path, Name: u.Prefix + UniqueName(path, u.ID)}
		g.Go(func() error {
			n, err := u.copy(ctx, fsys, path, objs[i].Name)
			if err != nil {
				return fmt.Errorf("upload %s: %w", path, err)
			}
			objs[i].Size = n
			log.Debug("Uploaded file", zap.String("path", path), zap.String("object", objs[i].Name), zap.Int64("bytes", n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Info("Upload complete", zap.String("id", u.ID), zap.Int("files", len(paths)), zap.Duration("elapsed", time.Since(start)))
	return objs, nil
}

func (u *Uploader) copy(ctx context.Context, fsys afero.Fs, path, name string) (n int64, err error) {
	f, err := fsys.Open(path)
	if err != nil {
		return 0, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	// Cancelling the writer's context discards a partial object.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w := u.Bucket.NewWriter(wctx, name)
	n, err = io.Copy(w, f)
	if err != nil {
		cancel()
		return n, multierr.Append(err, w.Close())
	}
	return n, w.Close()
}
