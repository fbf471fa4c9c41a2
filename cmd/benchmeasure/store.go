// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"sort"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"golang.org/x/benchmeasure/measdoc"
	"golang.org/x/benchmeasure/measure"
	"golang.org/x/benchmeasure/storage/db"
	_ "golang.org/x/benchmeasure/storage/db/sqlite3"
)

type storeCmd struct {
	Save   storeSaveCmd   `cmd:"" help:"Save measurement documents as one upload."`
	List   storeListCmd   `cmd:"" help:"List uploads, newest first."`
	Export storeExportCmd `cmd:"" help:"Write an upload back out as a measurement document."`
}

type dbFlags struct {
	DBDriver string `name:"db-driver" default:"sqlite3" enum:"sqlite3,mysql" help:"Database driver (sqlite3, mysql)."`
	DB       string `name:"db" required:"" help:"Database to connect to: a file name for sqlite3, a DSN for mysql." placeholder:"DSN"`
}

func (f *dbFlags) open() (*db.DB, error) {
	d, err := db.OpenSQL(f.DBDriver, f.DB)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return d, nil
}

type storeSaveCmd struct {
	dbFlags
	Label   map[string]string `help:"Label to attach to the upload, as name=value. May be repeated."`
	Replace string            `help:"Replace the contents of this upload instead of creating a new one." placeholder:"ID"`
	Files   []string          `arg:"" name:"measurement" help:"Measurement documents to save."`
}

func (c *storeSaveCmd) Run(e *env) (err error) {
	// Read everything before touching the database.
	reg := measure.NewRegistry()
	trees := make([]*measure.Tree, 0, len(c.Files))
	for _, path := range c.Files {
		tree, err := measdoc.Load(e.fsys, path, reg, 0)
		if err != nil {
			return err
		}
		trees = append(trees, tree)
	}

	d, err := c.open()
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(d))

	var u *db.Upload
	if c.Replace != "" {
		u, err = d.ReplaceUpload(e.ctx, c.Replace)
	} else {
		u, err = d.NewUpload(e.ctx)
	}
	if err != nil {
		return err
	}
	if err := u.SetLabels(c.Label); err != nil {
		return multierr.Append(err, u.Abort())
	}
	for i, tree := range trees {
		if err := u.InsertTree(tree); err != nil {
			return multierr.Append(fmt.Errorf("%s: %w", c.Files[i], err), u.Abort())
		}
	}
	if err := u.Commit(); err != nil {
		return err
	}
	zap.L().Named("store").Info("Saved upload", zap.String("id", u.ID), zap.Int("documents", len(trees)))
	fmt.Fprintln(e.stdout, u.ID)
	return nil
}

type storeListCmd struct {
	dbFlags
	Limit int      `default:"20" help:"Maximum number of uploads to list; 0 lists all."`
	Query []string `arg:"" optional:"" help:"Label filters: name:value matches a label value, a bare name matches any upload with that label."`
}

func (c *storeListCmd) Run(e *env) (err error) {
	d, err := c.open()
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(d))

	q := make([]string, len(c.Query))
	for i, word := range c.Query {
		q[i] = quoteWord(word)
	}
	infos, err := d.ListUploads(e.ctx, strings.Join(q, " "), c.Limit)
	if err != nil {
		return err
	}
	for _, info := range infos {
		names := make([]string, 0, len(info.Labels))
		for name := range info.Labels {
			names = append(names, name)
		}
		sort.Strings(names)
		labels := make([]string, len(names))
		for i, name := range names {
			labels[i] = name + "=" + info.Labels[name]
		}
		fmt.Fprintf(e.stdout, "%s\t%d tests\t%s\n", info.ID, info.Tests, strings.Join(labels, " "))
	}
	return nil
}

// quoteWord escapes word for the shell-like query syntax of
// db.ListUploads.
func quoteWord(word string) string {
	var b strings.Builder
	for _, r := range word {
		switch r {
		case '\\', '"', ' ', '\t', '\n':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

type storeExportCmd struct {
	dbFlags
	Outfile string `short:"o" default:"measurement.json" help:"File to write the measurement document to." placeholder:"FILE"`
	ID      string `arg:"" name:"upload" help:"Upload ID."`
}

func (c *storeExportCmd) Run(e *env) (err error) {
	d, err := c.open()
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(d))

	tree, err := d.LoadUpload(e.ctx, c.ID, measure.NewRegistry())
	if err != nil {
		return err
	}
	v, err := measdoc.DefaultValidator()
	if err != nil {
		return err
	}
	return measdoc.WriteFile(e.fsys, c.Outfile, tree, v)
}
