// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/multierr"

	"golang.org/x/benchmeasure/measure"
)

// LoadUpload reconstructs the tree stored under id, interning its
// metrics in reg. If several trees were inserted into the upload they
// are merged: tests with the same path become one test and their
// values for the same metric are concatenated in insertion order.
func (db *DB) LoadUpload(ctx context.Context, id string, reg *measure.Registry) (*measure.Tree, error) {
	var found int
	if err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Uploads WHERE UploadID = ?", id).Scan(&found); err != nil {
		return nil, err
	}
	if found == 0 {
		return nil, fmt.Errorf("%w %q", ErrUnknownUpload, id)
	}

	tree := &measure.Tree{}
	paths := make(map[int64][]string)
	tests := make(map[int64]*measure.Test)
	err := db.scan(ctx, "SELECT TestID, ParentID, Name FROM Tests WHERE UploadID = ? ORDER BY TestID", []interface{}{id}, func(rows *sql.Rows) error {
		var (
			testID int64
			parent sql.NullInt64
			name   string
		)
		if err := rows.Scan(&testID, &parent, &name); err != nil {
			return err
		}
		var path []string
		if parent.Valid {
			pp, ok := paths[parent.Int64]
			if !ok {
				return fmt.Errorf("upload %s: test %d has unknown parent %d", id, testID, parent.Int64)
			}
			path = append(pp[:len(pp):len(pp)], name)
		} else {
			path = []string{name}
		}
		paths[testID] = path
		tests[testID] = tree.ResolveOrCreate(path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	type resultKey struct{ test, result int64 }
	results := make(map[resultKey]*measure.Result)
	err = db.scan(ctx, "SELECT TestID, ResultID, Metric, Unit, GreaterIsBetter FROM Results WHERE UploadID = ? ORDER BY TestID, ResultID", []interface{}{id}, func(rows *sql.Rows) error {
		var (
			k            resultKey
			metric, unit string
			greater      bool
		)
		if err := rows.Scan(&k.test, &k.result, &metric, &unit, &greater); err != nil {
			return err
		}
		t := tests[k.test]
		if t == nil {
			return fmt.Errorf("upload %s: result for unknown test %d", id, k.test)
		}
		m := reg.Intern(metric, unit, greater)
		r := t.Result(m)
		if r == nil {
			r = &measure.Result{Metric: m}
			t.Results = append(t.Results, r)
		}
		results[k] = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = db.scan(ctx, "SELECT TestID, ResultID, Value FROM ResultValues WHERE UploadID = ? ORDER BY TestID, ResultID, Seq", []interface{}{id}, func(rows *sql.Rows) error {
		var (
			k resultKey
			v float64
		)
		if err := rows.Scan(&k.test, &k.result, &v); err != nil {
			return err
		}
		r := results[k]
		if r == nil {
			return fmt.Errorf("upload %s: value for unknown result %d/%d", id, k.test, k.result)
		}
		r.Values = append(r.Values, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// scan runs q and calls fn for each row.
func (db *DB) scan(ctx context.Context, q string, args []interface{}, fn func(*sql.Rows) error) (err error) {
	rows, err := db.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(rows))
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
