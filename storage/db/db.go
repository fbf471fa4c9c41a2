// Copyright 2016 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db stores measurement trees in a SQL database so they can
// be queried after the documents that carried them are gone.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"go.uber.org/multierr"

	"golang.org/x/benchmeasure/measure"
)

// DB is a high-level interface to a database of measurement uploads.
// It's safe for concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	lastUpload   *sql.Stmt
	insertUpload *sql.Stmt
	insertTest   *sql.Stmt
	insertResult *sql.Stmt
	clearUpload  *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			return nil, multierr.Append(err, db.Close())
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		return nil, multierr.Append(err, db.Close())
	}
	if err := d.prepareStatements(); err != nil {
		return nil, multierr.Append(err, d.Close())
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to register a ConnectHook.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Uploads (
	UploadID VARCHAR(20) PRIMARY KEY,
	Day VARCHAR(8),
	Seq BIGINT UNSIGNED
{{if not .sqlite3}}
	, Index (Day, Seq)
{{end}}
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS UploadDaySeq ON Uploads(Day, Seq);
{{end}}
CREATE TABLE IF NOT EXISTS UploadLabels (
	UploadID VARCHAR(20),
	Name VARCHAR(255),
	Value VARCHAR(8192),
{{if not .sqlite3}}
	Index (Name(100), Value(100)),
{{end}}
	PRIMARY KEY (UploadID, Name),
	FOREIGN KEY (UploadID) REFERENCES Uploads(UploadID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS UploadLabelsNameValue ON UploadLabels(Name, Value);
{{end}}
CREATE TABLE IF NOT EXISTS Tests (
	UploadID VARCHAR(20),
	TestID BIGINT UNSIGNED,
	ParentID BIGINT UNSIGNED NULL,
	Name VARCHAR(1024),
	PRIMARY KEY (UploadID, TestID),
	FOREIGN KEY (UploadID) REFERENCES Uploads(UploadID) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS Results (
	UploadID VARCHAR(20),
	TestID BIGINT UNSIGNED,
	ResultID BIGINT UNSIGNED,
	Metric VARCHAR(1024),
	Unit VARCHAR(255),
	GreaterIsBetter BOOLEAN,
	PRIMARY KEY (UploadID, TestID, ResultID),
	FOREIGN KEY (UploadID, TestID) REFERENCES Tests(UploadID, TestID) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS ResultValues (
	UploadID VARCHAR(20),
	TestID BIGINT UNSIGNED,
	ResultID BIGINT UNSIGNED,
	Seq BIGINT UNSIGNED,
	Value DOUBLE,
	PRIMARY KEY (UploadID, TestID, ResultID, Seq),
	FOREIGN KEY (UploadID, TestID, ResultID) REFERENCES Results(UploadID, TestID, ResultID) ON UPDATE CASCADE ON DELETE CASCADE
);
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	for _, s := range []struct {
		stmt **sql.Stmt
		q    string
	}{
		{&db.lastUpload, "SELECT MAX(Seq) FROM Uploads WHERE Day = ?"},
		{&db.insertUpload, "INSERT INTO Uploads(UploadID, Day, Seq) VALUES (?, ?, ?)"},
		{&db.insertTest, "INSERT INTO Tests(UploadID, TestID, ParentID, Name) VALUES (?, ?, ?, ?)"},
		{&db.insertResult, "INSERT INTO Results(UploadID, TestID, ResultID, Metric, Unit, GreaterIsBetter) VALUES (?, ?, ?, ?, ?, ?)"},
		{&db.clearUpload, "DELETE FROM Tests WHERE UploadID = ?"},
	} {
		var err error
		if *s.stmt, err = db.sql.Prepare(s.q); err != nil {
			return err
		}
	}
	return nil
}

// now is a hook for testing
var now = time.Now

// An Upload is a collection of measurement trees that share an
// upload ID. Nothing is visible to readers until Commit.
type Upload struct {
	// ID is the value identifying this upload.
	ID string

	// nextTest is the ID of the next test to insert.
	nextTest int64

	ctx context.Context
	db  *DB
	tx  *sql.Tx
}

// NewUpload returns an upload for storing new trees. Upload IDs are
// of the form YYYYMMDD.N, numbered per UTC day from 1.
func (db *DB) NewUpload(ctx context.Context) (*Upload, error) {
	day := now().UTC().Format("20060102")

	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	var lastID sql.NullInt64
	if err := tx.StmtContext(ctx, db.lastUpload).QueryRowContext(ctx, day).Scan(&lastID); err != nil {
		return nil, multierr.Append(err, tx.Rollback())
	}
	id := lastID.Int64 + 1
	uploadID := fmt.Sprintf("%s.%d", day, id)
	if _, err := tx.StmtContext(ctx, db.insertUpload).ExecContext(ctx, uploadID, day, id); err != nil {
		return nil, multierr.Append(err, tx.Rollback())
	}
	return &Upload{ID: uploadID, ctx: ctx, db: db, tx: tx}, nil
}

// ErrUnknownUpload is returned for an upload ID not in the database.
var ErrUnknownUpload = errors.New("unknown upload")

// ReplaceUpload returns an upload that replaces the trees stored
// under id. The existing trees are deleted when the upload is
// committed. If id does not exist, a new upload with that ID is
// created.
func (db *DB) ReplaceUpload(ctx context.Context, id string) (*Upload, error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*Upload, error) {
		return nil, multierr.Append(err, tx.Rollback())
	}
	var found int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM Uploads WHERE UploadID = ?", id).Scan(&found); err != nil {
		return fail(err)
	}
	if found == 0 {
		if _, err := tx.StmtContext(ctx, db.insertUpload).ExecContext(ctx, id, "", 0); err != nil {
			return fail(err)
		}
	}
	// Children of Tests go with them through ON DELETE CASCADE.
	if _, err := tx.StmtContext(ctx, db.clearUpload).ExecContext(ctx, id); err != nil {
		return fail(err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM UploadLabels WHERE UploadID = ?", id); err != nil {
		return fail(err)
	}
	return &Upload{ID: id, ctx: ctx, db: db, tx: tx}, nil
}

// SetLabels attaches labels to the upload.
func (u *Upload) SetLabels(labels map[string]string) error {
	if len(labels) == 0 {
		return nil
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var args []interface{}
	for _, k := range keys {
		args = append(args, u.ID, k, labels[k])
	}
	query := "INSERT INTO UploadLabels(UploadID, Name, Value) VALUES " + strings.Repeat("(?, ?, ?), ", len(keys))
	query = strings.TrimSuffix(query, ", ")
	_, err := u.tx.ExecContext(u.ctx, query, args...)
	return err
}

// InsertTree adds every test, result and value of tree to the upload.
// Trees inserted into one upload are merged when loaded.
func (u *Upload) InsertTree(tree *measure.Tree) error {
	return u.insertTests(sql.NullInt64{}, tree.Tests)
}

func (u *Upload) insertTests(parent sql.NullInt64, tests []*measure.Test) error {
	insertTest := u.tx.StmtContext(u.ctx, u.db.insertTest)
	insertResult := u.tx.StmtContext(u.ctx, u.db.insertResult)
	for _, t := range tests {
		id := u.nextTest
		u.nextTest++
		if _, err := insertTest.ExecContext(u.ctx, u.ID, id, parent, t.Name); err != nil {
			return err
		}
		for i, r := range t.Results {
			m := r.Metric
			if _, err := insertResult.ExecContext(u.ctx, u.ID, id, i, m.Name, m.Unit, m.GreaterIsBetter); err != nil {
				return err
			}
			if err := u.insertValues(id, i, r.Values); err != nil {
				return err
			}
		}
		if err := u.insertTests(sql.NullInt64{Int64: id, Valid: true}, t.Tests); err != nil {
			return err
		}
	}
	return nil
}

func (u *Upload) insertValues(testID int64, resultID int, values []float64) error {
	if len(values) == 0 {
		return nil
	}
	var args []interface{}
	for i, v := range values {
		args = append(args, u.ID, testID, resultID, i, v)
	}
	query := "INSERT INTO ResultValues(UploadID, TestID, ResultID, Seq, Value) VALUES " + strings.Repeat("(?, ?, ?, ?, ?), ", len(values))
	query = strings.TrimSuffix(query, ", ")
	_, err := u.tx.ExecContext(u.ctx, query, args...)
	return err
}

// Commit finishes processing the upload.
func (u *Upload) Commit() error {
	return u.tx.Commit()
}

// Abort cleans up resources associated with the upload.
// It does not attempt to clean up partial database state.
func (u *Upload) Abort() error {
	return u.tx.Rollback()
}

// CountUploads returns the number of uploads in the database.
func (db *DB) CountUploads() (int, error) {
	var uploads int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM Uploads").Scan(&uploads)
	return uploads, err
}

// UploadInfo summarizes an upload.
type UploadInfo struct {
	ID     string
	Tests  int
	Labels map[string]string
}

// ListUploads returns the most recent uploads whose labels match
// every key:value word of query, newest first. A bare word matches
// uploads that have a label with that name. At most limit uploads
// are returned; limit <= 0 means no limit.
func (db *DB) ListUploads(ctx context.Context, query string, limit int) ([]UploadInfo, error) {
	var (
		where []string
		args  []interface{}
	)
	for _, word := range splitQueryWords(query) {
		name, value, ok := strings.Cut(word, ":")
		if ok {
			where = append(where, "UploadID IN (SELECT UploadID FROM UploadLabels WHERE Name = ? AND Value = ?)")
			args = append(args, name, value)
		} else {
			where = append(where, "UploadID IN (SELECT UploadID FROM UploadLabels WHERE Name = ?)")
			args = append(args, name)
		}
	}
	q := "SELECT UploadID FROM Uploads"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY Day DESC, Seq DESC"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	ids, err := queryStrings(ctx, db.sql, q, args...)
	if err != nil {
		return nil, err
	}
	// Details are read after the ID query is closed: an in-memory
	// sqlite3 database allows only one connection.
	infos := make([]UploadInfo, 0, len(ids))
	for _, id := range ids {
		info := UploadInfo{ID: id, Labels: make(map[string]string)}
		if err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Tests WHERE UploadID = ? AND ParentID IS NULL", id).Scan(&info.Tests); err != nil {
			return nil, err
		}
		if err := db.labels(ctx, id, info.Labels); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (db *DB) labels(ctx context.Context, id string, labels map[string]string) (err error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT Name, Value FROM UploadLabels WHERE UploadID = ?", id)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(rows))
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return err
		}
		labels[name] = value
	}
	return rows.Err()
}

func queryStrings(ctx context.Context, db *sql.DB, q string, args ...interface{}) (out []string, err error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(rows))
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	var err error
	for _, stmt := range []*sql.Stmt{db.lastUpload, db.insertUpload, db.insertTest, db.insertResult, db.clearUpload} {
		if stmt != nil {
			err = multierr.Append(err, stmt.Close())
		}
	}
	return multierr.Append(err, db.sql.Close())
}

// splitQueryWords splits q into words using shell syntax (whitespace
// can be escaped with double quotes or with a backslash).
func splitQueryWords(q string) []string {
	var words []string
	word := make([]byte, 0, len(q))
	quote := false
	escape := false
	for i := 0; i < len(q); i++ {
		c := q[i]
		switch {
		case escape:
			word = append(word, c)
			escape = false
		case c == '\\':
			escape = true
		case c == '"':
			quote = !quote
		case !quote && (c == ' ' || c == '\t' || c == '\n'):
			if len(word) > 0 {
				words = append(words, string(word))
				word = word[:0]
			}
		default:
			word = append(word, c)
		}
	}
	if len(word) > 0 {
		words = append(words, string(word))
	}
	return words
}
