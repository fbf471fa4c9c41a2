// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbtest opens empty result stores for tests.
package dbtest

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"flag"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"golang.org/x/benchmeasure/storage/db"
	_ "golang.org/x/benchmeasure/storage/db/sqlite3"
)

var mysqlServer = flag.String("mysql", "", "run store tests against a scratch database on the MySQL server at this DSN prefix (e.g. root:@tcp(localhost:3306)/) instead of in-memory SQLite")

// scratchMySQL creates a database named after the test on the
// -mysql server and drops it when the test ends.
func scratchMySQL(t *testing.T) string {
	t.Helper()
	buf := make([]byte, 6)
	_, err := rand.Read(buf)
	require.NoError(t, err)
	name := "benchmeasure_" + base64.RawURLEncoding.EncodeToString(buf)

	server, err := sql.Open("mysql", *mysqlServer)
	require.NoError(t, err)
	t.Cleanup(func() { server.Close() })

	_, err = server.Exec(fmt.Sprintf("CREATE DATABASE `%s`", name))
	require.NoError(t, err)
	t.Logf("Using database %q", name)
	t.Cleanup(func() {
		if _, err := server.Exec(fmt.Sprintf("DROP DATABASE `%s`", name)); err != nil {
			t.Error(err)
		}
	})
	return *mysqlServer + name
}

// NewDB opens an empty store, in-memory SQLite by default or MySQL
// with the -mysql flag. It is closed when the test ends.
func NewDB(t *testing.T) *db.DB {
	t.Helper()
	driverName, dsn := "sqlite3", ":memory:"
	if *mysqlServer != "" {
		driverName, dsn = "mysql", scratchMySQL(t)
	}
	d, err := db.OpenSQL(driverName, dsn)
	require.NoError(t, err, "open database")
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Error(err)
		}
	})

	n, err := d.CountUploads()
	require.NoError(t, err)
	require.Zero(t, n, "new database has uploads")
	return d
}
