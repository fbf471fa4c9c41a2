// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schemas holds the default JSON Schema set for measurement
// documents. The schemas refer to each other by relative path, so a
// replacement set must keep the same file names side by side.
package schemas

import "embed"

// FS contains the schema files.
//
//go:embed *.json
var FS embed.FS

// Root is the name of the schema for a whole measurement document.
const Root = "measurement.json"
