// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measure

import (
	"fmt"
	"strconv"
	"strings"
)

// An Index is a flat map from test path to Test that short-circuits
// tree walks for repeated lookups during a merge pass.
//
// An Index reflects the tree at the time it was built plus any Tests
// it created since. It is rebuilt for every input file.
type Index struct {
	tests map[string]*Test
	buf   strings.Builder
}

// BuildIndex indexes every Test in tree. It fails if any Test in tree
// has an invalid name, which can only happen for a tree decoded from
// a previous document.
func BuildIndex(tree *Tree) (*Index, error) {
	ix := &Index{tests: make(map[string]*Test)}
	err := tree.Walk(func(path []string, test *Test) error {
		if !ValidName(test.Name) {
			return fmt.Errorf("%w: %q", ErrInvalidName, path)
		}
		ix.tests[ix.key(path)] = test
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ix, nil
}

// Len returns the number of indexed Tests.
func (ix *Index) Len() int {
	return len(ix.tests)
}

// Lookup returns the indexed Test at path.
func (ix *Index) Lookup(path []string) (*Test, bool) {
	test, ok := ix.tests[ix.key(path)]
	return test, ok
}

// ResolveOrCreate returns the Test at path, consulting the index
// first and falling back to tree.ResolveOrCreate on a miss. The
// result of a miss is added to the index.
func (ix *Index) ResolveOrCreate(tree *Tree, path []string) *Test {
	key := ix.key(path)
	if test, ok := ix.tests[key]; ok {
		return test
	}
	test := tree.ResolveOrCreate(path)
	ix.tests[key] = test
	return test
}

// key encodes path unambiguously: every segment is prefixed with its
// byte length, so no choice of separator can collide with a name.
func (ix *Index) key(path []string) string {
	ix.buf.Reset()
	for _, name := range path {
		ix.buf.WriteString(strconv.Itoa(len(name)))
		ix.buf.WriteByte(':')
		ix.buf.WriteString(name)
	}
	return ix.buf.String()
}
