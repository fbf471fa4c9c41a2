// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measure

// A Test is a named node in a Tree.
type Test struct {
	Name string

	// Tests are the children of this node in insertion order.
	// Names are unique among siblings.
	Tests []*Test

	// Results are ordered by the first time their Metric was seen
	// for this Test.
	Results []*Result
}

// Child returns the direct child named name, or nil.
func (t *Test) Child(name string) *Test {
	return findTest(t.Tests, name)
}

// Result returns the Result recorded for m, or nil.
func (t *Test) Result(m *Metric) *Result {
	for _, r := range t.Results {
		if r.Metric == m {
			return r
		}
	}
	return nil
}

// A Result is the ordered list of samples for one (Test, Metric)
// pair.
type Result struct {
	Metric *Metric
	Values []float64
}

// A Tree is the hierarchical namespace of Tests for a run.
//
// The zero Tree is empty and ready to use.
type Tree struct {
	// Tests are the root Tests in insertion order.
	Tests []*Test
}

// Empty reports whether t has no tests.
func (t *Tree) Empty() bool {
	return len(t.Tests) == 0
}

// Lookup returns the Test at path, or nil if there is none.
func (t *Tree) Lookup(path []string) *Test {
	tests := t.Tests
	var node *Test
	for _, name := range path {
		node = findTest(tests, name)
		if node == nil {
			return nil
		}
		tests = node.Tests
	}
	return node
}

// ResolveOrCreate returns the Test at path, creating any missing
// nodes along the way. New nodes are appended after their existing
// siblings. path must not be empty.
func (t *Tree) ResolveOrCreate(path []string) *Test {
	if len(path) == 0 {
		panic("measure: empty test path")
	}
	tests := &t.Tests
	var node *Test
	for _, name := range path {
		node = findTest(*tests, name)
		if node == nil {
			node = &Test{Name: name}
			*tests = append(*tests, node)
		}
		tests = &node.Tests
	}
	return node
}

// Walk calls fn for every Test in t in depth-first pre-order. The
// path slice is only valid for the duration of the call. If fn
// returns an error, Walk stops and returns it.
func (t *Tree) Walk(fn func(path []string, test *Test) error) error {
	var path []string
	var walk func(tests []*Test) error
	walk = func(tests []*Test) error {
		for _, test := range tests {
			path = append(path, test.Name)
			if err := fn(path, test); err != nil {
				return err
			}
			if err := walk(test.Tests); err != nil {
				return err
			}
			path = path[:len(path)-1]
		}
		return nil
	}
	return walk(t.Tests)
}

func findTest(tests []*Test, name string) *Test {
	for _, test := range tests {
		if test.Name == name {
			return test
		}
	}
	return nil
}
