// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import "testing"

func TestClassOf(t *testing.T) {
	test := func(unit string, cls Class) {
		t.Helper()
		got := ClassOf(unit)
		if got != cls {
			t.Errorf("for %s, want %s, got %s", unit, cls, got)
		}
	}
	test("ms", Decimal)
	test("ns/ops", Decimal)
	test("Count", Decimal)
	test("sec/B", Decimal)
	test("sec/disk-B", Decimal)

	test("B", Binary)
	test("bytes", Binary)
	test("MB", Binary)
	test("B/s", Binary)
	test("sec/B*B", Binary)
	test("disk-B/sec", Binary)
}

func TestParser(t *testing.T) {
	type tok struct {
		tok   string
		pos   int
		denom bool
	}
	var got []tok
	p := newParser(" KB*ms / op-x")
	for p.next() {
		got = append(got, tok{p.tok, p.pos, p.denom})
	}
	want := []tok{{"KB", 1, false}, {"ms", 4, false}, {"op", 9, true}, {"x", 12, true}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}
