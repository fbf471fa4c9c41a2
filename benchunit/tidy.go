// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import (
	"strings"
	"sync"
)

type tidyEntry struct {
	tidied string
	factor float64
}

var tidyCache sync.Map // unit string -> *tidyEntry

// baseUnits maps pre-scaled unit tokens to their base unit and the
// factor that converts a value into it.
var baseUnits = map[string]tidyEntry{
	"ns":    {"sec", 1e-9},
	"us":    {"sec", 1e-6},
	"µs":    {"sec", 1e-6},
	"ms":    {"sec", 1e-3},
	"s":     {"sec", 1},
	"bytes": {"B", 1},
	"KB":    {"B", 1e3},
	"MB":    {"B", 1e6},
	"GB":    {"B", 1e9},
}

// Tidy normalizes a value with a (possibly pre-scaled) unit into base
// units. For example, "ms" becomes "sec" and "MB" becomes "B", with
// the value re-scaled to match. Units it does not recognize, such as
// "Count" or "instructions", are returned unchanged.
func Tidy(value float64, unit string) (tidiedValue float64, tidiedUnit string) {
	newUnit, factor := tidyUnit(unit)
	return value * factor, newUnit
}

// tidyUnit returns the tidied version of unit and the multiplicative
// factor to convert a value in unit to a value in tidied.
func tidyUnit(unit string) (tidied string, factor float64) {
	// Fast path for the units benchmark harnesses emit directly.
	if e, ok := baseUnits[unit]; ok {
		return e.tidied, e.factor
	}
	switch unit {
	case "", "Count", "B", "sec":
		return unit, 1
	}

	if tc, ok := tidyCache.Load(unit); ok {
		tc := tc.(*tidyEntry)
		return tc.tidied, tc.factor
	}
	tidied, factor = tidyUnitUncached(unit)
	tidyCache.Store(unit, &tidyEntry{tidied, factor})
	return
}

func tidyUnitUncached(unit string) (tidied string, factor float64) {
	type edit struct {
		pos, len int
		replace  string
	}

	factor = 1
	p := newParser(unit)
	var edits []edit
	for p.next() {
		if p.denom {
			// Don't edit in the denominator.
			continue
		}
		if e, ok := baseUnits[p.tok]; ok {
			edits = append(edits, edit{p.pos, len(p.tok), e.tidied})
			factor *= e.factor
		}
	}
	var b strings.Builder
	last := 0
	for _, e := range edits {
		b.WriteString(unit[last:e.pos])
		b.WriteString(e.replace)
		last = e.pos + e.len
	}
	b.WriteString(unit[last:])
	return b.String(), factor
}
