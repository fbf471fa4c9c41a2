// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchunit formats measurement values for display in their
// units.
//
// Units are free-form strings such as "ms", "ns/ops", "bytes" or
// "Count". A unit is a sequence of tokens separated by '*', '/', '-'
// or space, where tokens after a '/' are in the denominator.
package benchunit

import (
	"fmt"
	"unicode"
)

// A Class specifies what class of unit prefixes are in use.
type Class int

const (
	// Decimal indicates values of a given unit should be scaled
	// by powers of 1000, using SI prefixes such as "k" and "M".
	Decimal Class = iota
	// Binary indicates values of a given unit should be scaled by
	// powers of 1024, using IEC prefixes such as "Ki" and "Mi".
	Binary
)

func (c Class) String() string {
	switch c {
	case Decimal:
		return "Decimal"
	case Binary:
		return "Binary"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// ClassOf returns the Class of unit. If unit contains some measure of
// bytes in the numerator, this is Binary. Otherwise, it is Decimal.
func ClassOf(unit string) Class {
	p := newParser(unit)
	for p.next() {
		if p.denom {
			continue
		}
		switch p.tok {
		case "B", "bytes", "KB", "MB", "GB":
			return Binary
		}
	}
	return Decimal
}

type parser struct {
	rest string // unparsed unit
	rpos int    // bytes consumed from original unit

	// Current token
	tok   string
	pos   int  // byte offset of tok in original unit
	denom bool // current token is in denominator
}

func newParser(unit string) *parser {
	return &parser{rest: unit}
}

func isSep(r rune) bool {
	return r == '*' || r == '/' || r == '-' || unicode.IsSpace(r)
}

// next advances to the next token, reporting false at the end of the
// unit.
func (p *parser) next() bool {
	start := -1
	for i, r := range p.rest {
		switch {
		case r == '*':
			p.denom = false
		case r == '/':
			p.denom = true
		case !isSep(r):
			start = i
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		p.rpos += len(p.rest)
		p.rest = ""
		return false
	}
	p.rpos += start
	p.rest = p.rest[start:]

	end := len(p.rest)
	for i, r := range p.rest {
		if isSep(r) {
			end = i
			break
		}
	}
	p.tok = p.rest[:end]
	p.pos = p.rpos
	p.rpos += end
	p.rest = p.rest[end:]
	return true
}
