// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measure

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ParseValue parses the raw text of a sample. It accepts any finite
// decimal real number, and otherwise a hexadecimal integer with an
// optional sign and "0x" prefix. Surrounding white space is ignored.
// Decimals out of float64 range and hex floats such as "0x1p4" are
// rejected.
func ParseValue(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if hasHexPrefix(s) {
		if v, ok := parseHex(s); ok {
			return v, nil
		}
		return 0, fmt.Errorf("%w: %q", ErrNotNumber, raw)
	}
	v, err := strconv.ParseFloat(s, 64)
	switch {
	case err == nil:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %q", ErrNotNumber, raw)
		}
		return v, nil
	case errors.Is(err, strconv.ErrRange):
		return 0, fmt.Errorf("%w: %q out of range", ErrNotNumber, raw)
	}
	if v, ok := parseHex(s); ok {
		return v, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrNotNumber, raw)
}

func hasHexPrefix(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
}

// IsNumber reports whether ParseValue accepts raw.
func IsNumber(raw string) bool {
	_, err := ParseValue(raw)
	return err == nil
}

func parseHex(s string) (float64, bool) {
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg, s = true, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, false
	}
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return 0, false
	}
	if neg {
		n.Neg(n)
	}
	v, _ := new(big.Float).SetInt(n).Float64()
	if math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
