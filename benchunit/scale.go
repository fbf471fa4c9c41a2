// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import (
	"fmt"
	"math"
	"strconv"
)

// A Scaler formats numbers with a fixed unit prefix and precision.
type Scaler struct {
	Prec   int     // Digits after the decimal point
	Factor float64 // Unscaled value of 1 Prefix (e.g., 1 k => 1000)
	Prefix string  // Unit prefix ("k", "M", "Ki", etc)
}

// Format formats val and appends the unit prefix. For example, a
// Scaler{1, 1e6, "M"} formats 123456789 as "123.5M".
//
// val should be in a tidied unit (see Tidy), otherwise 123456789 ns
// comes out as "megananoseconds".
func (s Scaler) Format(val float64) string {
	buf := make([]byte, 0, 20)
	buf = strconv.AppendFloat(buf, val/s.Factor, 'f', s.Prec, 64)
	return string(append(buf, s.Prefix...))
}

// A prefix is one step of a scale. A scaled value is shown with one,
// two or three decimals once it reaches t100, t10 or t1 respectively.
type prefix struct {
	factor        float64
	name          string
	t100, t10, t1 float64
}

var (
	siPrefixes  = decimalPrefixes()
	iecPrefixes = binaryPrefixes()
)

// decimalPrefixes returns the SI prefixes from T down to n. The
// thresholds are parsed from their printed form so they round the
// same way Format does.
func decimalPrefixes() []prefix {
	threshold := func(mant string, exp int) float64 {
		v, err := strconv.ParseFloat(fmt.Sprintf("%se%d", mant, exp), 64)
		if err != nil {
			panic(err)
		}
		return v
	}
	var ps []prefix
	exp := 12
	for _, name := range []string{"T", "G", "M", "k", "", "m", "µ", "n"} {
		ps = append(ps, prefix{
			factor: math.Pow(10, float64(exp)),
			name:   name,
			t100:   threshold("99.995", exp),
			t10:    threshold("9.9995", exp),
			t1:     threshold(".99995", exp),
		})
		exp -= 3
	}
	return ps
}

// binaryPrefixes returns the IEC prefixes from Ti down to none. There
// are no fractional binary prefixes. Values in [1000, 1024) of a
// prefix are shown with the next smaller one, so 1020 KiB stays
// "1020.0Ki".
func binaryPrefixes() []prefix {
	var ps []prefix
	exp := 40
	for _, name := range []string{"Ti", "Gi", "Mi", "Ki", ""} {
		ps = append(ps, prefix{
			factor: math.Ldexp(1, exp),
			name:   name,
			t100:   math.Ldexp(99.995, exp),
			t10:    math.Ldexp(9.9995, exp),
			t1:     math.Ldexp(.99995, exp),
		})
		exp -= 10
	}
	return ps
}

const minPrec = 3

// smallThresholds[i] is the smallest value, in units of the smallest
// prefix, that is shown with minPrec+i decimals. Past the end,
// precision stops growing.
var smallThresholds = func() []float64 {
	var ts []float64
	for exp := -1; exp > -9; exp-- {
		t, err := strconv.ParseFloat(fmt.Sprintf("9.9995e%d", exp), 64)
		if err != nil {
			panic(err)
		}
		ts = append(ts, t)
	}
	return ts
}()

// FormatColumn tidies vals from unit into base units and formats them
// with a common scale, so that a row of statistics for one metric
// lines up. It returns the formatted values and the tidied unit to
// print alongside them. For example, values 1.5 and 1.25 in "ms"
// become "1.500m" and "1.250m" with unit "sec".
func FormatColumn(vals []float64, unit string) ([]string, string) {
	_, tunit := Tidy(1, unit)
	tidied := make([]float64, len(vals))
	for i, v := range vals {
		tidied[i], _ = Tidy(v, unit)
	}
	s := CommonScale(tidied, ClassOf(tunit))
	out := make([]string, len(tidied))
	for i, v := range tidied {
		out[i] = s.Format(v)
	}
	return out, tunit
}

// CommonScale returns a Scaler that shows at least three significant
// digits for every value in vals. The scale is chosen by the non-zero
// value closest to zero.
func CommonScale(vals []float64, cls Class) Scaler {
	var min float64
	for _, v := range vals {
		v = math.Abs(v)
		if v != 0 && (min == 0 || v < min) {
			min = v
		}
	}
	if min == 0 {
		return Scaler{minPrec, 1, ""}
	}

	var ps []prefix
	switch cls {
	case Decimal:
		ps = siPrefixes
	case Binary:
		ps = iecPrefixes
	default:
		panic(fmt.Sprintf("bad Class %v", cls))
	}
	for _, p := range ps {
		switch {
		case min >= p.t100:
			return Scaler{1, p.factor, p.name}
		case min >= p.t10:
			return Scaler{2, p.factor, p.name}
		case min >= p.t1:
			return Scaler{3, p.factor, p.name}
		}
	}

	// Smaller than the smallest prefix: keep its prefix and add
	// decimals instead.
	last := ps[len(ps)-1]
	val := min / last.factor
	i := 0
	for i < len(smallThresholds)-1 && val < smallThresholds[i] {
		i++
	}
	return Scaler{minPrec + i, last.factor, last.name}
}
