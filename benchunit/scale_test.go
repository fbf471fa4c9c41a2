// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import (
	"math"
	"reflect"
	"testing"
)

func scale(val float64, cls Class) string {
	return CommonScale([]float64{val}, cls).Format(val)
}

func TestCommonScale(t *testing.T) {
	var cls Class
	test := func(num float64, want, wantPred string) {
		t.Helper()

		got := scale(num, cls)
		if got != want {
			t.Errorf("for %v, got %s, want %s", num, got, want)
		}

		// One ulp toward zero must fall to the smaller scale.
		pred := math.Nextafter(num, 0)
		got = scale(pred, cls)
		if got != wantPred {
			dir := "-ε"
			if num < 0 {
				dir = "+ε"
			}
			t.Errorf("for %v%s, got %s, want %s", num, dir, got, wantPred)
		}
	}

	cls = Decimal
	test(0, "0.000", "0.000")
	test(1, "1.000", "1.000")
	test(-1, "-1.000", "-1.000")
	test(9999500000000000, "9999.5T", "9999.5T")
	test(999950000000000, "1000.0T", "999.9T")
	test(99995000000000, "100.0T", "99.99T")
	test(9999500000000, "10.00T", "9.999T")
	test(999950000000, "1.000T", "999.9G")
	test(99995000000, "100.0G", "99.99G")
	test(9999500000, "10.00G", "9.999G")
	test(999950000, "1.000G", "999.9M")
	test(99995000, "100.0M", "99.99M")
	test(9999500, "10.00M", "9.999M")
	test(999950, "1.000M", "999.9k")
	test(99995, "100.0k", "99.99k")
	test(9999.5, "10.00k", "9.999k")
	test(999.95, "1.000k", "999.9")
	test(99.995, "100.0", "99.99")
	test(9.9995, "10.00", "9.999")
	test(.99995, "1.000", "999.9m")
	test(.099995, "100.0m", "99.99m")
	test(.0099995, "10.00m", "9.999m")
	test(.00099995, "1.000m", "999.9µ")
	test(.000099995, "100.0µ", "99.99µ")
	test(.0000099995, "10.00µ", "9.999µ")
	test(.00000099995, "1.000µ", "999.9n")
	test(.000000099995, "100.0n", "99.99n")
	test(.0000000099995, "10.00n", "9.999n")
	test(.00000000099995, "1.000n", "0.9999n")

	// Below n, thresholds may be off by one ulp.
	test(math.Nextafter(.000000000099995, 1), "0.1000n", "0.09999n")
	test(.0000000000099995, "0.01000n", "0.009999n")
	test(math.Nextafter(.00000000000099995, 1), "0.001000n", "0.0009999n")
	test(.000000000000099995, "0.0001000n", "0.00009999n")
	test(.0000000000000099995, "0.00001000n", "0.000009999n")
	test(math.Nextafter(.00000000000000099995, 1), "0.000001000n", "0.0000009999n")

	// Negative values scale by magnitude.
	test(-99995000000000, "-100.0T", "-99.99T")
	test(-.0000000099995, "-10.00n", "-9.999n")

	cls = Binary
	test(0, "0.000", "0.000")
	test(1, "1.000", "1.000")
	test(.99995*(1<<50), "1023.9Ti", "1023.9Ti")
	test(.99995*(1<<30), "1.000Gi", "1023.9Mi")
	test(9.9995*(1<<20), "10.00Mi", "9.999Mi")
	test(.99995*(1<<10), "1.000Ki", "1023.9")
	test(.99995, "1.000", "0.9999")
	test(.0000099995, "0.00001000", "0.000009999")
	test(.00000000005, "0.0000000001", "0.0000000000")
}

func TestFormatColumn(t *testing.T) {
	test := func(vals []float64, unit string, want []string, wantUnit string) {
		t.Helper()
		got, gotUnit := FormatColumn(vals, unit)
		if gotUnit != wantUnit || !reflect.DeepEqual(got, want) {
			t.Errorf("for %v %s, got %q %s, want %q %s", vals, unit, got, gotUnit, want, wantUnit)
		}
	}

	test([]float64{1500, 2500}, "ms", []string{"1.500", "2.500"}, "sec")
	test([]float64{1500, 250}, "ms", []string{"1500.0m", "250.0m"}, "sec")
	test([]float64{1.5, 1.25, 1.75}, "ms", []string{"1.500m", "1.250m", "1.750m"}, "sec")
	test([]float64{2}, "ns/ops", []string{"2.000n"}, "sec/ops")
	test([]float64{2048, 1 << 20}, "bytes", []string{"2.000Ki", "1024.000Ki"}, "B")
	test([]float64{17}, "Count", []string{"17.00"}, "Count")
	test([]float64{42000}, "instructions", []string{"42.00k"}, "instructions")
	test(nil, "ms", []string{}, "sec")
}
