package expr

import (
	"math"
	"strconv"
)

// NoPrecision selects the automatic number format.
const NoPrecision = -1

// Format renders v. Booleans print as True/False and integral numbers
// without a decimal point. Otherwise a non-negative precision gives that
// many decimals; magnitudes of 1000 and above use two-decimal scientific
// notation; everything else keeps six significant digits.
func Format(v Value, precision int) string {
	if v.IsBool {
		if v.Bool {
			return "True"
		}
		return "False"
	}
	f := v.Num
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == math.Trunc(f):
		if f == 0 {
			return "0"
		}
		return strconv.FormatFloat(f, 'f', 0, 64)
	case precision >= 0:
		return strconv.FormatFloat(f, 'f', precision, 64)
	case math.Abs(f) >= 1000:
		return strconv.FormatFloat(f, 'e', 2, 64)
	default:
		return strconv.FormatFloat(f, 'g', 6, 64)
	}
}
