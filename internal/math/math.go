package math

import (
	"math"
	"strconv"
	"strings"
)

// Format formats a float based on the given precision
func Format(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// Precise formats a float with the shortest representation that round-trips.
// Plain notation is used between 1e-4 and 1e16, always with a decimal point,
// exponent notation outside of it.
func Precise(f float64) string {
	abs := math.Abs(f)
	if math.IsNaN(f) || math.IsInf(f, 0) || (abs != 0 && (abs < 1e-4 || abs >= 1e16)) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Stable reports whether the analytic update on a sample with the given input
// keeps the weight from blowing up.
// The update maps the distance to the fixed point d to (1 - k) * d with k = input^2 * rate * damping,
// so the weight runs away once |1 - k| > 1.
// NOTE : k == 2 flips the weight around the fixed point forever with constant error.
func Stable(input, rate, damping float64) bool {
	k := input * input * rate * damping
	return k >= 0 && k <= 2
}

// FixedPoint returns the weight that zeroes the squared error for the given input and target.
// NOTE : there is no fixed point for a zero input, in which case NaN is returned.
func FixedPoint(input, target float64) float64 {
	if input == 0 {
		return math.NaN()
	}
	return target / input
}

// Finite returns the leading part of the series up to the first non-finite value.
func Finite(xx []float64) []float64 {
	for i, x := range xx {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return xx[:i]
		}
	}
	return xx
}
