package math

// Geometric generates a series starting at the given value and multiplied by the ratio at every step.
func Geometric(start, ratio float64, limit int) []float64 {
	xx := make([]float64, 0)
	x := start
	for i := 0; i < limit; i++ {
		xx = append(xx, x)
		x *= ratio
	}
	return xx
}

// Shift adds the given offset to all elements of the series.
func Shift(xx []float64, offset float64) []float64 {
	yy := make([]float64, len(xx))
	for i, x := range xx {
		yy[i] = x + offset
	}
	return yy
}
