package math

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// NotEnoughDataErr is returned when a series does not carry enough usable points for a fit.
var NotEnoughDataErr = errors.New("not enough data")

// Fit fits the given series of x and y into a polynomial function of the given degree
// out put is a vector with the coefficients of the corresponding powers of x
// c[0] + c[1]x + c[2]x^2 + c[3]x^3 + ...
func Fit(x, y []float64, degree int) ([]float64, error) {

	if len(x) != len(y) {
		return nil, fmt.Errorf("mismatched series %d vs %d", len(x), len(y))
	}

	if len(x) <= degree {
		return nil, fmt.Errorf("need more than %d points for degree %d: %w", len(x), degree, NotEnoughDataErr)
	}

	a := vandermonde(x, degree)
	b := mat.NewDense(len(y), 1, y)
	c := mat.NewDense(degree+1, 1, nil)

	qr := new(mat.QR)
	qr.Factorize(a)

	err := qr.SolveTo(c, false, b)

	v := c.ColView(0)
	cc := make([]float64, v.Len())
	for i := 0; i < v.Len(); i++ {
		cc[i] = v.AtVec(i)
	}
	return cc, err
}

func vandermonde(a []float64, degree int) *mat.Dense {
	x := mat.NewDense(len(a), degree+1, nil)
	for i := range a {
		for j, p := 0, 1.; j <= degree; j, p = j+1, p*a[i] {
			x.Set(i, j, p)
		}
	}
	return x
}

// Rate estimates the exponential rate of change of the given error trace
// by fitting a line to log(error) against the iteration index.
// A negative rate means the errors shrink, a positive one that they grow.
// Zero and non-finite errors are skipped.
func Rate(trace []float64) (float64, error) {
	x := make([]float64, 0, len(trace))
	y := make([]float64, 0, len(trace))
	for i, e := range trace {
		if e <= 0 || math.IsNaN(e) || math.IsInf(e, 0) {
			continue
		}
		x = append(x, float64(i))
		y = append(y, math.Log(e))
	}

	if len(x) < 2 {
		return 0, fmt.Errorf("only %d usable errors out of %d: %w", len(x), len(trace), NotEnoughDataErr)
	}

	c, err := Fit(x, y, 1)
	if err != nil {
		return 0, fmt.Errorf("could not fit error trace: %w", err)
	}
	return c[1], nil
}
