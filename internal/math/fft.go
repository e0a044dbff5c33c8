package math

import (
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
)

// FFT returns the spectrum of the given real series, strongest frequency first.
// Only the frequencies up to the Nyquist bin are kept.
func FFT(xx []float64) *Spectrum {
	cc := fft.FFTReal(xx)

	ss := newSpectrum()
	for i, n := range cc {
		if i > len(cc)/2 {
			continue
		}
		ss.add(RNum{
			Amplitude: cmplx.Abs(n),
			Frequency: i,
		})
	}

	sort.Stable(sort.Reverse(spectrums(ss.Values)))

	return ss
}

// Spectrum is a collection of spectra
type Spectrum struct {
	Values    []RNum
	Amplitude float64
}

func newSpectrum() *Spectrum {
	return &Spectrum{
		Values: make([]RNum, 0),
	}
}

func (s *Spectrum) add(r RNum) {
	s.Values = append(s.Values, r)
	s.Amplitude += r.Amplitude
}

// Mean returns the average amplitude over all frequencies.
func (s *Spectrum) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return s.Amplitude / float64(len(s.Values))
}

// Dominant returns the frequency with the highest amplitude.
func (s *Spectrum) Dominant() (RNum, bool) {
	if len(s.Values) == 0 || s.Amplitude == 0 {
		return RNum{}, false
	}
	return s.Values[0], true
}

// RNum defines a complex number attributes
type RNum struct {
	Amplitude float64
	Frequency int
}

type spectrums []RNum

func (s spectrums) Len() int           { return len(s) }
func (s spectrums) Less(i, j int) bool { return s[i].Amplitude < s[j].Amplitude }
func (s spectrums) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// Oscillating reports whether the series keeps flipping sign,
// e.g. when its strongest frequency is the Nyquist one.
// The series is cut at the first non-finite value.
func Oscillating(xx []float64) bool {
	xx = Finite(xx)
	if len(xx) < 2 {
		return false
	}
	r, ok := FFT(xx).Dominant()
	if !ok {
		return false
	}
	return r.Frequency == len(xx)/2
}
