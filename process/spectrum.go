package process

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// spectrum computes one-sided power spectral densities of single channels.
// It owns the FFT plan and all scratch buffers, so it must not be shared
// between processors.
type spectrum struct {
	n      int
	rate   float64
	fft    *fourier.FFT
	taper  []float64
	scale  float64
	buf    []float64
	coeffs []complex128
	psd    []float64
}

func newSpectrum(n int, rate float64, hann bool) *spectrum {
	s := &spectrum{
		n:      n,
		rate:   rate,
		fft:    fourier.NewFFT(n),
		buf:    make([]float64, n),
		coeffs: make([]complex128, n/2+1),
		psd:    make([]float64, n/2+1),
	}
	// normalization of the periodogram: 1/(rate*n*U) with U the mean
	// squared taper value, so that tapering does not bias band powers
	u := 1.0
	if hann && n > 1 {
		s.taper = make([]float64, n)
		sum := 0.0
		for i := range s.taper {
			s.taper[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
			sum += s.taper[i] * s.taper[i]
		}
		u = sum / float64(n)
	}
	s.scale = 1 / (rate * float64(n) * u)
	return s
}

// resolution returns the width of one frequency bin in hertz.
func (s *spectrum) resolution() float64 {
	return s.rate / float64(s.n)
}

// periodogram computes the one-sided PSD of one channel. The channel is
// detrended by mean subtraction before the transform. The returned slice
// is reused between calls.
func (s *spectrum) periodogram(samples []float64) []float64 {
	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(len(samples))
	for i, v := range samples {
		s.buf[i] = v - mean
	}
	if s.taper != nil {
		for i := range s.buf {
			s.buf[i] *= s.taper[i]
		}
	}
	s.fft.Coefficients(s.coeffs, s.buf)
	for i, c := range s.coeffs {
		p := s.scale * (real(c)*real(c) + imag(c)*imag(c))
		// all energy except DC and Nyquist is split between the
		// positive and negative halves of the spectrum
		if i > 0 && i < len(s.coeffs)-1 {
			p *= 2
		}
		s.psd[i] = p
	}
	return s.psd
}

// binRange maps a frequency band to the covered bin indexes. Bands
// narrower than one bin resolve to the single bin nearest to the band
// center, bands reaching beyond Nyquist are clamped. A valid non-empty
// range is always returned.
func (s *spectrum) binRange(low, high float64) (int, int) {
	df := s.resolution()
	nyq := s.n / 2
	lo := int(math.Ceil(low/df - 1e-9))
	hi := int(math.Floor(high/df + 1e-9))
	if lo > hi {
		c := int(math.Round((low + high) / 2 / df))
		lo, hi = c, c
	}
	lo = clampBin(lo, nyq)
	hi = clampBin(hi, nyq)
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

// bandPower returns the signal power within the band: the PSD integrated
// over the covered bins. For a unit sine inside the band this comes out as
// 1/2, matching the time-domain power of the signal.
func (s *spectrum) bandPower(psd []float64, low, high float64) float64 {
	lo, hi := s.binRange(low, high)
	sum := 0.0
	for i := lo; i <= hi; i++ {
		sum += psd[i]
	}
	return sum * s.resolution()
}

// freqOf returns the center frequency of bin i in hertz.
func (s *spectrum) freqOf(i int) float64 {
	return s.fft.Freq(i) * s.rate
}

func clampBin(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}
