package spectral

import (
	"fmt"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
	"github.com/RyanBlaney/sonido-pitch/algorithms/windowing"
	"github.com/mjibson/go-dsp/fft"
)

// Analyzer produces the live magnitude spectrum consumed by the pitch
// estimator: Hann-windowed FFT of the most recent 2N samples, first N bins,
// scaled to amplitude.
type Analyzer struct {
	bins   int
	coeffs []float64
	gain   float64
}

// NewAnalyzer creates an analyzer emitting bins spectrum values.
// bins must be a power of two.
func NewAnalyzer(bins int) (*Analyzer, error) {
	if !common.IsPowerOfTwo(bins) {
		return nil, fmt.Errorf("spectrum size: %w: %d", ErrNotPowerOfTwo, bins)
	}

	window := windowing.NewPeriodicHann(2 * bins)
	return &Analyzer{
		bins:   bins,
		coeffs: window.Coefficients(),
		gain:   2 / window.Sum(),
	}, nil
}

// Bins returns the spectrum length
func (a *Analyzer) Bins() int {
	return a.bins
}

// WindowSize returns the number of time-domain samples consumed per spectrum
func (a *Analyzer) WindowSize() int {
	return 2 * a.bins
}

// Spectrum computes the magnitude spectrum of the last WindowSize() samples.
// Shorter input is left-padded with silence.
func (a *Analyzer) Spectrum(samples []float64) []float64 {
	size := a.WindowSize()
	if len(samples) > size {
		samples = samples[len(samples)-size:]
	}

	frame := make([]float64, size)
	offset := size - len(samples)
	for i, v := range samples {
		frame[offset+i] = v * a.coeffs[offset+i]
	}

	coeffs := fft.FFTReal(frame)
	spectrum := make([]float64, a.bins)
	for k := range spectrum {
		spectrum[k] = cmplx.Abs(coeffs[k]) * a.gain
	}
	return spectrum
}
