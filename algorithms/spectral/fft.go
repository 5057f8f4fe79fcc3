package spectral

import (
	"errors"
	"fmt"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
	"github.com/mjibson/go-dsp/fft"
)

var (
	// ErrNotPowerOfTwo is returned for transform lengths the radix-2 kernel cannot handle
	ErrNotPowerOfTwo = errors.New("fft length is not a power of two")

	// ErrLengthMismatch is returned when an output buffer does not fit the transform
	ErrLengthMismatch = errors.New("buffer length mismatch")
)

// FFT wraps the go-dsp transforms. Lengths are checked up front so only
// the radix-2 kernel is ever reached; go-dsp would otherwise fall back to
// Bluestein for other sizes.
// It holds no state and is safe for concurrent use.
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

func checkLength(n int) error {
	if !common.IsPowerOfTwo(n) {
		return fmt.Errorf("%w: length %d", ErrNotPowerOfTwo, n)
	}
	return nil
}

// Compute transforms a real signal and returns the full complex spectrum
func (f *FFT) Compute(x []float64) ([]complex128, error) {
	if err := checkLength(len(x)); err != nil {
		return nil, err
	}
	return fft.FFTReal(x), nil
}

// ComputeComplex transforms a complex sequence out of place
func (f *FFT) ComputeComplex(x []complex128) ([]complex128, error) {
	if err := checkLength(len(x)); err != nil {
		return nil, err
	}
	return fft.FFT(x), nil
}

// ComputeInverse computes the inverse FFT, scaled by 1/N
func (f *FFT) ComputeInverse(x []complex128) ([]complex128, error) {
	if err := checkLength(len(x)); err != nil {
		return nil, err
	}
	return fft.IFFT(x), nil
}

// ComputeInverseReal computes the inverse FFT and returns the real part only
func (f *FFT) ComputeInverseReal(x []complex128) ([]float64, error) {
	signal, err := f.ComputeInverse(x)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(signal))
	for i, v := range signal {
		out[i] = real(v)
	}
	return out, nil
}

// MagnitudeSpectrum returns |X[k]| for the first N/2+1 bins of a real signal
func (f *FFT) MagnitudeSpectrum(x []float64) ([]float64, error) {
	magnitude := make([]float64, len(x)/2+1)
	if err := f.MagnitudeSpectrumInto(magnitude, x); err != nil {
		return nil, err
	}
	return magnitude, nil
}

// MagnitudeSpectrumInto writes |X[k]| for k = 0..N/2 into dst, which must
// hold exactly N/2+1 values
func (f *FFT) MagnitudeSpectrumInto(dst, x []float64) error {
	if err := checkLength(len(x)); err != nil {
		return err
	}
	if len(dst) != len(x)/2+1 {
		return fmt.Errorf("%w: magnitude buffer %d, want %d", ErrLengthMismatch, len(dst), len(x)/2+1)
	}

	coeffs := fft.FFTReal(x)
	for k := range dst {
		dst[k] = cmplx.Abs(coeffs[k])
	}
	return nil
}
