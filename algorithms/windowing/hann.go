package windowing

import (
	"fmt"
	"math"
)

// Hann is a precomputed Hann window.
// The periodic form w[n] = 0.5(1 - cos(2πn/N)) is what the note extractor
// and the live analyzer use; the symmetric form divides by N-1.
type Hann struct {
	size         int
	symmetric    bool
	coefficients []float64
	sum          float64
}

// NewHann creates a new Hann window
func NewHann(size int, symmetric bool) *Hann {
	h := &Hann{
		size:      size,
		symmetric: symmetric,
	}
	h.generate()
	return h
}

// NewPeriodicHann is shorthand for NewHann(size, false)
func NewPeriodicHann(size int) *Hann {
	return NewHann(size, false)
}

func (h *Hann) generate() {
	h.coefficients = make([]float64, h.size)

	denominator := float64(h.size)
	if h.symmetric {
		denominator = float64(h.size - 1)
	}
	if denominator <= 0 {
		// Size 1: a single unit coefficient
		for i := range h.coefficients {
			h.coefficients[i] = 1
		}
		h.sum = float64(h.size)
		return
	}

	for i := 0; i < h.size; i++ {
		c := 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/denominator))
		h.coefficients[i] = c
		h.sum += c
	}
}

// ApplyTo writes signal*window into dst. dst may alias signal.
func (h *Hann) ApplyTo(dst, signal []float64) error {
	if len(signal) != h.size || len(dst) != h.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), h.size)
	}

	for i := 0; i < h.size; i++ {
		dst[i] = signal[i] * h.coefficients[i]
	}

	return nil
}

// Coefficients returns a copy of the window coefficients
func (h *Hann) Coefficients() []float64 {
	coeffs := make([]float64, len(h.coefficients))
	copy(coeffs, h.coefficients)
	return coeffs
}

// Sum returns the sum of the coefficients (coherent gain times size)
func (h *Hann) Sum() float64 {
	return h.sum
}
