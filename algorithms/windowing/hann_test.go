package windowing

import (
	"math"
	"testing"
)

func TestPeriodicHannCoefficients(t *testing.T) {
	h := NewPeriodicHann(8)
	c := h.Coefficients()

	if c[0] != 0 {
		t.Errorf("w[0] = %v, want 0", c[0])
	}
	if math.Abs(c[4]-1) > 1e-12 {
		t.Errorf("w[N/2] = %v, want 1", c[4])
	}
	// Periodic window: w[n] == w[N-n]
	for n := 1; n < 8; n++ {
		if math.Abs(c[n]-c[8-n]) > 1e-12 {
			t.Errorf("w[%d]=%v != w[%d]=%v", n, c[n], 8-n, c[8-n])
		}
	}
	if math.Abs(h.Sum()-4) > 1e-12 {
		t.Errorf("sum = %v, want N/2 = 4", h.Sum())
	}
}

func TestSymmetricHannEndpoints(t *testing.T) {
	c := NewHann(9, true).Coefficients()
	if c[0] != 0 || math.Abs(c[8]) > 1e-12 {
		t.Errorf("symmetric endpoints = %v, %v, want 0, 0", c[0], c[8])
	}
}

func TestApplyToLengthMismatch(t *testing.T) {
	h := NewPeriodicHann(16)
	if err := h.ApplyTo(make([]float64, 16), make([]float64, 15)); err == nil {
		t.Error("expected error for short signal")
	}
	if err := h.ApplyTo(make([]float64, 17), make([]float64, 16)); err == nil {
		t.Error("expected error for long destination")
	}
}

func TestApplyToAliased(t *testing.T) {
	h := NewPeriodicHann(4)
	signal := []float64{2, 2, 2, 2}
	if err := h.ApplyTo(signal, signal); err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 1, 2, 1}
	for i := range want {
		if math.Abs(signal[i]-want[i]) > 1e-12 {
			t.Errorf("signal[%d] = %v, want %v", i, signal[i], want[i])
		}
	}
}
