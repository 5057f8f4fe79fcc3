package spectral

import (
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
	"github.com/RyanBlaney/sonido-pitch/algorithms/windowing"
)

func TestNewAnalyzerRejectsBadSize(t *testing.T) {
	if _, err := NewAnalyzer(1000); !errors.Is(err, ErrNotPowerOfTwo) {
		t.Errorf("error = %v, want ErrNotPowerOfTwo", err)
	}
}

func TestAnalyzerPeakAmplitude(t *testing.T) {
	const sampleRate = 44100
	a, err := NewAnalyzer(1024)
	if err != nil {
		t.Fatal(err)
	}

	binWidth := float64(sampleRate) / 2 / float64(a.Bins())
	signal := sine(10*binWidth, sampleRate, 4096)
	for i := range signal {
		signal[i] *= 0.5
	}

	spectrum := a.Spectrum(signal)
	if len(spectrum) != 1024 {
		t.Fatalf("len = %d, want 1024", len(spectrum))
	}
	if peak := common.ArgMaxFrom(spectrum, 0); peak != 10 {
		t.Errorf("peak bin = %d, want 10", peak)
	}
	if math.Abs(spectrum[10]-0.5) > 1e-6 {
		t.Errorf("peak amplitude = %v, want 0.5", spectrum[10])
	}
}

func TestAnalyzerPadsShortInput(t *testing.T) {
	a, err := NewAnalyzer(16)
	if err != nil {
		t.Fatal(err)
	}
	spectrum := a.Spectrum([]float64{1, 1})
	if len(spectrum) != 16 {
		t.Fatalf("len = %d, want 16", len(spectrum))
	}
	silent := a.Spectrum(nil)
	for k, v := range silent {
		if v != 0 {
			t.Fatalf("bin %d = %v for silence", k, v)
		}
	}
}

func TestAnalyzerWindowsPaddedTail(t *testing.T) {
	a, err := NewAnalyzer(8)
	if err != nil {
		t.Fatal(err)
	}
	samples := sine(3, 16, 5)

	padded := make([]float64, a.WindowSize())
	copy(padded[len(padded)-len(samples):], samples)
	windowed := make([]float64, len(padded))
	hann := windowing.NewPeriodicHann(a.WindowSize())
	if err := hann.ApplyTo(windowed, padded); err != nil {
		t.Fatal(err)
	}
	want, err := NewFFT().MagnitudeSpectrum(windowed)
	if err != nil {
		t.Fatal(err)
	}

	got := a.Spectrum(samples)
	gain := 2 / hann.Sum()
	for k := range got {
		if math.Abs(got[k]-want[k]*gain) > 1e-12 {
			t.Errorf("bin %d = %v, want %v", k, got[k], want[k]*gain)
		}
	}
}
