package spectral

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
	"github.com/RyanBlaney/sonido-pitch/algorithms/windowing"
)

func sine(freq float64, sampleRate, n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return x
}

func TestNewSTFTValidation(t *testing.T) {
	if _, err := NewSTFT(1000, 500); !errors.Is(err, ErrNotPowerOfTwo) {
		t.Errorf("error = %v, want ErrNotPowerOfTwo", err)
	}
	if _, err := NewSTFT(1024, 0); err == nil {
		t.Error("expected error for zero hop")
	}
}

func TestFrameCount(t *testing.T) {
	s, err := NewSTFT(4096, 2048)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct{ n, want int }{
		{0, 0}, {4095, 0}, {4096, 1}, {6143, 1}, {6144, 2}, {44100, 20},
	}
	for _, tt := range tests {
		if got := s.FrameCount(tt.n); got != tt.want {
			t.Errorf("FrameCount(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestForEachFrameFindsTone(t *testing.T) {
	const sampleRate = 8192
	s, err := NewSTFT(1024, 512)
	if err != nil {
		t.Fatal(err)
	}
	s.WithWorkers(3)

	// 8 Hz per bin, bin 64
	signal := sine(512, sampleRate, sampleRate)

	var mu sync.Mutex
	peaks := make(map[int]int)
	err = s.ForEachFrame(context.Background(), signal, func(f Frame) {
		peak := common.ArgMaxFrom(f.Magnitude, 1)
		mu.Lock()
		peaks[f.Index] = peak
		mu.Unlock()
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(peaks) != s.FrameCount(len(signal)) {
		t.Fatalf("got %d frames, want %d", len(peaks), s.FrameCount(len(signal)))
	}
	for idx, peak := range peaks {
		if peak != 64 {
			t.Errorf("frame %d peak bin = %d, want 64", idx, peak)
		}
	}
}

func TestForEachFrameCancelled(t *testing.T) {
	s, err := NewSTFT(256, 128)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.ForEachFrame(ctx, make([]float64, 256*400), func(Frame) {})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestSingleFrameLength(t *testing.T) {
	s, err := NewSTFT(64, 32)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.SingleFrame(make([]float64, 63)); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("error = %v, want ErrLengthMismatch", err)
	}
	mag, err := s.SingleFrame(make([]float64, 64))
	if err != nil {
		t.Fatal(err)
	}
	if len(mag) != 33 {
		t.Errorf("bins = %d, want 33", len(mag))
	}
}

func TestForEachFrameStopsOnAnalysisError(t *testing.T) {
	s, err := NewSTFT(8, 4)
	if err != nil {
		t.Fatal(err)
	}
	s.WithWorkers(2)
	// Window shorter than the frame makes every analysis fail
	s.window = windowing.NewPeriodicHann(4)

	var calls int
	var mu sync.Mutex
	err = s.ForEachFrame(context.Background(), make([]float64, 64), func(Frame) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	if err == nil {
		t.Fatal("expected analysis error, got nil")
	}
	if calls != 0 {
		t.Errorf("fn called %d times after failed analysis", calls)
	}
}

func TestSingleFrameMatchesMagnitudeSpectrum(t *testing.T) {
	s, err := NewSTFT(64, 32)
	if err != nil {
		t.Fatal(err)
	}
	x := sine(1000, 8000, 64)

	got, err := s.SingleFrame(x)
	if err != nil {
		t.Fatal(err)
	}

	windowed := make([]float64, 64)
	if err := windowing.NewPeriodicHann(64).ApplyTo(windowed, x); err != nil {
		t.Fatal(err)
	}
	want, err := NewFFT().MagnitudeSpectrum(windowed)
	if err != nil {
		t.Fatal(err)
	}
	for k := range want {
		if math.Abs(got[k]-want[k]) > 1e-9 {
			t.Fatalf("bin %d = %v, want %v", k, got[k], want[k])
		}
	}
}
