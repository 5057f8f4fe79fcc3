package spectral

import (
	"math"
	"testing"
)

func naiveResidual(log []float64, hw int) []float64 {
	n := len(log)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		lo := max(i-hw+1, 0)
		hi := min(i+hw, n-1)
		if lo > hi {
			lo = hi
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += log[j]
		}
		out[i] = log[i] - sum/float64(hi-lo+1)
	}
	return out
}

func TestPreprocessMatchesNaiveMean(t *testing.T) {
	spectrum := randomSignal(64, 7)
	for i := range spectrum {
		spectrum[i] = math.Abs(spectrum[i])
	}

	const nyquist = 22050.0
	const width = 2000.0
	hw := HalfWidthBins(len(spectrum), nyquist, width)
	if hw != 3 {
		t.Fatalf("half width = %d, want 3", hw)
	}

	got := Preprocess(spectrum, nyquist, width)
	want := naiveResidual(got.Log, hw)
	for i := range want {
		if math.Abs(got.Residual[i]-want[i]) > 1e-9 {
			t.Fatalf("bin %d: residual %v, want %v", i, got.Residual[i], want[i])
		}
	}
}

func TestPreprocessLogFloor(t *testing.T) {
	got := Preprocess([]float64{0, 1}, 22050, 500)
	if math.IsInf(got.Log[0], 0) || math.Abs(got.Log[0]-math.Log(1e-9)) > 1e-12 {
		t.Errorf("Log[0] = %v, want ln(1e-9)", got.Log[0])
	}
}

func TestPreprocessFlatSpectrumHasZeroResidual(t *testing.T) {
	spectrum := make([]float64, 128)
	for i := range spectrum {
		spectrum[i] = 0.25
	}
	got := Preprocess(spectrum, 22050, 500)
	for i, r := range got.Residual {
		if math.Abs(r) > 1e-12 {
			t.Fatalf("bin %d residual = %v, want 0", i, r)
		}
	}
}

func TestPreprocessZeroHalfWidth(t *testing.T) {
	spectrum := []float64{1, 5, 2, 8}
	got := Preprocess(spectrum, 22050, 1)
	for i, r := range got.Residual {
		if r != 0 {
			t.Errorf("bin %d residual = %v, want 0 with a single-bin window", i, r)
		}
	}
}

func TestPreprocessEmpty(t *testing.T) {
	got := Preprocess(nil, 22050, 500)
	if len(got.Log) != 0 || len(got.Residual) != 0 {
		t.Error("expected empty outputs")
	}
}

func TestHalfWidthBinsDefaults(t *testing.T) {
	if got := HalfWidthBins(1024, 22050, 500); got != 12 {
		t.Errorf("HalfWidthBins = %d, want 12", got)
	}
	if got := HalfWidthBins(1024, 0, 500); got != 0 {
		t.Errorf("zero nyquist half width = %d, want 0", got)
	}
}
