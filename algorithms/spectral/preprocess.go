package spectral

import (
	"math"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
)

// logFloor keeps ln() finite on silent bins
const logFloor = 1e-9

// PreprocessedSpectrum holds the log magnitude spectrum and its residual
// after removing a local moving average (the spectral envelope).
type PreprocessedSpectrum struct {
	Log      []float64
	Residual []float64
}

// Preprocess computes the log and residual spectra of a magnitude spectrum
// covering [0, nyquist] Hz in len(spectrum) bins.
//
// The residual at bin i subtracts the mean of Log over the inclusive bin range
// [max(i-hw+1, 0), min(i+hw, N-1)], hw being half of smoothingWidthHz in bins.
// Each bin costs O(1) thanks to a single prefix-sum pass.
func Preprocess(spectrum []float64, nyquist, smoothingWidthHz float64) *PreprocessedSpectrum {
	n := len(spectrum)
	result := &PreprocessedSpectrum{
		Log:      make([]float64, n),
		Residual: make([]float64, n),
	}
	if n == 0 {
		return result
	}

	for i, v := range spectrum {
		result.Log[i] = math.Log(v + logFloor)
	}

	hw := HalfWidthBins(n, nyquist, smoothingWidthHz)
	prefix := common.PrefixSums(result.Log)

	for i := 0; i < n; i++ {
		lo := max(i-hw+1, 0)
		hi := min(i+hw, n-1)
		if lo > hi {
			lo = hi
		}
		mean := (prefix[hi+1] - prefix[lo]) / float64(hi-lo+1)
		result.Residual[i] = result.Log[i] - mean
	}

	return result
}

// HalfWidthBins converts half of a smoothing width in Hz to a bin count.
// Halves round to even.
func HalfWidthBins(bins int, nyquist, smoothingWidthHz float64) int {
	if nyquist <= 0 || smoothingWidthHz <= 0 {
		return 0
	}
	return int(math.RoundToEven((smoothingWidthHz / 2) / nyquist * float64(bins)))
}
