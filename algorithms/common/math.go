package common

import (
	"math"

	"github.com/mjibson/go-dsp/dsputils"
	"gonum.org/v1/gonum/floats"
)

// PrefixSums returns p with p[0] = 0 and p[k] = data[0] + ... + data[k-1].
// The sum of data[lo..hi] inclusive is p[hi+1] - p[lo].
func PrefixSums(data []float64) []float64 {
	p := make([]float64, len(data)+1)
	for i, v := range data {
		p[i+1] = p[i] + v
	}
	return p
}

// ArgMaxFrom returns the index of the largest value in data[from:].
// Ties resolve to the lowest index. Returns -1 when the range is empty.
func ArgMaxFrom(data []float64, from int) int {
	if from < 0 {
		from = 0
	}
	if from >= len(data) {
		return -1
	}
	return floats.MaxIdx(data[from:]) + from
}

// Lerp performs linear interpolation between two values
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// IsPowerOfTwo checks if n is a positive power of 2
func IsPowerOfTwo(n int) bool {
	return n > 0 && dsputils.IsPowerOf2(n)
}

// NextPowerOfTwo finds the next power of 2 >= n
func NextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	return dsputils.NextPowerOf2(n)
}

// Scale maps value from [oldMin, oldMax] onto [newMin, newMax].
// A degenerate source range maps everything to newMin.
func Scale(value, oldMin, oldMax, newMin, newMax float64) float64 {
	oldRange := oldMax - oldMin
	if oldRange == 0 || math.IsInf(oldRange, 0) || math.IsNaN(oldRange) {
		return newMin
	}
	return (value-oldMin)*(newMax-newMin)/oldRange + newMin
}
