package filters

import (
	"math"
)

// DCRemoval implements a DC blocking filter (one-pole high-pass):
//
//	y[n] = x[n] - x[n-1] + R·y[n-1]
//
// References:
//   - Julius O. Smith III, "Introduction to Digital Filters with Audio Applications"
//     https://ccrma.stanford.edu/~jos/filters/DC_Blocker.html
type DCRemoval struct {
	poleLocation float64 // R parameter (0 < R < 1)

	x1 float64 // x[n-1]
	y1 float64 // y[n-1]
}

// DefaultPoleLocation gives a cutoff of roughly 35 Hz at 44.1 kHz
const DefaultPoleLocation = 0.995

// NewDCRemoval creates a DC blocker with the given -3dB cutoff.
// A non-positive cutoff or sample rate selects DefaultPoleLocation.
func NewDCRemoval(sampleRate int, cutoffFreq float64) *DCRemoval {
	dc := &DCRemoval{poleLocation: DefaultPoleLocation}
	if sampleRate > 0 && cutoffFreq > 0 {
		r := 1.0 - (2.0 * math.Pi * cutoffFreq / float64(sampleRate))
		dc.poleLocation = math.Min(math.Max(r, 0.001), 0.999)
	}
	return dc
}

// Process filters one sample
func (dc *DCRemoval) Process(input float64) float64 {
	output := input - dc.x1 + dc.poleLocation*dc.y1

	dc.x1 = input
	dc.y1 = output

	return output
}

// ProcessInPlace filters a whole buffer
func (dc *DCRemoval) ProcessInPlace(samples []float64) {
	for i, sample := range samples {
		samples[i] = dc.Process(sample)
	}
}

// Reset clears the filter state
func (dc *DCRemoval) Reset() {
	dc.x1 = 0.0
	dc.y1 = 0.0
}

// CutoffFrequency returns the approximate -3dB point for sampleRate
func (dc *DCRemoval) CutoffFrequency(sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0.0
	}
	return (1.0 - dc.poleLocation) * float64(sampleRate) / (2.0 * math.Pi)
}

// PoleLocation returns R
func (dc *DCRemoval) PoleLocation() float64 {
	return dc.poleLocation
}
