package filters

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
)

// ClickFilterMode selects the click suppression algorithm
type ClickFilterMode string

const (
	ClickFilterOff     ClickFilterMode = "off"
	ClickFilterSimple  ClickFilterMode = "simple"
	ClickFilterGeneral ClickFilterMode = "general"
)

// Default click filter parameters
const (
	DefaultClickThreshold = 0.05
	DefaultLargeWindow    = 2074 * 16
	DefaultSmallWindow    = 20 * 16
)

// ClickFilterConfig configures the optional, destructive preprocessing
// applied to a buffer before analysis
type ClickFilterConfig struct {
	Mode        ClickFilterMode `json:"mode"`
	Threshold   float64         `json:"threshold"`
	LargeWindow int             `json:"large_window"`
	SmallWindow int             `json:"small_window"`
	RemoveDC    bool            `json:"remove_dc"`
	DCCutoffHz  float64         `json:"dc_cutoff_hz"`
}

// DefaultClickFilterConfig returns a disabled filter with the standard windows
func DefaultClickFilterConfig() ClickFilterConfig {
	return ClickFilterConfig{
		Mode:        ClickFilterOff,
		Threshold:   DefaultClickThreshold,
		LargeWindow: DefaultLargeWindow,
		SmallWindow: DefaultSmallWindow,
		DCCutoffHz:  20,
	}
}

// Validate checks the configuration
func (c ClickFilterConfig) Validate() error {
	switch c.Mode {
	case "", ClickFilterOff, ClickFilterSimple:
	case ClickFilterGeneral:
		if c.SmallWindow < 2 || c.LargeWindow <= c.SmallWindow {
			return fmt.Errorf("general click filter needs 2 <= small window (%d) < large window (%d)", c.SmallWindow, c.LargeWindow)
		}
	default:
		return fmt.Errorf("unknown click filter mode %q", c.Mode)
	}
	if c.Threshold < 0 {
		return fmt.Errorf("click threshold must be non-negative, got %v", c.Threshold)
	}
	return nil
}

// Enabled reports whether Apply would modify samples
func (c ClickFilterConfig) Enabled() bool {
	return c.RemoveDC || (c.Mode != "" && c.Mode != ClickFilterOff)
}

// Apply runs the configured filters over samples in place
func (c ClickFilterConfig) Apply(samples []float64, sampleRate int) error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.RemoveDC {
		NewDCRemoval(sampleRate, c.DCCutoffHz).ProcessInPlace(samples)
	}

	switch c.Mode {
	case ClickFilterSimple:
		SimpleClickFilter(samples, c.Threshold)
	case ClickFilterGeneral:
		GeneralClickFilter(samples, c.Threshold, c.LargeWindow, c.SmallWindow)
	}
	return nil
}

// SimpleClickFilter zeroes every sample that jumps more than threshold away
// from its predecessor. Runs sequentially, so a zeroed sample becomes the
// reference for the next one.
func SimpleClickFilter(samples []float64, threshold float64) {
	for i := 1; i < len(samples); i++ {
		if math.Abs(samples[i]-samples[i-1]) > threshold {
			samples[i] = 0
		}
	}
}

// GeneralClickFilter compares the mean square of a large window with that of
// a small window centered in it. Where they differ by more than threshold the
// small window is replaced by a straight line between its end samples.
// The large window starts half outside the buffer; missing samples count as zero.
func GeneralClickFilter(samples []float64, threshold float64, largeWindow, smallWindow int) {
	if smallWindow < 2 || largeWindow <= smallWindow {
		return
	}

	first := -largeWindow/2 + smallWindow/2
	last := len(samples) - largeWindow
	if first > last {
		return
	}

	squareAt := func(i int) float64 {
		if i < 0 {
			return 0
		}
		return samples[i] * samples[i]
	}

	// Running sums of squares over both windows
	var largeSum, smallSum float64
	for i := first; i < first+largeWindow; i++ {
		largeSum += squareAt(i)
	}
	smallStart := first + largeWindow/2 - smallWindow/2
	for i := smallStart; i < smallStart+smallWindow; i++ {
		smallSum += squareAt(i)
	}

	for largeIndex := first; largeIndex <= last; largeIndex++ {
		smallIndex := largeIndex + largeWindow/2 - smallWindow/2

		if largeIndex > first {
			largeSum += squareAt(largeIndex+largeWindow-1) - squareAt(largeIndex-1)
			smallSum += squareAt(smallIndex+smallWindow-1) - squareAt(smallIndex-1)
		}

		largeAvg := largeSum / float64(largeWindow)
		smallAvg := smallSum / float64(smallWindow)
		if math.Abs(largeAvg-smallAvg) <= threshold {
			continue
		}

		// The small window lies inside the large one, so both sums follow the rewrite
		before := smallSum
		interpolateWindow(samples, smallIndex, smallWindow)
		smallSum = 0
		for i := smallIndex; i < smallIndex+smallWindow; i++ {
			smallSum += samples[i] * samples[i]
		}
		largeSum += smallSum - before
	}
}

func interpolateWindow(samples []float64, start, count int) {
	y0 := samples[start]
	y1 := samples[start+count-1]
	for i := 0; i < count; i++ {
		samples[start+i] = common.Lerp(y0, y1, float64(i)/float64(count-1))
	}
}
