package detector

import (
	"math"
	"time"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
)

// PitchEstimate is the result of one real-time estimation
type PitchEstimate struct {
	Frequency float64 `json:"frequency"` // Hz, NaN when unvoiced
	Score     float64 `json:"score"`     // best SRH score
	Voiced    bool    `json:"voiced"`
}

// Unvoiced builds the "no pitch" estimate
func Unvoiced(score float64) PitchEstimate {
	return PitchEstimate{Frequency: math.NaN(), Score: score}
}

// SRHPoint is one candidate of an SRH profile
type SRHPoint struct {
	Frequency float64 `json:"frequency"`
	Score     float64 `json:"score"`
}

// NoteEvent is the analysis result of one extraction window
type NoteEvent struct {
	Frequency    float64 `json:"frequency"`     // raw HPS frequency, Hz
	KeyFrequency float64 `json:"key_frequency"` // snapped table frequency, 0 when unmatched
	Key          string  `json:"key"`           // e.g. "A4", empty when unmatched
	Window       int     `json:"window"`        // hop index
	Time         float64 `json:"time"`          // window start, seconds
}

// NoteSequence is a deduplicated run of note events plus the observed range
type NoteSequence struct {
	Notes        []NoteEvent   `json:"notes"`
	MinFrequency float64       `json:"min_frequency"`
	MaxFrequency float64       `json:"max_frequency"`
	SampleRate   int           `json:"sample_rate"`
	Duration     time.Duration `json:"duration"`
}

// Frequencies returns the snapped frequency of every note
func (s *NoteSequence) Frequencies() []float64 {
	out := make([]float64, len(s.Notes))
	for i, n := range s.Notes {
		out[i] = n.KeyFrequency
	}
	return out
}

// Scale maps freq into [0, 1] over [MinFrequency, MaxFrequency].
// A degenerate range maps to 0.
func (s *NoteSequence) Scale(freq float64) float64 {
	if s.MaxFrequency <= s.MinFrequency {
		return 0
	}
	return common.Scale(freq, s.MinFrequency, s.MaxFrequency, 0, 1)
}

// Source is a live sample provider for the real-time estimator
type Source interface {
	// Playing reports whether the source is currently producing samples
	Playing() bool
	// SampleRate returns the sample rate in Hz
	SampleRate() int
	// Latest fills dst with the most recent samples, oldest first
	Latest(dst []float64) int
}
