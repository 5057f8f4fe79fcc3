package detector

import (
	"math"
)

// Deduplicate keeps only the events whose snapped frequency moves more than
// tolerance Hz away from the previously kept one; the first event is always
// kept. MaxFrequency is the largest kept frequency plus padding and
// MinFrequency the smallest positive one. Without a positive frequency the
// minimum is reported as 0, and an empty input yields a zero range.
//
// Deduplicate(Deduplicate(x).Notes) keeps the same notes and range.
func Deduplicate(events []NoteEvent, tolerance, padding float64) *NoteSequence {
	seq := &NoteSequence{Notes: make([]NoteEvent, 0)}
	if len(events) == 0 {
		return seq
	}

	last := math.Inf(-1)
	minFreq := math.Inf(1)
	maxFreq := math.Inf(-1)

	for _, ev := range events {
		f := ev.KeyFrequency
		if !(math.Abs(f-last) > tolerance) {
			continue
		}

		seq.Notes = append(seq.Notes, ev)
		last = f
		maxFreq = math.Max(maxFreq, f)
		if f > 0 && f < minFreq {
			minFreq = f
		}
	}

	seq.MaxFrequency = maxFreq + padding
	if !math.IsInf(minFreq, 1) {
		seq.MinFrequency = minFreq
	}
	return seq
}
