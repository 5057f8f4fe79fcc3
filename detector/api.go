package detector

import (
	"context"
	"fmt"
	"time"
)

// EstimatePitch estimates the pitch of the most recent samples of a live
// window. Errors only report invalid configuration; silence and noise come
// back as an unvoiced estimate.
func EstimatePitch(samples []float64, sampleRate int, cfg EstimatorConfig) (PitchEstimate, error) {
	if sampleRate <= 0 {
		return Unvoiced(0), fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidConfig, sampleRate)
	}

	pe, err := NewPitchEstimator(cfg)
	if err != nil {
		return Unvoiced(0), err
	}
	return pe.EstimateSamples(samples, sampleRate), nil
}

// ExtractNotes runs HPS note extraction over a whole mono buffer and
// returns the deduplicated note sequence. A buffer shorter than one window
// yields an empty sequence.
func ExtractNotes(buffer []float64, sampleRate int, cfg ExtractorConfig) (*NoteSequence, error) {
	return ExtractNotesContext(context.Background(), buffer, sampleRate, cfg, nil)
}

// ExtractNotesContext is ExtractNotes with cancellation and progress reporting
func ExtractNotesContext(ctx context.Context, buffer []float64, sampleRate int, cfg ExtractorConfig, progress ProgressFunc) (*NoteSequence, error) {
	ne, err := NewNoteExtractor(sampleRate, cfg)
	if err != nil {
		return nil, err
	}
	ne.WithProgress(progress)

	events, err := ne.Extract(ctx, buffer)
	if err != nil {
		return nil, err
	}

	seq := Deduplicate(events, cfg.DedupTolerance, cfg.RangePadding)
	seq.SampleRate = sampleRate
	seq.Duration = time.Duration(float64(len(buffer)) / float64(sampleRate) * float64(time.Second))
	return seq, nil
}
