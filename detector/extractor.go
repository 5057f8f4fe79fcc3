package detector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RyanBlaney/sonido-pitch/algorithms/harmonic"
	"github.com/RyanBlaney/sonido-pitch/algorithms/spectral"
	"github.com/RyanBlaney/sonido-pitch/algorithms/tonal"
	"github.com/RyanBlaney/sonido-pitch/logging"
)

// ProgressFunc is told how many of total windows have been analyzed.
// With more than one worker it runs on the extraction worker goroutines,
// not the caller's. Calls are serialized and done never decreases.
type ProgressFunc func(done, total int)

// Percent converts progress counts to 0-100
func Percent(done, total int) float64 {
	if total <= 0 {
		return 100
	}
	return float64(done) / float64(total) * 100
}

// NoteExtractor converts a whole buffer into per-window note events using
// the Harmonic Product Spectrum
type NoteExtractor struct {
	sampleRate int
	config     ExtractorConfig
	stft       *spectral.STFT
	hps        *harmonic.HarmonicProduct
	progress   ProgressFunc
	logger     logging.Logger
}

// NewNoteExtractor validates cfg and builds an extractor for sampleRate audio
func NewNoteExtractor(sampleRate int, cfg ExtractorConfig) (*NoteExtractor, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidConfig, sampleRate)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stft, err := spectral.NewSTFT(cfg.WindowSize, cfg.HopSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create STFT: %w", err)
	}
	stft.WithWorkers(cfg.Workers)

	return &NoteExtractor{
		sampleRate: sampleRate,
		config:     cfg,
		stft:       stft,
		hps:        harmonic.NewHarmonicProduct(sampleRate, harmonic.DefaultHPSHarmonics),
		logger: logging.WithFields(logging.Fields{
			"component":   "note_extractor",
			"sample_rate": sampleRate,
		}),
	}, nil
}

// WithProgress registers a progress callback. It is called once per window
// from the worker goroutines, never concurrently, and once more from the
// calling goroutine when extraction finishes.
func (ne *NoteExtractor) WithProgress(fn ProgressFunc) *NoteExtractor {
	ne.progress = fn
	return ne
}

// WindowCount returns how many windows a buffer of n samples yields
func (ne *NoteExtractor) WindowCount(n int) int {
	return ne.stft.FrameCount(n)
}

// Extract analyzes every full window of buffer and returns one event per
// window in order. A buffer shorter than one window gives no events.
func (ne *NoteExtractor) Extract(ctx context.Context, buffer []float64) ([]NoteEvent, error) {
	total := ne.stft.FrameCount(len(buffer))
	events := make([]NoteEvent, total)
	if total == 0 {
		ne.report(0, 0)
		return events, nil
	}

	logger := ne.logger.WithContext(ctx)
	logger.Debug("Starting note extraction", logging.Fields{
		"samples": len(buffer),
		"windows": total,
	})
	started := time.Now()

	var (
		mu   sync.Mutex
		done int
	)
	err := ne.stft.ForEachFrame(ctx, buffer, func(frame spectral.Frame) {
		// Each index is written by exactly one worker
		events[frame.Index] = ne.eventFor(frame.Index, frame.Start, frame.Magnitude)

		if ne.progress != nil {
			mu.Lock()
			done++
			ne.progress(done, total)
			mu.Unlock()
		}
	})
	if err != nil {
		logger.Error(err, "Note extraction interrupted")
		return nil, fmt.Errorf("note extraction interrupted: %w", err)
	}

	ne.report(total, total)
	logger.Debug("Note extraction completed", logging.Fields{
		"windows":  total,
		"duration": time.Since(started).String(),
	})

	return events, nil
}

// ExtractSingleWindow treats the whole buffer as one analysis window.
// Its length must be a power of two.
func (ne *NoteExtractor) ExtractSingleWindow(buffer []float64) (NoteEvent, error) {
	stft, err := spectral.NewSTFT(len(buffer), len(buffer))
	if err != nil {
		return NoteEvent{}, err
	}

	magnitude, err := stft.SingleFrame(buffer)
	if err != nil {
		return NoteEvent{}, err
	}

	return ne.eventForWindow(0, 0, len(buffer), magnitude), nil
}

func (ne *NoteExtractor) eventFor(index, start int, magnitude []float64) NoteEvent {
	return ne.eventForWindow(index, start, ne.config.WindowSize, magnitude)
}

func (ne *NoteExtractor) eventForWindow(index, start, windowSize int, magnitude []float64) NoteEvent {
	freq, _ := ne.hps.EstimateF0(magnitude, windowSize)
	note, _ := tonal.Snap(freq, ne.config.SnapTolerance)

	return NoteEvent{
		Frequency:    freq,
		KeyFrequency: note.Frequency,
		Key:          note.Label(),
		Window:       index,
		Time:         float64(start) / float64(ne.sampleRate),
	}
}

func (ne *NoteExtractor) report(done, total int) {
	if ne.progress != nil {
		ne.progress(done, total)
	}
}
