package detector

import (
	"context"
	"fmt"

	"github.com/RyanBlaney/sonido-pitch/logging"
)

// Detector bundles a validated configuration with the preprocessing and
// analysis steps a host runs on decoded audio
type Detector struct {
	config *Config
	logger logging.Logger
}

// New creates a detector. A nil config selects DefaultConfig.
func New(cfg *Config) (*Detector, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Detector{
		config: cfg,
		logger: logging.WithFields(logging.Fields{
			"component": "detector",
		}),
	}, nil
}

// Config returns the detector configuration
func (d *Detector) Config() *Config {
	return d.config
}

// NewEstimator builds a pitch estimator from the estimator section
func (d *Detector) NewEstimator() (*PitchEstimator, error) {
	return NewPitchEstimator(d.config.Estimator)
}

// Notes applies the click filter (on a copy) and extracts the deduplicated
// note sequence of a mono track
func (d *Detector) Notes(ctx context.Context, samples []float64, sampleRate int, progress ProgressFunc) (*NoteSequence, error) {
	input := samples
	if d.config.ClickFilter.Enabled() {
		input = make([]float64, len(samples))
		copy(input, samples)
		if err := d.config.ClickFilter.Apply(input, sampleRate); err != nil {
			return nil, fmt.Errorf("click filter failed: %w", err)
		}
		d.logger.Debug("Click filter applied", logging.Fields{
			"mode":      d.config.ClickFilter.Mode,
			"remove_dc": d.config.ClickFilter.RemoveDC,
		})
	}

	seq, err := ExtractNotesContext(ctx, input, sampleRate, d.config.Extractor, progress)
	if err != nil {
		return nil, err
	}

	d.logger.Info("Notes extracted", logging.Fields{
		"notes":         len(seq.Notes),
		"min_frequency": seq.MinFrequency,
		"max_frequency": seq.MaxFrequency,
		"duration":      seq.Duration.String(),
	})
	return seq, nil
}
