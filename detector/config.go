package detector

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
	"github.com/RyanBlaney/sonido-pitch/algorithms/filters"
	"github.com/RyanBlaney/sonido-pitch/algorithms/spectral"
)

// ErrInvalidConfig is wrapped by every configuration validation failure
var ErrInvalidConfig = errors.New("invalid detector configuration")

// EstimatorConfig configures the real-time SRH pitch estimator.
// Estimates resolve to about one spectrum bin, sampleRate/(2*SpectrumSize)
// Hz, since residual amplitudes are interpolated linearly between bins.
// The default VoicingThreshold is tuned for harmonic sources; a pure sine
// with HarmonicsToUse 1 scores only 5 to 7 away from bin centers.
type EstimatorConfig struct {
	FrequencyMin     float64 `json:"frequency_min"`     // Hz, lowest candidate
	FrequencyMax     float64 `json:"frequency_max"`     // Hz, highest candidate
	HarmonicsToUse   int     `json:"harmonics_to_use"`  // 1-8
	SmoothingWidth   float64 `json:"smoothing_width"`   // Hz, envelope estimation bandwidth
	VoicingThreshold float64 `json:"voicing_threshold"` // minimum SRH score for a voiced frame
	SpectrumSize     int     `json:"spectrum_size"`     // bins, power of two
	Resolution       int     `json:"resolution"`        // number of candidates
}

// ExtractorConfig configures offline HPS note extraction
type ExtractorConfig struct {
	WindowSize     int     `json:"window_size"`     // samples, power of two
	HopSize        int     `json:"hop_size"`        // samples between windows
	SnapTolerance  float64 `json:"snap_tolerance"`  // Hz
	DedupTolerance float64 `json:"dedup_tolerance"` // Hz
	RangePadding   float64 `json:"range_padding"`   // Hz added to MaxFrequency
	Workers        int     `json:"workers,omitempty"`
}

// Config aggregates everything a detector needs
type Config struct {
	Estimator   EstimatorConfig           `json:"estimator"`
	Extractor   ExtractorConfig           `json:"extractor"`
	ClickFilter filters.ClickFilterConfig `json:"click_filter"`
}

// DefaultEstimatorConfig returns the standard voice-range estimator settings
func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		FrequencyMin:     40,
		FrequencyMax:     600,
		HarmonicsToUse:   5,
		SmoothingWidth:   500,
		VoicingThreshold: 7,
		SpectrumSize:     1024,
		Resolution:       200,
	}
}

// DefaultExtractorConfig returns the standard note extraction settings
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		WindowSize:     4096,
		HopSize:        2048,
		SnapTolerance:  7,
		DedupTolerance: 4,
		RangePadding:   100,
	}
}

// DefaultConfig returns the default detector configuration
func DefaultConfig() *Config {
	return &Config{
		Estimator:   DefaultEstimatorConfig(),
		Extractor:   DefaultExtractorConfig(),
		ClickFilter: filters.DefaultClickFilterConfig(),
	}
}

// Validate checks the estimator configuration
func (c EstimatorConfig) Validate() error {
	if !(c.FrequencyMin > 0) || !(c.FrequencyMax > c.FrequencyMin) {
		return fmt.Errorf("%w: frequency range [%v, %v]", ErrInvalidConfig, c.FrequencyMin, c.FrequencyMax)
	}
	if c.HarmonicsToUse < 1 || c.HarmonicsToUse > 8 {
		return fmt.Errorf("%w: harmonics to use must be 1-8, got %d", ErrInvalidConfig, c.HarmonicsToUse)
	}
	if c.SmoothingWidth < 0 {
		return fmt.Errorf("%w: negative smoothing width %v", ErrInvalidConfig, c.SmoothingWidth)
	}
	if !common.IsPowerOfTwo(c.SpectrumSize) {
		return fmt.Errorf("%w: spectrum size: %w: %d (try %d)", ErrInvalidConfig, spectral.ErrNotPowerOfTwo, c.SpectrumSize, common.NextPowerOfTwo(c.SpectrumSize))
	}
	if c.Resolution < 2 {
		return fmt.Errorf("%w: resolution must be at least 2, got %d", ErrInvalidConfig, c.Resolution)
	}
	return nil
}

// Validate checks the extractor configuration
func (c ExtractorConfig) Validate() error {
	if !common.IsPowerOfTwo(c.WindowSize) {
		return fmt.Errorf("%w: window size: %w: %d (try %d)", ErrInvalidConfig, spectral.ErrNotPowerOfTwo, c.WindowSize, common.NextPowerOfTwo(c.WindowSize))
	}
	if c.HopSize <= 0 {
		return fmt.Errorf("%w: hop size must be positive, got %d", ErrInvalidConfig, c.HopSize)
	}
	if c.SnapTolerance < 0 || c.DedupTolerance < 0 || c.RangePadding < 0 {
		return fmt.Errorf("%w: tolerances and padding must be non-negative", ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: negative worker count %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// Validate checks every section
func (c *Config) Validate() error {
	if err := c.Estimator.Validate(); err != nil {
		return fmt.Errorf("estimator: %w", err)
	}
	if err := c.Extractor.Validate(); err != nil {
		return fmt.Errorf("extractor: %w", err)
	}
	if err := c.ClickFilter.Validate(); err != nil {
		return fmt.Errorf("click filter: %w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// LoadConfig reads a JSON configuration file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
