package detector

import (
	"fmt"

	"github.com/RyanBlaney/sonido-pitch/algorithms/harmonic"
	"github.com/RyanBlaney/sonido-pitch/algorithms/spectral"
	"github.com/RyanBlaney/sonido-pitch/logging"
)

// PitchEstimator runs SRH pitch estimation on live audio.
// All scratch memory is per call, so one estimator may serve several
// goroutines.
type PitchEstimator struct {
	config     EstimatorConfig
	analyzer   *spectral.Analyzer
	srh        *harmonic.SRH
	candidates []float64
	logger     logging.Logger
}

// NewPitchEstimator validates cfg and builds an estimator
func NewPitchEstimator(cfg EstimatorConfig) (*PitchEstimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	analyzer, err := spectral.NewAnalyzer(cfg.SpectrumSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create spectrum analyzer: %w", err)
	}

	pe := &PitchEstimator{
		config:     cfg,
		analyzer:   analyzer,
		srh:        harmonic.NewSRH(cfg.HarmonicsToUse),
		candidates: harmonic.Candidates(cfg.FrequencyMin, cfg.FrequencyMax, cfg.Resolution),
		logger: logging.WithFields(logging.Fields{
			"component": "pitch_estimator",
		}),
	}

	pe.logger.Debug("Pitch estimator ready", logging.Fields{
		"frequency_min": cfg.FrequencyMin,
		"frequency_max": cfg.FrequencyMax,
		"harmonics":     cfg.HarmonicsToUse,
		"window_size":   analyzer.WindowSize(),
	})

	return pe, nil
}

// Config returns the estimator configuration
func (pe *PitchEstimator) Config() EstimatorConfig {
	return pe.config
}

// WindowSize returns how many recent samples one estimate consumes
func (pe *PitchEstimator) WindowSize() int {
	return pe.analyzer.WindowSize()
}

// Estimate reads the latest window from src and estimates its pitch.
// A source that is not playing yields an unvoiced estimate with score 0
// and no spectral work.
func (pe *PitchEstimator) Estimate(src Source) PitchEstimate {
	if src == nil || !src.Playing() || src.SampleRate() <= 0 {
		return Unvoiced(0)
	}

	samples := make([]float64, pe.analyzer.WindowSize())
	src.Latest(samples)
	return pe.EstimateSamples(samples, src.SampleRate())
}

// EstimateSamples estimates the pitch of the most recent samples
func (pe *PitchEstimator) EstimateSamples(samples []float64, sampleRate int) PitchEstimate {
	spectrum := pe.analyzer.Spectrum(samples)
	return pe.EstimateSpectrum(spectrum, float64(sampleRate)/2)
}

// EstimateSpectrum estimates the pitch of a magnitude spectrum covering
// [0, nyquist] Hz
func (pe *PitchEstimator) EstimateSpectrum(spectrum []float64, nyquist float64) PitchEstimate {
	residual := spectral.Preprocess(spectrum, nyquist, pe.config.SmoothingWidth).Residual
	freq, score := pe.srh.Best(residual, nyquist, pe.candidates)
	return pe.decide(freq, score)
}

// EstimateWithProfile is EstimateSpectrum that also returns the score of
// every candidate
func (pe *PitchEstimator) EstimateWithProfile(spectrum []float64, nyquist float64) (PitchEstimate, []SRHPoint) {
	residual := spectral.Preprocess(spectrum, nyquist, pe.config.SmoothingWidth).Residual

	scores := make([]float64, len(pe.candidates))
	pe.srh.Profile(residual, nyquist, pe.candidates, scores)

	profile := make([]SRHPoint, len(scores))
	best := 0
	for i, score := range scores {
		profile[i] = SRHPoint{Frequency: pe.candidates[i], Score: score}
		if score > scores[best] {
			best = i
		}
	}

	if len(scores) == 0 {
		return Unvoiced(0), profile
	}
	return pe.decide(pe.candidates[best], scores[best]), profile
}

func (pe *PitchEstimator) decide(freq, score float64) PitchEstimate {
	if !(score >= pe.config.VoicingThreshold) {
		return Unvoiced(score)
	}
	return PitchEstimate{Frequency: freq, Score: score, Voiced: true}
}
