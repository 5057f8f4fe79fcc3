package harmonic

import (
	"math"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
)

// SRH scores fundamental candidates with Summation of Residual Harmonics
// (Drugman & Alwan). Each harmonic h·f adds the residual amplitude there and
// subtracts it at the inter-harmonic (h-0.5)·f.
type SRH struct {
	harmonics int
}

// NewSRH creates a scorer using harmonics 1..harmonics
func NewSRH(harmonics int) *SRH {
	return &SRH{harmonics: max(harmonics, 1)}
}

// Candidates returns resolution frequencies evenly spaced over
// [minHz, maxHz], both endpoints included
func Candidates(minHz, maxHz float64, resolution int) []float64 {
	if resolution <= 0 {
		return []float64{}
	}
	if resolution == 1 {
		return []float64{minHz}
	}

	out := make([]float64, resolution)
	step := (maxHz - minHz) / float64(resolution-1)
	for i := range out {
		out[i] = minHz + step*float64(i)
	}
	out[resolution-1] = maxHz
	return out
}

// Amplitude samples the residual spectrum at freq Hz by linear interpolation.
// Frequencies beyond nyquist read the last bin.
func Amplitude(residual []float64, nyquist, freq float64) float64 {
	if len(residual) == 0 || nyquist <= 0 {
		return 0.0
	}
	return common.InterpolateLinear(residual, freq/nyquist*float64(len(residual)))
}

// Score computes SRH(f) = A(f) + Σ_{h=2..H} [A(h·f) - A((h-0.5)·f)]
func (s *SRH) Score(residual []float64, nyquist, freq float64) float64 {
	score := Amplitude(residual, nyquist, freq)
	for h := 2; h <= s.harmonics; h++ {
		hf := float64(h)
		score += Amplitude(residual, nyquist, hf*freq) - Amplitude(residual, nyquist, (hf-0.5)*freq)
	}
	return score
}

// Profile scores every candidate into dst, which must be as long as candidates
func (s *SRH) Profile(residual []float64, nyquist float64, candidates, dst []float64) {
	for i, f := range candidates {
		dst[i] = s.Score(residual, nyquist, f)
	}
}

// Best returns the highest scoring candidate and its score.
// Ties keep the lower frequency. No candidates yields NaN and -Inf.
func (s *SRH) Best(residual []float64, nyquist float64, candidates []float64) (float64, float64) {
	bestFreq := math.NaN()
	bestScore := math.Inf(-1)
	for _, f := range candidates {
		if score := s.Score(residual, nyquist, f); score > bestScore {
			bestScore = score
			bestFreq = f
		}
	}
	return bestFreq, bestScore
}
