package harmonic

import (
	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
)

// DefaultHPSHarmonics is the number of downsampled spectra multiplied together
const DefaultHPSHarmonics = 5

// HarmonicProduct implements the Harmonic Product Spectrum for F0 estimation
type HarmonicProduct struct {
	sampleRate   int
	numHarmonics int
}

// NewHarmonicProduct creates a new harmonic product spectrum analyzer.
// numHarmonics below 1 selects DefaultHPSHarmonics.
func NewHarmonicProduct(sampleRate int, numHarmonics int) *HarmonicProduct {
	if numHarmonics < 1 {
		numHarmonics = DefaultHPSHarmonics
	}
	return &HarmonicProduct{
		sampleRate:   sampleRate,
		numHarmonics: numHarmonics,
	}
}

// Downsample keeps every factor-th value: out[k] = spectrum[k*factor].
// The result has ceil(len(spectrum)/factor) entries.
func Downsample(spectrum []float64, factor int) []float64 {
	if factor <= 1 {
		out := make([]float64, len(spectrum))
		copy(out, spectrum)
		return out
	}

	out := make([]float64, (len(spectrum)+factor-1)/factor)
	for k := range out {
		out[k] = spectrum[k*factor]
	}
	return out
}

// ComputeHPS multiplies the magnitude spectrum by its downsampled copies
// for factors 1..numHarmonics. The product is truncated to the length of
// the most downsampled copy.
func (hp *HarmonicProduct) ComputeHPS(magnitudeSpectrum []float64) []float64 {
	if len(magnitudeSpectrum) == 0 {
		return []float64{}
	}

	length := (len(magnitudeSpectrum) + hp.numHarmonics - 1) / hp.numHarmonics
	hps := make([]float64, length)
	copy(hps, magnitudeSpectrum)

	for factor := 2; factor <= hp.numHarmonics; factor++ {
		for k := range hps {
			hps[k] *= magnitudeSpectrum[k*factor]
		}
	}

	return hps
}

// FundamentalBin returns the index of the HPS maximum, ignoring DC.
// Ties resolve to the lowest bin; an HPS with no bin above DC yields 0.
func (hp *HarmonicProduct) FundamentalBin(hps []float64) int {
	bin := common.ArgMaxFrom(hps, 1)
	if bin < 0 {
		return 0
	}
	return bin
}

// BinToFrequency converts an FFT bin of a windowSize transform to Hz
func (hp *HarmonicProduct) BinToFrequency(bin, windowSize int) float64 {
	if windowSize <= 0 {
		return 0.0
	}
	return float64(bin) / float64(windowSize) * float64(hp.sampleRate)
}

// EstimateF0 returns the HPS fundamental of a magnitude spectrum produced
// by a windowSize-point FFT, along with its bin
func (hp *HarmonicProduct) EstimateF0(magnitudeSpectrum []float64, windowSize int) (float64, int) {
	bin := hp.FundamentalBin(hp.ComputeHPS(magnitudeSpectrum))
	return hp.BinToFrequency(bin, windowSize), bin
}
