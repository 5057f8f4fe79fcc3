// Package synth builds test and reference signals as beep streamers.
package synth

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// harmonicOscillator sums partials 1..n of a fundamental with 1/h amplitudes
type harmonicOscillator struct {
	freq     float64
	phases   []float64
	duration int
	position int
	rate     beep.SampleRate
}

// Tone returns a streamer playing freq with harmonics partials whose
// amplitudes fall as 1/h. Partials at or above Nyquist are dropped. The sum
// of amplitudes is normalized to 1 so the output never clips.
func Tone(freq float64, harmonics int, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	harmonics = max(harmonics, 1)
	nyquist := float64(rate) / 2
	for harmonics > 1 && float64(harmonics)*freq >= nyquist {
		harmonics--
	}

	total := 0.0
	for h := 1; h <= harmonics; h++ {
		total += 1 / float64(h)
	}

	osc := &harmonicOscillator{
		freq:     freq,
		phases:   make([]float64, harmonics),
		duration: rate.N(duration),
		rate:     rate,
	}
	return &effects.Gain{Streamer: osc, Gain: 1/total - 1}
}

// Sine returns a pure tone
func Sine(freq float64, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	return Tone(freq, 1, duration, rate)
}

func (o *harmonicOscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		val := 0.0
		for k := range o.phases {
			h := float64(k + 1)
			val += math.Sin(2*math.Pi*o.phases[k]) / h

			// Keep phase in [0, 1)
			o.phases[k] += h * o.freq / float64(o.rate)
			o.phases[k] -= math.Floor(o.phases[k])
		}

		samples[i][0] = val
		samples[i][1] = val
		o.position++
	}
	return len(samples), true
}

func (o *harmonicOscillator) Err() error { return nil }

// Silence returns duration worth of zeros
func Silence(duration time.Duration, rate beep.SampleRate) beep.Streamer {
	return beep.Silence(rate.N(duration))
}

// Sequence plays streamers one after another
func Sequence(streamers ...beep.Streamer) beep.Streamer {
	return beep.Seq(streamers...)
}

// samplesStreamer plays a mono buffer on both channels
type samplesStreamer struct {
	pcm []float64
	pos int
}

// FromSamples wraps a mono buffer as a streamer
func FromSamples(pcm []float64) beep.Streamer {
	return &samplesStreamer{pcm: pcm}
}

func (s *samplesStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.pcm) {
		return 0, false
	}
	n = copy2(samples, s.pcm[s.pos:])
	s.pos += n
	return n, true
}

func (s *samplesStreamer) Err() error { return nil }

func copy2(dst [][2]float64, src []float64) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i][0] = src[i]
		dst[i][1] = src[i]
	}
	return n
}

// Render drains a streamer into a mono buffer, averaging the two channels
func Render(s beep.Streamer) ([]float64, error) {
	var out []float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			out = append(out, (buf[i][0]+buf[i][1])/2)
		}
		if !ok {
			break
		}
	}
	return out, s.Err()
}
