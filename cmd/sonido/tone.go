package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/RyanBlaney/sonido-pitch/logging"
	"github.com/RyanBlaney/sonido-pitch/synth"
)

func runTone(args []string) error {
	var (
		freq      float64
		harmonics int
		duration  time.Duration
		rate      int
		out       string
	)
	fs := flag.NewFlagSet("tone", flag.ExitOnError)
	fs.Float64Var(&freq, "freq", 440, "fundamental frequency in Hz")
	fs.IntVar(&harmonics, "harmonics", 5, "number of partials")
	fs.DurationVar(&duration, "duration", 2*time.Second, "tone length")
	fs.IntVar(&rate, "rate", 44100, "sample rate in Hz")
	fs.StringVar(&out, "o", "tone.wav", "output WAV file")
	fs.Parse(args)

	if freq <= 0 || rate <= 0 || duration <= 0 {
		return fmt.Errorf("freq, rate and duration must be positive")
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	sr := beep.SampleRate(rate)
	format := beep.Format{SampleRate: sr, NumChannels: 1, Precision: 2}
	if err := wav.Encode(f, synth.Tone(freq, harmonics, duration, sr), format); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	logging.Info("Tone written", logging.Fields{
		"file":      out,
		"frequency": freq,
		"harmonics": harmonics,
		"duration":  duration.String(),
	})
	return nil
}
