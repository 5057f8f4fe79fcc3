package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gopxl/beep"

	"github.com/RyanBlaney/sonido-pitch/algorithms/tonal"
	"github.com/RyanBlaney/sonido-pitch/capture"
	"github.com/RyanBlaney/sonido-pitch/detector"
	"github.com/RyanBlaney/sonido-pitch/logging"
	"github.com/RyanBlaney/sonido-pitch/synth"
	"github.com/RyanBlaney/sonido-pitch/transcode"
)

// liveTick is the estimation rate, close to a 30 fps display
const liveTick = 33 * time.Millisecond

func runLive(ctx context.Context, args []string) error {
	var (
		common   commonFlags
		file     string
		duration time.Duration
	)
	fs := flag.NewFlagSet("live", flag.ExitOnError)
	common.register(fs)
	fs.StringVar(&file, "file", "", "play this file instead of capturing the microphone")
	fs.DurationVar(&duration, "duration", 0, "stop after this long (0 = until interrupted or the file ends)")
	fs.Parse(args)

	cfg, err := common.setup()
	if err != nil {
		return err
	}
	det, err := detector.New(cfg)
	if err != nil {
		return err
	}
	estimator, err := det.NewEstimator()
	if err != nil {
		return err
	}

	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	var (
		source *capture.LiveBuffer
		done   <-chan error
	)
	if file != "" {
		source, done, err = playFile(ctx, file, estimator.WindowSize())
	} else {
		source, done, err = startMicrophone(ctx)
	}
	if err != nil {
		return err
	}

	ticker := time.NewTicker(liveTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case err := <-done:
			fmt.Println()
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		case <-ticker.C:
			printEstimate(estimator.Estimate(source))
		}
	}
}

func printEstimate(est detector.PitchEstimate) {
	if !est.Voiced {
		fmt.Printf("\r%-40s", fmt.Sprintf("--         score %6.2f", est.Score))
		return
	}
	note, cents, _ := tonal.Nearest(est.Frequency)
	fmt.Printf("\r%-40s", fmt.Sprintf("%-4s %+5.0fc %7.2f Hz  score %6.2f", note.Label(), cents, est.Frequency, est.Score))
}

// playFile decodes a file and plays it into a live buffer in real time
func playFile(ctx context.Context, path string, window int) (*capture.LiveBuffer, <-chan error, error) {
	audio, err := transcode.NewDecoder(nil).DecodeFile(path)
	if err != nil {
		return nil, nil, err
	}

	buf := capture.NewLiveBuffer(audio.SampleRate, max(window, audio.SampleRate))
	done := make(chan error, 1)
	go func() {
		done <- buf.Play(ctx, synth.FromSamples(audio.PCM), beep.SampleRate(audio.SampleRate), 0)
	}()

	logging.Info("Playing file", logging.Fields{
		"file":        path,
		"sample_rate": audio.SampleRate,
		"duration":    audio.Duration.String(),
	})
	return buf, done, nil
}

// startMicrophone opens the default capture device; it is closed when ctx ends
func startMicrophone(ctx context.Context) (*capture.LiveBuffer, <-chan error, error) {
	mic, err := capture.NewMicrophone(capture.DefaultMicrophoneConfig())
	if err != nil {
		return nil, nil, err
	}
	if err := mic.Start(ctx); err != nil {
		mic.Close()
		return nil, nil, err
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		if err := mic.Close(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		done <- nil
	}()
	return mic.Buffer(), done, nil
}
