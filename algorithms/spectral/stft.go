package spectral

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
	"github.com/RyanBlaney/sonido-pitch/algorithms/windowing"
)

// Frame is one analyzed hop of a Short-Time Fourier Transform
type Frame struct {
	Index     int       // frame number
	Start     int       // first sample of the window
	Magnitude []float64 // |X[k]| for k = 0..W/2
}

// FrameFunc receives frames from ForEachFrame.
// Magnitude is reused once the function returns; copy it to keep it.
type FrameFunc func(frame Frame)

// STFT computes Hann-windowed magnitude frames with a worker pool
type STFT struct {
	windowSize int
	hopSize    int
	workers    int
	window     *windowing.Hann
	fft        *FFT
}

// NewSTFT creates an STFT with a power-of-two window and a positive hop
func NewSTFT(windowSize, hopSize int) (*STFT, error) {
	if !common.IsPowerOfTwo(windowSize) {
		return nil, fmt.Errorf("window size: %w: %d", ErrNotPowerOfTwo, windowSize)
	}
	if hopSize <= 0 {
		return nil, fmt.Errorf("hop size must be positive, got %d", hopSize)
	}

	return &STFT{
		windowSize: windowSize,
		hopSize:    hopSize,
		window:     windowing.NewPeriodicHann(windowSize),
		fft:        NewFFT(),
	}, nil
}

// WithWorkers fixes the worker count; 0 picks one from the workload
func (s *STFT) WithWorkers(n int) *STFT {
	s.workers = n
	return s
}

// FrameCount returns the number of full windows starting at multiples of
// the hop that fit in n samples
func (s *STFT) FrameCount(n int) int {
	if n < s.windowSize {
		return 0
	}
	return (n-s.windowSize)/s.hopSize + 1
}

// Bins returns the number of magnitude bins per frame
func (s *STFT) Bins() int {
	return s.windowSize/2 + 1
}

// ForEachFrame analyzes every full window of signal and hands each frame to fn.
// fn is called from several goroutines and in no particular order.
// The first analysis error stops the remaining frames and is returned.
func (s *STFT) ForEachFrame(ctx context.Context, signal []float64, fn FrameFunc) error {
	numFrames := s.FrameCount(len(signal))
	if numFrames == 0 {
		return nil
	}

	jobs := make(chan int, numFrames)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	for w, nw := 0, s.workerCount(numFrames); w < nw; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Per-worker scratch
			buf := make([]float64, s.windowSize)
			mag := make([]float64, s.Bins())

			for frameIdx := range jobs {
				if failed() {
					continue
				}
				start := frameIdx * s.hopSize
				if err := s.analyze(signal[start:start+s.windowSize], buf, mag); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("frame %d: %w", frameIdx, err)
					}
					mu.Unlock()
					continue
				}
				fn(Frame{Index: frameIdx, Start: start, Magnitude: mag})
			}
		}()
	}

	var err error
	for frameIdx := 0; frameIdx < numFrames; frameIdx++ {
		if err = ctx.Err(); err != nil || failed() {
			break
		}
		jobs <- frameIdx
	}
	close(jobs)

	wg.Wait()
	if firstErr != nil {
		return firstErr
	}
	return err
}

// SingleFrame analyzes one window-sized buffer
func (s *STFT) SingleFrame(signal []float64) ([]float64, error) {
	if len(signal) != s.windowSize {
		return nil, fmt.Errorf("%w: frame length %d, window size %d", ErrLengthMismatch, len(signal), s.windowSize)
	}

	buf := make([]float64, s.windowSize)
	mag := make([]float64, s.Bins())
	if err := s.analyze(signal, buf, mag); err != nil {
		return nil, err
	}
	return mag, nil
}

func (s *STFT) analyze(frame, buf, mag []float64) error {
	if err := s.window.ApplyTo(buf, frame); err != nil {
		return err
	}
	return s.fft.MagnitudeSpectrumInto(mag, buf)
}

// workerCount determines the number of workers based on workload
func (s *STFT) workerCount(numFrames int) int {
	if s.workers > 0 {
		return min(s.workers, numFrames)
	}

	numCPU := runtime.NumCPU()

	// For small workloads, don't over-parallelize
	if numFrames < 100 {
		return max(1, min(numCPU/2, numFrames))
	}

	// For medium workloads, use most CPUs
	if numFrames < 1000 {
		return min(numCPU, 8)
	}

	return numCPU
}
