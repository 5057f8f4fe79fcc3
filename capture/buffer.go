// Package capture feeds live audio into a rolling buffer the pitch
// estimator can read from.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
)

// ErrCaptureTimeout is returned when no samples arrive in time
var ErrCaptureTimeout = errors.New("capture did not start in time")

// LiveBuffer is a thread-safe ring of the most recent mono samples.
// It implements detector.Source.
type LiveBuffer struct {
	mu         sync.Mutex
	ring       *common.CircularBuffer
	sampleRate int
	playing    atomic.Bool

	started   chan struct{}
	startOnce sync.Once
}

// NewLiveBuffer keeps capacity samples of sampleRate audio
func NewLiveBuffer(sampleRate, capacity int) *LiveBuffer {
	return &LiveBuffer{
		ring:       common.NewCircularBuffer(capacity),
		sampleRate: sampleRate,
		started:    make(chan struct{}),
	}
}

// Write appends mono samples
func (b *LiveBuffer) Write(samples []float64) {
	if len(samples) == 0 {
		return
	}

	b.mu.Lock()
	b.ring.Write(samples)
	b.mu.Unlock()

	b.startOnce.Do(func() { close(b.started) })
}

// WriteFrames appends stereo frames, averaging the channels
func (b *LiveBuffer) WriteFrames(frames [][2]float64) {
	mono := make([]float64, len(frames))
	for i, f := range frames {
		mono[i] = (f[0] + f[1]) / 2
	}
	b.Write(mono)
}

// Latest copies the most recent len(dst) samples into dst, oldest first
func (b *LiveBuffer) Latest(dst []float64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ring.Latest(dst)
}

// Total returns how many samples have ever been written
func (b *LiveBuffer) Total() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ring.Total()
}

// Playing reports whether the producer is running
func (b *LiveBuffer) Playing() bool {
	return b.playing.Load()
}

// SetPlaying marks the producer as running or stopped
func (b *LiveBuffer) SetPlaying(playing bool) {
	b.playing.Store(playing)
}

// SampleRate returns the sample rate in Hz
func (b *LiveBuffer) SampleRate() int {
	return b.sampleRate
}

// WaitForSamples blocks until the first samples arrive, the timeout
// expires or ctx is done
func (b *LiveBuffer) WaitForSamples(ctx context.Context, timeout time.Duration) error {
	select {
	case <-b.started:
		return nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-b.started:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w after %v", ErrCaptureTimeout, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
