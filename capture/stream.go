package capture

import (
	"context"
	"time"

	"github.com/gopxl/beep"
)

// feedChunk is the number of frames read from a streamer at a time
const feedChunk = 512

// Feed reads up to frames frames from s into the buffer and returns how
// many were written. It stops early when s is drained.
func (b *LiveBuffer) Feed(s beep.Streamer, frames int) (int, error) {
	buf := make([][2]float64, feedChunk)
	written := 0
	for written < frames {
		n, ok := s.Stream(buf[:min(feedChunk, frames-written)])
		b.WriteFrames(buf[:n])
		written += n
		if !ok {
			break
		}
	}
	return written, s.Err()
}

// Play pushes s into the buffer at its real-time rate until it is drained
// or ctx is done. The buffer reports Playing for the duration.
func (b *LiveBuffer) Play(ctx context.Context, s beep.Streamer, rate beep.SampleRate, tick time.Duration) error {
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	perTick := max(rate.N(tick), 1)

	b.SetPlaying(true)
	defer b.SetPlaying(false)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		n, err := b.Feed(s, perTick)
		if err != nil {
			return err
		}
		if n < perTick {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
