package detector

import (
	"testing"
	"time"

	"github.com/RyanBlaney/sonido-pitch/synth"
	"github.com/gopxl/beep"
)

const testSampleRate = 44100

// render concatenates streamers into a mono buffer
func render(t *testing.T, streamers ...beep.Streamer) []float64 {
	t.Helper()
	pcm, err := synth.Render(synth.Sequence(streamers...))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return pcm
}

func tone(freq float64, harmonics int, seconds float64) beep.Streamer {
	return synth.Tone(freq, harmonics, time.Duration(seconds*float64(time.Second)), beep.SampleRate(testSampleRate))
}

// fakeSource is a Source over a fixed buffer that counts reads
type fakeSource struct {
	playing bool
	pcm     []float64
	reads   int
}

func (f *fakeSource) Playing() bool   { return f.playing }
func (f *fakeSource) SampleRate() int { return testSampleRate }

func (f *fakeSource) Latest(dst []float64) int {
	f.reads++
	n := min(len(dst), len(f.pcm))
	clear(dst)
	copy(dst[len(dst)-n:], f.pcm[len(f.pcm)-n:])
	return n
}
