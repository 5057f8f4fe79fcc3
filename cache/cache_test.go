package cache

import (
	"testing"
	"time"

	"github.com/RyanBlaney/sonido-pitch/detector"
)

func sampleSequence() *detector.NoteSequence {
	return &detector.NoteSequence{
		Notes: []detector.NoteEvent{
			{Frequency: 441.2, KeyFrequency: 440, Key: "A4", Window: 0},
			{Frequency: 527.5, KeyFrequency: 523.251, Key: "C5", Window: 21, Time: 0.975},
		},
		MinFrequency: 440,
		MaxFrequency: 623.251,
		SampleRate:   44100,
		Duration:     2 * time.Second,
	}
}

func TestPutGet(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if _, ok, err := c.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v err %v", ok, err)
	}

	want := sampleSequence()
	if err := c.Put("k", want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := c.Get("k")
	if err != nil || !ok {
		t.Fatalf("Get = ok %v err %v", ok, err)
	}
	if len(got.Notes) != 2 || got.Notes[1].Key != "C5" || got.MaxFrequency != want.MaxFrequency || got.Duration != want.Duration {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get("k"); ok {
		t.Error("entry still present after Delete")
	}
}

func TestPersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.Put("k", sampleSequence()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	c, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer c.Close()
	if _, ok, err := c.Get("k"); err != nil || !ok {
		t.Fatalf("Get after reopen = ok %v err %v", ok, err)
	}
}

func TestInMemory(t *testing.T) {
	c, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()
	if err := c.Put("k", sampleSequence()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, _ := c.Get("k"); !ok {
		t.Error("in-memory entry missing")
	}
}

func TestPutNil(t *testing.T) {
	c, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()
	if err := c.Put("k", nil); err == nil {
		t.Error("Put(nil) should fail")
	}
}

func TestKey(t *testing.T) {
	samples := []float64{0, 0.5, -0.25, 1}
	base, err := Key(samples, 44100, nil)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}

	again, _ := Key(samples, 44100, detector.DefaultConfig())
	if again != base {
		t.Errorf("nil config and default config differ: %s vs %s", base, again)
	}

	workers := detector.DefaultConfig()
	workers.Extractor.Workers = 7
	if k, _ := Key(samples, 44100, workers); k != base {
		t.Error("worker count should not change the key")
	}

	tests := []struct {
		name    string
		samples []float64
		rate    int
		mutate  func(*detector.Config)
	}{
		{"sample changed", []float64{0, 0.5, -0.25, 0.999}, 44100, nil},
		{"rate changed", samples, 48000, nil},
		{"hop changed", samples, 44100, func(c *detector.Config) { c.Extractor.HopSize = 1024 }},
		{"tolerance changed", samples, 44100, func(c *detector.Config) { c.Extractor.SnapTolerance = 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := detector.DefaultConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			k, err := Key(tt.samples, tt.rate, cfg)
			if err != nil {
				t.Fatalf("Key: %v", err)
			}
			if k == base {
				t.Error("key should change")
			}
		})
	}
}
