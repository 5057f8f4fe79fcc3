package detector

import (
	"context"
	"slices"
	"testing"

	"github.com/RyanBlaney/sonido-pitch/algorithms/filters"
)

func TestNewDefaults(t *testing.T) {
	d, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	if d.Config().Extractor.WindowSize != 4096 {
		t.Errorf("unexpected config %+v", d.Config())
	}
	if _, err := d.NewEstimator(); err != nil {
		t.Errorf("NewEstimator: %v", err)
	}

	bad := DefaultConfig()
	bad.Estimator.Resolution = 0
	if _, err := New(bad); err == nil {
		t.Error("expected validation error")
	}
}

func TestNotesFiltersACopy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ClickFilter.Mode = filters.ClickFilterSimple
	d, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	samples := render(t, tone(440, 5, 0.5))
	original := slices.Clone(samples)

	if _, err := d.Notes(context.Background(), samples, testSampleRate, nil); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(samples, original) {
		t.Error("Notes modified the caller's samples")
	}
}

func TestNotesMatchesExtractNotes(t *testing.T) {
	d, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	samples := render(t, tone(440, 5, 0.5), tone(523.25, 5, 0.5))

	got, err := d.Notes(context.Background(), samples, testSampleRate, nil)
	if err != nil {
		t.Fatal(err)
	}
	want, err := ExtractNotes(samples, testSampleRate, DefaultExtractorConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got.Notes, want.Notes) {
		t.Errorf("Notes = %v, ExtractNotes = %v", got.Frequencies(), want.Frequencies())
	}
}
