package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/RyanBlaney/sonido-pitch/cache"
	"github.com/RyanBlaney/sonido-pitch/detector"
	"github.com/RyanBlaney/sonido-pitch/logging"
	"github.com/RyanBlaney/sonido-pitch/transcode"
)

func runNotes(ctx context.Context, args []string) error {
	var (
		common   commonFlags
		cacheDir string
		asJSON   bool
		quiet    bool
		workers  int
	)
	fs := flag.NewFlagSet("notes", flag.ExitOnError)
	common.register(fs)
	fs.StringVar(&cacheDir, "cache", "", "directory of the note cache (disabled when empty)")
	fs.BoolVar(&asJSON, "json", false, "print the sequence as JSON")
	fs.BoolVar(&quiet, "q", false, "hide the progress bar")
	fs.IntVar(&workers, "workers", 0, "analysis workers (0 = auto)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("notes takes exactly one audio file")
	}
	path := fs.Arg(0)

	cfg, err := common.setup()
	if err != nil {
		return err
	}
	if workers > 0 {
		cfg.Extractor.Workers = workers
	}

	det, err := detector.New(cfg)
	if err != nil {
		return err
	}

	audio, err := transcode.NewDecoder(nil).DecodeFile(path)
	if err != nil {
		return err
	}

	var (
		store *cache.NoteCache
		key   string
	)
	if cacheDir != "" {
		if store, err = cache.Open(cacheDir); err != nil {
			return err
		}
		defer store.Close()

		if key, err = cache.Key(audio.PCM, audio.SampleRate, cfg); err != nil {
			return err
		}
		seq, ok, err := store.Get(key)
		if err != nil {
			return err
		}
		if ok {
			return printSequence(os.Stdout, path, audio.Metadata, seq, asJSON)
		}
	}

	seq, err := extractWithProgress(ctx, det, audio, quiet)
	if err != nil {
		return err
	}

	if store != nil {
		if err := store.Put(key, seq); err != nil {
			logging.Warn("Failed to cache notes", logging.Fields{"error": err.Error()})
		}
	}

	return printSequence(os.Stdout, path, audio.Metadata, seq, asJSON)
}

type extractResult struct {
	seq *detector.NoteSequence
	err error
}

// extractWithProgress runs extraction off the main goroutine and drives a
// progress bar from the per-window callback
func extractWithProgress(ctx context.Context, det *detector.Detector, audio *transcode.AudioData, quiet bool) (*detector.NoteSequence, error) {
	extractor, err := detector.NewNoteExtractor(audio.SampleRate, det.Config().Extractor)
	if err != nil {
		return nil, err
	}
	total := extractor.WindowCount(len(audio.PCM))

	var (
		p        *mpb.Progress
		bar      *mpb.Bar
		progress detector.ProgressFunc
	)
	if !quiet {
		p = mpb.New(mpb.WithWidth(64), mpb.WithOutput(os.Stderr))
		bar = p.AddBar(int64(total),
			mpb.PrependDecorators(
				decor.Name("Analyzing: "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(
				decor.Percentage(),
				decor.EwmaETA(decor.ET_STYLE_GO, 60),
			),
		)
		progress = func(done, _ int) {
			bar.SetCurrent(int64(done))
		}
	}

	results := make(chan extractResult, 1)
	go func() {
		seq, err := det.Notes(ctx, audio.PCM, audio.SampleRate, progress)
		results <- extractResult{seq: seq, err: err}
	}()

	res := <-results
	if bar != nil {
		if res.err != nil {
			bar.Abort(false)
		} else {
			bar.SetTotal(-1, true)
		}
		p.Wait()
	}
	return res.seq, res.err
}

func printSequence(w io.Writer, path string, md *transcode.Metadata, seq *detector.NoteSequence, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			File     string                 `json:"file"`
			Metadata *transcode.Metadata    `json:"metadata,omitempty"`
			Sequence *detector.NoteSequence `json:"sequence"`
		}{path, md, seq})
	}

	fmt.Fprintf(w, "%s", path)
	if md != nil && md.Title != "" {
		fmt.Fprintf(w, " (%s - %s)", md.Artist, md.Title)
	}
	fmt.Fprintf(w, "\n%d notes, range %.2f-%.2f Hz, %v\n\n", len(seq.Notes), seq.MinFrequency, seq.MaxFrequency, seq.Duration)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tKEY\tKEY HZ\tDETECTED HZ\tSCALED")
	for _, n := range seq.Notes {
		key := n.Key
		if key == "" {
			key = "-"
		}
		fmt.Fprintf(tw, "%.3f\t%s\t%.3f\t%.2f\t%.3f\n", n.Time, key, n.KeyFrequency, n.Frequency, seq.Scale(n.KeyFrequency))
	}
	return tw.Flush()
}
