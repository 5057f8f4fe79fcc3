package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestDefaultLoggerRoutesByLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := NewWriterLogger(&stdout, &stderr)
	logger.SetLevel(DebugLevel)

	logger.Debug("frame analyzed", Fields{"bin": 12})
	logger.Warn("clipping detected")
	logger.Error(errors.New("boom"), "decode failed", Fields{"file": "a.wav"})

	out := stdout.String()
	if !strings.Contains(out, "[DEBUG] frame analyzed map[bin:12]") {
		t.Errorf("stdout missing debug line: %q", out)
	}
	errOut := stderr.String()
	if !strings.Contains(errOut, "[WARN] clipping detected") {
		t.Errorf("stderr missing warn line: %q", errOut)
	}
	if !strings.Contains(errOut, "[ERROR] decode failed: boom map[file:a.wav]") {
		t.Errorf("stderr missing error line: %q", errOut)
	}
}

func TestDefaultLoggerLevelFilter(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := NewWriterLogger(&stdout, &stderr)
	logger.SetLevel(WarnLevel)

	logger.Info("hidden")
	if stdout.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", stdout.String())
	}
}

func TestWithFieldsAndContext(t *testing.T) {
	var stdout bytes.Buffer
	base := NewWriterLogger(&stdout, &stdout)

	ctx := ContextWithFields(context.Background(), Fields{"track": "song"})
	ctx = ContextWithFields(ctx, Fields{"hop": 2048})

	base.WithFields(Fields{"component": "extractor"}).WithContext(ctx).Info("done")

	got := stdout.String()
	for _, want := range []string{"component:extractor", "track:song", "hop:2048"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestLogrusLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusLogger(&buf, "json")

	logger.WithFields(Fields{"component": "cache"}).Info("hit", Fields{"key": "abc"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "hit" || entry["component"] != "cache" || entry["key"] != "abc" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"loud", InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetGlobalLoggerNil(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(nil)
	if _, ok := GetGlobalLogger().(*NoOpLogger); !ok {
		t.Errorf("nil global logger should become NoOpLogger, got %T", GetGlobalLogger())
	}
}
