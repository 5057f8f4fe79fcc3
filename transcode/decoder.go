package transcode

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/RyanBlaney/sonido-pitch/logging"
)

var (
	// ErrUnsupportedFormat is returned for file extensions no decode path handles
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrFFmpegUnavailable is returned when a file needs ffmpeg and the
	// configured binaries cannot be run
	ErrFFmpegUnavailable = errors.New("ffmpeg unavailable")
)

// AudioData represents decoded mono audio
type AudioData struct {
	PCM        []float64     `json:"-"` // Mono PCM in [-1, 1]
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"` // Channel count of the source before downmix
	Duration   time.Duration `json:"duration"`
	Timestamp  time.Time     `json:"timestamp"`
	Metadata   *Metadata     `json:"metadata,omitempty"`
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	// TargetSampleRate resamples the output when > 0; 0 keeps the source rate
	TargetSampleRate int           `json:"target_sample_rate"`
	MaxDuration      time.Duration `json:"max_duration"` // 0 means no limit
	FFmpegPath       string        `json:"ffmpeg_path"`
	FFprobePath      string        `json:"ffprobe_path"`
	Timeout          time.Duration `json:"timeout"` // Timeout for ffmpeg operations
	ReadTags         bool          `json:"read_tags"`
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 0,
		MaxDuration:      0,
		FFmpegPath:       "ffmpeg",  // Assume in PATH
		FFprobePath:      "ffprobe", // Assume in PATH
		Timeout:          30 * time.Second,
		ReadTags:         true,
	}
}

// Validate checks the decoder configuration
func (c *DecoderConfig) Validate() error {
	if c.TargetSampleRate < 0 {
		return fmt.Errorf("target sample rate must not be negative: %d", c.TargetSampleRate)
	}
	if c.MaxDuration < 0 {
		return fmt.Errorf("max duration must not be negative: %v", c.MaxDuration)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive: %v", c.Timeout)
	}
	return nil
}

// format identifies which decode path handles a file
type format int

const (
	formatUnknown format = iota
	formatWAV
	formatMP3
	formatFFmpeg
)

var extensionFormats = map[string]format{
	".wav":  formatWAV,
	".wave": formatWAV,
	".mp3":  formatMP3,
	".flac": formatFFmpeg,
	".ogg":  formatFFmpeg,
	".oga":  formatFFmpeg,
	".aac":  formatFFmpeg,
	".aif":  formatFFmpeg,
	".aiff": formatFFmpeg,
	".m4a":  formatFFmpeg,
}

// formatFor maps a file extension to its decode path
func formatFor(filename string) format {
	if f, ok := extensionFormats[strings.ToLower(filepath.Ext(filename))]; ok {
		return f
	}
	return formatUnknown
}

// SupportedExtensions lists the file extensions DecodeFile accepts, sorted
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionFormats))
	for ext := range extensionFormats {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Decoder turns audio files into mono PCM. WAV and MP3 are decoded in
// process; other containers go through ffmpeg.
type Decoder struct {
	config *DecoderConfig

	ffmpegOnce sync.Once
	ffmpegErr  error
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config}
}

// Config returns the decoder configuration
func (d *Decoder) Config() DecoderConfig {
	return *d.config
}

// DecodeFile decodes an audio file into mono PCM
func (d *Decoder) DecodeFile(filename string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeFile",
		"filename":  filename,
	})

	logger.Debug("Starting audio file decode")

	var (
		data *AudioData
		err  error
	)
	switch formatFor(filename) {
	case formatWAV:
		data, err = d.decodeWAV(filename)
	case formatMP3:
		data, err = d.decodeMP3(filename)
	case formatFFmpeg:
		data, err = d.decodeFileWithFFmpeg(filename)
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, filepath.Ext(filename), strings.Join(SupportedExtensions(), " "))
	}
	if err != nil {
		logger.Error(err, "Failed to decode audio file")
		return nil, err
	}

	if d.config.TargetSampleRate > 0 && data.SampleRate != d.config.TargetSampleRate {
		data.PCM, err = Resample(data.PCM, data.SampleRate, d.config.TargetSampleRate)
		if err != nil {
			return nil, fmt.Errorf("failed to resample: %w", err)
		}
		data.SampleRate = d.config.TargetSampleRate
	}

	if d.config.MaxDuration > 0 {
		limit := int(d.config.MaxDuration.Seconds() * float64(data.SampleRate))
		if len(data.PCM) > limit {
			data.PCM = data.PCM[:limit]
		}
	}

	data.Duration = samplesDuration(len(data.PCM), data.SampleRate)
	data.Timestamp = time.Now()

	if d.config.ReadTags {
		if md, err := ReadMetadata(filename); err == nil {
			data.Metadata = md
		} else {
			logger.Debug("No tag metadata", logging.Fields{"reason": err.Error()})
		}
	}

	logger.Debug("Audio file decoded", logging.Fields{
		"sample_rate": data.SampleRate,
		"channels":    data.Channels,
		"samples":     len(data.PCM),
		"duration":    data.Duration.Seconds(),
	})

	return data, nil
}

// Downmix averages interleaved frames into a mono signal. A trailing
// partial frame is dropped.
func Downmix(interleaved []float64, channels int) []float64 {
	if channels <= 1 {
		out := make([]float64, len(interleaved))
		copy(out, interleaved)
		return out
	}

	frames := len(interleaved) / channels
	out := make([]float64, frames)
	scale := 1 / float64(channels)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for _, v := range interleaved[i*channels : (i+1)*channels] {
			sum += v
		}
		out[i] = sum * scale
	}
	return out
}

func samplesDuration(n, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(sampleRate)
}
