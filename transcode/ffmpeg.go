package transcode

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/RyanBlaney/sonido-pitch/logging"
)

// AudioMetadata holds detected audio properties from FFprobe
type AudioMetadata struct {
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Codec      string  `json:"codec"`
	Duration   float64 `json:"duration"`
	Bitrate    int     `json:"bitrate"`
	Format     string  `json:"format"`
}

// probeAudioFile uses ffprobe to get audio information from a file
func (d *Decoder) probeAudioFile(filename string) (*AudioMetadata, error) {
	args := []string{
		"-v", "quiet", // Suppress verbose output
		"-print_format", "json", // JSON output
		"-show_streams",          // Show stream info
		"-select_streams", "a:0", // First audio stream only
		filename,
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.config.Timeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, d.config.FFprobePath, args...).Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("ffprobe failed: %w, stderr: %s", err, string(exitError.Stderr))
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseFFprobeOutput(output)
}

// parseFFprobeOutput parses ffprobe JSON to extract audio metadata
func parseFFprobeOutput(jsonData []byte) (*AudioMetadata, error) {
	var probe struct {
		Streams []struct {
			CodecType     string `json:"codec_type"`
			CodecName     string `json:"codec_name"`
			SampleRate    string `json:"sample_rate"`
			Channels      int    `json:"channels"`
			Duration      string `json:"duration"`
			BitRate       string `json:"bit_rate"`
			CodecLongName string `json:"codec_long_name"`
		} `json:"streams"`
	}

	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	if len(probe.Streams) == 0 {
		return nil, fmt.Errorf("no audio streams found")
	}

	stream := probe.Streams[0]
	if stream.CodecType != "audio" {
		return nil, fmt.Errorf("stream is not audio type: %s", stream.CodecType)
	}

	sampleRate, err := strconv.Atoi(stream.SampleRate)
	if err != nil || sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %q", stream.SampleRate)
	}

	duration, err := strconv.ParseFloat(stream.Duration, 64)
	if err != nil {
		duration = 0
	}

	bitrate, err := strconv.Atoi(stream.BitRate)
	if err != nil {
		bitrate = 0
	}

	if stream.Channels <= 0 || stream.Channels > 8 {
		return nil, fmt.Errorf("invalid channel count: %d", stream.Channels)
	}

	return &AudioMetadata{
		SampleRate: sampleRate,
		Channels:   stream.Channels,
		Codec:      stream.CodecName,
		Duration:   duration,
		Bitrate:    bitrate,
		Format:     stream.CodecLongName,
	}, nil
}

// decodeFileWithFFmpeg decodes containers the in-process decoders do not
// handle. ffmpeg downmixes to mono at the source rate; resampling happens
// afterwards like every other path.
func (d *Decoder) decodeFileWithFFmpeg(filename string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "decodeFileWithFFmpeg",
		"filename":  filename,
	})

	if err := d.CheckFFmpeg(); err != nil {
		return nil, err
	}

	metadata, err := d.probeAudioFile(filename)
	if err != nil {
		return nil, err
	}

	logger.Debug("Audio metadata detected", logging.Fields{
		"input_sample_rate": metadata.SampleRate,
		"input_channels":    metadata.Channels,
		"input_codec":       metadata.Codec,
		"input_duration":    metadata.Duration,
	})

	args := d.buildFFmpegArgs(filename, metadata)

	ctx, cancel := context.WithTimeout(context.Background(), d.config.Timeout)
	defer cancel()

	logger.Debug("Running ffmpeg command", logging.Fields{
		"args": strings.Join(args, " "),
	})

	output, err := exec.CommandContext(ctx, d.config.FFmpegPath, args...).Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			logger.Error(err, "Ffmpeg decode failed", logging.Fields{
				"stderr": string(exitError.Stderr),
			})
		}
		return nil, fmt.Errorf("ffmpeg decode failed: %w", err)
	}

	samples := bytesToFloat64(output)
	if len(samples) == 0 {
		return nil, fmt.Errorf("no audio samples decoded")
	}

	return &AudioData{
		PCM:        samples,
		SampleRate: metadata.SampleRate,
		Channels:   metadata.Channels,
	}, nil
}

// buildFFmpegArgs requests raw mono float64 at the probed sample rate
func (d *Decoder) buildFFmpegArgs(filename string, metadata *AudioMetadata) []string {
	args := []string{
		"-i", filename,
		"-vn",
		"-f", "f64le",
		"-ac", "1",
		"-ar", strconv.Itoa(metadata.SampleRate),
	}
	if d.config.MaxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.2f", d.config.MaxDuration.Seconds()))
	}
	return append(args, "-v", "error", "pipe:1")
}

// bytesToFloat64 converts raw little-endian float64 bytes, dropping a
// trailing partial sample
func bytesToFloat64(data []byte) []float64 {
	sampleCount := len(data) / 8
	if sampleCount == 0 {
		return nil
	}

	samples := make([]float64, sampleCount)
	for i := 0; i < sampleCount; i++ {
		bits := binary.LittleEndian.Uint64(data[i*8 : i*8+8])
		samples[i] = math.Float64frombits(bits)
	}
	return samples
}

// CheckFFmpeg reports whether the configured ffmpeg and ffprobe binaries run.
// The result is cached for the lifetime of the decoder.
func (d *Decoder) CheckFFmpeg() error {
	d.ffmpegOnce.Do(func() {
		for _, bin := range []string{d.config.FFmpegPath, d.config.FFprobePath} {
			if err := exec.Command(bin, "-version").Run(); err != nil {
				d.ffmpegErr = fmt.Errorf("%w: %s: %w", ErrFFmpegUnavailable, bin, err)
				return
			}
		}
	})
	return d.ffmpegErr
}
