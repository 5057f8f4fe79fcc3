package transcode

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gopxl/beep"
	"github.com/hajimehoshi/go-mp3"

	"github.com/RyanBlaney/sonido-pitch/logging"
	"github.com/RyanBlaney/sonido-pitch/synth"
)

// wavFormatPCM is the integer PCM format tag in the fmt chunk
const wavFormatPCM = 1

// resampleQuality is the beep resampler quality (1..64)
const resampleQuality = 4

// decodeWAV reads integer PCM WAV files. Other WAV encodings (float,
// extensible) are handed to ffmpeg.
func (d *Decoder) decodeWAV(filename string) (*AudioData, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open wav file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", filename)
	}
	if dec.WavAudioFormat != wavFormatPCM {
		logging.Debug("Non-PCM WAV, falling back to ffmpeg", logging.Fields{
			"filename":     filename,
			"audio_format": dec.WavAudioFormat,
		})
		return d.decodeFileWithFFmpeg(filename)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read wav samples: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid wav format in %s", filename)
	}

	return &AudioData{
		PCM:        Downmix(intBufferToFloat(buf), buf.Format.NumChannels),
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
	}, nil
}

// intBufferToFloat scales decoded WAV samples into [-1, 1)
func intBufferToFloat(buf *audio.IntBuffer) []float64 {
	return intToFloat(buf.Data, buf.SourceBitDepth)
}

// intToFloat scales integer PCM into [-1, 1). 8-bit WAV data is unsigned.
func intToFloat(data []int, bitDepth int) []float64 {
	if bitDepth <= 0 {
		bitDepth = 16
	}
	full := float64(int64(1) << (bitDepth - 1))
	offset := 0
	if bitDepth == 8 {
		offset = 128
	}

	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v-offset) / full
	}
	return out
}

// decodeMP3 decodes an MP3 file. go-mp3 always yields 16-bit stereo.
func (d *Decoder) decodeMP3(filename string) (*AudioData, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open mp3 file: %w", err)
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mp3: %w", err)
	}

	return &AudioData{
		PCM:        Downmix(int16LEToFloat(raw), 2),
		SampleRate: dec.SampleRate(),
		Channels:   2,
	}, nil
}

// int16LEToFloat converts little-endian signed 16-bit samples
func int16LEToFloat(raw []byte) []float64 {
	out := make([]float64, len(raw)/2)
	for i := range out {
		out[i] = float64(int16(binary.LittleEndian.Uint16(raw[i*2:]))) / 32768.0
	}
	return out
}

// Resample converts a mono signal between sample rates
func Resample(pcm []float64, from, to int) ([]float64, error) {
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("invalid sample rates: %d -> %d", from, to)
	}
	if from == to || len(pcm) == 0 {
		out := make([]float64, len(pcm))
		copy(out, pcm)
		return out, nil
	}
	r := beep.Resample(resampleQuality, beep.SampleRate(from), beep.SampleRate(to), synth.FromSamples(pcm))
	return synth.Render(r)
}
