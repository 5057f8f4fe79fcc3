package capture

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/RyanBlaney/sonido-pitch/logging"
	"github.com/gen2brain/malgo"
)

// MicrophoneConfig configures the default capture device
type MicrophoneConfig struct {
	SampleRate    int           `json:"sample_rate"`
	BufferSeconds float64       `json:"buffer_seconds"`
	StartTimeout  time.Duration `json:"start_timeout"`
}

// DefaultMicrophoneConfig returns 44.1 kHz mono capture with a one second ring
func DefaultMicrophoneConfig() MicrophoneConfig {
	return MicrophoneConfig{
		SampleRate:    44100,
		BufferSeconds: 1,
		StartTimeout:  2 * time.Second,
	}
}

// Microphone captures mono float32 audio from the default input device
type Microphone struct {
	config  MicrophoneConfig
	mctx    *malgo.AllocatedContext
	device  *malgo.Device
	buffer  *LiveBuffer
	logger  logging.Logger
	started bool
}

// NewMicrophone initializes the audio backend and the capture device
func NewMicrophone(cfg MicrophoneConfig) (*Microphone, error) {
	if cfg.SampleRate <= 0 || cfg.BufferSeconds <= 0 {
		return nil, fmt.Errorf("invalid microphone config: sample rate %d, buffer %vs", cfg.SampleRate, cfg.BufferSeconds)
	}

	logger := logging.WithFields(logging.Fields{
		"component":   "microphone",
		"sample_rate": cfg.SampleRate,
	})

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		logger.Debug("Audio backend message", logging.Fields{"message": message})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	m := &Microphone{
		config: cfg,
		mctx:   mctx,
		buffer: NewLiveBuffer(cfg.SampleRate, int(cfg.BufferSeconds*float64(cfg.SampleRate))),
		logger: logger,
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(cfg.SampleRate)

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			if len(input) == 0 {
				return
			}
			m.buffer.Write(decodeFloat32LE(input))
		},
	}

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("failed to initialize capture device: %w", err)
	}
	m.device = device

	return m, nil
}

// Buffer returns the live buffer the device writes into
func (m *Microphone) Buffer() *LiveBuffer {
	return m.buffer
}

// Start begins capture and waits for the first samples
func (m *Microphone) Start(ctx context.Context) error {
	if err := m.device.Start(); err != nil {
		return fmt.Errorf("failed to start capture device: %w", err)
	}
	m.started = true
	m.buffer.SetPlaying(true)

	if err := m.buffer.WaitForSamples(ctx, m.config.StartTimeout); err != nil {
		m.logger.Error(err, "Microphone produced no samples")
		return err
	}

	m.logger.Info("Microphone capture started")
	return nil
}

// Close stops capture and releases the device and backend
func (m *Microphone) Close() error {
	m.buffer.SetPlaying(false)
	if m.started {
		if err := m.device.Stop(); err != nil {
			m.logger.Warn("Failed to stop capture device", logging.Fields{"error": err.Error()})
		}
	}
	m.device.Uninit()

	err := m.mctx.Uninit()
	m.mctx.Free()
	if err != nil {
		return fmt.Errorf("failed to release audio context: %w", err)
	}
	return nil
}

// decodeFloat32LE converts interleaved little-endian float32 bytes
func decodeFloat32LE(b []byte) []float64 {
	out := make([]float64, len(b)/4)
	for i := range out {
		out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:])))
	}
	return out
}
