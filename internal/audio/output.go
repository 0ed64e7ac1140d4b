package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Config selects the device parameters.
type Config struct {
	SampleRate int
	// BufferFrames is the render block and the device buffer size in frames.
	BufferFrames int
}

// Output owns the oto context and the player pulling from the renderer.
type Output struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	ctx     *oto.Context
	player  *oto.Player
	started bool
}

// Open creates a mono float32 device context and a player over r.
func Open(cfg Config, r Renderer, logger *slog.Logger) (*Output, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("audio: invalid sample rate %d", cfg.SampleRate)
	}
	if cfg.BufferFrames <= 0 {
		cfg.BufferFrames = 512
	}
	op := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(cfg.BufferFrames) * time.Second / time.Duration(cfg.SampleRate),
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("audio: open device: %w", err)
	}
	<-ready

	o := &Output{cfg: cfg, logger: logger, ctx: ctx}
	o.player = ctx.NewPlayer(newStream(r, cfg.BufferFrames))
	logger.Info("audio: device ready", "sample_rate", cfg.SampleRate, "buffer_frames", cfg.BufferFrames)
	return o, nil
}

// Start begins playback. Calling it twice is a no-op.
func (o *Output) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.started && o.player != nil {
		o.player.Play()
		o.started = true
	}
}

// Close stops rendering and releases the player. Safe to call more than once.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return nil
	}
	if o.started {
		o.player.Pause()
		o.started = false
	}
	err := o.player.Close()
	o.player = nil
	o.logger.Info("audio: device closed")
	if err != nil {
		return fmt.Errorf("audio: close player: %w", err)
	}
	return nil
}
