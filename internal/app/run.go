package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-strum/internal/audio"
	"github.com/cwbudde/algo-strum/internal/midiout"
	"github.com/cwbudde/algo-strum/internal/observe"
	"github.com/cwbudde/algo-strum/internal/sensor"
	"github.com/cwbudde/algo-strum/pluck"
)

// ErrSensorClosed is returned by Run when the sensor stream ends on its own.
var ErrSensorClosed = errors.New("app: sensor stream closed")

const (
	DefaultSettle = 3 * time.Second
	DefaultWindow = 1500 * time.Millisecond
)

// Config describes one live session.
type Config struct {
	Params *pluck.Params

	// SerialPort is the sensor device; empty means auto-discover.
	SerialPort string
	Baud       int

	Settle time.Duration
	Window time.Duration

	// MIDIOut selects a MIDI output by name substring; empty disables mirroring.
	MIDIOut string
	// MetricsAddr enables the Prometheus endpoint, e.g. ":9464".
	MetricsAddr string

	BufferFrames int

	Logger *slog.Logger
}

// Run plays until ctx is cancelled or a component fails. Shutdown stops the
// pipeline and the audio output before closing the sensor.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	params := cfg.Params
	if params == nil {
		params = pluck.NewDefaultParams()
	}
	if cfg.Baud <= 0 {
		cfg.Baud = sensor.DefaultBaud
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}

	start := time.Now()
	bank, err := pluck.NewStringBank(params)
	if err != nil {
		return fmt.Errorf("app: build strings: %w", err)
	}
	logger.Info("strings ready", "count", bank.Len(), "sample_rate", bank.SampleRate(), "took", time.Since(start))

	mixer := pluck.NewMixer(params.MaxVoices)

	g, gctx := errgroup.WithContext(ctx)

	var met *observe.Metrics
	if cfg.MetricsAddr != "" {
		mp, shutdown, err := observe.InitProvider(ctx, "strum")
		if err != nil {
			return fmt.Errorf("app: metrics: %w", err)
		}
		defer func() { _ = shutdown(context.Background()) }()
		if met, err = observe.NewMetrics(mp, mixer); err != nil {
			return fmt.Errorf("app: metrics: %w", err)
		}
		defer met.Close()
		g.Go(func() error { return observe.Serve(gctx, cfg.MetricsAddr, logger) })
	}

	out, err := audio.Open(audio.Config{SampleRate: bank.SampleRate(), BufferFrames: cfg.BufferFrames}, mixer, logger)
	if err != nil {
		return err
	}
	out.Start()

	var sink *midiout.Sink
	if cfg.MIDIOut != "" {
		sink, err = midiout.Open(cfg.MIDIOut, midiout.Config{MinForce: params.MinStrumForce}, logger)
		if err != nil {
			logger.Warn("midi: mirroring disabled", "err", err)
			sink = nil
		}
	}

	port, err := openSensor(cfg, logger)
	if err != nil {
		_ = out.Close()
		sink.Close()
		return err
	}

	pipe := NewPipeline(pluck.NewDetector(bank, params.MinStrumForce), mixer,
		NotifierFunc(func(s *pluck.VirtualString, force int) {
			logger.Info("pluck", "string", s.Label, "force", force)
			met.RecordPluck(gctx, s.Label)
			sink.Pluck(s.Note, force)
		}),
	)

	reader := sensor.NewReader(port, logger)
	reader.OnDrop = func(string, error) { met.RecordDroppedLine(gctx) }
	samples := make(chan sensor.Sample, 256)
	g.Go(func() error {
		if err := reader.Run(gctx, samples); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("app: sensor: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("calibrating: hold hand neutral", "settle", cfg.Settle, "window", cfg.Window)
		cal, err := Calibrate(gctx, samples, cfg.Settle, cfg.Window)
		if err != nil {
			return nil
		}
		pipe.SetOffset(cal.Offset)
		logger.Info("calibrated", "offset", cal.Offset, "samples", cal.Samples)
		logger.Info("ready: sweep wrist to play")
		for {
			select {
			case <-gctx.Done():
				return nil
			case s, ok := <-samples:
				if !ok {
					if gctx.Err() != nil {
						return nil
					}
					return ErrSensorClosed
				}
				pipe.Feed(s)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		pipe.Stop()
		if err := out.Close(); err != nil {
			logger.Warn("audio: close failed", "err", err)
		}
		mixer.Reset()
		if err := port.Close(); err != nil {
			logger.Warn("serial: close failed", "err", err)
		}
		sink.Close()
		logger.Info("stopped", "stats", fmt.Sprintf("%+v", mixer.Stats()))
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func openSensor(cfg Config, logger *slog.Logger) (io.ReadCloser, error) {
	name := cfg.SerialPort
	if name == "" {
		found, err := sensor.Discover()
		if err != nil {
			return nil, err
		}
		logger.Info("serial: discovered device", "device", found)
		name = found
	}
	return sensor.OpenSerial(name, cfg.Baud, logger)
}
