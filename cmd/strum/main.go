package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hako/durafmt"

	"github.com/cwbudde/algo-strum/internal/app"
	"github.com/cwbudde/algo-strum/internal/sensor"
	"github.com/cwbudde/algo-strum/pluck"
	"github.com/cwbudde/algo-strum/preset"
)

// logger is the process-wide structured logger; initLogger replaces it.
var logger = slog.Default()

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

func main() {
	presetPath := flag.String("preset", "", "Preset JSON/YAML file (defaults to open E)")
	serialPort := flag.String("serial", "", "Sensor serial device (auto-discovered when empty)")
	baud := flag.Int("baud", sensor.DefaultBaud, "Serial baud rate")
	settle := flag.Duration("settle", app.DefaultSettle, "Time to hold still before calibration starts")
	window := flag.Duration("calib-window", app.DefaultWindow, "Calibration averaging window")
	midiOut := flag.String("midi-out", "", "Mirror plucks to the MIDI output whose name contains this (optional)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9464 (optional)")
	buffer := flag.Int("buffer", 512, "Audio buffer size in frames")
	debug := flag.Bool("debug", false, "Enable debug logging")
	listPorts := flag.Bool("list-ports", false, "Print the detected serial device and exit")
	flag.Parse()

	initLogger(*debug)

	if *listPorts {
		name, err := sensor.Discover()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(name)
		return
	}

	params := pluck.NewDefaultParams()
	if *presetPath != "" {
		p, err := preset.Load(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		params = p
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting", "strings", len(params.Strings), "sample_rate", params.SampleRate, "min_force", params.MinStrumForce)
	start := time.Now()
	err := app.Run(ctx, app.Config{
		Params:       params,
		SerialPort:   *serialPort,
		Baud:         *baud,
		Settle:       *settle,
		Window:       *window,
		MIDIOut:      *midiOut,
		MetricsAddr:  *metricsAddr,
		BufferFrames: *buffer,
		Logger:       logger,
	})
	if err != nil {
		logger.Error("exiting", "err", err, "uptime", durafmt.Parse(time.Since(start).Round(time.Second)).String())
		os.Exit(1)
	}
	logger.Info("bye", "uptime", durafmt.Parse(time.Since(start).Round(time.Second)).String())
}
