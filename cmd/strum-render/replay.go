package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/cwbudde/algo-strum/internal/sensor"
	"github.com/cwbudde/algo-strum/pluck"
)

type replayConfig struct {
	// SensorRate is the number of log lines per second.
	SensorRate float64
	// CalibSamples leading lines are averaged into the offset and not played.
	CalibSamples int
	Block        int
	// MaxTailS bounds the render after the last line.
	MaxTailS float64
}

type replayResult struct {
	Samples []float32
	Plucks  int
	Dropped int
	Offset  float64
	Stats   pluck.Stats
}

// replay drives a detector and mixer from a recorded sensor log at a fixed
// line rate and returns the mixed output.
func replay(r io.Reader, bank *pluck.StringBank, params *pluck.Params, cfg replayConfig) (replayResult, error) {
	if cfg.SensorRate <= 0 {
		return replayResult{}, fmt.Errorf("sensor rate must be > 0, got %v", cfg.SensorRate)
	}
	if cfg.Block < 1 {
		cfg.Block = 512
	}
	sr := bank.SampleRate()
	det := pluck.NewDetector(bank, params.MinStrumForce)
	mix := pluck.NewMixer(params.MaxVoices)

	var res replayResult
	var cal pluck.Calibrator
	block := make([]float32, cfg.Block)
	framesPerLine := float64(sr) / cfg.SensorRate
	var owed float64

	render := func(frames int) {
		for frames > 0 {
			n := min(frames, len(block))
			mix.RenderInto(block[:n])
			res.Samples = append(res.Samples, block[:n]...)
			frames -= n
		}
	}

	sc := bufio.NewScanner(r)
	seen := 0
	for sc.Scan() {
		s, err := sensor.ParseLine(sc.Text())
		if err != nil {
			res.Dropped++
			continue
		}
		seen++
		if seen <= cfg.CalibSamples {
			cal.Add(s.Angle)
			if seen == cfg.CalibSamples {
				res.Offset = cal.Offset()
			}
			continue
		}
		for _, vs := range det.Process(s.Angle, s.Force, res.Offset) {
			mix.Append(vs.Waveform)
			res.Plucks++
		}
		owed += framesPerLine
		whole := int(owed)
		owed -= float64(whole)
		render(whole)
	}
	if err := sc.Err(); err != nil {
		return res, err
	}
	if seen < cfg.CalibSamples {
		res.Offset = cal.Offset()
	}

	// Queued voices become active on the next render.
	maxTail := int(cfg.MaxTailS * float64(sr))
	for tail := 0; tail < maxTail; tail += len(block) {
		render(len(block))
		if mix.Stats().Active == 0 {
			break
		}
	}
	res.Stats = mix.Stats()
	return res, nil
}
