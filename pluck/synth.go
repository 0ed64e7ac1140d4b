package pluck

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// ErrInvalidParameter is returned for synthesis parameters outside their domain.
var ErrInvalidParameter = errors.New("pluck: invalid parameter")

// NoiseKind selects the excitation burst loaded into the delay line.
type NoiseKind int

const (
	NoiseNormal NoiseKind = iota
	NoiseUniform
)

// SynthConfig describes one plucked-string rendering.
type SynthConfig struct {
	SampleRate int
	Frequency  float64 // Hz
	Duration   float64 // seconds
	Decay      float64 // (0,1)
	Noise      NoiseKind

	// Rand seeds the excitation. A time-seeded source is used when nil.
	Rand *rand.Rand
}

// Validate checks the configuration and returns the delay length and the
// number of output samples.
func (c *SynthConfig) Validate() (delay int, total int, err error) {
	if c.SampleRate <= 0 {
		return 0, 0, fmt.Errorf("%w: sample rate %d", ErrInvalidParameter, c.SampleRate)
	}
	if !isFinite(c.Frequency) || c.Frequency <= 0 {
		return 0, 0, fmt.Errorf("%w: frequency %g", ErrInvalidParameter, c.Frequency)
	}
	if !isFinite(c.Duration) || c.Duration <= 0 {
		return 0, 0, fmt.Errorf("%w: duration %g", ErrInvalidParameter, c.Duration)
	}
	if !(c.Decay > 0 && c.Decay < 1) {
		return 0, 0, fmt.Errorf("%w: decay %g outside (0,1)", ErrInvalidParameter, c.Decay)
	}
	delay = roundInt(float64(c.SampleRate) / c.Frequency)
	if delay < 1 {
		return 0, 0, fmt.Errorf("%w: frequency %g too high for %d Hz", ErrInvalidParameter, c.Frequency, c.SampleRate)
	}
	total = roundInt(c.Duration * float64(c.SampleRate))
	if total < 1 {
		return 0, 0, fmt.Errorf("%w: duration %g yields no samples", ErrInvalidParameter, c.Duration)
	}
	return delay, total, nil
}

// Synthesize renders a plucked string with a noise-filled feedback delay
// line. Each pass averages a sample with its successor and scales it by the
// decay, which low-passes and damps the loop.
func Synthesize(cfg SynthConfig) (*Waveform, error) {
	n, total, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	buf := make([]float64, n)
	for i := range buf {
		switch cfg.Noise {
		case NoiseUniform:
			buf[i] = 2*rng.Float64() - 1
		default:
			buf[i] = rng.NormFloat64()
		}
	}

	out := make([]float32, total)
	for i := 0; i < total; i++ {
		j := i % n
		out[i] = float32(buf[j])
		// The neighbour is read before it is itself updated on the next step.
		buf[j] = dspcore.FlushDenormals(0.5 * (buf[j] + buf[(j+1)%n]) * cfg.Decay)
	}
	return &Waveform{samples: out}, nil
}
