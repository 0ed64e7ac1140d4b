// Package fit searches string parameters that reproduce a target ring time.
package fit

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-strum/analysis"
	"github.com/cwbudde/algo-strum/pluck"
	"github.com/cwbudde/mayfly"
)

// DecayConfig controls a decay fit for one string.
type DecayConfig struct {
	SampleRate int
	Frequency  float64
	TargetT60  float64 // seconds

	// Search range for the feedback gain.
	MinDecay float64
	MaxDecay float64

	// Initial guess, evaluated before the optimizer runs.
	Initial float64

	// Length of each candidate rendering. Defaults to the target clamped to [0.5, 4] s.
	RenderS float64

	Population int
	Iterations int
	MaxEvals   int
	Seed       int64
}

// DecayResult is the best candidate found.
type DecayResult struct {
	Decay       float64
	T60         float64
	Score       float64 // |ln(T60/target)|
	Evaluations int
}

func (c *DecayConfig) withDefaults() (DecayConfig, error) {
	out := *c
	if out.SampleRate <= 0 {
		out.SampleRate = pluck.DefaultSampleRate
	}
	if out.Frequency <= 0 {
		return out, fmt.Errorf("fit: frequency must be > 0")
	}
	if out.TargetT60 <= 0 {
		return out, fmt.Errorf("fit: target T60 must be > 0")
	}
	if out.MinDecay == 0 {
		out.MinDecay = 0.9
	}
	if out.MaxDecay == 0 {
		out.MaxDecay = 0.9999
	}
	if !(out.MinDecay > 0 && out.MinDecay < out.MaxDecay && out.MaxDecay < 1) {
		return out, fmt.Errorf("fit: invalid decay range [%g, %g]", out.MinDecay, out.MaxDecay)
	}
	if out.Initial == 0 {
		out.Initial = pluck.DefaultDecay
	}
	out.Initial = clamp(out.Initial, out.MinDecay, out.MaxDecay)
	if out.RenderS <= 0 {
		out.RenderS = clamp(out.TargetT60, 0.5, 4)
	}
	if out.Population <= 0 {
		out.Population = 10
	}
	if out.Iterations <= 0 {
		out.Iterations = 20
	}
	if out.MaxEvals <= 0 {
		out.MaxEvals = 400
	}
	return out, nil
}

// FitDecay finds the decay factor whose synthesized waveform rings for
// TargetT60 seconds. Every candidate is rendered from the same excitation so
// the objective is deterministic for a given seed.
func FitDecay(c DecayConfig) (DecayResult, error) {
	cfg, err := c.withDefaults()
	if err != nil {
		return DecayResult{}, err
	}

	evals := 0
	evaluate := func(decay float64) (float64, float64) {
		evals++
		t60 := measureT60(&cfg, decay)
		return t60, score(t60, cfg.TargetT60)
	}

	best := DecayResult{Decay: cfg.Initial}
	best.T60, best.Score = evaluate(cfg.Initial)

	mcfg := mayfly.NewDefaultConfig()
	mcfg.ProblemSize = 1
	mcfg.LowerBound = 0.0
	mcfg.UpperBound = 1.0
	mcfg.MaxIterations = cfg.Iterations
	mcfg.NPop = cfg.Population
	mcfg.NPopF = cfg.Population
	mcfg.NC = 2 * cfg.Population
	mcfg.NM = maxInt(1, int(math.Round(0.05*float64(cfg.Population))))
	mcfg.Rand = rand.New(rand.NewSource(cfg.Seed + 7919))
	mcfg.ObjectiveFunc = func(pos []float64) float64 {
		if evals >= cfg.MaxEvals {
			return best.Score + 1.0
		}
		x := 0.0
		if len(pos) > 0 {
			x = clamp(pos[0], 0, 1)
		}
		decay := cfg.MinDecay + x*(cfg.MaxDecay-cfg.MinDecay)
		t60, s := evaluate(decay)
		if s < best.Score {
			best = DecayResult{Decay: decay, T60: t60, Score: s}
		}
		return s
	}

	if err := runMayfly(mcfg); err != nil {
		return DecayResult{}, err
	}
	best.Evaluations = evals
	if math.IsInf(best.Score, 0) {
		return best, errors.New("fit: no candidate produced a measurable decay")
	}
	return best, nil
}

func measureT60(cfg *DecayConfig, decay float64) float64 {
	w, err := pluck.Synthesize(pluck.SynthConfig{
		SampleRate: cfg.SampleRate,
		Frequency:  cfg.Frequency,
		Duration:   cfg.RenderS,
		Decay:      decay,
		Rand:       rand.New(rand.NewSource(cfg.Seed)),
	})
	if err != nil {
		return math.Inf(1)
	}
	return analysis.Analyze(w.Samples(), cfg.SampleRate, 0).T60S
}

func runMayfly(cfg *mayfly.Config) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	_, err = mayfly.Optimize(cfg)
	return err
}

func score(t60, target float64) float64 {
	if math.IsInf(t60, 0) || math.IsNaN(t60) || t60 <= 0 {
		return math.Inf(1)
	}
	return math.Abs(math.Log(t60 / target))
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
