package fit

import (
	"math"
	"testing"
)

func TestFitDecayImprovesOnInitialGuess(t *testing.T) {
	cfg := DecayConfig{
		SampleRate: 22050,
		Frequency:  196,
		TargetT60:  1.0,
		Initial:    0.9995,
		RenderS:    1.0,
		Population: 6,
		Iterations: 3,
		MaxEvals:   40,
		Seed:       3,
	}
	resolved, err := cfg.withDefaults()
	if err != nil {
		t.Fatalf("withDefaults: %v", err)
	}
	initialScore := score(measureT60(&resolved, cfg.Initial), cfg.TargetT60)
	if math.IsInf(initialScore, 0) {
		t.Fatalf("initial guess should be measurable")
	}

	res, err := FitDecay(cfg)
	if err != nil {
		t.Fatalf("FitDecay: %v", err)
	}
	if res.Decay < 0.9 || res.Decay > 0.9999 {
		t.Fatalf("decay outside search range: %f", res.Decay)
	}
	if res.Score > initialScore {
		t.Fatalf("fit got worse than its initial guess: got=%f initial=%f", res.Score, initialScore)
	}
	if res.Evaluations < 1 || res.Evaluations > cfg.MaxEvals {
		t.Fatalf("unexpected evaluation count %d", res.Evaluations)
	}
	if math.IsInf(res.T60, 0) {
		t.Fatalf("expected finite T60")
	}
}

func TestFitDecayValidatesConfig(t *testing.T) {
	tests := []DecayConfig{
		{Frequency: 0, TargetT60: 1},
		{Frequency: 110, TargetT60: 0},
		{Frequency: 110, TargetT60: 1, MinDecay: 0.99, MaxDecay: 0.95},
		{Frequency: 110, TargetT60: 1, MaxDecay: 1.0},
	}
	for i, c := range tests {
		if _, err := FitDecay(c); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestScore(t *testing.T) {
	if score(2, 2) != 0 {
		t.Fatalf("exact match must score 0")
	}
	if math.Abs(score(4, 2)-score(1, 2)) > 1e-12 {
		t.Fatalf("score must be symmetric in log space")
	}
	if !math.IsInf(score(math.Inf(1), 2), 1) {
		t.Fatalf("unmeasurable decay must score +Inf")
	}
}
