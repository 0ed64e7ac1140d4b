package analysis

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-strum/pluck"
)

func makeDecaySine(sr int, freq float64, durS float64, tau float64) []float64 {
	n := int(float64(sr) * durS)
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(sr)
		out[i] = 0.8 * math.Exp(-t/tau) * math.Sin(2*math.Pi*freq*t)
	}
	return out
}

func TestFundamentalOfSine(t *testing.T) {
	const sr = 44100
	x := makeDecaySine(sr, 440, 1.0, 10)
	f, err := Fundamental(x, sr, 440, 100)
	if err != nil {
		t.Fatalf("Fundamental: %v", err)
	}
	if math.Abs(f-440) > 0.5 {
		t.Fatalf("expected ~440 Hz, got %.3f", f)
	}
}

func TestFundamentalOfPluckedString(t *testing.T) {
	const sr = 44100
	w, err := pluck.Synthesize(pluck.SynthConfig{
		SampleRate: sr,
		Frequency:  196,
		Duration:   1.5,
		Decay:      0.996,
		Rand:       rand.New(rand.NewSource(17)),
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	x := make([]float64, w.Len())
	for i := range x {
		x[i] = float64(w.At(i))
	}
	f, err := Fundamental(x, sr, 196, 60)
	if err != nil {
		t.Fatalf("Fundamental: %v", err)
	}
	// one-pole averaging adds half a sample to the loop delay
	want := float64(sr) / 225.5
	if math.Abs(f-want) > 2 {
		t.Fatalf("fundamental mismatch: got=%.2f want≈%.2f", f, want)
	}
}

func TestFundamentalRejectsShortSignal(t *testing.T) {
	if _, err := Fundamental(make([]float64, 100), 44100, 440, 50); !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
}

func TestDecaySlopeOfExponential(t *testing.T) {
	const sr = 48000
	const tau = 0.5
	x := makeDecaySine(sr, 330, 3.0, tau)
	env := RMSEnvelope(x, 1024, 512)
	slope := DecaySlopeDBPerS(env, 512.0/sr)
	want := -20.0 / (tau * math.Ln10)
	if math.Abs(slope-want) > 1.0 {
		t.Fatalf("decay slope mismatch: got=%.3f want=%.3f", slope, want)
	}
	if t60 := T60(slope); math.Abs(t60-60/-want) > 0.3 {
		t.Fatalf("T60 mismatch: got=%.3f", t60)
	}
}

func TestT60OfNonDecayingSignal(t *testing.T) {
	if !math.IsInf(T60(0), 1) || !math.IsInf(T60(math.NaN()), 1) || !math.IsInf(T60(3), 1) {
		t.Fatalf("expected +Inf for non-decaying slopes")
	}
}

func TestRMSEnvelopeFrames(t *testing.T) {
	env := RMSEnvelope(make([]float64, 4096), 1024, 512)
	if len(env) != 7 {
		t.Fatalf("expected 7 frames, got %d", len(env))
	}
	if RMSEnvelope(make([]float64, 10), 1024, 512) != nil {
		t.Fatalf("expected nil for signal shorter than a frame")
	}
}

func TestAnalyzeReportsDecayAndPitch(t *testing.T) {
	const sr = 44100
	w, err := pluck.Synthesize(pluck.SynthConfig{
		SampleRate: sr,
		Frequency:  110,
		Duration:   2.0,
		Decay:      0.992,
		Rand:       rand.New(rand.NewSource(23)),
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	r := Analyze(w.Samples(), sr, 110)
	if r.Frames != w.Len() || r.DurationS != 2.0 {
		t.Fatalf("frame bookkeeping mismatch: %+v", r)
	}
	if !(r.DecayDBPerS < 0) {
		t.Fatalf("expected negative decay slope, got %f", r.DecayDBPerS)
	}
	if math.IsInf(r.T60S, 0) || r.T60S <= 0 {
		t.Fatalf("expected finite T60, got %f", r.T60S)
	}
	if math.Abs(r.FundamentalHz-110) > 3 {
		t.Fatalf("expected ~110 Hz, got %f", r.FundamentalHz)
	}
	if r.Peak <= 0 || r.RMS <= 0 || r.RMS > r.Peak {
		t.Fatalf("level bookkeeping mismatch: peak=%f rms=%f", r.Peak, r.RMS)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	r := Analyze(nil, 44100, 0)
	if r.Frames != 0 || !math.IsInf(r.T60S, 1) {
		t.Fatalf("unexpected report for empty input: %+v", r)
	}
}
