package pluck

import (
	"fmt"
	"testing"
)

func TestDetectorFirstSampleNeverTriggers(t *testing.T) {
	b := bankWithThresholds(t, -10, 5)
	for _, angle := range []float64{-100, -10, 0, 5, 100} {
		d := NewDetector(b, 140)
		if hits := d.Process(angle, 1000, 0); len(hits) != 0 {
			t.Fatalf("first sample %g triggered %v", angle, thresholdsOf(hits))
		}
	}
}

func TestDetectorCrossingSequence(t *testing.T) {
	b := bankWithThresholds(t, -10, 5)
	d := NewDetector(b, 140)

	steps := []struct {
		angle float64
		want  []float64
	}{
		{-20, nil},
		{-20, nil},
		{0, []float64{-10}},
		{10, []float64{5}},
	}
	for i, st := range steps {
		got := thresholdsOf(d.Process(st.angle, 200, 0))
		if !equalFloats(got, st.want) {
			t.Fatalf("call %d (%g): got=%v want=%v", i+1, st.angle, got, st.want)
		}
	}
}

func TestDetectorDownwardCrossing(t *testing.T) {
	b := bankWithThresholds(t, -10, 5)
	d := NewDetector(b, 140)
	d.Process(10, 200, 0)
	got := thresholdsOf(d.Process(-20, 200, 0))
	if !equalFloats(got, []float64{-10, 5}) {
		t.Fatalf("sweep down: got=%v", got)
	}
}

func TestDetectorForceGatingStillTracksAngle(t *testing.T) {
	b := bankWithThresholds(t, -10, 5)
	d := NewDetector(b, 140)
	for i, angle := range []float64{-20, -20, 0, 10} {
		if hits := d.Process(angle, 50, 0); len(hits) != 0 {
			t.Fatalf("gated call %d triggered %v", i+1, thresholdsOf(hits))
		}
	}
	if prev, ok := d.Previous(); !ok || prev != 10 {
		t.Fatalf("previous angle not tracked: %g %v", prev, ok)
	}
	// Only the latest delta counts: 10 -> 12 crosses nothing.
	if hits := d.Process(12, 200, 0); len(hits) != 0 {
		t.Fatalf("expected no trigger from stale history, got %v", thresholdsOf(hits))
	}
	if hits := thresholdsOf(d.Process(4, 200, 0)); !equalFloats(hits, []float64{5}) {
		t.Fatalf("expected 5 after gating, got %v", hits)
	}
}

func TestDetectorForceAtGateIsSuppressed(t *testing.T) {
	b := bankWithThresholds(t, 0)
	d := NewDetector(b, 140)
	d.Process(-5, 140, 0)
	if hits := d.Process(5, 140, 0); len(hits) != 0 {
		t.Fatalf("force equal to gate must not trigger")
	}
	d.Process(-5, 141, 0)
	if hits := d.Process(5, 141, 0); len(hits) != 1 {
		t.Fatalf("force above gate must trigger, got %d", len(hits))
	}
}

func TestDetectorTieAtThreshold(t *testing.T) {
	b := bankWithThresholds(t, -10)
	d := NewDetector(b, 140)
	seq := []struct {
		angle float64
		want  int
	}{
		{-20, 0},
		{-10, 1}, // arriving on the threshold from below counts
		{-10, 0}, // sitting on it does not re-trigger
		{-10, 0},
		{0, 0},  // leaving upward from the threshold was already counted
		{-10, 1}, // arriving from above counts
		{-20, 0},
	}
	for i, st := range seq {
		if got := len(d.Process(st.angle, 200, 0)); got != st.want {
			t.Fatalf("step %d (%g): got=%d want=%d", i, st.angle, got, st.want)
		}
	}
}

func TestDetectorAppliesOffset(t *testing.T) {
	b := bankWithThresholds(t, 0)
	d := NewDetector(b, 140)
	d.Process(25, 200, 30) // -5 calibrated
	if hits := d.Process(35, 200, 30); len(hits) != 1 {
		t.Fatalf("expected crossing of 0 after offset, got %d", len(hits))
	}
}

func TestDetectorUnsortedThresholds(t *testing.T) {
	b := bankWithThresholds(t, 20, -40, 5, -10)
	d := NewDetector(b, 0)
	d.Process(-50, 1, 0)
	got := thresholdsOf(d.Process(30, 1, 0))
	if !equalFloats(got, []float64{20, -40, 5, -10}) {
		t.Fatalf("expected every string in bank order, got %v", got)
	}
}

func TestDetectorReset(t *testing.T) {
	b := bankWithThresholds(t, 0)
	d := NewDetector(b, 0)
	d.Process(-5, 1, 0)
	d.Reset()
	if _, ok := d.Previous(); ok {
		t.Fatalf("expected undefined previous after reset")
	}
	if hits := d.Process(5, 1, 0); len(hits) != 0 {
		t.Fatalf("first sample after reset must not trigger")
	}
}

func TestDetectorDefaultTuningSweep(t *testing.T) {
	p := NewDefaultParams()
	p.Duration = 0.01
	b, err := NewSeededStringBank(p, 1)
	if err != nil {
		t.Fatalf("NewSeededStringBank: %v", err)
	}
	d := NewDetector(b, p.MinStrumForce)
	var labels []string
	angle := -60.0
	d.Process(angle, 200, 0)
	for angle < 60 {
		angle += 3
		for _, s := range d.Process(angle, 200, 0) {
			labels = append(labels, s.Label)
		}
	}
	if got := fmt.Sprint(labels); got != "[Low E A D G B High E]" {
		t.Fatalf("unexpected sweep order: %s", got)
	}
}
