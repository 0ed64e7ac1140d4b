package pluck

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultBankHasOpenETuning(t *testing.T) {
	p := NewDefaultParams()
	p.Duration = 0.05
	b, err := NewSeededStringBank(p, 1)
	if err != nil {
		t.Fatalf("NewSeededStringBank: %v", err)
	}
	if b.Len() != 6 {
		t.Fatalf("expected 6 strings, got %d", b.Len())
	}
	wantLabels := []string{"Low E", "A", "D", "G", "B", "High E"}
	wantThresholds := []float64{-40, -25, -10, 5, 20, 35}
	for i, s := range b.Strings() {
		if s.Label != wantLabels[i] || s.Threshold != wantThresholds[i] {
			t.Fatalf("string %d mismatch: got=(%q,%g) want=(%q,%g)", i, s.Label, s.Threshold, wantLabels[i], wantThresholds[i])
		}
		if s.Index != i {
			t.Fatalf("string %d has index %d", i, s.Index)
		}
		if s.Waveform.Len() != 2205 {
			t.Fatalf("string %d length: got=%d want=2205", i, s.Waveform.Len())
		}
	}
	if s, ok := b.Lookup("G"); !ok || s.Frequency != 196.0 {
		t.Fatalf("lookup G failed: %+v %v", s, ok)
	}
	if _, ok := b.Lookup("nope"); ok {
		t.Fatalf("unexpected lookup hit")
	}
}

func TestBankDerivesFrequencyFromNote(t *testing.T) {
	p := NewDefaultParams()
	p.Duration = 0.01
	p.Strings = []StringParams{{Threshold: 0, Label: "A4", Note: 69}}
	b, err := NewSeededStringBank(p, 1)
	if err != nil {
		t.Fatalf("NewSeededStringBank: %v", err)
	}
	if f := b.At(0).Frequency; f < 438 || f > 442 {
		t.Fatalf("expected ~440 Hz from note 69, got %f", f)
	}
}

func TestBankPerStringOverrides(t *testing.T) {
	p := NewDefaultParams()
	p.Duration = 0.01
	p.Strings = []StringParams{
		{Threshold: 0, Label: "short", Frequency: 220, Duration: 0.02, Decay: 0.95},
		{Threshold: 10, Label: "default", Frequency: 220},
	}
	b, err := NewSeededStringBank(p, 1)
	if err != nil {
		t.Fatalf("NewSeededStringBank: %v", err)
	}
	if b.At(0).Waveform.Len() != 882 || b.At(1).Waveform.Len() != 441 {
		t.Fatalf("durations not applied: %d %d", b.At(0).Waveform.Len(), b.At(1).Waveform.Len())
	}
}

func TestBankFailsWhenAnyStringIsInvalid(t *testing.T) {
	p := NewDefaultParams()
	p.Duration = 0.01
	p.Strings = append(p.Strings, StringParams{Threshold: 50, Label: "broken"})
	_, err := NewStringBank(p)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Fatalf("expected failing label in error, got %v", err)
	}
}

func TestBankRejectsEmptyTuning(t *testing.T) {
	p := NewDefaultParams()
	p.Strings = nil
	if _, err := NewStringBank(p); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestParamsCloneIsDeep(t *testing.T) {
	p := NewDefaultParams()
	c := p.Clone()
	c.Strings[0].Label = "changed"
	if p.Strings[0].Label == "changed" {
		t.Fatalf("clone shares string slice")
	}
}
