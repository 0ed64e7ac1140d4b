package app

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-strum/internal/sensor"
	"github.com/cwbudde/algo-strum/pluck"
)

type recordVoices struct {
	got []*pluck.Waveform
}

func (r *recordVoices) Append(w *pluck.Waveform) { r.got = append(r.got, w) }

func testBank(t *testing.T) *pluck.StringBank {
	t.Helper()
	p := pluck.NewDefaultParams()
	p.SampleRate = 8000
	p.Duration = 0.05
	bank, err := pluck.NewSeededStringBank(p, 1)
	if err != nil {
		t.Fatalf("NewSeededStringBank: %v", err)
	}
	return bank
}

func TestPipelineFeedQueuesAndNotifies(t *testing.T) {
	bank := testBank(t)
	voices := &recordVoices{}
	var labels []string
	var forces []int
	pipe := NewPipeline(pluck.NewDetector(bank, 140), voices, NotifierFunc(func(s *pluck.VirtualString, force int) {
		labels = append(labels, s.Label)
		forces = append(forces, force)
	}))

	pipe.Feed(sensor.Sample{Angle: -20, Force: 500})
	hits := pipe.Feed(sensor.Sample{Angle: 0, Force: 500})
	if len(hits) != 1 || hits[0].Label != "D" {
		t.Fatalf("unexpected hits: %v", hits)
	}
	if len(voices.got) != 1 || voices.got[0] != bank.At(2).Waveform {
		t.Fatalf("voice not queued with the shared waveform")
	}
	if len(labels) != 1 || labels[0] != "D" || forces[0] != 500 {
		t.Fatalf("notifier mismatch: labels=%v forces=%v", labels, forces)
	}
}

func TestPipelineAppliesOffset(t *testing.T) {
	bank := testBank(t)
	voices := &recordVoices{}
	pipe := NewPipeline(pluck.NewDetector(bank, 140), voices)
	pipe.SetOffset(10)

	// Raw 0 -> calibrated -10, which exactly reaches the D threshold.
	pipe.Feed(sensor.Sample{Angle: 5, Force: 500})
	hits := pipe.Feed(sensor.Sample{Angle: 0, Force: 500})
	if len(hits) != 1 || hits[0].Label != "D" {
		t.Fatalf("unexpected hits with offset: %v", hits)
	}
	if pipe.Offset() != 10 {
		t.Fatalf("offset: got=%v want=10", pipe.Offset())
	}
}

func TestPipelineStopBlocksAppend(t *testing.T) {
	bank := testBank(t)
	voices := &recordVoices{}
	pipe := NewPipeline(pluck.NewDetector(bank, 140), voices)
	pipe.Feed(sensor.Sample{Angle: -50, Force: 500})
	pipe.Stop()
	if hits := pipe.Feed(sensor.Sample{Angle: 50, Force: 500}); hits != nil {
		t.Fatalf("expected no hits after Stop, got %v", hits)
	}
	if len(voices.got) != 0 || !pipe.Stopped() {
		t.Fatalf("append after stop: %d", len(voices.got))
	}
}

func TestPipelineSweepAcrossAllStrings(t *testing.T) {
	bank := testBank(t)
	voices := &recordVoices{}
	pipe := NewPipeline(pluck.NewDetector(bank, 140), voices)
	pipe.Feed(sensor.Sample{Angle: -60, Force: 500})
	hits := pipe.Feed(sensor.Sample{Angle: 60, Force: 500})
	if len(hits) != bank.Len() || len(voices.got) != bank.Len() {
		t.Fatalf("sweep: hits=%d voices=%d want=%d", len(hits), len(voices.got), bank.Len())
	}
}

func TestCalibrateAveragesWindow(t *testing.T) {
	in := make(chan sensor.Sample, 8)
	for _, a := range []float64{2, 4, 6} {
		in <- sensor.Sample{Angle: a, Force: 0}
	}
	cal, err := Calibrate(context.Background(), in, 0, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	if cal.Samples != 3 || math.Abs(cal.Offset-4) > 1e-12 {
		t.Fatalf("calibration: got=%+v want offset 4 over 3 samples", cal)
	}
}

func TestCalibrateDiscardsSettle(t *testing.T) {
	in := make(chan sensor.Sample)
	done := make(chan Calibration, 1)
	go func() {
		cal, _ := Calibrate(context.Background(), in, 40*time.Millisecond, 200*time.Millisecond)
		done <- cal
	}()
	// Consumed during settle.
	in <- sensor.Sample{Angle: 100}
	time.Sleep(80 * time.Millisecond)
	in <- sensor.Sample{Angle: -3}
	in <- sensor.Sample{Angle: -5}
	close(in)

	cal := <-done
	if cal.Samples != 2 || math.Abs(cal.Offset+4) > 1e-12 {
		t.Fatalf("calibration: got=%+v want offset -4 over 2 samples", cal)
	}
}

func TestCalibrateEmptyWindowFailsOpen(t *testing.T) {
	in := make(chan sensor.Sample)
	cal, err := Calibrate(context.Background(), in, 0, 10*time.Millisecond)
	if err != nil || cal.Offset != 0 || cal.Samples != 0 {
		t.Fatalf("expected zero offset, got %+v err=%v", cal, err)
	}
}

func TestCalibrateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Calibrate(ctx, make(chan sensor.Sample), time.Second, time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
