// Package app wires the sensor, detector, mixer and outputs into the live
// instrument.
package app

import (
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-strum/internal/sensor"
	"github.com/cwbudde/algo-strum/pluck"
)

// Voices accepts waveforms to play.
type Voices interface {
	Append(w *pluck.Waveform)
}

// Notifier is told about every pluck after its voice was queued.
type Notifier interface {
	Plucked(s *pluck.VirtualString, force int)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(s *pluck.VirtualString, force int)

func (f NotifierFunc) Plucked(s *pluck.VirtualString, force int) { f(s, force) }

// Pipeline runs detection on the ingest goroutine and queues voices.
// Feed must be called from one goroutine; Stop may be called from any.
type Pipeline struct {
	detector  *pluck.Detector
	voices    Voices
	notifiers []Notifier

	mu      sync.Mutex
	offset  float64
	stopped atomic.Bool
}

// NewPipeline creates a pipeline over detector and voices.
func NewPipeline(d *pluck.Detector, v Voices, notifiers ...Notifier) *Pipeline {
	return &Pipeline{detector: d, voices: v, notifiers: notifiers}
}

// SetOffset sets the calibrated zero subtracted from every raw angle.
func (p *Pipeline) SetOffset(offset float64) {
	p.mu.Lock()
	p.offset = offset
	p.mu.Unlock()
}

// Offset returns the calibrated zero.
func (p *Pipeline) Offset() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.offset
}

// Feed processes one sample and returns the strings it plucked.
// After Stop it returns nil without touching the detector.
func (p *Pipeline) Feed(s sensor.Sample) []*pluck.VirtualString {
	if p.stopped.Load() {
		return nil
	}
	hits := p.detector.Process(s.Angle, s.Force, p.Offset())
	for _, vs := range hits {
		if p.stopped.Load() {
			return nil
		}
		p.voices.Append(vs.Waveform)
		for _, n := range p.notifiers {
			n.Plucked(vs, s.Force)
		}
	}
	return hits
}

// Stop prevents any further Append.
func (p *Pipeline) Stop() { p.stopped.Store(true) }

// Stopped reports whether Stop was called.
func (p *Pipeline) Stopped() bool { return p.stopped.Load() }
