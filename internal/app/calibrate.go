package app

import (
	"context"
	"time"

	"github.com/cwbudde/algo-strum/internal/sensor"
	"github.com/cwbudde/algo-strum/pluck"
)

// Calibration is the outcome of a calibration window.
type Calibration struct {
	Offset  float64
	Samples int
}

// Calibrate discards samples for settle, then averages the raw angles that
// arrive within window. An empty window, or a source that closes early,
// yields offset 0 without error. Only ctx cancellation fails.
func Calibrate(ctx context.Context, in <-chan sensor.Sample, settle, window time.Duration) (Calibration, error) {
	if settle > 0 {
		t := time.NewTimer(settle)
		defer t.Stop()
	settling:
		for {
			select {
			case <-ctx.Done():
				return Calibration{}, ctx.Err()
			case <-t.C:
				break settling
			case _, ok := <-in:
				if !ok {
					return Calibration{}, nil
				}
			}
		}
	}

	var c pluck.Calibrator
	w := time.NewTimer(window)
	defer w.Stop()
	for {
		select {
		case <-ctx.Done():
			return Calibration{}, ctx.Err()
		case <-w.C:
			return Calibration{Offset: c.Offset(), Samples: c.Count()}, nil
		case s, ok := <-in:
			if !ok {
				return Calibration{Offset: c.Offset(), Samples: c.Count()}, nil
			}
			c.Add(s.Angle)
		}
	}
}
