// Package observe exports instrument metrics through OpenTelemetry.
//
// Mixer statistics are read from [StatsSource] inside an observable
// callback at collection time, so nothing here runs on the render path.
package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cwbudde/algo-strum/pluck"
)

const meterName = "github.com/cwbudde/algo-strum"

// StatsSource publishes mixer counters.
type StatsSource interface {
	Stats() pluck.Stats
}

// Metrics holds the synchronous instruments recorded by the ingest path.
type Metrics struct {
	// Plucks counts triggered strings. Attribute: "string".
	Plucks metric.Int64Counter

	// DroppedLines counts malformed sensor lines.
	DroppedLines metric.Int64Counter

	reg metric.Registration
}

// NewMetrics creates the instruments on mp. src may be nil when no mixer is
// attached.
func NewMetrics(mp metric.MeterProvider, src StatsSource) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Plucks, err = m.Int64Counter("strum.plucks",
		metric.WithDescription("Strings triggered by threshold crossings."),
	); err != nil {
		return nil, err
	}
	if met.DroppedLines, err = m.Int64Counter("strum.sensor.dropped_lines",
		metric.WithDescription("Malformed sensor lines skipped."),
	); err != nil {
		return nil, err
	}
	if src == nil {
		return met, nil
	}

	active, err := m.Int64ObservableGauge("strum.voices.active",
		metric.WithDescription("Voices currently mixed."))
	if err != nil {
		return nil, err
	}
	appended, err := m.Int64ObservableCounter("strum.voices.appended",
		metric.WithDescription("Voices handed to the mixer."))
	if err != nil {
		return nil, err
	}
	completed, err := m.Int64ObservableCounter("strum.voices.completed",
		metric.WithDescription("Voices that played to the end."))
	if err != nil {
		return nil, err
	}
	evicted, err := m.Int64ObservableCounter("strum.voices.evicted",
		metric.WithDescription("Voices dropped by the polyphony cap."))
	if err != nil {
		return nil, err
	}
	renders, err := m.Int64ObservableCounter("strum.render.calls",
		metric.WithDescription("Audio blocks rendered."))
	if err != nil {
		return nil, err
	}
	frames, err := m.Int64ObservableCounter("strum.render.samples",
		metric.WithDescription("Voice samples consumed by the mixer."))
	if err != nil {
		return nil, err
	}

	met.reg, err = m.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		st := src.Stats()
		o.ObserveInt64(active, st.Active)
		o.ObserveInt64(appended, int64(st.Appended))
		o.ObserveInt64(completed, int64(st.Completed))
		o.ObserveInt64(evicted, int64(st.Evicted))
		o.ObserveInt64(renders, int64(st.RenderCalls))
		o.ObserveInt64(frames, int64(st.SamplesConsumed))
		return nil
	}, active, appended, completed, evicted, renders, frames)
	if err != nil {
		return nil, err
	}
	return met, nil
}

// RecordPluck counts one triggered string.
func (m *Metrics) RecordPluck(ctx context.Context, label string) {
	if m == nil {
		return
	}
	m.Plucks.Add(ctx, 1, metric.WithAttributes(attribute.String("string", label)))
}

// RecordDroppedLine counts one malformed sensor line.
func (m *Metrics) RecordDroppedLine(ctx context.Context) {
	if m == nil {
		return
	}
	m.DroppedLines.Add(ctx, 1)
}

// Close unregisters the stats callback.
func (m *Metrics) Close() error {
	if m == nil || m.reg == nil {
		return nil
	}
	return m.reg.Unregister()
}
