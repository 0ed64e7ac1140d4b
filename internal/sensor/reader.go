package sensor

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
)

// Reader scans sensor lines and delivers decoded samples in arrival order.
type Reader struct {
	src    io.Reader
	logger *slog.Logger

	lines   atomic.Uint64
	dropped atomic.Uint64

	// OnDrop, when set, is called for every malformed line.
	OnDrop func(line string, err error)
}

// NewReader wraps src. A nil logger uses slog.Default().
func NewReader(src io.Reader, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{src: src, logger: logger}
}

// Run scans until EOF, a read error or ctx cancellation, sending every valid
// sample on out. It never drops a valid sample: sends block until the
// consumer receives or ctx is done. out is closed when Run returns.
func (r *Reader) Run(ctx context.Context, out chan<- Sample) error {
	defer close(out)
	sc := bufio.NewScanner(r.src)
	for sc.Scan() {
		line := sc.Text()
		r.lines.Add(1)
		s, err := ParseLine(line)
		if err != nil {
			r.dropped.Add(1)
			r.logger.Debug("sensor: dropping line", "line", line, "err", err)
			if r.OnDrop != nil {
				r.OnDrop(line, err)
			}
			continue
		}
		select {
		case out <- s:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// Lines returns the number of lines scanned.
func (r *Reader) Lines() uint64 { return r.lines.Load() }

// Dropped returns the number of malformed lines skipped.
func (r *Reader) Dropped() uint64 { return r.dropped.Load() }
