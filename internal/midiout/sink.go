// Package midiout mirrors plucks to a MIDI output port.
package midiout

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// DefaultHold is how long a mirrored note sounds before its NoteOff.
const DefaultHold = 400 * time.Millisecond

// excludedPatterns are virtual ports never picked by a pattern match.
var excludedPatterns = []string{"Midi Through", "Through Port", "Dummy"}

// Config tunes velocity mapping and note length.
type Config struct {
	Channel uint8
	Hold    time.Duration
	// Forces at or below MinForce map to velocity 1, at or above MaxForce to 127.
	MinForce int
	MaxForce int
}

// Sink sends NoteOn/NoteOff pairs. A nil *Sink is a valid no-op.
type Sink struct {
	cfg    Config
	logger *slog.Logger
	send   func(midi.Message) error

	mu     sync.Mutex
	drv    *rtmididrv.Driver
	port   drivers.Out
	timers map[*time.Timer]struct{}
	closed bool
}

// Open connects to the first output port whose name contains pattern.
func Open(pattern string, cfg Config, logger *slog.Logger) (*Sink, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("midiout: rtmididrv: %w", err)
	}
	outs, err := drv.Outs()
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("midiout: list outputs: %w", err)
	}
	names := make([]string, len(outs))
	for i, o := range outs {
		names[i] = o.String()
	}
	idx, ok := pickOut(names, pattern)
	if !ok {
		drv.Close()
		return nil, fmt.Errorf("midiout: no output matching %q among [%s]", pattern, strings.Join(names, ", "))
	}
	out := outs[idx]
	if err := out.Open(); err != nil {
		drv.Close()
		return nil, fmt.Errorf("midiout: open %q: %w", names[idx], err)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		_ = out.Close()
		drv.Close()
		return nil, fmt.Errorf("midiout: sender %q: %w", names[idx], err)
	}
	s := newSink(cfg, send, logger)
	s.drv = drv
	s.port = out
	s.logger.Info("midi: output connected", "device", names[idx])
	return s, nil
}

func newSink(cfg Config, send func(midi.Message) error, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Hold <= 0 {
		cfg.Hold = DefaultHold
	}
	if cfg.MaxForce <= cfg.MinForce {
		cfg.MaxForce = cfg.MinForce + 400
	}
	return &Sink{cfg: cfg, logger: logger, send: send, timers: map[*time.Timer]struct{}{}}
}

// Pluck sends NoteOn for note now and NoteOff after the hold time.
func (s *Sink) Pluck(note, force int) {
	if s == nil || note < 0 || note > 127 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	key := uint8(note)
	vel := Velocity(force, s.cfg.MinForce, s.cfg.MaxForce)
	if err := s.send(midi.NoteOn(s.cfg.Channel, key, vel)); err != nil {
		s.logger.Warn("midi: note on failed", "key", key, "err", err)
		return
	}
	var t *time.Timer
	t = time.AfterFunc(s.cfg.Hold, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, live := s.timers[t]; !live {
			return
		}
		delete(s.timers, t)
		if err := s.send(midi.NoteOff(s.cfg.Channel, key)); err != nil {
			s.logger.Warn("midi: note off failed", "key", key, "err", err)
		}
	})
	s.timers[t] = struct{}{}
}

// Close flushes pending NoteOffs and releases the port.
func (s *Sink) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for t := range s.timers {
		t.Stop()
	}
	clear(s.timers)
	// All Notes Off.
	_ = s.send(midi.ControlChange(s.cfg.Channel, 123, 0))
	if s.port != nil {
		_ = s.port.Close()
	}
	if s.drv != nil {
		s.drv.Close()
	}
}

// Velocity maps force linearly onto 1..127.
func Velocity(force, minForce, maxForce int) uint8 {
	if maxForce <= minForce || force <= minForce {
		return 1
	}
	if force >= maxForce {
		return 127
	}
	v := 1 + (force-minForce)*126/(maxForce-minForce)
	return uint8(v)
}

func pickOut(names []string, pattern string) (int, bool) {
	for i, n := range names {
		if isExcluded(n) {
			continue
		}
		if pattern == "" || containsCI(n, pattern) {
			return i, true
		}
	}
	return -1, false
}

func isExcluded(name string) bool {
	for _, pat := range excludedPatterns {
		if containsCI(name, pat) {
			return true
		}
	}
	return false
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
