package pluck

import (
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-strum/dsp"
)

// voice is one in-flight playback of a shared waveform.
type voice struct {
	wave   *Waveform
	cursor int
}

func (v *voice) remaining() int { return len(v.wave.samples) - v.cursor }

// Stats is a snapshot of mixer counters.
type Stats struct {
	Appended        uint64
	Completed       uint64
	Evicted         uint64
	Active          int64
	SamplesConsumed uint64
	RenderCalls     uint64
}

// Mixer sums concurrently sounding voices into a mono block.
//
// Append may be called from any goroutine. RenderInto must only be called
// from the audio goroutine. The two meet at a fixed-capacity pending ring
// guarded by mu; the lock is held only while copying voice structs in or out
// of the ring, never while mixing.
type Mixer struct {
	mu       sync.Mutex
	pending  []voice
	pHead    int
	pLen     int
	resetReq bool

	// Owned by the render goroutine.
	incoming []voice
	active   []voice

	appended  atomic.Uint64
	completed atomic.Uint64
	evicted   atomic.Uint64
	consumed  atomic.Uint64
	renders   atomic.Uint64
	numActive atomic.Int64
}

// NewMixer creates a mixer that holds at most maxVoices sounding voices.
func NewMixer(maxVoices int) *Mixer {
	if maxVoices <= 0 {
		maxVoices = DefaultMaxVoices
	}
	return &Mixer{
		pending:  make([]voice, maxVoices),
		incoming: make([]voice, 0, maxVoices),
		active:   make([]voice, 0, maxVoices),
	}
}

// MaxVoices returns the voice cap.
func (m *Mixer) MaxVoices() int { return len(m.pending) }

// Append schedules w to start at the next render call. When more voices are
// queued than the mixer can hold, the oldest queued one is dropped.
func (m *Mixer) Append(w *Waveform) {
	if w.Len() == 0 {
		return
	}
	m.mu.Lock()
	if m.pLen == len(m.pending) {
		m.pHead = (m.pHead + 1) % len(m.pending)
		m.pLen--
		m.evicted.Add(1)
	}
	m.pending[(m.pHead+m.pLen)%len(m.pending)] = voice{wave: w}
	m.pLen++
	m.mu.Unlock()
	m.appended.Add(1)
}

// Reset drops every queued and sounding voice. Sounding voices are dropped
// at the start of the next render call.
func (m *Mixer) Reset() {
	m.mu.Lock()
	for i := range m.pending {
		m.pending[i] = voice{}
	}
	m.pHead, m.pLen = 0, 0
	m.resetReq = true
	m.mu.Unlock()
}

// Render mixes frames samples into a newly allocated block.
func (m *Mixer) Render(frames int) []float32 {
	if frames <= 0 {
		return nil
	}
	out := make([]float32, frames)
	m.RenderInto(out)
	return out
}

// RenderInto overwrites dst with the next len(dst) mixed samples.
func (m *Mixer) RenderInto(dst []float32) {
	for i := range dst {
		dst[i] = 0
	}
	reset := m.drain()
	if reset {
		for i := range m.active {
			m.active[i] = voice{}
		}
		m.active = m.active[:0]
	}
	m.merge()

	frames := len(dst)
	kept := m.active[:0]
	var consumed int
	for _, v := range m.active {
		n := v.remaining()
		if n > frames {
			n = frames
		}
		src := v.wave.samples[v.cursor : v.cursor+n]
		for i, s := range src {
			dst[i] += s
		}
		v.cursor += n
		consumed += n
		if v.remaining() == 0 {
			m.completed.Add(1)
			continue
		}
		kept = append(kept, v)
	}
	for i := len(kept); i < len(m.active); i++ {
		m.active[i] = voice{}
	}
	m.active = kept

	dsp.SoftClipBlock(dst)

	m.consumed.Add(uint64(consumed))
	m.numActive.Store(int64(len(m.active)))
	m.renders.Add(1)
}

// drain moves the pending ring into the render-owned incoming buffer.
func (m *Mixer) drain() (reset bool) {
	m.mu.Lock()
	reset = m.resetReq
	m.resetReq = false
	m.incoming = m.incoming[:0]
	for i := 0; i < m.pLen; i++ {
		j := (m.pHead + i) % len(m.pending)
		m.incoming = append(m.incoming, m.pending[j])
		m.pending[j] = voice{}
	}
	m.pHead, m.pLen = 0, 0
	m.mu.Unlock()
	return reset
}

// merge adds incoming voices to the active set, evicting the oldest
// sounding voices when the cap is reached.
func (m *Mixer) merge() {
	if len(m.incoming) == 0 {
		return
	}
	limit := cap(m.active)
	over := len(m.active) + len(m.incoming) - limit
	if over > 0 {
		if over > len(m.active) {
			over = len(m.active)
		}
		n := copy(m.active, m.active[over:])
		for i := n; i < len(m.active); i++ {
			m.active[i] = voice{}
		}
		m.active = m.active[:n]
		m.evicted.Add(uint64(over))
	}
	for i := range m.incoming {
		m.active = append(m.active, m.incoming[i])
		m.incoming[i] = voice{}
	}
	m.incoming = m.incoming[:0]
}

// Stats returns a snapshot of the mixer counters.
func (m *Mixer) Stats() Stats {
	return Stats{
		Appended:        m.appended.Load(),
		Completed:       m.completed.Load(),
		Evicted:         m.evicted.Load(),
		Active:          m.numActive.Load(),
		SamplesConsumed: m.consumed.Load(),
		RenderCalls:     m.renders.Load(),
	}
}
