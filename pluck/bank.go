package pluck

import (
	"fmt"
	"math/rand"
)

// VirtualString is an angular threshold bound to a precomputed waveform.
type VirtualString struct {
	Index     int
	Threshold float64
	Label     string
	Frequency float64
	Note      int
	Waveform  *Waveform
}

// StringBank is the fixed set of virtual strings, synthesized once at startup.
type StringBank struct {
	sampleRate int
	strings    []*VirtualString
}

// NewStringBank synthesizes every string in params. All strings must succeed.
func NewStringBank(params *Params) (*StringBank, error) {
	return newStringBank(params, nil)
}

// NewSeededStringBank is NewStringBank with a deterministic excitation.
func NewSeededStringBank(params *Params, seed int64) (*StringBank, error) {
	return newStringBank(params, rand.New(rand.NewSource(seed)))
}

func newStringBank(params *Params, rng *rand.Rand) (*StringBank, error) {
	if params == nil {
		params = NewDefaultParams()
	}
	if len(params.Strings) == 0 {
		return nil, fmt.Errorf("%w: no strings configured", ErrInvalidParameter)
	}
	b := &StringBank{
		sampleRate: params.SampleRate,
		strings:    make([]*VirtualString, 0, len(params.Strings)),
	}
	for i, sp := range params.Strings {
		cfg := SynthConfig{
			SampleRate: params.SampleRate,
			Frequency:  sp.ResolvedFrequency(),
			Duration:   sp.Duration,
			Decay:      sp.Decay,
			Rand:       rng,
		}
		if cfg.Duration == 0 {
			cfg.Duration = params.Duration
		}
		if cfg.Decay == 0 {
			cfg.Decay = params.Decay
		}
		w, err := Synthesize(cfg)
		if err != nil {
			return nil, fmt.Errorf("string %d (%q): %w", i, sp.Label, err)
		}
		b.strings = append(b.strings, &VirtualString{
			Index:     i,
			Threshold: sp.Threshold,
			Label:     sp.Label,
			Frequency: cfg.Frequency,
			Note:      sp.Note,
			Waveform:  w,
		})
	}
	return b, nil
}

// SampleRate returns the rate the waveforms were rendered at.
func (b *StringBank) SampleRate() int { return b.sampleRate }

// Len returns the number of strings.
func (b *StringBank) Len() int { return len(b.strings) }

// At returns string i in configuration order.
func (b *StringBank) At(i int) *VirtualString { return b.strings[i] }

// Strings returns the strings in configuration order. The slice is a copy;
// the strings themselves are shared and must not be modified.
func (b *StringBank) Strings() []*VirtualString {
	return append([]*VirtualString(nil), b.strings...)
}

// Lookup finds a string by label.
func (b *StringBank) Lookup(label string) (*VirtualString, bool) {
	for _, s := range b.strings {
		if s.Label == label {
			return s, true
		}
	}
	return nil, false
}
