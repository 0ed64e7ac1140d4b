package pluck

// Params holds the static configuration of the instrument.
type Params struct {
	SampleRate    int
	MinStrumForce int

	// Defaults applied to strings that do not override them.
	Duration float64 // seconds
	Decay    float64 // feedback gain per pass, in (0,1)

	// MaxVoices caps the number of concurrently sounding voices.
	MaxVoices int

	Strings []StringParams
}

// StringParams configures one virtual string.
type StringParams struct {
	Threshold float64 // degrees, relative to the calibrated zero
	Label     string
	Frequency float64 // Hz; derived from Note when zero
	Note      int     // MIDI note number, used for Frequency fallback and MIDI mirroring
	Decay     float64 // 0 = use Params.Decay
	Duration  float64 // 0 = use Params.Duration
}

const (
	DefaultSampleRate    = 44100
	DefaultMinStrumForce = 140
	DefaultDuration      = 3.0
	DefaultDecay         = 0.992
	DefaultMaxVoices     = 64
)

// OpenETuning returns the six strings of an open E chord.
func OpenETuning() []StringParams {
	return []StringParams{
		{Threshold: -40, Label: "Low E", Frequency: 82.41, Note: 40},
		{Threshold: -25, Label: "A", Frequency: 110.00, Note: 45},
		{Threshold: -10, Label: "D", Frequency: 146.83, Note: 50},
		{Threshold: 5, Label: "G", Frequency: 196.00, Note: 55},
		{Threshold: 20, Label: "B", Frequency: 246.94, Note: 59},
		{Threshold: 35, Label: "High E", Frequency: 329.63, Note: 64},
	}
}

// NewDefaultParams creates default parameters.
func NewDefaultParams() *Params {
	return &Params{
		SampleRate:    DefaultSampleRate,
		MinStrumForce: DefaultMinStrumForce,
		Duration:      DefaultDuration,
		Decay:         DefaultDecay,
		MaxVoices:     DefaultMaxVoices,
		Strings:       OpenETuning(),
	}
}

// Clone returns a deep copy of p.
func (p *Params) Clone() *Params {
	if p == nil {
		return nil
	}
	c := *p
	c.Strings = append([]StringParams(nil), p.Strings...)
	return &c
}

// ResolvedFrequency returns Frequency, or the equal-tempered pitch of Note when unset.
func (s StringParams) ResolvedFrequency() float64 {
	if s.Frequency > 0 {
		return s.Frequency
	}
	if s.Note > 0 {
		return float64(NoteToFrequency(s.Note))
	}
	return 0
}
