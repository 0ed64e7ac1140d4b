package pluck

// Waveform is an immutable block of mono samples. Voices share it by
// reference; nothing in this package writes to it after Synthesize returns.
type Waveform struct {
	samples []float32
}

// NewWaveform copies samples into a new Waveform.
func NewWaveform(samples []float32) *Waveform {
	return &Waveform{samples: append([]float32(nil), samples...)}
}

// Len returns the number of samples.
func (w *Waveform) Len() int {
	if w == nil {
		return 0
	}
	return len(w.samples)
}

// At returns sample i.
func (w *Waveform) At(i int) float32 { return w.samples[i] }

// Samples returns a copy of the sample data.
func (w *Waveform) Samples() []float32 {
	if w == nil {
		return nil
	}
	return append([]float32(nil), w.samples...)
}

// Duration returns the length in seconds at the given sample rate.
func (w *Waveform) Duration(sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(w.Len()) / float64(sampleRate)
}
