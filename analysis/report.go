package analysis

import "math"

// Report summarises a rendered waveform.
type Report struct {
	SampleRate int     `json:"sample_rate"`
	Frames     int     `json:"frames"`
	DurationS  float64 `json:"duration_s"`
	Peak       float64 `json:"peak"`
	RMS        float64 `json:"rms"`

	NominalHz     float64 `json:"nominal_hz,omitempty"`
	FundamentalHz float64 `json:"fundamental_hz,omitempty"`
	CentsOff      float64 `json:"cents_off,omitempty"`

	DecayDBPerS float64 `json:"decay_db_per_s"`
	T60S        float64 `json:"t60_s"`
}

const (
	envFrame = 1024
	envHop   = 512
)

// Analyze measures level, pitch (searched within a fifth around nominalHz
// when it is positive) and decay of x.
func Analyze(x []float32, sampleRate int, nominalHz float64) Report {
	r := Report{SampleRate: sampleRate, Frames: len(x), NominalHz: nominalHz}
	if sampleRate <= 0 || len(x) == 0 {
		r.DecayDBPerS = math.NaN()
		r.T60S = math.Inf(1)
		return r
	}
	r.DurationS = float64(len(x)) / float64(sampleRate)

	x64 := make([]float64, len(x))
	for i, v := range x {
		x64[i] = float64(v)
		if a := math.Abs(x64[i]); a > r.Peak {
			r.Peak = a
		}
	}
	r.RMS = rms1(x64)

	env := RMSEnvelope(x64, envFrame, envHop)
	r.DecayDBPerS = DecaySlopeDBPerS(env, float64(envHop)/float64(sampleRate))
	r.T60S = T60(r.DecayDBPerS)

	if nominalHz > 0 {
		if f, err := Fundamental(x64, sampleRate, nominalHz, nominalHz*0.33); err == nil {
			r.FundamentalHz = f
			r.CentsOff = 1200 * math.Log2(f/nominalHz)
		}
	}
	return r
}
