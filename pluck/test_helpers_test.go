package pluck

import (
	"math"
	"math/rand"
	"strconv"
	"testing"
)

func seeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func windowRMS(samples []float32) float64 {
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func constWaveform(n int, v float32) *Waveform {
	s := make([]float32, n)
	for i := range s {
		s[i] = v
	}
	return &Waveform{samples: s}
}

func bankWithThresholds(t *testing.T, thresholds ...float64) *StringBank {
	t.Helper()
	p := NewDefaultParams()
	p.Duration = 0.01
	p.Strings = nil
	for i, th := range thresholds {
		p.Strings = append(p.Strings, StringParams{
			Threshold: th,
			Label:     labelFor(th),
			Frequency: 110 * float64(i+1),
		})
	}
	b, err := NewSeededStringBank(p, 1)
	if err != nil {
		t.Fatalf("NewSeededStringBank: %v", err)
	}
	return b
}

func labelFor(th float64) string {
	return "t" + strconv.FormatFloat(th, 'g', -1, 64)
}

func thresholdsOf(hits []*VirtualString) []float64 {
	out := make([]float64, len(hits))
	for i, h := range hits {
		out[i] = h.Threshold
	}
	return out
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
