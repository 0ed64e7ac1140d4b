package main

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-strum/pluck"
)

// targetT60s scales t60 per string so that higher strings ring shorter.
// The lowest resolved frequency gets exactly t60.
func targetT60s(strings []pluck.StringParams, t60, slope float64) ([]float64, error) {
	if len(strings) == 0 {
		return nil, fmt.Errorf("preset has no strings")
	}
	low := math.Inf(1)
	freqs := make([]float64, len(strings))
	for i, s := range strings {
		f := s.ResolvedFrequency()
		if f <= 0 {
			return nil, fmt.Errorf("string %d (%q) has no frequency", i, s.Label)
		}
		freqs[i] = f
		low = math.Min(low, f)
	}
	out := make([]float64, len(strings))
	for i, f := range freqs {
		out[i] = t60 * math.Pow(low/f, slope)
	}
	return out, nil
}
