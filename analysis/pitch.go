package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

const maxFFTSize = 1 << 16

// ErrTooShort is returned when a signal has too few samples to analyze.
var ErrTooShort = errors.New("analysis: signal too short")

// Fundamental estimates the strongest spectral peak within spanHz of nearHz.
// The signal is Hann-windowed, transformed with a real FFT of the largest
// power of two that fits, and the peak is refined by parabolic interpolation.
func Fundamental(x []float64, sampleRate int, nearHz float64, spanHz float64) (float64, error) {
	if sampleRate <= 0 || nearHz <= 0 || spanHz <= 0 {
		return 0, fmt.Errorf("analysis: invalid pitch search (rate=%d near=%g span=%g)", sampleRate, nearHz, spanHz)
	}
	n := fftSizeFor(len(x))
	if n < 256 {
		return 0, ErrTooShort
	}
	plan, err := algofft.NewPlanReal64(n)
	if err != nil {
		return 0, fmt.Errorf("analysis: fft plan: %w", err)
	}

	buf := make([]float64, n)
	for i := 0; i < n; i++ {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		buf[i] = x[i] * w
	}
	bins := make([]complex128, n/2+1)
	plan.Forward(bins, buf)

	binHz := float64(sampleRate) / float64(n)
	minBin := int((nearHz - spanHz) / binHz)
	maxBin := int(math.Ceil((nearHz + spanHz) / binHz))
	if minBin < 1 {
		minBin = 1
	}
	if maxBin > n/2-1 {
		maxBin = n/2 - 1
	}
	if minBin >= maxBin {
		return 0, fmt.Errorf("analysis: search band %g±%g Hz outside spectrum", nearHz, spanHz)
	}

	best := minBin
	bestMag := 0.0
	for k := minBin; k <= maxBin; k++ {
		if mag := cmplx.Abs(bins[k]); mag > bestMag {
			bestMag = mag
			best = k
		}
	}
	if bestMag == 0 {
		return 0, fmt.Errorf("analysis: no energy near %g Hz", nearHz)
	}

	a := math.Log(cmplx.Abs(bins[best-1]) + 1e-300)
	b := math.Log(bestMag)
	c := math.Log(cmplx.Abs(bins[best+1]) + 1e-300)
	delta := 0.0
	if den := a - 2*b + c; den != 0 {
		delta = 0.5 * (a - c) / den
	}
	if delta > 0.5 || delta < -0.5 {
		delta = 0
	}
	return (float64(best) + delta) * binHz, nil
}

func fftSizeFor(n int) int {
	size := 1
	for size*2 <= n && size*2 <= maxFFTSize {
		size *= 2
	}
	return size
}
