package dsp

import "math"

// softClipCeil is the largest float32 below 0.5.
var softClipCeil = math.Nextafter32(0.5, 0)

// SoftClip maps x through 0.5*tanh(x). The result lies strictly inside
// (-0.5, 0.5) for every input; NaN maps to 0.
func SoftClip(x float32) float32 {
	if x != x {
		return 0
	}
	y := float32(0.5 * math.Tanh(float64(x)))
	if y >= 0.5 {
		return softClipCeil
	}
	if y <= -0.5 {
		return -softClipCeil
	}
	return y
}

// SoftClipBlock applies SoftClip in place (no heap allocations).
func SoftClipBlock(buf []float32) {
	for i, v := range buf {
		buf[i] = SoftClip(v)
	}
}
