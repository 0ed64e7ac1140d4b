package dsp

import (
	"encoding/binary"
	"math"
)

// PutFloat32LE packs src as little-endian IEEE-754 floats into dst and
// returns the number of bytes written. Only whole samples are written.
func PutFloat32LE(dst []byte, src []float32) int {
	n := len(dst) / 4
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(src[i]))
	}
	return n * 4
}
