// Package audio drives the output device from a block renderer.
package audio

import (
	"github.com/cwbudde/algo-strum/dsp"
)

// Renderer fills dst with the next block of mono samples.
type Renderer interface {
	RenderInto(dst []float32)
}

// stream adapts a Renderer to the io.Reader the device pulls from.
type stream struct {
	r       Renderer
	scratch []float32
}

func newStream(r Renderer, frames int) *stream {
	if frames < 1 {
		frames = 1024
	}
	return &stream{r: r, scratch: make([]float32, frames)}
}

// Read renders len(p)/4 samples and packs them as float32 LE.
func (s *stream) Read(p []byte) (int, error) {
	n := len(p) / 4
	if n == 0 {
		return 0, nil
	}
	// Grows only when the device asks for more than the configured block.
	if len(s.scratch) < n {
		s.scratch = make([]float32, n)
	}
	block := s.scratch[:n]
	s.r.RenderInto(block)
	return dsp.PutFloat32LE(p, block), nil
}
