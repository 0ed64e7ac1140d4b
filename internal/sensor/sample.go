// Package sensor decodes the glove's line protocol into (angle, force)
// samples and opens the serial link it arrives on.
package sensor

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformed marks a line that is not "angle:force".
var ErrMalformed = errors.New("sensor: malformed line")

// Sample is one decoded reading: roll angle in degrees and a flex/pressure force.
type Sample struct {
	Angle float64
	Force int
}

// ParseLine decodes "angle:force", e.g. "-12.5:230".
func ParseLine(line string) (Sample, error) {
	line = strings.TrimSpace(line)
	a, f, ok := strings.Cut(line, ":")
	if !ok || strings.Contains(f, ":") {
		return Sample{}, fmt.Errorf("%w: %q", ErrMalformed, line)
	}
	angle, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil || math.IsNaN(angle) || math.IsInf(angle, 0) {
		return Sample{}, fmt.Errorf("%w: angle %q", ErrMalformed, a)
	}
	force, err := strconv.Atoi(strings.TrimSpace(f))
	if err != nil {
		return Sample{}, fmt.Errorf("%w: force %q", ErrMalformed, f)
	}
	return Sample{Angle: angle, Force: force}, nil
}

// FormatLine is the inverse of ParseLine.
func FormatLine(s Sample) string {
	return strconv.FormatFloat(s.Angle, 'f', -1, 64) + ":" + strconv.Itoa(s.Force)
}
