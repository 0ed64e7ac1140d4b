package pluck

// Calibrator accumulates resting-position angles and yields their mean.
type Calibrator struct {
	sum   float64
	count int
}

// Add records one raw angle. Non-finite values are ignored.
func (c *Calibrator) Add(angle float64) {
	if !isFinite(angle) {
		return
	}
	c.sum += angle
	c.count++
}

// Count returns the number of recorded angles.
func (c *Calibrator) Count() int { return c.count }

// Offset returns the mean angle, or 0 when nothing was recorded.
func (c *Calibrator) Offset() float64 {
	if c.count == 0 {
		return 0
	}
	return c.sum / float64(c.count)
}
