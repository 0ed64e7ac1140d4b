package pluck

// Detector turns a stream of calibrated angles into string crossings.
// It is not safe for concurrent use; the ingest path owns it.
type Detector struct {
	strings  []*VirtualString
	minForce int

	prev    float64
	hasPrev bool
}

// NewDetector creates a detector over the strings of bank. Crossings are
// only reported while force is strictly above minForce.
func NewDetector(bank *StringBank, minForce int) *Detector {
	return &Detector{strings: bank.Strings(), minForce: minForce}
}

// Process consumes one sample and returns the strings crossed since the
// previous sample, in bank order. The first sample only primes the detector.
func (d *Detector) Process(rawAngle float64, force int, offset float64) []*VirtualString {
	angle := rawAngle - offset
	if !d.hasPrev {
		d.prev = angle
		d.hasPrev = true
		return nil
	}
	prev := d.prev
	d.prev = angle
	if force <= d.minForce {
		return nil
	}

	var hits []*VirtualString
	for _, s := range d.strings {
		t := s.Threshold
		down := prev > t && t >= angle
		up := prev < t && t <= angle
		if down || up {
			hits = append(hits, s)
		}
	}
	return hits
}

// Previous returns the last tracked angle, or false before the first sample.
func (d *Detector) Previous() (float64, bool) {
	return d.prev, d.hasPrev
}

// Reset forgets the tracked angle.
func (d *Detector) Reset() {
	d.prev = 0
	d.hasPrev = false
}
