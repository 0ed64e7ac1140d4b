// Package pluck implements the real-time core of the instrument: a
// noise-excited feedback-delay string synthesizer, the bank of virtual
// strings triggered by angular thresholds, the crossing detector that turns
// a sensor stream into pluck events, and the voice mixer that renders the
// resulting voices for the audio device.
package pluck
