package preset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-strum/pluck"
	"gopkg.in/yaml.v3"
)

// File is the on-disk preset schema, shared by the JSON and YAML forms.
// Nil fields leave the defaults untouched.
type File struct {
	SampleRate    *int          `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`
	MinStrumForce *int          `json:"min_strum_force,omitempty" yaml:"min_strum_force,omitempty"`
	DurationS     *float64      `json:"duration_s,omitempty" yaml:"duration_s,omitempty"`
	Decay         *float64      `json:"decay,omitempty" yaml:"decay,omitempty"`
	MaxVoices     *int          `json:"max_voices,omitempty" yaml:"max_voices,omitempty"`
	Strings       []StringEntry `json:"strings,omitempty" yaml:"strings,omitempty"`
}

// StringEntry is one virtual string. A non-empty Strings list replaces the
// default tuning entirely.
type StringEntry struct {
	Threshold float64  `json:"threshold" yaml:"threshold"`
	Label     string   `json:"label" yaml:"label"`
	Frequency *float64 `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	Note      *int     `json:"note,omitempty" yaml:"note,omitempty"`
	Decay     *float64 `json:"decay,omitempty" yaml:"decay,omitempty"`
	DurationS *float64 `json:"duration_s,omitempty" yaml:"duration_s,omitempty"`
}

// Load reads a preset, choosing YAML for .yaml/.yml files and JSON otherwise.
func Load(path string) (*pluck.Params, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	default:
		return LoadJSON(path)
	}
}

// LoadJSON loads a JSON preset and applies it on top of default params.
func LoadJSON(path string) (*pluck.Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("preset: decode %q: %w", path, err)
	}
	return fromFile(&f)
}

// LoadYAML loads a YAML preset and applies it on top of default params.
func LoadYAML(path string) (*pluck.Params, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	var f File
	dec := yaml.NewDecoder(fh)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("preset: decode %q: %w", path, err)
	}
	return fromFile(&f)
}

func fromFile(f *File) (*pluck.Params, error) {
	p := pluck.NewDefaultParams()
	if err := ApplyFile(p, f); err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyFile applies a parsed preset onto dst. Every invalid field is
// reported; dst is left unchanged on error.
func ApplyFile(dst *pluck.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}
	next := dst.Clone()
	var errs []error

	if f.SampleRate != nil {
		if *f.SampleRate < 8000 {
			errs = append(errs, fmt.Errorf("sample_rate must be >= 8000, got %d", *f.SampleRate))
		}
		next.SampleRate = *f.SampleRate
	}
	if f.MinStrumForce != nil {
		if *f.MinStrumForce < 0 {
			errs = append(errs, fmt.Errorf("min_strum_force must be >= 0"))
		}
		next.MinStrumForce = *f.MinStrumForce
	}
	if f.DurationS != nil {
		if *f.DurationS <= 0 {
			errs = append(errs, fmt.Errorf("duration_s must be > 0"))
		}
		next.Duration = *f.DurationS
	}
	if f.Decay != nil {
		if !validDecay(*f.Decay) {
			errs = append(errs, fmt.Errorf("decay must be in (0,1)"))
		}
		next.Decay = *f.Decay
	}
	if f.MaxVoices != nil {
		if *f.MaxVoices < 1 {
			errs = append(errs, fmt.Errorf("max_voices must be >= 1"))
		}
		next.MaxVoices = *f.MaxVoices
	}

	if len(f.Strings) > 0 {
		next.Strings = make([]pluck.StringParams, 0, len(f.Strings))
		labels := make(map[string]bool, len(f.Strings))
		for i, e := range f.Strings {
			sp := pluck.StringParams{Threshold: e.Threshold, Label: strings.TrimSpace(e.Label)}
			if sp.Label == "" {
				errs = append(errs, fmt.Errorf("strings[%d].label is required", i))
			} else if labels[sp.Label] {
				errs = append(errs, fmt.Errorf("strings[%d].label %q is duplicated", i, sp.Label))
			}
			labels[sp.Label] = true
			if e.Frequency != nil {
				if *e.Frequency <= 0 {
					errs = append(errs, fmt.Errorf("strings[%d].frequency must be > 0", i))
				}
				sp.Frequency = *e.Frequency
			}
			if e.Note != nil {
				if *e.Note < 0 || *e.Note > 127 {
					errs = append(errs, fmt.Errorf("strings[%d].note must be in 0..127", i))
				}
				sp.Note = *e.Note
			}
			if e.Frequency == nil && e.Note == nil {
				errs = append(errs, fmt.Errorf("strings[%d] needs a frequency or a note", i))
			}
			if e.Decay != nil {
				if !validDecay(*e.Decay) {
					errs = append(errs, fmt.Errorf("strings[%d].decay must be in (0,1)", i))
				}
				sp.Decay = *e.Decay
			}
			if e.DurationS != nil {
				if *e.DurationS <= 0 {
					errs = append(errs, fmt.Errorf("strings[%d].duration_s must be > 0", i))
				}
				sp.Duration = *e.DurationS
			}
			next.Strings = append(next.Strings, sp)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("preset: %w", err)
	}
	*dst = *next
	return nil
}

// ToFile converts params back into the preset schema.
func ToFile(p *pluck.Params) *File {
	f := &File{
		SampleRate:    ptr(p.SampleRate),
		MinStrumForce: ptr(p.MinStrumForce),
		DurationS:     ptr(p.Duration),
		Decay:         ptr(p.Decay),
		MaxVoices:     ptr(p.MaxVoices),
	}
	for _, s := range p.Strings {
		e := StringEntry{Threshold: s.Threshold, Label: s.Label}
		if s.Frequency > 0 {
			e.Frequency = ptr(s.Frequency)
		}
		if s.Note > 0 {
			e.Note = ptr(s.Note)
		}
		if s.Decay > 0 {
			e.Decay = ptr(s.Decay)
		}
		if s.Duration > 0 {
			e.DurationS = ptr(s.Duration)
		}
		f.Strings = append(f.Strings, e)
	}
	return f
}

// SaveJSON writes params as an indented JSON preset.
func SaveJSON(path string, p *pluck.Params) error {
	b, err := json.MarshalIndent(ToFile(p), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func validDecay(d float64) bool { return d > 0 && d < 1 }

func ptr[T any](v T) *T { return &v }
