package wavio

import (
	"math"
	"path/filepath"
	"testing"
)

func TestWriteReadMonoWAV(t *testing.T) {
	const sr = 22050
	data := make([]float32, 2048)
	for i := range data {
		data[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/sr))
	}
	path := filepath.Join(t.TempDir(), "nested", "tone.wav")
	if err := WriteMonoWAV(path, data, sr); err != nil {
		t.Fatalf("WriteMonoWAV: %v", err)
	}
	got, rate, err := ReadWAVMono(path)
	if err != nil {
		t.Fatalf("ReadWAVMono: %v", err)
	}
	if rate != sr {
		t.Fatalf("sample rate mismatch: got=%d want=%d", rate, sr)
	}
	if len(got) != len(data) {
		t.Fatalf("frame count mismatch: got=%d want=%d", len(got), len(data))
	}
	var peak float64
	for _, v := range got {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak < 0.45 || peak > 0.55 {
		t.Fatalf("decoded level mismatch: peak=%f want≈0.5", peak)
	}
}

func TestResampleSameRateIsIdentity(t *testing.T) {
	in := []float64{1, 2, 3}
	out, err := Resample(in, 44100, 44100)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if &out[0] != &in[0] {
		t.Fatalf("expected the input slice back")
	}
}

func TestResampleChangesLength(t *testing.T) {
	in := make([]float64, 44100)
	out, err := Resample(in, 44100, 22050)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if math.Abs(float64(len(out))-22050) > 512 {
		t.Fatalf("unexpected resampled length %d", len(out))
	}
}
