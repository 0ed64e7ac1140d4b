package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/cwbudde/algo-strum/analysis"
	"github.com/cwbudde/algo-strum/internal/wavio"
	"github.com/cwbudde/algo-strum/pluck"
	"github.com/cwbudde/algo-strum/preset"
)

func main() {
	presetPath := flag.String("preset", "", "Preset JSON/YAML file (defaults to open E)")
	logPath := flag.String("log", "", "Sensor log to replay, one angle:force line per sample (\"-\" for stdin). Empty renders each string")
	sensorRate := flag.Float64("sensor-rate", 100, "Sensor log line rate in lines per second")
	calibSamples := flag.Int("calib-samples", 0, "Leading log lines averaged into the zero offset")
	maxTail := flag.Float64("max-tail", 10, "Maximum seconds rendered after the last log line")
	output := flag.String("output", "output.wav", "Output WAV path (per-string mode writes <name>-<label>.wav)")
	outRate := flag.Int("out-rate", 0, "Resample the output to this rate (0 keeps the synthesis rate)")
	seed := flag.Int64("seed", 0, "Excitation noise seed (0 = random)")
	showReport := flag.Bool("report", true, "Print an analysis report")
	flag.Parse()

	params := pluck.NewDefaultParams()
	if *presetPath != "" {
		p, err := preset.Load(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		params = p
	}

	var (
		bank *pluck.StringBank
		err  error
	)
	if *seed != 0 {
		bank, err = pluck.NewSeededStringBank(params, *seed)
	} else {
		bank, err = pluck.NewStringBank(params)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building strings: %v\n", err)
		os.Exit(1)
	}

	if *logPath == "" {
		renderStrings(bank, *output, *outRate, *showReport)
		return
	}

	in := os.Stdin
	if *logPath != "-" {
		f, err := os.Open(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	fmt.Printf("Replaying %s at %.1f lines/s into %d strings at %d Hz...\n", *logPath, *sensorRate, bank.Len(), bank.SampleRate())
	res, err := replay(in, bank, params, replayConfig{
		SensorRate:   *sensorRate,
		CalibSamples: *calibSamples,
		MaxTailS:     *maxTail,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error replaying log: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Offset %.2f deg, %d plucks, %d malformed lines, %d evicted voices\n", res.Offset, res.Plucks, res.Dropped, res.Stats.Evicted)
	writeOutput(*output, res.Samples, bank.SampleRate(), *outRate, 0, *showReport)
}

func renderStrings(bank *pluck.StringBank, output string, outRate int, showReport bool) {
	ext := filepath.Ext(output)
	base := strings.TrimSuffix(output, ext)
	if ext == "" {
		ext = ".wav"
	}
	for _, s := range bank.Strings() {
		path := fmt.Sprintf("%s-%s%s", base, slug(s.Label), ext)
		fmt.Printf("Rendering %s (%.2f Hz, threshold %.0f deg)...\n", s.Label, s.Frequency, s.Threshold)
		writeOutput(path, s.Waveform.Samples(), bank.SampleRate(), outRate, s.Frequency, showReport)
	}
}

func writeOutput(path string, samples []float32, sampleRate, outRate int, nominalHz float64, showReport bool) {
	if showReport {
		printReport(analysis.Analyze(samples, sampleRate, nominalHz))
	}
	rate := sampleRate
	if outRate > 0 && outRate != sampleRate {
		res, err := wavio.Resample(wavio.ToFloat64(samples), sampleRate, outRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resampling: %v\n", err)
			os.Exit(1)
		}
		samples = wavio.ToFloat32(res)
		rate = outRate
	}
	if err := wavio.WriteMonoWAV(path, samples, rate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}
	size := "?"
	if fi, err := os.Stat(path); err == nil {
		size = humanize.Bytes(uint64(fi.Size()))
	}
	fmt.Printf("Successfully wrote %s (%d frames at %d Hz, %s)\n", path, len(samples), rate, size)
}

func slug(label string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "-")
}

func printReport(r analysis.Report) {
	fmt.Printf("  duration %.3fs  peak %.4f  rms %.4f\n", r.DurationS, r.Peak, r.RMS)
	if r.FundamentalHz > 0 {
		fmt.Printf("  fundamental %.2f Hz (nominal %.2f Hz, %+.1f cents)\n", r.FundamentalHz, r.NominalHz, r.CentsOff)
	}
	if math.IsInf(r.T60S, 1) {
		fmt.Printf("  decay %.2f dB/s  T60 n/a\n", r.DecayDBPerS)
		return
	}
	fmt.Printf("  decay %.2f dB/s  T60 %.3fs\n", r.DecayDBPerS, r.T60S)
}
