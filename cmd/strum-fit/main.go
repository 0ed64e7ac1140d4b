package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/hako/durafmt"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-strum/analysis"
	"github.com/cwbudde/algo-strum/fit"
	"github.com/cwbudde/algo-strum/internal/wavio"
	"github.com/cwbudde/algo-strum/pluck"
	"github.com/cwbudde/algo-strum/preset"
)

func main() {
	presetPath := flag.String("preset", "", "Base preset JSON/YAML path (defaults to open E)")
	outputPreset := flag.String("output-preset", "assets/presets/fitted.json", "Path to write the fitted preset JSON")
	t60 := flag.Float64("t60", 2.5, "Target T60 in seconds for the lowest string")
	slope := flag.Float64("t60-slope", 0.5, "Higher strings ring shorter: target = t60 * (f_low/f)^slope")
	referencePath := flag.String("reference", "", "Optional reference WAV; its measured T60 is the target for -string")
	only := flag.String("string", "", "Fit only the string with this label")
	seed := flag.Int64("seed", 1, "Random seed")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size")
	iterations := flag.Int("iterations", 20, "Mayfly iterations per string")
	maxEvals := flag.Int("max-evals", 400, "Maximum objective evaluations per string")
	workers := flag.Int("workers", runtime.NumCPU(), "Strings fitted in parallel")
	flag.Parse()

	if *outputPreset == "" {
		die("output-preset must not be empty")
	}
	if *t60 <= 0 {
		die("t60 must be > 0")
	}
	if *referencePath != "" && *only == "" {
		die("-reference requires -string")
	}
	if *workers < 1 {
		*workers = 1
	}
	if *mayflyPop < 2 {
		*mayflyPop = 2
	}

	params := pluck.NewDefaultParams()
	if *presetPath != "" {
		p, err := preset.Load(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
		params = p
	}

	targets, err := targetT60s(params.Strings, *t60, *slope)
	if err != nil {
		die("%v", err)
	}
	if *referencePath != "" {
		ref, sr, err := wavio.ReadWAVMono(*referencePath)
		if err != nil {
			die("failed to read reference: %v", err)
		}
		rep := analysis.Analyze(wavio.ToFloat32(ref), sr, 0)
		if !(rep.T60S > 0 && rep.T60S <= 60) {
			die("reference %s has no usable decay (T60 %.3fs)", *referencePath, rep.T60S)
		}
		fmt.Printf("Reference %s: %.3fs, T60 %.3fs\n", *referencePath, rep.DurationS, rep.T60S)
		for i := range targets {
			targets[i] = rep.T60S
		}
	}

	var idx []int
	for i, sp := range params.Strings {
		if *only == "" || sp.Label == *only {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		die("no string labelled %q", *only)
	}

	start := time.Now()
	results := make([]fit.DecayResult, len(params.Strings))
	var g errgroup.Group
	g.SetLimit(*workers)
	for _, i := range idx {
		sp := params.Strings[i]
		initial := sp.Decay
		if initial == 0 {
			initial = params.Decay
		}
		cfg := fit.DecayConfig{
			SampleRate: params.SampleRate,
			Frequency:  sp.ResolvedFrequency(),
			TargetT60:  targets[i],
			Initial:    initial,
			Population: *mayflyPop,
			Iterations: *iterations,
			MaxEvals:   *maxEvals,
			Seed:       *seed + int64(i),
		}
		g.Go(func() error {
			res, err := fit.FitDecay(cfg)
			if err != nil {
				return fmt.Errorf("fit %s: %w", sp.Label, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		die("%v", err)
	}
	for _, i := range idx {
		sp := &params.Strings[i]
		res := results[i]
		sp.Decay = res.Decay
		fmt.Printf("%-7s %7.2f Hz  target T60 %.3fs  got %.3fs  decay %.6f  (%d evals)\n",
			sp.Label, sp.ResolvedFrequency(), targets[i], res.T60, res.Decay, res.Evaluations)
	}
	fitted := len(idx)

	if err := preset.SaveJSON(*outputPreset, params); err != nil {
		die("failed to write preset: %v", err)
	}
	fmt.Printf("Wrote %s (%d strings fitted in %s)\n", *outputPreset, fitted, durafmt.Parse(time.Since(start)).LimitFirstN(2))
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
