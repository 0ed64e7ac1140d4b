//go:build js && wasm

package main

import (
	"syscall/js"
	"unsafe"

	"github.com/cwbudde/algo-strum/pluck"
)

const maxBlock = 128

var (
	bank         *pluck.StringBank
	detector     *pluck.Detector
	mixer        *pluck.Mixer
	calibrator   pluck.Calibrator
	offset       float64
	outputBuffer []float32
)

func main() {
	// Keep program running
	c := make(chan struct{})

	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmCalibrateAdd", js.FuncOf(wasmCalibrateAdd))
	js.Global().Set("wasmCalibrateFinish", js.FuncOf(wasmCalibrateFinish))
	js.Global().Set("wasmFeed", js.FuncOf(wasmFeed))
	js.Global().Set("wasmPluck", js.FuncOf(wasmPluck))
	js.Global().Set("wasmProcessBlock", js.FuncOf(wasmProcessBlock))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM strum module loaded")
	<-c
}

func wasmInit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	params := pluck.NewDefaultParams()
	params.SampleRate = args[0].Int()

	b, err := pluck.NewStringBank(params)
	if err != nil {
		println("Strum init failed:", err.Error())
		return nil
	}
	bank = b
	detector = pluck.NewDetector(bank, params.MinStrumForce)
	mixer = pluck.NewMixer(params.MaxVoices)
	calibrator = pluck.Calibrator{}
	offset = 0
	outputBuffer = make([]float32, maxBlock)

	println("Strum initialized at", params.SampleRate, "Hz with", bank.Len(), "strings")
	return nil
}

func wasmCalibrateAdd(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	calibrator.Add(args[0].Float())
	return nil
}

func wasmCalibrateFinish(this js.Value, args []js.Value) interface{} {
	offset = calibrator.Offset()
	calibrator = pluck.Calibrator{}
	if detector != nil {
		detector.Reset()
	}
	return js.ValueOf(offset)
}

// wasmFeed(angle, force) returns the labels of the plucked strings.
func wasmFeed(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || detector == nil {
		return js.ValueOf([]interface{}{})
	}
	hits := detector.Process(args[0].Float(), args[1].Int(), offset)
	labels := make([]interface{}, 0, len(hits))
	for _, s := range hits {
		mixer.Append(s.Waveform)
		labels = append(labels, s.Label)
	}
	return js.ValueOf(labels)
}

func wasmPluck(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || bank == nil {
		return nil
	}
	if s, ok := bank.Lookup(args[0].String()); ok {
		mixer.Append(s.Waveform)
	}
	return nil
}

func wasmProcessBlock(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || mixer == nil {
		return 0
	}
	numFrames := args[0].Int()
	if numFrames > maxBlock {
		numFrames = maxBlock
	}
	if numFrames < 1 {
		return 0
	}
	mixer.RenderInto(outputBuffer[:numFrames])

	// Return pointer to buffer in WASM linear memory
	ptr := &outputBuffer[0]
	return js.ValueOf(uintptr(unsafe.Pointer(ptr)))
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) interface{} {
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}
