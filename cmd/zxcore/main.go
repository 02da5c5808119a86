// zxcore is a headless command-line front end for the core: it loads a ROM
// and an optional snapshot or tape image, runs a fixed number of frames,
// and reports frame/audio statistics. It stands in for the GUI shell the
// spec names as out of scope, exercising the Machine end-to-end without
// any windowing, GPU, or audio-output dependency.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zxcore/zxcore/internal/audio"
	"github.com/zxcore/zxcore/internal/machine"
	"github.com/zxcore/zxcore/internal/tape"
	"github.com/zxcore/zxcore/internal/zxlog"
)

func main() {
	model := flag.String("model", "48k", "machine model: 48k, 128k, +2 or +3")
	romPath := flag.String("rom", "", "path to a 16 KiB ROM image (required)")
	rom1Path := flag.String("rom1", "", "path to the second 16 KiB ROM bank (128K/+2/+3)")
	snapshotPath := flag.String("snapshot", "", "path to a .sna or .z80 snapshot to load")
	tapePath := flag.String("tape", "", "path to a .tap or .tzx tape image to insert")
	frames := flag.Int("frames", 50, "number of frames to run")
	savePath := flag.String("save", "", "path to write a .sna snapshot after running")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: zxcore -rom <path> [options]\n\nRuns the ZX Spectrum core headlessly and reports frame/audio statistics.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  zxcore -rom 48k.rom -snapshot game.sna -frames 300\n")
		fmt.Fprintf(os.Stderr, "  zxcore -rom 128k-0.rom -rom1 128k-1.rom -model 128k -tape game.tap\n")
	}
	flag.Parse()

	if *romPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	m, err := makeMachine(*model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := loadROM(m, 0, *romPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *rom1Path != "" {
		if err := loadROM(m, 1, *rom1Path); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
	m.Reset()

	if *snapshotPath != "" {
		data, err := os.ReadFile(*snapshotPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		if err := m.Load(*snapshotPath, data); err != nil {
			fmt.Fprintf(os.Stderr, "error loading snapshot: %v\n", err)
			os.Exit(1)
		}
	}

	if *tapePath != "" {
		t, err := loadTape(*tapePath)
		if err != nil {
			zxlog.Warnf("tape: %v", err)
		} else {
			m.InsertTape(t)
		}
	}

	audioBuf := audio.NewRingBuffer(4096)
	var sampleCount int
	for i := 0; i < *frames; i++ {
		m.Frame()
		left, _ := m.GenerateAudioSample()
		audioBuf.Write([]float32{left})
		sampleCount++
	}

	info := m.Info()
	fmt.Printf("%s: ran %d frames (%d master ticks), %d audio samples buffered (%d available)\n",
		info.Name, *frames, info.FrameClocks**frames, sampleCount, audioBuf.Available())

	if *savePath != "" {
		data, err := m.Save(*savePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error saving snapshot: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*savePath, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "error writing %s: %v\n", *savePath, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s (%d bytes)\n", *savePath, len(data))
	}
}

func makeMachine(model string) (*machine.Machine, error) {
	switch strings.ToLower(model) {
	case "48k":
		return machine.New(machine.Model48K), nil
	case "128k":
		return machine.New(machine.Model128K), nil
	case "+2":
		return machine.New(machine.ModelPlus2), nil
	case "+3":
		return machine.New(machine.ModelPlus3), nil
	default:
		return nil, fmt.Errorf("unknown model %q (want 48k, 128k, +2 or +3)", model)
	}
}

func loadROM(m *machine.Machine, bank int, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading ROM %s: %w", path, err)
	}
	m.LoadROM(bank, data)
	return nil
}

func loadTape(path string) (*tape.Tape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tape %s: %w", path, err)
	}

	var pulses []int
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tap":
		pulses, err = tape.LoadTAP(data)
	case ".tzx":
		pulses, err = tape.LoadTZX(data)
	default:
		return nil, fmt.Errorf("unrecognized tape extension %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	return tape.New(pulses), nil
}
