// Package ula implements the ZX Spectrum ULA: the memory/paging map, the
// video scan that produces a border+display pixel buffer, keyboard and
// Kempston sampling, border/EAR/MIC I/O, and the interrupt line the CPU
// samples at instruction boundaries. The ULA is the Z80's memory bus; it
// owns RAM and ROM, the CPU does not.
package ula

import (
	"errors"

	"github.com/zxcore/zxcore/internal/z80"
)

// compile-time check that ULA satisfies the CPU's memory/IO bus capability.
var _ z80.Bus = (*ULA)(nil)

// ErrPagingNotImplemented is returned when a +3 extended paging write
// selects the special all-RAM mapping mode, which this core does not
// implement.
var ErrPagingNotImplemented = errors.New("ula: +3 special paging mode not implemented")

// Model selects which Spectrum variant's memory/paging rules apply.
type Model int

const (
	Model48K Model = iota
	Model128K
	ModelPlus2
	ModelPlus3
)

const (
	romBankSize = 0x4000
	ramBankSize = 0x4000
	numRAMBanks = 8
	numROMBanks = 2
)

// Timing constants, in T-states and pixel columns, matching real ZX
// Spectrum CRT raster geometry: a 224 T-state, 312-line 50Hz frame with a
// 256x192 display area inside a visible 352x296 border+display rectangle.
const (
	TStatesPerFrame = 69888
	tStatesPerLine  = 224

	displayWidth  = 256
	displayHeight = 192

	borderLeft   = 48
	borderRight  = 48
	borderTop    = 48
	borderBottom = 56

	FrameWidth  = borderLeft + displayWidth + borderRight   // 352
	FrameHeight = borderTop + displayHeight + borderBottom  // 296

	horizontalRetrace = tStatesPerLine*2 - FrameWidth // 96 master ticks
	verticalRetrace   = 16

	interruptActiveTStates = 32
	interruptActiveTicks   = interruptActiveTStates * 2
)

// ULA holds all banked memory, paging state, raster position and the
// peripheral latches (border, EAR/MIC, keyboard, Kempston, floating bus).
type ULA struct {
	model Model

	rom [numROMBanks][romBankSize]byte
	ram [numRAMBanks][ramBankSize]byte

	romSelect   int
	ramSelect   int
	vramSelect  int
	pagingLocked bool
	plus3Nibble  byte

	border  byte
	mic     bool
	ear     bool
	tapeIn  bool
	kempston byte

	keyboard [8]byte // 1 = released, per row

	floatingBus     byte
	stallCycles     int
	plus3PagingErr  error

	x, y          int
	frameCounter  uint64
	interruptLine bool

	frame [FrameWidth * FrameHeight]byte // palette index per pixel

	ay AYPorts
}

// AYPorts is the capability the ULA needs from the AY-3-8910 to route the
// 128K address-latch/data ports; nil on a 48K machine.
type AYPorts interface {
	SelectRegister(n byte)
	ReadSelected() byte
	WriteSelected(v byte)
}

// New constructs a ULA for the given model with zeroed RAM and ROM; the
// caller loads ROM images separately via LoadROM.
func New(model Model) *ULA {
	u := &ULA{model: model}
	u.Reset()
	return u
}

// SetAY wires the AY-3-8910 ports used on 128K/+2/+3 machines.
func (u *ULA) SetAY(ay AYPorts) { u.ay = ay }

// LoadROM installs a 16 KiB ROM image into bank slot n (0 or 1).
func (u *ULA) LoadROM(n int, data []byte) {
	copy(u.rom[n][:], data)
}

// Reset clears paging and raster position. Memory banks are left untouched,
// matching real hardware: RAM contents survive a reset.
func (u *ULA) Reset() {
	u.romSelect = 0
	u.ramSelect = 0
	u.vramSelect = 5
	u.pagingLocked = u.model == Model48K
	u.plus3Nibble = 0
	u.border = 0
	u.mic = false
	u.ear = false
	u.x = -horizontalRetrace
	u.y = -verticalRetrace
	u.frameCounter = 0
	u.interruptLine = false
	for i := range u.keyboard {
		u.keyboard[i] = 0x1F
	}
}

// InterruptLine reports whether the ULA's interrupt-request line is
// currently asserted; the CPU samples this at instruction boundaries.
func (u *ULA) InterruptLine() bool { return u.interruptLine }

// IsCPUStalled reports whether contention is currently holding the CPU.
func (u *ULA) IsCPUStalled() bool { return u.stallCycles > 0 }

// FrameCounter returns the number of completed frames since construction
// or the last Reset.
func (u *ULA) FrameCounter() uint64 { return u.frameCounter }

// Screen returns the current frame buffer as palette indices, row-major,
// FrameWidth x FrameHeight.
func (u *ULA) Screen() []byte { return u.frame[:] }

// Tick advances the ULA by one master tick: it decrements any pending CPU
// stall, paints one pixel of the raster, and recomputes the interrupt
// line. The caller feeds the tape-in bit via SetTapeIn before ticking.
func (u *ULA) Tick() {
	if u.stallCycles > 0 {
		u.stallCycles--
	}
	u.stepRaster()
}
