// Package machine wires the Z80 CPU, the ULA and the AY-3-8910 together and
// drives them from a single master clock, composing the per-frame RGBA
// screen buffer and producing stereo audio samples on demand
// (GenerateAudioSample); writing them to a ring buffer is left to the
// caller. It owns no
// rendering, audio-output, or windowing code: those are named-only
// collaborators reached through VideoSink and AudioSink.
package machine

import (
	"fmt"

	"github.com/zxcore/zxcore/internal/ay"
	"github.com/zxcore/zxcore/internal/keymap"
	"github.com/zxcore/zxcore/internal/snapshot"
	"github.com/zxcore/zxcore/internal/tape"
	"github.com/zxcore/zxcore/internal/ula"
	"github.com/zxcore/zxcore/internal/z80"
)

// framesPerSecond is the ZX Spectrum's nominal PAL refresh rate.
const framesPerSecond = 50

// sampleRate is the fixed output audio rate generate_audio_sample() paces
// itself against.
const sampleRate = 48000

// VideoSink accepts a completed RGBA frame. The core never imports a
// rendering package; a frontend implements this to present pixels.
type VideoSink interface {
	Present(frame []byte)
}

// AudioSink is anything that can drain the lock-free ring buffer the
// frontend fills with GenerateAudioSample's output — ordinarily
// *audio.RingBuffer itself. The Machine holds no ring buffer of its own.
type AudioSink interface {
	Read(into []float32) int
}

// KeyAction is whether a key_event call is a press or a release, mirrored
// from keymap.Action so frontends never need to import that package
// directly just to drive KeyEvent.
type KeyAction int

const (
	KeyPress KeyAction = iota
	KeyRelease
)

// Info describes the machine's fixed identity and capabilities, per the
// Emulator trait's info() call.
type Info struct {
	Name              string
	Width             int
	Height            int
	FrameClocks       int
	FramesPerSecond   int
	SupportedFormats  []string
}

// Emulator is the frontend-facing capability set; Machine is its only
// implementation.
type Emulator interface {
	Reset()
	Clock()
	Frame()
	GenerateAudioSample() (left, right float32)
	ScreenBuffer() []byte
	Info() Info
	KeyEvent(key keymap.Key, action KeyAction)
	AudioIn(bit bool)
	Load(name string, data []byte) error
	Save(name string) ([]byte, error)
}

var _ Emulator = (*Machine)(nil)

// Machine implements the Emulator trait: it owns the CPU, the ULA (which
// is the CPU's memory/IO bus) and, on 128K-class models, the AY-3-8910. No
// abstract base class or virtual dispatch is involved — Machine is the
// single concrete implementation of this capability set.
type Machine struct {
	model Model
	cpu   *z80.CPU
	ula   *ula.ULA
	ay    *ay.AY
	keys  *keymap.Mapper
	tape  *tape.Tape

	videoSink VideoSink
	rgba      []byte

	sampleAccum       float64
	samplePeriodTicks float64
	lastLeft          float32
	lastRight         float32

	ayParity bool
}

// Model selects which Spectrum variant a Machine emulates; it mirrors
// ula.Model but is the name frontends construct against.
type Model = ula.Model

const (
	Model48K    = ula.Model48K
	Model128K   = ula.Model128K
	ModelPlus2  = ula.ModelPlus2
	ModelPlus3  = ula.ModelPlus3
)

// hasAY reports whether this model's AY chip is clocked into the mixed
// audio output. The AY is wired into every Machine unconditionally; only
// the 48K profile never sums it into the mix, per the component table
// ("AY ... used on the 128K model").
func (m *Machine) hasAY() bool { return m.model != Model48K }

// New constructs a Machine for the given model. ROM images must be loaded
// via LoadROM before Reset is meaningful.
func New(model Model) *Machine {
	u := ula.New(model)
	cpu := z80.New(u)
	a := ay.New()
	if model != Model48K {
		u.SetAY(a)
	}

	ticksPerSecond := float64(ula.TStatesPerFrame) * 2 * framesPerSecond
	m := &Machine{
		model:             model,
		cpu:               cpu,
		ula:               u,
		ay:                a,
		keys:              keymap.NewMapper(),
		rgba:              make([]byte, ula.FrameWidth*ula.FrameHeight*4),
		samplePeriodTicks: ticksPerSecond / sampleRate,
	}
	return m
}

// LoadROM installs a 16 KiB ROM image into bank slot n (0 or 1).
func (m *Machine) LoadROM(n int, data []byte) { m.ula.LoadROM(n, data) }

// SetVideoSink installs the frame presenter invoked at the end of every
// frame composed by Clock.
func (m *Machine) SetVideoSink(sink VideoSink) { m.videoSink = sink }

// CPU, ULA and AY expose the Machine's owned components for advanced
// callers (tests, snapshot tooling); not part of the Emulator trait.
func (m *Machine) CPU() *z80.CPU { return m.cpu }
func (m *Machine) ULA() *ula.ULA { return m.ula }
func (m *Machine) AY() *ay.AY    { return m.ay }

// Reset restores the CPU to documented power-on values and clears ULA
// paging and raster position. Memory banks are left untouched, matching
// hardware: a reset never zeroes RAM.
func (m *Machine) Reset() {
	m.cpu.Reset()
	m.ula.Reset()
	m.ay.Reset()
	m.sampleAccum = 0
}

// Clock advances exactly one master tick: the ULA always ticks; the CPU
// ticks only when the ULA is not holding it in contention; the AY ticks
// every second master tick on models that clock it into the mix. If this
// tick completes a frame, the composed RGBA buffer is handed to the video
// sink.
func (m *Machine) Clock() {
	m.cpu.SetInterruptLine(m.ula.InterruptLine())

	if m.tape != nil {
		m.ula.SetTapeIn(m.tape.Clock())
	}

	if !m.ula.IsCPUStalled() {
		m.cpu.Clock()
	}

	before := m.ula.FrameCounter()
	m.ula.Tick()

	if m.hasAY() {
		m.tickAY()
	}

	m.lastLeft, m.lastRight = m.mixAudio()

	if m.ula.FrameCounter() != before {
		m.composeFrame()
		if m.videoSink != nil {
			m.videoSink.Present(m.rgba)
		}
	}
}

// tickAY clocks the AY every second master tick, toggling ayParity to
// track which half of the pair the current call lands on.
func (m *Machine) tickAY() {
	m.ayParity = !m.ayParity
	if m.ayParity {
		m.ay.Tick()
	}
}

func (m *Machine) mixAudio() (left, right float32) {
	out := m.ula.AudioOut()
	left, right = out, out
	if m.hasAY() {
		al, ar := m.ay.Sample()
		left += al
		right += ar
	}
	return left, right
}

// Frame runs exactly frame_clocks master ticks, the frame-clock invariant
// from the spec's testable properties.
func (m *Machine) Frame() {
	for i := 0; i < ula.TStatesPerFrame*2; i++ {
		m.Clock()
	}
}

// GenerateAudioSample advances the machine until the cumulative simulated
// time exceeds one sample period (1/48000s) and returns the audio_out in
// effect at that instant, carrying the excess into the next call.
func (m *Machine) GenerateAudioSample() (left, right float32) {
	for {
		m.Clock()
		m.sampleAccum++
		if m.sampleAccum >= m.samplePeriodTicks {
			m.sampleAccum -= m.samplePeriodTicks
			break
		}
	}
	return m.lastLeft, m.lastRight
}

// ScreenBuffer returns the most recently composed 32-bpp RGBA frame.
func (m *Machine) ScreenBuffer() []byte { return m.rgba }

// composeFrame maps the ULA's per-pixel palette indices through the
// default 16-entry palette into the RGBA buffer.
func (m *Machine) composeFrame() {
	src := m.ula.Screen()
	for i, idx := range src {
		c := ula.Palette[idx]
		o := i * 4
		m.rgba[o], m.rgba[o+1], m.rgba[o+2], m.rgba[o+3] = c[0], c[1], c[2], c[3]
	}
}

// Info reports the machine's fixed identity, per the Emulator trait.
func (m *Machine) Info() Info {
	name := "ZX Spectrum 48K"
	switch m.model {
	case Model128K:
		name = "ZX Spectrum 128K"
	case ModelPlus2:
		name = "ZX Spectrum +2"
	case ModelPlus3:
		name = "ZX Spectrum +3"
	}
	return Info{
		Name:             name,
		Width:            ula.FrameWidth,
		Height:           ula.FrameHeight,
		FrameClocks:      ula.TStatesPerFrame * 2,
		FramesPerSecond:  framesPerSecond,
		SupportedFormats: []string{".sna", ".z80", ".tap", ".tzx"},
	}
}

// KeyEvent maps a host-independent key press/release onto the keyboard
// matrix and Kempston register.
func (m *Machine) KeyEvent(key keymap.Key, action KeyAction) {
	a := keymap.ActionPress
	if action == KeyRelease {
		a = keymap.ActionRelease
	}
	m.keys.KeyEvent(m.ula, key, a)
}

// AudioIn injects the EAR input bit directly (used by hosts that sample
// microphone/cassette input outside of the tape player).
func (m *Machine) AudioIn(bit bool) { m.ula.SetTapeIn(bit) }

// InsertTape attaches a tape player whose pulses feed the ULA's tape-in
// latch on every Clock.
func (m *Machine) InsertTape(t *tape.Tape) { m.tape = t }

// Load decodes a snapshot file by extension (.sna or .z80) into the
// Machine's CPU and RAM state.
func (m *Machine) Load(name string, data []byte) error {
	switch ext(name) {
	case ".sna":
		return snapshot.LoadSNA(data, m.cpu, m.ula)
	case ".z80":
		return snapshot.LoadZ80(data, m.cpu, m.ula)
	default:
		return fmt.Errorf("machine: unrecognized snapshot extension %q", ext(name))
	}
}

// Save encodes the Machine's current state as a .sna image; only .sna
// round trips both ways (the spec names .z80 for loading only).
func (m *Machine) Save(name string) ([]byte, error) {
	switch ext(name) {
	case ".sna":
		return snapshot.SaveSNA(m.cpu, m.ula), nil
	default:
		return nil, fmt.Errorf("machine: saving %q is not supported", ext(name))
	}
}

func ext(name string) string {
	for i := len(name) - 1; i >= 0 && name[i] != '/'; i-- {
		if name[i] == '.' {
			return name[i:]
		}
	}
	return ""
}
