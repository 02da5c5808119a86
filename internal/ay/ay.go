// Package ay implements the AY-3-8910 programmable sound generator used by
// the 128K/+2/+3 Spectrum models: three tone channels, one noise channel
// sharing a 17-bit LFSR, and an envelope generator, all driven from the
// Machine's master clock at half rate.
package ay

// StereoMode selects how the three tone/noise channels are panned into a
// stereo pair. Not part of the silicon itself — a convention the 128K ROM
// and most players assume — so it defaults to ABC, the common standard.
type StereoMode int

const (
	StereoABC StereoMode = iota
	StereoACB
	StereoMono
)

// panTables holds the (left, right) mix weight for a channel under a StereoMode.
var panTables = map[StereoMode][3][2]float32{
	StereoABC: {{1, 0}, {0.5, 0.5}, {0, 1}},
	StereoACB: {{1, 0}, {0, 1}, {0.5, 0.5}},
	StereoMono: {{0.5, 0.5}, {0.5, 0.5}, {0.5, 0.5}},
}

// volumeTable is the AY's non-linear 16-level fixed-volume DAC curve,
// measured in 16-bit units and normalized here to [0,1].
var volumeTable = [16]float32{
	0 / 65535.0, 513 / 65535.0, 828 / 65535.0, 1239 / 65535.0,
	1923 / 65535.0, 3238 / 65535.0, 4926 / 65535.0, 9110 / 65535.0,
	10344 / 65535.0, 17876 / 65535.0, 24682 / 65535.0, 30442 / 65535.0,
	38844 / 65535.0, 47270 / 65535.0, 56402 / 65535.0, 65535 / 65535.0,
}

type toneChannel struct {
	period  uint16
	counter uint16
	output  bool

	envelopeEnable bool
	volume         float32
}

type noiseChannel struct {
	period  byte
	counter byte
	lfsr    uint32
	output  bool
}

type envelopeGen struct {
	period  uint16
	counter uint16
	shape   byte
	step    int
	volume  float32
}

// AY holds the sixteen register latches and the per-channel generator
// state. Advance it with Tick once per AY cycle (every second master tick,
// per the machine's clocking contract); internally every 16 calls update
// the tone/noise/envelope counters, matching the real chip's divide-by-16
// sample rate off its own 1/8 MHz-ish input clock.
type AY struct {
	regs     [16]byte
	selected byte

	tone  [3]toneChannel
	noise noiseChannel
	env   envelopeGen

	mixer byte // R7: bits 0-2 tone disable (active-low), 3-5 noise disable

	cycleCounter int
	stereo       StereoMode
}

// New constructs an AY-3-8910 with all registers zeroed.
func New() *AY {
	a := &AY{noise: noiseChannel{lfsr: 1, period: 1}}
	a.stereo = StereoABC
	for i := range a.tone {
		a.tone[i].period = 1
	}
	a.env.period = 1
	return a
}

// SetStereoMode selects the ABC/ACB/mono pan convention used by Sample.
func (a *AY) SetStereoMode(m StereoMode) { a.stereo = m }

// Reset clears every register and generator to power-on state.
func (a *AY) Reset() { *a = *New() }

// SelectRegister implements the 128K AY address-latch port; values 16 and
// above are ignored (only 16 registers exist).
func (a *AY) SelectRegister(n byte) {
	if n < 16 {
		a.selected = n
	}
}

// ReadSelected returns the currently latched register's value.
func (a *AY) ReadSelected() byte { return a.regs[a.selected] }

// WriteSelected implements the 128K AY data port, updating the currently
// latched register and any derived generator state.
func (a *AY) WriteSelected(v byte) {
	r := a.selected
	a.regs[r] = v
	switch r {
	case 0, 1:
		a.tone[0].period = periodFrom(a.regs[0], a.regs[1])
	case 2, 3:
		a.tone[1].period = periodFrom(a.regs[2], a.regs[3])
	case 4, 5:
		a.tone[2].period = periodFrom(a.regs[4], a.regs[5])
	case 6:
		p := v & 0x1F
		if p == 0 {
			p = 1
		}
		a.noise.period = p
	case 7:
		a.mixer = v
	case 8:
		a.tone[0].envelopeEnable = v&0x10 != 0
		a.tone[0].volume = volumeTable[v&0x0F]
	case 9:
		a.tone[1].envelopeEnable = v&0x10 != 0
		a.tone[1].volume = volumeTable[v&0x0F]
	case 10:
		a.tone[2].envelopeEnable = v&0x10 != 0
		a.tone[2].volume = volumeTable[v&0x0F]
	case 11, 12:
		p := uint16(a.regs[11]) | uint16(a.regs[12])<<8
		if p == 0 {
			p = 1
		}
		a.env.period = p
	case 13:
		a.env.shape = v & 0x0F
		a.env.counter = 0
		a.env.step = 0
		a.env.volume = envelopeTable[a.env.shape][0]
	}
}

func periodFrom(lo, hi byte) uint16 {
	p := uint16(lo) | uint16(hi&0x0F)<<8
	if p == 0 {
		return 1
	}
	return p
}

// Tick advances the AY by one AY cycle (the caller is responsible for
// calling this once every second master tick). Tone/noise/envelope
// counters update once every 16 calls.
func (a *AY) Tick() {
	a.cycleCounter++
	if a.cycleCounter < 16 {
		return
	}
	a.cycleCounter = 0

	for i := range a.tone {
		ch := &a.tone[i]
		ch.counter++
		for ch.counter >= ch.period {
			ch.output = !ch.output
			ch.counter -= ch.period
		}
	}

	a.noise.counter++
	if a.noise.counter >= a.noise.period {
		bit := (a.noise.lfsr & 1) ^ ((a.noise.lfsr >> 3) & 1)
		a.noise.lfsr = (a.noise.lfsr >> 1) | (bit << 16)
		a.noise.output = a.noise.lfsr&1 != 0
		a.noise.counter -= a.noise.period
	}

	a.env.counter++
	if a.env.counter >= a.env.period {
		a.env.counter = 0
		a.env.step++
		if a.env.step >= 128 {
			a.env.step = 64
		}
		a.env.volume = envelopeTable[a.env.shape][a.env.step]
	}
}

// Sample computes the stereo output as the mean of the three channels
// (each gated by its noise/tone mixer bits and scaled by its fixed or
// envelope volume), panned per StereoMode.
func (a *AY) Sample() (left, right float32) {
	pans := panTables[a.stereo]
	toneOutputs := [3]bool{a.tone[0].output, a.tone[1].output, a.tone[2].output}
	for i := 0; i < 3; i++ {
		toneDisabled := a.mixer&(1<<uint(i)) != 0
		noiseDisabled := a.mixer&(1<<uint(i+3)) != 0
		gate := (a.noise.output || noiseDisabled) && (toneOutputs[i] || toneDisabled)
		if !gate {
			continue
		}
		vol := a.tone[i].volume
		if a.tone[i].envelopeEnable {
			vol = a.env.volume
		}
		left += vol * pans[i][0]
		right += vol * pans[i][1]
	}
	return left / 3, right / 3
}
