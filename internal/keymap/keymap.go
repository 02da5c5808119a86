// Package keymap maps a host-independent key identifier set onto the
// Spectrum's 8x5 keyboard matrix and the Kempston joystick's 5-bit
// register, per the ZX Spectrum's standard wiring. The core has no
// knowledge of any particular windowing toolkit's key codes; a frontend
// translates its own key codes into this package's Key enum before calling
// into the machine.
package keymap

import "github.com/zxcore/zxcore/internal/ula"

// Key identifies a physical key a host input layer can report, independent
// of any windowing toolkit's own key codes.
type Key int

const (
	KeyNone Key = iota

	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9

	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ

	KeyCapsShift
	KeySymbolShift
	KeyEnter
	KeySpace

	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	KeyKempstonFire
)

// matrixPos maps a Key onto the 8x5 keyboard matrix, per the standard
// Spectrum layout: CAPS SHIFT -> (0,0), Z -> (0,1), ...
var matrixPos = map[Key]ula.KeyPos{
	KeyCapsShift: {Row: 0, Col: 0},
	KeyZ:         {Row: 0, Col: 1},
	KeyX:         {Row: 0, Col: 2},
	KeyC:         {Row: 0, Col: 3},
	KeyV:         {Row: 0, Col: 4},

	KeyA: {Row: 1, Col: 0},
	KeyS: {Row: 1, Col: 1},
	KeyD: {Row: 1, Col: 2},
	KeyF: {Row: 1, Col: 3},
	KeyG: {Row: 1, Col: 4},

	KeyQ: {Row: 2, Col: 0},
	KeyW: {Row: 2, Col: 1},
	KeyE: {Row: 2, Col: 2},
	KeyR: {Row: 2, Col: 3},
	KeyT: {Row: 2, Col: 4},

	Key1: {Row: 3, Col: 0},
	Key2: {Row: 3, Col: 1},
	Key3: {Row: 3, Col: 2},
	Key4: {Row: 3, Col: 3},
	Key5: {Row: 3, Col: 4},

	Key0: {Row: 4, Col: 0},
	Key9: {Row: 4, Col: 1},
	Key8: {Row: 4, Col: 2},
	Key7: {Row: 4, Col: 3},
	Key6: {Row: 4, Col: 4},

	KeyP: {Row: 5, Col: 0},
	KeyO: {Row: 5, Col: 1},
	KeyI: {Row: 5, Col: 2},
	KeyU: {Row: 5, Col: 3},
	KeyY: {Row: 5, Col: 4},

	KeyEnter: {Row: 6, Col: 0},
	KeyL:     {Row: 6, Col: 1},
	KeyK:     {Row: 6, Col: 2},
	KeyJ:     {Row: 6, Col: 3},
	KeyH:     {Row: 6, Col: 4},

	KeySpace:       {Row: 7, Col: 0},
	KeySymbolShift: {Row: 7, Col: 1},
	KeyM:           {Row: 7, Col: 2},
	KeyN:           {Row: 7, Col: 3},
	KeyB:           {Row: 7, Col: 4},
}

// kempstonBit maps arrow keys and fire onto the Kempston register's five
// bits: right, left, down, up, fire.
var kempstonBit = map[Key]byte{
	KeyRight:        0x01,
	KeyLeft:         0x02,
	KeyDown:         0x04,
	KeyUp:           0x08,
	KeyKempstonFire: 0x10,
}

// Action is whether a key event is a press or a release.
type Action int

const (
	ActionPress Action = iota
	ActionRelease
)

// Target is the capability KeyEvent needs from the host machine: the
// keyboard matrix and the Kempston register.
type Target interface {
	SetKey(pos ula.KeyPos, pressed bool)
	SetKempston(v byte)
}

// state tracks which Kempston bits are currently held, since SetKempston
// replaces the whole register rather than toggling one bit.
type state struct {
	kempston byte
}

// Mapper owns the Kempston accumulator across key events; construct one per
// machine instance.
type Mapper struct {
	state
}

// NewMapper constructs a key-event mapper with no keys held.
func NewMapper() *Mapper { return &Mapper{} }

// KeyEvent applies a press/release to the matrix and/or the Kempston
// register on target, per the standard arrow-keys-and-fire convention.
func (m *Mapper) KeyEvent(target Target, key Key, action Action) {
	pressed := action == ActionPress

	if pos, ok := matrixPos[key]; ok {
		target.SetKey(pos, pressed)
	}
	if bit, ok := kempstonBit[key]; ok {
		if pressed {
			m.kempston |= bit
		} else {
			m.kempston &^= bit
		}
		target.SetKempston(m.kempston)
	}
}
