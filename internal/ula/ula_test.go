package ula

import "testing"

func requireEqualU8(t *testing.T, name string, got, want byte) {
	t.Helper()
	if got != want {
		t.Fatalf("%s: got 0x%02X, want 0x%02X", name, got, want)
	}
}

func TestMemoryMapRegions(t *testing.T) {
	u := New(Model48K)
	u.LoadROM(0, []byte{0xAA})
	u.ram[5][0] = 0x11
	u.ram[2][0] = 0x22
	u.ram[0][0] = 0x33

	requireEqualU8(t, "ROM", u.Read(0x0000), 0xAA)
	requireEqualU8(t, "bank5", u.Read(0x4000), 0x11)
	requireEqualU8(t, "bank2", u.Read(0x8000), 0x22)
	requireEqualU8(t, "selectable", u.Read(0xC000), 0x33)

	u.Write(0x0000, 0xFF)
	requireEqualU8(t, "ROM write dropped", u.Read(0x0000), 0xAA)
}

func TestFloatingBusTracksLastRead(t *testing.T) {
	u := New(Model48K)
	u.ram[5][0] = 0x42
	u.Read(0x4000)
	requireEqualU8(t, "floating bus", u.FloatingBus(), 0x42)
}

// TestPagingLockLatchesFirstWrite demonstrates the 128K paging-lock
// invariant: once a paging write sets the lock bit, subsequent writes are
// ignored until reset.
//
// The two literal byte values named in the walkthrough this test is based
// on (0x30 then 0x07) do not actually produce "bank 7 mapped and locked
// after the first write" under the documented ram_select = value & 7,
// lock = value & 0x20 formula (0x30 & 7 == 0, selecting bank 0, not bank
// 7) — so this test exercises the same invariant with a pair of values
// that are internally consistent: 0x27 selects bank 7 and sets the lock
// bit in one write, then 0x00 is correctly ignored.
func TestPagingLockLatchesFirstWrite(t *testing.T) {
	u := New(Model128K)

	u.Out(0x7FFD, 0x27)
	if u.ramSelect != 7 {
		t.Fatalf("ramSelect: got %d, want 7", u.ramSelect)
	}
	if !u.pagingLocked {
		t.Fatalf("expected paging locked after bit 5 write")
	}

	u.Out(0x7FFD, 0x00)
	if u.ramSelect != 7 {
		t.Fatalf("ramSelect changed after lock: got %d, want 7 (unchanged)", u.ramSelect)
	}
}

func TestPagingSelectsROMAndVRAMBank(t *testing.T) {
	u := New(Model128K)
	u.Out(0x7FFD, 0x18) // bit 4 (ROM 1) + bit 3 (VRAM bank 7)
	if u.romSelect != 1 {
		t.Fatalf("romSelect: got %d, want 1", u.romSelect)
	}
	if u.vramSelect != 7 {
		t.Fatalf("vramSelect: got %d, want 7", u.vramSelect)
	}
}

func TestInterruptLineAssertedAtStartOfFieldSync(t *testing.T) {
	u := New(Model48K)
	u.y = -verticalRetrace
	u.x = borderLeft
	u.paintPixel()
	u.updateInterruptLine()
	if !u.InterruptLine() {
		t.Fatalf("expected interrupt line asserted at x=borderLeft")
	}

	u.x = borderLeft + interruptActiveTicks
	u.updateInterruptLine()
	if u.InterruptLine() {
		t.Fatalf("expected interrupt line cleared after interruptActiveTicks")
	}
}

func TestBitmapAddressFormula(t *testing.T) {
	u := New(Model48K)
	// Fill bank 5 (the default video bank) with a marker at the address the
	// formula predicts for (xp=8, yp=100): addr = 1 | (100&7)<<8 |
	// (100&0x38)<<2 | (100&0xC0)<<5.
	xp, yp := 8, 100
	addr := uint16(xp>>3) | uint16(yp&7)<<8 | uint16(yp&0x38)<<2 | uint16(yp&0xC0)<<5
	u.ram[5][addr] = 0xFF
	u.ram[5][0x1800+(yp>>3)*32+(xp>>3)] = 0x07 // white ink on black paper

	u.x = borderLeft + xp
	u.y = borderTop + yp
	u.paintPixel()
	got := u.frame[u.y*FrameWidth+u.x]
	if got != 7 {
		t.Fatalf("pixel color index: got %d, want 7", got)
	}
}

func TestKeyboardPortReadsMatrix(t *testing.T) {
	u := New(Model48K)
	u.SetKey(KeyPos{Row: 0, Col: 0}, true) // CAPS SHIFT on row 0xFE
	v := u.In(0xFEFE)
	if v&0x01 != 0 {
		t.Fatalf("expected bit 0 clear for pressed key, got 0x%02X", v)
	}
}

func TestKempstonPortDecodesIndependentOfKeyboard(t *testing.T) {
	u := New(Model48K)
	u.SetKempston(0x10)
	if u.In(0x001F) != 0x10 {
		t.Fatalf("kempston read mismatch")
	}
}
