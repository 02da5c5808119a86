package z80

import "testing"

// wantIOBlockFlags independently restates the documented INI/IND/OUTI/OUTD
// flag formula (S/Z/Y/X from the post-decrement B, N from the sign of the
// transferred byte, H/C/P from k), so the tests below check inBlock/
// outBlock against the spec rather than against their own implementation.
func wantIOBlockFlags(n, b byte, k int) byte {
	var f byte
	if b&0x80 != 0 {
		f |= FlagS
	}
	if b == 0 {
		f |= FlagZ
	}
	f |= b & (FlagY | FlagX)
	if n&0x80 != 0 {
		f |= FlagN
	}
	if k > 0xFF {
		f |= FlagH | FlagC
	}
	if parityEven(byte(k&0x07) ^ b) {
		f |= FlagPV
	}
	return f
}

func TestINIFlagsAcrossAllBAndPortValues(t *testing.T) {
	rig := newTestRig()
	for bBefore := 1; bBefore < 256; bBefore++ {
		for n := 0; n < 256; n++ {
			rig.cpu.SetBC(uint16(bBefore)<<8 | 0x01)
			rig.cpu.SetHL(0x4000)
			rig.bus.io[rig.cpu.BC()] = byte(n)
			rig.cpu.F = 0

			rig.cpu.inBlock(1)

			wantB := byte(bBefore) - 1
			wantK := n + int((1+1)&0xFF)
			wantF := wantIOBlockFlags(byte(n), wantB, wantK)
			if rig.cpu.B != wantB {
				t.Fatalf("INI B=%d n=%d: B got %d, want %d", bBefore, n, rig.cpu.B, wantB)
			}
			if rig.cpu.F != wantF {
				t.Fatalf("INI B=%d n=%d: F got 0x%02X, want 0x%02X", bBefore, n, rig.cpu.F, wantF)
			}
			if rig.bus.mem[0x4000] != byte(n) {
				t.Fatalf("INI B=%d n=%d: (HL) got 0x%02X, want 0x%02X", bBefore, n, rig.bus.mem[0x4000], n)
			}
			if rig.cpu.HL() != 0x4001 {
				t.Fatalf("INI B=%d n=%d: HL got 0x%04X, want 0x4001", bBefore, n, rig.cpu.HL())
			}
		}
	}
}

func TestINDFlagsAcrossAllBAndPortValues(t *testing.T) {
	rig := newTestRig()
	for bBefore := 1; bBefore < 256; bBefore++ {
		for n := 0; n < 256; n++ {
			rig.cpu.SetBC(uint16(bBefore)<<8 | 0x00)
			rig.cpu.SetHL(0x4000)
			rig.bus.io[rig.cpu.BC()] = byte(n)
			rig.cpu.F = 0

			rig.cpu.inBlock(-1)

			wantB := byte(bBefore) - 1
			wantK := n + int((0-1)&0xFF)
			wantF := wantIOBlockFlags(byte(n), wantB, wantK)
			if rig.cpu.F != wantF {
				t.Fatalf("IND B=%d n=%d: F got 0x%02X, want 0x%02X", bBefore, n, rig.cpu.F, wantF)
			}
			if rig.cpu.HL() != 0x3FFF {
				t.Fatalf("IND B=%d n=%d: HL got 0x%04X, want 0x3FFF", bBefore, n, rig.cpu.HL())
			}
		}
	}
}

func TestOUTIFlagsAcrossAllBAndMemoryValues(t *testing.T) {
	rig := newTestRig()
	for bBefore := 1; bBefore < 256; bBefore++ {
		for n := 0; n < 256; n++ {
			rig.cpu.SetBC(uint16(bBefore)<<8 | 0x01)
			rig.cpu.SetHL(0x4000)
			rig.bus.mem[0x4000] = byte(n)
			rig.cpu.F = 0

			rig.cpu.outBlock(1)

			wantB := byte(bBefore) - 1
			wantL := byte(rig.cpu.HL()) // HL already stepped to 0x4001 by outBlock
			wantK := n + int(wantL)
			wantF := wantIOBlockFlags(byte(n), wantB, wantK)
			if rig.cpu.F != wantF {
				t.Fatalf("OUTI B=%d n=%d: F got 0x%02X, want 0x%02X", bBefore, n, rig.cpu.F, wantF)
			}
			if rig.bus.io[rig.cpu.BC()] != byte(n) {
				t.Fatalf("OUTI B=%d n=%d: port got 0x%02X, want 0x%02X", bBefore, n, rig.bus.io[rig.cpu.BC()], n)
			}
			if rig.cpu.HL() != 0x4001 {
				t.Fatalf("OUTI B=%d n=%d: HL got 0x%04X, want 0x4001", bBefore, n, rig.cpu.HL())
			}
		}
	}
}

func TestOUTDFlagsAcrossAllBAndMemoryValues(t *testing.T) {
	rig := newTestRig()
	for bBefore := 1; bBefore < 256; bBefore++ {
		for n := 0; n < 256; n++ {
			rig.cpu.SetBC(uint16(bBefore)<<8 | 0x01)
			rig.cpu.SetHL(0x4000)
			rig.bus.mem[0x4000] = byte(n)
			rig.cpu.F = 0

			rig.cpu.outBlock(-1)

			wantB := byte(bBefore) - 1
			wantL := byte(rig.cpu.HL()) // HL already stepped to 0x3FFF by outBlock
			wantK := n + int(wantL)
			wantF := wantIOBlockFlags(byte(n), wantB, wantK)
			if rig.cpu.F != wantF {
				t.Fatalf("OUTD B=%d n=%d: F got 0x%02X, want 0x%02X", bBefore, n, rig.cpu.F, wantF)
			}
			if rig.cpu.HL() != 0x3FFF {
				t.Fatalf("OUTD B=%d n=%d: HL got 0x%04X, want 0x3FFF", bBefore, n, rig.cpu.HL())
			}
		}
	}
}

// TestINIRRepeatsUntilBIsZero exercises the repeating form end-to-end
// through Step, reading a block of input bytes into memory and checking
// both the documented termination condition and the PC/tick back-off.
func TestINIRRepeatsUntilBIsZero(t *testing.T) {
	rig := newTestRig()
	rig.load(0, []byte{0xED, 0xB2}) // INIR
	rig.cpu.SetBC(0x0310)           // B=3 iterations, C=0x10
	rig.cpu.SetHL(0x5000)
	rig.bus.io[rig.cpu.BC()] = 0xAA
	rig.bus.io[0x0210] = 0xBB
	rig.bus.io[0x0110] = 0xCC

	rig.cpu.PC = 0
	for !rig.cpu.Halted && rig.cpu.B != 0 {
		rig.cpu.Step()
	}

	if rig.cpu.B != 0 {
		t.Fatalf("B: got %d, want 0", rig.cpu.B)
	}
	if rig.bus.mem[0x5000] != 0xAA || rig.bus.mem[0x5001] != 0xBB || rig.bus.mem[0x5002] != 0xCC {
		t.Fatalf("INIR did not transfer the expected bytes: got %02X %02X %02X",
			rig.bus.mem[0x5000], rig.bus.mem[0x5001], rig.bus.mem[0x5002])
	}
	if rig.cpu.HL() != 0x5003 {
		t.Fatalf("HL: got 0x%04X, want 0x5003", rig.cpu.HL())
	}
}

// TestOTIRRepeatsUntilBIsZero is OTIR's counterpart to TestINIRRepeatsUntilBIsZero.
func TestOTIRRepeatsUntilBIsZero(t *testing.T) {
	rig := newTestRig()
	rig.load(0, []byte{0xED, 0xB3}) // OTIR
	rig.cpu.SetBC(0x0310)
	rig.cpu.SetHL(0x5000)
	rig.bus.mem[0x5000] = 0xAA
	rig.bus.mem[0x5001] = 0xBB
	rig.bus.mem[0x5002] = 0xCC

	rig.cpu.PC = 0
	for !rig.cpu.Halted && rig.cpu.B != 0 {
		rig.cpu.Step()
	}

	if rig.cpu.B != 0 {
		t.Fatalf("B: got %d, want 0", rig.cpu.B)
	}
	if rig.cpu.HL() != 0x5003 {
		t.Fatalf("HL: got 0x%04X, want 0x5003", rig.cpu.HL())
	}
}
