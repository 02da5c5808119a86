package snapshot

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/zxcore/zxcore/internal/ula"
	"github.com/zxcore/zxcore/internal/z80"
)

func TestSaveSNAThenLoadSNARoundTrips(t *testing.T) {
	u := ula.New(ula.Model48K)
	cpu := z80.New(u)

	cpu.SetAF(0x1234)
	cpu.SetBC(0x5678)
	cpu.SetDE(0x9ABC)
	cpu.SetHL(0xDEF0)
	cpu.IX = 0x1111
	cpu.IY = 0x2222
	cpu.SP = 0x8000
	cpu.PC = 0x9000
	cpu.IM = 1
	cpu.IFF2 = true
	u.SetBorder(4)

	bank5 := make([]byte, 0x4000)
	bank5[0] = 0xAA
	u.SetBank(5, bank5)

	buf := SaveSNA(cpu, u)
	if len(buf) != snaHeaderSize+3*ramBankSize {
		t.Fatalf("unexpected .sna size: %d", len(buf))
	}

	u2 := ula.New(ula.Model48K)
	cpu2 := z80.New(u2)
	if err := LoadSNA(buf, cpu2, u2); err != nil {
		t.Fatalf("LoadSNA: %v", err)
	}

	if cpu2.AF() != cpu.AF() {
		t.Fatalf("AF: got %04X, want %04X", cpu2.AF(), cpu.AF())
	}
	if cpu2.BC() != cpu.BC() || cpu2.DE() != cpu.DE() || cpu2.HL() != cpu.HL() {
		t.Fatalf("main register set mismatch")
	}
	if cpu2.IX != cpu.IX || cpu2.IY != cpu.IY {
		t.Fatalf("index register mismatch")
	}
	if cpu2.PC != 0x9000 {
		t.Fatalf("PC: got %04X, want 9000 (popped from stack)", cpu2.PC)
	}
	if cpu2.SP != cpu.SP {
		t.Fatalf("SP: got %04X, want %04X (pop should restore original SP)", cpu2.SP, cpu.SP)
	}
	if u2.Border() != 4 {
		t.Fatalf("border: got %d, want 4", u2.Border())
	}
	if u2.Bank(5)[0] != 0xAA {
		t.Fatalf("bank 5 contents lost across round trip")
	}
}

func TestLoadSNATruncatedReturnsError(t *testing.T) {
	u := ula.New(ula.Model48K)
	cpu := z80.New(u)
	if err := LoadSNA(make([]byte, 10), cpu, u); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func buildZ80V3(pc uint16, hardwareMode byte, pages map[byte][]byte) []byte {
	header := make([]byte, z80HeaderSize)
	header[6], header[7] = 0, 0 // PC == 0 signals v2/v3
	header[12] = 0x01           // border bit pattern, non-0xFF sentinel

	extra := make([]byte, 3)
	binary.LittleEndian.PutUint16(extra[0:], pc)
	extra[2] = hardwareMode

	var buf []byte
	buf = append(buf, header...)
	lenBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(lenBuf, uint16(len(extra)))
	buf = append(buf, lenBuf...)
	buf = append(buf, extra...)

	for pageNum, data := range pages {
		blockHeader := make([]byte, 3)
		binary.LittleEndian.PutUint16(blockHeader, 0xFFFF)
		blockHeader[2] = pageNum
		buf = append(buf, blockHeader...)
		buf = append(buf, data...)
	}
	return buf
}

func TestLoadZ80V3UncompressedRoundTrips(t *testing.T) {
	page := make([]byte, ramBankSize)
	page[0] = 0x42
	data := buildZ80V3(0x8400, 0, map[byte][]byte{5: page})

	u := ula.New(ula.Model48K)
	cpu := z80.New(u)
	if err := LoadZ80(data, cpu, u); err != nil {
		t.Fatalf("LoadZ80: %v", err)
	}
	if cpu.PC != 0x8400 {
		t.Fatalf("PC: got %04X, want 8400", cpu.PC)
	}
	if u.Bank(0)[0] != 0x42 {
		t.Fatalf("page 5 should map to bank 0")
	}
}

func TestLoadZ80CompressedPageExpandsRLE(t *testing.T) {
	header := make([]byte, z80HeaderSize)
	header[12] = 0x01
	extra := make([]byte, 3)
	binary.LittleEndian.PutUint16(extra[0:], 0x7000)
	extra[2] = 0

	compressed := []byte{0xED, 0xED, 0x05, 0x99, 0x01, 0x02}
	var buf []byte
	buf = append(buf, header...)
	lenBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(lenBuf, uint16(len(extra)))
	buf = append(buf, lenBuf...)
	buf = append(buf, extra...)

	blockHeader := make([]byte, 3)
	binary.LittleEndian.PutUint16(blockHeader, uint16(len(compressed)))
	blockHeader[2] = 4 // page 4 -> bank 2
	buf = append(buf, blockHeader...)
	buf = append(buf, compressed...)

	u := ula.New(ula.Model48K)
	cpu := z80.New(u)
	if err := LoadZ80(buf, cpu, u); err != nil {
		t.Fatalf("LoadZ80: %v", err)
	}
	bank := u.Bank(2)
	for i := 0; i < 5; i++ {
		if bank[i] != 0x99 {
			t.Fatalf("byte %d: got %02X, want 99 (RLE run)", i, bank[i])
		}
	}
	if bank[5] != 0x01 || bank[6] != 0x02 {
		t.Fatalf("literal bytes after RLE run not preserved")
	}
}

func TestLoadZ80V1RejectedAsUnsupportedVersion(t *testing.T) {
	header := make([]byte, z80HeaderSize)
	binary.LittleEndian.PutUint16(header[6:], 0x8000) // non-zero PC: v1

	u := ula.New(ula.Model48K)
	cpu := z80.New(u)
	if err := LoadZ80(header, cpu, u); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestLoadZ80UnsupportedHardwareMode(t *testing.T) {
	data := buildZ80V3(0x8000, 4, nil) // hardware mode 4 is not 48K
	u := ula.New(ula.Model48K)
	cpu := z80.New(u)
	if err := LoadZ80(data, cpu, u); !errors.Is(err, ErrUnsupportedHardware) {
		t.Fatalf("expected ErrUnsupportedHardware, got %v", err)
	}
}
