package tape

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestClockAlternatesPolarityAcrossPulses(t *testing.T) {
	tp := New([]int{2, 2, 2})
	var bits []bool
	for i := 0; i < 6; i++ {
		bits = append(bits, tp.Clock())
	}
	want := []bool{false, false, true, true, false, false}
	for i, b := range want {
		if bits[i] != b {
			t.Fatalf("bit %d: got %v, want %v", i, bits[i], b)
		}
	}
}

func TestDoneAfterAllPulsesConsumed(t *testing.T) {
	tp := New([]int{1, 1})
	tp.Clock()
	tp.Clock()
	if !tp.Done() {
		t.Fatalf("expected tape done after consuming all pulses")
	}
	if tp.Clock() != false {
		t.Fatalf("expected false once done")
	}
}

func TestStopPausesWithoutLosingPosition(t *testing.T) {
	tp := New([]int{5, 5})
	tp.Clock()
	tp.Stop()
	if tp.Clock() {
		// Stop should suppress output entirely, not just freeze position,
		// so this call must return false.
		t.Fatalf("expected false from Clock while stopped")
	}
	pos := tp.Position()
	tp.Play()
	tp.Clock()
	if tp.Position() < pos {
		t.Fatalf("position should not move backwards after Play")
	}
}

func buildTAPBlock(flag byte, payload []byte) []byte {
	data := append([]byte{flag}, payload...)
	var checksum byte
	for _, b := range data {
		checksum ^= b
	}
	data = append(data, checksum)
	var buf bytes.Buffer
	length := make([]byte, 2)
	binary.LittleEndian.PutUint16(length, uint16(len(data)))
	buf.Write(length)
	buf.Write(data)
	return buf.Bytes()
}

func TestLoadTAPProducesNonEmptyPulseSequence(t *testing.T) {
	block := buildTAPBlock(0x00, []byte{1, 2, 3})
	pulses, err := LoadTAP(block)
	if err != nil {
		t.Fatalf("LoadTAP: %v", err)
	}
	if len(pulses) == 0 {
		t.Fatalf("expected a non-empty pulse sequence")
	}
	// header pilot (8063 pulses) + 2 sync + data bits
	if len(pulses) < tapPilotCountHeader+2 {
		t.Fatalf("pulse count too short for a header block: got %d", len(pulses))
	}
}

func TestLoadTAPTruncatedBlockErrors(t *testing.T) {
	_, err := LoadTAP([]byte{0x05, 0x00, 0x01, 0x02})
	if err == nil {
		t.Fatalf("expected an error for a truncated .tap block")
	}
}

func buildTZX(blocks ...[]byte) []byte {
	var buf bytes.Buffer
	buf.Write(tzxSignature)
	buf.WriteByte(1) // major
	buf.WriteByte(20)
	for _, b := range blocks {
		buf.Write(b)
	}
	return buf.Bytes()
}

func TestLoadTZXPureTone(t *testing.T) {
	block := []byte{0x12, 0x68, 0x08, 0x05, 0x00} // pulse len 2152, count 5
	pulses, err := LoadTZX(buildTZX(block))
	if err != nil {
		t.Fatalf("LoadTZX: %v", err)
	}
	if len(pulses) != 5 {
		t.Fatalf("pulse count: got %d, want 5", len(pulses))
	}
}

func TestLoadTZXUnknownBlockReturnsError(t *testing.T) {
	block := []byte{0xFF}
	_, err := LoadTZX(buildTZX(block))
	if err == nil {
		t.Fatalf("expected ErrUnknownBlock")
	}
}

func TestLoadTZXTruncatedPureToneReturnsErrorInsteadOfPanicking(t *testing.T) {
	// pure tone (0x12) declares a pulse length and count but the file ends
	// before the count field.
	block := []byte{0x12, 0x68, 0x08}
	_, err := LoadTZX(buildTZX(block))
	if err == nil {
		t.Fatalf("expected an error for a truncated pure tone block")
	}
}

func TestLoadTZXTurboSpeedBlockLongerThanDeclaredLengthErrors(t *testing.T) {
	// turbo speed (0x11) header is 18 bytes; declare a data length that
	// runs past the end of the file rather than providing it.
	header := []byte{0x11}
	header = append(header, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0) // pilot/sync/zero/one/pilotCount/bits
	header = append(header, 0, 0)                                    // pause
	header = append(header, 0xFF, 0xFF, 0xFF)                        // length (3 bytes, little endian): huge
	_, err := LoadTZX(buildTZX(header))
	if err == nil {
		t.Fatalf("expected an error for a turbo speed block whose declared length exceeds the file")
	}
}
