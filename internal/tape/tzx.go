package tape

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var tzxSignature = []byte("ZXTape!\x1a")

// ErrTruncatedTZX is returned when a .tzx block's declared length or count
// runs past the end of the file, instead of letting tzxReader index past
// the buffer.
var ErrTruncatedTZX = errors.New("tape: truncated .tzx block")

// tzxClockHz is the reference Z80 clock used to convert a .tzx pause
// block's millisecond duration into T-states, matching the 48K/128K
// machine's nominal rate.
const tzxClockHz = 3500000

// LoadTZX decodes a .tzx file into a pulse sequence. Recognized block IDs
// are standard speed (0x10), turbo speed (0x11), pure tone (0x12), pulse
// sequence (0x13), pure data (0x14), pause/stop-the-tape (0x20), group
// start/end (0x21/0x22), loop start/end (0x24/0x25), text description
// (0x30) and archive info (0x32). An unrecognized block ID returns
// ErrUnknownBlock and discards the partial sequence decoded so far; a
// truncated block returns ErrTruncatedTZX the same way.
func LoadTZX(data []byte) ([]int, error) {
	if len(data) < len(tzxSignature)+2 || !bytes.Equal(data[:len(tzxSignature)], tzxSignature) {
		return nil, fmt.Errorf("tape: invalid .tzx signature")
	}
	r := &tzxReader{data: data, pos: len(tzxSignature) + 2} // skip signature + major/minor version

	var pulses []int
	var loopPos, loopCount int

	for r.pos < len(r.data) {
		blockID := r.data[r.pos]
		r.pos++

		switch blockID {
		case 0x10:
			block, err := r.loadStandardSpeed()
			if err != nil {
				return nil, err
			}
			pulses = append(pulses, block...)
		case 0x11:
			block, err := r.loadTurboSpeed()
			if err != nil {
				return nil, err
			}
			pulses = append(pulses, block...)
		case 0x12:
			pulseLength, err := r.word()
			if err != nil {
				return nil, err
			}
			count, err := r.word()
			if err != nil {
				return nil, err
			}
			for i := 0; i < int(count); i++ {
				pulses = append(pulses, tStatesToTicks(int(pulseLength)))
			}
		case 0x13:
			countByte, err := r.byte()
			if err != nil {
				return nil, err
			}
			for i := 0; i < int(countByte); i++ {
				w, err := r.word()
				if err != nil {
					return nil, err
				}
				pulses = append(pulses, tStatesToTicks(int(w)))
			}
		case 0x14:
			block, err := r.loadPureData()
			if err != nil {
				return nil, err
			}
			pulses = append(pulses, block...)
		case 0x20:
			w, err := r.word()
			if err != nil {
				return nil, err
			}
			pauseMs := int(w)
			if pauseMs > 0 {
				pulses = append(pulses, generatePause(pauseMs)...)
			}
		case 0x21:
			n, err := r.byte()
			if err != nil {
				return nil, err
			}
			if err := r.skip(int(n)); err != nil {
				return nil, err
			}
		case 0x22:
			// group end: no payload
		case 0x24:
			w, err := r.word()
			if err != nil {
				return nil, err
			}
			loopCount = int(w)
			loopPos = r.pos
		case 0x25:
			if loopCount > 0 {
				loopCount--
				r.pos = loopPos
			}
		case 0x30:
			n, err := r.byte()
			if err != nil {
				return nil, err
			}
			if err := r.skip(int(n)); err != nil {
				return nil, err
			}
		case 0x32:
			n, err := r.word()
			if err != nil {
				return nil, err
			}
			if err := r.skip(int(n)); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownBlock, blockID)
		}
	}
	return pulses, nil
}

// generatePause synthesizes a silent gap of the given duration (in
// milliseconds) as a pair of equal-length pulses.
func generatePause(ms int) []int {
	ticks := tStatesToTicks(tzxClockHz * ms / 1000)
	return []int{ticks, ticks}
}

type tzxReader struct {
	data []byte
	pos  int
}

// require reports ErrTruncatedTZX if fewer than n bytes remain at pos,
// rather than letting the caller index past the end of data.
func (r *tzxReader) require(n int) error {
	if n < 0 || r.pos+n > len(r.data) {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedTZX, n, r.pos, len(r.data)-r.pos)
	}
	return nil
}

// skip advances pos by n, the bounds-checked form of the length/count
// fields this loader otherwise discards (group names, archive info).
func (r *tzxReader) skip(n int) error {
	if err := r.require(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

func (r *tzxReader) byte() (byte, error) {
	if err := r.require(1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *tzxReader) word() (uint16, error) {
	if err := r.require(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *tzxReader) word3() (uint32, error) {
	if err := r.require(3); err != nil {
		return 0, err
	}
	b0, b1, b2 := r.data[r.pos], r.data[r.pos+1], r.data[r.pos+2]
	r.pos += 3
	return uint32(b2)<<16 | uint32(b1)<<8 | uint32(b0), nil
}

func (r *tzxReader) bytes(n int) ([]byte, error) {
	if err := r.require(n); err != nil {
		return nil, err
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *tzxReader) loadStandardSpeed() ([]int, error) {
	pauseW, err := r.word()
	if err != nil {
		return nil, err
	}
	lengthW, err := r.word()
	if err != nil {
		return nil, err
	}
	pauseMs, length := int(pauseW), int(lengthW)
	if length < 1 {
		return nil, nil
	}
	block, err := r.bytes(length)
	if err != nil {
		return nil, err
	}

	pulses := generateStandardBlock(block)
	if pauseMs > 0 {
		pulses = append(pulses, generatePause(pauseMs)...)
	}
	return pulses, nil
}

func (r *tzxReader) loadTurboSpeed() ([]int, error) {
	pilotPulseW, err := r.word()
	if err != nil {
		return nil, err
	}
	sync1W, err := r.word()
	if err != nil {
		return nil, err
	}
	sync2W, err := r.word()
	if err != nil {
		return nil, err
	}
	zeroW, err := r.word()
	if err != nil {
		return nil, err
	}
	oneW, err := r.word()
	if err != nil {
		return nil, err
	}
	pilotCountW, err := r.word()
	if err != nil {
		return nil, err
	}
	bitsLastByteB, err := r.byte()
	if err != nil {
		return nil, err
	}
	pauseW, err := r.word()
	if err != nil {
		return nil, err
	}
	length, err := r.word3()
	if err != nil {
		return nil, err
	}
	if length < 1 {
		return nil, nil
	}
	block, err := r.bytes(int(length))
	if err != nil {
		return nil, err
	}

	pilotPulse, sync1, sync2 := int(pilotPulseW), int(sync1W), int(sync2W)
	zero, one := int(zeroW), int(oneW)
	pilotCount, bitsLastByte, pauseMs := int(pilotCountW), int(bitsLastByteB), int(pauseW)

	var pulses []int
	for i := 0; i < pilotCount; i++ {
		pulses = append(pulses, tStatesToTicks(pilotPulse))
	}
	pulses = append(pulses, tStatesToTicks(sync1), tStatesToTicks(sync2))
	pulses = append(pulses, generateDataPulses(block, zero, one, bitsLastByte)...)
	if pauseMs > 0 {
		pulses = append(pulses, generatePause(pauseMs)...)
	}
	return pulses, nil
}

func (r *tzxReader) loadPureData() ([]int, error) {
	zeroW, err := r.word()
	if err != nil {
		return nil, err
	}
	oneW, err := r.word()
	if err != nil {
		return nil, err
	}
	bitsLastByteB, err := r.byte()
	if err != nil {
		return nil, err
	}
	pauseW, err := r.word()
	if err != nil {
		return nil, err
	}
	length, err := r.word3()
	if err != nil {
		return nil, err
	}
	if length < 1 {
		return nil, nil
	}
	block, err := r.bytes(int(length))
	if err != nil {
		return nil, err
	}

	zero, one := int(zeroW), int(oneW)
	bitsLastByte, pauseMs := int(bitsLastByteB), int(pauseW)

	pulses := generateDataPulses(block, zero, one, bitsLastByte)
	if pauseMs > 0 {
		pulses = append(pulses, generatePause(pauseMs)...)
	}
	return pulses, nil
}
