package z80

// AF, BC, DE, HL and their shadow counterparts are exposed as uint16
// accessors over the 8-bit halves — no unions, no unsafe aliasing.

func (c *CPU) AF() uint16 { return uint16(c.A)<<8 | uint16(c.F) }
func (c *CPU) SetAF(v uint16) {
	c.A = byte(v >> 8)
	c.F = byte(v)
}

func (c *CPU) BC() uint16 { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) SetBC(v uint16) {
	c.B = byte(v >> 8)
	c.C = byte(v)
}

func (c *CPU) DE() uint16 { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) SetDE(v uint16) {
	c.D = byte(v >> 8)
	c.E = byte(v)
}

func (c *CPU) HL() uint16 { return uint16(c.H)<<8 | uint16(c.L) }
func (c *CPU) SetHL(v uint16) {
	c.H = byte(v >> 8)
	c.L = byte(v)
}

func (c *CPU) AF2() uint16 { return uint16(c.A2)<<8 | uint16(c.F2) }
func (c *CPU) SetAF2(v uint16) {
	c.A2 = byte(v >> 8)
	c.F2 = byte(v)
}

func (c *CPU) BC2() uint16 { return uint16(c.B2)<<8 | uint16(c.C2) }
func (c *CPU) SetBC2(v uint16) {
	c.B2 = byte(v >> 8)
	c.C2 = byte(v)
}

func (c *CPU) DE2() uint16 { return uint16(c.D2)<<8 | uint16(c.E2) }
func (c *CPU) SetDE2(v uint16) {
	c.D2 = byte(v >> 8)
	c.E2 = byte(v)
}

func (c *CPU) HL2() uint16 { return uint16(c.H2)<<8 | uint16(c.L2) }
func (c *CPU) SetHL2(v uint16) {
	c.H2 = byte(v >> 8)
	c.L2 = byte(v)
}

func (c *CPU) setFlag(mask byte, set bool) {
	if set {
		c.F |= mask
	} else {
		c.F &^= mask
	}
}

func (c *CPU) flag(mask byte) bool { return c.F&mask != 0 }

// indexReg returns the 16-bit register that stands in for HL under the
// active prefix: IX, IY, or HL itself when no prefix is active. Used by
// opcodes where HL is addressed directly as a 16-bit register (ADD HL,rr,
// PUSH/POP HL, EX (SP),HL, JP (HL), LD SP,HL) rather than through the
// (prefix, slot) 8-bit accessor.
func (c *CPU) indexReg() uint16 {
	switch c.prefixActive {
	case prefixIX:
		return c.IX
	case prefixIY:
		return c.IY
	default:
		return c.HL()
	}
}

func (c *CPU) setIndexReg(v uint16) {
	switch c.prefixActive {
	case prefixIX:
		c.IX = v
	case prefixIY:
		c.IY = v
	default:
		c.SetHL(v)
	}
}

// reg8 reads an 8-bit register slot (the 3-bit field of a main opcode: B,
// C, D, E, H, L, (HL), A). Slots 4 and 5 (H, L) are redirected to the high
// and low byte of the active index register when a DD/FD prefix is in
// effect; slot 6 is redirected to (IX+d)/(IY+d) with a displacement byte
// consumed lazily from the instruction stream, matching the real hardware
// byte order of opcode, displacement, any further immediate.
func (c *CPU) reg8(slot byte) byte {
	switch slot {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		switch c.prefixActive {
		case prefixIX:
			return byte(c.IX >> 8)
		case prefixIY:
			return byte(c.IY >> 8)
		default:
			return c.H
		}
	case 5:
		switch c.prefixActive {
		case prefixIX:
			return byte(c.IX)
		case prefixIY:
			return byte(c.IY)
		default:
			return c.L
		}
	case 6:
		return c.bus.Read(c.effAddr())
	default:
		return c.A
	}
}

func (c *CPU) setReg8(slot byte, v byte) {
	switch slot {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		switch c.prefixActive {
		case prefixIX:
			c.IX = uint16(v)<<8 | c.IX&0xFF
		case prefixIY:
			c.IY = uint16(v)<<8 | c.IY&0xFF
		default:
			c.H = v
		}
	case 5:
		switch c.prefixActive {
		case prefixIX:
			c.IX = c.IX&0xFF00 | uint16(v)
		case prefixIY:
			c.IY = c.IY&0xFF00 | uint16(v)
		default:
			c.L = v
		}
	case 6:
		c.bus.Write(c.effAddr(), v)
	default:
		c.A = v
	}
}

// effAddr returns the address a slot-6 ((HL)) access should touch. Under an
// active index prefix it consumes the displacement byte from the
// instruction stream, updates WZ, and charges the extra 8 T-states
// (3 for the displacement read, 5 of internal address-calculation delay)
// that real hardware spends before using (IX+d)/(IY+d). Plain (HL) access
// costs nothing extra here; the 3 T-state memory cycle itself is charged
// by the calling opcode, uniformly for both cases.
func (c *CPU) effAddr() uint16 {
	if c.prefixActive == prefixNone {
		return c.HL()
	}
	d := int8(c.fetchByte())
	c.tick(8)
	base := c.IX
	if c.prefixActive == prefixIY {
		base = c.IY
	}
	addr := uint16(int32(base) + int32(d))
	c.WZ = addr
	return addr
}

// isMemSlot reports whether slot 6 designates memory rather than a register,
// used by opcode tables to size their T-state cost.
func isMemSlot(slot byte) bool { return slot == 6 }
