package z80

// shiftOps are the eight CB-space rotate/shift kinds selected by bits 5-3 of
// a CB opcode.
var shiftOps = [8]func(c *CPU, v byte) byte{
	func(c *CPU, v byte) byte { r, f := rlc8(v); c.F = f; return r },
	func(c *CPU, v byte) byte { r, f := rrc8(v); c.F = f; return r },
	func(c *CPU, v byte) byte {
		carryIn := byte(0)
		if c.flag(FlagC) {
			carryIn = 1
		}
		r, f := rl8(v, carryIn)
		c.F = f
		return r
	},
	func(c *CPU, v byte) byte {
		carryIn := byte(0)
		if c.flag(FlagC) {
			carryIn = 1
		}
		r, f := rr8(v, carryIn)
		c.F = f
		return r
	},
	func(c *CPU, v byte) byte { r, f := sla8(v); c.F = f; return r },
	func(c *CPU, v byte) byte { r, f := sra8(v); c.F = f; return r },
	func(c *CPU, v byte) byte { r, f := sll8(v); c.F = f; return r },
	func(c *CPU, v byte) byte { r, f := srl8(v); c.F = f; return r },
}

func (c *CPU) bitTest(n byte, v byte) {
	result := v & (1 << n)
	f := c.F & FlagC
	f |= FlagH
	if result == 0 {
		f |= FlagZ | FlagPV
	}
	if n == 7 && result != 0 {
		f |= FlagS
	}
	c.F = f
}

func (c *CPU) initCBOps() {
	ops := &c.cbOps
	for y := byte(0); y < 8; y++ {
		for x := byte(0); x < 8; x++ {
			y, x := y, x
			ops[y<<3|x] = func(c *CPU) { // shift/rotate r
				v := c.reg8(x)
				r := shiftOps[y](c, v)
				c.setReg8(x, r)
				base := 8
				if isMemSlot(x) {
					base = 15
				}
				c.tick(base)
			}
			ops[0x40|y<<3|x] = func(c *CPU) { // BIT y,r
				v := c.reg8(x)
				c.bitTest(y, v)
				if isMemSlot(x) {
					c.F = c.F&^(FlagY|FlagX) | byte(c.WZ>>8)&(FlagY|FlagX)
					c.tick(12)
				} else {
					c.F = c.F&^(FlagY|FlagX) | v&(FlagY|FlagX)
					c.tick(8)
				}
			}
			ops[0x80|y<<3|x] = func(c *CPU) { // RES y,r
				v := c.reg8(x) &^ (1 << y)
				c.setReg8(x, v)
				base := 8
				if isMemSlot(x) {
					base = 15
				}
				c.tick(base)
			}
			ops[0xC0|y<<3|x] = func(c *CPU) { // SET y,r
				v := c.reg8(x) | (1 << y)
				c.setReg8(x, v)
				base := 8
				if isMemSlot(x) {
					base = 15
				}
				c.tick(base)
			}
		}
	}
}

// execIndexedCB executes a DDCB/FDCB sequence: displacement byte, then
// sub-opcode. The operation always targets (IX+d)/(IY+d); the undocumented
// behavior also writes the result back into the register named by the
// sub-opcode's low three bits, except when that field selects memory.
func (c *CPU) execIndexedCB() {
	d := int8(c.fetchByte())
	sub := c.fetchByte()

	base := c.IX
	if c.prefixActive == prefixIY {
		base = c.IY
	}
	addr := uint16(int32(base) + int32(d))
	c.WZ = addr

	y := (sub >> 3) & 7
	x := sub & 7
	group := sub >> 6

	v := c.bus.Read(addr)

	switch group {
	case 0: // shift/rotate, write back to (addr) and optionally a register
		r := shiftOps[y](c, v)
		c.bus.Write(addr, r)
		if x != 6 {
			c.setReg8Direct(x, r)
		}
		c.tick(23)
	case 1: // BIT y,(addr)
		c.bitTest(y, v)
		c.F = c.F&^(FlagY|FlagX) | byte(c.WZ>>8)&(FlagY|FlagX)
		c.tick(20)
	case 2: // RES y,(addr)
		r := v &^ (1 << y)
		c.bus.Write(addr, r)
		if x != 6 {
			c.setReg8Direct(x, r)
		}
		c.tick(23)
	default: // SET y,(addr)
		r := v | (1 << y)
		c.bus.Write(addr, r)
		if x != 6 {
			c.setReg8Direct(x, r)
		}
		c.tick(23)
	}
}

// setReg8Direct writes an 8-bit register slot without index substitution —
// used for the DDCB/FDCB undocumented copy-back, which always names a plain
// B..A register regardless of the active prefix.
func (c *CPU) setReg8Direct(slot byte, v byte) {
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
		c.H = v
	case 5:
		c.L = v
	default:
		c.A = v
	}
}
