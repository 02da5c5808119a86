package z80

func (c *CPU) initEDOps() {
	ops := &c.edOps
	for i := range ops {
		ops[i] = func(c *CPU) { c.tick(8) } // undocumented ED space defaults to an 8 T-state NOP
	}

	for y := byte(0); y < 8; y++ {
		y := y
		ops[0x40|y<<3] = func(c *CPU) { // IN r,(C)
			v := c.bus.In(c.BC())
			c.WZ = c.BC() + 1
			f := c.F & FlagC
			f |= szpTable[v] &^ FlagPV
			if parityEven(v) {
				f |= FlagPV
			}
			c.F = f
			if y != 6 {
				c.setReg8Direct(y, v)
			}
			c.tick(12)
		}
		ops[0x41|y<<3] = func(c *CPU) { // OUT (C),r
			v := byte(0)
			if y != 6 {
				v = c.reg8Direct(y)
			}
			c.bus.Out(c.BC(), v)
			c.WZ = c.BC() + 1
			c.tick(12)
		}
	}
	for p := byte(0); p < 4; p++ {
		p := p
		ops[0x42|p<<4] = func(c *CPU) { c.SetHL(c.sbcHL16(c.HL(), c.rpValue(p))); c.tick(15) }
		ops[0x4A|p<<4] = func(c *CPU) { c.SetHL(c.adcHL16(c.HL(), c.rpValue(p))); c.tick(15) }
		ops[0x43|p<<4] = func(c *CPU) { // LD (nn),rp
			addr := c.fetchWord()
			v := c.rpValue(p)
			c.bus.Write(addr, byte(v))
			c.bus.Write(addr+1, byte(v>>8))
			c.WZ = addr + 1
			c.tick(20)
		}
		ops[0x4B|p<<4] = func(c *CPU) { // LD rp,(nn)
			addr := c.fetchWord()
			lo := c.bus.Read(addr)
			hi := c.bus.Read(addr + 1)
			c.setRPValue(p, uint16(hi)<<8|uint16(lo))
			c.WZ = addr + 1
			c.tick(20)
		}
	}

	neg := func(c *CPU) {
		v := c.A
		c.A = 0
		c.sub8(v, 0, true)
		c.tick(8)
	}
	for _, op := range []byte{0x44, 0x4C, 0x54, 0x5C, 0x64, 0x6C, 0x74, 0x7C} {
		ops[op] = neg
	}

	retn := func(c *CPU) {
		c.PC = c.pop16()
		c.WZ = c.PC
		c.IFF1 = c.IFF2
		c.tick(14)
	}
	reti := func(c *CPU) {
		c.PC = c.pop16()
		c.WZ = c.PC
		c.IFF1 = c.IFF2
		c.tick(14)
	}
	for _, op := range []byte{0x45, 0x55, 0x65, 0x75} {
		ops[op] = retn
	}
	ops[0x4D] = reti

	imModes := map[byte]byte{0x46: 0, 0x4E: 0, 0x66: 0, 0x6E: 0, 0x56: 1, 0x76: 1, 0x5E: 2, 0x7E: 2}
	for op, mode := range imModes {
		mode := mode
		ops[op] = func(c *CPU) { c.IM = mode; c.tick(8) }
	}

	ops[0x47] = func(c *CPU) { c.I = c.A; c.tick(9) }
	ops[0x4F] = func(c *CPU) { c.R = c.A; c.tick(9) }
	ops[0x57] = func(c *CPU) { // LD A,I
		c.A = c.I
		f := c.F & FlagC
		f |= szpTable[c.A] &^ FlagPV
		if c.IFF2 {
			f |= FlagPV
		}
		c.F = f
		c.tick(9)
	}
	ops[0x5F] = func(c *CPU) { // LD A,R
		c.A = c.R
		f := c.F & FlagC
		f |= szpTable[c.A] &^ FlagPV
		if c.IFF2 {
			f |= FlagPV
		}
		c.F = f
		c.tick(9)
	}
	ops[0x67] = func(c *CPU) { // RRD
		addr := c.HL()
		m := c.bus.Read(addr)
		newM := (c.A&0x0F)<<4 | m>>4
		newA := c.A&0xF0 | m&0x0F
		c.bus.Write(addr, newM)
		c.A = newA
		f := c.F & FlagC
		f |= szpTable[c.A] &^ FlagPV
		if parityEven(c.A) {
			f |= FlagPV
		}
		c.F = f
		c.WZ = addr + 1
		c.tick(18)
	}
	ops[0x6F] = func(c *CPU) { // RLD
		addr := c.HL()
		m := c.bus.Read(addr)
		newM := (m<<4 | c.A&0x0F) & 0xFF
		newA := c.A&0xF0 | m>>4
		c.bus.Write(addr, newM)
		c.A = newA
		f := c.F & FlagC
		f |= szpTable[c.A] &^ FlagPV
		if parityEven(c.A) {
			f |= FlagPV
		}
		c.F = f
		c.WZ = addr + 1
		c.tick(18)
	}

	c.initBlockOps(ops)
}

func (c *CPU) reg8Direct(slot byte) byte {
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
		return c.H
	case 5:
		return c.L
	default:
		return c.A
	}
}

// initBlockOps wires the sixteen ED-space block transfer/search/IO
// instructions.
func (c *CPU) initBlockOps(ops *[256]func(*CPU)) {
	ops[0xA0] = func(c *CPU) { c.ldBlock(1); c.tick(16) }   // LDI
	ops[0xA8] = func(c *CPU) { c.ldBlock(-1); c.tick(16) }  // LDD
	ops[0xB0] = func(c *CPU) { c.ldirBlock(1) }             // LDIR
	ops[0xB8] = func(c *CPU) { c.ldirBlock(-1) }            // LDDR
	ops[0xA1] = func(c *CPU) { c.cpBlock(1); c.tick(16) }   // CPI
	ops[0xA9] = func(c *CPU) { c.cpBlock(-1); c.tick(16) }  // CPD
	ops[0xB1] = func(c *CPU) { c.cpirBlock(1) }             // CPIR
	ops[0xB9] = func(c *CPU) { c.cpirBlock(-1) }            // CPDR
	ops[0xA2] = func(c *CPU) { c.inBlock(1); c.tick(16) }   // INI
	ops[0xAA] = func(c *CPU) { c.inBlock(-1); c.tick(16) }  // IND
	ops[0xB2] = func(c *CPU) { c.inirBlock(1) }             // INIR
	ops[0xBA] = func(c *CPU) { c.inirBlock(-1) }            // INDR
	ops[0xA3] = func(c *CPU) { c.outBlock(1); c.tick(16) }  // OUTI
	ops[0xAB] = func(c *CPU) { c.outBlock(-1); c.tick(16) } // OUTD
	ops[0xB3] = func(c *CPU) { c.otirBlock(1) }             // OTIR
	ops[0xBB] = func(c *CPU) { c.otirBlock(-1) }            // OTDR
}

func (c *CPU) ldBlock(step int) {
	v := c.bus.Read(c.HL())
	c.bus.Write(c.DE(), v)
	c.SetHL(c.HL() + uint16(step))
	c.SetDE(c.DE() + uint16(step))
	bc := c.BC() - 1
	c.SetBC(bc)

	n := v + c.A
	f := c.F & (FlagS | FlagZ | FlagC)
	if bc != 0 {
		f |= FlagPV
	}
	f |= n & FlagX
	if n&0x02 != 0 {
		f |= FlagY
	}
	c.F = f
}

func (c *CPU) ldirBlock(step int) {
	c.ldBlock(step)
	if c.BC() != 0 {
		c.PC -= 2
		c.WZ = c.PC + 1
		c.tick(21)
	} else {
		c.tick(16)
	}
}

func (c *CPU) cpBlock(step int) {
	v := c.bus.Read(c.HL())
	a := c.A
	diff := a - v
	c.SetHL(c.HL() + uint16(step))
	bc := c.BC() - 1
	c.SetBC(bc)

	halfCarry := a&0x0F < v&0x0F
	n := diff
	if halfCarry {
		n--
	}
	f := c.F & FlagC
	f |= FlagN
	if diff == 0 {
		f |= FlagZ
	}
	if diff&0x80 != 0 {
		f |= FlagS
	}
	if halfCarry {
		f |= FlagH
	}
	if bc != 0 {
		f |= FlagPV
	}
	f |= n & FlagX
	if n&0x02 != 0 {
		f |= FlagY
	}
	c.F = f
	if step > 0 {
		c.WZ++
	} else {
		c.WZ--
	}
}

func (c *CPU) cpirBlock(step int) {
	c.cpBlock(step)
	if c.BC() != 0 && !c.flag(FlagZ) {
		c.PC -= 2
		c.WZ = c.PC + 1
		c.tick(21)
	} else {
		c.tick(16)
	}
}

// ioBlockFlags computes the SZPHXN flags the INI/IND/OUTI/OUTD family share:
// S/Z/Y/X come from the post-decrement B, N is the sign bit of the
// transferred byte, and H/C/P are derived from k, a carry-style sum that
// differs between the IN and OUT forms (n+((C±1)&0xFF) vs n+L).
func ioBlockFlags(n, b byte, k int) byte {
	f := szpTable[b] & (FlagS | FlagZ | FlagY | FlagX)
	if n&0x80 != 0 {
		f |= FlagN
	}
	if k > 0xFF {
		f |= FlagH | FlagC
	}
	f |= szpTable[(byte(k)&0x07)^b] & FlagPV
	return f
}

func (c *CPU) inBlock(step int) {
	n := c.bus.In(c.BC()) // port read using BC before B is decremented
	b := c.B - 1
	c.B = b
	c.bus.Write(c.HL(), n)
	c.SetHL(c.HL() + uint16(step))
	k := int(n) + int((int(c.C)+step)&0xFF)
	c.F = ioBlockFlags(n, b, k)
}

func (c *CPU) inirBlock(step int) {
	c.inBlock(step)
	if c.B != 0 {
		c.PC -= 2
		c.tick(21)
	} else {
		c.tick(16)
	}
}

func (c *CPU) outBlock(step int) {
	n := c.bus.Read(c.HL())
	c.SetHL(c.HL() + uint16(step))
	b := c.B - 1
	c.B = b
	c.bus.Out(c.BC(), n) // port write using BC after B is decremented
	k := int(n) + int(c.L)
	c.F = ioBlockFlags(n, b, k)
}

func (c *CPU) otirBlock(step int) {
	c.outBlock(step)
	if c.B != 0 {
		c.PC -= 2
		c.tick(21)
	} else {
		c.tick(16)
	}
}
