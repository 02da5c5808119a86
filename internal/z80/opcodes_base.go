package z80

// rpTable indexes BC, DE, HL(index), SP by the 2-bit p field used in
// LD rp,nn / INC rp / DEC rp / ADD HL,rp.
const (
	rpBC = 0
	rpDE = 1
	rpHL = 2
	rpSP = 3
)

func (c *CPU) rpValue(p byte) uint16 {
	switch p {
	case rpBC:
		return c.BC()
	case rpDE:
		return c.DE()
	case rpHL:
		return c.indexReg()
	default:
		return c.SP
	}
}

func (c *CPU) setRPValue(p byte, v uint16) {
	switch p {
	case rpBC:
		c.SetBC(v)
	case rpDE:
		c.SetDE(v)
	case rpHL:
		c.setIndexReg(v)
	default:
		c.SP = v
	}
}

// rp2Value/setRP2Value use the PUSH/POP register-pair ordering (BC, DE,
// HL/index, AF).
func (c *CPU) rp2Value(p byte) uint16 {
	if p == 3 {
		return c.AF()
	}
	return c.rpValue(p)
}

func (c *CPU) setRP2Value(p byte, v uint16) {
	if p == 3 {
		c.SetAF(v)
		return
	}
	c.setRPValue(p, v)
}

func (c *CPU) push16(v uint16) {
	c.SP--
	c.bus.Write(c.SP, byte(v>>8))
	c.SP--
	c.bus.Write(c.SP, byte(v))
}

func (c *CPU) pop16() uint16 {
	lo := c.bus.Read(c.SP)
	c.SP++
	hi := c.bus.Read(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) condTrue(cc byte) bool {
	switch cc {
	case 0:
		return !c.flag(FlagZ)
	case 1:
		return c.flag(FlagZ)
	case 2:
		return !c.flag(FlagC)
	case 3:
		return c.flag(FlagC)
	case 4:
		return !c.flag(FlagPV)
	case 5:
		return c.flag(FlagPV)
	case 6:
		return !c.flag(FlagS)
	default:
		return c.flag(FlagS)
	}
}

func (c *CPU) jr(offset int8) {
	c.PC = uint16(int32(c.PC) + int32(offset))
	c.WZ = c.PC
}

// prefixOverhead is the flat extra cost a DD/FD prefix byte adds on top of
// an opcode's normal unprefixed T-state total. Real hardware spends exactly
// one more M1 fetch (4 T-states) whether or not the prefixed opcode ends up
// touching the index register; genuine (IX+d)/(IY+d) memory access adds a
// further 8 T-states, charged separately by effAddr.
func (c *CPU) prefixOverhead() int {
	if c.prefixActive != prefixNone {
		return 4
	}
	return 0
}

func (c *CPU) initBaseOps() {
	ops := &c.baseOps

	ops[0x00] = func(c *CPU) { c.tick(4 + c.prefixOverhead()) } // NOP
	ops[0x08] = func(c *CPU) {                                  // EX AF,AF'
		a, f := c.AF(), c.AF2()
		c.SetAF(f)
		c.SetAF2(a)
		c.tick(4 + c.prefixOverhead())
	}
	ops[0x10] = func(c *CPU) { // DJNZ d
		c.B--
		d := int8(c.fetchByte())
		if c.B != 0 {
			c.jr(d)
			c.tick(13)
		} else {
			c.tick(8)
		}
	}
	ops[0x18] = func(c *CPU) { // JR d
		d := int8(c.fetchByte())
		c.jr(d)
		c.tick(12)
	}
	for cc := byte(0); cc < 4; cc++ {
		cc := cc
		ops[0x20+cc*8] = func(c *CPU) { // JR cc,d
			d := int8(c.fetchByte())
			if c.condTrue(cc) {
				c.jr(d)
				c.tick(12)
			} else {
				c.tick(7)
			}
		}
	}

	for p := byte(0); p < 4; p++ {
		p := p
		ops[p<<4|0x01] = func(c *CPU) { // LD rp,nn
			c.setRPValue(p, c.fetchWord())
			c.tick(10 + c.prefixOverhead())
		}
		ops[p<<4|0x03] = func(c *CPU) { // INC rp
			c.setRPValue(p, c.rpValue(p)+1)
			c.tick(6 + c.prefixOverhead())
		}
		ops[p<<4|0x0B] = func(c *CPU) { // DEC rp
			c.setRPValue(p, c.rpValue(p)-1)
			c.tick(6 + c.prefixOverhead())
		}
		ops[p<<4|0x09] = func(c *CPU) { // ADD HL,rp
			c.setIndexReg(c.addHL16(c.indexReg(), c.rpValue(p)))
			c.tick(11 + c.prefixOverhead())
		}
	}

	ops[0x02] = func(c *CPU) { c.bus.Write(c.BC(), c.A); c.WZ = uint16(c.A)<<8 | (c.BC()+1)&0xFF; c.tick(7) }
	ops[0x0A] = func(c *CPU) { c.WZ = c.BC() + 1; c.A = c.bus.Read(c.BC()); c.tick(7) }
	ops[0x12] = func(c *CPU) { c.bus.Write(c.DE(), c.A); c.WZ = uint16(c.A)<<8 | (c.DE()+1)&0xFF; c.tick(7) }
	ops[0x1A] = func(c *CPU) { c.WZ = c.DE() + 1; c.A = c.bus.Read(c.DE()); c.tick(7) }
	ops[0x22] = func(c *CPU) { // LD (nn),HL
		addr := c.fetchWord()
		v := c.indexReg()
		c.bus.Write(addr, byte(v))
		c.bus.Write(addr+1, byte(v>>8))
		c.WZ = addr + 1
		c.tick(16 + c.prefixOverhead())
	}
	ops[0x2A] = func(c *CPU) { // LD HL,(nn)
		addr := c.fetchWord()
		lo := c.bus.Read(addr)
		hi := c.bus.Read(addr + 1)
		c.setIndexReg(uint16(hi)<<8 | uint16(lo))
		c.WZ = addr + 1
		c.tick(16 + c.prefixOverhead())
	}
	ops[0x32] = func(c *CPU) { addr := c.fetchWord(); c.bus.Write(addr, c.A); c.WZ = uint16(c.A)<<8 | (addr+1)&0xFF; c.tick(13) }
	ops[0x3A] = func(c *CPU) { addr := c.fetchWord(); c.WZ = addr + 1; c.A = c.bus.Read(addr); c.tick(13) }

	for y := byte(0); y < 8; y++ {
		y := y
		ops[y<<3|0x04] = func(c *CPU) { // INC r
			base := 4
			if isMemSlot(y) {
				base = 11
			}
			v := c.reg8(y)
			c.setReg8(y, c.inc8(v))
			c.tick(base + c.prefixOverhead())
		}
		ops[y<<3|0x05] = func(c *CPU) { // DEC r
			base := 4
			if isMemSlot(y) {
				base = 11
			}
			v := c.reg8(y)
			c.setReg8(y, c.dec8(v))
			c.tick(base + c.prefixOverhead())
		}
		ops[y<<3|0x06] = func(c *CPU) { // LD r,n
			base := 7
			if isMemSlot(y) {
				base = 10
			}
			if isMemSlot(y) && c.prefixActive != prefixNone {
				addr := c.effAddr()
				n := c.fetchByte()
				c.bus.Write(addr, n)
			} else {
				c.setReg8(y, c.fetchByte())
			}
			c.tick(base + c.prefixOverhead())
		}
	}

	ops[0x07] = func(c *CPU) { r, f := rlc8(c.A); c.A = r; c.F = f &^ (FlagS | FlagZ | FlagPV) | c.F&(FlagS|FlagZ|FlagPV); c.tick(4 + c.prefixOverhead()) }
	ops[0x0F] = func(c *CPU) { r, f := rrc8(c.A); c.A = r; c.F = f &^ (FlagS | FlagZ | FlagPV) | c.F&(FlagS|FlagZ|FlagPV); c.tick(4 + c.prefixOverhead()) }
	ops[0x17] = func(c *CPU) {
		carryIn := byte(0)
		if c.flag(FlagC) {
			carryIn = 1
		}
		r, f := rl8(c.A, carryIn)
		c.A = r
		c.F = f&^(FlagS|FlagZ|FlagPV) | c.F&(FlagS|FlagZ|FlagPV)
		c.tick(4 + c.prefixOverhead())
	}
	ops[0x1F] = func(c *CPU) {
		carryIn := byte(0)
		if c.flag(FlagC) {
			carryIn = 1
		}
		r, f := rr8(c.A, carryIn)
		c.A = r
		c.F = f&^(FlagS|FlagZ|FlagPV) | c.F&(FlagS|FlagZ|FlagPV)
		c.tick(4 + c.prefixOverhead())
	}
	ops[0x27] = func(c *CPU) { // DAA
		n := c.flag(FlagN)
		carry := c.flag(FlagC)
		half := c.flag(FlagH)
		word := daaTable[daaIndex(c.A, carry, half, n)]
		c.A = byte(word >> 8)
		c.F = byte(word)
		c.tick(4)
	}
	ops[0x2F] = func(c *CPU) { // CPL
		c.A = ^c.A
		c.F = c.F&(FlagS|FlagZ|FlagPV|FlagC) | FlagH | FlagN | c.A&(FlagY|FlagX)
		c.tick(4 + c.prefixOverhead())
	}
	ops[0x37] = func(c *CPU) { // SCF
		c.F = c.F&(FlagS|FlagZ|FlagPV) | FlagC | c.A&(FlagY|FlagX)
		c.tick(4 + c.prefixOverhead())
	}
	ops[0x3F] = func(c *CPU) { // CCF
		oldC := c.flag(FlagC)
		f := c.F & (FlagS | FlagZ | FlagPV)
		if !oldC {
			f |= FlagC
		}
		if oldC {
			f |= FlagH
		}
		f |= c.A & (FlagY | FlagX)
		c.F = f
		c.tick(4 + c.prefixOverhead())
	}

	// Q1: LD r,r' and HALT.
	for y := byte(0); y < 8; y++ {
		for x := byte(0); x < 8; x++ {
			y, x := y, x
			op := 0x40 | y<<3 | x
			if y == 6 && x == 6 {
				ops[op] = func(c *CPU) { c.Halted = true; c.PC--; c.tick(4 + c.prefixOverhead()) }
				continue
			}
			ops[op] = func(c *CPU) {
				base := 4
				if isMemSlot(y) || isMemSlot(x) {
					base = 7
				}
				c.setReg8(y, c.reg8(x))
				c.tick(base + c.prefixOverhead())
			}
		}
	}

	// Q2: ALU A,r.
	aluOps := [8]func(c *CPU, v byte){
		func(c *CPU, v byte) { c.add8(v, 0) },
		func(c *CPU, v byte) {
			carry := byte(0)
			if c.flag(FlagC) {
				carry = 1
			}
			c.add8(v, carry)
		},
		func(c *CPU, v byte) { c.sub8(v, 0, true) },
		func(c *CPU, v byte) {
			carry := byte(0)
			if c.flag(FlagC) {
				carry = 1
			}
			c.sub8(v, carry, true)
		},
		func(c *CPU, v byte) { c.and8(v) },
		func(c *CPU, v byte) { c.xor8(v) },
		func(c *CPU, v byte) { c.or8(v) },
		func(c *CPU, v byte) { c.sub8(v, 0, false) },
	}
	for a := byte(0); a < 8; a++ {
		for x := byte(0); x < 8; x++ {
			a, x := a, x
			ops[0x80|a<<3|x] = func(c *CPU) {
				base := 4
				if isMemSlot(x) {
					base = 7
				}
				aluOps[a](c, c.reg8(x))
				c.tick(base + c.prefixOverhead())
			}
		}
	}

	// Q3.
	for cc := byte(0); cc < 8; cc++ {
		cc := cc
		ops[0xC0|cc<<3] = func(c *CPU) { // RET cc
			if c.condTrue(cc) {
				c.PC = c.pop16()
				c.WZ = c.PC
				c.tick(11)
			} else {
				c.tick(5)
			}
		}
		ops[0xC2|cc<<3] = func(c *CPU) { // JP cc,nn
			addr := c.fetchWord()
			c.WZ = addr
			if c.condTrue(cc) {
				c.PC = addr
			}
			c.tick(10)
		}
		ops[0xC4|cc<<3] = func(c *CPU) { // CALL cc,nn
			addr := c.fetchWord()
			c.WZ = addr
			if c.condTrue(cc) {
				c.push16(c.PC)
				c.PC = addr
				c.tick(17)
			} else {
				c.tick(10)
			}
		}
		ops[0xC7|cc<<3] = func(c *CPU) { // RST — cc doubles as the 3-bit vector index
			vector := uint16(cc) * 8
			c.push16(c.PC)
			c.PC = vector
			c.WZ = vector
			c.tick(11)
		}
	}
	for p := byte(0); p < 4; p++ {
		p := p
		ops[0xC1|p<<4] = func(c *CPU) { c.setRP2Value(p, c.pop16()); c.tick(10 + c.prefixOverhead()) }
		ops[0xC5|p<<4] = func(c *CPU) { c.push16(c.rp2Value(p)); c.tick(11 + c.prefixOverhead()) }
	}
	ops[0xC3] = func(c *CPU) { addr := c.fetchWord(); c.PC = addr; c.WZ = addr; c.tick(10) }
	ops[0xC9] = func(c *CPU) { c.PC = c.pop16(); c.WZ = c.PC; c.tick(10) }
	ops[0xCD] = func(c *CPU) { addr := c.fetchWord(); c.WZ = addr; c.push16(c.PC); c.PC = addr; c.tick(17) }
	for a := byte(0); a < 8; a++ {
		a := a
		ops[0xC6|a<<3] = func(c *CPU) { aluOps[a](c, c.fetchByte()); c.tick(7) } // ALU A,n
	}
	ops[0xD3] = func(c *CPU) { // OUT (n),A
		n := c.fetchByte()
		port := uint16(c.A)<<8 | uint16(n)
		c.bus.Out(port, c.A)
		c.WZ = uint16(c.A)<<8 | (uint16(n)+1)&0xFF
		c.tick(11)
	}
	ops[0xDB] = func(c *CPU) { // IN A,(n)
		n := c.fetchByte()
		port := uint16(c.A)<<8 | uint16(n)
		c.A = c.bus.In(port)
		c.WZ = port + 1
		c.tick(11)
	}
	ops[0xD9] = func(c *CPU) { // EXX
		c.B, c.B2 = c.B2, c.B
		c.C, c.C2 = c.C2, c.C
		c.D, c.D2 = c.D2, c.D
		c.E, c.E2 = c.E2, c.E
		c.H, c.H2 = c.H2, c.H
		c.L, c.L2 = c.L2, c.L
		c.tick(4)
	}
	ops[0xE3] = func(c *CPU) { // EX (SP),HL
		lo := c.bus.Read(c.SP)
		hi := c.bus.Read(c.SP + 1)
		v := c.indexReg()
		c.bus.Write(c.SP, byte(v))
		c.bus.Write(c.SP+1, byte(v>>8))
		c.setIndexReg(uint16(hi)<<8 | uint16(lo))
		c.WZ = c.indexReg()
		c.tick(19 + c.prefixOverhead())
	}
	ops[0xE9] = func(c *CPU) { c.PC = c.indexReg(); c.tick(4 + c.prefixOverhead()) } // JP (HL)
	ops[0xEB] = func(c *CPU) {                                                      // EX DE,HL — never substituted by a DD/FD prefix
		d, h := c.DE(), c.HL()
		c.SetDE(h)
		c.SetHL(d)
		c.tick(4 + c.prefixOverhead())
	}
	ops[0xF3] = func(c *CPU) { c.IFF1, c.IFF2 = false, false; c.tick(4 + c.prefixOverhead()) }
	ops[0xFB] = func(c *CPU) { c.IFF1, c.IFF2 = true, true; c.eiPending = true; c.tick(4 + c.prefixOverhead()) }
	ops[0xF9] = func(c *CPU) { c.SP = c.indexReg(); c.tick(6 + c.prefixOverhead()) } // LD SP,HL
}
