package chip8

import "math/rand/v2"

// 00E0 CLS
func op00E0(c *CPU) {
	c.Video = [VideoWidth * VideoHeight]uint32{}
}

// 00EE RET
func op00EE(c *CPU) {
	c.SP--
	c.PC = c.Stack[c.SP%StackDepth]
}

// 1nnn JP addr
func op1nnn(c *CPU) {
	c.PC = c.nnn()
}

// 2nnn CALL addr
func op2nnn(c *CPU) {
	c.Stack[c.SP%StackDepth] = c.PC
	c.SP++
	c.PC = c.nnn()
}

// 3xkk SE Vx, byte
func op3xkk(c *CPU) {
	if c.V[c.x()] == c.kk() {
		c.PC += 2
	}
}

// 4xkk SNE Vx, byte
func op4xkk(c *CPU) {
	if c.V[c.x()] != c.kk() {
		c.PC += 2
	}
}

// 5xy0 SE Vx, Vy
func op5xy0(c *CPU) {
	if c.V[c.x()] == c.V[c.y()] {
		c.PC += 2
	}
}

// 6xkk LD Vx, byte
func op6xkk(c *CPU) {
	c.V[c.x()] = c.kk()
}

// 7xkk ADD Vx, byte
func op7xkk(c *CPU) {
	c.V[c.x()] += c.kk()
}

// 8xy0 LD Vx, Vy
func op8xy0(c *CPU) {
	c.V[c.x()] = c.V[c.y()]
}

// 8xy1 OR Vx, Vy
func op8xy1(c *CPU) {
	c.V[c.x()] |= c.V[c.y()]
}

// 8xy2 AND Vx, Vy
func op8xy2(c *CPU) {
	c.V[c.x()] &= c.V[c.y()]
}

// 8xy3 XOR Vx, Vy
func op8xy3(c *CPU) {
	c.V[c.x()] ^= c.V[c.y()]
}

// 8xy4 ADD Vx, Vy. VF = carry.
func op8xy4(c *CPU) {
	x, y := c.x(), c.y()
	sum := uint16(c.V[x]) + uint16(c.V[y])
	c.V[RegF] = boolToFlag(sum > 0xFF)
	c.V[x] = uint8(sum)
}

// 8xy5 SUB Vx, Vy. VF = not borrow.
func op8xy5(c *CPU) {
	x, y := c.x(), c.y()
	c.V[RegF] = boolToFlag(c.V[x] > c.V[y])
	c.V[x] -= c.V[y]
}

// 8xy6 SHR Vx. VF = bit shifted out.
func op8xy6(c *CPU) {
	x := c.x()
	c.V[RegF] = c.V[x] & 0x01
	c.V[x] >>= 1
}

// 8xy7 SUBN Vx, Vy. VF = not borrow.
func op8xy7(c *CPU) {
	x, y := c.x(), c.y()
	c.V[RegF] = boolToFlag(c.V[y] > c.V[x])
	c.V[x] = c.V[y] - c.V[x]
}

// 8xyE SHL Vx. VF = bit shifted out.
func op8xyE(c *CPU) {
	x := c.x()
	c.V[RegF] = (c.V[x] & 0x80) >> 7
	c.V[x] <<= 1
}

// 9xy0 SNE Vx, Vy
func op9xy0(c *CPU) {
	if c.V[c.x()] != c.V[c.y()] {
		c.PC += 2
	}
}

// Annn LD I, addr
func opAnnn(c *CPU) {
	c.I = c.nnn()
}

// Bnnn JP V0, addr
func opBnnn(c *CPU) {
	c.PC = uint16(c.V[0]) + c.nnn()
}

// Cxkk RND Vx, byte
func opCxkk(c *CPU) {
	var b uint8
	if c.Rand != nil {
		b = uint8(c.Rand.UintN(256))
	} else {
		b = uint8(rand.UintN(256))
	}
	c.V[c.x()] = b & c.kk()
}

// Dxyn DRW Vx, Vy, nibble. VF = collision.
func opDxyn(c *CPU) {
	wrapY := VideoWidth
	if c.Quirks.WrapVerticalByHeight {
		wrapY = VideoHeight
	}

	originX := int(c.V[c.x()]) % VideoWidth
	originY := int(c.V[c.y()]) % wrapY
	height := int(c.n())

	c.V[RegF] = 0

	for row := 0; row < height; row++ {
		sprite := c.read(c.I + uint16(row))
		py := (originY + row) % wrapY
		if py >= VideoHeight {
			// Rows wrapped by the width modulus can land below the screen.
			continue
		}
		for col := 0; col < 8; col++ {
			if sprite&(0x80>>col) == 0 {
				continue
			}
			px := (originX + col) % VideoWidth
			pixel := &c.Video[py*VideoWidth+px]
			if *pixel == PixelOn {
				c.V[RegF] = 1
			}
			*pixel ^= PixelOn
		}
	}
}

// Ex9E SKP Vx
func opEx9E(c *CPU) {
	if c.Keypad[c.V[c.x()]%NumKeys] {
		c.PC += 2
	}
}

// ExA1 SKNP Vx
func opExA1(c *CPU) {
	if !c.Keypad[c.V[c.x()]%NumKeys] {
		c.PC += 2
	}
}

// Fx07 LD Vx, DT
func opFx07(c *CPU) {
	c.V[c.x()] = c.DelayTimer
}

// Fx0A LD Vx, K. Without a pressed key the instruction runs again next step.
func opFx0A(c *CPU) {
	for k, pressed := range c.Keypad {
		if pressed {
			c.V[c.x()] = uint8(k)
			return
		}
	}
	c.PC -= 2
}

// Fx15 LD DT, Vx
func opFx15(c *CPU) {
	c.DelayTimer = c.V[c.x()]
}

// Fx18 LD ST, Vx
func opFx18(c *CPU) {
	c.SoundTimer = c.V[c.x()]
}

// Fx1E ADD I, Vx
func opFx1E(c *CPU) {
	c.I += uint16(c.V[c.x()])
}

// Fx29 LD F, Vx
func opFx29(c *CPU) {
	c.I = GlyphAddress(c.V[c.x()])
}

// Fx33 LD B, Vx
func opFx33(c *CPU) {
	value := c.V[c.x()]
	c.write(c.I+2, value%10)
	value /= 10
	c.write(c.I+1, value%10)
	value /= 10
	c.write(c.I, value%10)
}

// Fx55 LD [I], Vx
func opFx55(c *CPU) {
	last := uint16(c.x())
	for i := uint16(0); i <= last; i++ {
		c.write(c.I+i, c.V[i])
	}
}

// Fx65 LD Vx, [I]
func opFx65(c *CPU) {
	last := uint16(c.x())
	for i := uint16(0); i <= last; i++ {
		c.V[i] = c.read(c.I + i)
	}
}

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
