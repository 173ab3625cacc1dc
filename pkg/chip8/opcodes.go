package chip8

type handler func(c *CPU)

var (
	// primary is indexed by the leading nibble of the instruction word.
	primary [16]handler

	// Secondary tables. Slots without an instruction hold opNull.
	table0 [16]handler  // 0x00E_, trailing nibble
	table8 [16]handler  // 0x8xy_, trailing nibble
	tableE [16]handler  // 0xEx__, trailing nibble
	tableF [256]handler // 0xFx__, trailing byte
)

func init() {
	primary = [16]handler{
		0x0: dispatch0,
		0x1: op1nnn,
		0x2: op2nnn,
		0x3: op3xkk,
		0x4: op4xkk,
		0x5: op5xy0,
		0x6: op6xkk,
		0x7: op7xkk,
		0x8: dispatch8,
		0x9: op9xy0,
		0xA: opAnnn,
		0xB: opBnnn,
		0xC: opCxkk,
		0xD: opDxyn,
		0xE: dispatchE,
		0xF: dispatchF,
	}

	for i := range table0 {
		table0[i] = opNull
		table8[i] = opNull
		tableE[i] = opNull
	}
	for i := range tableF {
		tableF[i] = opNull
	}

	table0[0x0] = op00E0
	table0[0xE] = op00EE

	table8[0x0] = op8xy0
	table8[0x1] = op8xy1
	table8[0x2] = op8xy2
	table8[0x3] = op8xy3
	table8[0x4] = op8xy4
	table8[0x5] = op8xy5
	table8[0x6] = op8xy6
	table8[0x7] = op8xy7
	table8[0xE] = op8xyE

	tableE[0x1] = opExA1
	tableE[0xE] = opEx9E

	tableF[0x07] = opFx07
	tableF[0x0A] = opFx0A
	tableF[0x15] = opFx15
	tableF[0x18] = opFx18
	tableF[0x1E] = opFx1E
	tableF[0x29] = opFx29
	tableF[0x33] = opFx33
	tableF[0x55] = opFx55
	tableF[0x65] = opFx65
}

func dispatch0(c *CPU) { table0[c.Opcode&0x000F](c) }
func dispatch8(c *CPU) { table8[c.Opcode&0x000F](c) }
func dispatchE(c *CPU) { tableE[c.Opcode&0x000F](c) }
func dispatchF(c *CPU) { tableF[c.Opcode&0x00FF](c) }

// opNull is the handler for every unassigned encoding.
func opNull(*CPU) {}

// Operand fields of the current instruction word.

func (c *CPU) x() uint8    { return uint8((c.Opcode & 0x0F00) >> 8) }
func (c *CPU) y() uint8    { return uint8((c.Opcode & 0x00F0) >> 4) }
func (c *CPU) kk() uint8   { return uint8(c.Opcode & 0x00FF) }
func (c *CPU) nnn() uint16 { return c.Opcode & 0x0FFF }
func (c *CPU) n() uint8    { return uint8(c.Opcode & 0x000F) }
