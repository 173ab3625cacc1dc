package chip8

import "fmt"

// Disassemble renders one instruction word in the syntax accepted by pkg/asm.
// Only canonical encodings get a mnemonic; any other word, including ones the
// dispatcher would still route to a handler, is shown as a .WORD directive.
func Disassemble(word uint16) string {
	x := (word & 0x0F00) >> 8
	y := (word & 0x00F0) >> 4
	n := word & 0x000F
	kk := word & 0x00FF
	nnn := word & 0x0FFF

	switch word >> 12 {
	case 0x0:
		switch word {
		case 0x00E0:
			return "CLS"
		case 0x00EE:
			return "RET"
		}
	case 0x1:
		return fmt.Sprintf("JP 0x%03X", nnn)
	case 0x2:
		return fmt.Sprintf("CALL 0x%03X", nnn)
	case 0x3:
		return fmt.Sprintf("SE V%X, 0x%02X", x, kk)
	case 0x4:
		return fmt.Sprintf("SNE V%X, 0x%02X", x, kk)
	case 0x5:
		if n == 0 {
			return fmt.Sprintf("SE V%X, V%X", x, y)
		}
	case 0x6:
		return fmt.Sprintf("LD V%X, 0x%02X", x, kk)
	case 0x7:
		return fmt.Sprintf("ADD V%X, 0x%02X", x, kk)
	case 0x8:
		// SHR and SHL keep Vy so the word survives a reassembly.
		if name, ok := aluNames[n]; ok {
			return fmt.Sprintf("%s V%X, V%X", name, x, y)
		}
	case 0x9:
		if n == 0 {
			return fmt.Sprintf("SNE V%X, V%X", x, y)
		}
	case 0xA:
		return fmt.Sprintf("LD I, 0x%03X", nnn)
	case 0xB:
		return fmt.Sprintf("JP V0, 0x%03X", nnn)
	case 0xC:
		return fmt.Sprintf("RND V%X, 0x%02X", x, kk)
	case 0xD:
		return fmt.Sprintf("DRW V%X, V%X, %d", x, y, n)
	case 0xE:
		switch kk {
		case 0x9E:
			return fmt.Sprintf("SKP V%X", x)
		case 0xA1:
			return fmt.Sprintf("SKNP V%X", x)
		}
	case 0xF:
		if format, ok := fxFormats[kk]; ok {
			return fmt.Sprintf(format, x)
		}
	}
	return fmt.Sprintf(".WORD 0x%04X", word)
}

var aluNames = map[uint16]string{
	0x0: "LD",
	0x1: "OR",
	0x2: "AND",
	0x3: "XOR",
	0x4: "ADD",
	0x5: "SUB",
	0x6: "SHR",
	0x7: "SUBN",
	0xE: "SHL",
}

var fxFormats = map[uint16]string{
	0x07: "LD V%X, DT",
	0x0A: "LD V%X, K",
	0x15: "LD DT, V%X",
	0x18: "LD ST, V%X",
	0x1E: "ADD I, V%X",
	0x29: "LD F, V%X",
	0x33: "LD B, V%X",
	0x55: "LD [I], V%X",
	0x65: "LD V%X, [I]",
}
