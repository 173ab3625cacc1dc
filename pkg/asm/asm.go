package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"gochip8/pkg/chip8"
)

// Instructions whose only operand is an address.
var addressOps = map[string]uint16{
	"SYS":  0x0000,
	"CALL": 0x2000,
}

// Fx__ instructions taking a single register, keyed by their trailing byte.
var fxLoadFrom = map[string]uint16{
	"DT":  0x07,
	"K":   0x0A,
	"[I]": 0x65,
}

var fxLoadTo = map[string]uint16{
	"DT":  0x15,
	"ST":  0x18,
	"F":   0x29,
	"B":   0x33,
	"[I]": 0x55,
}

// Register-register ALU instructions, keyed by the 8xy_ trailing nibble.
var aluOps = map[string]uint16{
	"OR":   0x1,
	"AND":  0x2,
	"XOR":  0x3,
	"SUB":  0x5,
	"SUBN": 0x7,
}

var keyOps = map[string]uint16{
	"SKP":  0x9E,
	"SKNP": 0xA1,
}

var reservedOperands = map[string]bool{
	"I": true, "DT": true, "ST": true, "K": true, "F": true, "B": true,
}

type Assembler struct {
	labels map[string]uint16
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]uint16),
	}
}

// Assemble translates source into a program image meant to be loaded at
// chip8.ProgramStart. The source map is keyed by absolute load address.
func Assemble(code string) ([]byte, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]byte, map[uint16]int, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

func (a *Assembler) pass1(lines []string) error {
	address := uint32(chip8.ProgramStart)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			if address >= chip8.MemorySize {
				return fmt.Errorf("label '%s' on line %d points past addressable memory", lbl, lineNo)
			}
			key := normalizeLabel(lbl)
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			a.labels[key] = uint16(address)
		}

		if p.mnemonic == "" {
			continue
		}

		var length uint32
		switch p.mnemonic {
		case ".ORG":
			target, err := parseOrigin(p, address)
			if err != nil {
				return err
			}
			address = target
			continue
		case ".BYTE":
			if len(p.operands) == 0 {
				return fmt.Errorf(".BYTE expects at least one operand on line %d", lineNo)
			}
			length = uint32(len(p.operands))
		case ".WORD":
			if len(p.operands) == 0 {
				return fmt.Errorf(".WORD expects at least one operand on line %d", lineNo)
			}
			length = uint32(2 * len(p.operands))
		default:
			if !isMnemonic(p.mnemonic) {
				return fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
			}
			length = 2
		}

		if address+length > chip8.MemorySize {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
		address += length
	}

	return nil
}

func (a *Assembler) pass2(lines []string) ([]byte, map[uint16]int, error) {
	program := make([]byte, 0)
	sourceMap := make(map[uint16]int)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}

		if p.mnemonic == "" {
			continue
		}

		address := uint32(chip8.ProgramStart + len(program))

		switch p.mnemonic {
		case ".ORG":
			target, err := parseOrigin(p, address)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, make([]byte, target-address)...)
			continue
		case ".BYTE":
			sourceMap[uint16(address)] = lineNo
			for _, op := range p.operands {
				val, err := a.parseImmediate(op, lineNo, 0xFF)
				if err != nil {
					return nil, nil, err
				}
				program = append(program, byte(val))
			}
			continue
		case ".WORD":
			sourceMap[uint16(address)] = lineNo
			for _, op := range p.operands {
				val, err := a.parseImmediate(op, lineNo, 0xFFFF)
				if err != nil {
					return nil, nil, err
				}
				program = append(program, byte(val>>8), byte(val&0xFF))
			}
			continue
		}

		sourceMap[uint16(address)] = lineNo
		word, err := a.encode(p)
		if err != nil {
			return nil, nil, err
		}
		program = append(program, byte(word>>8), byte(word&0xFF))
	}

	return program, sourceMap, nil
}

// encode builds the instruction word for one mnemonic line.
func (a *Assembler) encode(p parsedLine) (uint16, error) {
	ops := p.operands
	lineNo := p.lineNo

	switch p.mnemonic {
	case "CLS", "RET":
		if len(ops) != 0 {
			return 0, fmt.Errorf("%s expects 0 operands on line %d", p.mnemonic, lineNo)
		}
		if p.mnemonic == "CLS" {
			return 0x00E0, nil
		}
		return 0x00EE, nil

	case "SYS", "CALL":
		if len(ops) != 1 {
			return 0, fmt.Errorf("%s expects 1 operand on line %d", p.mnemonic, lineNo)
		}
		addr, err := a.parseImmediate(ops[0], lineNo, 0xFFF)
		if err != nil {
			return 0, err
		}
		return addressOps[p.mnemonic] | addr, nil

	case "JP":
		switch len(ops) {
		case 1:
			addr, err := a.parseImmediate(ops[0], lineNo, 0xFFF)
			if err != nil {
				return 0, err
			}
			return 0x1000 | addr, nil
		case 2:
			if strings.ToUpper(ops[0]) != "V0" {
				return 0, fmt.Errorf("JP with offset requires V0 on line %d", lineNo)
			}
			addr, err := a.parseImmediate(ops[1], lineNo, 0xFFF)
			if err != nil {
				return 0, err
			}
			return 0xB000 | addr, nil
		}
		return 0, fmt.Errorf("JP expects 1 or 2 operands on line %d", lineNo)

	case "SE", "SNE":
		if len(ops) != 2 {
			return 0, fmt.Errorf("%s expects 2 operands on line %d", p.mnemonic, lineNo)
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		if y, ok := registerIndex(ops[1]); ok {
			if p.mnemonic == "SE" {
				return 0x5000 | x<<8 | y<<4, nil
			}
			return 0x9000 | x<<8 | y<<4, nil
		}
		kk, err := a.parseImmediate(ops[1], lineNo, 0xFF)
		if err != nil {
			return 0, err
		}
		if p.mnemonic == "SE" {
			return 0x3000 | x<<8 | kk, nil
		}
		return 0x4000 | x<<8 | kk, nil

	case "LD":
		return a.encodeLoad(p)

	case "ADD":
		if len(ops) != 2 {
			return 0, fmt.Errorf("ADD expects 2 operands on line %d", lineNo)
		}
		if strings.ToUpper(ops[0]) == "I" {
			x, err := parseRegister(ops[1], lineNo)
			if err != nil {
				return 0, err
			}
			return 0xF01E | x<<8, nil
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		if y, ok := registerIndex(ops[1]); ok {
			return 0x8004 | x<<8 | y<<4, nil
		}
		kk, err := a.parseImmediate(ops[1], lineNo, 0xFF)
		if err != nil {
			return 0, err
		}
		return 0x7000 | x<<8 | kk, nil

	case "OR", "AND", "XOR", "SUB", "SUBN":
		if len(ops) != 2 {
			return 0, fmt.Errorf("%s expects 2 operands on line %d", p.mnemonic, lineNo)
		}
		x, y, err := parseRegisterPair(ops[0], ops[1], lineNo)
		if err != nil {
			return 0, err
		}
		return 0x8000 | x<<8 | y<<4 | aluOps[p.mnemonic], nil

	case "SHR", "SHL":
		if len(ops) != 1 && len(ops) != 2 {
			return 0, fmt.Errorf("%s expects 1 or 2 operands on line %d", p.mnemonic, lineNo)
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		var y uint16
		if len(ops) == 2 {
			if y, err = parseRegister(ops[1], lineNo); err != nil {
				return 0, err
			}
		}
		if p.mnemonic == "SHR" {
			return 0x8006 | x<<8 | y<<4, nil
		}
		return 0x800E | x<<8 | y<<4, nil

	case "RND":
		if len(ops) != 2 {
			return 0, fmt.Errorf("RND expects 2 operands on line %d", lineNo)
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		kk, err := a.parseImmediate(ops[1], lineNo, 0xFF)
		if err != nil {
			return 0, err
		}
		return 0xC000 | x<<8 | kk, nil

	case "DRW":
		if len(ops) != 3 {
			return 0, fmt.Errorf("DRW expects 3 operands on line %d", lineNo)
		}
		x, y, err := parseRegisterPair(ops[0], ops[1], lineNo)
		if err != nil {
			return 0, err
		}
		n, err := a.parseImmediate(ops[2], lineNo, 0xF)
		if err != nil {
			return 0, err
		}
		return 0xD000 | x<<8 | y<<4 | n, nil

	case "SKP", "SKNP":
		if len(ops) != 1 {
			return 0, fmt.Errorf("%s expects 1 operand on line %d", p.mnemonic, lineNo)
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		return 0xE000 | x<<8 | keyOps[p.mnemonic], nil
	}

	return 0, fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
}

// encodeLoad handles every form of LD.
func (a *Assembler) encodeLoad(p parsedLine) (uint16, error) {
	ops := p.operands
	lineNo := p.lineNo
	if len(ops) != 2 {
		return 0, fmt.Errorf("LD expects 2 operands on line %d", lineNo)
	}
	dst := strings.ToUpper(ops[0])
	src := strings.ToUpper(ops[1])

	if dst == "I" {
		addr, err := a.parseImmediate(ops[1], lineNo, 0xFFF)
		if err != nil {
			return 0, err
		}
		return 0xA000 | addr, nil
	}

	if low, ok := fxLoadTo[dst]; ok {
		x, err := parseRegister(ops[1], lineNo)
		if err != nil {
			return 0, err
		}
		return 0xF000 | x<<8 | low, nil
	}

	x, err := parseRegister(ops[0], lineNo)
	if err != nil {
		return 0, err
	}
	if low, ok := fxLoadFrom[src]; ok {
		return 0xF000 | x<<8 | low, nil
	}
	if y, ok := registerIndex(src); ok {
		return 0x8000 | x<<8 | y<<4, nil
	}
	kk, err := a.parseImmediate(ops[1], lineNo, 0xFF)
	if err != nil {
		return 0, err
	}
	return 0x6000 | x<<8 | kk, nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t") {
			break
		}

		if !isIdentifier(beforeColon) || isReserved(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	fields := strings.Fields(normalizeInstructionText(line))
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		p.operands = fields[1:]
	}

	if p.mnemonic == ".ORG" && len(p.operands) != 1 {
		return p, fmt.Errorf(".ORG expects exactly one operand on line %d", lineNo)
	}

	return p, nil
}

// parseOrigin validates a .ORG line against the current address.
func parseOrigin(p parsedLine, address uint32) (uint32, error) {
	target, err := strconv.ParseUint(p.operands[0], 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid .ORG value on line %d: %s", p.lineNo, p.operands[0])
	}
	if target >= chip8.MemorySize || target < chip8.ProgramStart {
		return 0, fmt.Errorf(".ORG out of range on line %d: %s", p.lineNo, p.operands[0])
	}
	if uint32(target) < address {
		return 0, fmt.Errorf("cannot move origin backward on line %d", p.lineNo)
	}
	return uint32(target), nil
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

func normalizeInstructionText(line string) string {
	return strings.ReplaceAll(line, ",", " ")
}

// registerIndex reports whether token names one of V0-VF.
func registerIndex(token string) (uint16, bool) {
	if len(token) != 2 || (token[0] != 'V' && token[0] != 'v') {
		return 0, false
	}
	n, err := strconv.ParseUint(token[1:], 16, 8)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}

func parseRegister(token string, lineNo int) (uint16, error) {
	if r, ok := registerIndex(token); ok {
		return r, nil
	}
	return 0, fmt.Errorf("invalid register '%s' on line %d", token, lineNo)
}

func parseRegisterPair(a, b string, lineNo int) (uint16, uint16, error) {
	x, err := parseRegister(a, lineNo)
	if err != nil {
		return 0, 0, err
	}
	y, err := parseRegister(b, lineNo)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func (a *Assembler) parseImmediate(token string, lineNo int, limit uint64) (uint16, error) {
	if value, err := strconv.ParseUint(token, 0, 32); err == nil {
		if value > limit {
			return 0, fmt.Errorf("immediate out of range on line %d: %s", lineNo, token)
		}
		return uint16(value), nil
	}

	if addr, ok := a.labels[normalizeLabel(token)]; ok {
		if uint64(addr) > limit {
			return 0, fmt.Errorf("label '%s' out of range on line %d", token, lineNo)
		}
		return addr, nil
	}

	if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	}

	return 0, fmt.Errorf("invalid immediate '%s' on line %d", token, lineNo)
}

func isMnemonic(mnemonic string) bool {
	switch mnemonic {
	case "CLS", "RET", "SYS", "JP", "CALL", "SE", "SNE", "LD", "ADD",
		"OR", "AND", "XOR", "SUB", "SUBN", "SHR", "SHL", "RND", "DRW", "SKP", "SKNP":
		return true
	}
	return false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

// isReserved reports whether s would be read as a register or special operand.
func isReserved(s string) bool {
	if _, ok := registerIndex(s); ok {
		return true
	}
	return reservedOperands[strings.ToUpper(s)]
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}
