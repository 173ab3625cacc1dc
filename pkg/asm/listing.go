package asm

import (
	"fmt"
	"strings"

	"gochip8/pkg/chip8"
)

// ListingLine is one decoded word of a program image.
type ListingLine struct {
	Address uint16
	Word    uint16
	Text    string
}

// Listing decodes program as loaded at chip8.ProgramStart, one word per line.
// A trailing odd byte is emitted as a .BYTE directive.
func Listing(program []byte) []ListingLine {
	lines := make([]ListingLine, 0, (len(program)+1)/2)
	for i := 0; i+1 < len(program); i += 2 {
		word := uint16(program[i])<<8 | uint16(program[i+1])
		lines = append(lines, ListingLine{
			Address: uint16(chip8.ProgramStart + i),
			Word:    word,
			Text:    chip8.Disassemble(word),
		})
	}
	if len(program)%2 == 1 {
		last := program[len(program)-1]
		lines = append(lines, ListingLine{
			Address: uint16(chip8.ProgramStart + len(program) - 1),
			Word:    uint16(last),
			Text:    fmt.Sprintf(".BYTE 0x%02X", last),
		})
	}
	return lines
}

// FormatListing renders a listing with address and raw word columns.
func FormatListing(lines []ListingLine) string {
	var sb strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&sb, "%03X: %04X  %s\n", l.Address, l.Word, l.Text)
	}
	return sb.String()
}
