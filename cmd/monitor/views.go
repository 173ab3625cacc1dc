package main

import (
	"fmt"
	"io"
	"strings"

	"gochip8/pkg/chip8"
	"gochip8/pkg/keypad"
)

// disasmWindow is how many instructions the disassembly view shows before PC.
const disasmWindow = 4

func writeRegisters(w io.Writer, vm *chip8.CPU) {
	for row := 0; row < chip8.NumRegisters; row += 4 {
		for col := row; col < row+4; col++ {
			fmt.Fprintf(w, "V%X=%02X ", col, vm.V[col])
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "PC=%03X I=%03X SP=%X\n", vm.PC, vm.I, vm.SP)
	fmt.Fprintf(w, "DT=%02X ST=%02X OP=%04X\n", vm.DelayTimer, vm.SoundTimer, vm.Opcode)

	var stack []string
	for i := 0; i < int(vm.SP) && i < chip8.StackDepth; i++ {
		stack = append(stack, fmt.Sprintf("%03X", vm.Stack[i]))
	}
	fmt.Fprintf(w, "stack [%s]\n", strings.Join(stack, " "))

	var held []string
	for k, down := range vm.Keypad {
		if down {
			held = append(held, keypad.Label(k))
		}
	}
	fmt.Fprintf(w, "keys  [%s]\n", strings.Join(held, " "))
}

// disasmLines lists count instructions starting disasmWindow words before
// PC, marking the one at PC.
func disasmLines(vm *chip8.CPU, count int) []string {
	start := int(vm.PC) - disasmWindow*2
	if start < 0 {
		start = 0
	}
	lines := make([]string, 0, count)
	for addr := start; len(lines) < count; addr += 2 {
		hi := vm.Memory[addr&(chip8.MemorySize-1)]
		lo := vm.Memory[(addr+1)&(chip8.MemorySize-1)]
		word := uint16(hi)<<8 | uint16(lo)
		marker := "  "
		if addr == int(vm.PC) {
			marker = "> "
		}
		lines = append(lines, fmt.Sprintf("%s%03X: %04X  %s", marker, addr&(chip8.MemorySize-1), word, chip8.Disassemble(word)))
	}
	return lines
}
