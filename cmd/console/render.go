package main

import (
	"strings"

	"gochip8/pkg/chip8"
)

const (
	cursorHome  = "\x1b[H"
	clearScreen = "\x1b[2J"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
	clearLine   = "\x1b[K"
)

// renderFrame returns the display followed by a status line, ready to be
// written to a terminal in raw mode.
func renderFrame(vm *chip8.CPU, scale int, status string) string {
	return cursorHome + strings.Join(vm.TextLines(scale), "\r\n") + "\r\n" + status + clearLine
}

// fitScale shrinks scale until the display fits a cols×rows terminal,
// keeping one row for the status line. It never returns less than 1.
func fitScale(scale, cols, rows int) int {
	for scale > 1 && (chip8.VideoWidth*scale > cols || (chip8.VideoHeight*scale+1)/2+1 > rows) {
		scale--
	}
	return scale
}
