package chip8

import (
	"strings"

	"gochip8/pkg/grid"
)

// halfBlocks is indexed by top<<1 | bottom.
var halfBlocks = [4]string{" ", "▄", "▀", "█"}

// TextLines renders the display scaled by scale as lines of half-block
// characters, two pixel rows per line.
func (c *CPU) TextLines(scale int) []string {
	if scale < 1 {
		scale = 1
	}
	width := VideoWidth * scale
	height := VideoHeight * scale

	lit := func(x, y int) int {
		if y >= height || c.Video[grid.Index(x/scale, y/scale, VideoWidth)] != PixelOn {
			return 0
		}
		return 1
	}

	lines := make([]string, 0, (height+1)/2)
	var sb strings.Builder
	for y := 0; y < height; y += 2 {
		sb.Reset()
		for x := 0; x < width; x++ {
			sb.WriteString(halfBlocks[lit(x, y)<<1|lit(x, y+1)])
		}
		lines = append(lines, sb.String())
	}
	return lines
}
