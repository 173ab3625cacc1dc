package chip8

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"
)

const (
	MemorySize   = 4096
	ProgramStart = 0x200
	FontStart    = 0x050
	GlyphSize    = 5

	VideoWidth  = 64
	VideoHeight = 32

	NumRegisters = 16
	StackDepth   = 16
	NumKeys      = 16

	// RegF is the flag register written by arithmetic, shift and draw instructions.
	RegF = 0xF
)

const (
	PixelOff uint32 = 0x00000000
	PixelOn  uint32 = 0xFFFFFFFF
)

// Quirks switches off behaviour that is inherited from the reference
// interpreter. The zero value reproduces the reference bit for bit.
type Quirks struct {
	// WrapVerticalByHeight wraps sprite rows modulo the screen height
	// instead of the screen width.
	WrapVerticalByHeight bool
}

type CPU struct {
	V     [NumRegisters]uint8
	I     uint16
	PC    uint16
	SP    uint8
	Stack [StackDepth]uint16

	DelayTimer uint8
	SoundTimer uint8

	Memory [MemorySize]byte
	Video  [VideoWidth * VideoHeight]uint32

	// Keypad is written by the input front end between steps.
	Keypad [NumKeys]bool

	// Opcode is the instruction word of the most recent step.
	Opcode uint16

	Quirks Quirks

	// Rand feeds the RND instruction. NewCPU seeds it from the clock.
	Rand *rand.Rand

	// Trace, when set and enabled at debug level, receives one record per step.
	Trace *slog.Logger
}

// NewCPU returns a machine with the glyph table installed and PC at ProgramStart.
func NewCPU() *CPU {
	seed := uint64(time.Now().UnixNano())
	c := &CPU{
		Rand: rand.New(rand.NewPCG(seed, seed>>32|1)),
	}
	c.Reset()
	return c
}

// Reset returns every piece of machine state to its construction value.
// Quirks, Rand and Trace are kept.
func (c *CPU) Reset() {
	c.V = [NumRegisters]uint8{}
	c.I = 0
	c.PC = ProgramStart
	c.SP = 0
	c.Stack = [StackDepth]uint16{}
	c.DelayTimer = 0
	c.SoundTimer = 0
	c.Memory = [MemorySize]byte{}
	c.Video = [VideoWidth * VideoHeight]uint32{}
	c.Keypad = [NumKeys]bool{}
	c.Opcode = 0
	copy(c.Memory[FontStart:], fontset[:])
}

// Load copies program verbatim into memory at ProgramStart. Bytes that do
// not fit in the address space are dropped.
func (c *CPU) Load(program []byte) {
	copy(c.Memory[ProgramStart:], program)
}

// LoadROM reads the file at path and loads it. Memory is untouched when the
// file cannot be read.
func (c *CPU) LoadROM(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read rom %q: %w", path, err)
	}
	c.Load(data)
	return nil
}

// SetKey records the state of key k. Keys outside 0-15 are ignored.
func (c *CPU) SetKey(k int, pressed bool) {
	if k >= 0 && k < NumKeys {
		c.Keypad[k] = pressed
	}
}

// Pixel reports whether the pixel at (x, y) is on.
func (c *CPU) Pixel(x, y int) bool {
	if x < 0 || x >= VideoWidth || y < 0 || y >= VideoHeight {
		return false
	}
	return c.Video[y*VideoWidth+x] == PixelOn
}

func (c *CPU) read(addr uint16) byte {
	return c.Memory[addr&(MemorySize-1)]
}

func (c *CPU) write(addr uint16, val byte) {
	c.Memory[addr&(MemorySize-1)] = val
}

// Step fetches, decodes and executes one instruction, then ticks both timers.
func (c *CPU) Step() {
	c.Opcode = uint16(c.read(c.PC))<<8 | uint16(c.read(c.PC+1))

	if c.Trace != nil && c.Trace.Enabled(context.Background(), slog.LevelDebug) {
		c.Trace.Debug("exec",
			"pc", fmt.Sprintf("0x%03X", c.PC),
			"opcode", fmt.Sprintf("0x%04X", c.Opcode),
			"instr", Disassemble(c.Opcode),
		)
	}

	c.PC += 2

	primary[c.Opcode>>12](c)

	if c.DelayTimer > 0 {
		c.DelayTimer--
	}
	if c.SoundTimer > 0 {
		c.SoundTimer--
	}
}

// RunSteps executes n steps back to back.
func (c *CPU) RunSteps(n int) {
	for i := 0; i < n; i++ {
		c.Step()
	}
}
