package chip8

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
)

// loadWords writes instruction words big-endian starting at ProgramStart.
func loadWords(c *CPU, words ...uint16) {
	for i, w := range words {
		c.Memory[ProgramStart+i*2] = byte(w >> 8)
		c.Memory[ProgramStart+i*2+1] = byte(w & 0xFF)
	}
}

// newTestCPU returns a CPU with a fixed RNG seed.
func newTestCPU() *CPU {
	c := NewCPU()
	c.Rand = rand.New(rand.NewPCG(1, 2))
	return c
}

func TestNewCPU(t *testing.T) {
	c := NewCPU()

	if c.PC != ProgramStart {
		t.Errorf("PC: expected 0x%03X, got 0x%03X", ProgramStart, c.PC)
	}
	if c.SP != 0 || c.I != 0 {
		t.Errorf("SP/I: expected 0/0, got %d/%d", c.SP, c.I)
	}
	for i, b := range fontset {
		if c.Memory[FontStart+i] != b {
			t.Fatalf("font byte %d: expected 0x%02X, got 0x%02X", i, b, c.Memory[FontStart+i])
		}
	}
	if c.Memory[FontStart-1] != 0 || c.Memory[FontStart+len(fontset)] != 0 {
		t.Errorf("memory outside the glyph table should be zero")
	}
	for i, px := range c.Video {
		if px != PixelOff {
			t.Fatalf("Video[%d]: expected off, got 0x%08X", i, px)
		}
	}
	if c.Memory[FontStart] != 0xF0 || c.Memory[FontStart+5] != 0x20 {
		t.Errorf("glyph table: unexpected first bytes of 0 and 1")
	}
}

func TestLoad(t *testing.T) {
	c := NewCPU()
	c.Load([]byte{0xAB, 0xCD})
	if c.Memory[0x200] != 0xAB || c.Memory[0x201] != 0xCD {
		t.Errorf("Load: got 0x%02X 0x%02X", c.Memory[0x200], c.Memory[0x201])
	}
	if c.Memory[0x202] != 0 {
		t.Errorf("Load: byte past program should be zero, got 0x%02X", c.Memory[0x202])
	}

	// A zero-length program leaves memory untouched.
	before := c.Memory
	c.Load(nil)
	if c.Memory != before {
		t.Errorf("Load(nil) changed memory")
	}

	// Oversized programs are truncated at the end of memory.
	big := make([]byte, MemorySize)
	for i := range big {
		big[i] = 0x11
	}
	c.Load(big)
	if c.Memory[MemorySize-1] != 0x11 {
		t.Errorf("Load: last byte expected 0x11, got 0x%02X", c.Memory[MemorySize-1])
	}
}

func TestLoadROM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.ch8")
	if err := os.WriteFile(path, []byte{0x00, 0xE0}, 0644); err != nil {
		t.Fatal(err)
	}

	c := NewCPU()
	if err := c.LoadROM(path); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	if c.Memory[0x201] != 0xE0 {
		t.Errorf("LoadROM: expected 0xE0 at 0x201, got 0x%02X", c.Memory[0x201])
	}

	c2 := NewCPU()
	before := c2.Memory
	if err := c2.LoadROM(filepath.Join(dir, "missing.ch8")); err == nil {
		t.Errorf("LoadROM on a missing file should fail")
	}
	if c2.Memory != before {
		t.Errorf("failed LoadROM changed memory")
	}
}

func TestStepAdvancesPC(t *testing.T) {
	c := NewCPU()
	loadWords(c, 0x6005) // LD V0, 5
	c.Step()
	if c.PC != 0x202 {
		t.Errorf("PC: expected 0x202, got 0x%03X", c.PC)
	}
	if c.Opcode != 0x6005 {
		t.Errorf("Opcode: expected 0x6005, got 0x%04X", c.Opcode)
	}
	if c.V[0] != 5 {
		t.Errorf("V0: expected 5, got %d", c.V[0])
	}
}

func TestClearScreen(t *testing.T) {
	c := NewCPU()
	c.Video[0] = PixelOn
	c.Video[len(c.Video)-1] = PixelOn
	loadWords(c, 0x00E0)
	c.Step()
	for i, px := range c.Video {
		if px != PixelOff {
			t.Fatalf("Video[%d] still set after CLS", i)
		}
	}
	if c.PC != 0x202 {
		t.Errorf("PC: expected 0x202, got 0x%03X", c.PC)
	}
}

func TestSelfJump(t *testing.T) {
	c := NewCPU()
	loadWords(c, 0x1200) // JP 0x200
	c.RunSteps(10)
	if c.PC != 0x200 {
		t.Errorf("PC: expected 0x200, got 0x%03X", c.PC)
	}
}

func TestUnknownOpcodeIsNoop(t *testing.T) {
	for _, op := range []uint16{0x8AB8, 0xE1FF, 0xF1FF, 0x00E5, 0x00E1} {
		c := NewCPU()
		loadWords(c, op)
		before := *c
		c.Step()
		if c.PC != 0x202 {
			t.Errorf("0x%04X: PC expected 0x202, got 0x%03X", op, c.PC)
		}
		if c.V != before.V || c.I != before.I || c.SP != before.SP || c.Memory != before.Memory || c.Video != before.Video {
			t.Errorf("0x%04X: machine state changed", op)
		}
	}
}

func TestZeroWordClearsScreen(t *testing.T) {
	// 0x0000 routes through the trailing nibble to CLS.
	c := NewCPU()
	c.Video[5] = PixelOn
	c.Step()
	if c.Video[5] != PixelOff {
		t.Errorf("0x0000 should clear the display")
	}
}

func TestTimersTickPerStep(t *testing.T) {
	c := NewCPU()
	loadWords(c, 0x6003, 0xF015, 0xF018, 0x1206)
	// LD V0, 3; LD DT, V0; LD ST, V0; JP 0x206
	c.RunSteps(2)
	// The write happens before the tick of the same step.
	if c.DelayTimer != 2 {
		t.Errorf("DelayTimer after set: expected 2, got %d", c.DelayTimer)
	}
	c.Step()
	if c.DelayTimer != 1 || c.SoundTimer != 2 {
		t.Errorf("timers: expected DT=1 ST=2, got DT=%d ST=%d", c.DelayTimer, c.SoundTimer)
	}
	c.RunSteps(10)
	if c.DelayTimer != 0 || c.SoundTimer != 0 {
		t.Errorf("timers should stop at zero, got DT=%d ST=%d", c.DelayTimer, c.SoundTimer)
	}
}

func TestWaitForKey(t *testing.T) {
	c := NewCPU()
	loadWords(c, 0xF30A) // LD V3, K
	c.RunSteps(5)
	if c.PC != 0x200 {
		t.Errorf("PC while waiting: expected 0x200, got 0x%03X", c.PC)
	}

	c.SetKey(0x7, true)
	c.SetKey(0xC, true)
	c.Step()
	if c.V[3] != 0x7 {
		t.Errorf("V3: expected lowest pressed key 7, got %d", c.V[3])
	}
	if c.PC != 0x202 {
		t.Errorf("PC after key: expected 0x202, got 0x%03X", c.PC)
	}
}

func TestWaitForKeyTimersKeepRunning(t *testing.T) {
	c := NewCPU()
	c.DelayTimer = 5
	loadWords(c, 0xF00A)
	c.RunSteps(3)
	if c.DelayTimer != 2 {
		t.Errorf("DelayTimer: expected 2, got %d", c.DelayTimer)
	}
}

func TestCallReturn(t *testing.T) {
	c := NewCPU()
	// 0x200 CALL 0x206; 0x202 LD V1, 1; 0x204 JP 0x204; 0x206 LD V0, 9; 0x208 RET
	loadWords(c, 0x2206, 0x6101, 0x1204, 0x6009, 0x00EE)

	c.Step()
	if c.PC != 0x206 || c.SP != 1 || c.Stack[0] != 0x202 {
		t.Fatalf("CALL: PC=0x%03X SP=%d Stack[0]=0x%03X", c.PC, c.SP, c.Stack[0])
	}
	c.RunSteps(2)
	if c.PC != 0x202 || c.SP != 0 {
		t.Fatalf("RET: PC=0x%03X SP=%d", c.PC, c.SP)
	}
	c.Step()
	if c.V[0] != 9 || c.V[1] != 1 {
		t.Errorf("V0/V1: expected 9/1, got %d/%d", c.V[0], c.V[1])
	}
}

func TestStackOverflowDoesNotPanic(t *testing.T) {
	c := NewCPU()
	loadWords(c, 0x2200) // CALL 0x200 forever
	c.RunSteps(40)
	if c.PC != 0x200 {
		t.Errorf("PC: expected 0x200, got 0x%03X", c.PC)
	}

	c2 := NewCPU()
	loadWords(c2, 0x00EE) // RET on an empty stack
	c2.Step()
	if c2.SP != 0xFF {
		t.Errorf("SP after underflow: expected 0xFF, got 0x%02X", c2.SP)
	}
}

func TestPCWrapsAtEndOfMemory(t *testing.T) {
	c := NewCPU()
	c.PC = MemorySize - 1
	c.Step()
	if c.PC != MemorySize+1 {
		t.Errorf("PC: expected 0x%03X, got 0x%03X", MemorySize+1, c.PC)
	}
	// Fetches are masked, so running further must not panic.
	c.RunSteps(4)
}

func TestSetKeyIgnoresOutOfRange(t *testing.T) {
	c := NewCPU()
	c.SetKey(-1, true)
	c.SetKey(16, true)
	c.SetKey(0xF, true)
	for k, pressed := range c.Keypad {
		if pressed != (k == 0xF) {
			t.Errorf("Keypad[%X]: got %v", k, pressed)
		}
	}
}

func TestReset(t *testing.T) {
	c := newTestCPU()
	c.Quirks.WrapVerticalByHeight = true
	rng := c.Rand
	loadWords(c, 0x6001)
	c.Step()
	c.Reset()
	if c.PC != ProgramStart || c.V[0] != 0 || c.Memory[ProgramStart] != 0 {
		t.Errorf("Reset did not clear state")
	}
	if !c.Quirks.WrapVerticalByHeight || c.Rand != rng {
		t.Errorf("Reset should keep Quirks and Rand")
	}
}
