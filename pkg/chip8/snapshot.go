package chip8

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// machineState is the JSON-serializable snapshot of the machine's control state.
type machineState struct {
	V          [NumRegisters]uint8 `json:"v"`
	I          uint16              `json:"i"`
	PC         uint16              `json:"pc"`
	SP         uint8               `json:"sp"`
	Stack      [StackDepth]uint16  `json:"stack"`
	DelayTimer uint8               `json:"delay_timer"`
	SoundTimer uint8               `json:"sound_timer"`
	Opcode     uint16              `json:"opcode"`
	Keypad     [NumKeys]bool       `json:"keypad"`
	Quirks     snapshotQuirks      `json:"quirks"`
}

type snapshotQuirks struct {
	WrapVerticalByHeight bool `json:"wrap_vertical_by_height"`
}

// SnapshotToBytes serialises the complete machine state into an in-memory ZIP
// archive: cpu_state.json, memory.bin and video.bin (one byte per pixel).
func (c *CPU) SnapshotToBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	state := machineState{
		V:          c.V,
		I:          c.I,
		PC:         c.PC,
		SP:         c.SP,
		Stack:      c.Stack,
		DelayTimer: c.DelayTimer,
		SoundTimer: c.SoundTimer,
		Opcode:     c.Opcode,
		Keypad:     c.Keypad,
		Quirks:     snapshotQuirks{WrapVerticalByHeight: c.Quirks.WrapVerticalByHeight},
	}

	jsonData, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal cpu_state: %w", err)
	}
	if err := writeZipEntry(zw, "cpu_state.json", jsonData); err != nil {
		return nil, err
	}

	if err := writeZipEntry(zw, "memory.bin", c.Memory[:]); err != nil {
		return nil, err
	}

	video := make([]byte, len(c.Video))
	for i, px := range c.Video {
		if px == PixelOn {
			video[i] = 1
		}
	}
	if err := writeZipEntry(zw, "video.bin", video); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// RestoreFromBytes applies an archive produced by SnapshotToBytes. All three
// entries must be present and well formed; otherwise an error is returned and
// the machine is left unchanged. Rand and Trace are not part of a snapshot.
func (c *CPU) RestoreFromBytes(data []byte) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}

	fileMap := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		fileMap[f.Name] = f
	}

	jsonData, err := readZipEntry(fileMap, "cpu_state.json")
	if err != nil {
		return err
	}
	var state machineState
	if err := json.Unmarshal(jsonData, &state); err != nil {
		return fmt.Errorf("unmarshal cpu_state: %w", err)
	}
	memData, err := readZipEntry(fileMap, "memory.bin")
	if err != nil {
		return err
	}
	videoData, err := readZipEntry(fileMap, "video.bin")
	if err != nil {
		return err
	}

	c.V = state.V
	c.I = state.I
	c.PC = state.PC
	c.SP = state.SP
	c.Stack = state.Stack
	c.DelayTimer = state.DelayTimer
	c.SoundTimer = state.SoundTimer
	c.Opcode = state.Opcode
	c.Keypad = state.Keypad
	c.Quirks.WrapVerticalByHeight = state.Quirks.WrapVerticalByHeight

	c.Memory = [MemorySize]byte{}
	copy(c.Memory[:], memData)

	for i := range c.Video {
		c.Video[i] = PixelOff
		if i < len(videoData) && videoData[i] != 0 {
			c.Video[i] = PixelOn
		}
	}

	return nil
}

// SnapshotToFile writes the snapshot archive to path.
func (c *CPU) SnapshotToFile(path string) error {
	data, err := c.SnapshotToBytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RestoreFromFile reads a snapshot archive from path and restores it.
func (c *CPU) RestoreFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.RestoreFromBytes(data)
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %q: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write zip entry %q: %w", name, err)
	}
	return nil
}

func readZipEntry(fileMap map[string]*zip.File, name string) ([]byte, error) {
	f, ok := fileMap[name]
	if !ok {
		return nil, fmt.Errorf("zip entry %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry %q: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
