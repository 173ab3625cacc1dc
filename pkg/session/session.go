// Package session holds the state a front end keeps around one running ROM:
// the machine, its save slots and the background slot syncer.
package session

import (
	"fmt"
	"io"
	"time"

	"gochip8/pkg/chip8"
	"gochip8/pkg/slots"
	"gochip8/pkg/utils"
)

// SyncInterval is how often dirty save slots are flushed to the host.
const SyncInterval = 3 * time.Second

type Session struct {
	VM    *chip8.CPU
	Store *slots.Store
	Opts  *utils.Options
	// Slot is the slot used by SaveSlot and LoadSlot.
	Slot int

	rom        []byte
	stopSyncer chan struct{}
	syncerDone chan struct{}
}

// Open creates a machine, loads the ROM and reads existing save slots.
// Trace output, if enabled, goes to traceOut.
func Open(opts *utils.Options, traceOut io.Writer) (*Session, error) {
	vm := chip8.NewCPU()
	vm.Trace = utils.NewTraceLogger(opts.Trace, traceOut)

	if err := vm.LoadROM(opts.ROM); err != nil {
		return nil, err
	}
	rom := make([]byte, 0, chip8.MemorySize-chip8.ProgramStart)
	rom = append(rom, vm.Memory[chip8.ProgramStart:]...)

	store := slots.NewStore()
	if err := store.LoadFrom(opts.SlotDir); err != nil {
		return nil, fmt.Errorf("load save slots from %q: %w", opts.SlotDir, err)
	}

	return &Session{
		VM:    vm,
		Store: store,
		Opts:  opts,
		rom:   rom,
	}, nil
}

// Reset restarts the ROM from a clean machine.
func (s *Session) Reset() {
	s.VM.Reset()
	s.VM.Load(s.rom)
}

// SaveSlot snapshots the machine into the current slot.
func (s *Session) SaveSlot() error {
	data, err := s.VM.SnapshotToBytes()
	if err != nil {
		return err
	}
	if err := s.Store.Save(s.Slot, data); err != nil {
		return fmt.Errorf("save slot %d: %w", s.Slot, err)
	}
	return nil
}

// LoadSlot restores the machine from the current slot.
func (s *Session) LoadSlot() error {
	data, err := s.Store.Load(s.Slot)
	if err != nil {
		return err
	}
	if err := s.VM.RestoreFromBytes(data); err != nil {
		return fmt.Errorf("restore slot %d: %w", s.Slot, err)
	}
	return nil
}

// DeleteSlot empties the current slot.
func (s *Session) DeleteSlot() error {
	return s.Store.Delete(s.Slot)
}

// SlotStatus describes the current slot for status lines, e.g.
// "slot 3 saved 15:04:05" or "slot 3 empty".
func (s *Session) SlotStatus() string {
	mod, err := s.Store.Modified(s.Slot)
	if err != nil {
		return fmt.Sprintf("slot %d empty", s.Slot)
	}
	return fmt.Sprintf("slot %d saved %s", s.Slot, mod.Format("15:04:05"))
}

// Summary lists the occupied slots and the remaining store space.
func (s *Session) Summary() string {
	used := s.Store.List()
	if len(used) == 0 {
		return fmt.Sprintf("no saved slots, %d KiB free", s.Store.FreeSpace()/1024)
	}
	return fmt.Sprintf("saved slots %v, %d KiB free", used, s.Store.FreeSpace()/1024)
}

// SelectSlot moves the current slot by delta, wrapping around.
func (s *Session) SelectSlot(delta int) int {
	s.Slot = ((s.Slot+delta)%slots.NumSlots + slots.NumSlots) % slots.NumSlots
	return s.Slot
}

// StartSyncer runs the slot syncer in the background until Close.
func (s *Session) StartSyncer(interval time.Duration, onErr func(error)) {
	if s.stopSyncer != nil {
		return
	}
	s.stopSyncer = make(chan struct{})
	s.syncerDone = make(chan struct{})
	go func() {
		defer close(s.syncerDone)
		slots.StartSyncer(s.Store, s.Opts.SlotDir, interval, s.stopSyncer, onErr)
	}()
}

// Close stops the syncer and does a final flush of dirty slots.
func (s *Session) Close() error {
	if s.stopSyncer != nil {
		close(s.stopSyncer)
		<-s.syncerDone
		s.stopSyncer = nil
	}
	if s.Store.IsDirty() {
		return s.Store.PersistTo(s.Opts.SlotDir)
	}
	return nil
}
