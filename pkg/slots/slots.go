package slots

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"
)

// NumSlots is the number of save slots, addressed 0-9.
const NumSlots = 10

// MaxStoreBytes caps the combined size of all slots.
const MaxStoreBytes = 1 << 20

// slotFilename matches the host files written by PersistTo.
var slotFilename = regexp.MustCompile(`^slot([0-9])\.c8s$`)

var (
	ErrSlotNotFound  = errors.New("slot is empty")
	ErrInvalidSlot   = errors.New("invalid slot")
	ErrQuotaExceeded = errors.New("slot quota exceeded")
)

type Entry struct {
	Data     []byte
	Created  time.Time
	Modified time.Time
}

// Store holds machine snapshots in memory and mirrors them to a host directory.
type Store struct {
	Mu         sync.RWMutex
	Slots      map[int]*Entry
	DirtySlots map[int]bool
	UsedBytes  int
	Dirty      bool
}

func NewStore() *Store {
	return &Store{
		Slots:      make(map[int]*Entry),
		DirtySlots: make(map[int]bool),
	}
}

// Filename returns the host file name used for slot.
func Filename(slot int) string {
	return fmt.Sprintf("slot%d.c8s", slot)
}

func validSlot(slot int) bool {
	return slot >= 0 && slot < NumSlots
}

// Save stores a copy of data in slot, replacing any previous contents.
func (s *Store) Save(slot int, data []byte) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if !validSlot(slot) {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}

	oldSize := 0
	entry, exists := s.Slots[slot]
	if exists {
		oldSize = len(entry.Data)
	}

	newSize := len(data)
	if s.UsedBytes-oldSize+newSize > MaxStoreBytes {
		return ErrQuotaExceeded
	}

	newData := make([]byte, newSize)
	copy(newData, data)

	if !exists {
		entry = &Entry{Created: time.Now()}
		s.Slots[slot] = entry
	}
	entry.Data = newData
	entry.Modified = time.Now()

	s.DirtySlots[slot] = true
	s.UsedBytes = s.UsedBytes - oldSize + newSize
	s.Dirty = true

	return nil
}

// Load returns the contents of slot.
func (s *Store) Load(slot int) ([]byte, error) {
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	if !validSlot(slot) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}

	entry, ok := s.Slots[slot]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrSlotNotFound, slot)
	}

	return entry.Data, nil
}

// Delete empties slot.
func (s *Store) Delete(slot int) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if !validSlot(slot) {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}

	entry, ok := s.Slots[slot]
	if !ok {
		return fmt.Errorf("%w: %d", ErrSlotNotFound, slot)
	}

	s.UsedBytes -= len(entry.Data)
	delete(s.Slots, slot)

	// Removed from the host directory on the next PersistTo.
	s.DirtySlots[slot] = true
	s.Dirty = true

	return nil
}

// FreeSpace returns the number of bytes still available.
func (s *Store) FreeSpace() int {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	return MaxStoreBytes - s.UsedBytes
}

// List returns the occupied slots in ascending order.
func (s *Store) List() []int {
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	keys := make([]int, 0, len(s.Slots))
	for k := range s.Slots {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Modified returns when slot was last written.
func (s *Store) Modified(slot int) (time.Time, error) {
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	if !validSlot(slot) {
		return time.Time{}, fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	entry, ok := s.Slots[slot]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %d", ErrSlotNotFound, slot)
	}
	return entry.Modified, nil
}

// LoadFrom populates the store from slot files in the given host directory.
// Other files are skipped. A missing directory is not an error.
func (s *Store) LoadFrom(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := slotFilename.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		slot, _ := strconv.Atoi(m[1])

		fullPath := filepath.Join(path, entry.Name())
		raw, err := os.ReadFile(fullPath)
		if err != nil {
			continue
		}
		if s.UsedBytes+len(raw) > MaxStoreBytes {
			continue
		}

		e := &Entry{
			Data:     raw,
			Created:  time.Now(),
			Modified: time.Now(),
		}
		if info, err := entry.Info(); err == nil {
			e.Created = info.ModTime()
			e.Modified = info.ModTime()
		}

		s.Slots[slot] = e
		s.UsedBytes += len(raw)
	}

	return nil
}

// PersistTo writes dirty slots to the given host directory, creating it if
// needed. Returns the first error encountered.
func (s *Store) PersistTo(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return err
	}

	// Copy dirty slots under the lock, then do I/O without it.
	s.Mu.Lock()
	snapshot := make(map[int]*Entry)
	deleted := make([]int, 0)

	for slot := range s.DirtySlots {
		if entry, ok := s.Slots[slot]; ok {
			data := make([]byte, len(entry.Data))
			copy(data, entry.Data)
			snapshot[slot] = &Entry{
				Data:     data,
				Created:  entry.Created,
				Modified: entry.Modified,
			}
		} else {
			deleted = append(deleted, slot)
		}
		delete(s.DirtySlots, slot)
	}
	s.Dirty = false
	s.Mu.Unlock()

	var firstErr error

	for _, slot := range deleted {
		err := os.Remove(filepath.Join(path, Filename(slot)))
		if err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}

	for slot, entry := range snapshot {
		target := filepath.Join(path, Filename(slot))
		if err := os.WriteFile(target, entry.Data, 0644); err != nil {
			s.Mu.Lock()
			s.DirtySlots[slot] = true
			s.Dirty = true
			s.Mu.Unlock()
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		_ = os.Chtimes(target, time.Now(), entry.Modified)
	}

	return firstErr
}
