package slots

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestStore_Save(t *testing.T) {
	tests := []struct {
		name         string
		slot         int
		data         []byte
		initialUsed  int
		wantErr      error
		expectedUsed int
	}{
		{"Valid save", 3, []byte{1, 2, 3}, 0, nil, 3},
		{"Negative slot", -1, []byte{1}, 0, ErrInvalidSlot, 0},
		{"Slot past range", NumSlots, []byte{1}, 0, ErrInvalidSlot, 0},
		{"Quota exceeded", 0, make([]byte, MaxStoreBytes+1), 0, ErrQuotaExceeded, 0},
		{"Quota exceeded with usage", 0, make([]byte, 10), MaxStoreBytes - 5, ErrQuotaExceeded, MaxStoreBytes - 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			s.UsedBytes = tt.initialUsed
			err := s.Save(tt.slot, tt.data)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Save() error = %v, want %v", err, tt.wantErr)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, true, s.Dirty)
				assert.Equal(t, true, s.DirtySlots[tt.slot])
			}
			assert.Equal(t, tt.expectedUsed, s.UsedBytes)
		})
	}
}

func TestStore_SaveCopiesAndOverwrites(t *testing.T) {
	s := NewStore()
	data := []byte{1, 2, 3, 4}
	assert.NoError(t, s.Save(1, data))
	data[0] = 99

	got, err := s.Load(1)
	assert.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)

	assert.NoError(t, s.Save(1, []byte{7}))
	assert.Equal(t, 1, s.UsedBytes)
	assert.Equal(t, MaxStoreBytes-1, s.FreeSpace())
}

func TestStore_LoadErrors(t *testing.T) {
	s := NewStore()
	if _, err := s.Load(4); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("Load(empty) error = %v, want ErrSlotNotFound", err)
	}
	if _, err := s.Load(12); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("Load(12) error = %v, want ErrInvalidSlot", err)
	}
	if _, err := s.Modified(4); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("Modified(empty) error = %v, want ErrSlotNotFound", err)
	}
}

func TestStore_DeleteAndList(t *testing.T) {
	s := NewStore()
	assert.NoError(t, s.Save(7, []byte{1, 2}))
	assert.NoError(t, s.Save(2, []byte{3}))
	assert.Equal(t, []int{2, 7}, s.List())

	assert.NoError(t, s.Delete(7))
	assert.Equal(t, []int{2}, s.List())
	assert.Equal(t, 1, s.UsedBytes)

	if err := s.Delete(7); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("Delete(empty) error = %v, want ErrSlotNotFound", err)
	}
}

func TestStore_PersistAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "saves")

	s := NewStore()
	assert.NoError(t, s.Save(0, []byte("zero")))
	assert.NoError(t, s.Save(9, []byte("nine")))
	assert.NoError(t, s.PersistTo(dir))
	assert.Equal(t, false, s.Dirty)
	assert.Equal(t, 0, len(s.DirtySlots))

	raw, err := os.ReadFile(filepath.Join(dir, "slot9.c8s"))
	assert.NoError(t, err)
	assert.Equal(t, "nine", string(raw))

	// Files that are not slots are ignored.
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	s2 := NewStore()
	assert.NoError(t, s2.LoadFrom(dir))
	assert.Equal(t, []int{0, 9}, s2.List())
	got, err := s2.Load(0)
	assert.NoError(t, err)
	assert.Equal(t, "zero", string(got))
	assert.Equal(t, 8, s2.UsedBytes)
	assert.Equal(t, false, s2.Dirty)

	// Deletions reach the host directory on the next persist.
	assert.NoError(t, s2.Delete(0))
	assert.NoError(t, s2.PersistTo(dir))
	if _, err := os.Stat(filepath.Join(dir, "slot0.c8s")); !os.IsNotExist(err) {
		t.Errorf("slot0.c8s should have been removed, stat err = %v", err)
	}
}

func TestStore_LoadFromMissingDir(t *testing.T) {
	s := NewStore()
	assert.NoError(t, s.LoadFrom(filepath.Join(t.TempDir(), "does-not-exist")))
	assert.Equal(t, 0, len(s.List()))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "slot3.c8s", Filename(3))
	assert.Equal(t, true, slotFilename.MatchString(Filename(0)))
	assert.Equal(t, false, slotFilename.MatchString("slot10.c8s"))
}
