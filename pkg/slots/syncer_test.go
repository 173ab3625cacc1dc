package slots

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStartSyncer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "saves")
	s := NewStore()
	if err := s.Save(5, []byte("state")); err != nil {
		t.Fatal(err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		StartSyncer(s, dir, 5*time.Millisecond, stop, nil)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for s.IsDirty() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	close(stop)
	<-done

	if s.IsDirty() {
		t.Fatal("store still dirty after syncer ran")
	}
	raw, err := os.ReadFile(filepath.Join(dir, Filename(5)))
	if err != nil {
		t.Fatalf("slot file missing: %v", err)
	}
	if string(raw) != "state" {
		t.Errorf("slot file = %q, want %q", raw, "state")
	}
}
