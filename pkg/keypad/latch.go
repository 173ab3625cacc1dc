package keypad

import (
	"sync"
	"time"
)

// DefaultHold is how long a key stays down after its last press event.
// Text terminals report presses and auto-repeat but never releases.
const DefaultHold = 150 * time.Millisecond

// Latch turns a stream of press events into held-key state by releasing each
// key once Hold has passed without a repeat. It is safe for concurrent use.
type Latch struct {
	Hold time.Duration

	mu       sync.Mutex
	lastSeen [16]time.Time
}

func NewLatch() *Latch {
	return &Latch{Hold: DefaultHold}
}

// PressRune records a press of the host character r and reports whether r is
// bound to a keypad key.
func (l *Latch) PressRune(r rune, now time.Time) bool {
	k, ok := FromRune(r)
	if !ok {
		return false
	}
	l.Press(k, now)
	return true
}

// Press records a press of keypad key k. Out-of-range keys are ignored.
func (l *Latch) Press(k int, now time.Time) {
	if k < 0 || k >= len(l.lastSeen) {
		return
	}
	l.mu.Lock()
	l.lastSeen[k] = now
	l.mu.Unlock()
}

// State returns which keys are held at now.
func (l *Latch) State(now time.Time) [16]bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	var held [16]bool
	for k, t := range l.lastSeen {
		held[k] = !t.IsZero() && now.Sub(t) < l.Hold
	}
	return held
}
