package main

import (
	"strings"
	"sync"
)

// logBuffer keeps the last max lines written to it. Trace output and
// monitor messages both end up here.
type logBuffer struct {
	mu    sync.Mutex
	max   int
	lines []string
	part  string
}

func newLogBuffer(max int) *logBuffer {
	return &logBuffer{max: max}
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	text := b.part + string(p)
	parts := strings.Split(text, "\n")
	b.part = parts[len(parts)-1]
	b.lines = append(b.lines, parts[:len(parts)-1]...)
	if over := len(b.lines) - b.max; over > 0 {
		b.lines = append(b.lines[:0], b.lines[over:]...)
	}
	return len(p), nil
}

// Tail returns up to n of the most recent complete lines, oldest first.
func (b *logBuffer) Tail(n int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n > len(b.lines) {
		n = len(b.lines)
	}
	if n <= 0 {
		return nil
	}
	return append([]string(nil), b.lines[len(b.lines)-n:]...)
}
