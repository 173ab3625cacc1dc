// Package pacer converts wall-clock time into a number of machine steps for
// a driving loop that runs one step per fixed delay.
package pacer

import "time"

// MaxBurst bounds the steps returned by a single Due call, so a stalled host
// does not replay the whole stall at full speed.
const MaxBurst = 64

type Pacer struct {
	delay time.Duration
	last  time.Time
}

// New returns a pacer that schedules one step per delay. A delay of zero or
// less is unthrottled: every Due call returns MaxBurst.
func New(delay time.Duration) *Pacer {
	return &Pacer{delay: delay}
}

// FromMillis is New with the delay given in whole milliseconds.
func FromMillis(ms int) *Pacer {
	return New(time.Duration(ms) * time.Millisecond)
}

func (p *Pacer) Delay() time.Duration {
	return p.delay
}

// Reset makes now the reference point for the next Due call.
func (p *Pacer) Reset(now time.Time) {
	p.last = now
}

// Due returns how many steps should run at now. Time that has not yet added
// up to a full delay carries over to the next call.
func (p *Pacer) Due(now time.Time) int {
	if p.delay <= 0 {
		p.last = now
		return MaxBurst
	}
	if p.last.IsZero() {
		p.last = now
		return 0
	}

	elapsed := now.Sub(p.last)
	if elapsed < p.delay {
		return 0
	}

	n := int(elapsed / p.delay)
	if n > MaxBurst {
		p.last = now
		return MaxBurst
	}
	p.last = p.last.Add(time.Duration(n) * p.delay)
	return n
}
