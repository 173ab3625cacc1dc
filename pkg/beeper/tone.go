package beeper

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

const (
	DefaultSampleRate = 44100
	DefaultFrequency  = 440
	DefaultVolume     = 0.25
)

// Tone is an io.Reader producing a mono float32 square wave while it is on
// and silence while it is off.
type Tone struct {
	sampleRate int
	frequency  float64
	volume     float32

	on    atomic.Bool
	muted atomic.Bool
	phase float64
}

func NewTone(sampleRate int, frequency float64, volume float32) *Tone {
	return &Tone{
		sampleRate: sampleRate,
		frequency:  frequency,
		volume:     volume,
	}
}

// SetOn switches the tone. It is safe to call while Read runs on the audio thread.
func (t *Tone) SetOn(on bool) { t.on.Store(on) }

func (t *Tone) On() bool { return t.on.Load() }

// SetMuted silences the output without changing the on state.
func (t *Tone) SetMuted(muted bool) { t.muted.Store(muted) }

func (t *Tone) Muted() bool { return t.muted.Load() }

// Read fills p with little-endian float32 samples. Trailing bytes that do
// not make up a whole sample are zeroed.
func (t *Tone) Read(p []byte) (int, error) {
	audible := t.on.Load() && !t.muted.Load()
	step := t.frequency / float64(t.sampleRate)

	n := len(p) / 4
	for i := 0; i < n; i++ {
		var s float32
		if audible {
			s = t.volume
			if t.phase >= 0.5 {
				s = -t.volume
			}
			t.phase += step
			t.phase -= math.Floor(t.phase)
		}
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	for i := n * 4; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}
