// Package beeper plays a tone while the machine's sound timer is running.
package beeper

import (
	"sync"

	"github.com/ebitengine/oto/v3"
)

type Beeper struct {
	ctx    *oto.Context
	player *oto.Player
	tone   *Tone
	mutex  sync.Mutex
}

// New opens the host audio device and starts a silent player.
func New(sampleRate int) (*Beeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	b := &Beeper{
		ctx:  ctx,
		tone: NewTone(sampleRate, DefaultFrequency, DefaultVolume),
	}
	b.player = ctx.NewPlayer(b.tone)
	b.player.Play()
	return b, nil
}

// Update follows the sound timer: the tone sounds while soundTimer is non-zero.
func (b *Beeper) Update(soundTimer uint8) {
	b.tone.SetOn(soundTimer > 0)
}

func (b *Beeper) SetMuted(muted bool) {
	b.tone.SetMuted(muted)
}

func (b *Beeper) Muted() bool {
	return b.tone.Muted()
}

func (b *Beeper) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.player == nil {
		return nil
	}
	err := b.player.Close()
	b.player = nil
	return err
}
