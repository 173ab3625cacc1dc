package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	"gochip8/pkg/keypad"
)

var hostKeys = map[rune]ebiten.Key{
	'1': ebiten.KeyDigit1, '2': ebiten.KeyDigit2, '3': ebiten.KeyDigit3, '4': ebiten.KeyDigit4,
	'q': ebiten.KeyQ, 'w': ebiten.KeyW, 'e': ebiten.KeyE, 'r': ebiten.KeyR,
	'a': ebiten.KeyA, 's': ebiten.KeyS, 'd': ebiten.KeyD, 'f': ebiten.KeyF,
	'z': ebiten.KeyZ, 'x': ebiten.KeyX, 'c': ebiten.KeyC, 'v': ebiten.KeyV,
}

// keypadKeys lists the ebiten key for each keypad key, indexed by key value.
var keypadKeys = func() [16]ebiten.Key {
	var keys [16]ebiten.Key
	for k, r := range keypad.Layout {
		keys[k] = hostKeys[r]
	}
	return keys
}()

// pollKeypad copies the current host keyboard state into the keypad.
func (g *Game) pollKeypad() {
	for k, key := range keypadKeys {
		g.vm.SetKey(k, ebiten.IsKeyPressed(key))
	}
}
