// Package keypad maps host keyboard keys onto the 16-key hex keypad.
//
// The layout follows the common convention of using the left block of a
// QWERTY keyboard:
//
//	1 2 3 4        1 2 3 C
//	Q W E R   ->   4 5 6 D
//	A S D F        7 8 9 E
//	Z X C V        A 0 B F
package keypad

import "unicode"

// Layout lists the host character for each keypad key, indexed by key value.
var Layout = [16]rune{
	0x0: 'x',
	0x1: '1',
	0x2: '2',
	0x3: '3',
	0x4: 'q',
	0x5: 'w',
	0x6: 'e',
	0x7: 'a',
	0x8: 's',
	0x9: 'd',
	0xA: 'z',
	0xB: 'c',
	0xC: '4',
	0xD: 'r',
	0xE: 'f',
	0xF: 'v',
}

var byRune = func() map[rune]int {
	m := make(map[rune]int, len(Layout))
	for k, r := range Layout {
		m[r] = k
	}
	return m
}()

// FromRune returns the keypad key bound to the host character r. Letters
// match in either case.
func FromRune(r rune) (int, bool) {
	k, ok := byRune[unicode.ToLower(r)]
	return k, ok
}

// Label returns the hex digit printed on key k.
func Label(k int) string {
	const digits = "0123456789ABCDEF"
	if k < 0 || k >= len(digits) {
		return "?"
	}
	return digits[k : k+1]
}
