package main

import "io"

const (
	ctrlC  = 0x03
	escape = 0x1B
)

// readBytes forwards bytes from r to out until r fails.
func readBytes(r io.Reader, out chan<- byte) {
	defer close(out)
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			out <- b
		}
		if err != nil {
			return
		}
	}
}
