package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/term"

	"gochip8/pkg/beeper"
	"gochip8/pkg/chip8"
	"gochip8/pkg/keypad"
	"gochip8/pkg/pacer"
	"gochip8/pkg/session"
	"gochip8/pkg/utils"
)

const frameInterval = time.Second / 60

func main() {
	opts, err := utils.ParseFrontendArgs("console", os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(1)
	}

	// Trace records would corrupt the display, so they go to a file.
	traceOut := os.Stderr
	if opts.Trace {
		f, err := os.Create("chip8_trace.log")
		if err != nil {
			log.Fatalf("Failed to open trace log: %v", err)
		}
		defer f.Close()
		traceOut = f
	}

	sess, err := session.Open(opts, traceOut)
	if err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}

	var b *beeper.Beeper
	if !opts.Mute {
		if b, err = beeper.New(beeper.DefaultSampleRate); err != nil {
			log.Printf("audio disabled: %v", err)
			b = nil
		}
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		log.Fatalf("Failed to set raw mode: %v", err)
	}

	scale := opts.Scale
	if cols, rows, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		scale = fitScale(scale, cols, rows)
	}

	sess.StartSyncer(session.SyncInterval, nil)

	fmt.Print(clearScreen + hideCursor)
	run(sess, b, scale)
	fmt.Print(showCursor + "\r\n")

	_ = term.Restore(fd, oldState)
	if b != nil {
		_ = b.Close()
	}
	if err := sess.Close(); err != nil {
		log.Printf("save slot sync failed: %v", err)
	}
}

// run drives the machine until Esc or Ctrl-C.
func run(sess *session.Session, b *beeper.Beeper, scale int) {
	vm := sess.VM
	p := pacer.FromMillis(sess.Opts.Delay)
	kb := keypad.NewLatch()

	input := make(chan byte, 64)
	go readBytes(os.Stdin, input)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	var (
		lastFrame [chip8.VideoWidth * chip8.VideoHeight]uint32
		paused    bool
	)
	status := sess.Summary()
	dirty := true

	for {
		select {
		case c, ok := <-input:
			if !ok {
				return
			}
			now := time.Now()
			switch c {
			case ctrlC, escape:
				return
			case 'p':
				paused = !paused
				p.Reset(now)
				dirty = true
			case 'o':
				status = slotStatus("saved", sess.Slot, sess.SaveSlot())
				dirty = true
			case 'l':
				status = slotStatus("loaded", sess.Slot, sess.LoadSlot())
				dirty = true
			case 'k':
				status = slotStatus("deleted", sess.Slot, sess.DeleteSlot())
				dirty = true
			case '[', ']':
				delta := 1
				if c == '[' {
					delta = -1
				}
				sess.SelectSlot(delta)
				status = sess.SlotStatus()
				dirty = true
			default:
				kb.PressRune(rune(c), now)
			}

		case now := <-ticker.C:
			vm.Keypad = kb.State(now)
			if !paused {
				vm.RunSteps(p.Due(now))
			}
			if b != nil {
				b.Update(vm.SoundTimer)
			}
			if vm.Video != lastFrame || dirty {
				lastFrame = vm.Video
				dirty = false
				line := fmt.Sprintf("PC %03X  slot %d  %s", vm.PC, sess.Slot, status)
				if paused {
					line += "  PAUSED"
				}
				fmt.Print(renderFrame(vm, scale, line))
			}
		}
	}
}

func slotStatus(verb string, slot int, err error) string {
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("%s slot %d", verb, slot)
}
