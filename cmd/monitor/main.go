package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jroimartin/gocui"

	"gochip8/pkg/beeper"
	"gochip8/pkg/chip8"
	"gochip8/pkg/keypad"
	"gochip8/pkg/pacer"
	"gochip8/pkg/session"
	"gochip8/pkg/utils"
)

const (
	frameInterval = time.Second / 60
	burstSteps    = 100
	logLines      = 500
	helpText      = "space run/pause  n step  m step 100  ^R reset  o/l save/load  ^D delete  [ ] slot  ^C quit"
)

type monitor struct {
	mu      sync.Mutex
	sess    *session.Session
	pacer   *pacer.Pacer
	keys    *keypad.Latch
	beeper  *beeper.Beeper
	log     *logBuffer
	running bool
}

func main() {
	opts, err := utils.ParseFrontendArgs("monitor", os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(1)
	}

	logs := newLogBuffer(logLines)
	sess, err := session.Open(opts, logs)
	if err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}

	m := &monitor{
		sess:  sess,
		pacer: pacer.FromMillis(opts.Delay),
		keys:  keypad.NewLatch(),
		log:   logs,
	}
	if !opts.Mute {
		if m.beeper, err = beeper.New(beeper.DefaultSampleRate); err != nil {
			m.logf("audio disabled: %v", err)
			m.beeper = nil
		}
	}
	sess.StartSyncer(session.SyncInterval, func(err error) {
		m.logf("slot sync: %v", err)
	})
	m.logf("loaded %s", opts.ROM)
	m.logf("%s: %s", opts.SlotDir, sess.Summary())

	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		log.Panicln("Couldn't create gui!")
	}

	g.SetManagerFunc(m.layout)
	if err := m.bindKeys(g); err != nil {
		g.Close()
		log.Panicln(err)
	}

	done := make(chan struct{})
	go m.drive(g, done)

	if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
		g.Close()
		log.Panicln(err)
	}
	close(done)
	g.Close()

	if m.beeper != nil {
		_ = m.beeper.Close()
	}
	if err := sess.Close(); err != nil {
		log.Printf("save slot sync failed: %v", err)
	}
}

func (m *monitor) logf(format string, args ...any) {
	fmt.Fprintf(m.log, format+"\n", args...)
}

// drive steps the machine on a frame ticker and schedules redraws.
func (m *monitor) drive(g *gocui.Gui, done <-chan struct{}) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			vm := m.sess.VM
			vm.Keypad = m.keys.State(now)
			if m.running {
				vm.RunSteps(m.pacer.Due(now))
			}
			if m.beeper != nil {
				m.beeper.Update(vm.SoundTimer)
			}
			m.mu.Unlock()
			g.Update(m.redraw)
		}
	}
}

func (m *monitor) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	screenW := chip8.VideoWidth + 1
	screenH := chip8.VideoHeight/2 + 1

	if v, err := g.SetView("screen", 0, 0, screenW, screenH); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Screen"
	}
	if v, err := g.SetView("registers", screenW+1, 0, maxX-1, 8); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Registers"
	}
	if v, err := g.SetView("disasm", screenW+1, 9, maxX-1, screenH); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Disassembly"
	}
	if v, err := g.SetView("log", 0, screenH+1, maxX-1, maxY-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Log: " + helpText
		v.Wrap = true
	}
	return nil
}

func (m *monitor) redraw(g *gocui.Gui) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	vm := m.sess.VM

	if v, err := g.View("screen"); err == nil {
		v.Clear()
		fmt.Fprint(v, strings.Join(vm.TextLines(1), "\n"))
	}
	if v, err := g.View("registers"); err == nil {
		v.Clear()
		writeRegisters(v, vm)
		state := "paused"
		if m.running {
			state = "running"
		}
		fmt.Fprintf(v, "%s  %s", m.sess.SlotStatus(), state)
	}
	if v, err := g.View("disasm"); err == nil {
		v.Clear()
		_, h := v.Size()
		fmt.Fprint(v, strings.Join(disasmLines(vm, h), "\n"))
	}
	if v, err := g.View("log"); err == nil {
		v.Clear()
		_, h := v.Size()
		fmt.Fprint(v, strings.Join(m.log.Tail(h), "\n"))
	}
	return nil
}

type binding struct {
	key     any
	handler func(*gocui.Gui, *gocui.View) error
}

func (m *monitor) bindKeys(g *gocui.Gui) error {
	bindings := []binding{
		{gocui.KeyCtrlC, quit},
		{gocui.KeySpace, m.toggleRun},
		{'n', m.stepper(1)},
		{'m', m.stepper(burstSteps)},
		{gocui.KeyCtrlR, m.reset},
		{'o', m.saveSlot},
		{'l', m.loadSlot},
		{gocui.KeyCtrlD, m.deleteSlot},
		{'[', m.slotSelector(-1)},
		{']', m.slotSelector(1)},
	}
	for _, r := range keypad.Layout {
		bindings = append(bindings, binding{r, m.presser(r)})
	}
	for _, b := range bindings {
		if err := g.SetKeybinding("", b.key, gocui.ModNone, b.handler); err != nil {
			return err
		}
	}
	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}

func (m *monitor) toggleRun(g *gocui.Gui, v *gocui.View) error {
	m.mu.Lock()
	m.running = !m.running
	m.pacer.Reset(time.Now())
	m.mu.Unlock()
	return m.redraw(g)
}

func (m *monitor) stepper(n int) func(*gocui.Gui, *gocui.View) error {
	return func(g *gocui.Gui, v *gocui.View) error {
		m.mu.Lock()
		m.sess.VM.RunSteps(n)
		m.mu.Unlock()
		return m.redraw(g)
	}
}

func (m *monitor) reset(g *gocui.Gui, v *gocui.View) error {
	m.mu.Lock()
	m.sess.Reset()
	m.mu.Unlock()
	m.logf("reset")
	return m.redraw(g)
}

func (m *monitor) saveSlot(g *gocui.Gui, v *gocui.View) error {
	m.mu.Lock()
	err := m.sess.SaveSlot()
	slot := m.sess.Slot
	m.mu.Unlock()
	if err != nil {
		m.logf("save failed: %v", err)
	} else {
		m.logf("saved slot %d", slot)
	}
	return m.redraw(g)
}

func (m *monitor) loadSlot(g *gocui.Gui, v *gocui.View) error {
	m.mu.Lock()
	err := m.sess.LoadSlot()
	slot := m.sess.Slot
	m.mu.Unlock()
	if err != nil {
		m.logf("load failed: %v", err)
	} else {
		m.logf("loaded slot %d", slot)
	}
	return m.redraw(g)
}

func (m *monitor) deleteSlot(g *gocui.Gui, v *gocui.View) error {
	m.mu.Lock()
	err := m.sess.DeleteSlot()
	slot := m.sess.Slot
	m.mu.Unlock()
	if err != nil {
		m.logf("delete failed: %v", err)
	} else {
		m.logf("deleted slot %d", slot)
	}
	return m.redraw(g)
}

func (m *monitor) slotSelector(delta int) func(*gocui.Gui, *gocui.View) error {
	return func(g *gocui.Gui, v *gocui.View) error {
		m.mu.Lock()
		m.sess.SelectSlot(delta)
		m.mu.Unlock()
		return m.redraw(g)
	}
}

func (m *monitor) presser(r rune) func(*gocui.Gui, *gocui.View) error {
	return func(g *gocui.Gui, v *gocui.View) error {
		m.keys.PressRune(r, time.Now())
		return nil
	}
}
