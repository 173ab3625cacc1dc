package main

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"gochip8/pkg/beeper"
	"gochip8/pkg/chip8"
	"gochip8/pkg/pacer"
	"gochip8/pkg/session"
	"gochip8/pkg/utils"
)

const statusBarHeight = 16

var (
	onColor     = color.RGBA{0xE0, 0xF0, 0xE0, 0xFF}
	offColor    = color.RGBA{0x10, 0x18, 0x10, 0xFF}
	statusColor = color.RGBA{190, 190, 190, 255}
	statusBg    = color.RGBA{0x20, 0x20, 0x20, 0xFF}
)

type Game struct {
	sess   *session.Session
	vm     *chip8.CPU
	pacer  *pacer.Pacer
	beeper *beeper.Beeper
	scale  int

	screenImg *ebiten.Image // reused 64×32 canvas
	pixels    []byte

	paused     bool
	quit       bool
	showStatus bool
	message    string
	messageTTL time.Time

	steps       int
	stepsPerSec int
	rateStart   time.Time
}

func newGame(sess *session.Session, b *beeper.Beeper) *Game {
	return &Game{
		sess:   sess,
		vm:     sess.VM,
		pacer:  pacer.FromMillis(sess.Opts.Delay),
		beeper: b,
		scale:  sess.Opts.Scale,
		pixels: make([]byte, chip8.VideoWidth*chip8.VideoHeight*4),
	}
}

func (g *Game) notify(format string, args ...any) {
	g.message = fmt.Sprintf(format, args...)
	g.messageTTL = time.Now().Add(2 * time.Second)
}

func (g *Game) handleHotkeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.quit = true
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.paused = !g.paused
		g.pacer.Reset(time.Now())
	case inpututil.IsKeyJustPressed(ebiten.KeyF12):
		g.showStatus = !g.showStatus
	case inpututil.IsKeyJustPressed(ebiten.KeyF2):
		name := fmt.Sprintf("chip8_%s.png", time.Now().Format("20060102_150405"))
		if err := g.vm.SaveScreenshot(name); err != nil {
			g.notify("screenshot failed: %v", err)
		} else {
			g.notify("saved %s", name)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyF3):
		g.sess.Reset()
		g.notify("reset")
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		if err := g.sess.SaveSlot(); err != nil {
			g.notify("%v", err)
		} else {
			g.notify("saved slot %d", g.sess.Slot)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyF9):
		if err := g.sess.LoadSlot(); err != nil {
			g.notify("%v", err)
		} else {
			g.notify("loaded slot %d", g.sess.Slot)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyF6):
		g.sess.SelectSlot(-1)
		g.notify("%s", g.sess.SlotStatus())
	case inpututil.IsKeyJustPressed(ebiten.KeyF7):
		g.sess.SelectSlot(1)
		g.notify("%s", g.sess.SlotStatus())
	case inpututil.IsKeyJustPressed(ebiten.KeyF8):
		if err := g.sess.DeleteSlot(); err != nil {
			g.notify("%v", err)
		} else {
			g.notify("deleted slot %d", g.sess.Slot)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		if g.beeper != nil {
			g.beeper.SetMuted(!g.beeper.Muted())
		}
	}
}

func (g *Game) Update() error {
	g.handleHotkeys()
	g.pollKeypad()
	return g.advance(time.Now())
}

// advance runs the steps due at now. It returns ebiten.Termination once quit
// is requested so RunGame returns and the slots are flushed.
func (g *Game) advance(now time.Time) error {
	if g.quit {
		return ebiten.Termination
	}
	if !g.paused {
		n := g.pacer.Due(now)
		g.vm.RunSteps(n)
		g.steps += n
	}

	if now.Sub(g.rateStart) >= time.Second {
		g.stepsPerSec = g.steps
		g.steps = 0
		g.rateStart = now
	}

	if g.beeper != nil {
		g.beeper.Update(g.vm.SoundTimer)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screenImg == nil {
		g.screenImg = ebiten.NewImage(chip8.VideoWidth, chip8.VideoHeight)
	}

	g.vm.FillRGBA(g.pixels, onColor, offColor)
	g.screenImg.WritePixels(g.pixels)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.screenImg, op)

	if g.showStatus || time.Now().Before(g.messageTTL) {
		g.drawStatusBar(screen)
	}
}

func (g *Game) drawStatusBar(screen *ebiten.Image) {
	w := chip8.VideoWidth * g.scale
	h := chip8.VideoHeight * g.scale
	bar := screen.SubImage(image.Rect(0, h, w, h+statusBarHeight)).(*ebiten.Image)
	bar.Fill(statusBg)

	line := fmt.Sprintf("PC %03X  I %03X  %d steps/s  slot %d", g.vm.PC, g.vm.I, g.stepsPerSec, g.sess.Slot)
	if g.paused {
		line += "  PAUSED"
	}
	if time.Now().Before(g.messageTTL) {
		line = g.message
	}
	text.Draw(screen, line, basicfont.Face7x13, 4, h+12, statusColor)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return chip8.VideoWidth * g.scale, chip8.VideoHeight*g.scale + statusBarHeight
}

func main() {
	opts, err := utils.ParseFrontendArgs("desktop", os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(1)
	}

	sess, err := session.Open(opts, os.Stderr)
	if err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}

	var b *beeper.Beeper
	if !opts.Mute {
		b, err = beeper.New(beeper.DefaultSampleRate)
		if err != nil {
			log.Printf("audio disabled: %v", err)
			b = nil
		}
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(chip8.VideoWidth*opts.Scale, chip8.VideoHeight*opts.Scale+statusBarHeight)
	ebiten.SetWindowTitle("gochip8 - " + opts.ROM)

	// Flush dirty save slots to the host every few seconds.
	sess.StartSyncer(session.SyncInterval, func(err error) {
		log.Printf("save slot sync failed: %v", err)
	})

	log.Printf("%s: %s", opts.SlotDir, sess.Summary())
	game := newGame(sess, b)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}

	if b != nil {
		_ = b.Close()
	}
	if err := sess.Close(); err != nil {
		log.Printf("save slot sync failed: %v", err)
	}
}
