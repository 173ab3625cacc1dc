package utils

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
)

// ErrUsage reports a command line that does not match <Scale> <Delay> <ROM>.
var ErrUsage = errors.New("usage")

// Options is the configuration shared by the front ends.
type Options struct {
	Scale int
	// Delay is the pause between steps in milliseconds.
	Delay   int
	ROM     string
	Mute    bool
	SlotDir string
	Trace   bool
}

// ParseFrontendArgs parses "[flags] <Scale> <Delay> <ROM>". On any mismatch
// it writes the usage text to stderr and returns an error wrapping ErrUsage.
func ParseFrontendArgs(name string, args []string, stderr io.Writer) (*Options, error) {
	opts := &Options{}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.Mute, "mute", false, "disable the beeper")
	fs.StringVar(&opts.SlotDir, "slots", "", "save slot directory (default: <rom>.slots next to the ROM)")
	fs.BoolVar(&opts.Trace, "trace", false, "log every executed instruction to stderr")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags] <Scale> <Delay> <ROM>\n", name)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if fs.NArg() != 3 {
		fs.Usage()
		return nil, ErrUsage
	}

	scale, err := strconv.Atoi(fs.Arg(0))
	if err != nil || scale < 1 {
		fs.Usage()
		return nil, fmt.Errorf("%w: invalid scale %q", ErrUsage, fs.Arg(0))
	}
	delay, err := strconv.Atoi(fs.Arg(1))
	if err != nil || delay < 0 {
		fs.Usage()
		return nil, fmt.Errorf("%w: invalid delay %q", ErrUsage, fs.Arg(1))
	}

	opts.Scale = scale
	opts.Delay = delay
	opts.ROM = fs.Arg(2)

	if opts.SlotDir == "" {
		dir, err := DefaultSlotDir(opts.ROM)
		if err != nil {
			return nil, err
		}
		opts.SlotDir = dir
	}

	return opts, nil
}

// NewTraceLogger returns the logger handed to the engine's Trace field, or
// nil when tracing is off.
func NewTraceLogger(enabled bool, w io.Writer) *slog.Logger {
	if !enabled {
		return nil
	}
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
