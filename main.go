//go:build !js

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/buildinfo"

	"gochip8/pkg/asm"
	"gochip8/pkg/chip8"
	"gochip8/pkg/utils"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type runOptions struct {
	steps      int
	screenshot string
	stateIn    string
	stateOut   string
	wrapHeight bool
	trace      bool
}

func main() {
	inPath := flag.String("in", "", "input assembly file path")
	outPath := flag.String("out", "", "output ROM file path (default: input with .ch8 extension)")
	runProgram := flag.Bool("run", false, "run the assembled ROM headless")
	runBinPath := flag.String("run-bin", "", "run an existing ROM headless")
	disasmPath := flag.String("disasm", "", "print a listing of an existing ROM")
	steps := flag.Int("steps", 1000, "instructions to execute when running headless")
	shotPath := flag.String("shot", "", "write the final display to this PNG file")
	stateIn := flag.String("state-in", "", "restore this snapshot before running")
	stateOut := flag.String("state-out", "", "write a snapshot after running")
	wrapHeight := flag.Bool("wrap-height", false, "wrap sprite rows by display height instead of width")
	trace := flag.Bool("trace", false, "log every executed instruction to stderr")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("gochip8 %s\n", buildinfo.Version(version, commit, date))
		return
	}

	if *runProgram && *runBinPath != "" {
		fmt.Fprintln(os.Stderr, "use either -run or -run-bin, not both")
		os.Exit(2)
	}

	if *disasmPath != "" {
		if err := disasmFile(*disasmPath, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "disassembly failed for %q: %v\n", *disasmPath, err)
			os.Exit(1)
		}
	}

	assembledOutput := ""
	if *inPath != "" {
		output := *outPath
		if output == "" {
			output = defaultOutputPath(*inPath)
		}
		n, err := assembleFile(*inPath, output)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("assembled %d bytes -> %s\n", n, output)
		assembledOutput = output
	}

	if *inPath == "" && *runBinPath == "" && *disasmPath == "" && !*runProgram {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in to assemble, -run to run assembled output, -run-bin <file> to run an existing ROM or -disasm <file> to list one")
		flag.Usage()
		os.Exit(2)
	}

	runTarget := ""
	switch {
	case *runBinPath != "":
		runTarget = *runBinPath
	case *runProgram:
		if assembledOutput == "" {
			fmt.Fprintln(os.Stderr, "-run requires -in, or use -run-bin <file>")
			os.Exit(2)
		}
		runTarget = assembledOutput
	default:
		return
	}

	opts := runOptions{
		steps:      *steps,
		screenshot: *shotPath,
		stateIn:    *stateIn,
		stateOut:   *stateOut,
		wrapHeight: *wrapHeight,
		trace:      *trace,
	}
	if err := runBinary(runTarget, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "run failed for %q: %v\n", runTarget, err)
		os.Exit(1)
	}
}

func defaultOutputPath(inPath string) string {
	ext := filepath.Ext(inPath)
	if ext == "" {
		return inPath + ".ch8"
	}
	return strings.TrimSuffix(inPath, ext) + ".ch8"
}

// assembleFile assembles the source at inPath into a ROM at outPath and
// returns the ROM size.
func assembleFile(inPath, outPath string) (int, error) {
	source, err := os.ReadFile(inPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read input file %q: %w", inPath, err)
	}
	code, _, err := asm.Assemble(string(source))
	if err != nil {
		return 0, fmt.Errorf("assembly failed: %w", err)
	}
	if err := os.WriteFile(outPath, code, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write ROM file %q: %w", outPath, err)
	}
	return len(code), nil
}

func disasmFile(path string, w io.Writer) error {
	program, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, asm.FormatListing(asm.Listing(program)))
	return err
}

// runBinary loads a ROM, executes opts.steps instructions and reports the
// final machine state to w.
func runBinary(path string, opts runOptions, w io.Writer) error {
	vm := chip8.NewCPU()
	vm.Quirks.WrapVerticalByHeight = opts.wrapHeight
	vm.Trace = utils.NewTraceLogger(opts.trace, os.Stderr)
	if err := vm.LoadROM(path); err != nil {
		return err
	}
	if opts.stateIn != "" {
		if err := vm.RestoreFromFile(opts.stateIn); err != nil {
			return fmt.Errorf("restore snapshot: %w", err)
		}
	}

	vm.RunSteps(opts.steps)

	if opts.stateOut != "" {
		if err := vm.SnapshotToFile(opts.stateOut); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}

	fmt.Fprintf(w, "run complete (%s): PC=0x%03X I=0x%03X SP=%d DT=%d ST=%d\n",
		path, vm.PC, vm.I, vm.SP, vm.DelayTimer, vm.SoundTimer)
	for row := 0; row < chip8.NumRegisters; row += 8 {
		for r := row; r < row+8; r++ {
			fmt.Fprintf(w, "V%X=0x%02X ", r, vm.V[r])
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, strings.Join(vm.TextLines(1), "\n"))

	if opts.screenshot != "" {
		if err := vm.SaveScreenshot(opts.screenshot); err != nil {
			return fmt.Errorf("save screenshot: %w", err)
		}
	}
	return nil
}
