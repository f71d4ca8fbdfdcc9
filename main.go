package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/lookbusy1344/gba-emulator/config"
	"github.com/lookbusy1344/gba-emulator/debugger"
	"github.com/lookbusy1344/gba-emulator/gba"
	"github.com/lookbusy1344/gba-emulator/gui"
	"github.com/lookbusy1344/gba-emulator/loader"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"     // Version number (set by git tag at build time)
	Commit  = "unknown" // Git commit hash
	Date    = "unknown" // Build date
)

func main() {
	// Command-line flags
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		romPath     = flag.String("rom", "", "ROM file to be loaded")
		biosPath    = flag.String("bios", "", "BIOS file to be loaded (skips the BIOS when absent)")
		tuiMode     = flag.Bool("tui", false, "Start the TUI debugger instead of the display window")
		headless    = flag.Bool("headless", false, "Run without a window (use with -max-cycles)")
		maxCycles   = flag.Uint64("max-cycles", 0, "Stop after this many machine steps in headless mode (0 = one frame)")
		scale       = flag.Int("scale", 0, "Window scale factor (0 = from config)")
		trace       = flag.Bool("trace", false, "Print the executed instructions in headless mode")
	)

	flag.Parse()

	// Show version
	if *showVersion {
		fmt.Printf("GBA Emulator %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	// Show help
	if *showHelp || *romPath == "" {
		printHelp()
		if *romPath == "" && !*showHelp {
			os.Exit(2)
		}
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	bios := *biosPath
	if bios == "" && !cfg.Emulation.SkipBios {
		bios = cfg.Emulation.BiosPath
	}

	machine, err := loader.LoadMachine(*romPath, bios)
	if err != nil {
		log.Fatalf("failed to load machine: %v", err)
	}

	header := machine.Cartridge().Header()
	fmt.Printf("Loaded %q (%s, maker %s)\n", header.GameTitle, header.GameCode, header.MakerCode)

	switch {
	case *tuiMode:
		dbg := debugger.NewDebugger(machine)
		if err := debugger.NewTUI(dbg).Run(); err != nil {
			log.Fatalf("debugger failed: %v", err)
		}

	case *headless:
		runHeadless(machine, *maxCycles, *trace)

	default:
		windowScale := *scale
		if windowScale == 0 {
			windowScale = cfg.Display.Scale
		}
		if err := gui.Run(machine, windowScale); err != nil {
			log.Fatalf("display failed: %v", err)
		}
	}
}

// runHeadless drives the machine without a window: either a fixed number
// of machine steps, or exactly one video frame
func runHeadless(machine *gba.GameBoyAdvance, maxCycles uint64, trace bool) {
	if maxCycles == 0 {
		machine.RunFrame(0)
	} else {
		for i := uint64(0); i < maxCycles; i++ {
			machine.Cycle()
			if trace {
				fmt.Printf("%s\n", machine.CPU().Disassembly())
			}
		}
	}
	fmt.Printf("Stopped after %d cycles, PC=0x%08X\n",
		machine.Scheduler().Timestamp(), machine.CPU().PC())
}

func printHelp() {
	fmt.Println(`GBA Emulator - a Game Boy Advance emulator

Usage:
  gba-emulator -rom <file.gba> [options]

Options:
  -rom <file>        ROM file to load (required)
  -bios <file>       BIOS image; without one the boot sequence is skipped
  -tui               open the TUI debugger
  -headless          run without a window
  -max-cycles <n>    machine steps to run in headless mode
  -trace             print executed instructions in headless mode
  -scale <n>         window scale factor
  -version           show version information
  -help              show this help`)
}
