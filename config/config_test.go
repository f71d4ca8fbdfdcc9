package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Emulation.SkipBios {
		t.Error("expected skip_bios to default to true")
	}
	if cfg.Emulation.MaxCycles != 0 {
		t.Errorf("expected unlimited cycles, got %d", cfg.Emulation.MaxCycles)
	}
	if !cfg.Emulation.FrameLimit {
		t.Error("expected frame limiting on by default")
	}
	if cfg.Display.Scale != 3 {
		t.Errorf("expected default scale 3, got %d", cfg.Display.Scale)
	}
	if cfg.Debugger.HistorySize != 1000 {
		t.Errorf("expected history size 1000, got %d", cfg.Debugger.HistorySize)
	}
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Emulation.SkipBios || cfg.Display.Scale != 3 {
		t.Error("missing file must yield defaults")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Emulation.BiosPath = "/roms/gba_bios.bin"
	cfg.Emulation.SkipBios = false
	cfg.Emulation.MaxCycles = 5000000
	cfg.Display.Scale = 4
	cfg.Trace.OutputFile = "out.log"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Emulation.BiosPath != "/roms/gba_bios.bin" {
		t.Errorf("bios path = %q", loaded.Emulation.BiosPath)
	}
	if loaded.Emulation.SkipBios {
		t.Error("skip_bios should round-trip as false")
	}
	if loaded.Emulation.MaxCycles != 5000000 {
		t.Errorf("max_cycles = %d", loaded.Emulation.MaxCycles)
	}
	if loaded.Display.Scale != 4 {
		t.Errorf("scale = %d", loaded.Display.Scale)
	}
	if loaded.Trace.OutputFile != "out.log" {
		t.Errorf("trace output = %q", loaded.Trace.OutputFile)
	}
}

func TestLoadFromRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[emulation\nbroken"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected a parse error")
	}
}
