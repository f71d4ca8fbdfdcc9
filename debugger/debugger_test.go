package debugger

import (
	"strings"
	"testing"

	"github.com/lookbusy1344/gba-emulator/gba"
)

// testMachine builds a machine whose ROM busy-loops at the entry point
func testMachine(t *testing.T) *gba.GameBoyAdvance {
	t.Helper()
	rom := make([]byte, 0x8000)
	copy(rom[0xA0:], "TESTGAME")
	copy(rom[0xAC:], "ABCD")
	copy(rom[0xB0:], "01")
	var checksum uint8
	for _, b := range rom[0xA0:0xBD] {
		checksum -= b
	}
	rom[0xBD] = checksum - 0x19
	// b 0x08000000
	rom[0] = 0xFE
	rom[1] = 0xFF
	rom[2] = 0xFF
	rom[3] = 0xEA
	machine, err := gba.New(rom, nil)
	if err != nil {
		t.Fatalf("failed to build machine: %v", err)
	}
	return machine
}

func TestBreakpointManager(t *testing.T) {
	m := NewBreakpointManager()
	m.Set(0x08000010)
	if !m.IsSet(0x08000010) {
		t.Error("breakpoint should be set")
	}
	m.Toggle(0x08000010)
	if m.IsSet(0x08000010) {
		t.Error("toggled breakpoint should be disabled")
	}
	m.Toggle(0x08000010)
	if !m.IsSet(0x08000010) {
		t.Error("re-toggled breakpoint should be enabled")
	}
	m.Delete(0x08000010)
	if m.IsSet(0x08000010) || m.Count() != 0 {
		t.Error("deleted breakpoint should be gone")
	}
}

func TestBreakpointListOrdering(t *testing.T) {
	m := NewBreakpointManager()
	m.Set(0x08000020)
	m.Set(0x08000000)
	listing := m.List()
	first := strings.Index(listing, "0x08000000")
	second := strings.Index(listing, "0x08000020")
	if first < 0 || second < 0 || first > second {
		t.Errorf("listing not in address order:\n%s", listing)
	}
}

func TestResolveAddress(t *testing.T) {
	d := NewDebugger(testMachine(t))
	if addr, err := d.ResolveAddress("0x08000000"); err != nil || addr != 0x08000000 {
		t.Errorf("hex parse: %v %v", addr, err)
	}
	if addr, err := d.ResolveAddress("4096"); err != nil || addr != 4096 {
		t.Errorf("decimal parse: %v %v", addr, err)
	}
	if _, err := d.ResolveAddress("xyzzy"); err == nil {
		t.Error("expected error for a malformed address")
	}
}

func TestContinueStopsAtBreakpoint(t *testing.T) {
	d := NewDebugger(testMachine(t))
	// The ROM branches to itself, so the entry point recurs immediately
	d.Breakpoints.Set(0x08000000)
	if !d.Continue(1000) {
		t.Fatal("expected the breakpoint to be hit")
	}
	if got := d.CurrentPC(); got != 0x08000000 {
		t.Errorf("stopped at 0x%08X, want the breakpoint", got)
	}
}

func TestFormatRegistersShowsCPSR(t *testing.T) {
	d := NewDebugger(testMachine(t))
	text := d.FormatRegisters()
	if !strings.Contains(text, "PC") || !strings.Contains(text, "CPSR") {
		t.Errorf("register dump incomplete:\n%s", text)
	}
}

func TestFormatMemoryDoesNotBillCycles(t *testing.T) {
	d := NewDebugger(testMachine(t))
	before := d.Machine.Scheduler().Timestamp()
	d.FormatMemory(0x02000000, 4)
	if d.Machine.Scheduler().Timestamp() != before {
		t.Error("debugger memory views must not advance emulated time")
	}
}
