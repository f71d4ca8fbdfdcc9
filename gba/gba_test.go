package gba

import (
	"testing"

	"github.com/lookbusy1344/gba-emulator/cpu"
)

// testMachine builds a machine whose ROM busy-loops at the entry point
func testMachine(t *testing.T) *GameBoyAdvance {
	t.Helper()
	rom := testROM("TESTGAME", "ABCD")
	// b 0x08000000 (branch to self)
	rom[0] = 0xFE
	rom[1] = 0xFF
	rom[2] = 0xFF
	rom[3] = 0xEA
	g, err := New(rom, nil)
	if err != nil {
		t.Fatalf("failed to build machine: %v", err)
	}
	return g
}

func TestMachineBootsSkippingBios(t *testing.T) {
	g := testMachine(t)
	if got := g.CPU().PC(); got != 0x08000000 {
		t.Errorf("PC = 0x%08X, want the cartridge entry point", got)
	}
}

func TestMachineRunsOneFrame(t *testing.T) {
	g := testMachine(t)
	overshoot := g.RunFrame(0)

	elapsed := g.Scheduler().Timestamp()
	if elapsed < CyclesPerFrame {
		t.Errorf("frame ended after %d cycles, want at least %d", elapsed, uint64(CyclesPerFrame))
	}
	if overshoot > 64 {
		t.Errorf("overshoot = %d, expected at most one instruction's worth", overshoot)
	}
	if got := g.Bus().PPU().VCount(); got >= TotalLines {
		t.Errorf("VCOUNT = %d out of range", got)
	}
}

func TestMachineOvershootCarriesForward(t *testing.T) {
	g := testMachine(t)
	overshoot := g.RunFrame(0)
	start := g.Scheduler().Timestamp()
	g.RunFrame(overshoot)
	elapsed := g.Scheduler().Timestamp() - start
	if elapsed > CyclesPerFrame+64 {
		t.Errorf("second frame ran %d cycles, want about %d", elapsed, uint64(CyclesPerFrame))
	}
}

func TestHaltedMachineSkipsToNextEvent(t *testing.T) {
	g := testMachine(t)
	g.Bus().System().WriteHaltControl(0)

	before := g.Scheduler().Timestamp()
	g.Cycle()
	after := g.Scheduler().Timestamp()
	if after <= before {
		t.Error("halted cycle must advance time to the next event")
	}
	if g.Bus().HaltMode() != HaltModeHalted {
		t.Error("machine must stay halted with no interrupt pending")
	}
}

func TestHaltedMachineWakesOnInterrupt(t *testing.T) {
	g := testMachine(t)
	// Prime the pipeline so the IRQ return address is meaningful
	g.CPU().Cycle()

	g.Bus().System().WriteHaltControl(0)
	g.Bus().Interrupts().SetMasterEnable(1)
	g.Bus().Interrupts().SetEnable(uint16(IrqVBlank))
	g.Bus().Interrupts().Raise(IrqVBlank)
	g.CPU().CPSR.I = false

	g.Cycle()
	if g.Bus().HaltMode() != HaltModeRunning {
		t.Error("a pending interrupt must un-halt the machine")
	}
	if g.CPU().CPSR.Mode != cpu.ModeIRQ {
		t.Errorf("expected IRQ entry, mode = %v", g.CPU().CPSR.Mode)
	}
	if got := g.CPU().PC(); got != 0x18+8 {
		t.Errorf("PC = 0x%08X, want the IRQ vector after refill", got)
	}
}

func TestPpuEventChainCoversOneFrame(t *testing.T) {
	p := NewPPU()
	vram := make([]byte, 0x18000)
	palette := make([]byte, 0x400)

	var elapsed uint64 = CyclesHDraw // the initial HDraw is scheduled at boot
	kind := EventKind(EventHDraw)
	for elapsed < CyclesPerFrame {
		next, delta, _ := p.HandleEvent(kind, vram, palette)
		kind = next
		elapsed += delta
	}
	if elapsed != CyclesPerFrame {
		t.Fatalf("event chain covered %d cycles, want exactly %d", elapsed, uint64(CyclesPerFrame))
	}
	// The event due exactly at the frame boundary wraps the scanline
	// counter back to the top
	p.HandleEvent(kind, vram, palette)
	if p.VCount() != 0 {
		t.Errorf("VCOUNT = %d after a full frame, want 0", p.VCount())
	}
}

func TestPpuVBlankInterrupt(t *testing.T) {
	p := NewPPU()
	p.SetDisplayStatus(statVBlankIRQ)
	vram := make([]byte, 0x18000)
	palette := make([]byte, 0x400)

	var raised Interrupt
	kind := EventKind(EventHDraw)
	for i := 0; i < 2*TotalLines; i++ {
		next, _, irq := p.HandleEvent(kind, vram, palette)
		raised |= irq
		kind = next
	}
	if raised&IrqVBlank == 0 {
		t.Error("expected a VBlank interrupt during the frame")
	}
}

func TestPpuMode3Render(t *testing.T) {
	p := NewPPU()
	p.SetDisplayControl(3)
	vram := make([]byte, 0x18000)
	palette := make([]byte, 0x400)
	// Pure red in RGB555 at pixel (0,0)
	vram[0] = 0x1F
	vram[1] = 0x00

	p.renderScanline(vram, palette)
	if got := p.FrameBuffer()[0]; got != 0x00F80000|0x00070000 {
		t.Errorf("pixel = 0x%08X, want saturated red", got)
	}
}
