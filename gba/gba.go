package gba

import (
	"fmt"

	"github.com/lookbusy1344/gba-emulator/cpu"
)

// GameBoyAdvance ties the core, the bus and the scheduler together and
// drives them frame by frame.
type GameBoyAdvance struct {
	arm7tdmi  *cpu.CPU
	bus       *Bus
	scheduler *Scheduler
}

// New builds a machine from a ROM image and an optional BIOS image. With
// no BIOS the boot sequence is skipped and execution starts at the
// cartridge entry point.
func New(rom []byte, biosImage []byte) (*GameBoyAdvance, error) {
	cartridge, err := LoadCartridge(rom)
	if err != nil {
		return nil, fmt.Errorf("failed to build machine: %w", err)
	}

	scheduler := NewScheduler()
	bios := NewBIOS(biosImage)
	bus := NewBus(cartridge, bios, scheduler)

	g := &GameBoyAdvance{
		arm7tdmi:  cpu.New(bus, !bios.Loaded()),
		bus:       bus,
		scheduler: scheduler,
	}
	g.scheduler.Schedule(EventHDraw, CyclesHDraw)
	return g, nil
}

// CPU exposes the core for the debugger
func (g *GameBoyAdvance) CPU() *cpu.CPU {
	return g.arm7tdmi
}

// Bus exposes the memory system
func (g *GameBoyAdvance) Bus() *Bus {
	return g.bus
}

// Scheduler exposes global time
func (g *GameBoyAdvance) Scheduler() *Scheduler {
	return g.scheduler
}

// Cartridge returns the loaded game pak
func (g *GameBoyAdvance) Cartridge() *Cartridge {
	return g.bus.cartridge
}

// FrameBuffer returns the current rendered frame
func (g *GameBoyAdvance) FrameBuffer() []uint32 {
	return g.bus.ppu.FrameBuffer()
}

// Cycle advances the machine by one instruction, or by one idle step while
// halted. Interrupt acceptance happens here, before the next fetch.
func (g *GameBoyAdvance) Cycle() {
	switch g.bus.HaltMode() {
	case HaltModeStopped:
		panic("stop mode is not supported")
	case HaltModeHalted:
		if g.bus.InterruptPending() {
			g.bus.UnHalt()
			g.arm7tdmi.Irq()
		} else {
			// Nothing can change until a peripheral raises a line; let
			// the scheduler jump to the next event
			g.scheduler.UpdateToNextEvent()
		}
	case HaltModeRunning:
		if g.bus.InterruptPending() {
			g.arm7tdmi.Irq()
		}
		g.arm7tdmi.Cycle()
	}
}

// RunFrame drives the machine for one video frame, minus the overshoot
// carried over from the previous call. It returns the new overshoot so
// frame pacing stays cycle-exact over time.
func (g *GameBoyAdvance) RunFrame(overshoot uint64) uint64 {
	start := g.scheduler.Timestamp()
	target := start + CyclesPerFrame - overshoot
	g.scheduler.ScheduleAt(EventFrameComplete, target)

	for {
		for g.scheduler.Timestamp() < g.scheduler.TimestampOfNextEvent() {
			g.Cycle()
		}
		if g.handleEvents() {
			break
		}
	}

	elapsed := g.scheduler.Timestamp() - start
	wanted := CyclesPerFrame - overshoot
	if elapsed < wanted {
		return 0
	}
	return elapsed - wanted
}

// handleEvents drains every due event and reschedules the follow-ups. It
// reports whether the frame is complete.
func (g *GameBoyAdvance) handleEvents() bool {
	frameComplete := false
	for {
		event, ok := g.scheduler.Pop()
		if !ok {
			break
		}
		switch event.Kind {
		case EventFrameComplete:
			frameComplete = true
		case EventKeypadInterrupt:
			g.bus.interrupts.Raise(IrqKeypad)
		default:
			next, delta, raised := g.bus.ppu.HandleEvent(event.Kind, g.bus.VRAM(), g.bus.PaletteRAM())
			if raised != 0 {
				g.bus.interrupts.Raise(raised)
			}
			g.scheduler.ScheduleAt(next, event.Time+delta)
		}
	}
	return frameComplete
}

// PressButtons replaces the held button set and raises the keypad
// interrupt when KEYCNT asks for one
func (g *GameBoyAdvance) PressButtons(buttons uint16) {
	g.bus.keypad.SetPressed(buttons)
	if g.bus.keypad.InterruptRaised() {
		g.bus.interrupts.Raise(IrqKeypad)
	}
}
