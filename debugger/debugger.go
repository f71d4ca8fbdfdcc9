package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lookbusy1344/gba-emulator/cpu"
	"github.com/lookbusy1344/gba-emulator/gba"
)

// Debugger represents the debugger state and functionality
type Debugger struct {
	Machine *gba.GameBoyAdvance

	// Breakpoint management
	Breakpoints *BreakpointManager

	// Execution control
	Running bool

	// Last command (for repeat on empty input)
	LastCommand string

	// Output buffer
	Output strings.Builder
}

// NewDebugger creates a new debugger instance
func NewDebugger(machine *gba.GameBoyAdvance) *Debugger {
	return &Debugger{
		Machine:     machine,
		Breakpoints: NewBreakpointManager(),
	}
}

// CurrentPC returns the address of the instruction the core will execute
// next, accounting for the prefetch pipeline
func (d *Debugger) CurrentPC() uint32 {
	offset := uint32(cpu.ARMPipelineOffset)
	if d.Machine.CPU().CPSR.State == cpu.StateThumb {
		offset = cpu.ThumbPipelineOffset
	}
	return d.Machine.CPU().PC() - offset
}

// Step executes a single instruction
func (d *Debugger) Step() {
	d.Machine.Cycle()
}

// Continue runs until a breakpoint is hit or the step budget is exhausted.
// It returns true when a breakpoint stopped execution.
func (d *Debugger) Continue(maxSteps int) bool {
	d.Running = true
	for i := 0; i < maxSteps; i++ {
		d.Machine.Cycle()
		if d.Breakpoints.IsSet(d.CurrentPC()) {
			d.Running = false
			return true
		}
	}
	d.Running = false
	return false
}

// ResolveAddress parses a numeric address (hex with 0x prefix, or decimal)
func (d *Debugger) ResolveAddress(addrStr string) (uint32, error) {
	addrStr = strings.TrimSpace(addrStr)
	base := 10
	if strings.HasPrefix(addrStr, "0x") || strings.HasPrefix(addrStr, "0X") {
		addrStr = addrStr[2:]
		base = 16
	}
	value, err := strconv.ParseUint(addrStr, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", addrStr, err)
	}
	return uint32(value), nil
}

// FormatRegisters renders the register file for the register panel
func (d *Debugger) FormatRegisters() string {
	core := d.Machine.CPU()
	var sb strings.Builder
	for i := 0; i <= 15; i++ {
		name := fmt.Sprintf("R%d", i)
		switch i {
		case cpu.SP:
			name = "SP"
		case cpu.LR:
			name = "LR"
		case cpu.PC:
			name = "PC"
		}
		fmt.Fprintf(&sb, "%-3s 0x%08X", name, core.Register(i))
		if i%2 == 1 {
			sb.WriteByte('\n')
		} else {
			sb.WriteString("  ")
		}
	}
	fmt.Fprintf(&sb, "CPSR %v\n", core.CPSR)
	fmt.Fprintf(&sb, "Cycles %d\n", d.Machine.Scheduler().Timestamp())
	return sb.String()
}

// FormatMemory renders a hex dump around the given address
func (d *Debugger) FormatMemory(start uint32, lines int) string {
	bus := d.Machine.Bus()
	var sb strings.Builder
	address := start &^ 0xF
	for line := 0; line < lines; line++ {
		fmt.Fprintf(&sb, "%08X  ", address)
		ascii := make([]byte, 0, 16)
		for i := uint32(0); i < 16; i++ {
			b := bus.Peek8(address + i)
			fmt.Fprintf(&sb, "%02X ", b)
			if b >= 0x20 && b <= 0x7E {
				ascii = append(ascii, b)
			} else {
				ascii = append(ascii, '.')
			}
		}
		fmt.Fprintf(&sb, " %s\n", ascii)
		address += 16
	}
	return sb.String()
}

// FormatDisassembly renders the most recent instruction and the current
// stop address
func (d *Debugger) FormatDisassembly() string {
	return fmt.Sprintf("0x%08X  %s\n", d.CurrentPC(), d.Machine.CPU().Disassembly())
}
