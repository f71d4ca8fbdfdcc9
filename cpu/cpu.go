package cpu

import "fmt"

// CPU is a cycle-accurate ARM7TDMI core. It owns the register file, the
// status registers and the two-slot prefetch pipeline; every memory access
// goes through the bus, which bills cycles to the system scheduler before
// returning.
type CPU struct {
	// General registers R0-R15. R8-R14 are overlaid by the banked sets
	// below depending on the current mode.
	gpr [16]uint32

	// Banked registers
	bankFIQ [7]uint32 // R8-R14
	bankSVC [2]uint32 // R13-R14
	bankABT [2]uint32 // R13-R14
	bankIRQ [2]uint32 // R13-R14
	bankUND [2]uint32 // R13-R14

	// Saved status registers, indexed by spsrIndex: FIQ, SVC, ABT, IRQ, UND
	spsr [5]PSR

	// CPSR is the live program status register
	CPSR PSR

	// Prefetch pipeline: slot 0 holds the word being decoded, slot 1 the
	// word just fetched
	pipeline [2]uint32

	bus        MemoryInterface
	nextAccess Access

	armLut   [ARMLutSize]ArmKind
	thumbLut [ThumbLutSize]ThumbKind

	// Debug string of the most recently executed instruction
	disassembly string
}

// action tells Cycle how to proceed after an execute routine: either the
// PC advance was normal and the next fetch carries the given tag, or the
// instruction wrote PC and already refilled the pipeline.
type action struct {
	flush bool
	next  Access
}

func advance(next Access) action {
	return action{next: next | Instruction}
}

var flushed = action{flush: true}

// New constructs a CPU attached to the given bus. With skipBios the
// register file is set up the way the BIOS boot sequence would leave it;
// otherwise execution starts at the reset vector in supervisor mode with
// interrupts masked.
func New(bus MemoryInterface, skipBios bool) *CPU {
	c := &CPU{
		bus:        bus,
		nextAccess: Instruction | NonSequential,
		armLut:     generateArmLut(),
		thumbLut:   generateThumbLut(),
	}
	for i := range c.spsr {
		c.spsr[i] = NewPSR(uint32(ModeSupervisor))
	}

	if skipBios {
		c.gpr[SP] = BootSP
		c.gpr[LR] = BootPC
		c.gpr[PC] = BootPC
		c.bankSVC[0] = BootSPSvc
		c.bankIRQ[0] = BootSPIrq
		c.CPSR = NewPSR(uint32(ModeSystem))
	} else {
		c.CPSR = NewPSR(uint32(ModeSupervisor))
		c.CPSR.I = true
		c.CPSR.F = true
	}
	return c
}

// Bus returns the memory interface the core was constructed with
func (c *CPU) Bus() MemoryInterface {
	return c.bus
}

// PC returns the program counter
func (c *CPU) PC() uint32 {
	return c.gpr[PC]
}

// SetPC sets the program counter without flushing the pipeline
func (c *CPU) SetPC(value uint32) {
	c.gpr[PC] = value
}

func (c *CPU) advancePCArm() {
	c.gpr[PC] += ARMInstructionSize
}

func (c *CPU) advancePCThumb() {
	c.gpr[PC] += ThumbInstructionSize
}

// Register reads a register through the bank selected by the current mode
func (c *CPU) Register(index int) uint32 {
	switch {
	case index >= 0 && index <= 7, index == PC:
		return c.gpr[index]
	case index >= 8 && index <= 12:
		if c.CPSR.Mode == ModeFIQ {
			return c.bankFIQ[index-8]
		}
		return c.gpr[index]
	case index == SP || index == LR:
		switch c.CPSR.Mode {
		case ModeUser, ModeSystem:
			return c.gpr[index]
		case ModeFIQ:
			return c.bankFIQ[index-8]
		case ModeIRQ:
			return c.bankIRQ[index-13]
		case ModeSupervisor:
			return c.bankSVC[index-13]
		case ModeAbort:
			return c.bankABT[index-13]
		case ModeUndefined:
			return c.bankUND[index-13]
		}
	}
	panic(fmt.Sprintf("register index out of range: %d", index))
}

// SetRegister writes a register through the bank selected by the current
// mode
func (c *CPU) SetRegister(index int, value uint32) {
	switch {
	case index >= 0 && index <= 7, index == PC:
		c.gpr[index] = value
		return
	case index >= 8 && index <= 12:
		if c.CPSR.Mode == ModeFIQ {
			c.bankFIQ[index-8] = value
		} else {
			c.gpr[index] = value
		}
		return
	case index == SP || index == LR:
		switch c.CPSR.Mode {
		case ModeUser, ModeSystem:
			c.gpr[index] = value
		case ModeFIQ:
			c.bankFIQ[index-8] = value
		case ModeIRQ:
			c.bankIRQ[index-13] = value
		case ModeSupervisor:
			c.bankSVC[index-13] = value
		case ModeAbort:
			c.bankABT[index-13] = value
		case ModeUndefined:
			c.bankUND[index-13] = value
		}
		return
	}
	panic(fmt.Sprintf("register index out of range: %d", index))
}

// spsrIndex maps an exception mode to its SPSR slot
func spsrIndex(mode Mode) int {
	switch mode {
	case ModeFIQ:
		return 0
	case ModeSupervisor:
		return 1
	case ModeAbort:
		return 2
	case ModeIRQ:
		return 3
	case ModeUndefined:
		return 4
	}
	return -1
}

// SPSR returns the saved status register of the current mode. User and
// system mode have no SPSR and observe CPSR instead.
func (c *CPU) SPSR() PSR {
	if i := spsrIndex(c.CPSR.Mode); i >= 0 {
		return c.spsr[i]
	}
	return c.CPSR
}

// SetSPSR writes the saved status register of the current mode
func (c *CPU) SetSPSR(psr PSR) {
	if i := spsrIndex(c.CPSR.Mode); i >= 0 {
		c.spsr[i] = psr
	} else {
		c.CPSR = psr
	}
}

func (c *CPU) setModeSPSR(mode Mode, psr PSR) {
	if i := spsrIndex(mode); i >= 0 {
		c.spsr[i] = psr
	} else {
		c.CPSR = psr
	}
}

// IsConditionMet evaluates a condition code against the CPSR flags
func (c *CPU) IsConditionMet(cond Condition) bool {
	switch cond {
	case CondEQ:
		return c.CPSR.Z
	case CondNE:
		return !c.CPSR.Z
	case CondCS:
		return c.CPSR.C
	case CondCC:
		return !c.CPSR.C
	case CondMI:
		return c.CPSR.N
	case CondPL:
		return !c.CPSR.N
	case CondVS:
		return c.CPSR.V
	case CondVC:
		return !c.CPSR.V
	case CondHI:
		return c.CPSR.C && !c.CPSR.Z
	case CondLS:
		return !c.CPSR.C || c.CPSR.Z
	case CondGE:
		return c.CPSR.N == c.CPSR.V
	case CondLT:
		return c.CPSR.N != c.CPSR.V
	case CondGT:
		return !c.CPSR.Z && c.CPSR.N == c.CPSR.V
	case CondLE:
		return c.CPSR.Z || c.CPSR.N != c.CPSR.V
	default:
		return true
	}
}

// Cycle executes one instruction: consume the pipeline head, refill the
// fetch slot, decode, check the condition, dispatch
func (c *CPU) Cycle() {
	switch c.CPSR.State {
	case StateARM:
		pc := c.gpr[PC] &^ 0x3
		opcode := c.pipeline[0]
		c.pipeline[0] = c.pipeline[1]
		c.pipeline[1] = c.bus.Load32(pc, c.nextAccess)

		inst := ArmInstruction{
			Kind:    c.armLut[armLutIndex(opcode)],
			Raw:     opcode,
			Address: pc - ARMPipelineOffset,
		}
		c.disassembly = c.disassembleArm(inst)

		if cond := inst.Cond(); cond != CondAL && !c.IsConditionMet(cond) {
			c.advancePCArm()
			c.nextAccess = Instruction | Sequential
			return
		}

		if act := c.executeArm(inst); !act.flush {
			c.advancePCArm()
			c.nextAccess = act.next
		}
	case StateThumb:
		pc := c.gpr[PC] &^ 0x1
		opcode := uint16(c.pipeline[0])
		c.pipeline[0] = c.pipeline[1]
		c.pipeline[1] = c.bus.Load16(pc, c.nextAccess)

		inst := ThumbInstruction{
			Kind:    c.thumbLut[thumbLutIndex(opcode)],
			Raw:     opcode,
			Address: pc - ThumbPipelineOffset,
		}
		c.disassembly = c.disassembleThumb(inst)

		if act := c.executeThumb(inst); !act.flush {
			c.advancePCThumb()
			c.nextAccess = act.next
		}
	}
}

// PipelineFlush reloads both pipeline slots from the current PC and leaves
// PC two fetches ahead, so the next Cycle consumes the first word at the
// branch target
func (c *CPU) PipelineFlush() {
	switch c.CPSR.State {
	case StateARM:
		c.pipeline[0] = c.bus.Load32(c.gpr[PC], Instruction|NonSequential)
		c.advancePCArm()
		c.pipeline[1] = c.bus.Load32(c.gpr[PC], Instruction|Sequential)
		c.advancePCArm()
	case StateThumb:
		c.pipeline[0] = c.bus.Load16(c.gpr[PC], Instruction|NonSequential)
		c.advancePCThumb()
		c.pipeline[1] = c.bus.Load16(c.gpr[PC], Instruction|Sequential)
		c.advancePCThumb()
	}
	c.nextAccess = Instruction | Sequential
}

// Exception is an entry in the vector table
type Exception uint32

const (
	ExceptionReset             Exception = 0x00
	ExceptionUndefined         Exception = 0x04
	ExceptionSoftwareInterrupt Exception = 0x08
	ExceptionPrefetchAbort     Exception = 0x0C
	ExceptionDataAbort         Exception = 0x10
	ExceptionIRQ               Exception = 0x18
	ExceptionFIQ               Exception = 0x1C
)

// entryFor returns the target mode and interrupt masking for an exception
func entryFor(exception Exception) (mode Mode, disableIRQ, disableFIQ bool) {
	switch exception {
	case ExceptionReset:
		return ModeSupervisor, true, true
	case ExceptionUndefined:
		return ModeUndefined, true, false
	case ExceptionSoftwareInterrupt:
		return ModeSupervisor, true, false
	case ExceptionPrefetchAbort, ExceptionDataAbort:
		// Never raised by the current bus; the slots exist for forward
		// compatibility
		return ModeAbort, true, false
	case ExceptionIRQ:
		return ModeIRQ, true, false
	case ExceptionFIQ:
		return ModeFIQ, true, true
	}
	panic(fmt.Sprintf("unknown exception vector: %#04x", uint32(exception)))
}

// Exception performs the exception entry protocol: save CPSR into the
// target mode's SPSR, switch mode and state, mask interrupts as required,
// set the banked LR to the return address and jump to the vector
func (c *CPU) Exception(exception Exception) {
	mode, disableIRQ, disableFIQ := entryFor(exception)

	c.setModeSPSR(mode, c.CPSR)
	c.CPSR.Mode = mode
	if disableIRQ {
		c.CPSR.I = true
	}
	if disableFIQ {
		c.CPSR.F = true
	}

	returnPC := c.gpr[PC] - ARMInstructionSize
	if c.CPSR.State == StateThumb {
		returnPC = c.gpr[PC] - ThumbInstructionSize
	}
	c.SetRegister(LR, returnPC)

	c.CPSR.State = StateARM
	c.gpr[PC] = uint32(exception)
	c.PipelineFlush()
}

// Reset injects the reset exception
func (c *CPU) Reset() {
	c.Exception(ExceptionReset)
}

// Irq enters the IRQ exception unless IRQs are masked
func (c *CPU) Irq() {
	if !c.CPSR.I {
		c.Exception(ExceptionIRQ)
	}
}

// Fiq enters the FIQ exception unless FIQs are masked
func (c *CPU) Fiq() {
	if !c.CPSR.F {
		c.Exception(ExceptionFIQ)
	}
}

// Disassembly returns the debug string of the most recently executed
// instruction
func (c *CPU) Disassembly() string {
	return c.disassembly
}

// Pipeline returns the two prefetch slots
func (c *CPU) Pipeline() [2]uint32 {
	return c.pipeline
}

// SetPipeline overwrites the prefetch slots; used by test harnesses that
// install machine state directly
func (c *CPU) SetPipeline(slots [2]uint32) {
	c.pipeline = slots
}
