package cpu

// ============================================================================
// ARM7TDMI Architecture Constants
// ============================================================================
// These values are defined by the ARM7TDMI specification and should not be
// modified

const (
	// Instruction sizes
	ARMInstructionSize   = 4 // bytes
	ThumbInstructionSize = 2 // bytes

	// Pipeline offsets: the value visible in R15 while an instruction executes
	ARMPipelineOffset   = 8 // PC is instruction address + 8 in ARM state
	ThumbPipelineOffset = 4 // PC is instruction address + 4 in Thumb state

	// Register aliases
	SP = 13 // Stack Pointer
	LR = 14 // Link Register
	PC = 15 // Program Counter

	// CPSR flag bit positions (bits 31-28)
	CPSRBitN = 31 // Negative flag
	CPSRBitZ = 30 // Zero flag
	CPSRBitC = 29 // Carry flag
	CPSRBitV = 28 // Overflow flag

	// CPSR control bit positions
	CPSRBitI = 7 // IRQ disable
	CPSRBitF = 6 // FIQ disable
	CPSRBitT = 5 // State (0=ARM, 1=Thumb)

	// Sign bit for flag calculations
	SignBitPos  = 31
	SignBitMask = 0x80000000

	// Reserved CPSR bits (27..8) read and write as zero
	CPSRReservedMask = 0x0FFFFF00
)

// ============================================================================
// Decode Table Sizes
// ============================================================================

const (
	// ARM LUT index: bits 27..20 and 7..4 of the instruction word
	ARMLutSize = 4096

	// Thumb LUT index: bits 15..6 of the halfword
	ThumbLutSize = 1024
)

// ============================================================================
// Clock and Boot Values
// ============================================================================

const (
	// ClockSpeed is the ARM7TDMI clock frequency in the GBA (16.78 MHz)
	ClockSpeed = 16777216

	// Register values installed when the BIOS boot sequence is skipped
	BootSP     = 0x03007F00
	BootSPSvc  = 0x03007FE0
	BootSPIrq  = 0x03007FA0
	BootPC     = 0x08000000
	VectorBase = 0x00000000
)
