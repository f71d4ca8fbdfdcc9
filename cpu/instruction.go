package cpu

// Decoded instructions carry their kind, the raw word and the address they
// execute at. Operand fields are re-derived from the raw word on demand;
// the accessors below name the fixed bit ranges of each instruction class.

// Condition is the 4-bit condition field at bits 31..28 of every ARM
// instruction (and bits 11..8 of a Thumb conditional branch)
type Condition uint8

const (
	CondEQ Condition = 0b0000
	CondNE Condition = 0b0001
	CondCS Condition = 0b0010
	CondCC Condition = 0b0011
	CondMI Condition = 0b0100
	CondPL Condition = 0b0101
	CondVS Condition = 0b0110
	CondVC Condition = 0b0111
	CondHI Condition = 0b1000
	CondLS Condition = 0b1001
	CondGE Condition = 0b1010
	CondLT Condition = 0b1011
	CondGT Condition = 0b1100
	CondLE Condition = 0b1101
	CondAL Condition = 0b1110
)

func (c Condition) String() string {
	names := [16]string{
		"EQ", "NE", "CS", "CC", "MI", "PL", "VS", "VC",
		"HI", "LS", "GE", "LT", "GT", "LE", "", "NV",
	}
	return names[c&0xF]
}

// ArmInstruction is a decoded 32-bit instruction
type ArmInstruction struct {
	Kind    ArmKind
	Raw     uint32
	Address uint32 // address the instruction executes at (PC - 8)
}

func (i ArmInstruction) bit(n uint) bool {
	return i.Raw&(1<<n) != 0
}

func (i ArmInstruction) bits(lo, hi uint) uint32 {
	return (i.Raw >> lo) & (1<<(hi-lo+1) - 1)
}

// Cond returns the condition field
func (i ArmInstruction) Cond() Condition {
	return Condition(i.Raw >> 28)
}

// Register fields. Not every class uses every field; the accessors follow
// the datasheet bit layout for the classes that do.

func (i ArmInstruction) Rn() int { return int(i.bits(16, 19)) }
func (i ArmInstruction) Rd() int { return int(i.bits(12, 15)) }
func (i ArmInstruction) Rs() int { return int(i.bits(8, 11)) }
func (i ArmInstruction) Rm() int { return int(i.bits(0, 3)) }

// RdHi and RdLo are the destination pair of a long multiply
func (i ArmInstruction) RdHi() int { return int(i.bits(16, 19)) }
func (i ArmInstruction) RdLo() int { return int(i.bits(12, 15)) }

// SetsFlags is the S bit
func (i ArmInstruction) SetsFlags() bool { return i.bit(20) }

// Opcode is the data-processing opcode field
func (i ArmInstruction) Opcode() DataOpcode { return DataOpcode(i.bits(21, 24)) }

// IsImmediate is the I bit of a data-processing or PSR-transfer instruction
func (i ArmInstruction) IsImmediate() bool { return i.bit(25) }

// Immediate is the 8-bit immediate of the rotated-immediate operand form
func (i ArmInstruction) Immediate() uint32 { return i.bits(0, 7) }

// Rotate is the 4-bit rotate field; the applied rotation is twice this
func (i ArmInstruction) Rotate() uint32 { return i.bits(8, 11) }

// RegisterShift distinguishes a register-specified shift amount (bit 4)
// from an immediate shift amount
func (i ArmInstruction) RegisterShift() bool { return i.bit(4) }

// ShiftAmount is the 5-bit immediate shift amount
func (i ArmInstruction) ShiftAmount() uint32 { return i.bits(7, 11) }

// ShiftType is the 2-bit shift kind of a shifted-register operand
func (i ArmInstruction) ShiftType() ShiftType { return ShiftType(i.bits(5, 6)) }

// Single data transfer and halfword transfer control bits

func (i ArmInstruction) PreIndex() bool  { return i.bit(24) }
func (i ArmInstruction) Add() bool       { return i.bit(23) }
func (i ArmInstruction) Byte() bool      { return i.bit(22) }
func (i ArmInstruction) WriteBack() bool { return i.bit(21) }
func (i ArmInstruction) Load() bool      { return i.bit(20) }

// TransferImmediate is the 12-bit offset of a single data transfer; the
// transfer's I bit has inverted sense relative to data processing
func (i ArmInstruction) TransferImmediate() uint32 { return i.bits(0, 11) }

// HalfwordImmediate assembles the split 4+4-bit offset of a halfword
// transfer
func (i ArmInstruction) HalfwordImmediate() uint32 {
	return i.bits(8, 11)<<4 | i.bits(0, 3)
}

// HalfwordIsImmediate is bit 22, the offset-form selector of a halfword
// transfer
func (i ArmInstruction) HalfwordIsImmediate() bool { return i.bit(22) }

// Signed and Halfword select among LDRH/STRH/LDRSB/LDRSH
func (i ArmInstruction) Signed() bool   { return i.bit(6) }
func (i ArmInstruction) Halfword() bool { return i.bit(5) }

// Multiply control bits

func (i ArmInstruction) Accumulate() bool     { return i.bit(21) }
func (i ArmInstruction) SignedMultiply() bool { return i.bit(22) }

// MultiplyRd and MultiplyRn are swapped relative to data processing
func (i ArmInstruction) MultiplyRd() int { return int(i.bits(16, 19)) }
func (i ArmInstruction) MultiplyRn() int { return int(i.bits(12, 15)) }

// Block data transfer fields

// RegisterList returns the registers named in the 16-bit list, in
// ascending order
func (i ArmInstruction) RegisterList() []int {
	list := make([]int, 0, 16)
	for r := 0; r <= 15; r++ {
		if i.Raw&(1<<r) != 0 {
			list = append(list, r)
		}
	}
	return list
}

// PsrForceUser is the S bit of a block transfer: load PSR or force the
// user-mode bank
func (i ArmInstruction) PsrForceUser() bool { return i.bit(22) }

// Branch fields

// Link is the L bit of a branch
func (i ArmInstruction) Link() bool { return i.bit(24) }

// BranchOffset returns the sign-extended 24-bit offset shifted left by two
func (i ArmInstruction) BranchOffset() int32 {
	return int32(i.bits(0, 23)<<8) >> 6
}

// PSR transfer fields

// IsSPSR selects the banked SPSR instead of CPSR
func (i ArmInstruction) IsSPSR() bool { return i.bit(22) }

// IsMRS reports the register-read form of a PSR transfer
func (i ArmInstruction) IsMRS() bool { return i.bits(16, 21) == 0b001111 }

// FieldMask expands the 4-bit field mask into the byte lanes it selects
func (i ArmInstruction) FieldMask() uint32 {
	var mask uint32
	if i.bit(19) {
		mask |= 0xFF000000
	}
	if i.bit(18) {
		mask |= 0x00FF0000
	}
	if i.bit(17) {
		mask |= 0x0000FF00
	}
	if i.bit(16) {
		mask |= 0x000000FF
	}
	return mask
}

// Comment is the 24-bit comment field of a software interrupt
func (i ArmInstruction) Comment() uint32 { return i.bits(0, 23) }

// ThumbInstruction is a decoded 16-bit instruction
type ThumbInstruction struct {
	Kind    ThumbKind
	Raw     uint16
	Address uint32 // address the instruction executes at (PC - 4)
}

func (i ThumbInstruction) bit(n uint) bool {
	return i.Raw&(1<<n) != 0
}

func (i ThumbInstruction) bits(lo, hi uint) uint16 {
	return (i.Raw >> lo) & (1<<(hi-lo+1) - 1)
}

// Low-register fields shared by most Thumb formats

func (i ThumbInstruction) Rd() int { return int(i.bits(0, 2)) }
func (i ThumbInstruction) Rs() int { return int(i.bits(3, 5)) }
func (i ThumbInstruction) Rn() int { return int(i.bits(6, 8)) }
func (i ThumbInstruction) Rb() int { return int(i.bits(3, 5)) }
func (i ThumbInstruction) Ro() int { return int(i.bits(6, 8)) }

// Rd8 is the 3-bit destination at bits 10..8 used by the immediate,
// PC-relative, SP-relative and load-address formats
func (i ThumbInstruction) Rd8() int { return int(i.bits(8, 10)) }

// Offset5 is the 5-bit immediate of shift and load/store formats
func (i ThumbInstruction) Offset5() uint32 { return uint32(i.bits(6, 10)) }

// Offset8 is the 8-bit immediate of immediate-arithmetic and relative
// load/store formats
func (i ThumbInstruction) Offset8() uint32 { return uint32(i.bits(0, 7)) }

// Offset7 is the 7-bit offset of add-offset-to-SP
func (i ThumbInstruction) Offset7() uint32 { return uint32(i.bits(0, 6)) }

// Offset11 is the 11-bit offset of the unconditional and long branches
func (i ThumbInstruction) Offset11() uint32 { return uint32(i.bits(0, 10)) }

// ShiftOpcode is the 2-bit shift selector of move-shifted-register
func (i ThumbInstruction) ShiftOpcode() ShiftType { return ShiftType(i.bits(11, 12)) }

// ImmediateOpcode is the 2-bit MOV/CMP/ADD/SUB selector at bits 12..11
func (i ThumbInstruction) ImmediateOpcode() uint16 { return i.bits(11, 12) }

// AluOpcode is the 4-bit ALU-operations selector
func (i ThumbInstruction) AluOpcode() uint16 { return i.bits(6, 9) }

// HiOpcode is the 2-bit ADD/CMP/MOV/BX selector of the hi-register format
func (i ThumbInstruction) HiOpcode() uint16 { return i.bits(8, 9) }

// H1 and H2 promote Rd and Rs to the high register bank
func (i ThumbInstruction) H1() bool { return i.bit(7) }
func (i ThumbInstruction) H2() bool { return i.bit(6) }

// IsImmediate is the I bit of add/subtract
func (i ThumbInstruction) IsImmediate() bool { return i.bit(10) }

// Subtract is the op bit of add/subtract
func (i ThumbInstruction) Subtract() bool { return i.bit(9) }

// Load is the L bit of the load/store formats
func (i ThumbInstruction) Load() bool { return i.bit(11) }

// Byte is the B bit (bit 10) of load/store with register offset
func (i ThumbInstruction) Byte() bool { return i.bit(10) }

// ByteImmediate is the B bit of the immediate-offset format, which sits at
// bit 12
func (i ThumbInstruction) ByteImmediate() bool { return i.bit(12) }

// SignedTransfer and HalfwordFlag select among the sign-extended transfers
func (i ThumbInstruction) SignedTransfer() bool { return i.bit(10) }
func (i ThumbInstruction) HalfwordFlag() bool   { return i.bit(11) }

// SPRelative is the SP bit of load-address
func (i ThumbInstruction) SPRelative() bool { return i.bit(11) }

// NegativeOffset is the sign bit of add-offset-to-SP
func (i ThumbInstruction) NegativeOffset() bool { return i.bit(7) }

// StoreLRLoadPC is the R bit of push/pop
func (i ThumbInstruction) StoreLRLoadPC() bool { return i.bit(8) }

// LowRegisterList returns the registers named in the 8-bit list, in
// ascending order
func (i ThumbInstruction) LowRegisterList() []int {
	list := make([]int, 0, 8)
	for r := 0; r <= 7; r++ {
		if i.Raw&(1<<r) != 0 {
			list = append(list, r)
		}
	}
	return list
}

// BranchCond is the condition field of a conditional branch
func (i ThumbInstruction) BranchCond() Condition { return Condition(i.bits(8, 11)) }

// BLHigh is the H bit distinguishing the two halves of a long branch. It
// is clear on the first halfword (the high part of the offset) and set on
// the second (the low part).
func (i ThumbInstruction) BLHigh() bool { return i.bit(11) }

// MultipleRb is the base register of a multiple load/store
func (i ThumbInstruction) MultipleRb() int { return int(i.bits(8, 10)) }
