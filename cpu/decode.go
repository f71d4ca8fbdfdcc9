package cpu

// Precomputed decode tables. The ARM table is indexed by bits 27..20 and
// 7..4 of the instruction word; the Thumb table by bits 15..6 of the
// halfword. Both are filled at CPU construction by running every possible
// index through the priority-ordered pattern rules below.

// ArmKind names one of the ARM instruction classes
type ArmKind uint8

const (
	ArmUndefined ArmKind = iota
	ArmDataProcessing
	ArmPsrTransfer
	ArmMultiply
	ArmMultiplyLong
	ArmSingleDataSwap
	ArmBranchAndExchange
	ArmHalfwordAndSignedDataTransfer
	ArmSingleDataTransfer
	ArmBlockDataTransfer
	ArmBranchAndBranchWithLink
	ArmSoftwareInterrupt
)

func (k ArmKind) String() string {
	names := [...]string{
		"Undefined", "DataProcessing", "PsrTransfer", "Multiply",
		"MultiplyLong", "SingleDataSwap", "BranchAndExchange",
		"HalfwordAndSignedDataTransfer", "SingleDataTransfer",
		"BlockDataTransfer", "BranchAndBranchWithLink", "SoftwareInterrupt",
	}
	return names[k]
}

// ThumbKind names one of the Thumb instruction classes
type ThumbKind uint8

const (
	ThumbUndefined ThumbKind = iota
	ThumbMoveShiftedRegister
	ThumbAddSubtract
	ThumbMoveCompareAddSubtractImmediate
	ThumbAluOperations
	ThumbHiRegisterOperationsBranchExchange
	ThumbPcRelativeLoad
	ThumbLoadStoreRegisterOffset
	ThumbLoadStoreSignExtendedByteHalfword
	ThumbLoadStoreImmediateOffset
	ThumbLoadStoreHalfword
	ThumbSpRelativeLoadStore
	ThumbLoadAddress
	ThumbAddOffsetToSp
	ThumbPushPopRegisters
	ThumbMultipleLoadStore
	ThumbConditionalBranch
	ThumbSoftwareInterrupt
	ThumbUnconditionalBranch
	ThumbLongBranchWithLink
)

func (k ThumbKind) String() string {
	names := [...]string{
		"Undefined", "MoveShiftedRegister", "AddSubtract",
		"MoveCompareAddSubtractImmediate", "AluOperations",
		"HiRegisterOperationsBranchExchange", "PcRelativeLoad",
		"LoadStoreRegisterOffset", "LoadStoreSignExtendedByteHalfword",
		"LoadStoreImmediateOffset", "LoadStoreHalfword",
		"SpRelativeLoadStore", "LoadAddress", "AddOffsetToSp",
		"PushPopRegisters", "MultipleLoadStore", "ConditionalBranch",
		"SoftwareInterrupt", "UnconditionalBranch", "LongBranchWithLink",
	}
	return names[k]
}

// armLutIndex derives the 12-bit table index from an instruction word
func armLutIndex(opcode uint32) uint32 {
	return ((opcode >> 16) & 0x0FF0) | ((opcode >> 4) & 0x000F)
}

// thumbLutIndex derives the 10-bit table index from an instruction halfword
func thumbLutIndex(opcode uint16) uint16 {
	return opcode >> 6
}

func generateArmLut() [ARMLutSize]ArmKind {
	var lut [ARMLutSize]ArmKind
	for i := range lut {
		lut[i] = decodeArm((uint32(i)&0x0FF0)<<16 | (uint32(i)&0x000F)<<4)
	}
	return lut
}

// decodeArm classifies one instruction bit-pattern. The checks run in
// priority order; the order matters because several classes overlap in
// bits 27..20.
func decodeArm(opcode uint32) ArmKind {
	pattern := opcode & 0x0FFFFFFF
	setFlags := pattern&(1<<20) != 0
	dataOp := DataOpcode((pattern >> 21) & 0xF)
	// TST/TEQ/CMP/CMN without S is the PSR transfer encoding
	psrEncoding := !setFlags && dataOp.IsTest()

	switch (pattern >> 26) & 0b11 {
	case 0b00:
		switch {
		case pattern&(1<<25) != 0: // immediate operand form
			if psrEncoding {
				return ArmPsrTransfer
			}
			return ArmDataProcessing
		case pattern&0x0FF000F0 == 0x01200010:
			return ArmBranchAndExchange
		case pattern&0x010000F0 == 0x00000090:
			if pattern&(1<<23) != 0 {
				return ArmMultiplyLong
			}
			return ArmMultiply
		case pattern&0x010000F0 == 0x01000090:
			return ArmSingleDataSwap
		case pattern&0x000000F0 == 0x000000B0 || pattern&0x000000D0 == 0x000000D0:
			return ArmHalfwordAndSignedDataTransfer
		default:
			if psrEncoding {
				return ArmPsrTransfer
			}
			return ArmDataProcessing
		}
	case 0b01:
		if pattern&0x02000010 == 0x02000010 {
			return ArmUndefined
		}
		return ArmSingleDataTransfer
	case 0b10:
		if pattern&(1<<25) != 0 {
			return ArmBranchAndBranchWithLink
		}
		return ArmBlockDataTransfer
	default: // 0b11
		// Coprocessor transfers and operations decode as Undefined
		if pattern&(1<<25) != 0 && pattern&(1<<24) != 0 {
			return ArmSoftwareInterrupt
		}
		return ArmUndefined
	}
}

func generateThumbLut() [ThumbLutSize]ThumbKind {
	var lut [ThumbLutSize]ThumbKind
	for i := range lut {
		lut[i] = decodeThumb(uint16(i) << 6)
	}
	return lut
}

// decodeThumb classifies one halfword bit-pattern, in priority order
func decodeThumb(opcode uint16) ThumbKind {
	switch {
	case opcode&0xF800 < 0x1800:
		return ThumbMoveShiftedRegister
	case opcode&0xF800 == 0x1800:
		return ThumbAddSubtract
	case opcode&0xE000 == 0x2000:
		return ThumbMoveCompareAddSubtractImmediate
	case opcode&0xFC00 == 0x4000:
		return ThumbAluOperations
	case opcode&0xFC00 == 0x4400:
		return ThumbHiRegisterOperationsBranchExchange
	case opcode&0xF800 == 0x4800:
		return ThumbPcRelativeLoad
	case opcode&0xF200 == 0x5000:
		return ThumbLoadStoreRegisterOffset
	case opcode&0xF200 == 0x5200:
		return ThumbLoadStoreSignExtendedByteHalfword
	case opcode&0xE000 == 0x6000:
		return ThumbLoadStoreImmediateOffset
	case opcode&0xF000 == 0x8000:
		return ThumbLoadStoreHalfword
	case opcode&0xF000 == 0x9000:
		return ThumbSpRelativeLoadStore
	case opcode&0xF000 == 0xA000:
		return ThumbLoadAddress
	case opcode&0xFF00 == 0xB000:
		return ThumbAddOffsetToSp
	case opcode&0xF600 == 0xB400:
		return ThumbPushPopRegisters
	case opcode&0xF000 == 0xC000:
		return ThumbMultipleLoadStore
	case opcode&0xFF00 < 0xDF00:
		return ThumbConditionalBranch
	case opcode&0xFF00 == 0xDF00:
		return ThumbSoftwareInterrupt
	case opcode&0xF800 == 0xE000:
		return ThumbUnconditionalBranch
	case opcode&0xF000 == 0xF000:
		return ThumbLongBranchWithLink
	default:
		return ThumbUndefined
	}
}
