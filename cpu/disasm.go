package cpu

import (
	"fmt"
	"strings"
)

// Debug disassembly of decoded instructions. The output is a tracing aid,
// not an assembler-grade listing; registers print as R0-R12, SP, LR and PC.

func regName(index int) string {
	switch index {
	case SP:
		return "SP"
	case LR:
		return "LR"
	case PC:
		return "PC"
	}
	return fmt.Sprintf("R%d", index)
}

func regListNames(list []int) string {
	names := make([]string, len(list))
	for i, r := range list {
		names[i] = regName(r)
	}
	return strings.Join(names, ",")
}

func (c *CPU) disassembleArm(inst ArmInstruction) string {
	cond := inst.Cond().String()
	switch inst.Kind {
	case ArmDataProcessing:
		opcode := inst.Opcode()
		s := ""
		if inst.SetsFlags() {
			s = "S"
		}
		var operand2 string
		if inst.IsImmediate() {
			value := inst.Immediate()
			if rotate := 2 * inst.Rotate(); rotate != 0 {
				value = value>>rotate | value<<(32-rotate)
			}
			operand2 = fmt.Sprintf("#0x%X", value)
		} else if inst.RegisterShift() {
			operand2 = fmt.Sprintf("%s,%s %s", regName(inst.Rm()), inst.ShiftType(), regName(inst.Rs()))
		} else if inst.ShiftType() == ShiftLSL && inst.ShiftAmount() == 0 {
			operand2 = regName(inst.Rm())
		} else {
			operand2 = fmt.Sprintf("%s,%s #%d", regName(inst.Rm()), inst.ShiftType(), inst.ShiftAmount())
		}
		switch {
		case opcode == OpMOV || opcode == OpMVN:
			return fmt.Sprintf("%v%s%s %s,%s", opcode, cond, s, regName(inst.Rd()), operand2)
		case opcode.IsTest():
			return fmt.Sprintf("%v%s %s,%s", opcode, cond, regName(inst.Rn()), operand2)
		default:
			return fmt.Sprintf("%v%s%s %s,%s,%s", opcode, cond, s, regName(inst.Rd()), regName(inst.Rn()), operand2)
		}
	case ArmPsrTransfer:
		psr := "CPSR"
		if inst.IsSPSR() {
			psr = "SPSR"
		}
		if inst.IsMRS() {
			return fmt.Sprintf("MRS%s %s,%s", cond, regName(inst.Rd()), psr)
		}
		if inst.IsImmediate() {
			return fmt.Sprintf("MSR%s %s,#0x%X", cond, psr, inst.Immediate())
		}
		return fmt.Sprintf("MSR%s %s,%s", cond, psr, regName(inst.Rm()))
	case ArmMultiply:
		s := ""
		if inst.SetsFlags() {
			s = "S"
		}
		if inst.Accumulate() {
			return fmt.Sprintf("MLA%s%s %s,%s,%s,%s", cond, s,
				regName(inst.MultiplyRd()), regName(inst.Rm()), regName(inst.Rs()), regName(inst.MultiplyRn()))
		}
		return fmt.Sprintf("MUL%s%s %s,%s,%s", cond, s,
			regName(inst.MultiplyRd()), regName(inst.Rm()), regName(inst.Rs()))
	case ArmMultiplyLong:
		s := ""
		if inst.SetsFlags() {
			s = "S"
		}
		mnemonic := map[bool]map[bool]string{
			false: {false: "UMULL", true: "UMLAL"},
			true:  {false: "SMULL", true: "SMLAL"},
		}[inst.SignedMultiply()][inst.Accumulate()]
		return fmt.Sprintf("%s%s%s %s,%s,%s,%s", mnemonic, cond, s,
			regName(inst.RdLo()), regName(inst.RdHi()), regName(inst.Rm()), regName(inst.Rs()))
	case ArmSingleDataSwap:
		b := ""
		if inst.Byte() {
			b = "B"
		}
		return fmt.Sprintf("SWP%s%s %s,%s,[%s]", cond, b,
			regName(inst.Rd()), regName(inst.Rm()), regName(inst.Rn()))
	case ArmBranchAndExchange:
		return fmt.Sprintf("BX%s %s", cond, regName(inst.Rm()))
	case ArmHalfwordAndSignedDataTransfer:
		sh := map[bool]map[bool]string{
			false: {true: "H"},
			true:  {false: "SB", true: "SH"},
		}[inst.Signed()][inst.Halfword()]
		mnemonic := "STR"
		if inst.Load() {
			mnemonic = "LDR"
		}
		return fmt.Sprintf("%s%s%s %s,[%s]", mnemonic, cond, sh, regName(inst.Rd()), regName(inst.Rn()))
	case ArmSingleDataTransfer:
		b := ""
		if inst.Byte() {
			b = "B"
		}
		mnemonic := "STR"
		if inst.Load() {
			mnemonic = "LDR"
		}
		return fmt.Sprintf("%s%s%s %s,[%s]", mnemonic, cond, b, regName(inst.Rd()), regName(inst.Rn()))
	case ArmBlockDataTransfer:
		mnemonic := "STM"
		if inst.Load() {
			mnemonic = "LDM"
		}
		wb := ""
		if inst.WriteBack() {
			wb = "!"
		}
		caret := ""
		if inst.PsrForceUser() {
			caret = "^"
		}
		return fmt.Sprintf("%s%s %s%s,{%s}%s", mnemonic, cond,
			regName(inst.Rn()), wb, regListNames(inst.RegisterList()), caret)
	case ArmBranchAndBranchWithLink:
		l := ""
		if inst.Link() {
			l = "L"
		}
		target := inst.Address + ARMPipelineOffset + uint32(inst.BranchOffset())
		return fmt.Sprintf("B%s%s 0x%08X", l, cond, target)
	case ArmSoftwareInterrupt:
		return fmt.Sprintf("SWI%s 0x%06X", cond, inst.Comment())
	default:
		return "Undefined"
	}
}

func (c *CPU) disassembleThumb(inst ThumbInstruction) string {
	switch inst.Kind {
	case ThumbMoveShiftedRegister:
		return fmt.Sprintf("%s %s,%s,#%d", inst.ShiftOpcode(),
			regName(inst.Rd()), regName(inst.Rs()), inst.Offset5())
	case ThumbAddSubtract:
		mnemonic := "ADD"
		if inst.Subtract() {
			mnemonic = "SUB"
		}
		if inst.IsImmediate() {
			return fmt.Sprintf("%s %s,%s,#%d", mnemonic, regName(inst.Rd()), regName(inst.Rs()), inst.bits(6, 8))
		}
		return fmt.Sprintf("%s %s,%s,%s", mnemonic, regName(inst.Rd()), regName(inst.Rs()), regName(inst.Rn()))
	case ThumbMoveCompareAddSubtractImmediate:
		mnemonic := [4]string{"MOV", "CMP", "ADD", "SUB"}[inst.ImmediateOpcode()]
		return fmt.Sprintf("%s %s,#%d", mnemonic, regName(inst.Rd8()), inst.Offset8())
	case ThumbAluOperations:
		mnemonic := [16]string{
			"AND", "EOR", "LSL", "LSR", "ASR", "ADC", "SBC", "ROR",
			"TST", "NEG", "CMP", "CMN", "ORR", "MUL", "BIC", "MVN",
		}[inst.AluOpcode()]
		return fmt.Sprintf("%s %s,%s", mnemonic, regName(inst.Rd()), regName(inst.Rs()))
	case ThumbHiRegisterOperationsBranchExchange:
		destination := inst.Rd()
		if inst.H1() {
			destination += 8
		}
		source := inst.Rs()
		if inst.H2() {
			source += 8
		}
		mnemonic := [4]string{"ADD", "CMP", "MOV", "BX"}[inst.HiOpcode()]
		if mnemonic == "BX" {
			return fmt.Sprintf("BX %s", regName(source))
		}
		return fmt.Sprintf("%s %s,%s", mnemonic, regName(destination), regName(source))
	case ThumbPcRelativeLoad:
		return fmt.Sprintf("LDR %s,[PC,#%d]", regName(inst.Rd8()), inst.Offset8()<<2)
	case ThumbLoadStoreRegisterOffset:
		mnemonic := "STR"
		if inst.Load() {
			mnemonic = "LDR"
		}
		if inst.Byte() {
			mnemonic += "B"
		}
		return fmt.Sprintf("%s %s,[%s,%s]", mnemonic, regName(inst.Rd()), regName(inst.Rb()), regName(inst.Ro()))
	case ThumbLoadStoreSignExtendedByteHalfword:
		mnemonic := map[bool]map[bool]string{
			false: {false: "STRH", true: "LDRH"},
			true:  {false: "LDSB", true: "LDSH"},
		}[inst.SignedTransfer()][inst.HalfwordFlag()]
		return fmt.Sprintf("%s %s,[%s,%s]", mnemonic, regName(inst.Rd()), regName(inst.Rb()), regName(inst.Ro()))
	case ThumbLoadStoreImmediateOffset:
		mnemonic := "STR"
		if inst.Load() {
			mnemonic = "LDR"
		}
		offset := inst.Offset5()
		if inst.ByteImmediate() {
			mnemonic += "B"
		} else {
			offset <<= 2
		}
		return fmt.Sprintf("%s %s,[%s,#%d]", mnemonic, regName(inst.Rd()), regName(inst.Rb()), offset)
	case ThumbLoadStoreHalfword:
		mnemonic := "STRH"
		if inst.Load() {
			mnemonic = "LDRH"
		}
		return fmt.Sprintf("%s %s,[%s,#%d]", mnemonic, regName(inst.Rd()), regName(inst.Rb()), inst.Offset5()<<1)
	case ThumbSpRelativeLoadStore:
		mnemonic := "STR"
		if inst.Load() {
			mnemonic = "LDR"
		}
		return fmt.Sprintf("%s %s,[SP,#%d]", mnemonic, regName(inst.Rd8()), inst.Offset8()<<2)
	case ThumbLoadAddress:
		base := "PC"
		if inst.SPRelative() {
			base = "SP"
		}
		return fmt.Sprintf("ADD %s,%s,#%d", regName(inst.Rd8()), base, inst.Offset8()<<2)
	case ThumbAddOffsetToSp:
		sign := ""
		if inst.NegativeOffset() {
			sign = "-"
		}
		return fmt.Sprintf("ADD SP,#%s%d", sign, inst.Offset7()<<2)
	case ThumbPushPopRegisters:
		list := regListNames(inst.LowRegisterList())
		switch {
		case inst.Load() && inst.StoreLRLoadPC():
			return fmt.Sprintf("POP {%s,PC}", list)
		case inst.Load():
			return fmt.Sprintf("POP {%s}", list)
		case inst.StoreLRLoadPC():
			return fmt.Sprintf("PUSH {%s,LR}", list)
		default:
			return fmt.Sprintf("PUSH {%s}", list)
		}
	case ThumbMultipleLoadStore:
		mnemonic := "STMIA"
		if inst.Load() {
			mnemonic = "LDMIA"
		}
		return fmt.Sprintf("%s %s!,{%s}", mnemonic, regName(inst.MultipleRb()), regListNames(inst.LowRegisterList()))
	case ThumbConditionalBranch:
		offset := int32(inst.Offset8()<<24) >> 23
		target := inst.Address + ThumbPipelineOffset + uint32(offset)
		return fmt.Sprintf("B%s 0x%08X", inst.BranchCond(), target)
	case ThumbSoftwareInterrupt:
		return fmt.Sprintf("SWI #%d", inst.Offset8())
	case ThumbUnconditionalBranch:
		offset := int32(inst.Offset11()<<21) >> 20
		target := inst.Address + ThumbPipelineOffset + uint32(offset)
		return fmt.Sprintf("B 0x%08X", target)
	case ThumbLongBranchWithLink:
		half := "hi"
		if inst.BLHigh() {
			half = "lo"
		}
		return fmt.Sprintf("BL #%d(%s)", inst.Offset11(), half)
	default:
		return "Undefined"
	}
}
