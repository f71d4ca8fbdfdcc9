package cpu

import "testing"

func decodeOpcode(opcode uint32) ArmKind {
	lut := generateArmLut()
	return lut[armLutIndex(opcode)]
}

func TestArmDecodeKnownEncodings(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint32
		want   ArmKind
	}{
		{"BX R0", 0xE12FFF10, ArmBranchAndExchange},
		{"B forward", 0xEA000000, ArmBranchAndBranchWithLink},
		{"BL forward", 0xEB000000, ArmBranchAndBranchWithLink},
		{"MOV R0,#0", 0xE3A00000, ArmDataProcessing},
		{"MOVS R0,#0", 0xE3B00000, ArmDataProcessing},
		{"ADDS R0,R0,R1", 0xE0900001, ArmDataProcessing},
		{"AND with register shift", 0xE0110312, ArmDataProcessing},
		{"MUL R0,R1,R2", 0xE0000291, ArmMultiply},
		{"MLA R0,R1,R2,R3", 0xE0203291, ArmMultiply},
		{"UMULL R0,R1,R2,R3", 0xE0810392, ArmMultiplyLong},
		{"SMLALS R0,R1,R2,R3", 0xE0F10392, ArmMultiplyLong},
		{"SWP R0,R1,[R2]", 0xE1020091, ArmSingleDataSwap},
		{"SWPB R0,R1,[R2]", 0xE1420091, ArmSingleDataSwap},
		{"LDRH R0,[R1]", 0xE1D100B0, ArmHalfwordAndSignedDataTransfer},
		{"LDRSB R0,[R1]", 0xE1D100D0, ArmHalfwordAndSignedDataTransfer},
		{"LDRSH R0,[R1]", 0xE1D100F0, ArmHalfwordAndSignedDataTransfer},
		{"LDR R0,[R1]", 0xE5910000, ArmSingleDataTransfer},
		{"STR R0,[R1]", 0xE5810000, ArmSingleDataTransfer},
		{"LDM R0,{R1}", 0xE8900002, ArmBlockDataTransfer},
		{"STMFD SP!,{R4-R7,LR}", 0xE92D40F0, ArmBlockDataTransfer},
		{"MRS R0,CPSR", 0xE10F0000, ArmPsrTransfer},
		{"MSR CPSR,R0", 0xE129F000, ArmPsrTransfer},
		{"MSR CPSR_flg,#0", 0xE328F000, ArmPsrTransfer},
		{"SWI 0", 0xEF000000, ArmSoftwareInterrupt},
		{"CDP coprocessor op", 0xEE000000, ArmUndefined},
		{"LDC coprocessor transfer", 0xEC100000, ArmUndefined},
		{"undefined register form", 0xE7F000F0, ArmUndefined},
	}
	for _, tt := range tests {
		if got := decodeOpcode(tt.opcode); got != tt.want {
			t.Errorf("%s (0x%08X): decoded %v, want %v", tt.name, tt.opcode, got, tt.want)
		}
	}
}

// The LUT index folds bits 27..20 and 7..4; every entry must agree with the
// priority rule applied to a word rebuilt from the index alone.
func TestArmLutMatchesPriorityRule(t *testing.T) {
	lut := generateArmLut()
	for i := 0; i < ARMLutSize; i++ {
		opcode := (uint32(i)&0x0FF0)<<16 | (uint32(i)&0x000F)<<4
		if lut[i] != decodeArm(opcode) {
			t.Fatalf("LUT entry %#03x = %v disagrees with decode rule %v",
				i, lut[i], decodeArm(opcode))
		}
	}
}

func TestArmConditionFieldPassThrough(t *testing.T) {
	for _, opcode := range []uint32{0x012FFF10, 0x5A000000, 0xC3A00000, 0xEF000000} {
		inst := ArmInstruction{Raw: opcode}
		if got := inst.Cond(); uint32(got) != opcode>>28&0xF {
			t.Errorf("condition accessor for 0x%08X returned %04b, want %04b",
				opcode, uint32(got), opcode>>28&0xF)
		}
	}
}

func TestThumbDecodeKnownEncodings(t *testing.T) {
	lut := generateThumbLut()
	tests := []struct {
		name   string
		opcode uint16
		want   ThumbKind
	}{
		{"LSL R0,R1,#4", 0x0108, ThumbMoveShiftedRegister},
		{"ASR R0,R1,#1", 0x1048, ThumbMoveShiftedRegister},
		{"ADD R0,R1,R2", 0x1888, ThumbAddSubtract},
		{"SUB R0,R1,#3", 0x1EC8, ThumbAddSubtract},
		{"MOV R0,#0xFF", 0x20FF, ThumbMoveCompareAddSubtractImmediate},
		{"AND R0,R1", 0x4008, ThumbAluOperations},
		{"BX R1", 0x4708, ThumbHiRegisterOperationsBranchExchange},
		{"MOV R8,R0", 0x4680, ThumbHiRegisterOperationsBranchExchange},
		{"LDR R0,[PC,#4]", 0x4801, ThumbPcRelativeLoad},
		{"STR R0,[R1,R2]", 0x5088, ThumbLoadStoreRegisterOffset},
		{"LDSH R0,[R1,R2]", 0x5E88, ThumbLoadStoreSignExtendedByteHalfword},
		{"LDR R0,[R1,#4]", 0x6848, ThumbLoadStoreImmediateOffset},
		{"LDRH R0,[R1,#2]", 0x8848, ThumbLoadStoreHalfword},
		{"STR R0,[SP,#4]", 0x9001, ThumbSpRelativeLoadStore},
		{"ADD R0,PC,#4", 0xA001, ThumbLoadAddress},
		{"ADD SP,#-4", 0xB081, ThumbAddOffsetToSp},
		{"PUSH {R4,LR}", 0xB510, ThumbPushPopRegisters},
		{"POP {R0,PC}", 0xBD01, ThumbPushPopRegisters},
		{"STMIA R0!,{R1}", 0xC002, ThumbMultipleLoadStore},
		{"BEQ", 0xD0FE, ThumbConditionalBranch},
		{"SWI 0", 0xDF00, ThumbSoftwareInterrupt},
		{"B", 0xE7FE, ThumbUnconditionalBranch},
		{"BL low", 0xF800, ThumbLongBranchWithLink},
		{"BL high", 0xF000, ThumbLongBranchWithLink},
	}
	for _, tt := range tests {
		if got := lut[thumbLutIndex(tt.opcode)]; got != tt.want {
			t.Errorf("%s (0x%04X): decoded %v, want %v", tt.name, tt.opcode, got, tt.want)
		}
	}
}
