package cpu

import "fmt"

// Thumb instruction execution. The Thumb set maps onto the same ALU,
// shifter and memory paths as ARM; only the operand encodings differ.

func (c *CPU) executeThumb(inst ThumbInstruction) action {
	switch inst.Kind {
	case ThumbMoveShiftedRegister:
		return c.thumbMoveShiftedRegister(inst)
	case ThumbAddSubtract:
		return c.thumbAddSubtract(inst)
	case ThumbMoveCompareAddSubtractImmediate:
		return c.thumbMoveCompareAddSubtractImmediate(inst)
	case ThumbAluOperations:
		return c.thumbAluOperations(inst)
	case ThumbHiRegisterOperationsBranchExchange:
		return c.thumbHiRegisterOperationsBranchExchange(inst)
	case ThumbPcRelativeLoad:
		return c.thumbPcRelativeLoad(inst)
	case ThumbLoadStoreRegisterOffset:
		return c.thumbLoadStoreRegisterOffset(inst)
	case ThumbLoadStoreSignExtendedByteHalfword:
		return c.thumbLoadStoreSignExtendedByteHalfword(inst)
	case ThumbLoadStoreImmediateOffset:
		return c.thumbLoadStoreImmediateOffset(inst)
	case ThumbLoadStoreHalfword:
		return c.thumbLoadStoreHalfword(inst)
	case ThumbSpRelativeLoadStore:
		return c.thumbSpRelativeLoadStore(inst)
	case ThumbLoadAddress:
		return c.thumbLoadAddress(inst)
	case ThumbAddOffsetToSp:
		return c.thumbAddOffsetToSp(inst)
	case ThumbPushPopRegisters:
		return c.thumbPushPopRegisters(inst)
	case ThumbMultipleLoadStore:
		return c.thumbMultipleLoadStore(inst)
	case ThumbConditionalBranch:
		return c.thumbConditionalBranch(inst)
	case ThumbSoftwareInterrupt:
		c.Exception(ExceptionSoftwareInterrupt)
		return flushed
	case ThumbUnconditionalBranch:
		return c.thumbUnconditionalBranch(inst)
	case ThumbLongBranchWithLink:
		return c.thumbLongBranchWithLink(inst)
	case ThumbUndefined:
		c.Exception(ExceptionUndefined)
		return flushed
	}
	panic(fmt.Sprintf("unhandled Thumb instruction kind: %v", inst.Kind))
}

// setNZC is the flag update shared by the Thumb shift forms
func (c *CPU) setNZC(result uint32, carry bool) {
	c.CPSR.N = result&SignBitMask != 0
	c.CPSR.Z = result == 0
	c.CPSR.C = carry
}

func (c *CPU) thumbMoveShiftedRegister(inst ThumbInstruction) action {
	value := c.Register(inst.Rs())
	carry := c.CPSR.C

	result, carry := Shift(inst.ShiftOpcode(), value, inst.Offset5(), carry, true)
	c.setNZC(result, carry)
	c.SetRegister(inst.Rd(), result)
	return advance(Sequential)
}

func (c *CPU) thumbAddSubtract(inst ThumbInstruction) action {
	operand1 := c.Register(inst.Rs())
	var operand2 uint32
	if inst.IsImmediate() {
		operand2 = uint32(inst.bits(6, 8))
	} else {
		operand2 = c.Register(inst.Rn())
	}

	var result uint32
	if inst.Subtract() {
		result = c.aluSUB(true, operand1, operand2)
	} else {
		result = c.aluADD(true, operand1, operand2)
	}

	c.SetRegister(inst.Rd(), result)
	return advance(Sequential)
}

func (c *CPU) thumbMoveCompareAddSubtractImmediate(inst ThumbInstruction) action {
	rd := inst.Rd8()
	operand1 := c.Register(rd)
	offset := inst.Offset8()

	switch inst.ImmediateOpcode() {
	case 0b00:
		c.SetRegister(rd, c.aluMOV(true, offset, c.CPSR.C))
	case 0b01:
		c.aluCMP(operand1, offset)
	case 0b10:
		c.SetRegister(rd, c.aluADD(true, operand1, offset))
	case 0b11:
		c.SetRegister(rd, c.aluSUB(true, operand1, offset))
	}
	return advance(Sequential)
}

func (c *CPU) thumbAluOperations(inst ThumbInstruction) action {
	rd := inst.Rd()
	operand1 := c.Register(rd)
	operand2 := c.Register(inst.Rs())
	carry := c.CPSR.C
	act := advance(Sequential)

	// The register-shift forms and MUL take extra cycles and make the next
	// fetch non-sequential, like their ARM counterparts
	shiftOp := func(kind ShiftType) uint32 {
		result, carryOut := Shift(kind, operand1, operand2&0xFF, carry, false)
		c.bus.IdleCycle()
		act = advance(NonSequential)
		c.setNZC(result, carryOut)
		return result
	}

	var result uint32
	writeBack := true
	switch inst.AluOpcode() {
	case 0b0000:
		result = c.aluAND(true, operand1, operand2, carry)
	case 0b0001:
		result = c.aluEOR(true, operand1, operand2, carry)
	case 0b0010:
		result = shiftOp(ShiftLSL)
	case 0b0011:
		result = shiftOp(ShiftLSR)
	case 0b0100:
		result = shiftOp(ShiftASR)
	case 0b0101:
		result = c.aluADC(true, operand1, operand2)
	case 0b0110:
		result = c.aluSBC(true, operand1, operand2)
	case 0b0111:
		result = shiftOp(ShiftROR)
	case 0b1000:
		c.aluTST(operand1, operand2, carry)
		writeBack = false
	case 0b1001: // NEG
		result = c.aluSUB(true, 0, operand2)
	case 0b1010:
		c.aluCMP(operand1, operand2)
		writeBack = false
	case 0b1011:
		c.aluCMN(operand1, operand2)
		writeBack = false
	case 0b1100:
		result = c.aluORR(true, operand1, operand2, carry)
	case 0b1101: // MUL
		for i := 0; i < MultiplierArrayCycles(operand1); i++ {
			c.bus.IdleCycle()
		}
		act = advance(NonSequential)
		result = operand1 * operand2
		c.CPSR.N = result&SignBitMask != 0
		c.CPSR.Z = result == 0
	case 0b1110:
		result = c.aluBIC(true, operand1, operand2, carry)
	case 0b1111:
		result = c.aluMVN(true, operand2, carry)
	}

	if writeBack {
		c.SetRegister(rd, result)
	}
	return act
}

func (c *CPU) thumbHiRegisterOperationsBranchExchange(inst ThumbInstruction) action {
	destination := inst.Rd()
	if inst.H1() {
		destination += 8
	}
	source := inst.Rs()
	if inst.H2() {
		source += 8
	}

	operand1 := c.Register(destination)
	operand2 := c.Register(source)
	if source == PC {
		operand2 &^= 1
	}

	act := advance(Sequential)
	switch inst.HiOpcode() {
	case 0b00: // ADD without flags
		c.SetRegister(destination, c.aluADD(false, operand1, operand2))
		if destination == PC {
			c.gpr[PC] &^= 1
			c.PipelineFlush()
			act = flushed
		}
	case 0b01:
		c.aluCMP(operand1, operand2)
	case 0b10: // MOV without flags
		c.SetRegister(destination, c.aluMOV(false, operand2, c.CPSR.C))
		if destination == PC {
			c.gpr[PC] &^= 1
			c.PipelineFlush()
			act = flushed
		}
	case 0b11: // BX
		c.CPSR.State = State(operand2 & 1)
		c.gpr[PC] = operand2 &^ 1
		c.PipelineFlush()
		act = flushed
	}
	return act
}

func (c *CPU) thumbPcRelativeLoad(inst ThumbInstruction) action {
	address := (c.gpr[PC] &^ 0x2) + inst.Offset8()<<2
	value := c.bus.Load32(address, NonSequential)
	c.SetRegister(inst.Rd8(), value)
	c.bus.IdleCycle()
	return advance(NonSequential)
}

func (c *CPU) thumbLoadStoreRegisterOffset(inst ThumbInstruction) action {
	address := c.Register(inst.Rb()) + c.Register(inst.Ro())
	rd := inst.Rd()

	switch {
	case inst.Load() && inst.Byte():
		c.SetRegister(rd, c.bus.Load8(address, NonSequential))
		c.bus.IdleCycle()
	case inst.Load():
		c.SetRegister(rd, c.loadRotated32(address, NonSequential))
		c.bus.IdleCycle()
	case inst.Byte():
		c.bus.Store8(address, uint8(c.Register(rd)), NonSequential)
	default:
		c.bus.Store32(address, c.Register(rd), NonSequential)
	}
	return advance(NonSequential)
}

func (c *CPU) thumbLoadStoreSignExtendedByteHalfword(inst ThumbInstruction) action {
	address := c.Register(inst.Rb()) + c.Register(inst.Ro())
	rd := inst.Rd()

	switch {
	case !inst.SignedTransfer() && !inst.HalfwordFlag():
		c.bus.Store16(address, uint16(c.Register(rd)), NonSequential)
	case !inst.SignedTransfer():
		c.SetRegister(rd, c.loadRotated16(address, NonSequential))
		c.bus.IdleCycle()
	case !inst.HalfwordFlag():
		c.SetRegister(rd, c.loadSigned8(address, NonSequential))
		c.bus.IdleCycle()
	default:
		c.SetRegister(rd, c.loadSigned16(address, NonSequential))
		c.bus.IdleCycle()
	}
	return advance(NonSequential)
}

func (c *CPU) thumbLoadStoreImmediateOffset(inst ThumbInstruction) action {
	byteTransfer := inst.ByteImmediate()
	offset := inst.Offset5()
	if !byteTransfer {
		offset <<= 2
	}
	address := c.Register(inst.Rb()) + offset
	rd := inst.Rd()

	switch {
	case inst.Load() && byteTransfer:
		c.SetRegister(rd, c.bus.Load8(address, NonSequential))
		c.bus.IdleCycle()
	case inst.Load():
		c.SetRegister(rd, c.loadRotated32(address, NonSequential))
		c.bus.IdleCycle()
	case byteTransfer:
		c.bus.Store8(address, uint8(c.Register(rd)), NonSequential)
	default:
		c.bus.Store32(address, c.Register(rd), NonSequential)
	}
	return advance(NonSequential)
}

func (c *CPU) thumbLoadStoreHalfword(inst ThumbInstruction) action {
	address := c.Register(inst.Rb()) + inst.Offset5()<<1
	rd := inst.Rd()

	if inst.Load() {
		c.SetRegister(rd, c.loadRotated16(address, NonSequential))
		c.bus.IdleCycle()
	} else {
		c.bus.Store16(address, uint16(c.Register(rd)), NonSequential)
	}
	return advance(NonSequential)
}

func (c *CPU) thumbSpRelativeLoadStore(inst ThumbInstruction) action {
	address := c.Register(SP) + inst.Offset8()<<2
	rd := inst.Rd8()

	if inst.Load() {
		c.SetRegister(rd, c.loadRotated32(address, NonSequential))
		c.bus.IdleCycle()
	} else {
		c.bus.Store32(address, c.Register(rd), NonSequential)
	}
	return advance(NonSequential)
}

func (c *CPU) thumbLoadAddress(inst ThumbInstruction) action {
	offset := inst.Offset8() << 2
	var value uint32
	if inst.SPRelative() {
		value = c.Register(SP) + offset
	} else {
		value = (c.gpr[PC] &^ 0x2) + offset
	}
	c.SetRegister(inst.Rd8(), value)
	return advance(Sequential)
}

func (c *CPU) thumbAddOffsetToSp(inst ThumbInstruction) action {
	offset := inst.Offset7() << 2
	if inst.NegativeOffset() {
		c.SetRegister(SP, c.Register(SP)-offset)
	} else {
		c.SetRegister(SP, c.Register(SP)+offset)
	}
	return advance(Sequential)
}

func (c *CPU) thumbPushPopRegisters(inst ThumbInstruction) action {
	address := c.Register(SP)
	registerList := inst.LowRegisterList()
	storeLRLoadPC := inst.StoreLRLoadPC()
	access := NonSequential

	if inst.Load() {
		// An empty POP list pops PC alone and moves SP by 0x40
		if len(registerList) == 0 && !storeLRLoadPC {
			value := c.bus.Load32(address, access)
			c.gpr[PC] = value
			c.SetRegister(SP, address+0x40)
			c.PipelineFlush()
			return flushed
		}

		for _, register := range registerList {
			c.SetRegister(register, c.bus.Load32(address, access))
			access = Sequential
			address += 4
		}

		if storeLRLoadPC {
			value := c.bus.Load32(address, access)
			c.SetRegister(PC, value&^1)
			c.SetRegister(SP, address+4)
			c.bus.IdleCycle()
			c.PipelineFlush()
			return flushed
		}

		c.bus.IdleCycle()
		c.SetRegister(SP, address)
	} else {
		if len(registerList) == 0 && !storeLRLoadPC {
			address -= 0x40
			c.SetRegister(SP, address)
			c.bus.Store32(address, c.gpr[PC]+ThumbInstructionSize, access)
			return advance(NonSequential)
		}

		// SP moves down by the whole frame first; registers then store in
		// ascending order to ascending addresses
		address -= uint32(len(registerList)) * 4
		if storeLRLoadPC {
			address -= 4
		}
		c.SetRegister(SP, address)

		for _, register := range registerList {
			c.bus.Store32(address, c.Register(register), access)
			access = Sequential
			address += 4
		}

		if storeLRLoadPC {
			c.bus.Store32(address, c.Register(LR), access)
		}
	}
	return advance(NonSequential)
}

func (c *CPU) thumbMultipleLoadStore(inst ThumbInstruction) action {
	rb := inst.MultipleRb()
	address := c.Register(rb)
	registerList := inst.LowRegisterList()
	access := NonSequential

	if inst.Load() {
		if len(registerList) == 0 {
			value := c.bus.Load32(address, access)
			c.gpr[PC] = value
			c.SetRegister(rb, address+0x40)
			c.PipelineFlush()
			return flushed
		}

		inList := false
		for _, register := range registerList {
			c.SetRegister(register, c.bus.Load32(address, access))
			if register == rb {
				inList = true
			}
			access = Sequential
			address += 4
		}

		c.bus.IdleCycle()
		// The loaded value wins over the write-back
		if !inList {
			c.SetRegister(rb, address)
		}
	} else {
		if len(registerList) == 0 {
			c.bus.Store32(address, c.gpr[PC]+ThumbInstructionSize, access)
			c.SetRegister(rb, address+0x40)
			return advance(NonSequential)
		}

		for i, register := range registerList {
			c.bus.Store32(address, c.Register(register), access)
			if i == 0 {
				c.SetRegister(rb, address+uint32(len(registerList))*4)
			}
			access = Sequential
			address += 4
		}
	}
	return advance(NonSequential)
}

func (c *CPU) thumbConditionalBranch(inst ThumbInstruction) action {
	if !c.IsConditionMet(inst.BranchCond()) {
		return advance(Sequential)
	}
	offset := int32(inst.Offset8()<<24) >> 23
	c.gpr[PC] += uint32(offset)
	c.PipelineFlush()
	return flushed
}

func (c *CPU) thumbUnconditionalBranch(inst ThumbInstruction) action {
	offset := int32(inst.Offset11()<<21) >> 20
	c.gpr[PC] += uint32(offset)
	c.PipelineFlush()
	return flushed
}

func (c *CPU) thumbLongBranchWithLink(inst ThumbInstruction) action {
	offset := inst.Offset11()
	if inst.BLHigh() {
		// Second half: jump through LR and leave the return address
		// (with the Thumb bit set) in its place
		temp := (c.gpr[PC] - ThumbInstructionSize) | 1
		c.gpr[PC] = (c.Register(LR) &^ 1) + offset<<1
		c.SetRegister(LR, temp)
		c.PipelineFlush()
		return flushed
	}
	// First half: LR holds the partial target
	c.SetRegister(LR, c.gpr[PC]+uint32(int32(offset<<21)>>9))
	return advance(Sequential)
}
