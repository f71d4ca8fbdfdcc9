package cpu

import "fmt"

// ARM instruction execution. Each routine reads its operands through the
// banked register file, performs memory through the bus and reports how the
// PC should advance.

func (c *CPU) executeArm(inst ArmInstruction) action {
	switch inst.Kind {
	case ArmDataProcessing:
		return c.armDataProcessing(inst)
	case ArmPsrTransfer:
		return c.armPsrTransfer(inst)
	case ArmMultiply:
		return c.armMultiply(inst)
	case ArmMultiplyLong:
		return c.armMultiplyLong(inst)
	case ArmSingleDataSwap:
		return c.armSingleDataSwap(inst)
	case ArmBranchAndExchange:
		return c.armBranchAndExchange(inst)
	case ArmHalfwordAndSignedDataTransfer:
		return c.armHalfwordAndSignedDataTransfer(inst)
	case ArmSingleDataTransfer:
		return c.armSingleDataTransfer(inst)
	case ArmBlockDataTransfer:
		return c.armBlockDataTransfer(inst)
	case ArmBranchAndBranchWithLink:
		return c.armBranchAndBranchWithLink(inst)
	case ArmSoftwareInterrupt:
		c.Exception(ExceptionSoftwareInterrupt)
		return flushed
	case ArmUndefined:
		c.Exception(ExceptionUndefined)
		return flushed
	}
	panic(fmt.Sprintf("unhandled ARM instruction kind: %v", inst.Kind))
}

func (c *CPU) armDataProcessing(inst ArmInstruction) action {
	act := advance(Sequential)
	rn := inst.Rn()
	operand1 := c.Register(rn)
	carry := c.CPSR.C

	var operand2 uint32
	if inst.IsImmediate() {
		operand2, carry = ROR(inst.Immediate(), 2*inst.Rotate(), carry, false)
	} else {
		rm := inst.Rm()
		rmValue := c.Register(rm)
		var amount uint32
		if inst.RegisterShift() {
			// A register-specified shift reads its operands one cycle
			// later, so a PC operand observes PC+4
			if rn == PC {
				operand1 += ARMInstructionSize
			}
			if rm == PC {
				rmValue += ARMInstructionSize
			}
			act = advance(NonSequential)
			c.bus.IdleCycle()
			amount = c.Register(inst.Rs()) & 0xFF
			operand2, carry = Shift(inst.ShiftType(), rmValue, amount, carry, false)
		} else {
			amount = inst.ShiftAmount()
			operand2, carry = Shift(inst.ShiftType(), rmValue, amount, carry, true)
		}
	}

	setFlags := inst.SetsFlags()
	opcode := inst.Opcode()
	var result uint32
	switch opcode {
	case OpAND:
		result = c.aluAND(setFlags, operand1, operand2, carry)
	case OpEOR:
		result = c.aluEOR(setFlags, operand1, operand2, carry)
	case OpSUB:
		result = c.aluSUB(setFlags, operand1, operand2)
	case OpRSB:
		result = c.aluRSB(setFlags, operand1, operand2)
	case OpADD:
		result = c.aluADD(setFlags, operand1, operand2)
	case OpADC:
		result = c.aluADC(setFlags, operand1, operand2)
	case OpSBC:
		result = c.aluSBC(setFlags, operand1, operand2)
	case OpRSC:
		result = c.aluRSC(setFlags, operand1, operand2)
	case OpTST:
		c.aluTST(operand1, operand2, carry)
	case OpTEQ:
		c.aluTEQ(operand1, operand2, carry)
	case OpCMP:
		c.aluCMP(operand1, operand2)
	case OpCMN:
		c.aluCMN(operand1, operand2)
	case OpORR:
		result = c.aluORR(setFlags, operand1, operand2, carry)
	case OpMOV:
		result = c.aluMOV(setFlags, operand2, carry)
	case OpBIC:
		result = c.aluBIC(setFlags, operand1, operand2, carry)
	case OpMVN:
		result = c.aluMVN(setFlags, operand2, carry)
	}

	rd := inst.Rd()
	if setFlags && rd == PC {
		// Returning from an exception: restore the saved status register
		c.CPSR = c.SPSR()
	}

	if !opcode.IsTest() {
		c.SetRegister(rd, result)
		if rd == PC {
			c.PipelineFlush()
			return flushed
		}
	}
	return act
}

func (c *CPU) armBranchAndExchange(inst ArmInstruction) action {
	value := c.Register(inst.Rm())
	c.CPSR.State = State(value & 1)
	c.gpr[PC] = value &^ 1
	c.PipelineFlush()
	return flushed
}

func (c *CPU) armBranchAndBranchWithLink(inst ArmInstruction) action {
	if inst.Link() {
		c.SetRegister(LR, c.gpr[PC]-ARMInstructionSize)
	}
	c.gpr[PC] += uint32(inst.BranchOffset())
	c.PipelineFlush()
	return flushed
}

func (c *CPU) armMultiply(inst ArmInstruction) action {
	rd := inst.MultiplyRd()
	rm := inst.Rm()
	rs := inst.Rs()

	operand1 := c.Register(rm)
	if rm == PC {
		operand1 += ARMInstructionSize
	}
	operand2 := c.Register(rs)
	if rs == PC {
		operand2 += ARMInstructionSize
	}

	result := operand1 * operand2
	for i := 0; i < MultiplierArrayCycles(operand2); i++ {
		c.bus.IdleCycle()
	}

	if inst.Accumulate() {
		rn := inst.MultiplyRn()
		accumulator := c.Register(rn)
		if rn == PC {
			accumulator += ARMInstructionSize
		}
		result += accumulator
		c.bus.IdleCycle()
	}

	if inst.SetsFlags() {
		// C is architecturally meaningless after a multiply and is left
		// unmodified
		c.CPSR.N = result&SignBitMask != 0
		c.CPSR.Z = result == 0
	}

	c.SetRegister(rd, result)
	if rd == PC {
		c.PipelineFlush()
		return flushed
	}
	return advance(NonSequential)
}

func (c *CPU) armMultiplyLong(inst ArmInstruction) action {
	rdLo := inst.RdLo()
	rdHi := inst.RdHi()
	rm := inst.Rm()
	rs := inst.Rs()

	operand1 := c.Register(rm)
	if rm == PC {
		operand1 += ARMInstructionSize
	}
	operand2 := c.Register(rs)
	if rs == PC {
		operand2 += ARMInstructionSize
	}

	var result uint64
	if inst.SignedMultiply() {
		result = uint64(int64(int32(operand1)) * int64(int32(operand2)))
	} else {
		result = uint64(operand1) * uint64(operand2)
	}

	// A long multiply spends one cycle more in the array than Multiply
	for i := 0; i < MultiplierArrayCycles(operand2)+1; i++ {
		c.bus.IdleCycle()
	}

	if inst.Accumulate() {
		lo := uint64(c.Register(rdLo))
		if rdLo == PC {
			lo += ARMInstructionSize
		}
		hi := uint64(c.Register(rdHi))
		if rdHi == PC {
			hi += ARMInstructionSize
		}
		result += hi<<32 | lo
		c.bus.IdleCycle()
	}

	if inst.SetsFlags() {
		c.CPSR.N = result&(1<<63) != 0
		c.CPSR.Z = result == 0
	}

	c.SetRegister(rdLo, uint32(result))
	c.SetRegister(rdHi, uint32(result>>32))
	if rdLo == PC || rdHi == PC {
		c.PipelineFlush()
		return flushed
	}
	return advance(NonSequential)
}

func (c *CPU) armSingleDataSwap(inst ArmInstruction) action {
	rd := inst.Rd()
	rm := inst.Rm()

	address := c.Register(inst.Rn())
	source := c.Register(rm)
	if rm == PC {
		source += ARMInstructionSize
	}

	// A swap is a locked read-modify-write: non-sequential load, locked
	// non-sequential store, then an idle cycle
	var value uint32
	if inst.Byte() {
		value = c.bus.Load8(address, NonSequential)
		c.bus.Store8(address, uint8(source), NonSequential|Lock)
	} else {
		value = c.loadRotated32(address, NonSequential)
		c.bus.Store32(address, source, NonSequential|Lock)
	}

	c.bus.IdleCycle()
	c.SetRegister(rd, value)
	if rd == PC {
		c.PipelineFlush()
		return flushed
	}
	return advance(NonSequential)
}

func (c *CPU) armSingleDataTransfer(inst ArmInstruction) action {
	rd := inst.Rd()
	rn := inst.Rn()

	address := c.Register(rn)
	var offset uint32
	if inst.IsImmediate() {
		// For transfers the I bit selects the register form, inverted
		// relative to data processing
		carry := c.CPSR.C
		offset, _ = Shift(inst.ShiftType(), c.Register(inst.Rm()), inst.ShiftAmount(), carry, true)
	} else {
		offset = inst.TransferImmediate()
	}

	if !inst.Add() {
		offset = -offset
	}

	preIndex := inst.PreIndex()
	if preIndex {
		address += offset
	}

	writeBack := inst.WriteBack() || !preIndex
	if inst.Load() {
		var value uint32
		if inst.Byte() {
			value = c.bus.Load8(address, NonSequential)
		} else {
			value = c.loadRotated32(address, NonSequential)
		}
		if writeBack {
			if rn != rd && rn == PC {
				c.PipelineFlush()
			}
			c.SetRegister(rn, c.Register(rn)+offset)
		}
		c.bus.IdleCycle()
		c.SetRegister(rd, value)
	} else {
		value := c.Register(rd)
		if rd == PC {
			value += ARMInstructionSize
		}
		if inst.Byte() {
			c.bus.Store8(address, uint8(value), NonSequential)
		} else {
			c.bus.Store32(address, value, NonSequential)
		}
		if writeBack {
			if rn == PC {
				c.PipelineFlush()
			}
			c.SetRegister(rn, c.Register(rn)+offset)
		}
	}

	if inst.Load() && rd == PC {
		c.PipelineFlush()
		return flushed
	}
	return advance(NonSequential)
}

func (c *CPU) armHalfwordAndSignedDataTransfer(inst ArmInstruction) action {
	rd := inst.Rd()
	rn := inst.Rn()

	address := c.Register(rn)
	var offset uint32
	if inst.HalfwordIsImmediate() {
		offset = inst.HalfwordImmediate()
	} else {
		offset = c.Register(inst.Rm())
	}

	if !inst.Add() {
		offset = -offset
	}

	preIndex := inst.PreIndex()
	if preIndex {
		address += offset
	}

	writeBack := inst.WriteBack() || !preIndex
	signed, halfword := inst.Signed(), inst.Halfword()
	if inst.Load() {
		var value uint32
		switch {
		case !signed && halfword:
			value = c.loadRotated16(address, NonSequential)
		case signed && !halfword:
			value = c.loadSigned8(address, NonSequential)
		case signed && halfword:
			value = c.loadSigned16(address, NonSequential)
		default:
			// SH=00 is the SWP encoding and cannot reach here
			return advance(NonSequential)
		}
		if writeBack {
			if rn != rd && rn == PC {
				c.PipelineFlush()
			}
			c.SetRegister(rn, c.Register(rn)+offset)
		}
		c.bus.IdleCycle()
		c.SetRegister(rd, value)
	} else {
		value := c.Register(rd)
		if rd == PC {
			value += ARMInstructionSize
		}
		if !signed && halfword {
			c.bus.Store16(address, uint16(value), NonSequential)
		} else {
			// Signed stores do not exist; the slot burns an idle cycle
			c.bus.IdleCycle()
		}
		if writeBack {
			if rn == PC {
				c.PipelineFlush()
			}
			c.SetRegister(rn, c.Register(rn)+offset)
		}
	}

	if inst.Load() && rd == PC {
		c.PipelineFlush()
		return flushed
	}
	return advance(NonSequential)
}

func (c *CPU) armBlockDataTransfer(inst ArmInstruction) action {
	registerList := inst.RegisterList()
	rn := inst.Rn()
	address := c.Register(rn)

	transferPC := false
	for _, r := range registerList {
		if r == PC {
			transferPC = true
		}
	}
	// An empty list transfers PC alone and moves the base by 0x40
	transferBytes := uint32(len(registerList)) * 4
	if len(registerList) == 0 {
		registerList = []int{PC}
		transferPC = true
		transferBytes = 0x40
	}

	load := inst.Load()
	forceUser := inst.PsrForceUser()
	mode := c.CPSR.Mode
	// S without PC in an LDM list (or any STM list) banks the transfer
	// through the user-mode registers
	switchMode := forceUser && (!load || !transferPC) &&
		mode != ModeUser && mode != ModeSystem
	if switchMode {
		c.CPSR.Mode = ModeUser
	}

	preIndex := inst.PreIndex()
	baseAddress := address
	if !inst.Add() {
		// A descending transfer still performs its accesses in ascending
		// address order
		preIndex = !preIndex
		address -= transferBytes
		baseAddress -= transferBytes
	} else {
		baseAddress += transferBytes
	}

	writeBack := inst.WriteBack()
	access := NonSequential
	act := advance(NonSequential)
	if load {
		for i, register := range registerList {
			if preIndex {
				address += 4
			}
			value := c.bus.Load32(address, access)
			if writeBack && i == 0 {
				if rn == PC {
					baseAddress += 4
					if !transferPC {
						c.PipelineFlush()
					}
				}
				c.SetRegister(rn, baseAddress)
			}
			// A loaded value wins over the write-back
			c.SetRegister(register, value)
			if !preIndex {
				address += 4
			}
			access = Sequential
		}

		c.bus.IdleCycle()
		if transferPC {
			if forceUser {
				c.CPSR = c.SPSR()
			}
			c.PipelineFlush()
			act = flushed
		}
	} else {
		for i, register := range registerList {
			if preIndex {
				address += 4
			}
			value := c.Register(register)
			if register == PC {
				if writeBack && rn == PC {
					value -= ARMInstructionSize
				} else {
					value += ARMInstructionSize
				}
			}
			c.bus.Store32(address, value, access)
			if writeBack && i == 0 {
				// The first stored register observes the original base;
				// later ones observe the written-back value
				if rn == PC {
					baseAddress += 4
					c.PipelineFlush()
				}
				c.SetRegister(rn, baseAddress)
			}
			if !preIndex {
				address += 4
			}
			access = Sequential
		}
	}

	if switchMode {
		c.CPSR.Mode = mode
	}
	return act
}

func (c *CPU) armPsrTransfer(inst ArmInstruction) action {
	if inst.IsMRS() {
		psr := c.CPSR
		if inst.IsSPSR() {
			psr = c.SPSR()
		}
		c.SetRegister(inst.Rd(), psr.Value())
		return advance(Sequential)
	}

	mask := inst.FieldMask()
	var operand uint32
	if inst.IsImmediate() {
		carry := c.CPSR.C
		operand, _ = ROR(inst.Immediate(), 2*inst.Rotate(), carry, false)
	} else {
		operand = c.Register(inst.Rm())
	}

	if inst.IsSPSR() {
		if c.CPSR.Mode != ModeUser && c.CPSR.Mode != ModeSystem {
			value := c.SPSR().Value()&^mask | operand&mask
			c.SetSPSR(NewPSR(value))
		}
	} else {
		// User mode can only change the flags byte
		if c.CPSR.Mode == ModeUser {
			mask &= 0xFF000000
		}
		// Keep the mode field well-formed when the control byte is written
		if mask&0xFF != 0 {
			operand |= 0x10
		}
		value := c.CPSR.Value()&^mask | operand&mask
		c.CPSR = NewPSR(value)
	}
	return advance(Sequential)
}
