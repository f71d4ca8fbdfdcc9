package cpu

// The sixteen data-processing primitives. Logical operations take the barrel
// shifter's carry-out and adopt it as the C flag when flags are requested;
// arithmetic operations derive C and V from the 33-bit result. TST, TEQ, CMP
// and CMN exist only for their flag effects.

// DataOpcode is the 4-bit opcode field of a data-processing instruction
type DataOpcode uint8

const (
	OpAND DataOpcode = 0b0000
	OpEOR DataOpcode = 0b0001
	OpSUB DataOpcode = 0b0010
	OpRSB DataOpcode = 0b0011
	OpADD DataOpcode = 0b0100
	OpADC DataOpcode = 0b0101
	OpSBC DataOpcode = 0b0110
	OpRSC DataOpcode = 0b0111
	OpTST DataOpcode = 0b1000
	OpTEQ DataOpcode = 0b1001
	OpCMP DataOpcode = 0b1010
	OpCMN DataOpcode = 0b1011
	OpORR DataOpcode = 0b1100
	OpMOV DataOpcode = 0b1101
	OpBIC DataOpcode = 0b1110
	OpMVN DataOpcode = 0b1111
)

// IsTest reports whether the opcode is one of TST/TEQ/CMP/CMN, which never
// write to the destination register
func (op DataOpcode) IsTest() bool {
	return op >= OpTST && op <= OpCMN
}

func (op DataOpcode) String() string {
	names := [16]string{
		"AND", "EOR", "SUB", "RSB", "ADD", "ADC", "SBC", "RSC",
		"TST", "TEQ", "CMP", "CMN", "ORR", "MOV", "BIC", "MVN",
	}
	return names[op&0xF]
}

// logical sets N, Z and the shifter carry-out for a logical result; V is
// left unchanged
func (c *CPU) logical(result uint32, setFlags, carry bool) uint32 {
	if setFlags {
		c.CPSR.N = result&SignBitMask != 0
		c.CPSR.Z = result == 0
		c.CPSR.C = carry
	}
	return result
}

// addWithCarry computes op1 + op2 + carryIn, updating all four flags when
// requested
func (c *CPU) addWithCarry(setFlags bool, op1, op2, carryIn uint32) uint32 {
	sum := uint64(op1) + uint64(op2) + uint64(carryIn)
	result := uint32(sum)
	if setFlags {
		c.CPSR.N = result&SignBitMask != 0
		c.CPSR.Z = result == 0
		c.CPSR.C = sum > 0xFFFFFFFF
		c.CPSR.V = (op1^result)&(op2^result)&SignBitMask != 0
	}
	return result
}

// subWithCarry computes op1 - op2 - (1 - carryIn); the ARM carry-out is the
// inverse of borrow
func (c *CPU) subWithCarry(setFlags bool, op1, op2, carryIn uint32) uint32 {
	return c.addWithCarry(setFlags, op1, ^op2, carryIn)
}

func (c *CPU) aluAND(setFlags bool, op1, op2 uint32, carry bool) uint32 {
	return c.logical(op1&op2, setFlags, carry)
}

func (c *CPU) aluEOR(setFlags bool, op1, op2 uint32, carry bool) uint32 {
	return c.logical(op1^op2, setFlags, carry)
}

func (c *CPU) aluSUB(setFlags bool, op1, op2 uint32) uint32 {
	return c.subWithCarry(setFlags, op1, op2, 1)
}

func (c *CPU) aluRSB(setFlags bool, op1, op2 uint32) uint32 {
	return c.subWithCarry(setFlags, op2, op1, 1)
}

func (c *CPU) aluADD(setFlags bool, op1, op2 uint32) uint32 {
	return c.addWithCarry(setFlags, op1, op2, 0)
}

func (c *CPU) aluADC(setFlags bool, op1, op2 uint32) uint32 {
	return c.addWithCarry(setFlags, op1, op2, c.carryIn())
}

func (c *CPU) aluSBC(setFlags bool, op1, op2 uint32) uint32 {
	return c.subWithCarry(setFlags, op1, op2, c.carryIn())
}

func (c *CPU) aluRSC(setFlags bool, op1, op2 uint32) uint32 {
	return c.subWithCarry(setFlags, op2, op1, c.carryIn())
}

func (c *CPU) aluTST(op1, op2 uint32, carry bool) {
	c.logical(op1&op2, true, carry)
}

func (c *CPU) aluTEQ(op1, op2 uint32, carry bool) {
	c.logical(op1^op2, true, carry)
}

func (c *CPU) aluCMP(op1, op2 uint32) {
	c.subWithCarry(true, op1, op2, 1)
}

func (c *CPU) aluCMN(op1, op2 uint32) {
	c.addWithCarry(true, op1, op2, 0)
}

func (c *CPU) aluORR(setFlags bool, op1, op2 uint32, carry bool) uint32 {
	return c.logical(op1|op2, setFlags, carry)
}

func (c *CPU) aluMOV(setFlags bool, op2 uint32, carry bool) uint32 {
	return c.logical(op2, setFlags, carry)
}

func (c *CPU) aluBIC(setFlags bool, op1, op2 uint32, carry bool) uint32 {
	return c.logical(op1&^op2, setFlags, carry)
}

func (c *CPU) aluMVN(setFlags bool, op2 uint32, carry bool) uint32 {
	return c.logical(^op2, setFlags, carry)
}

func (c *CPU) carryIn() uint32 {
	if c.CPSR.C {
		return 1
	}
	return 0
}

// MultiplierArrayCycles returns how many cycles the Booth-encoded multiplier
// array needs for the given multiplier value: one per byte until the
// remaining high bytes are all zeroes or all ones, to a maximum of four.
// Each cycle is billed as an idle cycle on the bus.
func MultiplierArrayCycles(multiplier uint32) int {
	switch {
	case multiplier&0xFFFFFF00 == 0 || multiplier&0xFFFFFF00 == 0xFFFFFF00:
		return 1
	case multiplier&0xFFFF0000 == 0 || multiplier&0xFFFF0000 == 0xFFFF0000:
		return 2
	case multiplier&0xFF000000 == 0 || multiplier&0xFF000000 == 0xFF000000:
		return 3
	default:
		return 4
	}
}
