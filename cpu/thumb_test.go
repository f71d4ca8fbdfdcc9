package cpu

import "testing"

// thumbCPU builds a CPU poised to execute a Thumb opcode at the given
// address
func thumbCPU(bus *testBus, address uint32, opcode uint16) *CPU {
	c := New(bus, true)
	c.CPSR.State = StateThumb
	c.gpr[PC] = address + ThumbPipelineOffset
	c.pipeline = [2]uint32{uint32(opcode), 0}
	return c
}

func TestThumbMoveShiftedRegister(t *testing.T) {
	c := thumbCPU(newTestBus(nil), 0x200, 0x0108) // LSL R0,R1,#4
	c.SetRegister(1, 0x10)
	c.Cycle()

	if got := c.Register(0); got != 0x100 {
		t.Errorf("R0 = 0x%08X, want 0x100", got)
	}
	if c.CPSR.Z || c.CPSR.N {
		t.Errorf("unexpected flags: %v", c.CPSR)
	}
}

func TestThumbAddSubtract(t *testing.T) {
	c := thumbCPU(newTestBus(nil), 0x200, 0x1888) // ADD R0,R1,R2
	c.SetRegister(1, 0x7FFFFFFF)
	c.SetRegister(2, 1)
	c.Cycle()

	if got := c.Register(0); got != 0x80000000 {
		t.Errorf("R0 = 0x%08X", got)
	}
	if !c.CPSR.N || !c.CPSR.V {
		t.Errorf("expected N and V after the overflow, got %v", c.CPSR)
	}
}

func TestThumbImmediateOps(t *testing.T) {
	c := thumbCPU(newTestBus(nil), 0x200, 0x20FF) // MOV R0,#0xFF
	c.Cycle()
	if got := c.Register(0); got != 0xFF {
		t.Errorf("R0 = 0x%08X, want 0xFF", got)
	}

	c2 := thumbCPU(newTestBus(nil), 0x200, 0x2805) // CMP R0,#5
	c2.SetRegister(0, 5)
	c2.Cycle()
	if !c2.CPSR.Z || !c2.CPSR.C {
		t.Errorf("CMP equal should set Z and C, got %v", c2.CPSR)
	}
	if got := c2.Register(0); got != 5 {
		t.Error("CMP must not write the destination")
	}
}

func TestThumbAluNeg(t *testing.T) {
	c := thumbCPU(newTestBus(nil), 0x200, 0x4248) // NEG R0,R1
	c.SetRegister(1, 5)
	c.Cycle()
	if got := c.Register(0); got != 0xFFFFFFFB {
		t.Errorf("R0 = 0x%08X, want -5", got)
	}
	if !c.CPSR.N {
		t.Errorf("expected N, got %v", c.CPSR)
	}
}

func TestThumbAluRegisterShiftIdles(t *testing.T) {
	bus := newTestBus(nil)
	c := thumbCPU(bus, 0x200, 0x4088) // LSL R0,R1
	c.SetRegister(0, 1)
	c.SetRegister(1, 8)
	c.Cycle()
	if got := c.Register(0); got != 0x100 {
		t.Errorf("R0 = 0x%08X, want 0x100", got)
	}
	if bus.idleCount() != 1 {
		t.Errorf("register shift bills one idle cycle, got %d", bus.idleCount())
	}
}

func TestThumbHiRegisterAddToPC(t *testing.T) {
	bus := newTestBus(nil)
	c := thumbCPU(bus, 0x200, 0x4487) // ADD PC,R0
	c.SetRegister(0, 0x100)
	c.Cycle()
	// PC read as 0x204, plus 0x100, bit 0 cleared, then two refills
	if got := c.PC(); got != 0x304+4 {
		t.Errorf("PC = 0x%08X, want 0x308", got)
	}
}

func TestThumbBxToArm(t *testing.T) {
	bus := newTestBus(map[uint32]uint32{0x08000000: 0xE3A00001})
	c := thumbCPU(bus, 0x200, 0x4700) // BX R0
	c.SetRegister(0, 0x08000000)
	c.Cycle()

	if c.CPSR.State != StateARM {
		t.Fatal("expected ARM state after BX")
	}
	if got := c.PC(); got != 0x08000008 {
		t.Errorf("PC = 0x%08X, want 0x08000008 after refill", got)
	}
	if c.pipeline[0] != 0xE3A00001 {
		t.Errorf("pipeline[0] = 0x%08X, want the word at the target", c.pipeline[0])
	}
}

func TestThumbPcRelativeLoad(t *testing.T) {
	bus := newTestBus(map[uint32]uint32{0x208: 0x12345678})
	c := thumbCPU(bus, 0x200, 0x4801) // LDR R0,[PC,#4]
	c.Cycle()
	if got := c.Register(0); got != 0x12345678 {
		t.Errorf("R0 = 0x%08X", got)
	}
}

func TestThumbLoadStoreRegisterOffset(t *testing.T) {
	bus := newTestBus(nil)
	c := thumbCPU(bus, 0x200, 0x5088) // STR R0,[R1,R2]
	c.SetRegister(0, 0xCAFEBABE)
	c.SetRegister(1, 0x3000000)
	c.SetRegister(2, 0x10)
	c.Cycle()
	if got := bus.readWord(0x3000010); got != 0xCAFEBABE {
		t.Errorf("[R1+R2] = 0x%08X", got)
	}
}

func TestThumbLoadSignExtendedHalfword(t *testing.T) {
	bus := newTestBus(nil)
	bus.writeHalf(0x3000010, 0x8001)
	c := thumbCPU(bus, 0x200, 0x5E88) // LDSH R0,[R1,R2]
	c.SetRegister(1, 0x3000000)
	c.SetRegister(2, 0x10)
	c.Cycle()
	if got := c.Register(0); got != 0xFFFF8001 {
		t.Errorf("R0 = 0x%08X, want sign-extended halfword", got)
	}
}

func TestThumbSpRelativeStore(t *testing.T) {
	bus := newTestBus(nil)
	c := thumbCPU(bus, 0x200, 0x9001) // STR R0,[SP,#4]
	c.CPSR.Mode = ModeSystem
	c.SetRegister(SP, 0x3007F00)
	c.SetRegister(0, 0x11223344)
	c.Cycle()
	if got := bus.readWord(0x3007F04); got != 0x11223344 {
		t.Errorf("[SP+4] = 0x%08X", got)
	}
}

func TestThumbAddOffsetToSp(t *testing.T) {
	c := thumbCPU(newTestBus(nil), 0x200, 0xB081) // SUB SP,#4
	c.CPSR.Mode = ModeSystem
	c.SetRegister(SP, 0x3007F00)
	c.Cycle()
	if got := c.Register(SP); got != 0x3007EFC {
		t.Errorf("SP = 0x%08X, want SP-4", got)
	}
}

func TestThumbMultipleLoadStore(t *testing.T) {
	bus := newTestBus(nil)
	c := thumbCPU(bus, 0x200, 0xC106) // STMIA R1!,{R1,R2}
	c.SetRegister(1, 0x3000000)
	c.SetRegister(2, 0x22222222)
	c.Cycle()
	// The base is in the list and stores first; the write-back lands
	// after the first store
	if got := bus.readWord(0x3000000); got != 0x3000000 {
		t.Errorf("stored base = 0x%08X, want the original value", got)
	}
	if got := c.Register(1); got != 0x3000008 {
		t.Errorf("base after = 0x%08X, want advanced by 8", got)
	}
}

func TestThumbConditionalBranch(t *testing.T) {
	c := thumbCPU(newTestBus(nil), 0x200, 0xD0FE) // BEQ . (offset -4) with Z clear
	before := c.PC()
	c.Cycle()
	if got := c.PC(); got != before+2 {
		t.Errorf("failed condition must fall through, PC = 0x%08X", got)
	}

	c2 := thumbCPU(newTestBus(nil), 0x200, 0xD0FE)
	c2.CPSR.Z = true
	c2.Cycle()
	// offset -4 from PC 0x204 lands at 0x200; plus two refills
	if got := c2.PC(); got != 0x200+4 {
		t.Errorf("taken branch PC = 0x%08X, want 0x204", got)
	}
}

func TestThumbSoftwareInterrupt(t *testing.T) {
	c := thumbCPU(newTestBus(nil), 0x200, 0xDF05) // SWI #5
	c.CPSR.Mode = ModeSystem
	c.Cycle()
	if c.CPSR.Mode != ModeSupervisor || c.CPSR.State != StateARM {
		t.Fatalf("SWI entry wrong: %v", c.CPSR)
	}
	if got := c.Register(LR); got != 0x202 {
		t.Errorf("LR_svc = 0x%08X, want the next Thumb address", got)
	}
}
