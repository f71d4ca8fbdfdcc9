package gba

import "testing"

func TestClockCycleLutsAtReset(t *testing.T) {
	luts := newCycleLuts()

	wantN16 := [16]uint64{1, 1, 3, 1, 1, 1, 1, 1, 5, 5, 5, 5, 5, 5, 5, 5}
	wantS16 := [16]uint64{1, 1, 3, 1, 1, 1, 1, 1, 3, 3, 5, 5, 9, 9, 5, 5}
	wantN32 := [16]uint64{1, 1, 6, 1, 1, 2, 2, 1, 8, 8, 10, 10, 14, 14, 5, 5}
	wantS32 := [16]uint64{1, 1, 6, 1, 1, 2, 2, 1, 6, 6, 10, 10, 18, 18, 5, 5}

	if luts.n16 != wantN16 {
		t.Errorf("n16 = %v, want %v", luts.n16, wantN16)
	}
	if luts.s16 != wantS16 {
		t.Errorf("s16 = %v, want %v", luts.s16, wantS16)
	}
	if luts.n32 != wantN32 {
		t.Errorf("n32 = %v, want %v", luts.n32, wantN32)
	}
	if luts.s32 != wantS32 {
		t.Errorf("s32 = %v, want %v", luts.s32, wantS32)
	}
}

func TestClockCycleLutsAfterWaitcntWrite(t *testing.T) {
	luts := newCycleLuts()
	luts.applyWaitstates(0b100001100010111)

	wantN16 := [16]uint64{1, 1, 3, 1, 1, 1, 1, 1, 4, 4, 5, 5, 9, 9, 9, 9}
	wantS16 := [16]uint64{1, 1, 3, 1, 1, 1, 1, 1, 2, 2, 5, 5, 9, 9, 9, 9}
	wantN32 := [16]uint64{1, 1, 6, 1, 1, 2, 2, 1, 6, 6, 10, 10, 18, 18, 9, 9}
	wantS32 := [16]uint64{1, 1, 6, 1, 1, 2, 2, 1, 4, 4, 10, 10, 18, 18, 9, 9}

	if luts.n16 != wantN16 {
		t.Errorf("n16 = %v, want %v", luts.n16, wantN16)
	}
	if luts.s16 != wantS16 {
		t.Errorf("s16 = %v, want %v", luts.s16, wantS16)
	}
	if luts.n32 != wantN32 {
		t.Errorf("n32 = %v, want %v", luts.n32, wantN32)
	}
	if luts.s32 != wantS32 {
		t.Errorf("s32 = %v, want %v", luts.s32, wantS32)
	}
}

func TestHaltControl(t *testing.T) {
	sc := NewSystemController()
	if sc.HaltMode() != HaltModeRunning {
		t.Fatal("expected to start running")
	}
	sc.WriteHaltControl(0)
	if sc.HaltMode() != HaltModeHalted {
		t.Fatal("expected halted after HALTCNT write")
	}
	sc.UnHalt()
	if sc.HaltMode() != HaltModeRunning {
		t.Fatal("expected running after UnHalt")
	}
}

func TestStopModePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for stop mode")
		}
	}()
	NewSystemController().WriteHaltControl(0x80)
}

func TestInterruptPendingCondition(t *testing.T) {
	var ic InterruptController
	ic.Raise(IrqVBlank)
	if ic.Pending() {
		t.Error("pending requires IME")
	}
	ic.SetMasterEnable(1)
	if ic.Pending() {
		t.Error("pending requires the line to be enabled")
	}
	ic.SetEnable(uint16(IrqVBlank))
	if !ic.Pending() {
		t.Error("expected pending with IME, IE and IF agreeing")
	}
	ic.AcknowledgeFlags(uint16(IrqVBlank))
	if ic.Pending() {
		t.Error("acknowledge must clear the line")
	}
}
