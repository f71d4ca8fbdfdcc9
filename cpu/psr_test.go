package cpu

import "testing"

func TestPSRMasksReservedBits(t *testing.T) {
	psr := NewPSR(0xFFFFFFFF)
	if got := psr.Value(); got != 0xF00000FF {
		t.Errorf("expected 0xF00000FF, got 0x%08X", got)
	}
}

func TestPSRRoundTripIdempotent(t *testing.T) {
	values := []uint32{
		0x00000010, 0x00000011, 0x00000012, 0x00000013,
		0x00000017, 0x0000001B, 0x0000001F,
		0xF00000DF, 0x800000D3, 0x600000B1, 0x100000F2,
		0xFFFFFFFF, 0xF0FF0F10,
	}
	for _, v := range values {
		first := NewPSR(v).Value()
		second := NewPSR(first).Value()
		if first != second {
			t.Errorf("round trip of 0x%08X not idempotent: 0x%08X != 0x%08X", v, first, second)
		}
		if first&CPSRReservedMask != 0 {
			t.Errorf("reserved bits leaked through for 0x%08X: 0x%08X", v, first)
		}
	}
}

func TestPSRSetValue(t *testing.T) {
	psr := NewPSR(0xFFFFFFFF)
	psr.SetValue(0xEFFFFF3B)
	if got := psr.Value(); got != 0xE000003B {
		t.Errorf("expected 0xE000003B, got 0x%08X", got)
	}
}

func TestPSRSetFlagsOnlyTouchesNZCV(t *testing.T) {
	psr := NewPSR(0xFFFFFF11)
	psr.SetFlags(0xEFFF4FEE)
	if got := psr.Value(); got != 0xE0000011 {
		t.Errorf("expected 0xE0000011, got 0x%08X", got)
	}

	// Leading zeroes clear all four flags
	psr.SetFlags(0x01FF)
	if got := psr.Value(); got != 0x00000011 {
		t.Errorf("expected 0x00000011, got 0x%08X", got)
	}
}

func TestPSRFieldAccessors(t *testing.T) {
	psr := NewPSR(0xFFFFFFFF)
	if !psr.N || !psr.Z || !psr.C || !psr.V {
		t.Error("expected all condition flags set")
	}
	if !psr.I || !psr.F {
		t.Error("expected both interrupt masks set")
	}
	if psr.State != StateThumb {
		t.Errorf("expected Thumb state, got %v", psr.State)
	}
	if psr.Mode != ModeSystem {
		t.Errorf("expected system mode, got %v", psr.Mode)
	}
}

func TestPSRModeTransitions(t *testing.T) {
	modes := []Mode{
		ModeUser, ModeFIQ, ModeIRQ, ModeSupervisor,
		ModeAbort, ModeUndefined, ModeSystem,
	}
	for _, mode := range modes {
		psr := NewPSR(uint32(mode))
		if psr.Mode != mode {
			t.Errorf("expected mode %v, got %v", mode, psr.Mode)
		}
	}
}

func TestPSRInvalidModePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid mode encoding")
		}
	}()
	NewPSR(0xFFFFFF15)
}
