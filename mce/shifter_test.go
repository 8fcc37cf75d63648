package mce

import "testing"

func TestShiftPassthrough(t *testing.T) {
	r := Shift(F1None, 0x1234, false, 0, false, false)
	if r.Value != 0x1234 {
		t.Errorf("Value = %#04x, want 0x1234", r.Value)
	}
}

func TestShiftLeft(t *testing.T) {
	r := Shift(F1LLSH1, 0x0001, false, 0, false, false)
	if r.Value != 0x0002 {
		t.Errorf("LLSH1 0x0001 = %#04x, want 0x0002", r.Value)
	}
}

func TestShiftRight(t *testing.T) {
	r := Shift(F1LRSH1, 0x0002, false, 0, false, false)
	if r.Value != 0x0001 {
		t.Errorf("LRSH1 0x0002 = %#04x, want 0x0001", r.Value)
	}
}

func TestShiftCycle8(t *testing.T) {
	r := Shift(F1LLCY8, 0x1234, false, 0, false, false)
	if r.Value != 0x3412 {
		t.Errorf("LLCY8 0x1234 = %#04x, want 0x3412", r.Value)
	}
}

func TestShiftLt0Eq0Flags(t *testing.T) {
	r := Shift(F1None, 0x8000, false, 0, false, false)
	if !r.Lt0 {
		t.Error("Lt0 should be set for a result with the MSB set")
	}
	r = Shift(F1None, 0x0000, false, 0, false, false)
	if !r.Eq0 {
		t.Error("Eq0 should be set for a zero result")
	}
}

func TestShiftDNSRotatesNovaCarry(t *testing.T) {
	r := Shift(F1LLSH1, 0x8000, false, 0, true, false)
	if r.Value != 0x0000 {
		t.Errorf("DNS LLSH1 0x8000 with carry-in 0 = %#04x, want 0x0000", r.Value)
	}
	if !r.NovaCarryOut {
		t.Error("NovaCarryOut should capture the bit shifted out (MSB was set)")
	}

	r = Shift(F1LLSH1, 0x0000, false, 0, true, true)
	if r.Value != 0x0001 {
		t.Errorf("DNS LLSH1 0x0000 with carry-in 1 = %#04x, want 0x0001", r.Value)
	}
}

func TestShiftMagicFillsFromInput(t *testing.T) {
	r := Shift(F1LLSH1, 0x0000, true, 0xFFFF, false, false)
	if r.Value&1 != 1 {
		t.Error("magic left shift should fill the vacated low bit from magicIn's MSB")
	}
}
