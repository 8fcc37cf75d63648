package mce

import "testing"

func TestComputeALUBasicOps(t *testing.T) {
	cases := []struct {
		name       string
		aluf       ALUFunc
		bus, t     uint16
		wantResult uint16
		wantCarry  bool
	}{
		{"bus", ALUBus, 0x1234, 0xFFFF, 0x1234, false},
		{"t", ALUT, 0x1234, 0x5678, 0x5678, false},
		{"or", ALUBusOrT, 0x0F0F, 0xF0F0, 0xFFFF, false},
		{"and", ALUBusAndT, 0xFF00, 0x0FF0, 0x0F00, false},
		{"xor", ALUBusXorT, 0xFF00, 0x0FF0, 0xF0F0, false},
		{"plus1", ALUBusPlus1, 0xFFFF, 0, 0x0000, true},
		{"minus1", ALUBusMinus1, 0x0000, 0, 0xFFFF, false},
		{"plusT", ALUBusPlusT, 0x0001, 0xFFFF, 0x0000, true},
		{"minusT", ALUBusMinusT, 0x0005, 0x0003, 0x0002, true},
		{"andNotT", ALUBusAndNotT, 0xFFFF, 0x00FF, 0xFF00, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			result, carry := ComputeALU(c.aluf, c.bus, c.t, false)
			if result != c.wantResult {
				t.Errorf("result = %#04x, want %#04x", result, c.wantResult)
			}
			if carry != c.wantCarry {
				t.Errorf("carry = %v, want %v", carry, c.wantCarry)
			}
		})
	}
}

func TestComputeALUPlusSkip(t *testing.T) {
	result, _ := ComputeALU(ALUBusPlusSkip, 5, 0, false)
	if result != 5 {
		t.Errorf("no skip: result = %d, want 5", result)
	}
	result, carry := ComputeALU(ALUBusPlusSkip, 0xFFFF, 0, true)
	if result != 0 || !carry {
		t.Errorf("skip: result = %#04x carry=%v, want 0x0000 carry=true", result, carry)
	}
}

func TestComputeALUMinusTMinus1Carry(t *testing.T) {
	result, carry := ComputeALU(ALUBusMinusTMinus1, 0, 1, false)
	if result != 0xFFFE || carry {
		t.Errorf("bus=0 t=1: result = %#04x carry=%v, want 0xfffe carry=false", result, carry)
	}
	result, carry = ComputeALU(ALUBusMinusTMinus1, 5, 3, false)
	if result != 1 || !carry {
		t.Errorf("bus=5 t=3: result = %#04x carry=%v, want 0x0001 carry=true", result, carry)
	}
}

func TestComputeALUAndTWBSameResultAsAndT(t *testing.T) {
	r1, _ := ComputeALU(ALUBusAndT, 0xABCD, 0x0F0F, false)
	r2, _ := ComputeALU(ALUBusAndTWB, 0xABCD, 0x0F0F, false)
	if r1 != r2 {
		t.Errorf("ALUBusAndTWB result %#04x should match ALUBusAndT result %#04x", r2, r1)
	}
}
