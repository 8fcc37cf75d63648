package mce

import (
	"testing"

	"github.com/go-test/deep"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name                           string
		rsel, aluf, bs, f1, f2, next   uint32
		loadT, loadL                   bool
	}{
		{"zero", 0, 0, 0, 0, 0, 0, false, false},
		{"all set", 31, 13, 7, 15, 14, 1023, true, true},
		{"mixed", 17, 4, 2, 9, 3, 512, true, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := Encode(c.rsel, c.aluf, c.bs, c.f1, c.f2, c.loadT, c.loadL, c.next)
			pd := Predecode(w, TaskEmulator)

			if pd.RSEL != c.rsel {
				t.Errorf("RSEL = %d, want %d", pd.RSEL, c.rsel)
			}
			if uint32(pd.ALUF) != c.aluf {
				t.Errorf("ALUF = %d, want %d", pd.ALUF, c.aluf)
			}
			if pd.LoadT != c.loadT && !pd.LoadTFromALU {
				t.Errorf("LoadT = %v, want %v", pd.LoadT, c.loadT)
			}
			if pd.LoadL != c.loadL {
				t.Errorf("LoadL = %v, want %v", pd.LoadL, c.loadL)
			}
			if pd.Next != c.next {
				t.Errorf("Next = %d, want %d", pd.Next, c.next)
			}
			if Encode(pd.RSEL, uint32(pd.ALUF), c.bs, c.f1, c.f2, pd.LoadT, pd.LoadL, pd.Next) != w {
				t.Errorf("re-encoded word does not match original")
			}
		})
	}
}

func TestPredecodeIsDeterministic(t *testing.T) {
	w := Encode(5, 3, 6, 9, 2, true, false, 41)
	a := Predecode(w, TaskDiskSector)
	b := Predecode(w, TaskDiskSector)
	if diff := deep.Equal(a, b); diff != nil {
		t.Errorf("Predecode of the same word and task produced different results: %v", diff)
	}
}

func TestPredecodeResolvesRAMTaskBS(t *testing.T) {
	w := Encode(5, 0, 6, 0, 0, false, false, 0) // raw BS=6 (slot A)

	pd := Predecode(w, TaskEmulator)
	if pd.BS != BSRAMReadS {
		t.Errorf("EMULATOR task: BS = %v, want BSRAMReadS", pd.BS)
	}

	pd = Predecode(w, TaskDisplayWord)
	if pd.BS != BSNone {
		t.Errorf("DISPLAY_WORD task: BS = %v, want BSNone (not RAM-capable)", pd.BS)
	}
}

func TestPredecodeResolvesDiskBS(t *testing.T) {
	w := Encode(0, 0, 6, 0, 0, false, false, 0)
	pd := Predecode(w, TaskDiskSector)
	if pd.BS != BSDiskReadKStat {
		t.Errorf("DISK_SECTOR task: BS = %v, want BSDiskReadKStat", pd.BS)
	}
}

func TestPredecodeEmulatorSpecificF1(t *testing.T) {
	w := Encode(0, 0, 0, 12, 0, false, false, 0) // F1 raw 12: LOAD_RMR in EMULATOR only

	pd := Predecode(w, TaskEmulator)
	if pd.F1 != F1EmuLoadRMR {
		t.Errorf("EMULATOR task: F1 = %v, want F1EmuLoadRMR", pd.F1)
	}

	pd = Predecode(w, TaskCursor)
	if pd.F1 != F1None {
		t.Errorf("CURSOR task: F1 = %v, want F1None (code is EMULATOR-specific)", pd.F1)
	}
}

func TestPredecodeUseConstant(t *testing.T) {
	w := Encode(3, 0, 0, 1, 0, false, false, 0) // F1=CONSTANT
	pd := Predecode(w, TaskEmulator)
	if !pd.UseConstant {
		t.Error("UseConstant should be true when F1=CONSTANT")
	}
	if pd.BSUseCROM {
		t.Error("BSUseCROM should be false when UseConstant took the exclusive path")
	}
}

func TestPredecodeLoadTFromALU(t *testing.T) {
	w := Encode(0, uint32(ALUBusAndTWB), 0, 0, 0, false, false, 0)
	pd := Predecode(w, TaskEmulator)
	if !pd.LoadTFromALU {
		t.Error("LoadTFromALU should be true for ALUBusAndTWB")
	}
	if !pd.LoadT {
		t.Error("LoadT should be forced true alongside LoadTFromALU")
	}
}
