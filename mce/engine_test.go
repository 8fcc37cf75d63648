package mce

import "testing"

func newTestEngine(t *testing.T, bank0 []RawWord, constROM []uint16) *Engine {
	t.Helper()
	if constROM == nil {
		constROM = make([]uint16, 256)
	}
	raw := make([]uint32, len(bank0))
	for i, w := range bank0 {
		raw[i] = uint32(w)
	}
	e := NewEngine(constROM, raw, nil, AltoII, NullDevices{})
	return e
}

func TestEngineLoadTFromConstant(t *testing.T) {
	constROM := make([]uint16, 256)
	constROM[5] = 0xABCD

	// rsel=0, bs=5 (bypassed by UseConstant), f1=CONSTANT(1), loadT=true, next=0
	word := Encode(0, 0, 5, 1, 0, true, false, 0)

	e := newTestEngine(t, []RawWord{word}, constROM)
	if err := e.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if e.T != 0xABCD {
		t.Errorf("T = %#04x, want 0xABCD", e.T)
	}
}

func TestEngineLoadRFromBus(t *testing.T) {
	constROM := make([]uint16, 256)

	// R is written from the shifter, which reads L, so the bus value
	// reaches R over two microinstructions:
	// word0: F1=CONSTANT puts the constant word (address rsel=4, BS=2)
	// on the bus and LoadL latches it into L.
	// word1: BS=LOAD_R(2), rsel=4 writes the shifter output (L) to R[4].
	word0 := Encode(4, 0, 2, 1, 0, false, true, 1)
	word1 := Encode(4, 0, 2, 0, 0, false, false, 1)
	constAddr := uint32(4<<3) | 2
	constROM[constAddr] = 0x1357

	e := newTestEngine(t, []RawWord{word0, word1}, constROM)
	for i := 0; i < 2; i++ {
		if err := e.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if e.R[4] != 0x1357 {
		t.Errorf("R[4] = %#04x, want 0x1357", e.R[4])
	}
}

func TestEngineHaltsOnMicrocodeFetchOutOfRange(t *testing.T) {
	e := newTestEngine(t, []RawWord{Encode(0, 0, 0, 0, 0, false, false, 900)}, nil)

	if err := e.Step(); err != nil {
		t.Fatalf("first Step should succeed: %v", err)
	}
	if err := e.Step(); err == nil {
		t.Fatal("expected a fatal error fetching out-of-range microcode")
	}
	if !e.Halted() {
		t.Error("engine should be halted after a fatal fetch error")
	}
	if err := e.Step(); err == nil {
		t.Error("Step after halt should keep returning the latched error")
	}
}

func TestEnginePCAdvancesToNext(t *testing.T) {
	word0 := Encode(0, 0, 0, 0, 0, false, false, 7)
	word7 := Encode(0, 0, 0, 0, 0, false, false, 0)
	program := make([]RawWord, 8)
	program[0] = word0
	program[7] = word7

	e := newTestEngine(t, program, nil)
	if err := e.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if e.taskMPC[TaskEmulator] != 7 {
		t.Errorf("task_mpc = %d, want 7", e.taskMPC[TaskEmulator])
	}
}
