package mce

import "testing"

func TestBreakpointMatchesOnTask(t *testing.T) {
	e := newTestEngine(t, []RawWord{Encode(0, 0, 0, 0, 0, false, false, 0)}, nil)

	bp := Breakpoint{Task: TaskEmulator, NTask: TaskDontCare, MPC: MPCDontCare}
	if !bp.Match(e, TaskEmulator, RawWord(0)) {
		t.Error("breakpoint should match the configured task")
	}
	if bp.Match(e, TaskCursor, RawWord(0)) {
		t.Error("breakpoint should not match a different task")
	}
}

func TestBreakpointDontCareMatchesAnyTask(t *testing.T) {
	e := newTestEngine(t, []RawWord{Encode(0, 0, 0, 0, 0, false, false, 0)}, nil)
	bp := Breakpoint{Task: TaskDontCare, NTask: TaskDontCare, MPC: MPCDontCare}
	if !bp.Match(e, TaskCursor, RawWord(0)) {
		t.Error("a fully don't-care breakpoint should match anything")
	}
}

func TestBreakpointMIRMask(t *testing.T) {
	e := newTestEngine(t, []RawWord{Encode(0, 0, 0, 0, 0, false, false, 0)}, nil)
	bp := Breakpoint{
		Task: TaskDontCare, NTask: TaskDontCare, MPC: MPCDontCare,
		MIRMask: 0xF, MIRValue: 0x5,
	}
	if !bp.Match(e, TaskEmulator, RawWord(0x15)) {
		t.Error("0x15 & 0xF == 0x5, should match")
	}
	if bp.Match(e, TaskEmulator, RawWord(0x12)) {
		t.Error("0x12 & 0xF == 0x2, should not match")
	}
}

func TestStepUntilStopsAtBreakpoint(t *testing.T) {
	word0 := Encode(0, 0, 0, 0, 0, false, false, 1)
	word1 := Encode(0, 0, 0, 0, 0, false, false, 2)
	word2 := Encode(0, 0, 0, 0, 0, false, false, 0)
	e := newTestEngine(t, []RawWord{word0, word1, word2}, nil)

	bp := BreakpointSet{{Task: TaskDontCare, NTask: TaskDontCare, MPC: 2}}
	matched, steps, err := e.StepUntil(bp, 100)
	if err != nil {
		t.Fatalf("StepUntil: %v", err)
	}
	if matched == nil {
		t.Fatal("expected a breakpoint match")
	}
	if steps != 2 {
		t.Errorf("steps = %d, want 2", steps)
	}
}
