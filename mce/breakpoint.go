package mce

// Breakpoint is a flat predicate over engine state, checked once per
// Step. Any field left at its don't-care sentinel is ignored; a
// Breakpoint with every field at its sentinel matches every step.
type Breakpoint struct {
	Task         Task   // don't-care: TaskDontCare
	NTask        Task   // don't-care: TaskDontCare
	OnTaskSwitch bool   // require ctask != ntask this step
	MIRMask      uint32 // AND-mask applied to the raw microinstruction
	MIRValue     uint32 // compared against MIR&MIRMask; MIRMask==0 means don't-care
	MPC          uint32 // don't-care: MPCDontCare
}

// TaskDontCare and MPCDontCare are the sentinel values meaning "ignore
// this field", chosen outside the valid range of their fields (Task is
// 4 bits, MPC is 10 bits).
const (
	TaskDontCare = Task(0xFF)
	MPCDontCare  = uint32(0xFFFF)
)

// Match reports whether the breakpoint fires for the engine's state as
// of the end of the step that just ran (task is the task that just
// executed, not necessarily e.ctask after any switch).
func (b Breakpoint) Match(e *Engine, task Task, raw RawWord) bool {
	if b.Task != TaskDontCare && b.Task != task {
		return false
	}
	if b.NTask != TaskDontCare && b.NTask != e.ntask {
		return false
	}
	if b.OnTaskSwitch && e.ctask == task {
		return false
	}
	if b.MIRMask != 0 && uint32(raw)&b.MIRMask != b.MIRValue {
		return false
	}
	if b.MPC != MPCDontCare && b.MPC != uint32(e.taskMPC[task]) {
		return false
	}
	return true
}

// BreakpointSet is an unordered collection of breakpoints; StepUntil
// stops as soon as any one of them matches.
type BreakpointSet []Breakpoint

// StepUntil runs the engine until a breakpoint in bp matches, a fatal
// error halts it, or maxSteps microinstructions have executed
// (whichever comes first). It returns the breakpoint that matched, if
// any, and the number of steps actually taken.
func (e *Engine) StepUntil(bp BreakpointSet, maxSteps uint64) (matched *Breakpoint, steps uint64, err error) {
	for steps = 0; steps < maxSteps; steps++ {
		task := e.ctask
		mpc := e.taskMPC[task]
		raw, ferr := e.currentMicrocode(e.bank, mpc)
		if ferr != nil {
			return nil, steps, ferr
		}

		if stepErr := e.Step(); stepErr != nil {
			return nil, steps + 1, stepErr
		}

		for i := range bp {
			if bp[i].Match(e, task, raw) {
				return &bp[i], steps + 1, nil
			}
		}
	}
	return nil, steps, nil
}
