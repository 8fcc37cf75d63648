package disasm

import (
	"strings"
	"testing"

	"github.com/petersieg/palo/mce"
)

func TestLineRendersBusyALUAndGoto(t *testing.T) {
	word := mce.Encode(3, uint32(mce.ALUBusPlus1), 0, 0, 0, false, false, 42)
	pd := mce.Predecode(word, mce.TaskEmulator)

	d := Disassembler{}
	line := d.Line(pd)

	if !strings.Contains(line, "BUS+1") {
		t.Errorf("line %q should mention the ALU op", line)
	}
	if !strings.Contains(line, "GOTO") {
		t.Errorf("line %q should mention the branch target", line)
	}
}

func TestLineUsesRegisterCallback(t *testing.T) {
	word := mce.Encode(7, 0, 1, 0, 0, false, false, 0) // raw BS=1 -> BSReadR
	pd := mce.Predecode(word, mce.TaskEmulator)

	d := Disassembler{
		Register: func(rsel uint16) string {
			if rsel == 7 {
				return "AC0"
			}
			return ""
		},
	}
	line := d.Line(pd)
	if !strings.Contains(line, "AC0") {
		t.Errorf("line %q should use the register callback's name", line)
	}
}

func TestLineFallsBackToRawConstantAddr(t *testing.T) {
	word := mce.Encode(2, 0, 0, 1, 0, false, false, 0) // F1=CONSTANT
	pd := mce.Predecode(word, mce.TaskEmulator)

	d := Disassembler{}
	line := d.Line(pd)
	if !strings.Contains(line, "C[") {
		t.Errorf("line %q should fall back to a raw constant address", line)
	}
}

func TestDumpRegistersIncludesFieldNames(t *testing.T) {
	e := mce.NewEngine(make([]uint16, 256), []uint32{0}, nil, mce.AltoII, mce.NullDevices{})
	out := DumpRegisters(e)
	if !strings.Contains(out, "T:") {
		t.Errorf("register dump should mention the T field, got: %s", out)
	}
}
