// Package disasm renders a decoded microinstruction as readable text,
// the way a debugger's disassembly pane would. It never interprets
// microcode itself; callers supply the task-specific knowledge (what a
// constant address means, what a register name is, where a branch
// target leads) through three small callbacks, keeping this package
// free of any particular task's semantics.
package disasm

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/petersieg/palo/mce"
)

// Constant renders the constant ROM word at addr as a symbolic name,
// or "" if the caller has no better name than the raw value.
type Constant func(addr uint16) string

// Register renders the register selected by rsel (which bank of S, or
// plain R) as a symbolic name.
type Register func(rsel uint16) string

// Goto renders a NEXT field's target address as a label.
type Goto func(next uint16) string

// Disassembler formats Predecoded microinstructions using a set of
// symbol callbacks. A zero-value Disassembler is usable; every field
// left nil falls back to a raw numeric rendering (octal for constant
// addresses and branch targets, decimal for register numbers).
type Disassembler struct {
	Constant Constant
	Register Register
	Goto     Goto
}

// Line renders one microinstruction as a single line of text, e.g.
//
//	<-R3 alu=BUS+1; T<-BUS; GOTO L043
func (d Disassembler) Line(pd mce.Predecoded) string {
	var b strings.Builder

	if pd.UseConstant {
		fmt.Fprintf(&b, "<-%s ", d.constant(pd.ConstAddr))
	} else {
		fmt.Fprintf(&b, "<-%s ", d.bus(pd))
	}

	fmt.Fprintf(&b, "alu=%s", d.aluf(pd.ALUF))

	if pd.LoadT {
		b.WriteString("; T<-")
		if pd.LoadTFromALU {
			b.WriteString("ALU")
		} else {
			b.WriteString("BUS")
		}
	}
	if pd.LoadL {
		b.WriteString("; L<-ALU")
	}
	if pd.F1 != mce.F1None {
		fmt.Fprintf(&b, "; F1=%s", d.f1(pd.F1))
	}
	if pd.F2 != mce.F2None {
		fmt.Fprintf(&b, "; F2=%s", d.f2(pd.F2))
	}

	fmt.Fprintf(&b, "; GOTO %s", d.goTo(pd.Next))

	return b.String()
}

func (d Disassembler) constant(addr uint32) string {
	if d.Constant != nil {
		if s := d.Constant(uint16(addr)); s != "" {
			return s
		}
	}
	return fmt.Sprintf("C[%03o]", addr)
}

func (d Disassembler) bus(pd mce.Predecoded) string {
	switch pd.BS {
	case mce.BSReadR, mce.BSLoadR, mce.BSRAMReadS, mce.BSRAMLoadS:
		if d.Register != nil {
			if s := d.Register(pd.RSEL); s != "" {
				return s
			}
		}
		return fmt.Sprintf("R%d", pd.RSEL)
	case mce.BSReadMD:
		return "MD"
	case mce.BSReadMouse:
		return "MOUSE"
	case mce.BSReadDisp:
		return "DISP"
	case mce.BSEtherEIDFCT:
		return "EIDFCT"
	case mce.BSDiskReadKStat:
		return "KSTAT"
	case mce.BSDiskReadKData:
		return "KDATA"
	default:
		return "NONE"
	}
}

func (d Disassembler) goTo(next uint32) string {
	if d.Goto != nil {
		if s := d.Goto(uint16(next)); s != "" {
			return s
		}
	}
	return fmt.Sprintf("L%03o", next)
}

var alufNames = map[mce.ALUFunc]string{
	mce.ALUBus:              "BUS",
	mce.ALUT:                "T",
	mce.ALUBusOrT:           "BUS OR T",
	mce.ALUBusAndT:          "BUS AND T",
	mce.ALUBusAndTWB:        "BUS AND T (WB)",
	mce.ALUBusXorT:          "BUS XOR T",
	mce.ALUBusPlus1:         "BUS+1",
	mce.ALUBusMinus1:        "BUS-1",
	mce.ALUBusPlusT:         "BUS+T",
	mce.ALUBusMinusT:        "BUS-T",
	mce.ALUBusMinusTMinus1:  "BUS-T-1",
	mce.ALUBusPlusTPlus1:    "BUS+T+1",
	mce.ALUBusPlusSkip:      "BUS+SKIP",
	mce.ALUBusAndNotT:       "BUS AND NOT T",
}

func (d Disassembler) aluf(f mce.ALUFunc) string {
	if s, ok := alufNames[f]; ok {
		return s
	}
	return "?"
}

var f1Names = map[mce.F1Func]string{
	mce.F1Constant:    "CONSTANT",
	mce.F1LLSH1:       "LLSH1",
	mce.F1LRSH1:       "LRSH1",
	mce.F1LLCY8:       "LLCY8",
	mce.F1LoadMAR:     "LOAD_MAR",
	mce.F1Task:        "TASK",
	mce.F1Block:       "BLOCK",
	mce.F1RAMSWMode:   "SWMODE",
	mce.F1RAMWrtRAM:   "WRTRAM",
	mce.F1RAMRdRAM:    "RDRAM",
	mce.F1RAMLoadSRB:  "LOAD_SRB",
	mce.F1EmuLoadRMR:  "LOAD_RMR",
	mce.F1EmuLoadESRB: "LOAD_ESRB",
	mce.F1EmuRSNF:     "RSNF",
	mce.F1EmuStartF:   "STARTF",
}

func (d Disassembler) f1(f mce.F1Func) string {
	if s, ok := f1Names[f]; ok {
		return s
	}
	return "?"
}

var f2Names = map[mce.F2Func]string{
	mce.F2Constant:    "CONSTANT",
	mce.F2BusEQ0:      "BUSEQ0",
	mce.F2ShLt0:       "SHLT0",
	mce.F2ShEq0:       "SHEQ0",
	mce.F2Bus:         "BUS",
	mce.F2ALUCY:       "ALUCY",
	mce.F2StoreMD:     "STOREMD",
	mce.F2EmuMagic:    "MAGIC",
	mce.F2EmuACDest:   "ACDEST",
	mce.F2EmuBusOdd:   "BUSODD",
	mce.F2EmuLoadDNS:  "LOAD_DNS",
	mce.F2EmuLoadIR:   "LOAD_IR",
	mce.F2EmuIDisp:    "IDISP",
	mce.F2EmuACSource: "ACSOURCE",
}

func (d Disassembler) f2(f mce.F2Func) string {
	if s, ok := f2Names[f]; ok {
		return s
	}
	return "?"
}

// DumpRegisters renders the whole Engine struct for a verbose "info
// registers" style debugger command: the R/S register files, L/T/IR/MAR
// and the scheduler state, and also the ROMs and main memory it holds.
// It uses spew so nested/array fields print without a hand-written
// formatter for each.
func DumpRegisters(e *mce.Engine) string {
	var b strings.Builder
	cfg := spew.ConfigState{Indent: "  ", DisableMethods: true}
	b.WriteString(cfg.Sdump(e))
	return b.String()
}
