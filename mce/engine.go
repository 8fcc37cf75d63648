package mce

import (
	"github.com/petersieg/palo/errs"
	"github.com/petersieg/palo/logger"
)

// NumMicrocodeBanks is the number of microcode ROM banks the Alto II
// exposes (bank 0 is always present; bank 1 is the RAM-loadable
// overlay used by a 3K-RAM Alto II). Mirrors rom.NumMicrocodeBanks.
const NumMicrocodeBanks = 2

// MicrocodeSize is the word count of one microcode bank. Mirrors
// rom.MicrocodeSize.
const MicrocodeSize = 1024

// numRegisters is the size of the shared R register file.
const numRegisters = 32

// numSRegisterBanks is the number of banked S register files a 3K-RAM
// Alto II exposes; a plain Alto II or Alto I always uses bank 0.
const numSRegisterBanks = 8

// Engine is one Alto microengine: the full register file, the task
// scheduler, and the ROMs driving it. Step executes exactly one
// microinstruction of whichever task currently has priority.
type Engine struct {
	ConstROM  []uint16
	Microcode [NumMicrocodeBanks][]RawWord

	Mem     *Memory
	Devices Devices
	Sys     SystemType

	R [numRegisters]uint16
	S [numSRegisterBanks][numRegisters]uint16

	L   uint16
	T   uint16
	IR  uint16
	MAR uint16

	sBank [NumTasks]int

	taskMPC [NumTasks]uint16
	ctask   Task
	ntask   Task

	pendingSoft uint16 // software-raised wakeups (BLOCK/STARTF), ORed with Devices.WakeupPending()
	blocked     uint16 // tasks BLOCKed and awaiting their own wakeup to resume

	bank int // active microcode bank; nothing in the engine writes it, so it stays 0

	rmr uint16 // reset-mode register, one bit per task; set bits hold the task in reset

	aluCarry  bool
	novaCarry bool
	skip      bool
	dns       bool

	Cycle uint64

	halted     bool
	haltReason error
}

// NewEngine constructs an Engine from loaded ROMs. Every task starts
// its MPC at its own task number's conventional reset vector (task N
// wakes up at microcode address N in bank 0), matching how the real
// hardware routes F1=TASK into a fixed per-task entry point on first
// dispatch.
func NewEngine(constROM []uint16, microcode0, microcode1 []uint32, sys SystemType, dev Devices) *Engine {
	e := &Engine{
		ConstROM: constROM,
		Mem:      NewMemory(sys),
		Devices:  dev,
		Sys:      sys,
		ctask:    TaskEmulator,
	}
	e.Microcode[0] = toRawWords(microcode0)
	if len(microcode1) > 0 {
		e.Microcode[1] = toRawWords(microcode1)
	}
	for t := range e.taskMPC {
		e.taskMPC[t] = uint16(t)
	}
	e.rmr = ^uint16(0) &^ 1 // every task but EMULATOR starts held in reset
	return e
}

func toRawWords(words []uint32) []RawWord {
	out := make([]RawWord, len(words))
	for i, w := range words {
		out[i] = RawWord(w)
	}
	return out
}

// Halted reports whether the engine has latched a fatal error and
// stopped advancing.
func (e *Engine) Halted() bool {
	return e.halted
}

// HaltReason returns the error that stopped the engine, or nil if it
// is still running.
func (e *Engine) HaltReason() error {
	return e.haltReason
}

func (e *Engine) halt(err error) {
	e.halted = true
	e.haltReason = err
	logger.Error("mce", err.Error())
}

// currentMicrocode fetches the raw word at the given bank/address,
// returning an errs.MicrocodeFatal error if the address is out of
// range; Step latches that error by halting.
func (e *Engine) currentMicrocode(bank int, addr uint16) (RawWord, error) {
	if bank < 0 || bank >= NumMicrocodeBanks || int(addr) >= len(e.Microcode[bank]) {
		return 0, errs.Errorf(errs.MicrocodeFatal, "mce: microcode fetch out of range (bank %d addr %#o)", bank, addr)
	}
	if len(e.Microcode[bank]) == 0 {
		return 0, errs.New(errs.MicrocodeFatal, "mce: microcode bank not loaded")
	}
	return e.Microcode[bank][addr], nil
}

// Step runs the current task's next microinstruction through the
// predecode -> bus -> ALU -> shifter -> F1 -> F2 -> writeback -> PC
// pipeline and returns any fatal error encountered. Once Step returns
// a non-nil error the engine is halted and further calls return the
// same error without doing any work.
func (e *Engine) Step() error {
	if e.halted {
		return e.haltReason
	}

	task := e.ctask
	mpc := e.taskMPC[task]

	raw, err := e.currentMicrocode(e.bank, mpc)
	if err != nil {
		e.halt(err)
		return err
	}
	pd := Predecode(raw, task)
	pd.RSEL = modifiedRSEL(pd.RSEL, task, pd.F2, e.IR)

	bus, err := e.readBus(pd)
	if err != nil {
		e.halt(err)
		return err
	}

	aluResult, carry := ComputeALU(pd.ALUF, bus, e.T, e.skip)

	sh := Shift(pd.F1, e.L, pd.F2 == F2EmuMagic, e.magicInput(task), e.dns, e.novaCarry)

	nextMPC := pd.Next

	switch pd.F1 {
	case F1LoadMAR:
		e.MAR = aluResult
		e.Mem.BeginCycle(task, e.MAR, pd.F2 == F2StoreMD)
	case F1Task:
		if nt, ok := e.pickNextTask(task); ok {
			e.ntask = nt
		}
	case F1Block:
		e.blocked |= 1 << task
	case F1RAMSWMode:
		// selects the writable-RAM overlay bank; modeled as a no-op
		// until a RAM-microcode loader exists.
	case F1RAMWrtRAM, F1RAMRdRAM:
		// writable control store access, unimplemented pending a RAM
		// microcode image format.
	case F1RAMLoadSRB:
		if e.Sys.has3KRAM() {
			e.sBank[task] = int(bus & 0x7)
		}
	}
	if task == TaskEmulator {
		switch pd.F1 {
		case F1EmuLoadRMR:
			e.rmr = bus
		case F1EmuLoadESRB:
			if e.Sys.has3KRAM() {
				e.sBank[task] = int(bus & 0x7)
			}
		case F1EmuRSNF:
			// read serial number / feature: stubbed at zero, no
			// physical serial number ROM is modeled.
		case F1EmuStartF:
			e.pendingSoft |= e.startTaskMask(bus)
		}
	}

	switch pd.F2 {
	case F2BusEQ0:
		if bus == 0 {
			nextMPC |= branchBit
		}
	case F2ShLt0:
		if sh.Lt0 {
			nextMPC |= branchBit
		}
	case F2ShEq0:
		if sh.Eq0 {
			nextMPC |= branchBit
		}
	case F2ALUCY:
		if carry {
			nextMPC |= branchBit
		}
	case F2Bus:
		nextMPC |= uint32(bus) & microcodeAddrMask
	case F2StoreMD:
		if pd.F1 == F1LoadMAR {
			// MAR load and STORE_MD in one microinstruction: illegal on
			// Alto I; on Alto II the store is suppressed.
			if e.Sys == AltoI {
				serr := errs.New(errs.MicrocodeFatal, "mce: STORE_MD in the same microinstruction as a MAR load")
				e.halt(serr)
				return serr
			}
			break
		}
		if e.Mem.CycleActive() {
			if werr := e.Mem.WriteWord(bus); werr != nil {
				e.halt(werr)
				return werr
			}
		}
	}
	if task == TaskEmulator {
		switch pd.F2 {
		case F2EmuBusOdd:
			if bus&1 != 0 {
				nextMPC |= branchBit
			}
		case F2EmuLoadDNS:
			e.dns = bus&1 != 0
		case F2EmuLoadIR:
			e.IR = bus
			extras := uint32(bus>>8) & 0x7
			if bus&0x8000 != 0 {
				extras |= 0x8
			}
			nextMPC |= extras
			e.skip = false
		}
	}

	if pd.LoadT {
		if pd.LoadTFromALU {
			e.T = aluResult
		} else {
			e.T = bus
		}
	}
	if pd.LoadL {
		e.L = aluResult
		e.aluCarry = carry
		e.novaCarry = sh.NovaCarryOut
	}
	e.writeDest(pd, sh.Value)

	e.taskMPC[task] = nextMPC & microcodeAddrMask
	e.Cycle++

	if e.ntask != task {
		e.ctask = e.ntask
	}
	e.dispatchWakeups()

	return nil
}

// branchBit is ORed into NEXT when a conditional F2 takes its branch,
// matching the real microcode convention of a one-bit-wide "low order
// bit of NEXT is the condition" jump table.
const branchBit = 1

// microcodeAddrMask keeps the microcode PC within one bank (1024
// locations).
const microcodeAddrMask = MicrocodeSize - 1

// magicInput supplies the bit the magic shift pulls into the vacated
// hole: T's MSB feeding a left shift, T's LSB feeding a right shift.
func (e *Engine) magicInput(task Task) uint16 {
	return e.T
}

// modifiedRSEL implements EMULATOR's get_modified_rsel: ACSOURCE and
// ACDEST/LOAD_DNS replace the low two bits of RSEL with bits decoded
// out of the instruction register, so the same microcode can address
// whichever Nova accumulator the current instruction names.
func modifiedRSEL(rsel uint32, task Task, f2 F2Func, ir uint16) uint32 {
	if task != TaskEmulator {
		return rsel
	}
	switch f2 {
	case F2EmuACSource:
		return (rsel &^ 0x3) | uint32(^(ir>>13)&0x3)
	case F2EmuACDest, F2EmuLoadDNS:
		return (rsel &^ 0x3) | uint32(^(ir>>11)&0x3)
	}
	return rsel
}

// startTaskMask maps a STARTF operand to the wakeup bit of the task it
// starts; bits 0-3 of bus select one of the 16 tasks, matching how
// EMULATOR's STARTF is used to kick off the disk or ethernet task.
func (e *Engine) startTaskMask(bus uint16) uint16 {
	return 1 << (bus & 0xF)
}

// readBus resolves the BS-selected source. UseConstant and the BS
// decode are treated as mutually exclusive full bus drivers.
func (e *Engine) readBus(pd Predecoded) (uint16, error) {
	if pd.UseConstant {
		return e.constWord(pd.ConstAddr), nil
	}

	switch pd.BS {
	case BSNone:
		return 0xFFFF, nil
	case BSReadR:
		return e.R[pd.RSEL], nil
	case BSLoadR:
		return e.R[pd.RSEL], nil
	case BSReadMD:
		if e.Mem.CycleActive() {
			return e.Mem.ReadWord()
		}
		return 0, nil
	case BSReadMouse:
		return e.Devices.MousePoll(), nil
	case BSReadDisp:
		w, _ := e.Devices.DisplayPoll()
		return w, nil
	case BSRAMReadS:
		if pd.RSEL == 0 {
			return 0, nil // RSEL 0 reads M on real hardware; M is not modeled as a separate bus source here
		}
		return e.S[e.sBank[pd.Task]][pd.RSEL], nil
	case BSRAMLoadS:
		return 0xBEEF, nil
	case BSEtherEIDFCT:
		return e.Devices.EthernetAddress(), nil
	case BSDiskReadKStat:
		return e.Devices.DiskStatus(pd.Task), nil
	case BSDiskReadKData:
		return e.Devices.DiskData(pd.Task), nil
	default:
		return 0, nil
	}
}

func (e *Engine) constWord(addr uint32) uint16 {
	if int(addr) >= len(e.ConstROM) {
		return 0xFFFF
	}
	return e.ConstROM[addr]
}

// writeDest commits the shifter output to whichever destination RSEL
// plus BS=LoadR/RAMLoadS selects.
func (e *Engine) writeDest(pd Predecoded, value uint16) {
	switch pd.BS {
	case BSLoadR:
		e.R[pd.RSEL] = value
	case BSRAMLoadS:
		if pd.RSEL != 0 {
			e.S[e.sBank[pd.Task]][pd.RSEL] = value
		}
	}
}

// pickNextTask selects the highest-priority task with a pending
// wakeup, falling back to the current task if none is pending (the
// real hardware never actually dispatches to an idle system; EMULATOR
// always has an implicit wakeup).
func (e *Engine) pickNextTask(current Task) (Task, bool) {
	pending := (e.Devices.WakeupPending() | e.pendingSoft) &^ e.blocked &^ e.rmr
	pending |= 1 // EMULATOR (bit 0) is always runnable
	for t := Task(0); t < NumTasks; t++ {
		if pending&(1<<t) != 0 {
			return t, true
		}
	}
	return current, false
}

func (e *Engine) dispatchWakeups() {
	e.pendingSoft &^= e.blocked
}
