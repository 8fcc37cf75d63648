// Package mce implements the Alto microengine: the per-microinstruction
// interpreter that drives the bus/ALU/shifter datapath and the
// cooperative task scheduler.
//
// RawWord packs the named microcode fields into a single 32-bit word.
// Re-encoding the raw fields Predecode extracts gives back the original
// word; Predecoded.LoadT itself is forced true for ALUBusAndTWB, so it
// can differ from the raw LOAD_T bit. See DESIGN.md for the
// field-layout rationale.
package mce

// RawWord is one 32-bit microinstruction, exactly as read from a
// microcode ROM bank.
type RawWord uint32

// Bit widths and shifts for RawWord. NEXT is 10 bits: the microcode
// PC addresses a 1024-word bank.
const (
	rselBits = 5
	alufBits = 4
	bsBits   = 3
	f1Bits   = 4
	f2Bits   = 4
	loadTBit = 1
	loadLBit = 1
	nextBits = 10

	rselShift  = 0
	alufShift  = rselShift + rselBits
	bsShift    = alufShift + alufBits
	f1Shift    = bsShift + bsBits
	f2Shift    = f1Shift + f1Bits
	loadTShift = f2Shift + f2Bits
	loadLShift = loadTShift + loadTBit
	nextShift  = loadLShift + loadLBit
)

func field(w RawWord, shift, bits uint) uint32 {
	mask := uint32(1)<<bits - 1
	return uint32(w>>shift) & mask
}

// Encode packs the given raw fields back into a RawWord. It is the
// inverse of the raw-field extraction inside Predecode, used by tests
// to assert the round-trip property and by tooling that assembles
// microcode.
func Encode(rsel, aluf, bs, f1, f2 uint32, loadT, loadL bool, next uint32) RawWord {
	var w uint32
	w |= (rsel & (1<<rselBits - 1)) << rselShift
	w |= (aluf & (1<<alufBits - 1)) << alufShift
	w |= (bs & (1<<bsBits - 1)) << bsShift
	w |= (f1 & (1<<f1Bits - 1)) << f1Shift
	w |= (f2 & (1<<f2Bits - 1)) << f2Shift
	if loadT {
		w |= 1 << loadTShift
	}
	if loadL {
		w |= 1 << loadLShift
	}
	w |= (next & (1<<nextBits - 1)) << nextShift
	return RawWord(w)
}

// BusSource is the resolved (task-aware) meaning of the BS field.
type BusSource uint8

const (
	BSNone BusSource = iota
	BSReadR
	BSLoadR
	BSReadMD
	BSReadMouse
	BSReadDisp
	BSRAMReadS      // ram-task only: S[bank,rsel]; the engine reads RSEL 0 as 0 (M is not modeled)
	BSRAMLoadS      // ram-task only: drives the 0xBEEF sentinel
	BSEtherEIDFCT   // ethernet task only
	BSDiskReadKStat // disk tasks only
	BSDiskReadKData // disk tasks only
)

// rawBS is the 3-bit field value before task resolution.
const (
	rawBSNone      = 0
	rawBSReadR     = 1
	rawBSLoadR     = 2
	rawBSReadMD    = 3
	rawBSReadMouse = 4
	rawBSReadDisp  = 5
	rawBSSlotA     = 6
	rawBSSlotB     = 7
)

// F1Func is the resolved meaning of the F1 field.
type F1Func uint8

const (
	F1None F1Func = iota
	F1Constant
	F1LLSH1
	F1LRSH1
	F1LLCY8
	F1LoadMAR
	F1Task
	F1Block
	F1RAMSWMode
	F1RAMWrtRAM
	F1RAMRdRAM
	F1RAMLoadSRB
	F1EmuLoadRMR
	F1EmuLoadESRB
	F1EmuRSNF
	F1EmuStartF
)

// F1SpecificThresh is the raw code at and above which an F1 value is
// task-specific. Predecode and Step do not consult it, and no F1 code
// is treated as fatal: codes without a meaning for the executing task
// resolve to F1None.
const F1SpecificThresh = 8

// F2Func is the resolved meaning of the F2 field.
type F2Func uint8

const (
	F2None F2Func = iota
	F2Constant
	F2BusEQ0
	F2ShLt0
	F2ShEq0
	F2Bus
	F2ALUCY
	F2StoreMD
	F2EmuMagic
	F2EmuACDest
	F2EmuBusOdd
	F2EmuLoadDNS
	F2EmuLoadIR
	F2EmuIDisp
	F2EmuACSource
)

// F2SpecificThresh mirrors F1SpecificThresh for the F2 field.
const F2SpecificThresh = 8

// ALUFunc is the ALU operation selected by the ALUF field.
type ALUFunc uint8

const (
	ALUBus ALUFunc = iota
	ALUT
	ALUBusOrT
	ALUBusAndT
	ALUBusAndTWB // identical result to ALUBusAndT, also requests T writeback
	ALUBusXorT
	ALUBusPlus1
	ALUBusMinus1
	ALUBusPlusT
	ALUBusMinusT
	ALUBusMinusTMinus1
	ALUBusPlusTPlus1
	ALUBusPlusSkip
	ALUBusAndNotT
)

// Predecoded is the fully resolved view of one microinstruction,
// produced once per step and never recomputed inside the cycle.
type Predecoded struct {
	Raw RawWord

	RSEL uint32
	ALUF ALUFunc
	BS   BusSource
	F1   F1Func
	F2   F2Func

	LoadT bool
	LoadL bool
	Next  uint32

	// LoadTFromALU is derived, not a stored bit: it is forced true when
	// ALUF requests an explicit T writeback (ALUBusAndTWB), otherwise T
	// is loaded from the bus when LoadT is set.
	LoadTFromALU bool

	// UseConstant is set when F1 or F2 selects the constant ROM as the
	// exclusive bus source (F1Constant / F2Constant), bypassing every
	// other BS decode.
	UseConstant bool

	// RAMTask is set when the executing task may address the banked S
	// registers / writable microcode RAM.
	RAMTask bool

	// BSUseCROM is true whenever UseConstant is false. Engine.readBus
	// does not consult it: the BS-selected source drives the bus
	// without being ANDed with the constant ROM.
	BSUseCROM bool

	// ConstAddr is valid when UseConstant or BSUseCROM is set.
	ConstAddr uint32

	Task Task
}

// ramCapableTasks lists the tasks for which Predecode sets RAMTask.
// For them, a BS slot that has no task-specific device meaning decodes
// as BSRAMReadS/BSRAMLoadS. F1RAM* codes decode for every task.
var ramCapableTasks = map[Task]bool{
	TaskEmulator:   true,
	TaskDiskSector: true,
	TaskDiskWord:   true,
	TaskEthernet:   true,
}

// Predecode splits a 32-bit microinstruction into its named fields and
// resolves the per-task BS/F1/F2 overloads.
func Predecode(w RawWord, task Task) Predecoded {
	rsel := field(w, rselShift, rselBits)
	aluf := ALUFunc(field(w, alufShift, alufBits))
	rawBS := field(w, bsShift, bsBits)
	rawF1 := field(w, f1Shift, f1Bits)
	rawF2 := field(w, f2Shift, f2Bits)
	loadT := field(w, loadTShift, loadTBit) != 0
	loadL := field(w, loadLShift, loadLBit) != 0
	next := field(w, nextShift, nextBits)

	pd := Predecoded{
		Raw:   w,
		RSEL:  rsel,
		ALUF:  aluf,
		LoadT: loadT,
		LoadL: loadL,
		Next:  next,
		Task:  task,
	}

	pd.RAMTask = ramCapableTasks[task]
	pd.F1 = resolveF1(rawF1, task)
	pd.F2 = resolveF2(rawF2, task)
	pd.BS = resolveBS(rawBS, task, pd.RAMTask)

	pd.UseConstant = pd.F1 == F1Constant || pd.F2 == F2Constant
	pd.BSUseCROM = !pd.UseConstant
	if pd.UseConstant || pd.BSUseCROM {
		pd.ConstAddr = (rsel << 3) | rawBS
	}

	pd.LoadTFromALU = aluf == ALUBusAndTWB
	if pd.LoadTFromALU {
		pd.LoadT = true
	}

	return pd
}

func resolveBS(raw uint32, task Task, ramTask bool) BusSource {
	switch raw {
	case rawBSNone:
		return BSNone
	case rawBSReadR:
		return BSReadR
	case rawBSLoadR:
		return BSLoadR
	case rawBSReadMD:
		return BSReadMD
	case rawBSReadMouse:
		return BSReadMouse
	case rawBSReadDisp:
		return BSReadDisp
	case rawBSSlotA:
		switch {
		case task == TaskEthernet:
			return BSEtherEIDFCT
		case task == TaskDiskSector || task == TaskDiskWord:
			return BSDiskReadKStat
		case ramTask:
			return BSRAMReadS
		default:
			return BSNone
		}
	case rawBSSlotB:
		switch {
		case task == TaskDiskSector || task == TaskDiskWord:
			return BSDiskReadKData
		case ramTask:
			return BSRAMLoadS
		default:
			return BSNone
		}
	default:
		return BSNone
	}
}

func resolveF1(raw uint32, task Task) F1Func {
	switch raw {
	case 0:
		return F1None
	case 1:
		return F1Constant
	case 2:
		return F1LLSH1
	case 3:
		return F1LRSH1
	case 4:
		return F1LLCY8
	case 5:
		return F1LoadMAR
	case 6:
		return F1Task
	case 7:
		return F1Block
	case 8:
		return F1RAMSWMode
	case 9:
		return F1RAMWrtRAM
	case 10:
		return F1RAMRdRAM
	case 11:
		return F1RAMLoadSRB
	}
	if task == TaskEmulator {
		switch raw {
		case 12:
			return F1EmuLoadRMR
		case 13:
			return F1EmuLoadESRB
		case 14:
			return F1EmuRSNF
		case 15:
			return F1EmuStartF
		}
	}
	return F1None
}

func resolveF2(raw uint32, task Task) F2Func {
	switch raw {
	case 0:
		return F2None
	case 1:
		return F2Constant
	case 2:
		return F2BusEQ0
	case 3:
		return F2ShLt0
	case 4:
		return F2ShEq0
	case 5:
		return F2Bus
	case 6:
		return F2ALUCY
	case 7:
		return F2StoreMD
	}
	if task == TaskEmulator {
		switch raw {
		case 8:
			return F2EmuMagic
		case 9:
			return F2EmuACDest
		case 10:
			return F2EmuBusOdd
		case 11:
			return F2EmuLoadDNS
		case 12:
			return F2EmuLoadIR
		case 13:
			return F2EmuIDisp
		case 14:
			return F2EmuACSource
		}
	}
	return F2None
}
