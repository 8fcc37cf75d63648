package mce

import "github.com/petersieg/palo/errs"

// MemoryTop is the highest address below the Alto's memory-mapped I/O
// region. Memory does not consult it: every address outside the XM
// window reads and writes plain bank storage.
const MemoryTop = 0xFDFF

// XMBankStart is the first address of the XM (extended memory)
// bank-register window, which holds one register per task (NumTasks
// addresses). Each register packs both the task's normal-access and
// its extended-access bank select.
const XMBankStart = 0xFFE0

// numMemoryBanks is the number of 64K word banks of main memory the
// Alto II ships with.
const numMemoryBanks = 4

// Memory is the Alto's main store: four 64K banks plus the per-task
// bank-select registers that make up the XM window, and the dual-word
// memory cycle state machine that staggers every access over two
// microinstructions.
type Memory struct {
	banks [numMemoryBanks][]uint16

	// xmBanks[task] packs the extended bank in bits 0-1 and the normal
	// bank in bits 2-3, matching the real XM register's bit layout.
	xmBanks [NumTasks]uint16

	sys SystemType

	// cycle is the dual-word memory cycle state: memCycleIdle when no
	// access is in flight, memCycleDone once both words of the pair
	// have been transferred, and some in-between value while the cycle
	// is live.
	cycle     uint16
	cycleTask Task
	cycleAddr uint16
	cycleExt  bool

	// memLow/memHigh are the pair's two words, snapshotted once at
	// BeginCycle time (i.e. at F1=LOAD_MAR) rather than re-read live,
	// matching the real hardware's pre-fetch of the addressed pair.
	memLow  uint16
	memHigh uint16

	which int // 0 = first of pair, 1 = second
}

// memCycleIdle and memCycleDone are the two named values of the
// mem_cycle state machine: no access in flight, and the pair fully
// transferred. Anything in between is a live, counting cycle.
const (
	memCycleIdle = 0
	memCycleDone = 0xFFFF
)

// NewMemory allocates a fully-populated Memory for the given system
// type. Every bank starts zeroed; callers load a disk image or RAM
// test pattern afterward.
func NewMemory(sys SystemType) *Memory {
	m := &Memory{sys: sys}
	for i := range m.banks {
		m.banks[i] = make([]uint16, 0x10000)
	}
	return m
}

func (m *Memory) bankFor(task Task, extended bool) int {
	xm := m.xmBanks[task]
	var sel uint16
	if extended {
		sel = xm & 0x3
	} else {
		sel = (xm >> 2) & 0x3
	}
	return int(sel)
}

// ReadXM reads one of the per-task bank-select registers, addr being
// anywhere in the XM window (0xFFE0-0xFFEF). The low 4 bits of the
// window address select the task.
func (m *Memory) ReadXM(addr uint16) uint16 {
	task := Task(addr & 0xF)
	return 0xFFF0 | m.xmBanks[task]
}

// WriteXM updates a task's bank-select register.
func (m *Memory) WriteXM(addr uint16, value uint16) {
	task := Task(addr & 0xF)
	m.xmBanks[task] = value & 0xF
}

// pairAddr returns the sibling address of a dual-word memory access.
// Alto I pairs words by flipping the low address bit; Alto II pairs by
// OR-ing it, so on Alto II an even address pairs with addr+1 and an
// odd address pairs with itself.
func pairAddr(sys SystemType, addr uint16) uint16 {
	if sys == AltoI {
		return addr ^ 1
	}
	return addr | 1
}

// BeginCycle starts a dual-word memory cycle for the given task and
// address, as requested by F1LoadMAR in the engine's pipeline.
// extended selects the task's extended-access bank. The addressed
// pair is read and snapshotted immediately into memLow/memHigh;
// ReadWord and BSReadMD hand back the snapshot rather than re-reading
// live memory, since the bank mapping may change before the second
// word of the pair is consumed.
func (m *Memory) BeginCycle(task Task, addr uint16, extended bool) {
	m.cycleTask = task
	m.cycleAddr = addr
	m.cycleExt = extended
	m.which = 0

	bank := m.bankFor(task, extended)
	m.memLow = m.load(bank, addr)
	m.memHigh = m.load(bank, pairAddr(m.sys, addr))
	m.cycle = 1
}

// ReadWord returns the next word of the active cycle (the snapshotted
// addressed word on the first call, its snapshotted pair partner on
// the second) and advances the cycle. Calling ReadWord with no active
// cycle is a programming error in the engine and returns
// errs.MicrocodeFatal.
func (m *Memory) ReadWord() (uint16, error) {
	if m.cycle == memCycleIdle {
		return 0, errs.New(errs.MicrocodeFatal, "memory: read with no active cycle")
	}
	word := m.memLow
	if m.which == 1 {
		word = m.memHigh
	}
	m.advance()
	return word, nil
}

// WriteWord stores the next word of the active cycle and advances it.
func (m *Memory) WriteWord(value uint16) error {
	if m.cycle == memCycleIdle {
		return errs.New(errs.MicrocodeFatal, "memory: write with no active cycle")
	}
	addr := m.cycleAddr
	if m.which == 1 {
		addr = pairAddr(m.sys, addr)
	}
	bank := m.bankFor(m.cycleTask, m.cycleExt)
	m.store(bank, addr, value)
	m.advance()
	return nil
}

func (m *Memory) advance() {
	m.which++
	m.cycle++
	if m.which >= 2 {
		m.cycle = memCycleDone
		m.which = 0
	}
}

// CycleActive reports whether a dual-word cycle is still in progress
// (i.e. the pair has not yet been fully transferred).
func (m *Memory) CycleActive() bool {
	return m.cycle != memCycleIdle && m.cycle != memCycleDone
}

func (m *Memory) load(bank int, addr uint16) uint16 {
	if addr >= XMBankStart && addr < XMBankStart+NumTasks {
		return m.ReadXM(addr)
	}
	return m.banks[bank][addr]
}

func (m *Memory) store(bank int, addr uint16, value uint16) {
	if addr >= XMBankStart && addr < XMBankStart+NumTasks {
		m.WriteXM(addr, value)
		return
	}
	m.banks[bank][addr] = value
}

// LoadBank overwrites one main-memory bank wholesale, used to seed RAM
// with a saved core image at startup.
func (m *Memory) LoadBank(bank int, words []uint16) error {
	if bank < 0 || bank >= numMemoryBanks {
		return errs.Errorf(errs.InvalidImage, "memory: invalid bank %d", bank)
	}
	n := copy(m.banks[bank], words)
	if n < len(words) {
		return errs.Errorf(errs.InvalidImage, "memory: image larger than bank (%d words)", len(words))
	}
	return nil
}
