package mce

// Task identifies one of the Alto's 16 cooperatively scheduled
// microcode execution contexts. All tasks share R, S, L, M, T, the
// bus, and main memory; F1=TASK requests a switch to the
// highest-priority pending task.
//
// Numbering follows the Alto hardware's fixed task-priority assignment:
// lower numbers win ties in F1=TASK.
type Task uint8

const NumTasks = 16

const (
	TaskEmulator          Task = 0
	taskUnused1           Task = 1
	TaskDiskSector        Task = 2
	taskUnused3           Task = 3
	TaskEthernet          Task = 4
	taskUnused5           Task = 5
	TaskMemoryRefresh     Task = 6
	TaskDisplayWord       Task = 7
	TaskCursor            Task = 8
	TaskDisplayHorizontal Task = 9
	TaskDisplayVertical   Task = 10
	TaskParity            Task = 11
	TaskDiskWord          Task = 12
	taskUnused13          Task = 13
	taskUnused14          Task = 14
	taskUnused15          Task = 15
)

var taskNames = [NumTasks]string{
	"EMULATOR", "T1", "DISK_SECTOR", "T3", "ETHERNET", "T5",
	"MEMORY_REFRESH", "DISPLAY_WORD", "CURSOR", "DISPLAY_HORIZONTAL",
	"DISPLAY_VERTICAL", "PARITY", "DISK_WORD", "T13", "T14", "T15",
}

// String renders the task's microcode name, e.g. "EMULATOR".
func (t Task) String() string {
	if int(t) < len(taskNames) {
		return taskNames[t]
	}
	return "UNKNOWN"
}

// SystemType selects timing/addressing details that differ between
// Alto I and Alto II: memory bank pairing, and whether a simultaneous
// MAR load + MD store is illegal or merely suppressed.
type SystemType int

const (
	AltoII SystemType = iota
	AltoI
	AltoIIWith3KRAM
)

// has3KRAM reports whether this system type supports per-task S
// register banks (LOAD_SRB/LOAD_ESRB are otherwise forced to bank 0).
func (s SystemType) has3KRAM() bool {
	return s == AltoIIWith3KRAM
}
