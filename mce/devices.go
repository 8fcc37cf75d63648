package mce

// Devices is the engine's collaborator contract for every peripheral
// that a task's microcode can reach: the mouse, the display FIFO, the
// disk controller, and the ethernet controller. The engine never holds
// a concrete device type; it drives Devices exclusively so a headless
// test harness, a UDP-backed remote front end, or a full GUI can all
// supply the same interface.
type Devices interface {
	// MousePoll returns the current quadrature/button state read by
	// BSReadMouse.
	MousePoll() uint16

	// DisplayPoll returns the next display FIFO word read by
	// BSReadDisp, and whether the FIFO had data available.
	DisplayPoll() (word uint16, ok bool)

	// DiskStatus and DiskData back BSDiskReadKStat/BSDiskReadKData for
	// whichever disk task (sector or word) is executing.
	DiskStatus(task Task) uint16
	DiskData(task Task) uint16

	// DiskCommand delivers a disk control word (strobe, command, etc.).
	// Step never calls it.
	DiskCommand(task Task, word uint16)

	// EthernetAddress returns the host's ethernet station address, read
	// by BSEtherEIDFCT.
	EthernetAddress() uint16

	// EthernetInputFIFO and EthernetOutputFIFO move one word at a time
	// through the controller's hardware FIFOs. Step never calls them.
	EthernetInputFIFO() (word uint16, ok bool)
	EthernetOutputFIFO(word uint16)

	// WakeupPending reports which tasks currently have a device-raised
	// wakeup. The engine reads it only when F1=TASK executes, ORs in
	// the STARTF wakeups it tracks itself, and masks out BLOCKed tasks
	// and tasks held in reset by RMR before picking ntask.
	WakeupPending() uint16
}

// NullDevices is a Devices implementation that answers every query
// with a quiescent default and discards every write. It is useful for
// exercising the microengine core in isolation (e.g. disassembler and
// ALU/shifter unit tests) without constructing a disk or ethernet
// backend.
type NullDevices struct{}

func (NullDevices) MousePoll() uint16                  { return 0 }
func (NullDevices) DisplayPoll() (uint16, bool)        { return 0, false }
func (NullDevices) DiskStatus(Task) uint16             { return 0 }
func (NullDevices) DiskData(Task) uint16               { return 0 }
func (NullDevices) DiskCommand(Task, uint16)           {}
func (NullDevices) EthernetAddress() uint16            { return 0 }
func (NullDevices) EthernetInputFIFO() (uint16, bool)  { return 0, false }
func (NullDevices) EthernetOutputFIFO(uint16)          {}
func (NullDevices) WakeupPending() uint16              { return 0 }

var _ Devices = NullDevices{}
