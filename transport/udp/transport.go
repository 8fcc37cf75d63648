// Package udp implements the Alto's length-framed UDP broadcast
// transport: a wire encoding of (count, words...) frames, a receive
// ring buffer fed by a background goroutine, and a transmit scratch
// buffer. It is the only non-stdlib-net-backed transport in this
// module because the stdlib net package cannot request a 10
// microsecond socket receive timeout; golang.org/x/sys/unix exposes
// SO_RCVTIMEO directly.
package udp

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/petersieg/palo/errs"
	"github.com/petersieg/palo/logger"
)

// Port is the Alto ethernet broadcast port.
const Port = 42424

// PacketSize is the maximum UDP payload this transport ever sends or
// receives, in bytes.
const PacketSize = 1024

// RingBufferSize is the capacity of the receive ring, in bytes.
const RingBufferSize = 8192

// Transport is one UDP broadcast endpoint. The zero value is not
// usable; construct one with New.
type Transport struct {
	fd int

	txBuf []byte
	txPos int

	rxBuf []byte
	rxPos int
	rxLen int

	mu        sync.Mutex
	ring      []byte
	ringStart int
	ringEnd   int
	rxEnable  bool
	running   bool

	pktBuf []byte

	wg sync.WaitGroup
}

// New creates a UDP socket bound to Port on all interfaces, with
// SO_REUSEADDR and SO_BROADCAST set and a 10 microsecond receive
// timeout, then starts the background receive goroutine.
func New() (*Transport, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, unix.IPPROTO_UDP)
	if err != nil {
		return nil, errs.Errorf(errs.TransportError, "udp: socket: %v", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, errs.Errorf(errs.TransportError, "udp: SO_REUSEADDR: %v", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_BROADCAST, 1); err != nil {
		unix.Close(fd)
		return nil, errs.Errorf(errs.TransportError, "udp: SO_BROADCAST: %v", err)
	}
	tv := unix.Timeval{Sec: 0, Usec: 10}
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		unix.Close(fd)
		return nil, errs.Errorf(errs.TransportError, "udp: SO_RCVTIMEO: %v", err)
	}

	addr := &unix.SockaddrInet4{Port: Port}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, errs.Errorf(errs.TransportError, "udp: bind port %d: %v", Port, err)
	}

	t := &Transport{
		fd:       fd,
		txBuf:    make([]byte, PacketSize),
		rxBuf:    make([]byte, PacketSize),
		ring:     make([]byte, RingBufferSize),
		pktBuf:   make([]byte, PacketSize),
		rxEnable: true,
		running:  true,
	}

	t.wg.Add(1)
	go t.receiveLoop()

	logger.Logf("udp", "transport listening on port %d", Port)
	return t, nil
}

// Close stops the receive goroutine and releases the socket. It
// clears running under the lock, then waits for the goroutine to
// finish before closing the file descriptor, matching the
// destroy-then-join order a cooperative shutdown requires.
func (t *Transport) Close() error {
	t.mu.Lock()
	t.running = false
	t.mu.Unlock()

	t.wg.Wait()

	if err := unix.Close(t.fd); err != nil {
		return errs.Errorf(errs.TransportError, "udp: close: %v", err)
	}
	return nil
}

// ClearTX resets the transmit scratch buffer.
func (t *Transport) ClearTX() {
	t.txPos = 0
}

// AppendTX appends one word to the packet under construction,
// reserving the first two bytes for the length prefix on the first
// call.
func (t *Transport) AppendTX(word uint16) error {
	if t.txPos == 0 {
		t.txPos = 2
		t.txBuf[0] = 0
		t.txBuf[1] = 0
	}
	if t.txPos+2 > PacketSize {
		return errs.New(errs.TransportError, "udp: append_tx: buffer overflow")
	}
	t.txBuf[t.txPos] = byte(word >> 8)
	t.txBuf[t.txPos+1] = byte(word)
	t.txPos += 2
	return nil
}

// Send fills in the length prefix and broadcasts the packet built by
// AppendTX, then resets the transmit position.
func (t *Transport) Send() error {
	count := uint16((t.txPos >> 1) - 1)
	t.txBuf[0] = byte(count >> 8)
	t.txBuf[1] = byte(count)

	dst := &unix.SockaddrInet4{Port: Port, Addr: [4]byte{255, 255, 255, 255}}
	if err := unix.Sendto(t.fd, t.txBuf[:t.txPos], 0, dst); err != nil {
		return errs.Errorf(errs.TransportError, "udp: sendto: %v", err)
	}
	t.txPos = 0
	return nil
}

// EnableRX toggles whether incoming packets are accepted. Disabling
// also discards whatever is currently queued in the ring.
func (t *Transport) EnableRX(enable bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !enable {
		t.ringStart = 0
		t.ringEnd = 0
	}
	t.rxEnable = enable
}

// ClearRX resets the current received-packet cursor.
func (t *Transport) ClearRX() {
	t.rxPos = 0
	t.rxLen = 0
}

// GetRXData returns the next word of the current received packet, or
// zero if the packet is exhausted.
func (t *Transport) GetRXData() uint16 {
	if t.rxPos >= t.rxLen {
		return 0
	}
	if t.rxPos == 0 {
		t.rxPos = 2
	}
	word := uint16(t.rxBuf[t.rxPos])<<8 | uint16(t.rxBuf[t.rxPos+1])
	t.rxPos += 2
	return word
}

// HasRXData reports how many bytes remain in the current received
// packet.
func (t *Transport) HasRXData() int {
	if t.rxPos >= t.rxLen {
		return 0
	}
	return t.rxLen - t.rxPos
}

// Receive pulls the oldest complete frame out of the ring buffer into
// the rx cursor, if one isn't already in progress. It returns the
// packet length in bytes, length prefix included (0 if the ring was
// empty).
func (t *Transport) Receive() (int, error) {
	if t.rxLen != 0 {
		return t.rxLen, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ringEnd <= t.ringStart {
		t.rxPos = 0
		t.rxLen = 0
		return 0, nil
	}

	wordCount := int(t.ring[t.ringStart%RingBufferSize])<<8 | int(t.ring[(t.ringStart+1)%RingBufferSize])
	length := 2 * (wordCount + 2)

	if t.ringStart+length > t.ringEnd {
		return 0, errs.New(errs.TransportError, "udp: receive: invalid packet length")
	}

	for i := 0; i < length; i++ {
		t.rxBuf[i] = t.ring[(t.ringStart+i)%RingBufferSize]
	}
	t.ringStart += length

	// The trailing copy of the word count is ring framing, not packet
	// data: the rx cursor covers only the prefix and the words.
	t.rxPos = 0
	t.rxLen = length - 2
	return t.rxLen, nil
}

func (t *Transport) freeSpace() int {
	return RingBufferSize - (t.ringEnd - t.ringStart)
}

func (t *Transport) isRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}
