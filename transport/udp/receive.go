package udp

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/petersieg/palo/logger"
)

// receiveLoop is the background goroutine started by New. It polls
// the socket with the short SO_RCVTIMEO set at creation, validates
// each datagram's length prefix, and appends well-formed frames to the
// ring buffer. Packets arriving while rx is disabled are dropped.
// Oversized or odd-length packets abort the loop, matching the fatal
// treatment a corrupt wire frame gets in the reference transport.
func (t *Transport) receiveLoop() {
	defer t.wg.Done()

	for {
		t.mu.Lock()
		running := t.running
		free := t.freeSpace()
		t.mu.Unlock()

		if !running {
			return
		}

		if free < PacketSize {
			time.Sleep(time.Millisecond)
			continue
		}

		n, _, err := unix.Recvfrom(t.fd, t.pktBuf[:PacketSize-2], 0)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				continue
			}
			logger.Warn("udp", "recvfrom: "+err.Error())
			continue
		}
		if n <= 0 {
			continue
		}

		if n%2 != 0 {
			logger.Error("udp", "received odd-length packet, aborting receive loop")
			return
		}

		wordCount := int(t.pktBuf[0])<<8 | int(t.pktBuf[1])
		packetLen := 2 + wordCount*2
		if packetLen > n {
			logger.Error("udp", "received packet shorter than its length prefix claims, aborting receive loop")
			return
		}

		t.appendToRing(wordCount, t.pktBuf[:packetLen])
	}
}

// appendToRing stores one validated frame (length prefix repeated fore
// and aft, matching trp_receive's "extra prefix and suffix" framing)
// into the ring buffer under the lock. Frames that no longer fit, or
// that arrive while rx is disabled, are dropped silently.
func (t *Transport) appendToRing(wordCount int, frame []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.rxEnable {
		return
	}

	total := 2 * (wordCount + 2)
	if t.freeSpace() < total {
		return
	}

	write := func(b byte) {
		t.ring[t.ringEnd%RingBufferSize] = b
		t.ringEnd++
	}
	write(byte(wordCount >> 8))
	write(byte(wordCount))
	for _, b := range frame[2:] {
		write(b)
	}
	write(byte(wordCount >> 8))
	write(byte(wordCount))
}
