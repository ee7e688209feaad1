// Package epoll provides the thin kernel-facing layer the reactor core
// builds on: a readiness-wait facility (epoll), a cross-thread wake-up
// handle (eventfd), and a vectored datagram receive (recvmmsg). It plays
// the same role in this module that internal/uring played for the
// teacher's URING_CMD plumbing — a narrow, syscall-adjacent interface with
// exactly one production implementation, kept separate from the pure-Go
// bookkeeping (slot table, registry, submission queue) so that bookkeeping
// can be tested without a live kernel facility.
package epoll

import "errors"

// ErrNotSupported is returned by the stub implementation on platforms
// without epoll/eventfd/recvmmsg (anything but Linux).
var ErrNotSupported = errors.New("epoll: not supported on this platform")

// Event is the reactor-relevant projection of one readiness-wait result:
// just the slot index the kernel handed back as user-data.
type Event struct {
	SlotIndex int32
}

// Datagram is one datagram copied into a pooled receive buffer by a
// ReceiveBatch call. Buf aliases pool-owned storage and is only valid
// until the next ReceiveBatch call for the same Poller.
type Datagram struct {
	Buf []byte
}

// Poller is the kernel-facing facility the reactor core drives. One
// Poller backs one reactor's NRS.
type Poller interface {
	// Close releases the epoll fd, the eventfd, and the receive-buffer
	// pool. Safe to call once; the Poller must not be used afterward.
	Close() error

	// Add registers fd for readability notifications, tagging the
	// registration with slotIndex as user-data (EPOLL_CTL_ADD).
	Add(fd int, slotIndex int32) error

	// Remove deregisters fd (EPOLL_CTL_DEL). No-op-safe errors (ENOENT)
	// are surfaced so the caller can decide whether to log and continue.
	Remove(fd int) error

	// WakeFD returns the eventfd descriptor, so the reactor core can give
	// it its own slot and register it exactly like any other fd.
	WakeFD() int

	// Notify writes one notification to the wake-up handle. Multiple
	// Notify calls between two ConsumeNotification calls coalesce into a
	// single readable event, by construction of eventfd semantics.
	Notify() error

	// ConsumeNotification drains the wake-up handle's counter back to
	// zero, consuming every notification coalesced since the last read.
	ConsumeNotification() error

	// Wait blocks with an indefinite timeout until at least one
	// registered fd is ready, then copies up to len(out) ready slot
	// indices into out and returns how many were written. A transient
	// interrupt (EINTR) is treated as a zero-event batch and returns
	// (0, nil) rather than an error.
	Wait(out []Event) (int, error)

	// ReceiveBatch performs one vectored-receive against fd, returning up
	// to the pool's configured batch size of datagrams. Each Datagram.Buf
	// aliases pool storage valid only until the next ReceiveBatch call.
	ReceiveBatch(fd int) ([]Datagram, error)
}

// Config configures a Poller's fixed-size resources.
type Config struct {
	MaxSelectedEvents   int
	MaxDatagramsPerRead int
	ReadBufferBytes     int
}
