// Package reactor implements the epoll-based UDP reactor core: the
// readiness-wait/dispatch state machine, the slot table and registration
// lifecycle, the submission-queue/wake-up protocol, and orderly shutdown.
// It is deliberately the only package in this module allowed to touch the
// poller, slot table, and registry directly: those types never leave this
// package, so callers only ever see Register/Execute/Start/Close, and
// every mutation of reactor state happens on the loop thread.
package reactor

import (
	"github.com/ravendale/go-udpreactor/internal/epoll"
	"github.com/ravendale/go-udpreactor/internal/interfaces"
)

// handlerKind is the tag of the per-slot handler sum type: modeled as an
// explicit enum plus a narrow invoke method rather than dynamic dispatch
// through an interface with only two real implementations.
type handlerKind int

const (
	handlerDatagram handlerKind = iota
	handlerWakeup
)

// slotHandler is invoked by the loop driver for every ready event. Exactly
// one of the two variants is populated, selected by kind.
type slotHandler struct {
	kind   handlerKind
	reader interfaces.Reader // populated when kind == handlerDatagram
}

// invoke dispatches to the right variant. fd is the slot's socket; it is
// only meaningful for the datagram variant.
func (h slotHandler) invoke(l *Loop, fd int) interfaces.Action {
	switch h.kind {
	case handlerWakeup:
		l.drainSubmissions()
		return interfaces.Continue
	default:
		return l.dispatchDatagram(fd, h.reader)
	}
}

// slot is one per-registration record. index is permanent for the life of
// the reactor once assigned by claimSlot; fd and reader are only valid
// while the slot is live.
//
// There is no kernel-returned allocation to separately guard here as
// there would be for a submission-queue entry — the native registration
// IS the EPOLL_CTL_ADD call itself, which either succeeded (the slot is
// live) or never happened (the slot is free). live plays both roles.
type slot struct {
	index   int32
	fd      int
	handler slotHandler
	live    bool
}

// nativeEvent decodes the epoll.Event the kernel handed back into the
// slot index the reactor stored as user-data.
func nativeEvent(e epoll.Event) int32 {
	return e.SlotIndex
}
