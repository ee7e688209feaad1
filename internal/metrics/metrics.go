// Package metrics tracks operational statistics for a reactor: datagram
// counts, receive errors, wake-up coalescing, and live registrations.
package metrics

import "sync/atomic"

// Metrics tracks reactor-wide counters. All fields are safe for concurrent
// use; the loop thread updates the datagram, error, task and registration
// counters, while Wakeups is updated by the goroutine whose Register,
// cancel or Execute call woke the loop.
type Metrics struct {
	DatagramsReceived atomic.Uint64 // total datagrams delivered to readers
	BytesReceived     atomic.Uint64 // total payload bytes delivered to readers
	ReceiveErrors     atomic.Uint64 // recvmmsg calls that returned an error
	Wakeups           atomic.Uint64 // notifications written to the wake-up handle
	TasksRun          atomic.Uint64 // submitted tasks drained and executed
	Registrations     atomic.Uint64 // successful Register calls
	Unregistrations   atomic.Uint64 // completed unregistrations
	ActiveSlots       atomic.Int64  // live slots right now (registrations - unregistrations)
}

// New returns a zeroed Metrics instance.
func New() *Metrics {
	return &Metrics{}
}

// ObserveDatagram records one datagram delivered to a reader.
func (m *Metrics) ObserveDatagram(bytes int) {
	m.DatagramsReceived.Add(1)
	m.BytesReceived.Add(uint64(bytes))
}

// ObserveReceiveError records a failed vectored-receive call.
func (m *Metrics) ObserveReceiveError() {
	m.ReceiveErrors.Add(1)
}

// ObserveWakeup records one notification written to the cross-thread
// wake-up handle.
func (m *Metrics) ObserveWakeup() {
	m.Wakeups.Add(1)
}

// ObserveTaskRun records one submitted task drained and executed.
func (m *Metrics) ObserveTaskRun() {
	m.TasksRun.Add(1)
}

// ObserveRegistered records a successful registration.
func (m *Metrics) ObserveRegistered() {
	m.Registrations.Add(1)
	m.ActiveSlots.Add(1)
}

// ObserveUnregistered records a completed unregistration. The reactor
// calls it just before the reader's onRemove fires.
func (m *Metrics) ObserveUnregistered() {
	m.Unregistrations.Add(1)
	m.ActiveSlots.Add(-1)
}

// Snapshot is a point-in-time, non-atomic copy of Metrics suitable for
// logging or display.
type Snapshot struct {
	DatagramsReceived uint64
	BytesReceived     uint64
	ReceiveErrors     uint64
	Wakeups           uint64
	TasksRun          uint64
	Registrations     uint64
	Unregistrations   uint64
	ActiveSlots       int64
}

// Snapshot returns a consistent-enough point-in-time copy of the counters.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		DatagramsReceived: m.DatagramsReceived.Load(),
		BytesReceived:     m.BytesReceived.Load(),
		ReceiveErrors:     m.ReceiveErrors.Load(),
		Wakeups:           m.Wakeups.Load(),
		TasksRun:          m.TasksRun.Load(),
		Registrations:     m.Registrations.Load(),
		Unregistrations:   m.Unregistrations.Load(),
		ActiveSlots:       m.ActiveSlots.Load(),
	}
}
