package udpreactor

import "github.com/ravendale/go-udpreactor/internal/metrics"

// Metrics tracks reactor-wide operational counters: datagrams and bytes
// delivered, receive errors, wake-up and task-run counts, and live
// registration bookkeeping. All fields are safe for concurrent use.
type Metrics = metrics.Metrics

// Snapshot is a point-in-time, non-atomic copy of Metrics suitable for
// logging or display.
type Snapshot = metrics.Snapshot

// NewMetrics returns a zeroed Metrics instance, for callers who want to
// hold a reference before a Reactor exists (e.g. to pass into Params).
func NewMetrics() *Metrics { return metrics.New() }
