// Package echoreader provides a demonstration udpreactor.Reader: it
// echoes every received datagram back to its writer and keeps sharded
// byte/count statistics, the way a production backend would track
// per-region statistics under concurrent access from many queues.
package echoreader

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/ravendale/go-udpreactor"
)

// shardCount is the number of stat shards. A connected UDP socket only
// ever has one reader goroutine driving it (the reactor's own loop
// thread), so sharding here buys nothing for correctness; it exists so
// Stats() can be read concurrently without contending with OnRead, the
// same tradeoff a sharded in-memory store makes for its hot path.
const shardCount = 16

type shard struct {
	mu    sync.Mutex
	count uint64
	bytes uint64
}

// Reader echoes every datagram it receives back to w and accumulates
// per-shard statistics keyed by a rotating index, so Stats can be read
// without stalling behind the hot path.
type Reader struct {
	w     io.Writer
	next  atomic.Uint64
	total atomic.Uint64
	shards [shardCount]shard

	// MaxEchoes caps how many datagrams this reader will echo before
	// requesting removal; zero means unlimited.
	MaxEchoes uint64
}

// New returns a Reader that echoes datagrams to w.
func New(w io.Writer) *Reader {
	return &Reader{w: w}
}

// OnRead implements udpreactor.Reader: it writes buf back to the
// configured writer and records the datagram in a shard chosen by
// round-robin, then requests removal once MaxEchoes is reached.
func (r *Reader) OnRead(buf []byte) udpreactor.Action {
	idx := r.next.Add(1) % shardCount
	s := &r.shards[idx]

	s.mu.Lock()
	s.count++
	s.bytes += uint64(len(buf))
	s.mu.Unlock()

	if _, err := r.w.Write(buf); err != nil {
		return udpreactor.Remove
	}

	if r.MaxEchoes != 0 && r.total.Add(1) >= r.MaxEchoes {
		return udpreactor.Remove
	}
	return udpreactor.Continue
}

// OnRemove implements udpreactor.Reader.
func (r *Reader) OnRemove() {}

// Stats is a point-in-time summary across every shard.
type Stats struct {
	Datagrams uint64
	Bytes     uint64
}

// Stats aggregates the per-shard counters. Safe to call concurrently
// with OnRead.
func (r *Reader) Stats() Stats {
	var out Stats
	for i := range r.shards {
		r.shards[i].mu.Lock()
		out.Datagrams += r.shards[i].count
		out.Bytes += r.shards[i].bytes
		r.shards[i].mu.Unlock()
	}
	return out
}
