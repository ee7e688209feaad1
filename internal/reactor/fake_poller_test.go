package reactor

import (
	"sync"
	"time"

	"github.com/ravendale/go-udpreactor/internal/epoll"
)

// fakePoller is an in-memory stand-in for the production epoll.Poller,
// letting the loop driver be exercised without a real kernel facility.
type fakePoller struct {
	mu       sync.Mutex
	added    map[int]int32
	wakeFd   int
	notified chan struct{}
	pending  []epoll.Event
	batches  map[int][][]epoll.Datagram // fd -> queued ReceiveBatch results
	closed   bool
}

const fakeWakeFd = -1

func newFakePoller() *fakePoller {
	return &fakePoller{
		added:    make(map[int]int32),
		wakeFd:   fakeWakeFd,
		notified: make(chan struct{}, 1),
		batches:  make(map[int][][]epoll.Datagram),
	}
}

func (p *fakePoller) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePoller) Add(fd int, slotIndex int32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.added[fd] = slotIndex
	return nil
}

func (p *fakePoller) Remove(fd int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.added, fd)
	return nil
}

func (p *fakePoller) WakeFD() int { return p.wakeFd }

func (p *fakePoller) Notify() error {
	select {
	case p.notified <- struct{}{}:
	default:
	}
	p.mu.Lock()
	wakeSlot, ok := p.added[p.wakeFd]
	p.mu.Unlock()
	if ok {
		p.injectReady(wakeSlot)
	}
	return nil
}

func (p *fakePoller) ConsumeNotification() error {
	select {
	case <-p.notified:
	default:
	}
	return nil
}

// injectReady queues slotIndex to be returned by the next Wait call.
func (p *fakePoller) injectReady(slotIndex int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, epoll.Event{SlotIndex: slotIndex})
}

// Wait stands in for epoll_wait's indefinite-timeout block. Rather than
// actually blocking, it sleeps briefly and returns whatever is pending
// (possibly zero events), so the loop driver's own stop-channel check
// between Wait calls stays responsive without a busy-spin.
func (p *fakePoller) Wait(out []epoll.Event) (int, error) {
	p.mu.Lock()
	n := copy(out, p.pending)
	p.pending = p.pending[n:]
	p.mu.Unlock()
	if n == 0 {
		time.Sleep(time.Millisecond)
	}
	return n, nil
}

// queueBatch arranges for the next ReceiveBatch(fd) call to return
// datagrams, and marks fd ready on the next Wait.
func (p *fakePoller) queueBatch(fd int, datagrams []epoll.Datagram) {
	p.mu.Lock()
	p.batches[fd] = append(p.batches[fd], datagrams)
	slotIndex := p.added[fd]
	p.mu.Unlock()
	p.injectReady(slotIndex)
}

func (p *fakePoller) ReceiveBatch(fd int) ([]epoll.Datagram, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	queued := p.batches[fd]
	if len(queued) == 0 {
		return nil, nil
	}
	batch := queued[0]
	p.batches[fd] = queued[1:]
	return batch, nil
}
