package reactor

import (
	"runtime"

	"github.com/ravendale/go-udpreactor/internal/epoll"
	"github.com/ravendale/go-udpreactor/internal/interfaces"
)

// Loop owns every piece of mutable reactor state and the single OS thread
// permitted to touch it: the slot table, the registry, the submission
// queue, and the kernel-facing Poller. All mutation happens on this
// thread; everything outside this package reaches Loop only through
// Reactor's Register/Execute/Start/Close, which either hand work to the
// submission queue or read state that is safe to read from any
// goroutine.
type Loop struct {
	poller  epoll.Poller
	table   slotTable
	reg     *registry
	queue   *submissionQueue
	metrics interfaces.MetricsSink
	logger  interfaces.Logger

	events   []epoll.Event
	wakeSlot int32

	done chan struct{}
}

func newLoop(poller epoll.Poller, metrics interfaces.MetricsSink, logger interfaces.Logger, maxSelectedEvents int) (*Loop, error) {
	l := &Loop{
		poller:  poller,
		reg:     newRegistry(),
		queue:   newSubmissionQueue(),
		metrics: metrics,
		logger:  logger,
		events:  make([]epoll.Event, maxSelectedEvents),
		done:    make(chan struct{}),
	}

	wakeSlot, err := l.table.claimSlot()
	if err != nil {
		return nil, err
	}
	wakeSlot.fd = poller.WakeFD()
	wakeSlot.handler = slotHandler{kind: handlerWakeup}
	wakeSlot.live = true
	l.wakeSlot = wakeSlot.index

	if err := poller.Add(wakeSlot.fd, wakeSlot.index); err != nil {
		return nil, &Error{Op: "newLoop", Code: CodeKernelRegistration, Msg: "registering wake-up eventfd", Inner: err}
	}
	l.reg.insert(wakeSlot.fd, wakeSlot)

	return l, nil
}

// run is the body of the loop goroutine: readiness-wait, dispatch,
// repeat, until close is requested. It locks itself to its own OS
// thread for its entire lifetime.
func (l *Loop) run(stop <-chan struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(l.done)
	defer l.shutdownRegisteredSlots()

	for {
		select {
		case <-stop:
			return
		default:
		}

		n, err := l.poller.Wait(l.events)
		if err != nil {
			l.logger.Printf("udpreactor: poller wait failed: %v", err)
			return
		}

		for i := 0; i < n; i++ {
			idx := nativeEvent(l.events[i])
			s := l.table.at(idx)
			if s == nil || !s.live {
				// The slot was unregistered between Wait returning this
				// event and us processing it; nothing to dispatch.
				continue
			}
			action := s.handler.invoke(l, s.fd)
			if action == interfaces.Remove {
				l.unregisterSlot(s)
			}
		}
	}
}

// dispatchDatagram performs one vectored receive on fd and feeds each
// datagram to reader.OnRead in order, stopping at the first Remove
// result. Any remaining datagrams already pulled into the batch are
// discarded rather than redelivered on the next readiness event.
func (l *Loop) dispatchDatagram(fd int, reader interfaces.Reader) interfaces.Action {
	batch, err := l.poller.ReceiveBatch(fd)
	if err != nil {
		l.metrics.ObserveReceiveError()
		l.logger.Printf("udpreactor: receive batch failed on fd %d: %v", fd, err)
		return interfaces.Continue
	}

	for _, dg := range batch {
		l.metrics.ObserveDatagram(len(dg.Buf))
		if reader.OnRead(dg.Buf) == interfaces.Remove {
			return interfaces.Remove
		}
	}
	return interfaces.Continue
}

// drainSubmissions is invoked when the wake-up slot becomes readable. It
// consumes the coalesced eventfd counter, then runs every task that was
// queued since the previous drain.
func (l *Loop) drainSubmissions() {
	if err := l.poller.ConsumeNotification(); err != nil {
		l.logger.Printf("udpreactor: consuming wake-up notification: %v", err)
	}
	for _, task := range l.queue.drainInto() {
		task()
		l.metrics.ObserveTaskRun()
	}
}

// shutdownRegisteredSlots runs any tasks still queued, then tears down
// every live datagram registration before the loop thread exits, so a
// Reader's OnRemove still fires exactly once even if Close preempts its
// socket's next readiness event. The wake-up slot is skipped; it has no
// reader and is torn down by Reactor.Close closing the poller itself.
func (l *Loop) shutdownRegisteredSlots() {
	l.drainSubmissions()
	for _, s := range l.reg.snapshot() {
		if s.handler.kind != handlerDatagram {
			continue
		}
		l.unregisterSlot(s)
	}
}

// unregisterSlot deregisters s's fd from the poller, notifies its reader
// exactly once, and returns the slot to the free list. Called only from
// the loop thread.
func (l *Loop) unregisterSlot(s *slot) {
	if !s.live {
		return
	}
	if err := l.poller.Remove(s.fd); err != nil {
		l.logger.Printf("udpreactor: removing fd %d from poller: %v", s.fd, err)
	}
	l.reg.remove(s.fd)
	reader := s.handler.reader
	s.live = false
	s.handler = slotHandler{}
	l.table.release(s)
	l.metrics.ObserveUnregistered()
	if reader != nil {
		reader.OnRemove()
	}
}
