package reactor

import (
	"sync/atomic"

	"github.com/ravendale/go-udpreactor/internal/epoll"
	"github.com/ravendale/go-udpreactor/internal/interfaces"
)

type state int32

const (
	stateConstructed state = iota
	stateRunning
	stateStopping
	stateTerminated
)

// Config configures a Reactor's fixed-size resources. It is copied
// directly into the underlying Poller's Config.
type Config struct {
	MaxSelectedEvents   int
	MaxDatagramsPerRead int
	ReadBufferBytes     int
	Metrics             interfaces.MetricsSink
	Logger              interfaces.Logger
}

// Reactor is the public driver of this package: construct one with New,
// Start it once, Register sockets and Execute cross-thread tasks while
// it runs, and Close it exactly once when done. It moves through a
// constructed -> running -> stopping -> terminated state machine.
type Reactor struct {
	loop   *Loop
	poller epoll.Poller
	state  atomic.Int32
	stop   chan struct{}
}

// New validates the host kernel and constructs a Reactor in the
// "constructed" state. Start must be called before Register or Execute
// will do anything useful.
func New(cfg Config) (*Reactor, error) {
	if err := checkKernelVersion(); err != nil {
		return nil, err
	}

	poller, err := epoll.New(epoll.Config{
		MaxSelectedEvents:   cfg.MaxSelectedEvents,
		MaxDatagramsPerRead: cfg.MaxDatagramsPerRead,
		ReadBufferBytes:     cfg.ReadBufferBytes,
	})
	if err != nil {
		return nil, &Error{Op: "New", Code: CodeConstruction, Msg: "constructing poller", Inner: err}
	}

	loop, err := newLoop(poller, cfg.Metrics, cfg.Logger, cfg.MaxSelectedEvents)
	if err != nil {
		poller.Close()
		return nil, err
	}

	r := &Reactor{
		loop:   loop,
		poller: poller,
		stop:   make(chan struct{}),
	}
	r.state.Store(int32(stateConstructed))
	return r, nil
}

// Start launches the loop thread. It is a no-op if the reactor is not in
// the constructed state.
func (r *Reactor) Start() {
	if !r.state.CompareAndSwap(int32(stateConstructed), int32(stateRunning)) {
		return
	}
	go r.loop.run(r.stop)
}

// Register submits a task onto the loop thread that adds fd to the
// poller and binds reader as its datagram handler, returning a cancel
// function that unregisters it. Both Register and the returned cancel
// are safe to call from any goroutine.
func (r *Reactor) Register(fd int, reader interfaces.Reader) (cancel func(), err error) {
	errCh := make(chan error, 1)
	ok := r.submit(func() {
		errCh <- r.loop.registerNow(fd, reader)
	})
	if !ok {
		return func() {}, ErrClosed
	}
	if err := <-errCh; err != nil {
		return func() {}, err
	}

	var cancelled atomic.Bool
	cancel = func() {
		if !cancelled.CompareAndSwap(false, true) {
			return
		}
		r.submit(func() {
			r.loop.unregisterNow(fd)
		})
	}
	return cancel, nil
}

// Execute submits task to run on the loop thread. If the reactor has
// begun shutting down, task is silently dropped and Execute returns
// false.
func (r *Reactor) Execute(task func()) bool {
	return r.submit(task)
}

// submit pushes task onto the submission queue and wakes the loop
// exactly once on the empty-to-non-empty transition.
func (r *Reactor) submit(task func()) bool {
	if state(r.state.Load()) != stateRunning {
		return false
	}
	accepted, shouldWake := r.loop.queue.push(task)
	if !accepted {
		return false
	}
	if shouldWake {
		if err := r.poller.Notify(); err != nil {
			r.loop.logger.Printf("udpreactor: waking loop: %v", err)
		} else {
			r.loop.metrics.ObserveWakeup()
		}
	}
	return true
}

// Close stops the loop thread and releases the poller. Safe to call
// exactly once; subsequent calls are no-ops.
func (r *Reactor) Close() error {
	prev := state(r.state.Swap(int32(stateStopping)))
	if prev == stateTerminated || prev == stateStopping {
		return nil
	}
	r.loop.queue.shutdown()

	if prev == stateRunning {
		close(r.stop)
		// Wake(); the loop thread spends nearly all its time blocked in
		// an indefinite-timeout Wait and only checks stop between calls.
		if err := r.poller.Notify(); err != nil {
			r.loop.logger.Printf("udpreactor: waking loop for shutdown: %v", err)
		}
		<-r.loop.done
	}

	r.state.Store(int32(stateTerminated))
	return r.poller.Close()
}
