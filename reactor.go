// Package udpreactor provides a single-threaded, epoll-backed reactor for
// UDP datagram sockets: register a socket with a Reader and the reactor
// delivers every readable datagram to it on one dedicated loop thread,
// alongside arbitrary cross-thread tasks submitted with Execute.
package udpreactor

import (
	"net"

	"github.com/ravendale/go-udpreactor/internal/interfaces"
	"github.com/ravendale/go-udpreactor/internal/logging"
	"github.com/ravendale/go-udpreactor/internal/reactor"
)

// Reader is the user-supplied datagram consumer bound to a registered
// socket. OnRead is called once per datagram, in receive order, for as
// long as the registration stays live; OnRemove fires exactly once,
// after the socket has been deregistered, however that came about.
type Reader = interfaces.Reader

// Action is the value a Reader returns from OnRead.
type Action = interfaces.Action

const (
	// Continue leaves the registration in place for the next datagram.
	Continue = interfaces.Continue
	// Remove deregisters the socket before any further datagram in the
	// current batch is delivered.
	Remove = interfaces.Remove
)

// Logger is the logging surface the Reactor depends on. *logging.Logger
// satisfies it; so does any type with matching Printf/Debugf methods.
type Logger = interfaces.Logger

// Params configures a new Reactor. Zero-value fields fall back to the
// package defaults.
type Params struct {
	// MaxSelectedEvents bounds how many ready events one readiness-wait
	// call returns. Default DefaultMaxSelectedEvents.
	MaxSelectedEvents int

	// MaxDatagramsPerRead bounds how many datagrams one vectored receive
	// pulls off a single ready socket. Default DefaultMaxDatagramsPerRead.
	MaxDatagramsPerRead int

	// ReadBufferBytes sizes each pooled receive buffer. Default
	// DefaultReadBufferBytes.
	ReadBufferBytes int

	// Metrics receives operational counters. Defaults to a fresh
	// *Metrics instance, reachable afterward via Reactor.Metrics.
	Metrics *Metrics

	// Logger receives diagnostic messages. Defaults to the package's
	// global logger (see github.com/ravendale/go-udpreactor/internal/logging).
	Logger Logger
}

func (p Params) withDefaults() Params {
	if p.MaxSelectedEvents <= 0 {
		p.MaxSelectedEvents = DefaultMaxSelectedEvents
	}
	if p.MaxDatagramsPerRead <= 0 {
		p.MaxDatagramsPerRead = DefaultMaxDatagramsPerRead
	}
	if p.ReadBufferBytes <= 0 {
		p.ReadBufferBytes = DefaultReadBufferBytes
	}
	if p.Metrics == nil {
		p.Metrics = NewMetrics()
	}
	if p.Logger == nil {
		p.Logger = logging.Default()
	}
	return p
}

// Reactor is the public handle onto one epoll loop thread. The zero
// value is not usable; construct one with New.
type Reactor struct {
	inner   *reactor.Reactor
	metrics *Metrics
}

// New validates the host kernel, allocates the reactor's fixed-size
// resources, and returns a Reactor in its constructed state. Call Start
// before registering sockets or submitting tasks.
func New(params Params) (*Reactor, error) {
	params = params.withDefaults()

	inner, err := reactor.New(reactor.Config{
		MaxSelectedEvents:   params.MaxSelectedEvents,
		MaxDatagramsPerRead: params.MaxDatagramsPerRead,
		ReadBufferBytes:     params.ReadBufferBytes,
		Metrics:             params.Metrics,
		Logger:              params.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Reactor{inner: inner, metrics: params.Metrics}, nil
}

// Start launches the loop thread. A Reactor that is never started can
// still be Closed safely.
func (r *Reactor) Start() { r.inner.Start() }

// Register binds reader to fd's readability notifications and returns a
// cancel function that unregisters it; cancel is idempotent and safe
// from any goroutine. fd must name a connectionless datagram socket.
func (r *Reactor) Register(fd int, reader Reader) (cancel func(), err error) {
	return r.inner.Register(fd, reader)
}

// RegisterConn is a convenience wrapper around Register for a
// *net.UDPConn: it extracts the underlying file descriptor via
// SyscallConn and keeps the conn (and its fd) alive for the life of the
// registration.
func (r *Reactor) RegisterConn(conn *net.UDPConn, reader Reader) (cancel func(), err error) {
	fd, release, err := socketFD(conn)
	if err != nil {
		return func() {}, err
	}
	innerCancel, err := r.Register(fd, reader)
	if err != nil {
		release()
		return func() {}, err
	}
	return func() {
		innerCancel()
		release()
	}, nil
}

// Execute submits task to run once, on the loop thread, interleaved with
// datagram dispatch. It returns false without running task if the
// reactor has begun shutting down.
func (r *Reactor) Execute(task func()) bool { return r.inner.Execute(task) }

// Metrics returns the counters this reactor is reporting into.
func (r *Reactor) Metrics() *Metrics { return r.metrics }

// Close stops the loop thread and releases kernel resources. Safe to
// call exactly once, and safe to call even if Start was never called.
func (r *Reactor) Close() error { return r.inner.Close() }
