package reactor

import "github.com/ravendale/go-udpreactor/internal/interfaces"

// registerNow claims a slot for fd, binds reader as its datagram handler,
// and adds fd to the poller. It must run on the loop thread; callers
// reach it by submitting a task through the submission queue.
func (l *Loop) registerNow(fd int, reader interfaces.Reader) error {
	s, err := l.table.claimSlot()
	if err != nil {
		return err
	}
	s.fd = fd
	s.handler = slotHandler{kind: handlerDatagram, reader: reader}
	s.live = true

	if err := l.poller.Add(fd, s.index); err != nil {
		s.live = false
		l.table.release(s)
		return &Error{Op: "registerNow", Code: CodeKernelRegistration, Msg: "adding fd to poller", Inner: err}
	}

	l.reg.insert(fd, s)
	l.metrics.ObserveRegistered()
	return nil
}

// unregisterNow looks fd up in the registry and removes it, exactly as
// unregisterSlot does for a kernel-reported readiness event. It is the
// path used when a caller cancels a registration from the outside rather
// than the reader returning interfaces.Remove.
func (l *Loop) unregisterNow(fd int) {
	s, ok := l.reg.lookup(fd)
	if !ok {
		return
	}
	l.unregisterSlot(s)
}
