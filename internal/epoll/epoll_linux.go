//go:build linux

package epoll

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// linuxPoller is the production Poller, a thin wrapper over epoll(7),
// eventfd(2), and recvmmsg(2) via golang.org/x/sys/unix's typed Linux
// wrappers.
type linuxPoller struct {
	epfd   int
	wakeFd int

	rawEvents []unix.EpollEvent

	bufs   [][]byte
	iovecs []unix.Iovec
	msgs   []unix.Mmsghdr
}

// New creates the production epoll-backed Poller (Linux only).
func New(cfg Config) (Poller, error) {
	if cfg.MaxSelectedEvents < 1 || cfg.MaxDatagramsPerRead < 1 || cfg.ReadBufferBytes < 1 {
		return nil, fmt.Errorf("epoll: invalid config %+v", cfg)
	}

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}

	wakeFd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("eventfd: %w", err)
	}

	p := &linuxPoller{
		epfd:      epfd,
		wakeFd:    wakeFd,
		rawEvents: make([]unix.EpollEvent, cfg.MaxSelectedEvents),
		bufs:      make([][]byte, cfg.MaxDatagramsPerRead),
		iovecs:    make([]unix.Iovec, cfg.MaxDatagramsPerRead),
		msgs:      make([]unix.Mmsghdr, cfg.MaxDatagramsPerRead),
	}
	for i := range p.bufs {
		p.bufs[i] = make([]byte, cfg.ReadBufferBytes)
		p.iovecs[i].Base = &p.bufs[i][0]
		p.iovecs[i].SetLen(cfg.ReadBufferBytes)
		p.msgs[i].Hdr.Iov = &p.iovecs[i]
		p.msgs[i].Hdr.SetIovlen(1)
	}

	return p, nil
}

func (p *linuxPoller) Close() error {
	err1 := unix.Close(p.epfd)
	err2 := unix.Close(p.wakeFd)
	if err1 != nil {
		return err1
	}
	return err2
}

func (p *linuxPoller) Add(fd int, slotIndex int32) error {
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: slotIndex}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (p *linuxPoller) Remove(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (p *linuxPoller) WakeFD() int { return p.wakeFd }

func (p *linuxPoller) Notify() error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(p.wakeFd, buf[:])
	return err
}

func (p *linuxPoller) ConsumeNotification() error {
	var buf [8]byte
	_, err := unix.Read(p.wakeFd, buf[:])
	if err == unix.EAGAIN {
		// Nothing pending; already consumed by a previous drain.
		return nil
	}
	return err
}

func (p *linuxPoller) Wait(out []Event) (int, error) {
	raw := p.rawEvents
	if len(out) < len(raw) {
		raw = raw[:len(out)]
	}
	n, err := unix.EpollWait(p.epfd, raw, -1)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	for i := 0; i < n; i++ {
		out[i] = Event{SlotIndex: raw[i].Fd}
	}
	return n, nil
}

func (p *linuxPoller) ReceiveBatch(fd int) ([]Datagram, error) {
	n, err := unix.Recvmmsg(fd, p.msgs, unix.MSG_DONTWAIT, nil)
	if err != nil {
		return nil, err
	}
	out := make([]Datagram, n)
	for i := 0; i < n; i++ {
		out[i] = Datagram{Buf: p.bufs[i][:p.msgs[i].Len]}
	}
	return out, nil
}
