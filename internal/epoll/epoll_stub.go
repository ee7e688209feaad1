//go:build !linux

package epoll

// New reports ErrNotSupported outside Linux. The reactor core is built on
// epoll, eventfd, and recvmmsg, all Linux-only facilities; there is no
// portable fallback in scope for this reactor.
func New(cfg Config) (Poller, error) {
	return nil, ErrNotSupported
}
