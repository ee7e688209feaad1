package udpreactor

import (
	"net"
	"runtime"

	"github.com/ravendale/go-udpreactor/internal/reactor"
)

// socketFD extracts the raw file descriptor backing conn via
// SyscallConn. The returned release func must be called once the
// descriptor is no longer needed;
// it keeps conn (and so the fd) alive until then, since conn's finalizer
// would otherwise close the fd out from under the reactor.
func socketFD(conn *net.UDPConn) (fd int, release func(), err error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, func() {}, &reactor.Error{
			Op:   "socketFD",
			Code: reactor.CodeHandleExtraction,
			Msg:  "obtaining raw conn",
			Inner: err,
		}
	}

	var extracted int
	ctrlErr := raw.Control(func(fd uintptr) {
		extracted = int(fd)
	})
	if ctrlErr != nil {
		return 0, func() {}, &reactor.Error{
			Op:    "socketFD",
			Code:  reactor.CodeHandleExtraction,
			Msg:   "extracting file descriptor",
			Inner: ctrlErr,
		}
	}

	return extracted, func() { runtime.KeepAlive(conn) }, nil
}
