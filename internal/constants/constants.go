package constants

// Default configuration constants for a reactor whose caller does not
// override them explicitly.
const (
	// DefaultMaxSelectedEvents is the default capacity of the epoll
	// event-output array.
	DefaultMaxSelectedEvents = 64

	// DefaultMaxDatagramsPerRead is the default recvmmsg batch size and
	// receive-buffer pool size.
	DefaultMaxDatagramsPerRead = 32

	// DefaultReadBufferBytes is the default size of each pooled receive
	// buffer, large enough for a non-jumbo UDP datagram.
	DefaultReadBufferBytes = 2048

	// MinKernelMajor/MinKernelMinor is the lowest Linux kernel version this
	// reactor depends on (EFD_CLOEXEC plus a working recvmmsg(2)).
	MinKernelMajor = 3
	MinKernelMinor = 0
)

// SlotIndexLimit bounds the slot table so that a slot's index always fits
// in the 32-bit user-data field the kernel hands back in each epoll event.
const SlotIndexLimit = 1 << 31
