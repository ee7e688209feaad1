package udpreactor

import (
	"github.com/ravendale/go-udpreactor/internal/reactor"
)

// Error is the structured error type New, Register and RegisterConn
// return on failure (other than ErrClosed); Close returns the poller's
// error unwrapped. Use errors.As to recover one, and Code to classify it.
type Error = reactor.Error

// Code classifies an Error by the phase of reactor operation that failed.
type Code = reactor.Code

const (
	CodeConstruction       = reactor.CodeConstruction
	CodeHandleExtraction   = reactor.CodeHandleExtraction
	CodeKernelRegistration = reactor.CodeKernelRegistration
	CodeReceive            = reactor.CodeReceive
	CodeHandlerFault       = reactor.CodeHandlerFault
)

// ErrClosed is returned by Register whenever the reactor is not running:
// before Start, or once it has begun or finished shutting down. Execute
// reports the same condition by returning false.
var ErrClosed = reactor.ErrClosed
