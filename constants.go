package udpreactor

import "github.com/ravendale/go-udpreactor/internal/constants"

// Default resource sizes for Params, re-exported from internal/constants
// so callers never need that import path directly.
const (
	DefaultMaxSelectedEvents   = constants.DefaultMaxSelectedEvents
	DefaultMaxDatagramsPerRead = constants.DefaultMaxDatagramsPerRead
	DefaultReadBufferBytes     = constants.DefaultReadBufferBytes
)
