package proto

import (
	"errors"
	"fmt"
)

// Protocol errors shared across HAN, CMBS and CMND.
var (
	// ErrMalformedFrame indicates a frame whose header and length do not
	// agree with the bytes actually present. Recovered by resynchronizing,
	// never fatal to the connection.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrChecksum indicates a frame whose checksum did not match the
	// recomputed value. The connection stays open.
	ErrChecksum = errors.New("checksum mismatch")

	// ErrFieldNotFound indicates an expected field was absent from a payload.
	ErrFieldNotFound = errors.New("field not found")

	// ErrFieldDecode indicates a structurally invalid field scan
	// (truncated header, declared length overrunning the buffer).
	ErrFieldDecode = errors.New("field decode failed")

	// ErrTimeout indicates no matching response arrived within the deadline.
	// The connection stays usable for future calls.
	ErrTimeout = errors.New("timed out")

	// ErrReentrantCall indicates a blocking call was issued from the receive
	// goroutine's own dispatch context. Such a call can never be satisfied,
	// so it fails immediately instead of deadlocking.
	ErrReentrantCall = errors.New("blocking call from dispatch context")

	// ErrClosed indicates the connection has been closed.
	ErrClosed = errors.New("connection closed")
)

// ResponseError is returned when the device answered with a well-formed
// response carrying a non-zero status code.
type ResponseError struct {
	Code uint8
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("device returned error code %#04x", e.Code)
}
