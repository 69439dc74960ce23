package proto

import (
	"io"
	"time"
)

// Transport is the byte-stream link a protocol client runs over.
//
// Reads are single-owner: exactly one goroutine (the client's receive loop)
// may read. Writes may come from any goroutine but concurrent writers must
// serialize among themselves so frames are not interleaved; the clients do
// this with a write mutex.
type Transport interface {
	io.ReadWriteCloser

	// SetReadDeadline bounds the next Read. The zero time means no deadline.
	SetReadDeadline(t time.Time) error
}

// RawHook observes the untouched wire bytes of every inbound frame before
// any decoding. Hooks run on the receive goroutine and must not block.
type RawHook func(data []byte)
