package cmnd

import (
	"encoding/binary"
	"fmt"

	"github.com/dect-ule/ule-go/pkg/proto"
	"github.com/dect-ule/ule-go/pkg/stream"
)

// Wire layout (network byte order):
//
//	2 byte sync = 0xDADA
//	2 byte length = 6 + payload length (cookie through checksum, plus payload)
//	1 byte cookie
//	1 byte unit id
//	2 byte service id
//	1 byte message id
//	1 byte checksum = low byte of sum(length..message id bytes) + sum(payload)
//	payload
const (
	Sync = 0xDADA

	// DefaultCookie is the cookie value stamped on outbound frames. The
	// module echoes it but otherwise ignores it.
	DefaultCookie = 104

	headerSize = 10 // sync through checksum
)

// Frame is one CMND transport frame.
type Frame struct {
	Cookie  uint8
	Unit    uint8
	Service uint16
	MsgID   uint8
	Payload []byte
}

// NewFrame builds a frame for the given unit, service and message,
// appending the payloads of any information elements.
func NewFrame(unit uint8, service uint16, msgID uint8, ies ...IE) *Frame {
	f := &Frame{
		Cookie:  DefaultCookie,
		Unit:    unit,
		Service: service,
		MsgID:   msgID,
	}
	for _, ie := range ies {
		f.AddIE(ie)
	}
	return f
}

// AddIE appends an information element to the payload.
func (f *Frame) AddIE(ie IE) {
	f.Payload = ie.appendTo(f.Payload)
}

// Key returns the (service, message) dispatch key of the frame.
func (f *Frame) Key() MsgKey {
	return MsgKey{Service: f.Service, MsgID: f.MsgID}
}

// Encode serializes the frame, computing the checksum.
func (f *Frame) Encode() []byte {
	buf := make([]byte, headerSize, headerSize+len(f.Payload))
	binary.BigEndian.PutUint16(buf[0:2], Sync)
	binary.BigEndian.PutUint16(buf[2:4], uint16(6+len(f.Payload)))
	buf[4] = f.Cookie
	buf[5] = f.Unit
	binary.BigEndian.PutUint16(buf[6:8], f.Service)
	buf[8] = f.MsgID
	buf[9] = checksum(buf, f.Payload)
	return append(buf, f.Payload...)
}

// checksum sums the length field through the message id plus every payload
// byte, truncated to eight bits. buf must hold at least the 9 header bytes
// preceding the checksum.
func checksum(buf, payload []byte) uint8 {
	var sum uint32
	for _, b := range buf[2:9] {
		sum += uint32(b)
	}
	for _, b := range payload {
		sum += uint32(b)
	}
	return uint8(sum)
}

// DecodeFrame parses one complete frame.
//
// A header/length inconsistency fails with proto.ErrMalformedFrame and a nil
// frame. A checksum mismatch fails with proto.ErrChecksum but still returns
// the parsed envelope, so the failure can be correlated with the caller that
// is waiting on this (service, message) pair.
func DecodeFrame(buf []byte) (*Frame, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("%w: %d byte frame", proto.ErrMalformedFrame, len(buf))
	}
	if binary.BigEndian.Uint16(buf[0:2]) != Sync {
		return nil, fmt.Errorf("%w: bad sync marker", proto.ErrMalformedFrame)
	}
	length := int(binary.BigEndian.Uint16(buf[2:4]))
	if 4+length != len(buf) {
		return nil, fmt.Errorf("%w: declared %d bytes, have %d", proto.ErrMalformedFrame, 4+length, len(buf))
	}

	f := &Frame{
		Cookie:  buf[4],
		Unit:    buf[5],
		Service: binary.BigEndian.Uint16(buf[6:8]),
		MsgID:   buf[8],
		Payload: buf[headerSize:],
	}

	if want, got := buf[9], checksum(buf, f.Payload); want != got {
		return f, fmt.Errorf("%w: %#02x != %#02x", proto.ErrChecksum, got, want)
	}
	return f, nil
}

// String renders the frame for diagnostics, e.g. "SYSTEM<0x0201> RESET_REQ<0x08>".
func (f *Frame) String() string {
	service := ServiceName(f.Service)
	message := MessageName(f.Service, f.MsgID)
	return fmt.Sprintf("%s<%#04x> %s<%#02x>", service, f.Service, message, f.MsgID)
}

// ScannerConfig is the stream framing for CMND: a 2-byte sync marker
// followed by a big-endian length counting everything after it.
func ScannerConfig() stream.Config {
	return stream.Config{
		Sync:       []byte{0xDA, 0xDA},
		HeaderSize: 4,
		FrameLen: func(header []byte) int {
			return 4 + int(binary.BigEndian.Uint16(header[2:4]))
		},
	}
}
