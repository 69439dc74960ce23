package cmbs

import (
	"encoding/binary"
	"fmt"

	"github.com/dect-ule/ule-go/pkg/proto"
	"github.com/dect-ule/ule-go/pkg/stream"
)

// Wire layout (little-endian):
//
//	4 byte sync = 0xDADADADA
//	2 byte total length = 8 + payload length
//	2 byte packet number = 0
//	2 byte event id
//	2 byte payload length
//	payload
//
// An optional trailing checksum exists on the wire but is disabled via the
// capabilities handshake, so this codec never produces or expects one.
const (
	Sync = 0xDADADADA

	headerSize = 12 // sync through payload length
)

// CommandBase offsets transport-control commands into the event id space.
const CommandBase = 0xFF00

// Message is one CMBS packet: an event (or command) id plus a payload of
// information elements.
type Message struct {
	ID      uint16
	Payload []byte
}

// NewMessage builds a message for an event id, appending the payloads of
// any information elements.
func NewMessage(id uint16, ies ...IE) *Message {
	m := &Message{ID: id}
	for _, ie := range ies {
		m.AddIE(ie)
	}
	return m
}

// NewCommand builds a transport-control command message with a raw payload.
func NewCommand(cmd uint16, payload []byte) *Message {
	return &Message{ID: CommandBase + cmd, Payload: payload}
}

// AddIE appends an information element to the payload.
func (m *Message) AddIE(ie IE) {
	m.Payload = ie.appendTo(m.Payload)
}

// Encode serializes the message.
func (m *Message) Encode() []byte {
	buf := make([]byte, headerSize, headerSize+len(m.Payload))
	binary.LittleEndian.PutUint32(buf[0:4], Sync)
	binary.LittleEndian.PutUint16(buf[4:6], uint16(8+len(m.Payload)))
	binary.LittleEndian.PutUint16(buf[6:8], 0) // packet number
	binary.LittleEndian.PutUint16(buf[8:10], m.ID)
	binary.LittleEndian.PutUint16(buf[10:12], uint16(len(m.Payload)))
	return append(buf, m.Payload...)
}

// DecodeMessage parses one complete packet.
func DecodeMessage(buf []byte) (*Message, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("%w: %d byte packet", proto.ErrMalformedFrame, len(buf))
	}
	if binary.LittleEndian.Uint32(buf[0:4]) != Sync {
		return nil, fmt.Errorf("%w: bad sync marker", proto.ErrMalformedFrame)
	}
	total := int(binary.LittleEndian.Uint16(buf[4:6]))
	payloadLen := int(binary.LittleEndian.Uint16(buf[10:12]))
	if total != 8+payloadLen || 4+total > len(buf) {
		return nil, fmt.Errorf("%w: total %d, payload %d, have %d bytes",
			proto.ErrMalformedFrame, total, payloadLen, len(buf))
	}

	return &Message{
		ID:      binary.LittleEndian.Uint16(buf[8:10]),
		Payload: buf[headerSize : headerSize+payloadLen],
	}, nil
}

// String renders the message for diagnostics, e.g. "EV_DSR_PARAM_GET<0x000d>".
func (m *Message) String() string {
	return fmt.Sprintf("%s<%#06x> % x", MessageName(m.ID), m.ID, m.Payload)
}

// ScannerConfig is the stream framing for CMBS: a 4-byte sync marker
// followed by a little-endian total length counting everything after the
// sync.
func ScannerConfig() stream.Config {
	return stream.Config{
		Sync:       []byte{0xDA, 0xDA, 0xDA, 0xDA},
		HeaderSize: 6,
		FrameLen: func(header []byte) int {
			return 4 + int(binary.LittleEndian.Uint16(header[4:6]))
		},
	}
}
