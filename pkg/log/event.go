package log

import "time"

// Event is one protocol trace record. CBOR encoding uses integer keys for
// compact trace files.
type Event struct {
	// Timestamp when the event occurred.
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Protocol the event belongs to.
	Protocol Protocol `cbor:"3,keyasint"`

	// Direction indicates message flow relative to the local end.
	Direction Direction `cbor:"4,keyasint"`

	// RemoteAddr is the peer address (host:port or serial device path).
	RemoteAddr string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload; exactly one is set.
	Frame   *FrameEvent   `cbor:"6,keyasint,omitempty"`
	Message *MessageEvent `cbor:"7,keyasint,omitempty"`
	State   *StateEvent   `cbor:"8,keyasint,omitempty"`
	Error   *ErrorEvent   `cbor:"9,keyasint,omitempty"`
}

// Protocol identifies which of the three wire protocols produced an event.
type Protocol uint8

const (
	// ProtocolHAN is the line-oriented text protocol to the HAN server.
	ProtocolHAN Protocol = 0
	// ProtocolCMBS is the little-endian binary base-station protocol.
	ProtocolCMBS Protocol = 1
	// ProtocolCMND is the checksummed big-endian device protocol.
	ProtocolCMND Protocol = 2
)

// String returns the protocol name.
func (p Protocol) String() string {
	switch p {
	case ProtocolHAN:
		return "HAN"
	case ProtocolCMBS:
		return "CMBS"
	case ProtocolCMND:
		return "CMND"
	default:
		return "UNKNOWN"
	}
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an inbound message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outbound message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame bytes as they crossed the transport.
type FrameEvent struct {
	// Size is the full frame size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data holds the raw frame bytes, possibly truncated.
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates Data was cut short.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// MessageEvent captures a decoded message summary.
type MessageEvent struct {
	// Service names the service scope ("[HAN]", "SYSTEM", ...), where the
	// protocol has one.
	Service string `cbor:"1,keyasint,omitempty"`

	// Name is the human-readable message name ("DEV_TABLE", "PARAM_GET_RES",
	// "UNKNOWN" when the identifier is unmapped).
	Name string `cbor:"2,keyasint"`

	// ID is the numeric message identifier for the binary protocols.
	ID uint32 `cbor:"3,keyasint,omitempty"`

	// Fields is the number of parameters or information elements carried.
	Fields int `cbor:"4,keyasint,omitempty"`
}

// StateEvent captures a connection lifecycle change.
type StateEvent struct {
	// OldState is the previous state name, if any.
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the state entered.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change, if available.
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEvent captures a recoverable protocol error.
type ErrorEvent struct {
	// Message is the error text.
	Message string `cbor:"1,keyasint"`

	// Context describes the operation that failed.
	Context string `cbor:"2,keyasint,omitempty"`
}
