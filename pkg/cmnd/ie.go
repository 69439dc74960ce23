package cmnd

import (
	"encoding/binary"
	"fmt"

	"github.com/dect-ule/ule-go/pkg/proto"
)

// Information element identifiers.
const (
	IEResponseID        = 0x00
	IEVersionID         = 0x09
	IEParameterID       = 0x0B
	IEParameterDirectID = 0x0C
	IEGeneralStatusID   = 0x0D
	IEU8ID              = 0x1E
)

// IE is one typed information element. Each element knows how to append
// itself, header included, to a frame payload.
type IE interface {
	appendTo(dst []byte) []byte
}

// appendIE prepends the `type u8 | len u16-BE` header to content.
func appendIE(dst []byte, id uint8, content []byte) []byte {
	dst = append(dst, id)
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(content)))
	return append(dst, content...)
}

// FindIE scans payload for the first element with the given identifier and
// returns its content. It fails with proto.ErrFieldNotFound on exhaustion
// and proto.ErrFieldDecode on a truncated header or length overrun.
func FindIE(payload []byte, id uint8) ([]byte, error) {
	for len(payload) > 0 {
		if len(payload) < 3 {
			return nil, fmt.Errorf("%w: truncated element header", proto.ErrFieldDecode)
		}
		elemID := payload[0]
		length := int(binary.BigEndian.Uint16(payload[1:3]))
		if len(payload) < 3+length {
			return nil, fmt.Errorf("%w: element %#02x overruns payload", proto.ErrFieldDecode, elemID)
		}
		if elemID == id {
			return payload[3 : 3+length], nil
		}
		payload = payload[3+length:]
	}
	return nil, fmt.Errorf("%w: element %#02x", proto.ErrFieldNotFound, id)
}

// ResponseIE carries the result code of a confirmed request. A non-zero
// result means the device rejected the request.
type ResponseIE struct {
	Result uint8
}

func (ie *ResponseIE) appendTo(dst []byte) []byte {
	return appendIE(dst, IEResponseID, []byte{ie.Result})
}

// DecodeResponseIE extracts the response element from a frame payload.
func DecodeResponseIE(payload []byte) (*ResponseIE, error) {
	content, err := FindIE(payload, IEResponseID)
	if err != nil {
		return nil, err
	}
	if len(content) != 1 {
		return nil, fmt.Errorf("%w: response element length %d", proto.ErrFieldDecode, len(content))
	}
	return &ResponseIE{Result: content[0]}, nil
}

// Err converts a non-zero result into a proto.ResponseError.
func (ie *ResponseIE) Err() error {
	if ie.Result == 0 {
		return nil
	}
	return &proto.ResponseError{Code: ie.Result}
}

// VersionIE carries a version string with an inner one-byte length.
type VersionIE struct {
	Version []byte
}

func (ie *VersionIE) appendTo(dst []byte) []byte {
	content := append([]byte{uint8(len(ie.Version))}, ie.Version...)
	return appendIE(dst, IEVersionID, content)
}

// DecodeVersionIE extracts the version element from a frame payload.
func DecodeVersionIE(payload []byte) (*VersionIE, error) {
	content, err := FindIE(payload, IEVersionID)
	if err != nil {
		return nil, err
	}
	if len(content) < 1 || int(content[0]) > len(content)-1 {
		return nil, fmt.Errorf("%w: version element length", proto.ErrFieldDecode)
	}
	return &VersionIE{Version: content[1 : 1+content[0]]}, nil
}

// ParameterIE addresses a parameter by id within an address type.
// Content layout: `type u8 | id u8 | len u16-BE | data`.
type ParameterIE struct {
	Type uint8
	ID   uint8
	Data []byte
}

func (ie *ParameterIE) appendTo(dst []byte) []byte {
	content := make([]byte, 4, 4+len(ie.Data))
	content[0] = ie.Type
	content[1] = ie.ID
	binary.BigEndian.PutUint16(content[2:4], uint16(len(ie.Data)))
	return appendIE(dst, IEParameterID, append(content, ie.Data...))
}

// DecodeParameterIE extracts the parameter element from a frame payload.
func DecodeParameterIE(payload []byte) (*ParameterIE, error) {
	content, err := FindIE(payload, IEParameterID)
	if err != nil {
		return nil, err
	}
	if len(content) < 4 {
		return nil, fmt.Errorf("%w: parameter element length %d", proto.ErrFieldDecode, len(content))
	}
	length := int(binary.BigEndian.Uint16(content[2:4]))
	if len(content) < 4+length {
		return nil, fmt.Errorf("%w: parameter data overrun", proto.ErrFieldDecode)
	}
	return &ParameterIE{
		Type: content[0],
		ID:   content[1],
		Data: content[4 : 4+length],
	}, nil
}

// ParameterDirectIE addresses a raw storage range by offset.
// Content layout: `type u8 | offset u32-BE | len u16-BE | data`.
// On a read request Data is empty and Length carries the requested size.
type ParameterDirectIE struct {
	Type   uint8
	Offset uint32
	Length uint16
	Data   []byte
}

func (ie *ParameterDirectIE) appendTo(dst []byte) []byte {
	length := ie.Length
	if len(ie.Data) > 0 {
		length = uint16(len(ie.Data))
	}
	content := make([]byte, 7, 7+len(ie.Data))
	content[0] = ie.Type
	binary.BigEndian.PutUint32(content[1:5], ie.Offset)
	binary.BigEndian.PutUint16(content[5:7], length)
	return appendIE(dst, IEParameterDirectID, append(content, ie.Data...))
}

// DecodeParameterDirectIE extracts the direct-parameter element from a
// frame payload.
func DecodeParameterDirectIE(payload []byte) (*ParameterDirectIE, error) {
	content, err := FindIE(payload, IEParameterDirectID)
	if err != nil {
		return nil, err
	}
	if len(content) < 7 {
		return nil, fmt.Errorf("%w: direct parameter element length %d", proto.ErrFieldDecode, len(content))
	}
	length := binary.BigEndian.Uint16(content[5:7])
	if len(content) < 7+int(length) {
		return nil, fmt.Errorf("%w: direct parameter data overrun", proto.ErrFieldDecode)
	}
	return &ParameterDirectIE{
		Type:   content[0],
		Offset: binary.BigEndian.Uint32(content[1:5]),
		Length: length,
		Data:   content[7 : 7+length],
	}, nil
}

// GeneralStatusIE reports the module state after powerup.
type GeneralStatusIE struct {
	PowerupMode        uint8
	RegistrationStatus uint8
	EEPROMStatus       uint8
	DeviceID           uint16
}

// Powerup modes.
const (
	PowerupModeNormal     = 0
	PowerupModeSafe       = 1
	PowerupModeProduction = 2
)

func (ie *GeneralStatusIE) appendTo(dst []byte) []byte {
	content := make([]byte, 5)
	content[0] = ie.PowerupMode
	content[1] = ie.RegistrationStatus
	content[2] = ie.EEPROMStatus
	binary.BigEndian.PutUint16(content[3:5], ie.DeviceID)
	return appendIE(dst, IEGeneralStatusID, content)
}

// DecodeGeneralStatusIE extracts the general status element from a frame
// payload.
func DecodeGeneralStatusIE(payload []byte) (*GeneralStatusIE, error) {
	content, err := FindIE(payload, IEGeneralStatusID)
	if err != nil {
		return nil, err
	}
	if len(content) != 5 {
		return nil, fmt.Errorf("%w: general status element length %d", proto.ErrFieldDecode, len(content))
	}
	return &GeneralStatusIE{
		PowerupMode:        content[0],
		RegistrationStatus: content[1],
		EEPROMStatus:       content[2],
		DeviceID:           binary.BigEndian.Uint16(content[3:5]),
	}, nil
}

// U8IE carries a single byte value, e.g. an EEPROM preset id.
type U8IE struct {
	Value uint8
}

func (ie *U8IE) appendTo(dst []byte) []byte {
	return appendIE(dst, IEU8ID, []byte{ie.Value})
}

// DecodeU8IE extracts the single-byte element from a frame payload.
func DecodeU8IE(payload []byte) (*U8IE, error) {
	content, err := FindIE(payload, IEU8ID)
	if err != nil {
		return nil, err
	}
	if len(content) != 1 {
		return nil, fmt.Errorf("%w: u8 element length %d", proto.ErrFieldDecode, len(content))
	}
	return &U8IE{Value: content[0]}, nil
}
