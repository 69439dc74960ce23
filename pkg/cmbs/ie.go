package cmbs

import (
	"encoding/binary"
	"fmt"

	"github.com/dect-ule/ule-go/pkg/proto"
)

// Information element identifiers.
const (
	IEParameterID     = 16
	IEResponseID      = 22
	IEParameterAreaID = 26
)

// IE is an information element that can serialize itself into a message
// payload. Elements carry a little-endian `type u16 | len u16` header.
type IE interface {
	appendTo(dst []byte) []byte
}

func appendIE(dst []byte, id uint16, content []byte) []byte {
	var hdr [4]byte
	binary.LittleEndian.PutUint16(hdr[0:2], id)
	binary.LittleEndian.PutUint16(hdr[2:4], uint16(len(content)))
	dst = append(dst, hdr[:]...)
	return append(dst, content...)
}

// FindIE scans a message payload for the first element with the given id
// and returns its content bytes.
func FindIE(payload []byte, id uint16) ([]byte, error) {
	for len(payload) > 0 {
		if len(payload) < 4 {
			return nil, fmt.Errorf("%w: truncated element header", proto.ErrFieldDecode)
		}
		elemID := binary.LittleEndian.Uint16(payload[0:2])
		length := int(binary.LittleEndian.Uint16(payload[2:4]))
		if 4+length > len(payload) {
			return nil, fmt.Errorf("%w: element length %d overruns payload", proto.ErrFieldDecode, length)
		}
		if elemID == id {
			return payload[4 : 4+length], nil
		}
		payload = payload[4+length:]
	}
	return nil, fmt.Errorf("%w: element %d", proto.ErrFieldNotFound, id)
}

// ResponseIE carries the result code of a confirmed operation.
type ResponseIE struct {
	Result uint8
}

func (ie *ResponseIE) appendTo(dst []byte) []byte {
	return appendIE(dst, IEResponseID, []byte{ie.Result})
}

// DecodeResponseIE extracts the response element from a message payload.
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

// Err converts a non-zero result into a ResponseError.
func (ie *ResponseIE) Err() error {
	if ie.Result == 0 {
		return nil
	}
	return &proto.ResponseError{Code: ie.Result}
}

// ParameterIE addresses a parameter by id.
// Content layout: `id u8 | type u8 | len u16-LE | data`.
type ParameterIE struct {
	ID   uint8
	Type uint8
	Data []byte
}

func (ie *ParameterIE) appendTo(dst []byte) []byte {
	content := make([]byte, 4, 4+len(ie.Data))
	content[0] = ie.ID
	content[1] = ie.Type
	binary.LittleEndian.PutUint16(content[2:4], uint16(len(ie.Data)))
	content = append(content, ie.Data...)
	return appendIE(dst, IEParameterID, content)
}

// DecodeParameterIE extracts the parameter element from a message payload.
func DecodeParameterIE(payload []byte) (*ParameterIE, error) {
	content, err := FindIE(payload, IEParameterID)
	if err != nil {
		return nil, err
	}
	if len(content) < 4 {
		return nil, fmt.Errorf("%w: parameter element length %d", proto.ErrFieldDecode, len(content))
	}
	length := int(binary.LittleEndian.Uint16(content[2:4]))
	if 4+length > len(content) {
		return nil, fmt.Errorf("%w: parameter data length %d overruns element", proto.ErrFieldDecode, length)
	}
	return &ParameterIE{
		ID:   content[0],
		Type: content[1],
		Data: content[4 : 4+length],
	}, nil
}

// ParameterAreaIE addresses a byte range within a storage area. For read
// requests Data stays empty and Length carries the requested size; for
// writes Data carries the bytes and Length is derived from it.
// Content layout: `type u8 | offset u32-LE | len u16-LE | data`.
type ParameterAreaIE struct {
	Type   uint8
	Offset uint32
	Length uint16
	Data   []byte
}

func (ie *ParameterAreaIE) appendTo(dst []byte) []byte {
	length := ie.Length
	if len(ie.Data) > 0 {
		length = uint16(len(ie.Data))
	}
	content := make([]byte, 7, 7+len(ie.Data))
	content[0] = ie.Type
	binary.LittleEndian.PutUint32(content[1:5], ie.Offset)
	binary.LittleEndian.PutUint16(content[5:7], length)
	content = append(content, ie.Data...)
	return appendIE(dst, IEParameterAreaID, content)
}

// DecodeParameterAreaIE extracts the parameter area element from a message
// payload.
func DecodeParameterAreaIE(payload []byte) (*ParameterAreaIE, error) {
	content, err := FindIE(payload, IEParameterAreaID)
	if err != nil {
		return nil, err
	}
	if len(content) < 7 {
		return nil, fmt.Errorf("%w: parameter area element length %d", proto.ErrFieldDecode, len(content))
	}
	ie := &ParameterAreaIE{
		Type:   content[0],
		Offset: binary.LittleEndian.Uint32(content[1:5]),
		Length: binary.LittleEndian.Uint16(content[5:7]),
	}
	rest := content[7:]
	if int(ie.Length) <= len(rest) {
		ie.Data = rest[:ie.Length]
	}
	return ie, nil
}
