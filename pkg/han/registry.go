package han

import (
	"fmt"
	"strings"

	"github.com/dect-ule/ule-go/pkg/proto"
)

// OpenRes is the answer to OPEN_REG.
type OpenRes struct {
	Success bool
}

// CloseRes is the answer to CLOSE_REG.
type CloseRes struct {
	Success bool
}

// FunMsg is a FUN message received from a device.
type FunMsg struct {
	SrcDevID        int
	SrcUnitID       int
	DstDevID        int
	DstUnitID       int
	MsgSeq          int
	MsgType         int
	InterfaceType   int
	InterfaceID     int
	InterfaceMember int
	Data            []byte
}

// DecodeOpenRes parses an OPEN_RES message.
func DecodeOpenRes(m *Message) (*OpenRes, error) {
	return &OpenRes{Success: m.Succeeded()}, nil
}

// DecodeCloseRes parses a CLOSE_RES message.
func DecodeCloseRes(m *Message) (*CloseRes, error) {
	return &CloseRes{Success: m.Succeeded()}, nil
}

// DecodeFunMsg parses a FUN_MSG message, including its hex DATA payload.
func DecodeFunMsg(m *Message) (*FunMsg, error) {
	f := &FunMsg{}
	for _, field := range []struct {
		key string
		dst *int
	}{
		{"SRC_DEV_ID", &f.SrcDevID},
		{"SRC_UNIT_ID", &f.SrcUnitID},
		{"DST_DEV_ID", &f.DstDevID},
		{"DST_UNIT_ID", &f.DstUnitID},
		{"MSG_SEQ", &f.MsgSeq},
		{"MSGTYPE", &f.MsgType},
		{"INTRF_TYPE", &f.InterfaceType},
		{"INTRF_ID", &f.InterfaceID},
		{"INTRF_MEMBER", &f.InterfaceMember},
	} {
		n, err := m.GetInt(field.key)
		if err != nil {
			return nil, err
		}
		*field.dst = n
	}

	datalen, err := m.GetInt("DATALEN")
	if err != nil {
		return nil, err
	}
	if datalen > 0 {
		value, ok := m.Get("DATA")
		if !ok {
			return nil, fmt.Errorf("%w: DATA", proto.ErrFieldNotFound)
		}
		f.Data, err = DecodeData(value)
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

// decoders maps message names to their typed decoders. The table is fixed
// at startup; unknown names fall back to the generic key/value Message.
var decoders = map[string]func(m *Message) (any, error){
	"OPEN_RES":             func(m *Message) (any, error) { return DecodeOpenRes(m) },
	"CLOSE_RES":            func(m *Message) (any, error) { return DecodeCloseRes(m) },
	"DEV_TABLE":            func(m *Message) (any, error) { return DecodeDevTable(m) },
	"DEV_TABLE_PHASE_2":    func(m *Message) (any, error) { return DecodeDevTable(m) },
	"BLACK_LIST_DEV_TABLE": func(m *Message) (any, error) { return DecodeDevTable(m) },
	"DEV_INFO":             func(m *Message) (any, error) { return DecodeDevInfo(m) },
	"DEV_INFO_PHASE_2":     func(m *Message) (any, error) { return DecodeDevInfo(m) },
	"FUN_MSG":              func(m *Message) (any, error) { return DecodeFunMsg(m) },
}

// Decode resolves a message to its typed record. Messages without a
// registered decoder are returned unchanged, so every message stays
// accessible through the generic parameter list.
func Decode(m *Message) (any, error) {
	decode, ok := decoders[m.Name]
	if !ok {
		return m, nil
	}
	return decode(m)
}

// CanonicalName converts a wire message name to its Go-style record name,
// e.g. "DEV_TABLE" to "DevTable".
func CanonicalName(name string) string {
	parts := strings.Split(strings.ToLower(name), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}
