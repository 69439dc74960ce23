package cmbs

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dect-ule/ule-go/pkg/proto"
)

func TestMessageEncode(t *testing.T) {
	m := NewMessage(EvDSRParamGet, &ParameterIE{ID: ParamRXTUN})
	got := m.Encode()

	want := []byte{
		0xDA, 0xDA, 0xDA, 0xDA, // sync
		0x10, 0x00, // total length: 8 + 8 payload
		0x00, 0x00, // packet number
		0x0D, 0x00, // event id
		0x08, 0x00, // payload length
		// parameter IE: type 16, length 4, id 4, type 0, data length 0
		0x10, 0x00, 0x04, 0x00, 0x04, 0x00, 0x00, 0x00,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("encoded packet\n got %x\nwant %x", got, want)
	}
}

func TestMessageRoundTrip(t *testing.T) {
	m := NewMessage(EvDSRParamSet, &ParameterIE{ID: ParamCountry, Data: []byte{0x02}})

	decoded, err := DecodeMessage(m.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != EvDSRParamSet {
		t.Fatalf("id = %#04x", decoded.ID)
	}
	if !bytes.Equal(decoded.Payload, m.Payload) {
		t.Fatalf("payload mismatch: got %x want %x", decoded.Payload, m.Payload)
	}
}

func TestDecodeMessageMalformed(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"short", []byte{0xDA, 0xDA, 0xDA}},
		{"bad sync", []byte{0xDA, 0xDA, 0xDA, 0xDB, 0x08, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}},
		{"length mismatch", []byte{0xDA, 0xDA, 0xDA, 0xDA, 0x09, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeMessage(tt.buf); !errors.Is(err, proto.ErrMalformedFrame) {
				t.Fatalf("expected malformed frame error, got %v", err)
			}
		})
	}
}

func TestCommandID(t *testing.T) {
	m := NewCommand(CmdHello, make([]byte, 6))
	if m.ID != 0xFF01 {
		t.Fatalf("command id = %#04x, want 0xff01", m.ID)
	}
}

func TestMessageName(t *testing.T) {
	tests := []struct {
		id   uint16
		want string
	}{
		{EvDSRParamGet, "EV_DSR_PARAM_GET"},
		{CommandBase + CmdHelloReply, "CMD_HELLO_RPLY"},
		{0x4242, "UNKNOWN"},
		{CommandBase + 0xFE, "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := MessageName(tt.id); got != tt.want {
			t.Errorf("MessageName(%#04x) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestScannerConfigFrameLen(t *testing.T) {
	cfg := ScannerConfig()
	header := []byte{0xDA, 0xDA, 0xDA, 0xDA, 0x10, 0x00}
	if got := cfg.FrameLen(header); got != 20 {
		t.Fatalf("FrameLen = %d, want 20", got)
	}
}

func TestParameterAreaIERoundTrip(t *testing.T) {
	ie := &ParameterAreaIE{Type: ParamAreaTypeEEPROM, Offset: 0x20, Data: []byte{0x01}}

	decoded, err := DecodeParameterAreaIE(ie.appendTo(nil))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Type != ParamAreaTypeEEPROM || decoded.Offset != 0x20 || decoded.Length != 1 {
		t.Fatalf("decoded %+v", decoded)
	}
	if !bytes.Equal(decoded.Data, []byte{0x01}) {
		t.Fatalf("data = %x", decoded.Data)
	}
}

func TestParameterAreaIEReadRequest(t *testing.T) {
	ie := &ParameterAreaIE{Type: ParamAreaTypeRAM, Offset: 0x1000, Length: 64}

	decoded, err := DecodeParameterAreaIE(ie.appendTo(nil))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Length != 64 || len(decoded.Data) != 0 {
		t.Fatalf("length/data = %d/%x", decoded.Length, decoded.Data)
	}
}

func TestFindIESkipsLeadingElements(t *testing.T) {
	payload := (&ResponseIE{Result: 0}).appendTo(nil)
	payload = (&ParameterIE{ID: ParamRFPI, Data: []byte{1, 2, 3, 4, 5}}).appendTo(payload)

	ie, err := DecodeParameterIE(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ie.ID != ParamRFPI || !bytes.Equal(ie.Data, []byte{1, 2, 3, 4, 5}) {
		t.Fatalf("decoded %+v", ie)
	}
}
