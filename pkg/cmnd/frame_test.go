package cmnd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dect-ule/ule-go/pkg/proto"
)

func TestFrameEncode(t *testing.T) {
	f := NewFrame(0, ServiceSystem, MsgSysResetReq)
	got := f.Encode()

	want := []byte{
		0xDA, 0xDA, // sync
		0x00, 0x06, // length: 6 + 0 payload
		104,        // cookie
		0x00,       // unit
		0x02, 0x01, // service SYSTEM
		0x08, // message RESET_REQ
		0x00, // checksum
	}
	want[9] = 0x06 + 104 + 0x02 + 0x01 + 0x08

	if !bytes.Equal(got, want) {
		t.Fatalf("encoded frame\n got %x\nwant %x", got, want)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	f := NewFrame(3, ServiceParameters, MsgParamGetReq, &ParameterIE{Type: 1, ID: 2, Data: []byte{0xF0, 0xF1, 0xF2}})

	decoded, err := DecodeFrame(f.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Unit != 3 || decoded.Service != ServiceParameters || decoded.MsgID != MsgParamGetReq {
		t.Fatalf("envelope mismatch: %+v", decoded)
	}
	if !bytes.Equal(decoded.Payload, f.Payload) {
		t.Fatalf("payload mismatch: got %x want %x", decoded.Payload, f.Payload)
	}
}

func TestDecodeFrameChecksumMismatch(t *testing.T) {
	buf := NewFrame(0, ServiceSystem, MsgSysResetReq).Encode()
	buf[8] ^= 0x01 // corrupt the message id, not the checksum byte

	f, err := DecodeFrame(buf)
	if !errors.Is(err, proto.ErrChecksum) {
		t.Fatalf("expected checksum error, got %v", err)
	}
	if f == nil {
		t.Fatal("expected parsed envelope alongside the checksum error")
	}
	if f.Service != ServiceSystem {
		t.Fatalf("envelope service = %#04x", f.Service)
	}
}

func TestDecodeFrameMalformed(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"short", []byte{0xDA, 0xDA, 0x00}},
		{"bad sync", []byte{0xDA, 0xDB, 0x00, 0x06, 104, 0, 0x02, 0x01, 0x08, 0x15}},
		{"length mismatch", []byte{0xDA, 0xDA, 0x00, 0x07, 104, 0, 0x02, 0x01, 0x08, 0x15}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := DecodeFrame(tt.buf)
			if !errors.Is(err, proto.ErrMalformedFrame) {
				t.Fatalf("expected malformed frame error, got %v", err)
			}
			if f != nil {
				t.Fatal("expected nil frame")
			}
		})
	}
}

func TestFrameString(t *testing.T) {
	f := NewFrame(0, ServiceSystem, MsgSysResetReq)
	got := f.String()
	want := "SYSTEM<0x0201> RESET_REQ<0x08>"
	if got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestScannerConfigFrameLen(t *testing.T) {
	cfg := ScannerConfig()
	header := []byte{0xDA, 0xDA, 0x00, 0x09}
	if got := cfg.FrameLen(header); got != 13 {
		t.Fatalf("FrameLen = %d, want 13", got)
	}
}

func TestServiceName(t *testing.T) {
	tests := []struct {
		id   uint16
		want string
	}{
		{0x0000, "GENERAL"},
		{0x0001, "DEVICE_MANAGEMENT"},
		{0xFFFF, "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := ServiceName(tt.id); got != tt.want {
			t.Errorf("ServiceName(%#04x) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestMessageName(t *testing.T) {
	tests := []struct {
		service uint16
		msgID   uint8
		want    string
	}{
		{ServiceGeneral, 0x00, "UNKNOWN"},
		{ServiceGeneral, 0x05, "HELLO_IND"},
		{ServiceSystem, 0x08, "RESET_REQ"},
	}
	for _, tt := range tests {
		if got := MessageName(tt.service, tt.msgID); got != tt.want {
			t.Errorf("MessageName(%#04x, %#02x) = %q, want %q", tt.service, tt.msgID, got, tt.want)
		}
	}
}
