package han

import (
	"bytes"
	"strings"
	"testing"
)

func crlf(s string) string {
	return strings.ReplaceAll(s, "\n", EOL)
}

const initResponse = `INIT_RES
 VERSION: 1

`

const openRegResponse = `OPEN_RES
 SUCCEED

`

const hwVersionResponse = `[SRV]
GET_TARGET_HW_VERSION_RES
 STATUS: SUCCEED
 HW_CHIP:  HW_CHIP_DCX81
 HW_CHIP_VERSION:  HW_CHIP_VERSION_C
 HW_BOARD:  HW_BOARD_MOD
 HW_COM_TYPE:  HW_COM_TYPE_USB

`

func TestParseMessageDefaultService(t *testing.T) {
	m, err := ParseMessage(crlf(initResponse))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Service != "[HAN]" {
		t.Fatalf("service = %q", m.Service)
	}
	if m.Name != "INIT_RES" {
		t.Fatalf("name = %q", m.Name)
	}
	if v, ok := m.Get("VERSION"); !ok || v != "1" {
		t.Fatalf("VERSION = %q, %v", v, ok)
	}
}

func TestParseMessageServicePrefix(t *testing.T) {
	m, err := ParseMessage(crlf(hwVersionResponse))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Service != "[SRV]" {
		t.Fatalf("service = %q", m.Service)
	}
	if m.Name != "GET_TARGET_HW_VERSION_RES" {
		t.Fatalf("name = %q", m.Name)
	}
	if v, _ := m.Get("HW_CHIP"); v != "HW_CHIP_DCX81" {
		t.Fatalf("HW_CHIP = %q", v)
	}
}

func TestParseMessageBareStatus(t *testing.T) {
	m, err := ParseMessage(crlf(openRegResponse))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !m.Succeeded() {
		t.Fatal("expected SUCCEED status")
	}
	if m.Failed() {
		t.Fatal("unexpected FAIL status")
	}
}

func TestMessageEncode(t *testing.T) {
	m := NewMessage("OPEN_REG").SetInt("TIME", 120)
	got := string(m.Encode())

	want := "[HAN]\r\nOPEN_REG\r\n TIME: 120\r\n\r\n"
	if got != want {
		t.Fatalf("encoded message %q, want %q", got, want)
	}
}

func TestMessageEncodeParseRoundTrip(t *testing.T) {
	m := NewServiceMessage("[SRV]", "GET_EEPROM_PARAM").Set("NAME", "RFPI")

	parsed, err := ParseMessage(string(m.Encode()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Service != "[SRV]" || parsed.Name != "GET_EEPROM_PARAM" {
		t.Fatalf("parsed %q %q", parsed.Service, parsed.Name)
	}
	if v, _ := parsed.Get("NAME"); v != "RFPI" {
		t.Fatalf("NAME = %q", v)
	}
}

func TestEncodeData(t *testing.T) {
	got := EncodeData([]byte{0x01, 0x0F, 0x13, 0xAB, 0x05, 0x06})
	want := "01 0F 13 AB 05 06"
	if got != want {
		t.Fatalf("EncodeData = %q, want %q", got, want)
	}
}

func TestDecodeData(t *testing.T) {
	data, err := DecodeData("48 65 6c 6c 6f")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(data, []byte("Hello")) {
		t.Fatalf("data = %q", data)
	}
}

func TestHexString(t *testing.T) {
	got, err := HexString("1 100 255")
	if err != nil {
		t.Fatalf("hexstring: %v", err)
	}
	if got != "0164ff" {
		t.Fatalf("HexString = %q, want 0164ff", got)
	}
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"DEV_TABLE", "DevTable"},
		{"OPEN_RES", "OpenRes"},
		{"FUN_MSG", "FunMsg"},
	}
	for _, tt := range tests {
		if got := CanonicalName(tt.in); got != tt.want {
			t.Errorf("CanonicalName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateEEPROMWrite(t *testing.T) {
	if err := ValidateEEPROMWrite("RFPI", 5); err != nil {
		t.Fatalf("RFPI write should be allowed: %v", err)
	}
	if err := ValidateEEPROMWrite("RFPI", 6); err == nil {
		t.Fatal("oversized RFPI write should fail")
	}
	if err := ValidateEEPROMWrite("MAX_TRANSFER_SIZE", 2); err == nil {
		t.Fatal("read-only parameter write should fail")
	}
	if err := ValidateEEPROMWrite("NO_SUCH_PARAM", 1); err == nil {
		t.Fatal("unknown parameter write should fail")
	}
}
