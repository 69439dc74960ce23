package log

import (
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"
)

func sampleEvent() Event {
	return Event{
		Timestamp:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		ConnectionID: "7f2d8e1a-9c4b-4f3d-8a6e-1b2c3d4e5f60",
		Protocol:     ProtocolCMND,
		Direction:    DirectionIn,
		RemoteAddr:   "/dev/ttyUSB0",
		Frame:        &FrameEvent{Size: 10, Data: []byte{0xDA, 0xDA, 0x00, 0x06}},
	}
}

func TestEventRoundTrip(t *testing.T) {
	want := sampleEvent()

	data, err := EncodeEvent(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !got.Timestamp.Equal(want.Timestamp) {
		t.Fatalf("timestamp = %v, want %v", got.Timestamp, want.Timestamp)
	}
	if got.ConnectionID != want.ConnectionID || got.Protocol != want.Protocol || got.Direction != want.Direction {
		t.Fatalf("envelope = %+v", got)
	}
	if got.Frame == nil || got.Frame.Size != 10 {
		t.Fatalf("frame = %+v", got.Frame)
	}
}

func TestFileLoggerAndReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ule.trace")

	l, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("new file logger: %v", err)
	}

	first := sampleEvent()
	second := sampleEvent()
	second.Direction = DirectionOut
	second.Frame = nil
	second.Message = &MessageEvent{Service: "SYSTEM", Name: "RESET_REQ", ID: 0x0208}

	l.Log(first)
	l.Log(second)
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	r, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	events, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Frame == nil || events[1].Message == nil {
		t.Fatalf("payloads = %+v / %+v", events[0], events[1])
	}
	if events[1].Message.Name != "RESET_REQ" {
		t.Fatalf("message name = %q", events[1].Message.Name)
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ule.trace")

	for i := 0; i < 2; i++ {
		l, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("new file logger: %v", err)
		}
		l.Log(sampleEvent())
		l.Close()
	}

	r, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	events, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2 across reopens", len(events))
	}
}

func TestReaderNextEOF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ule.trace")

	l, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("new file logger: %v", err)
	}
	l.Log(sampleEvent())
	l.Close()

	r, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	if _, err := r.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestMultiLoggerFansOut(t *testing.T) {
	var a, b recording

	m := NewMultiLogger(&a, &b)
	m.Log(sampleEvent())

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("fan out = %d/%d", len(a.events), len(b.events))
	}
}

type recording struct {
	events []Event
}

func (r *recording) Log(event Event) {
	r.events = append(r.events, event)
}

func TestProtocolString(t *testing.T) {
	tests := []struct {
		p    Protocol
		want string
	}{
		{ProtocolHAN, "HAN"},
		{ProtocolCMBS, "CMBS"},
		{ProtocolCMND, "CMND"},
		{Protocol(9), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("Protocol(%d).String() = %q, want %q", tt.p, got, tt.want)
		}
	}
}
