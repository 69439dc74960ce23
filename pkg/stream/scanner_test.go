package stream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/dect-ule/ule-go/pkg/proto"
)

// testConfig frames as `DA DA | u16-BE payload length | payload`.
func testConfig() Config {
	return Config{
		Sync:       []byte{0xDA, 0xDA},
		HeaderSize: 4,
		FrameLen: func(header []byte) int {
			return 4 + int(binary.BigEndian.Uint16(header[2:4]))
		},
	}
}

func frame(payload []byte) []byte {
	buf := []byte{0xDA, 0xDA, 0x00, 0x00}
	binary.BigEndian.PutUint16(buf[2:4], uint16(len(payload)))
	return append(buf, payload...)
}

func TestReadFrameClean(t *testing.T) {
	want := frame([]byte{1, 2, 3})
	s := NewScanner(bytes.NewReader(want), testConfig())

	got, err := s.ReadFrame(0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("frame = %x, want %x", got, want)
	}
}

func TestReadFrameDiscardsGarbage(t *testing.T) {
	garbage := []byte{0x00, 0xFF, 0xDA, 0x17} // includes a lone sync byte
	want := frame([]byte{9})

	s := NewScanner(bytes.NewReader(append(garbage, want...)), testConfig())

	got, err := s.ReadFrame(0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("frame = %x, want %x", got, want)
	}
}

func TestReadFrameBogusLengthResyncs(t *testing.T) {
	// A sync marker whose declared length exceeds the cap must be shed
	// byte by byte until the real frame lines up.
	bogus := []byte{0xDA, 0xDA, 0xFF, 0xFF}
	want := frame([]byte{4, 2})

	s := NewScanner(bytes.NewReader(append(bogus, want...)), testConfig())

	got, err := s.ReadFrame(0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("frame = %x, want %x", got, want)
	}
}

func TestReadFrameBackToBack(t *testing.T) {
	first := frame([]byte{1})
	second := frame([]byte{2, 2})

	s := NewScanner(bytes.NewReader(append(append([]byte{}, first...), second...)), testConfig())

	got, err := s.ReadFrame(0)
	if err != nil {
		t.Fatalf("read first: %v", err)
	}
	if !bytes.Equal(got, first) {
		t.Fatalf("first frame = %x", got)
	}

	got, err = s.ReadFrame(0)
	if err != nil {
		t.Fatalf("read second: %v", err)
	}
	if !bytes.Equal(got, second) {
		t.Fatalf("second frame = %x", got)
	}
}

func TestReadFrameSplitAcrossReads(t *testing.T) {
	want := frame([]byte{1, 2, 3, 4})

	near, far := net.Pipe()
	defer near.Close()
	defer far.Close()

	go func() {
		far.Write(want[:3])
		time.Sleep(10 * time.Millisecond)
		far.Write(want[3:])
	}()

	s := NewScanner(near, testConfig())
	got, err := s.ReadFrame(time.Second)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("frame = %x, want %x", got, want)
	}
}

func TestReadFrameTimeout(t *testing.T) {
	near, far := net.Pipe()
	defer near.Close()
	defer far.Close()

	s := NewScanner(near, testConfig())
	_, err := s.ReadFrame(50 * time.Millisecond)
	if !errors.Is(err, proto.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestReadFrameEOF(t *testing.T) {
	s := NewScanner(bytes.NewReader(nil), testConfig())
	if _, err := s.ReadFrame(0); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestNewScannerInvalidConfig(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for config without sync marker")
		}
	}()
	NewScanner(bytes.NewReader(nil), Config{HeaderSize: 4, FrameLen: func([]byte) int { return 4 }})
}
