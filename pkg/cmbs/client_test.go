package cmbs

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/dect-ule/ule-go/pkg/proto"
	"github.com/dect-ule/ule-go/pkg/stream"
)

// fakeBase emulates a CMBS base station on the far end of a pipe.
func fakeBase(t *testing.T, respond func(m *Message) []*Message) *Client {
	t.Helper()

	near, far := net.Pipe()
	t.Cleanup(func() {
		near.Close()
		far.Close()
	})

	go func() {
		scanner := stream.NewScanner(far, ScannerConfig())
		for {
			raw, err := scanner.ReadFrame(0)
			if err != nil {
				return
			}
			m, err := DecodeMessage(raw)
			if err != nil {
				continue
			}
			for _, reply := range respond(m) {
				if _, err := far.Write(reply.Encode()); err != nil {
					return
				}
			}
		}
	}()

	c := NewClient(near, WithTimeout(500*time.Millisecond))
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientHello(t *testing.T) {
	c := fakeBase(t, func(m *Message) []*Message {
		switch m.ID {
		case CommandBase + CmdHello:
			payload := make([]byte, 5)
			binary.LittleEndian.PutUint16(payload[0:2], 0x0312)
			binary.LittleEndian.PutUint16(payload[2:4], 77)
			payload[4] = 1
			return []*Message{{ID: CommandBase + CmdHelloReply, Payload: payload}}
		case CommandBase + CmdCapabilities:
			if !bytes.Equal(m.Payload, []byte{0x04, 0x00, 0x00, 0x00, 0x00}) {
				return nil
			}
			return []*Message{{ID: CommandBase + CmdCapabilitiesRpl}}
		}
		return nil
	})

	info, err := c.Hello(context.Background())
	if err != nil {
		t.Fatalf("hello: %v", err)
	}
	if info.APIVersion != 0x0312 || info.Build != 77 || info.Mode != 1 {
		t.Fatalf("target info %+v", info)
	}
	if info.Bootloader() {
		t.Fatal("firmware version flagged as bootloader")
	}
}

func TestClientGetParam(t *testing.T) {
	c := fakeBase(t, func(m *Message) []*Message {
		if m.ID != EvDSRParamGet {
			return nil
		}
		req, err := DecodeParameterIE(m.Payload)
		if err != nil {
			return nil
		}
		return []*Message{NewMessage(EvDSRParamGetRes,
			&ResponseIE{Result: 0},
			&ParameterIE{ID: req.ID, Data: []byte{0xAB, 0xCD}},
		)}
	})

	data, err := c.GetParam(context.Background(), ParamRXTUN)
	if err != nil {
		t.Fatalf("get param: %v", err)
	}
	if !bytes.Equal(data, []byte{0xAB, 0xCD}) {
		t.Fatalf("data = %x", data)
	}
}

func TestClientParamAreaMismatchedOffset(t *testing.T) {
	c := fakeBase(t, func(m *Message) []*Message {
		if m.ID != EvDSRParamAreaGet {
			return nil
		}
		return []*Message{NewMessage(EvDSRParamAreaGetRes,
			&ResponseIE{Result: 0},
			&ParameterAreaIE{Type: ParamAreaTypeEEPROM, Offset: 0x99, Data: []byte{0x00}},
		)}
	})

	_, err := c.ReadEEPROM(context.Background(), 0x20, 1)
	if !errors.Is(err, proto.ErrFieldDecode) {
		t.Fatalf("expected field decode error for mismatched offset, got %v", err)
	}
}

func TestClientDeviceError(t *testing.T) {
	c := fakeBase(t, func(m *Message) []*Message {
		if m.ID != EvDSRParamSet {
			return nil
		}
		return []*Message{NewMessage(EvDSRParamSetRes, &ResponseIE{Result: 0x11})}
	})

	err := c.SetParam(context.Background(), ParamCountry, []byte{0x07})
	var respErr *proto.ResponseError
	if !errors.As(err, &respErr) || respErr.Code != 0x11 {
		t.Fatalf("expected ResponseError 0x11, got %v", err)
	}
}

func TestClientUnsolicitedStatus(t *testing.T) {
	got := make(chan *Message, 1)

	c := fakeBase(t, func(m *Message) []*Message {
		return []*Message{NewMessage(EvDSRSysStatus)}
	})
	c.Subscribe(func(ctx context.Context, m *Message) {
		select {
		case got <- m:
		default:
		}
	})

	if err := c.Send(NewMessage(EvDSRSysLogStart)); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case m := <-got:
		if m.ID != EvDSRSysStatus {
			t.Fatalf("unexpected message %v", m)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never saw the status event")
	}
}

func TestClientInternalHandlerConsumes(t *testing.T) {
	handled := make(chan struct{}, 1)
	leaked := make(chan struct{}, 1)

	c := fakeBase(t, func(m *Message) []*Message {
		return []*Message{NewMessage(EvDSRSysLog)}
	})
	c.Handle(EvDSRSysLog, func(ctx context.Context, m *Message) {
		select {
		case handled <- struct{}{}:
		default:
		}
	})
	c.Subscribe(func(ctx context.Context, m *Message) {
		select {
		case leaked <- struct{}{}:
		default:
		}
	})

	if err := c.Send(NewMessage(EvDSRSysLogStart)); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		t.Fatal("internal handler never ran")
	}
	select {
	case <-leaked:
		t.Fatal("handled message leaked to subscribers")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClientTimeout(t *testing.T) {
	c := fakeBase(t, func(m *Message) []*Message { return nil })

	if err := c.Start(context.Background()); !errors.Is(err, proto.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}
