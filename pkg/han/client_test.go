package han

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dect-ule/ule-go/pkg/proto"
)

// fakeServer emulates the HAN server daemon on the far end of a pipe.
// respond maps each inbound message to zero or more reply strings.
func fakeServer(t *testing.T, respond func(m *Message) []string) *Client {
	t.Helper()

	near, far := net.Pipe()
	t.Cleanup(func() {
		near.Close()
		far.Close()
	})

	go func() {
		buf := make([]byte, maxDatagram)
		for {
			n, err := far.Read(buf)
			if err != nil {
				return
			}
			m, err := ParseMessage(string(buf[:n]))
			if err != nil {
				continue
			}
			for _, reply := range respond(m) {
				if _, err := far.Write([]byte(crlf(reply))); err != nil {
					return
				}
			}
		}
	}()

	c := NewClient(near, WithTimeout(500*time.Millisecond))
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientStart(t *testing.T) {
	c := fakeServer(t, func(m *Message) []string {
		if m.Name == "INIT" {
			return []string{"INIT_RES\n VERSION: 1\n\n"}
		}
		return nil
	})

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
}

func TestClientOpenReg(t *testing.T) {
	c := fakeServer(t, func(m *Message) []string {
		switch m.Name {
		case "INIT":
			return []string{"INIT_RES\n VERSION: 1\n\n"}
		case "OPEN_REG":
			if v, _ := m.Get("TIME"); v != "120" {
				return []string{"OPEN_RES\n FAIL\n\n"}
			}
			return []string{"OPEN_RES\n SUCCEED\n\n"}
		}
		return nil
	})

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	res, err := c.OpenReg(context.Background(), 2*time.Minute)
	if err != nil {
		t.Fatalf("open reg: %v", err)
	}
	if !res.Success {
		t.Fatal("open reg did not succeed")
	}
}

// pagedTable serves a device table of total devices in pages of the
// requested size, the shape the pagination loop has to walk.
func pagedTable(total int) func(m *Message) []string {
	return func(m *Message) []string {
		if m.Name == "INIT" {
			return []string{"INIT_RES\n VERSION: 1\n\n"}
		}
		if m.Name != "GET_DEV_TABLE_PHASE_2" {
			return nil
		}
		index, _ := m.GetInt("DEV_INDEX")
		count, _ := m.GetInt("HOW_MANY")

		var b strings.Builder
		n := 0
		for id := index; id < total && n < count; id++ {
			b.WriteString(" DEV_ID:  " + strconv.Itoa(id+1) + "\n")
			b.WriteString(" DEV_IPUI:  2 233 229 181 121\n")
			b.WriteString(" DEV_EMC:  235 15\n")
			b.WriteString(" NO_UNITS: 0\n")
			n++
		}
		head := "DEV_TABLE_PHASE_2\n DEV_INDEX: " + strconv.Itoa(index) +
			"\n NO_OF_DEVICES: " + strconv.Itoa(n) + "\n"
		return []string{head + b.String() + "\n"}
	}
}

func TestClientListDevicesPagination(t *testing.T) {
	c := fakeServer(t, pagedTable(7))

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	devices, err := c.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("list devices: %v", err)
	}
	if len(devices) != 7 {
		t.Fatalf("devices = %d, want 7", len(devices))
	}
	for i, dev := range devices {
		if dev.ID != i+1 {
			t.Fatalf("device %d has id %d", i, dev.ID)
		}
	}
}

func TestClientListDevicesEmpty(t *testing.T) {
	c := fakeServer(t, pagedTable(0))

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	devices, err := c.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("list devices: %v", err)
	}
	if len(devices) != 0 {
		t.Fatalf("devices = %d, want 0", len(devices))
	}
}

func TestClientKeepAliveHandledInternally(t *testing.T) {
	gotRes := make(chan struct{}, 1)
	leaked := make(chan struct{}, 1)

	c := fakeServer(t, func(m *Message) []string {
		switch m.Name {
		case "INIT":
			return []string{"INIT_RES\n VERSION: 1\n\n", "KEEP_ALIVE\n\n"}
		case "KEEP_ALIVE_RES":
			select {
			case gotRes <- struct{}{}:
			default:
			}
		}
		return nil
	})
	c.Subscribe("KEEP_ALIVE", func(ctx context.Context, m *Message) {
		select {
		case leaked <- struct{}{}:
		default:
		}
	})

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case <-gotRes:
	case <-time.After(2 * time.Second):
		t.Fatal("keep-alive was not answered")
	}
	select {
	case <-leaked:
		t.Fatal("keep-alive leaked to subscribers")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClientUnsolicitedRegistered(t *testing.T) {
	registered := make(chan *Message, 1)

	c := fakeServer(t, func(m *Message) []string {
		if m.Name == "INIT" {
			return []string{"INIT_RES\n VERSION: 1\n\n", "REG_CLOSED\n REASON: TIMEOUT\n\n"}
		}
		return nil
	})
	c.Subscribe("REG_CLOSED", func(ctx context.Context, m *Message) {
		select {
		case registered <- m:
		default:
		}
	})

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case m := <-registered:
		if v, _ := m.Get("REASON"); v != "TIMEOUT" {
			t.Fatalf("REASON = %q", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never saw REG_CLOSED")
	}
}

func TestClientReentrantCall(t *testing.T) {
	errCh := make(chan error, 1)

	c := fakeServer(t, func(m *Message) []string {
		if m.Name == "INIT" {
			return []string{"INIT_RES\n VERSION: 1\n\n", "DEV_REGISTERED\n DEV_ID: 4\n\n"}
		}
		return nil
	})
	c.Subscribe("DEV_REGISTERED", func(ctx context.Context, m *Message) {
		_, err := c.CloseReg(ctx)
		errCh <- err
	})

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, proto.ErrReentrantCall) {
			t.Fatalf("expected reentrant call error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never ran")
	}
}

func TestClientTimeout(t *testing.T) {
	c := fakeServer(t, func(m *Message) []string {
		if m.Name == "INIT" {
			return []string{"INIT_RES\n VERSION: 1\n\n"}
		}
		return nil
	})

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err := c.CloseReg(context.Background())
	if !errors.Is(err, proto.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestClientSendFunMsgCookie(t *testing.T) {
	seqs := make(chan string, 2)

	c := fakeServer(t, func(m *Message) []string {
		if m.Name == "FUN_MSG" {
			if v, ok := m.Get("MSG_SEQ"); ok {
				seqs <- v
			}
		}
		return nil
	})

	req := FunMsgRequest{DstDevID: 3, DstUnitID: 1, InterfaceID: 32534, InterfaceMember: 1, Data: []byte("on")}
	first, err := c.SendFunMsg(req)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	second, err := c.SendFunMsg(req)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if second != first+1 {
		t.Fatalf("cookies %d, %d should be sequential", first, second)
	}

	for _, want := range []uint32{first, second} {
		select {
		case got := <-seqs:
			if got != strconv.Itoa(int(want)) {
				t.Fatalf("MSG_SEQ = %s, want %d", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("FUN_MSG never arrived")
		}
	}
}
