package han

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dect-ule/ule-go/pkg/call"
	"github.com/dect-ule/ule-go/pkg/log"
	"github.com/dect-ule/ule-go/pkg/proto"
)

// DefaultTimeout bounds a request/response round trip.
const DefaultTimeout = 4 * time.Second

// DefaultPageSize is how many devices a single table request asks for.
const DefaultPageSize = 5

// maxDatagram is the largest HAN server datagram we accept.
const maxDatagram = 4096

// DeleteMode selects how a device is removed from the registration table.
type DeleteMode string

const (
	// DeleteBlackList blacklists the device first and completes the
	// deletion with a handshake the next time the device makes contact.
	DeleteBlackList DeleteMode = "BLACK_LIST"

	// DeleteLocal drops the table entry immediately without involving the
	// device; the device will keep trying to contact the base.
	DeleteLocal DeleteMode = "LOCAL"
)

// Handler consumes a parsed inbound message. Handlers run on the receive
// goroutine under a dispatch context and must not issue blocking calls.
type Handler func(ctx context.Context, m *Message)

// Client talks to the HAN server over its UDP socket. One background
// goroutine owns all reads; any goroutine may issue requests.
type Client struct {
	transport proto.Transport
	connID    string
	logger    log.Logger
	timeout   time.Duration

	waiters *call.Table[string, *Message]
	cookie  atomic.Uint32

	writeMu sync.Mutex

	mu          sync.Mutex
	rawHook     proto.RawHook
	subscribers map[string][]Handler

	startOnce sync.Once
	closeOnce sync.Once
	done      chan struct{}
}

// Option configures a Client.
type Option func(*Client)

// WithLogger installs a trace logger.
func WithLogger(l log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a client on t. Nothing is read from the socket until
// Start registers with the server.
func NewClient(t proto.Transport, opts ...Option) *Client {
	c := &Client{
		transport:   t,
		connID:      uuid.New().String(),
		logger:      log.NoopLogger{},
		timeout:     DefaultTimeout,
		waiters:     call.NewTable[string, *Message](),
		subscribers: make(map[string][]Handler),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConnectionID returns the unique identifier of this connection.
func (c *Client) ConnectionID() string {
	return c.connID
}

// Close shuts down the client and its transport. Blocked callers fail with
// proto.ErrClosed.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.transport.Close()
	})
	return err
}

// SetRawHook installs an observer for raw inbound datagrams. Pass nil to
// remove it. The hook runs on the receive goroutine.
func (c *Client) SetRawHook(hook proto.RawHook) {
	c.mu.Lock()
	c.rawHook = hook
	c.mu.Unlock()
}

// Subscribe registers a callback for every inbound message with the given
// name that no blocked caller consumed. Callbacks run on the receive
// goroutine.
func (c *Client) Subscribe(name string, h Handler) {
	name = canonicalKey(name)
	c.mu.Lock()
	c.subscribers[name] = append(c.subscribers[name], h)
	c.mu.Unlock()
}

func canonicalKey(name string) string {
	// Wire names are uppercase; accept any casing from callers.
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if 'a' <= ch && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		out[i] = ch
	}
	return string(out)
}

// Start registers with the HAN server by sending INIT and starts the
// receive goroutine. The send must come first so the UDP socket has a
// bound address for the server to answer to.
func (c *Client) Start(ctx context.Context) error {
	if call.InDispatch(ctx) {
		return proto.ErrReentrantCall
	}

	ch, cancel := c.waiters.Register("INIT_RES")
	defer cancel()

	msg := NewMessage("INIT").Set("VERSION", "1")
	if err := c.Send(msg); err != nil {
		return err
	}

	c.startOnce.Do(func() {
		go c.readLoop()
	})

	return c.await(ctx, ch, func(*Message) error { return nil })
}

func (c *Client) readLoop() {
	buf := make([]byte, maxDatagram)
	ctx := call.WithDispatch(context.Background())

	for {
		n, err := c.transport.Read(buf)
		if err != nil {
			select {
			case <-c.done:
			default:
				c.logError(err, "read")
			}
			return
		}
		data := make([]byte, n)
		copy(data, buf[:n])

		c.mu.Lock()
		hook := c.rawHook
		c.mu.Unlock()
		if hook != nil {
			hook(data)
		}
		c.logFrame(log.DirectionIn, data)

		m, err := ParseMessage(string(data))
		if err != nil {
			c.logError(err, "parse")
			continue
		}
		c.logMessage(log.DirectionIn, m)

		c.dispatch(ctx, m)
	}
}

func (c *Client) dispatch(ctx context.Context, m *Message) {
	// The keep-alive probe is answered internally; it never reaches
	// waiters or subscribers.
	if m.Service == DefaultService && m.Name == "KEEP_ALIVE" {
		if err := c.Send(NewMessage("KEEP_ALIVE_RES")); err != nil {
			c.logError(err, "keep-alive response")
		}
		return
	}

	if c.waiters.Deliver(m.Name, m) {
		return
	}

	c.mu.Lock()
	subscribers := make([]Handler, len(c.subscribers[m.Name]))
	copy(subscribers, c.subscribers[m.Name])
	c.mu.Unlock()

	for _, s := range subscribers {
		s(ctx, m)
	}
}

// Send writes a message without expecting a response.
func (c *Client) Send(m *Message) error {
	data := m.Encode()

	c.writeMu.Lock()
	_, err := c.transport.Write(data)
	c.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("send %s: %w", m.Name, err)
	}

	c.logFrame(log.DirectionOut, data)
	c.logMessage(log.DirectionOut, m)
	return nil
}

// SendAndWait sends a message and blocks until a message named respName
// arrives, the context is cancelled, or the timeout expires. Calling it
// from a subscriber fails with proto.ErrReentrantCall.
func (c *Client) SendAndWait(ctx context.Context, m *Message, respName string) (*Message, error) {
	if call.InDispatch(ctx) {
		return nil, proto.ErrReentrantCall
	}
	select {
	case <-c.done:
		return nil, proto.ErrClosed
	default:
	}

	ch, cancel := c.waiters.Register(canonicalKey(respName))
	defer cancel()

	if err := c.Send(m); err != nil {
		return nil, err
	}

	var resp *Message
	err := c.await(ctx, ch, func(m *Message) error {
		resp = m
		return nil
	})
	return resp, err
}

func (c *Client) await(ctx context.Context, ch <-chan *Message, accept func(*Message) error) error {
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case m := <-ch:
		return accept(m)
	case <-timer.C:
		return proto.ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return proto.ErrClosed
	}
}

// OpenReg opens the registration window for the given duration.
func (c *Client) OpenReg(ctx context.Context, duration time.Duration) (*OpenRes, error) {
	msg := NewMessage("OPEN_REG").SetInt("TIME", int(duration.Seconds()))
	resp, err := c.SendAndWait(ctx, msg, "OPEN_RES")
	if err != nil {
		return nil, err
	}
	return DecodeOpenRes(resp)
}

// CloseReg closes the registration window.
func (c *Client) CloseReg(ctx context.Context) (*CloseRes, error) {
	resp, err := c.SendAndWait(ctx, NewMessage("CLOSE_REG"), "CLOSE_RES")
	if err != nil {
		return nil, err
	}
	return DecodeCloseRes(resp)
}

// GetDevTable fetches one page of the registered device table starting at
// index. phase2 selects the extended table with ULE capability fields.
func (c *Client) GetDevTable(ctx context.Context, index, count int, phase2 bool) (*DevTable, error) {
	name, respName := "GET_DEV_TABLE", "DEV_TABLE"
	if phase2 {
		name, respName = "GET_DEV_TABLE_PHASE_2", "DEV_TABLE_PHASE_2"
	}
	msg := NewMessage(name).SetInt("DEV_INDEX", index).SetInt("HOW_MANY", count)
	resp, err := c.SendAndWait(ctx, msg, respName)
	if err != nil {
		return nil, err
	}
	return DecodeDevTable(resp)
}

// GetBlackListDevTable fetches one page of the blacklisted device table.
func (c *Client) GetBlackListDevTable(ctx context.Context, index, count int) (*DevTable, error) {
	msg := NewMessage("GET_BLACK_LIST_DEV_TABLE").SetInt("DEV_INDEX", index).SetInt("HOW_MANY", count)
	resp, err := c.SendAndWait(ctx, msg, "BLACK_LIST_DEV_TABLE")
	if err != nil {
		return nil, err
	}
	return DecodeDevTable(resp)
}

// ListDevices pages through the whole registered device table. A page
// returning fewer devices than requested marks the end.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	return c.collect(ctx, func(ctx context.Context, index int) (*DevTable, error) {
		return c.GetDevTable(ctx, index, DefaultPageSize, true)
	})
}

// ListBlacklisted pages through the whole blacklisted device table.
func (c *Client) ListBlacklisted(ctx context.Context) ([]Device, error) {
	return c.collect(ctx, func(ctx context.Context, index int) (*DevTable, error) {
		return c.GetBlackListDevTable(ctx, index, DefaultPageSize)
	})
}

func (c *Client) collect(ctx context.Context, page func(ctx context.Context, index int) (*DevTable, error)) ([]Device, error) {
	var devices []Device
	for index := 0; ; index += DefaultPageSize {
		table, err := page(ctx, index)
		if err != nil {
			return nil, err
		}
		devices = append(devices, table.Devices...)
		if len(table.Devices) < DefaultPageSize {
			return devices, nil
		}
	}
}

// GetDevInfo fetches the details of one registered device.
func (c *Client) GetDevInfo(ctx context.Context, deviceID int, phase2 bool) (*DevInfo, error) {
	name, respName := "GET_DEV_INFO", "DEV_INFO"
	if phase2 {
		name, respName = "GET_DEV_INFO_PHASE_2", "DEV_INFO_PHASE_2"
	}
	msg := NewMessage(name).SetInt("DEV_ID", deviceID)
	resp, err := c.SendAndWait(ctx, msg, respName)
	if err != nil {
		return nil, err
	}
	return DecodeDevInfo(resp)
}

// DeleteDev asks the server to remove a device from the registration
// table. There is no immediate response; the server announces completion
// with a DEV_DELETED message once the deletion went through.
func (c *Client) DeleteDev(deviceID int, mode DeleteMode) error {
	msg := NewMessage("DELETE_DEV").SetInt("DEV_ID", deviceID).Set("DEL_TYPE", string(mode))
	return c.Send(msg)
}

// FunMsgRequest describes an outbound FUN message.
type FunMsgRequest struct {
	SrcDevID        int
	SrcUnitID       int
	DstDevID        int
	DstUnitID       int
	MsgType         int // defaults to 1 (command)
	InterfaceType   int // 0 server, 1 client
	InterfaceID     int
	InterfaceMember int // attribute index or command id
	Data            []byte
}

// SendFunMsg sends a FUN message to a device and returns the sequence
// cookie stamped on it, which later matches the FUN_MSG_RES confirmation.
func (c *Client) SendFunMsg(req FunMsgRequest) (uint32, error) {
	cookie := c.cookie.Add(1) - 1

	msgType := req.MsgType
	if msgType == 0 {
		msgType = 1
	}

	msg := NewMessage("FUN_MSG").
		SetInt("SRC_DEV_ID", req.SrcDevID).
		SetInt("SRC_UNIT_ID", req.SrcUnitID).
		SetInt("DST_DEV_ID", req.DstDevID).
		SetInt("DST_UNIT_ID", req.DstUnitID).
		Set("DEST_ADDRESS_TYPE", "0").
		Set("MSG_TRANSPORT", "0").
		SetInt("MSG_SEQ", int(cookie)).
		SetInt("MSGTYPE", msgType).
		SetInt("INTRF_TYPE", req.InterfaceType).
		SetInt("INTRF_ID", req.InterfaceID).
		SetInt("INTRF_MEMBER", req.InterfaceMember).
		SetInt("DATALEN", len(req.Data))
	if len(req.Data) > 0 {
		msg.Set("DATA", EncodeData(req.Data))
	}

	if err := c.Send(msg); err != nil {
		return 0, err
	}
	return cookie, nil
}

// NumMsgInQueue asks the debug service how many FUN messages are queued
// for a device.
func (c *Client) NumMsgInQueue(ctx context.Context, deviceID int) (int, error) {
	msg := NewServiceMessage("[DBG]", "GET_NUM_OF_FUN_MSG_IN_Q").SetInt("DEV_ID", deviceID)
	resp, err := c.SendAndWait(ctx, msg, "GET_NUM_OF_FUN_MSG_IN_Q_RES")
	if err != nil {
		return 0, err
	}
	return resp.GetInt("NUM_OF_MSG")
}

// CallRelease hangs up a voice call. There is no response.
func (c *Client) CallRelease(callID int) error {
	msg := NewServiceMessage("[CALL]", "CALL_RELEASE").SetInt("CALL_ID", callID)
	return c.Send(msg)
}

// GetSWVersion queries the HAN server's software version information.
func (c *Client) GetSWVersion(ctx context.Context) (*Message, error) {
	msg := NewServiceMessage("[SRV]", "GET_SW_VERSION")
	return c.SendAndWait(ctx, msg, "GET_SW_VERSION_RES")
}

// GetHWVersion queries the target hardware version information.
func (c *Client) GetHWVersion(ctx context.Context) (*Message, error) {
	msg := NewServiceMessage("[SRV]", "GET_TARGET_HW_VERSION")
	return c.SendAndWait(ctx, msg, "GET_TARGET_HW_VERSION_RES")
}

// GetEEPROMParam reads a named EEPROM parameter through the server
// service.
func (c *Client) GetEEPROMParam(ctx context.Context, name string) (*Message, error) {
	msg := NewServiceMessage("[SRV]", "GET_EEPROM_PARAM").Set("NAME", name)
	return c.SendAndWait(ctx, msg, "GET_EEPROM_PARAM_RES")
}

// SetEEPROMParam writes a named EEPROM parameter through the server
// service. The value is the parameter's hex presentation.
func (c *Client) SetEEPROMParam(ctx context.Context, name, value string) (*Message, error) {
	msg := NewServiceMessage("[SRV]", "SET_EEPROM_PARAM").Set("NAME", name).Set("DATA", value)
	return c.SendAndWait(ctx, msg, "SET_EEPROM_PARAM_RES")
}

func (c *Client) logFrame(dir log.Direction, data []byte) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Protocol:     log.ProtocolHAN,
		Direction:    dir,
		Frame:        &log.FrameEvent{Size: len(data), Data: data},
	})
}

func (c *Client) logMessage(dir log.Direction, m *Message) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Protocol:     log.ProtocolHAN,
		Direction:    dir,
		Message: &log.MessageEvent{
			Service: m.Service,
			Name:    m.Name,
			Fields:  len(m.Params),
		},
	})
}

func (c *Client) logError(err error, context string) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Protocol:     log.ProtocolHAN,
		Direction:    log.DirectionIn,
		Error:        &log.ErrorEvent{Message: err.Error(), Context: context},
	})
}
