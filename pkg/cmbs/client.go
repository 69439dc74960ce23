package cmbs

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dect-ule/ule-go/pkg/call"
	"github.com/dect-ule/ule-go/pkg/log"
	"github.com/dect-ule/ule-go/pkg/proto"
	"github.com/dect-ule/ule-go/pkg/stream"
)

// DefaultTimeout bounds a request/response round trip.
const DefaultTimeout = 4 * time.Second

// capabilitiesNoChecksum requests the target to run without trailing frame
// checksums. Set the last byte to 0x01 to enable them.
var capabilitiesNoChecksum = []byte{0x04, 0x00, 0x00, 0x00, 0x00}

// Handler consumes a decoded inbound message. Handlers run on the receive
// goroutine under a dispatch context and must not issue blocking calls.
type Handler func(ctx context.Context, m *Message)

type result struct {
	msg *Message
	err error
}

// TargetInfo describes the base station as reported by the hello reply.
type TargetInfo struct {
	APIVersion uint16
	Build      uint16
	Mode       uint8
}

// Bootloader reports whether the target is still in its bootloader rather
// than the full firmware.
func (ti TargetInfo) Bootloader() bool {
	return ti.APIVersion == 0x0001
}

// Client drives the CMBS protocol to a base station over a serial
// transport. One background goroutine owns all reads; any goroutine may
// issue requests.
type Client struct {
	transport proto.Transport
	connID    string
	logger    log.Logger
	timeout   time.Duration

	waiters *call.Table[uint16, result]

	writeMu sync.Mutex

	mu          sync.Mutex
	rawHook     proto.RawHook
	handlers    map[uint16]Handler
	subscribers []Handler

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

// NewClient creates a client on t and starts its receive goroutine. The
// caller should follow up with Hello to register with the target.
func NewClient(t proto.Transport, opts ...Option) *Client {
	c := &Client{
		transport: t,
		connID:    uuid.New().String(),
		logger:    log.NoopLogger{},
		timeout:   DefaultTimeout,
		waiters:   call.NewTable[uint16, result](),
		handlers:  make(map[uint16]Handler),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.readLoop()
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

// SetRawHook installs an observer for raw inbound packet bytes. Pass nil to
// remove it. The hook runs on the receive goroutine.
func (c *Client) SetRawHook(hook proto.RawHook) {
	c.mu.Lock()
	c.rawHook = hook
	c.mu.Unlock()
}

// Handle installs an internal handler for a message id. A handled message
// is consumed: it reaches neither waiters nor subscribers.
func (c *Client) Handle(id uint16, h Handler) {
	c.mu.Lock()
	c.handlers[id] = h
	c.mu.Unlock()
}

// Subscribe registers a callback for inbound messages nobody was waiting
// for, such as status and log events. Callbacks run on the receive
// goroutine.
func (c *Client) Subscribe(h Handler) {
	c.mu.Lock()
	c.subscribers = append(c.subscribers, h)
	c.mu.Unlock()
}

func (c *Client) readLoop() {
	scanner := stream.NewScanner(c.transport, ScannerConfig())
	ctx := call.WithDispatch(context.Background())

	for {
		raw, err := scanner.ReadFrame(0)
		if err != nil {
			select {
			case <-c.done:
			default:
				c.logError(err, "read")
			}
			return
		}

		c.mu.Lock()
		hook := c.rawHook
		c.mu.Unlock()
		if hook != nil {
			hook(raw)
		}
		c.logFrame(log.DirectionIn, raw)

		m, err := DecodeMessage(raw)
		if err != nil {
			c.logError(err, "decode")
			continue
		}
		c.logMessage(log.DirectionIn, m)

		c.dispatch(ctx, m)
	}
}

func (c *Client) dispatch(ctx context.Context, m *Message) {
	c.mu.Lock()
	handler := c.handlers[m.ID]
	subscribers := make([]Handler, len(c.subscribers))
	copy(subscribers, c.subscribers)
	c.mu.Unlock()

	if handler != nil {
		handler(ctx, m)
		return
	}
	if c.waiters.Deliver(m.ID, result{msg: m}) {
		return
	}
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
		return fmt.Errorf("write packet: %w", err)
	}

	c.logFrame(log.DirectionOut, data)
	c.logMessage(log.DirectionOut, m)
	return nil
}

// SendAndWait sends a message and blocks until the message with id expect
// arrives, the context is cancelled, or the timeout expires. Calling it
// from a handler or subscriber fails with proto.ErrReentrantCall.
func (c *Client) SendAndWait(ctx context.Context, m *Message, expect uint16) (*Message, error) {
	if call.InDispatch(ctx) {
		return nil, proto.ErrReentrantCall
	}
	select {
	case <-c.done:
		return nil, proto.ErrClosed
	default:
	}

	ch, cancel := c.waiters.Register(expect)
	defer cancel()

	if err := c.Send(m); err != nil {
		return nil, err
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		return res.msg, nil
	case <-timer.C:
		return nil, proto.ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, proto.ErrClosed
	}
}

// request is SendAndWait plus the result-code check shared by the
// confirmed operations.
func (c *Client) request(ctx context.Context, m *Message, expect uint16) (*Message, error) {
	resp, err := c.SendAndWait(ctx, m, expect)
	if err != nil {
		return nil, err
	}
	ie, err := DecodeResponseIE(resp.Payload)
	if err != nil {
		return nil, err
	}
	if err := ie.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

// Hello registers with the base station and negotiates capabilities with
// frame checksums disabled. It returns what the target reported about
// itself.
func (c *Client) Hello(ctx context.Context) (TargetInfo, error) {
	hello := NewCommand(CmdHello, make([]byte, 6))
	reply, err := c.SendAndWait(ctx, hello, CommandBase+CmdHelloReply)
	if err != nil {
		return TargetInfo{}, err
	}

	var info TargetInfo
	if len(reply.Payload) >= 5 {
		info.APIVersion = binary.LittleEndian.Uint16(reply.Payload[0:2])
		info.Build = binary.LittleEndian.Uint16(reply.Payload[2:4])
		info.Mode = reply.Payload[4]
	}

	caps := NewCommand(CmdCapabilities, capabilitiesNoChecksum)
	if _, err := c.SendAndWait(ctx, caps, CommandBase+CmdCapabilitiesRpl); err != nil {
		return TargetInfo{}, err
	}
	return info, nil
}

// Start launches the base station stack after parameters are set.
func (c *Client) Start(ctx context.Context) error {
	_, err := c.SendAndWait(ctx, NewMessage(EvDSRSysStart), EvDSRSysStartRes)
	return err
}

// Reset reboots the target. The base drops the link without answering, so
// the caller must reconnect and redo the hello handshake afterwards.
func (c *Client) Reset() error {
	return c.Send(NewCommand(CmdReset, nil))
}

// GetParam reads a parameter by identifier.
func (c *Client) GetParam(ctx context.Context, id uint8) ([]byte, error) {
	m := NewMessage(EvDSRParamGet, &ParameterIE{ID: id})
	resp, err := c.request(ctx, m, EvDSRParamGetRes)
	if err != nil {
		return nil, err
	}

	ie, err := DecodeParameterIE(resp.Payload)
	if err != nil {
		return nil, err
	}
	if ie.ID != id || ie.Type != 0 {
		return nil, fmt.Errorf("parameter response for id %d type %d, requested %d: %w",
			ie.ID, ie.Type, id, proto.ErrFieldDecode)
	}
	return ie.Data, nil
}

// SetParam writes a parameter by identifier.
func (c *Client) SetParam(ctx context.Context, id uint8, data []byte) error {
	m := NewMessage(EvDSRParamSet, &ParameterIE{ID: id, Data: data})
	_, err := c.request(ctx, m, EvDSRParamSetRes)
	return err
}

// GetParamArea reads length bytes at offset from the given storage area.
func (c *Client) GetParamArea(ctx context.Context, area uint8, offset uint32, length uint16) ([]byte, error) {
	m := NewMessage(EvDSRParamAreaGet, &ParameterAreaIE{Type: area, Offset: offset, Length: length})
	resp, err := c.request(ctx, m, EvDSRParamAreaGetRes)
	if err != nil {
		return nil, err
	}

	ie, err := DecodeParameterAreaIE(resp.Payload)
	if err != nil {
		return nil, err
	}
	if ie.Type != area || ie.Offset != offset || len(ie.Data) != int(length) {
		return nil, fmt.Errorf("area response for area %d offset %d size %d, requested area %d offset %d size %d: %w",
			ie.Type, ie.Offset, len(ie.Data), area, offset, length, proto.ErrFieldDecode)
	}
	return ie.Data, nil
}

// SetParamArea writes data at offset in the given storage area.
func (c *Client) SetParamArea(ctx context.Context, area uint8, offset uint32, data []byte) error {
	m := NewMessage(EvDSRParamAreaSet, &ParameterAreaIE{Type: area, Offset: offset, Data: data})
	_, err := c.request(ctx, m, EvDSRParamAreaSetRes)
	return err
}

// ReadEEPROM reads from the EEPROM area.
func (c *Client) ReadEEPROM(ctx context.Context, offset uint32, length uint16) ([]byte, error) {
	return c.GetParamArea(ctx, ParamAreaTypeEEPROM, offset, length)
}

// WriteEEPROM writes to the EEPROM area.
func (c *Client) WriteEEPROM(ctx context.Context, offset uint32, data []byte) error {
	return c.SetParamArea(ctx, ParamAreaTypeEEPROM, offset, data)
}

// eepromUSDECTOffset is where the base station stores the carrier
// selection; no parameter id addresses it.
const eepromUSDECTOffset = 0x20

// RegionSettings holds the radio parameters that differ per regulatory
// region.
type RegionSettings struct {
	USDECT     uint8
	SupportFCC uint8
	FullPower  uint8
	Deviation  uint8
	PA2Comp    uint8
}

// Regions maps region codes to their radio settings.
var Regions = map[string]RegionSettings{
	"eu": {0x00, 0x00, 0x7F, 0x13, 0x3C},
	"us": {0x01, 0x01, 0xDE, 0x23, 0x3C},
	"jp": {0x12, 0x02, 0xDE, 0x00, 0xAC},
	"kr": {0x0B, 0x00, 0x7F, 0x13, 0x3C},
}

// ConfigureRegion writes the region-dependent radio parameters.
func (c *Client) ConfigureRegion(ctx context.Context, settings RegionSettings) error {
	if err := c.WriteEEPROM(ctx, eepromUSDECTOffset, []byte{settings.USDECT}); err != nil {
		return fmt.Errorf("set carrier: %w", err)
	}
	params := []struct {
		id    uint8
		value uint8
	}{
		{ParamRF19APUSupportFCC, settings.SupportFCC},
		{ParamRFFullPower, settings.FullPower},
		{ParamRF19APUDeviation, settings.Deviation},
		{ParamRF19APUPA2Comp, settings.PA2Comp},
	}
	for _, p := range params {
		if err := c.SetParam(ctx, p.id, []byte{p.value}); err != nil {
			return fmt.Errorf("set parameter %d: %w", p.id, err)
		}
	}
	return nil
}

func (c *Client) logFrame(dir log.Direction, data []byte) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Protocol:     log.ProtocolCMBS,
		Direction:    dir,
		Frame:        &log.FrameEvent{Size: len(data), Data: data},
	})
}

func (c *Client) logMessage(dir log.Direction, m *Message) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Protocol:     log.ProtocolCMBS,
		Direction:    dir,
		Message: &log.MessageEvent{
			Name: MessageName(m.ID),
			ID:   uint32(m.ID),
		},
	})
}

func (c *Client) logError(err error, context string) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Protocol:     log.ProtocolCMBS,
		Direction:    log.DirectionIn,
		Error:        &log.ErrorEvent{Message: err.Error(), Context: context},
	})
}
