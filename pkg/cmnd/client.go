package cmnd

import (
	"context"
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

// eepromSubscriptionOffset is the DECT EEPROM byte that holds the
// subscription record marker; zeroing it drops the pairing.
const eepromSubscriptionOffset = 58

// Handler consumes a decoded inbound frame. Handlers run on the receive
// goroutine under a dispatch context and must not issue blocking calls.
type Handler func(ctx context.Context, f *Frame)

// result is what the receive loop delivers to a blocked caller. err is set
// when the matching frame arrived damaged (checksum mismatch).
type result struct {
	frame *Frame
	err   error
}

// Client drives the CMND protocol over a serial transport. One background
// goroutine owns all reads; any goroutine may issue requests.
type Client struct {
	transport proto.Transport
	connID    string
	logger    log.Logger
	timeout   time.Duration

	waiters *call.Table[MsgKey, result]

	writeMu sync.Mutex

	mu          sync.Mutex
	rawHook     proto.RawHook
	handlers    map[MsgKey]Handler
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

// NewClient creates a client on t and starts its receive goroutine.
// The caller should usually follow up with Attach to reset the target
// and confirm it speaks CMND.
func NewClient(t proto.Transport, opts ...Option) *Client {
	c := &Client{
		transport: t,
		connID:    uuid.New().String(),
		logger:    log.NoopLogger{},
		timeout:   DefaultTimeout,
		waiters:   call.NewTable[MsgKey, result](),
		handlers:  make(map[MsgKey]Handler),
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

// SetRawHook installs an observer for raw inbound frame bytes. Pass nil to
// remove it. The hook runs on the receive goroutine.
func (c *Client) SetRawHook(hook proto.RawHook) {
	c.mu.Lock()
	c.rawHook = hook
	c.mu.Unlock()
}

// Handle installs an internal handler for a message key. A handled message
// is consumed: it reaches neither waiters nor subscribers.
func (c *Client) Handle(key MsgKey, h Handler) {
	c.mu.Lock()
	c.handlers[key] = h
	c.mu.Unlock()
}

// Subscribe registers a callback for inbound frames nobody was waiting for,
// such as unsolicited indications. Callbacks run on the receive goroutine.
func (c *Client) Subscribe(h Handler) {
	c.mu.Lock()
	c.subscribers = append(c.subscribers, h)
	c.mu.Unlock()
}

// readLoop owns all transport reads. It extracts frames, decodes them and
// dispatches: raw hook, then internal handler, then waiter, then
// subscribers. Damaged frames fail the matching waiter instead of leaving
// it to time out.
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

		f, err := DecodeFrame(raw)
		if err != nil {
			c.logError(err, "decode")
			if f != nil {
				// Parsed far enough to identify the envelope; fail the
				// caller waiting on it rather than leaving it hanging.
				c.waiters.Deliver(f.Key(), result{err: err})
			}
			continue
		}
		c.logMessage(log.DirectionIn, f)

		c.dispatch(ctx, f)
	}
}

func (c *Client) dispatch(ctx context.Context, f *Frame) {
	c.mu.Lock()
	handler := c.handlers[f.Key()]
	subscribers := make([]Handler, len(c.subscribers))
	copy(subscribers, c.subscribers)
	c.mu.Unlock()

	if handler != nil {
		handler(ctx, f)
		return
	}
	if c.waiters.Deliver(f.Key(), result{frame: f}) {
		return
	}
	for _, s := range subscribers {
		s(ctx, f)
	}
}

// Send writes a frame without expecting a response.
func (c *Client) Send(f *Frame) error {
	data := f.Encode()

	c.writeMu.Lock()
	_, err := c.transport.Write(data)
	c.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	c.logFrame(log.DirectionOut, data)
	c.logMessage(log.DirectionOut, f)
	return nil
}

// SendAndWait sends a frame and blocks until the response identified by
// expect arrives, the context is cancelled, or the timeout expires. Calling
// it from a handler or subscriber fails with proto.ErrReentrantCall.
func (c *Client) SendAndWait(ctx context.Context, f *Frame, expect MsgKey) (*Frame, error) {
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

	if err := c.Send(f); err != nil {
		return nil, err
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		return res.frame, nil
	case <-timer.C:
		return nil, proto.ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, proto.ErrClosed
	}
}

// request is SendAndWait plus the result-code check shared by most
// confirmed operations.
func (c *Client) request(ctx context.Context, f *Frame, expect MsgKey) (*Frame, error) {
	resp, err := c.SendAndWait(ctx, f, expect)
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

// Attach resets the target and waits for the hello indication that shows it
// is alive and speaking CMND.
func (c *Client) Attach(ctx context.Context) error {
	return c.Reset(ctx)
}

// Reset restarts the target and waits for it to come back up.
func (c *Client) Reset(ctx context.Context) error {
	f := NewFrame(0, ServiceSystem, MsgSysResetReq)
	_, err := c.SendAndWait(ctx, f, MsgKey{ServiceGeneral, MsgGeneralHelloInd})
	return err
}

// EnterProduction enables production mode. The change takes effect after
// the reset this performs.
func (c *Client) EnterProduction(ctx context.Context) error {
	f := NewFrame(0, ServiceProduction, MsgProdStartReq)
	if _, err := c.request(ctx, f, MsgKey{ServiceProduction, MsgProdCfm}); err != nil {
		return err
	}
	return c.Reset(ctx)
}

// LeaveProduction disables production mode and resets the target.
func (c *Client) LeaveProduction(ctx context.Context) error {
	f := NewFrame(0, ServiceProduction, MsgProdEndReq)
	if _, err := c.request(ctx, f, MsgKey{ServiceProduction, MsgProdCfm}); err != nil {
		return err
	}
	return c.Reset(ctx)
}

// ApplyPreset loads the EEPROM preset with the given identifier. Requires
// production mode.
func (c *Client) ApplyPreset(ctx context.Context, preset uint8) error {
	f := NewFrame(0, ServiceProduction, MsgProdSpecificPresetReq, &U8IE{Value: preset})
	_, err := c.request(ctx, f, MsgKey{ServiceProduction, MsgProdCfm})
	return err
}

// GetParam reads an EEPROM parameter by identifier.
func (c *Client) GetParam(ctx context.Context, id uint8) ([]byte, error) {
	f := NewFrame(0, ServiceParameters, MsgParamGetReq, &ParameterIE{ID: id})
	resp, err := c.request(ctx, f, MsgKey{ServiceParameters, MsgParamGetRes})
	if err != nil {
		return nil, err
	}

	ie, err := DecodeParameterIE(resp.Payload)
	if err != nil {
		return nil, err
	}
	if ie.ID != id || ie.Type != 0 {
		return nil, fmt.Errorf("parameter response for id %#02x type %d, requested %#02x: %w",
			ie.ID, ie.Type, id, proto.ErrFieldDecode)
	}
	return ie.Data, nil
}

// SetParam writes an EEPROM parameter by identifier.
func (c *Client) SetParam(ctx context.Context, id uint8, data []byte) error {
	f := NewFrame(0, ServiceParameters, MsgParamSetReq, &ParameterIE{ID: id, Data: data})
	_, err := c.request(ctx, f, MsgKey{ServiceParameters, MsgParamSetRes})
	return err
}

// GetParamDirect reads length bytes at offset from the given storage area.
func (c *Client) GetParamDirect(ctx context.Context, area uint8, offset uint32, length uint16) ([]byte, error) {
	f := NewFrame(0, ServiceParameters, MsgParamGetDirectReq,
		&ParameterDirectIE{Type: area, Offset: offset, Length: length})
	resp, err := c.request(ctx, f, MsgKey{ServiceParameters, MsgParamGetDirectRes})
	if err != nil {
		return nil, err
	}

	ie, err := DecodeParameterDirectIE(resp.Payload)
	if err != nil {
		return nil, err
	}
	if ie.Type != area || ie.Offset != offset {
		return nil, fmt.Errorf("direct parameter response for area %d offset %d, requested area %d offset %d: %w",
			ie.Type, ie.Offset, area, offset, proto.ErrFieldDecode)
	}
	return ie.Data, nil
}

// SetParamDirect writes data at offset in the given storage area.
func (c *Client) SetParamDirect(ctx context.Context, area uint8, offset uint32, data []byte) error {
	f := NewFrame(0, ServiceParameters, MsgParamSetDirectReq,
		&ParameterDirectIE{Type: area, Offset: offset, Data: data})
	_, err := c.request(ctx, f, MsgKey{ServiceParameters, MsgParamSetDirectRes})
	return err
}

// ReadEEPROM reads from the DECT EEPROM area.
func (c *Client) ReadEEPROM(ctx context.Context, offset uint32, length uint16) ([]byte, error) {
	return c.GetParamDirect(ctx, ParamAddressTypeDECTEEPROM, offset, length)
}

// WriteEEPROM writes to the DECT EEPROM area.
func (c *Client) WriteEEPROM(ctx context.Context, offset uint32, data []byte) error {
	return c.SetParamDirect(ctx, ParamAddressTypeDECTEEPROM, offset, data)
}

// DeleteSubscription drops the device's base-station pairing by zeroing the
// subscription marker in EEPROM.
func (c *Client) DeleteSubscription(ctx context.Context) error {
	return c.WriteEEPROM(ctx, eepromSubscriptionOffset, []byte{0x00})
}

// GetStatus queries registration and power-up state.
func (c *Client) GetStatus(ctx context.Context) (*GeneralStatusIE, error) {
	f := NewFrame(0, ServiceGeneral, MsgGeneralGetStatusReq)
	resp, err := c.SendAndWait(ctx, f, MsgKey{ServiceGeneral, MsgGeneralGetStatusRes})
	if err != nil {
		return nil, err
	}
	return DecodeGeneralStatusIE(resp.Payload)
}

// GetVersion queries the firmware version string.
func (c *Client) GetVersion(ctx context.Context) ([]byte, error) {
	f := NewFrame(0, ServiceGeneral, MsgGeneralGetVersionReq)
	resp, err := c.SendAndWait(ctx, f, MsgKey{ServiceGeneral, MsgGeneralGetVersionRes})
	if err != nil {
		return nil, err
	}
	ie, err := DecodeVersionIE(resp.Payload)
	if err != nil {
		return nil, err
	}
	return ie.Version, nil
}

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

// ConfigureRegion writes the five region-dependent radio parameters.
// Requires production mode; takes effect after the next reset.
func (c *Client) ConfigureRegion(ctx context.Context, settings RegionSettings) error {
	params := []struct {
		id    uint8
		value uint8
	}{
		{ParamEEPROMDECTCarrier, settings.USDECT},
		{ParamEEPROMDECTSupportFCC, settings.SupportFCC},
		{ParamEEPROMDECTFullPower, settings.FullPower},
		{ParamEEPROMDECTDeviation, settings.Deviation},
		{ParamEEPROMDECTPA2Comp, settings.PA2Comp},
	}
	for _, p := range params {
		if err := c.SetParam(ctx, p.id, []byte{p.value}); err != nil {
			return fmt.Errorf("set parameter %#02x: %w", p.id, err)
		}
	}
	return nil
}

func (c *Client) logFrame(dir log.Direction, data []byte) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Protocol:     log.ProtocolCMND,
		Direction:    dir,
		Frame:        &log.FrameEvent{Size: len(data), Data: data},
	})
}

func (c *Client) logMessage(dir log.Direction, f *Frame) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Protocol:     log.ProtocolCMND,
		Direction:    dir,
		Message: &log.MessageEvent{
			Service: ServiceName(f.Service),
			Name:    MessageName(f.Service, f.MsgID),
			ID:      uint32(f.Service)<<8 | uint32(f.MsgID),
		},
	})
}

func (c *Client) logError(err error, context string) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Protocol:     log.ProtocolCMND,
		Direction:    log.DirectionIn,
		Error:        &log.ErrorEvent{Message: err.Error(), Context: context},
	})
}
