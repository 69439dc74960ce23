package transport

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/dect-ule/ule-go/pkg/proto"
)

// DefaultBaudRate is the UART rate both the CMBS and CMND modules run at.
const DefaultBaudRate = 115200

// maxPollInterval bounds how long a single blocking port read may take so
// that deadline expiry is noticed promptly.
const maxPollInterval = 250 * time.Millisecond

// SerialConfig configures a serial link.
type SerialConfig struct {
	// Device is the serial device path, e.g. /dev/ttyUSB0.
	Device string

	// BaudRate defaults to DefaultBaudRate.
	BaudRate int
}

// SerialPort is a deadline-capable serial link. The underlying library only
// offers per-read timeouts, so deadlines are emulated by bounded reads.
type SerialPort struct {
	port   serial.Port
	device string

	mu       sync.Mutex
	deadline time.Time
}

// OpenSerial opens the configured device in 8N1 mode.
func OpenSerial(cfg SerialConfig) (*SerialPort, error) {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}

	return &SerialPort{port: port, device: cfg.Device}, nil
}

// Device returns the serial device path.
func (p *SerialPort) Device() string {
	return p.device
}

// SetReadDeadline bounds subsequent Reads. The zero time removes the bound.
func (p *SerialPort) SetReadDeadline(t time.Time) error {
	p.mu.Lock()
	p.deadline = t
	p.mu.Unlock()
	return nil
}

// Read reads from the port, returning os.ErrDeadlineExceeded once the
// deadline passes without data.
func (p *SerialPort) Read(buf []byte) (int, error) {
	for {
		p.mu.Lock()
		deadline := p.deadline
		p.mu.Unlock()

		timeout := maxPollInterval
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return 0, os.ErrDeadlineExceeded
			}
			if remaining < timeout {
				timeout = remaining
			}
		}

		if err := p.port.SetReadTimeout(timeout); err != nil {
			return 0, fmt.Errorf("set read timeout: %w", err)
		}

		n, err := p.port.Read(buf)
		if n > 0 || err != nil {
			return n, err
		}
		// Timed out without data; loop until the deadline fires.
	}
}

// Write writes to the port.
func (p *SerialPort) Write(buf []byte) (int, error) {
	return p.port.Write(buf)
}

// Close closes the port.
func (p *SerialPort) Close() error {
	return p.port.Close()
}

// Compile-time interface satisfaction check.
var _ proto.Transport = (*SerialPort)(nil)
