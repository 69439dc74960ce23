// Package stream extracts protocol frames from an untrustworthy byte stream.
//
// A Scanner accumulates bytes from its reader and hunts for the protocol's
// sync marker, discarding one leading byte at a time until the marker lines
// up (resynchronization). Once the header is in hand it blocks until the
// declared frame length is buffered, then hands back the complete frame and
// keeps the remainder for the next call.
package stream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/dect-ule/ule-go/pkg/proto"
)

// DefaultMaxFrameSize bounds the declared length of a single frame.
// Anything larger is treated as line noise and resynchronized away.
const DefaultMaxFrameSize = 4096

// Config describes the framing of one binary protocol.
type Config struct {
	// Sync is the frame start marker.
	Sync []byte

	// HeaderSize is the number of bytes, counted from the first sync byte,
	// needed before FrameLen can be evaluated.
	HeaderSize int

	// FrameLen returns the total frame length in bytes (sync included)
	// given the first HeaderSize bytes of a candidate frame.
	FrameLen func(header []byte) int

	// MaxFrameSize caps the declared frame length (default DefaultMaxFrameSize).
	MaxFrameSize int
}

// Scanner is a resynchronizing frame extractor. It is not safe for
// concurrent use: it is owned by exactly one receive goroutine.
type Scanner struct {
	r   io.Reader
	cfg Config
	buf []byte
	tmp [512]byte
}

type deadlineReader interface {
	SetReadDeadline(t time.Time) error
}

// NewScanner creates a Scanner over r with the given framing.
func NewScanner(r io.Reader, cfg Config) *Scanner {
	if cfg.MaxFrameSize == 0 {
		cfg.MaxFrameSize = DefaultMaxFrameSize
	}
	if len(cfg.Sync) == 0 || cfg.HeaderSize < len(cfg.Sync) || cfg.FrameLen == nil {
		panic("stream: invalid scanner config")
	}
	return &Scanner{r: r, cfg: cfg}
}

// ReadFrame returns the next complete frame, resynchronizing past any
// garbage in front of it. A timeout of zero blocks indefinitely; otherwise
// the whole assembly must finish before the deadline or the call fails with
// proto.ErrTimeout.
func (s *Scanner) ReadFrame(timeout time.Duration) ([]byte, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		if frame := s.extract(); frame != nil {
			return frame, nil
		}
		if err := s.fill(deadline); err != nil {
			return nil, err
		}
	}
}

// extract scans the buffered bytes for one complete frame.
func (s *Scanner) extract() []byte {
	for {
		// Seek the sync marker, shedding one byte per mismatch.
		for len(s.buf) >= len(s.cfg.Sync) && !bytes.HasPrefix(s.buf, s.cfg.Sync) {
			s.buf = s.buf[1:]
		}
		if len(s.buf) < s.cfg.HeaderSize {
			return nil
		}

		total := s.cfg.FrameLen(s.buf[:s.cfg.HeaderSize])
		if total < s.cfg.HeaderSize || total > s.cfg.MaxFrameSize {
			// Bogus length: this was not a real frame start after all.
			s.buf = s.buf[1:]
			continue
		}
		if len(s.buf) < total {
			return nil
		}

		frame := make([]byte, total)
		copy(frame, s.buf[:total])
		s.buf = s.buf[total:]
		return frame
	}
}

// fill reads more bytes from the transport, honoring the deadline.
func (s *Scanner) fill(deadline time.Time) error {
	if dr, ok := s.r.(deadlineReader); ok {
		if err := dr.SetReadDeadline(deadline); err != nil {
			return fmt.Errorf("set read deadline: %w", err)
		}
	}

	n, err := s.r.Read(s.tmp[:])
	if n > 0 {
		s.buf = append(s.buf, s.tmp[:n]...)
	}
	if err != nil {
		if isTimeout(err) {
			return proto.ErrTimeout
		}
		return err
	}
	if n == 0 && !deadline.IsZero() && !time.Now().Before(deadline) {
		return proto.ErrTimeout
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
