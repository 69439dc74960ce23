package transport

import (
	"fmt"
	"net"

	"github.com/dect-ule/ule-go/pkg/proto"
)

// DefaultHANAddr is where the HAN server daemon listens by default.
const DefaultHANAddr = "127.0.0.1:3490"

// UDPConn is a connected UDP socket to the HAN server. Each Read returns
// exactly one datagram, which carries exactly one HAN message.
type UDPConn struct {
	net.Conn
}

// DialUDP connects to the HAN server at addr (empty means DefaultHANAddr).
func DialUDP(addr string) (*UDPConn, error) {
	if addr == "" {
		addr = DefaultHANAddr
	}
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &UDPConn{Conn: conn}, nil
}

// Compile-time interface satisfaction check.
var _ proto.Transport = (*UDPConn)(nil)
