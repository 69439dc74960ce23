package han

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dect-ule/ule-go/pkg/proto"
)

const (
	// EOL terminates every line of a HAN message.
	EOL = "\r\n"

	paramDelim = ": "

	// DefaultService is assumed when a message carries no service prefix.
	DefaultService = "[HAN]"
)

// Param is one "KEY: VALUE" line of a message. The bare status lines
// SUCCEED and FAIL parse into a Param with an empty value.
type Param struct {
	Key   string
	Value string
}

// Message is one HAN server protocol message: an optional bracketed service
// line, a name line, and parameter lines in wire order.
type Message struct {
	Service string
	Name    string
	Params  []Param
}

// NewMessage builds a message for the default [HAN] service.
func NewMessage(name string) *Message {
	return &Message{Service: DefaultService, Name: name}
}

// NewServiceMessage builds a message for another service scope, e.g.
// "[SRV]" or "[CALL]".
func NewServiceMessage(service, name string) *Message {
	return &Message{Service: service, Name: name}
}

// Set appends a parameter, keeping wire order.
func (m *Message) Set(key, value string) *Message {
	m.Params = append(m.Params, Param{Key: key, Value: value})
	return m
}

// SetInt appends an integer-valued parameter.
func (m *Message) SetInt(key string, value int) *Message {
	return m.Set(key, strconv.Itoa(value))
}

// Get returns the value of the first parameter with the given key.
func (m *Message) Get(key string) (string, bool) {
	for _, p := range m.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// GetInt returns the first parameter with the given key parsed as an
// integer.
func (m *Message) GetInt(key string) (int, error) {
	v, ok := m.Get(key)
	if !ok {
		return 0, fmt.Errorf("%w: %s", proto.ErrFieldNotFound, key)
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", proto.ErrFieldDecode, key, err)
	}
	return n, nil
}

// Succeeded reports whether the message carries a bare SUCCEED status line.
func (m *Message) Succeeded() bool {
	_, ok := m.Get("SUCCEED")
	return ok
}

// Failed reports whether the message carries a bare FAIL status line.
func (m *Message) Failed() bool {
	_, ok := m.Get("FAIL")
	return ok
}

// ParseMessage parses one wire message. The service line is optional and
// defaults to [HAN]. Parameter lines without the ": " delimiter are kept as
// bare keys with empty values.
func ParseMessage(data string) (*Message, error) {
	lines := strings.Split(strings.TrimRight(data, "\r\n \t"), EOL)
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, fmt.Errorf("%w: empty message", proto.ErrMalformedFrame)
	}

	m := &Message{}
	first := strings.TrimSpace(lines[0])
	if strings.HasPrefix(first, "[") {
		m.Service = first
		lines = lines[1:]
	} else {
		m.Service = DefaultService
	}

	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, fmt.Errorf("%w: missing message name", proto.ErrMalformedFrame)
	}
	m.Name = strings.TrimSpace(lines[0])

	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if key, value, ok := strings.Cut(line, paramDelim); ok {
			m.Params = append(m.Params, Param{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
		} else {
			m.Params = append(m.Params, Param{Key: line})
		}
	}
	return m, nil
}

// Encode serializes the message for the wire.
func (m *Message) Encode() []byte {
	var b strings.Builder

	service := m.Service
	if service == "" {
		service = DefaultService
	}
	b.WriteString(service)
	b.WriteString(EOL)
	b.WriteString(m.Name)
	b.WriteString(EOL)

	for _, p := range m.Params {
		b.WriteString(" ")
		b.WriteString(p.Key)
		b.WriteString(paramDelim)
		b.WriteString(p.Value)
		b.WriteString(EOL)
	}
	b.WriteString(EOL)
	return []byte(b.String())
}

func (m *Message) String() string {
	return fmt.Sprintf("%s %s (%d params)", m.Service, m.Name, len(m.Params))
}

// EncodeData renders payload bytes as the protocol's DATA value: uppercase
// hex, space separated, e.g. "48 45 4C 4C 4F".
func EncodeData(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

// DecodeData parses a DATA value back into bytes.
func DecodeData(value string) ([]byte, error) {
	fields := strings.Fields(value)
	data := make([]byte, 0, len(fields))
	for _, f := range fields {
		b, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: DATA byte %q: %v", proto.ErrFieldDecode, f, err)
		}
		data = append(data, byte(b))
	}
	return data, nil
}

// HexString converts a space-separated decimal byte list like "2 69 83 18 205"
// into a compact hex string, the presentation used for IPUI and EMC values.
func HexString(value string) (string, error) {
	var b strings.Builder
	for _, f := range strings.Fields(value) {
		n, err := strconv.Atoi(f)
		if err != nil {
			return "", fmt.Errorf("%w: byte %q: %v", proto.ErrFieldDecode, f, err)
		}
		fmt.Fprintf(&b, "%02x", n)
	}
	return b.String(), nil
}
