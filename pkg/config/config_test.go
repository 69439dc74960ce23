package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dect-ule/ule-go/pkg/transport"
)

func TestParse(t *testing.T) {
	data := []byte(`
han:
  addr: 10.0.0.5:3490
serial:
  device: /dev/ttyUSB0
  baud_rate: 57600
timeout: 2s
trace_path: /tmp/ule.trace
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5:3490", cfg.HAN.Addr)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Device)
	assert.Equal(t, 57600, cfg.Serial.BaudRate)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, "/tmp/ule.trace", cfg.TracePath)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`serial: {device: /dev/ttyUSB1}`))
	require.NoError(t, err)

	assert.Equal(t, transport.DefaultHANAddr, cfg.HAN.Addr)
	assert.Equal(t, transport.DefaultBaudRate, cfg.Serial.BaudRate)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("{invalid"))
	assert.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, transport.DefaultHANAddr, cfg.HAN.Addr)
}
