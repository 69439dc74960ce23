package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dect-ule/ule-go/pkg/config"
	"github.com/dect-ule/ule-go/pkg/han"
	"github.com/dect-ule/ule-go/pkg/log"
	"github.com/dect-ule/ule-go/pkg/transport"
)

var (
	configPath string
	hanAddr    string
	serialDev  string
	baudRate   int
	timeout    time.Duration
	tracePath  string
)

var rootCmd = &cobra.Command{
	Use:   "ulectl",
	Short: "DECT ULE base station control",
	Long: `ulectl manages a DECT ULE base station and its registered devices.

Device management talks to the HAN server daemon over UDP. Low-level
target maintenance (parameters, EEPROM, regulatory region) talks to the
base station or device module directly over a serial link.

Connection settings come from flags or a YAML config file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&hanAddr, "addr", "", "HAN server address (host:port)")
	rootCmd.PersistentFlags().StringVarP(&serialDev, "device", "d", "", "serial device for target commands")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 0, "serial baud rate")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "request timeout")
	rootCmd.PersistentFlags().StringVar(&tracePath, "trace", "", "append a binary protocol trace to this file")
}

// loadConfig merges the config file with command line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if hanAddr != "" {
		cfg.HAN.Addr = hanAddr
	}
	if serialDev != "" {
		cfg.Serial.Device = serialDev
	}
	if baudRate != 0 {
		cfg.Serial.BaudRate = baudRate
	}
	if timeout != 0 {
		cfg.Timeout = timeout
	}
	if tracePath != "" {
		cfg.TracePath = tracePath
	}
	return cfg, nil
}

// traceLogger opens the trace file named in the config, if any. The
// returned closer is a no-op when tracing is off.
func traceLogger(cfg *config.Config) (log.Logger, func(), error) {
	if cfg.TracePath == "" {
		return log.NoopLogger{}, func() {}, nil
	}
	fl, err := log.NewFileLogger(cfg.TracePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open trace file: %w", err)
	}
	return fl, func() { fl.Close() }, nil
}

// connectHAN dials the HAN server and completes the INIT handshake.
func connectHAN(ctx context.Context) (*han.Client, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, closeTrace, err := traceLogger(cfg)
	if err != nil {
		return nil, nil, err
	}

	conn, err := transport.DialUDP(cfg.HAN.Addr)
	if err != nil {
		closeTrace()
		return nil, nil, err
	}

	opts := []han.Option{han.WithLogger(logger)}
	if cfg.Timeout > 0 {
		opts = append(opts, han.WithTimeout(cfg.Timeout))
	}
	client := han.NewClient(conn, opts...)

	if err := client.Start(ctx); err != nil {
		client.Close()
		closeTrace()
		return nil, nil, fmt.Errorf("HAN server handshake: %w", err)
	}

	cleanup := func() {
		client.Close()
		closeTrace()
	}
	return client, cleanup, nil
}
