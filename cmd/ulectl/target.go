package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dect-ule/ule-go/pkg/cmbs"
	"github.com/dect-ule/ule-go/pkg/cmnd"
	"github.com/dect-ule/ule-go/pkg/transport"
)

var targetType string

// targetConn holds whichever serial client the --type flag selected.
// Exactly one of the two fields is set.
type targetConn struct {
	cmnd *cmnd.Client
	cmbs *cmbs.Client
	info cmbs.TargetInfo
}

var targetCmd = &cobra.Command{
	Use:   "target",
	Short: "Maintain a module directly over its serial link",
	Long: `Talk to a base station (--type cmbs) or a device module
(--type cmnd) over the serial link named by --device. These commands
bypass the HAN server; stop it first when it holds the same port.`,
}

// connectTarget opens the serial port and brings the selected protocol
// up: a reset handshake for device modules, hello and stack start for
// base stations.
func connectTarget(ctx context.Context) (*targetConn, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Serial.Device == "" {
		return nil, nil, fmt.Errorf("no serial device configured, pass --device")
	}

	logger, closeTrace, err := traceLogger(cfg)
	if err != nil {
		return nil, nil, err
	}

	port, err := transport.OpenSerial(transport.SerialConfig{
		Device:   cfg.Serial.Device,
		BaudRate: cfg.Serial.BaudRate,
	})
	if err != nil {
		closeTrace()
		return nil, nil, err
	}

	conn := &targetConn{}
	var closeClient func() error

	switch targetType {
	case "cmnd":
		opts := []cmnd.Option{cmnd.WithLogger(logger)}
		if cfg.Timeout > 0 {
			opts = append(opts, cmnd.WithTimeout(cfg.Timeout))
		}
		client := cmnd.NewClient(port, opts...)
		if err := client.Attach(ctx); err != nil {
			client.Close()
			closeTrace()
			return nil, nil, fmt.Errorf("attach to device module: %w", err)
		}
		conn.cmnd = client
		closeClient = client.Close

	case "cmbs":
		opts := []cmbs.Option{cmbs.WithLogger(logger)}
		if cfg.Timeout > 0 {
			opts = append(opts, cmbs.WithTimeout(cfg.Timeout))
		}
		client := cmbs.NewClient(port, opts...)
		info, err := client.Hello(ctx)
		if err != nil {
			client.Close()
			closeTrace()
			return nil, nil, fmt.Errorf("hello to base station: %w", err)
		}
		if info.Bootloader() {
			client.Close()
			closeTrace()
			return nil, nil, fmt.Errorf("base station is in bootloader mode, flash a firmware first")
		}
		conn.cmbs = client
		conn.info = info
		closeClient = client.Close

	default:
		port.Close()
		closeTrace()
		return nil, nil, fmt.Errorf("unknown target type %q, want cmnd or cmbs", targetType)
	}

	cleanup := func() {
		closeClient()
		closeTrace()
	}
	return conn, cleanup, nil
}

var targetInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show target version and status",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, cleanup, err := connectTarget(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if conn.cmnd != nil {
			version, err := conn.cmnd.GetVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Firmware: %s\n", strings.TrimRight(string(version), "\x00"))

			status, err := conn.cmnd.GetStatus(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Powerup mode: %d, registration: %d, device id: %d\n",
				status.PowerupMode, status.RegistrationStatus, status.DeviceID)
			return nil
		}

		info := conn.info
		fmt.Printf("API version: %#04x, build: %d, mode: %d\n", info.APIVersion, info.Build, info.Mode)
		return nil
	},
}

var targetResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restart the target",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, cleanup, err := connectTarget(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if conn.cmnd != nil {
			return conn.cmnd.Reset(cmd.Context())
		}
		return conn.cmbs.Reset()
	},
}

var targetStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the base station stack (base stations only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, cleanup, err := connectTarget(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if conn.cmbs == nil {
			return fmt.Errorf("stack start is only available on base stations")
		}
		return conn.cmbs.Start(cmd.Context())
	},
}

var targetParamCmd = &cobra.Command{
	Use:   "param",
	Short: "Read and write target parameters by id",
}

var targetParamGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Read a parameter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseByte(args[0])
		if err != nil {
			return err
		}

		conn, cleanup, err := connectTarget(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		var data []byte
		if conn.cmnd != nil {
			data, err = conn.cmnd.GetParam(cmd.Context(), id)
		} else {
			data, err = conn.cmbs.GetParam(cmd.Context(), id)
		}
		if err != nil {
			return err
		}
		fmt.Printf("%#02x: %s\n", id, hex.EncodeToString(data))
		return nil
	},
}

var targetParamSetCmd = &cobra.Command{
	Use:   "set <id> <hex-value>",
	Short: "Write a parameter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseByte(args[0])
		if err != nil {
			return err
		}
		data, err := hex.DecodeString(args[1])
		if err != nil {
			return fmt.Errorf("invalid value hex: %w", err)
		}

		conn, cleanup, err := connectTarget(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if conn.cmnd != nil {
			return conn.cmnd.SetParam(cmd.Context(), id, data)
		}
		return conn.cmbs.SetParam(cmd.Context(), id, data)
	},
}

var targetEEPROMCmd = &cobra.Command{
	Use:   "eeprom",
	Short: "Read and write raw EEPROM",
}

var targetEEPROMReadCmd = &cobra.Command{
	Use:   "read <offset> <length>",
	Short: "Read EEPROM bytes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		offset, err := strconv.ParseUint(args[0], 0, 32)
		if err != nil {
			return fmt.Errorf("invalid offset %q", args[0])
		}
		length, err := strconv.ParseUint(args[1], 0, 16)
		if err != nil {
			return fmt.Errorf("invalid length %q", args[1])
		}

		conn, cleanup, err := connectTarget(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		var data []byte
		if conn.cmnd != nil {
			data, err = conn.cmnd.ReadEEPROM(cmd.Context(), uint32(offset), uint16(length))
		} else {
			data, err = conn.cmbs.ReadEEPROM(cmd.Context(), uint32(offset), uint16(length))
		}
		if err != nil {
			return err
		}
		fmt.Println(hex.EncodeToString(data))
		return nil
	},
}

var targetEEPROMWriteCmd = &cobra.Command{
	Use:   "write <offset> <hex-value>",
	Short: "Write EEPROM bytes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		offset, err := strconv.ParseUint(args[0], 0, 32)
		if err != nil {
			return fmt.Errorf("invalid offset %q", args[0])
		}
		data, err := hex.DecodeString(args[1])
		if err != nil {
			return fmt.Errorf("invalid value hex: %w", err)
		}

		conn, cleanup, err := connectTarget(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if conn.cmnd != nil {
			return conn.cmnd.WriteEEPROM(cmd.Context(), uint32(offset), data)
		}
		return conn.cmbs.WriteEEPROM(cmd.Context(), uint32(offset), data)
	},
}

var targetRegionCmd = &cobra.Command{
	Use:   "region <code>",
	Short: "Configure the regulatory region",
	Long: `Write the region-dependent radio parameters. Known codes: ` + regionCodes() + `.

The new settings take effect after the reset this performs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code := strings.ToLower(args[0])

		conn, cleanup, err := connectTarget(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if conn.cmnd != nil {
			settings, ok := cmnd.Regions[code]
			if !ok {
				return fmt.Errorf("unknown region %q, want one of %s", code, regionCodes())
			}
			// Region parameters live behind the production service.
			if err := conn.cmnd.EnterProduction(cmd.Context()); err != nil {
				return err
			}
			if err := conn.cmnd.ConfigureRegion(cmd.Context(), settings); err != nil {
				return err
			}
			return conn.cmnd.LeaveProduction(cmd.Context())
		}

		settings, ok := cmbs.Regions[code]
		if !ok {
			return fmt.Errorf("unknown region %q, want one of %s", code, regionCodes())
		}
		return conn.cmbs.ConfigureRegion(cmd.Context(), settings)
	},
}

var targetPresetCmd = &cobra.Command{
	Use:   "preset <id>",
	Short: "Load a factory EEPROM preset (device modules only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		preset, err := parseByte(args[0])
		if err != nil {
			return err
		}

		conn, cleanup, err := connectTarget(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if conn.cmnd == nil {
			return fmt.Errorf("presets are only available on device modules")
		}
		if err := conn.cmnd.EnterProduction(cmd.Context()); err != nil {
			return err
		}
		if err := conn.cmnd.ApplyPreset(cmd.Context(), preset); err != nil {
			return err
		}
		return conn.cmnd.LeaveProduction(cmd.Context())
	},
}

var targetDeleteSubCmd = &cobra.Command{
	Use:   "delete-sub",
	Short: "Erase the module's subscription record (device modules only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, cleanup, err := connectTarget(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if conn.cmnd == nil {
			return fmt.Errorf("subscription erase is only available on device modules")
		}
		if err := conn.cmnd.DeleteSubscription(cmd.Context()); err != nil {
			return err
		}
		return conn.cmnd.Reset(cmd.Context())
	},
}

func parseByte(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid byte value %q", s)
	}
	return uint8(v), nil
}

func regionCodes() string {
	codes := make([]string, 0, len(cmnd.Regions))
	for code := range cmnd.Regions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return strings.Join(codes, ", ")
}

func init() {
	targetCmd.PersistentFlags().StringVarP(&targetType, "type", "t", "cmbs", "target protocol (cmnd or cmbs)")

	targetParamCmd.AddCommand(targetParamGetCmd)
	targetParamCmd.AddCommand(targetParamSetCmd)
	targetEEPROMCmd.AddCommand(targetEEPROMReadCmd)
	targetEEPROMCmd.AddCommand(targetEEPROMWriteCmd)

	targetCmd.AddCommand(targetInfoCmd)
	targetCmd.AddCommand(targetResetCmd)
	targetCmd.AddCommand(targetStartCmd)
	targetCmd.AddCommand(targetParamCmd)
	targetCmd.AddCommand(targetEEPROMCmd)
	targetCmd.AddCommand(targetRegionCmd)
	targetCmd.AddCommand(targetPresetCmd)
	targetCmd.AddCommand(targetDeleteSubCmd)

	rootCmd.AddCommand(targetCmd)
}
