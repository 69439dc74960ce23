package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dect-ule/ule-go/pkg/han"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List registered devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cleanup, err := connectHAN(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		devices, err := client.ListDevices(cmd.Context())
		if err != nil {
			return err
		}
		printDevices(devices)
		return nil
	},
}

var blacklistCmd = &cobra.Command{
	Use:   "blacklist",
	Short: "List blacklisted devices awaiting deletion",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cleanup, err := connectHAN(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		devices, err := client.ListBlacklisted(cmd.Context())
		if err != nil {
			return err
		}
		printDevices(devices)
		return nil
	},
}

var devInfoCmd = &cobra.Command{
	Use:   "dev-info <device-id>",
	Short: "Show details of one registered device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid device id %q", args[0])
		}

		client, cleanup, err := connectHAN(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		info, err := client.GetDevInfo(cmd.Context(), id, true)
		if err != nil {
			return err
		}

		dev := info.Device
		fmt.Printf("Device %d\n", dev.ID)
		fmt.Printf("  IPUI: %s\n", dev.IPUI)
		fmt.Printf("  EMC:  %s\n", dev.EMC)
		fmt.Printf("  ULE:  capabilities %d, protocol %d.%d\n",
			dev.ULECapabilities, dev.ULEProtocolID, dev.ULEProtocolVersion)
		for _, unit := range dev.Units {
			fmt.Printf("  Unit %d (type %#04x)\n", unit.ID, unit.Type)
			for _, intf := range unit.Interfaces {
				fmt.Printf("    Interface %d (type %d)\n", intf.ID, intf.Type)
			}
		}
		return nil
	},
}

var deleteLocal bool

var deleteCmd = &cobra.Command{
	Use:   "delete <device-id>",
	Short: "Delete a registered device",
	Long: `Delete a device from the table of registered devices.

By default the device is blacklisted first and the deletion completes
with a handshake the next time the device contacts the base. With
--local the table entry is dropped immediately without involving the
device.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid device id %q", args[0])
		}

		client, cleanup, err := connectHAN(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		mode := han.DeleteBlackList
		if deleteLocal {
			mode = han.DeleteLocal
		}
		return client.DeleteDev(id, mode)
	},
}

func printDevices(devices []han.Device) {
	if len(devices) == 0 {
		fmt.Println("No devices.")
		return
	}
	for _, dev := range devices {
		fmt.Printf("%3d  ipui %s  emc %s  units %d\n", dev.ID, dev.IPUI, dev.EMC, len(dev.Units))
	}
	fmt.Printf("%d device(s)\n", len(devices))
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteLocal, "local", false, "delete locally without device handshake")

	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(blacklistCmd)
	rootCmd.AddCommand(devInfoCmd)
	rootCmd.AddCommand(deleteCmd)
}
