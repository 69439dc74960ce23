package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dect-ule/ule-go/pkg/han"
)

var eepromCmd = &cobra.Command{
	Use:   "eeprom",
	Short: "Read and write named EEPROM parameters via the HAN server",
}

var eepromListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known EEPROM parameter names",
	Run: func(cmd *cobra.Command, args []string) {
		names := make([]string, 0, len(han.EEPROMParams))
		for name := range han.EEPROMParams {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if max := han.EEPROMParams[name]; max == 0 {
				fmt.Printf("%-44s read-only\n", name)
			} else {
				fmt.Printf("%-44s %d byte(s)\n", name, max)
			}
		}
	},
}

var eepromGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Read an EEPROM parameter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.ToUpper(args[0])
		if _, ok := han.EEPROMParams[name]; !ok {
			return fmt.Errorf("unknown EEPROM parameter %q", name)
		}

		client, cleanup, err := connectHAN(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := client.GetEEPROMParam(cmd.Context(), name)
		if err != nil {
			return err
		}
		if res.Failed() {
			return fmt.Errorf("server refused to read %q", name)
		}
		if data, ok := res.Get("DATA"); ok {
			fmt.Printf("%s: %s\n", name, data)
		}
		return nil
	},
}

var eepromSetCmd = &cobra.Command{
	Use:   "set <name> <hex-value>",
	Short: "Write an EEPROM parameter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.ToUpper(args[0])
		value := strings.ToUpper(args[1])
		if len(value)%2 != 0 {
			return fmt.Errorf("hex value must have an even number of digits")
		}
		if err := han.ValidateEEPROMWrite(name, len(value)/2); err != nil {
			return err
		}

		client, cleanup, err := connectHAN(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := client.SetEEPROMParam(cmd.Context(), name, value)
		if err != nil {
			return err
		}
		if res.Failed() {
			return fmt.Errorf("server refused to write %q", name)
		}
		return nil
	},
}

func init() {
	eepromCmd.AddCommand(eepromListCmd)
	eepromCmd.AddCommand(eepromGetCmd)
	eepromCmd.AddCommand(eepromSetCmd)

	rootCmd.AddCommand(eepromCmd)
}
