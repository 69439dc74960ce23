package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the base station software and hardware versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cleanup, err := connectHAN(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		sw, err := client.GetSWVersion(cmd.Context())
		if err != nil {
			return err
		}
		hw, err := client.GetHWVersion(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println("Software:")
		for _, p := range sw.Params {
			fmt.Printf("  %s: %s\n", p.Key, p.Value)
		}
		fmt.Println("Hardware:")
		for _, p := range hw.Params {
			fmt.Printf("  %s: %s\n", p.Key, p.Value)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
