package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var openRegDuration time.Duration

var openRegCmd = &cobra.Command{
	Use:   "open-reg",
	Short: "Open the registration window for new devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cleanup, err := connectHAN(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := client.OpenReg(cmd.Context(), openRegDuration)
		if err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("base refused to open registration")
		}
		fmt.Printf("Registration open for %s.\n", openRegDuration)
		return nil
	},
}

var closeRegCmd = &cobra.Command{
	Use:   "close-reg",
	Short: "Close the registration window",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cleanup, err := connectHAN(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := client.CloseReg(cmd.Context())
		if err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("base refused to close registration")
		}
		fmt.Println("Registration closed.")
		return nil
	},
}

func init() {
	openRegCmd.Flags().DurationVar(&openRegDuration, "time", 120*time.Second, "how long to keep registration open")

	rootCmd.AddCommand(openRegCmd)
	rootCmd.AddCommand(closeRegCmd)
}
