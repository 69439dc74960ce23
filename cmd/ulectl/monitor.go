package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dect-ule/ule-go/pkg/han"
)

var monitorRaw bool

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Print every message from the HAN server until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client, cleanup, err := connectHAN(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		// The hook sees every inbound datagram, including ones a blocked
		// caller or the keep-alive handler would otherwise consume.
		client.SetRawHook(func(data []byte) {
			stamp := time.Now().Format("15:04:05.000")
			if monitorRaw {
				fmt.Printf("%s <- %q\n", stamp, data)
				return
			}
			m, err := han.ParseMessage(string(data))
			if err != nil {
				fmt.Printf("%s <- unparseable datagram (%d bytes): %v\n", stamp, len(data), err)
				return
			}
			fmt.Printf("%s <- %s %s\n", stamp, m.Service, m.Name)
			for _, p := range m.Params {
				fmt.Printf("%s      %s: %s\n", strings.Repeat(" ", len(stamp)), p.Key, p.Value)
			}
		})

		fmt.Println("Monitoring; press Ctrl-C to stop.")
		<-ctx.Done()
		return nil
	},
}

func init() {
	monitorCmd.Flags().BoolVar(&monitorRaw, "raw", false, "print raw datagrams instead of parsed messages")

	rootCmd.AddCommand(monitorCmd)
}
