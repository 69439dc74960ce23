package main

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dect-ule/ule-go/pkg/han"
)

var (
	funMsgUnit      int
	funMsgType      int
	funMsgIntfType  int
	funMsgIntf      int
	funMsgMember    int
	funMsgData      string
	funMsgQueueSize bool
)

var funMsgCmd = &cobra.Command{
	Use:   "fun-msg <device-id>",
	Short: "Queue a FUN message for a device",
	Long: `Queue a FUN message for a sleeping device. The base delivers it the
next time the device wakes up; the FUN_MSG_RES confirmation arrives as
an unsolicited message carrying the cookie printed here.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid device id %q", args[0])
		}
		var data []byte
		if funMsgData != "" {
			data, err = hex.DecodeString(funMsgData)
			if err != nil {
				return fmt.Errorf("invalid payload hex: %w", err)
			}
		}

		client, cleanup, err := connectHAN(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		cookie, err := client.SendFunMsg(han.FunMsgRequest{
			DstDevID:        id,
			DstUnitID:       funMsgUnit,
			MsgType:         funMsgType,
			InterfaceType:   funMsgIntfType,
			InterfaceID:     funMsgIntf,
			InterfaceMember: funMsgMember,
			Data:            data,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Queued with cookie %d.\n", cookie)

		if funMsgQueueSize {
			n, err := client.NumMsgInQueue(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("%d message(s) queued for device %d.\n", n, id)
		}
		return nil
	},
}

func init() {
	funMsgCmd.Flags().IntVar(&funMsgUnit, "unit", 0, "destination unit id")
	funMsgCmd.Flags().IntVar(&funMsgType, "msg-type", 1, "FUN message type")
	funMsgCmd.Flags().IntVar(&funMsgIntfType, "intf-type", 0, "interface role (0 server, 1 client)")
	funMsgCmd.Flags().IntVar(&funMsgIntf, "intf", 0, "interface id")
	funMsgCmd.Flags().IntVar(&funMsgMember, "member", 0, "interface member (attribute or command)")
	funMsgCmd.Flags().StringVar(&funMsgData, "data", "", "payload as hex digits")
	funMsgCmd.Flags().BoolVar(&funMsgQueueSize, "queue", false, "report the device queue depth afterwards")

	rootCmd.AddCommand(funMsgCmd)
}
