// Command ulectl manages a DECT ULE base station and its registered
// devices.
//
// It speaks the HAN server text protocol over UDP for device management
// and, for low-level target maintenance, the CMBS or CMND binary protocol
// over a serial link.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
