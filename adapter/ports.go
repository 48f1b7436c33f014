package adapter

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.bug.st/serial/enumerator"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Long:  "List serial ports, marking USB-UART bridges a sensor hub may be attached to.",
	Args:  cobra.NoArgs,
	// Listing ports needs no configuration
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		ports, err := enumerator.GetDetailedPortsList()
		if err != nil {
			cobra.CheckErr(fmt.Errorf("failed to list serial ports: %w", err))
		}
		if len(ports) == 0 {
			fmt.Printf("No serial ports found.\n")
			return
		}

		for _, port := range ports {
			if !port.IsUSB {
				fmt.Printf("%s\n", port.Name)
				continue
			}
			fmt.Printf("%s: USB %s:%s", port.Name, port.VID, port.PID)
			if port.SerialNumber != "" {
				fmt.Printf(", serial %s", port.SerialNumber)
			}
			if bridge, ok := portBridge(port); ok {
				fmt.Printf(" (%s)", bridge.Name)
			}
			fmt.Printf("\n")
		}
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
