package adapter

import (
	"fmt"

	"github.com/sergev/bno080/config"
	"github.com/sergev/bno080/shtp"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:     "info",
	Aliases: []string{"status"},
	Short:   "Identify the sensor hub",
	Long:    "Initialize the sensor hub and print its product ID and enabled reports.",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dev, port, err := openSensor(&config.Current)
		cobra.CheckErr(err)
		defer port.Close()

		if id, ok := dev.ProductID(); ok {
			fmt.Printf("Product: %s\n", id)
		}
		fmt.Printf("State: %s\n", dev.State())
		fmt.Printf("Reports:\n")
		for _, id := range dev.Enabled() {
			interval, _ := dev.ReportInterval(id)
			fmt.Printf("    %-28s every %v\n", shtp.ReportName(id), interval)
		}

		fmt.Printf("\nConfiguration script: %s\n", config.Path)
		fmt.Printf("Sensor: %s (%s)\n", config.SensorName, config.Current.Transport)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
