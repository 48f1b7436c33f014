package adapter

import (
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.bug.st/serial/enumerator"

	"github.com/sergev/bno080/config"
)

var (
	configFile string
	sensorName string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "bno080",
	Short: "A CLI program which reads a BNO080 sensor hub",
	Long: `The bno080 tool talks to a BNO080 9-axis sensor hub over UART or I2C.
It identifies the hub, enables its motion reports and prints readings.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			log.SetLevel(log.DebugLevel)
		}

		// Initialize configuration
		err := config.Initialize(configFile, sensorName)
		if err != nil {
			cobra.CheckErr(fmt.Errorf("failed to initialize config: %w", err))
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "configuration file (default ~/.bno080)")
	rootCmd.PersistentFlags().StringVarP(&sensorName, "sensor", "s", "", "sensor entry to use (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "log protocol traffic")
}

// FindBridgePort returns the name of the first serial port
// behind a registered USB-UART bridge
func FindBridgePort() (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("failed to list serial ports: %w", err)
	}

	for _, port := range ports {
		if _, ok := portBridge(port); ok {
			return port.Name, nil
		}
	}
	return "", fmt.Errorf("no supported USB-UART bridge found")
}

// portBridge matches a port's VID/PID against the registered bridges
func portBridge(port *enumerator.PortDetails) (BridgeInfo, bool) {
	if !port.IsUSB {
		return BridgeInfo{}, false
	}
	portVID, err := strconv.ParseUint(port.VID, 16, 16)
	if err != nil {
		return BridgeInfo{}, false
	}
	portPID, err := strconv.ParseUint(port.PID, 16, 16)
	if err != nil {
		return BridgeInfo{}, false
	}
	return lookupBridge(uint16(portVID), uint16(portPID))
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
