package adapter

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sergev/bno080/bno080"
	"github.com/sergev/bno080/config"
)

var readCount int

var readCmd = &cobra.Command{
	Use:   "read [KIND...]",
	Short: "Print sensor readings",
	Long: `Initialize the sensor hub and print fresh readings.
KIND is one of acceleration, gyro, magnetic, linear_acceleration, quaternion.
By default all kinds are printed.`,
	Run: func(cmd *cobra.Command, args []string) {
		kinds, err := parseKinds(args)
		cobra.CheckErr(err)

		dev, port, err := openSensor(&config.Current)
		cobra.CheckErr(err)
		defer port.Close()

		for i := 0; readCount <= 0 || i < readCount; i++ {
			for _, k := range kinds {
				sample, err := dev.ReadSample(k)
				if err != nil {
					if !bno080.IsRecoverable(err) {
						cobra.CheckErr(fmt.Errorf("failed to read %s: %w", k, err))
					}
					log.WithError(err).Warnf("%s: no reading", k)
					continue
				}
				fmt.Printf("%-20s %s  (%s)\n", k, formatValues(sample.Values), sample.Accuracy)
			}
		}
	},
}

// parseKinds converts command line arguments to report kinds
func parseKinds(args []string) ([]bno080.Kind, error) {
	if len(args) == 0 {
		return bno080.Kinds, nil
	}
	kinds := make([]bno080.Kind, 0, len(args))
	for _, arg := range args {
		k, err := bno080.ParseKind(arg)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func formatValues(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%9.4f", v)
	}
	return strings.Join(parts, " ")
}

func init() {
	readCmd.Flags().IntVarP(&readCount, "count", "n", 1, "number of readings per kind (0 = until interrupted)")
	rootCmd.AddCommand(readCmd)
}
