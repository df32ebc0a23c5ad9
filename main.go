package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	flagDemo     bool
	flagLogLevel string
	flagLogJSON  bool
	flagLogFile  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ble-ibeacon",
		Short: "iBeacon sender and receiver for Bluetooth Low Energy radios",
		Long: `ble-ibeacon turns a Bluetooth Low Energy radio into an iBeacon transmitter
or receiver. The radio cannot advertise and scan at the same time, so each run
picks one mode.

Requires sudo or CAP_NET_ADMIN capability on Linux.
Use --demo to run against a simulated radio without Bluetooth hardware.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&flagDemo, "demo", false, "Use a simulated radio with fake beacons nearby (no Bluetooth required)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "Log as JSON")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Append logs to this file instead of stderr")

	rootCmd.AddCommand(newSenderCmd(), newReceiverCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
