// Command tickprobe exercises rolling timers from the host: the software
// timer directly, or a device's hardware timer through the tick reports its
// firmware streams over a serial port.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "tickprobe",
	Short: "Measure elapsed time on rolling tick counters.",
	Long: `tickprobe measures elapsed time on rolling (wraparound) tick counters. ` +
		`"soft" checks the host software timer against the wall clock; ` +
		`"remote" follows a device's timer over a serial port.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "JSON config file")
	rootCmd.AddCommand(softCmd, remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
