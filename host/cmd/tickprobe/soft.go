package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"rollclock/core"
	"rollclock/host/config"
)

var (
	softRate     uint32
	softDuration time.Duration
)

var softCmd = &cobra.Command{
	Use:   "soft",
	Short: "Sleep and compare software timer ticks with real elapsed time",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		rate := cfg.Rate
		if cmd.Flags().Changed("rate") {
			rate = softRate
		}
		if rate == 0 || rate > 1_000_000_000 {
			return fmt.Errorf("rate must be in [1, 1e9], got %d", rate)
		}

		m := measureSoft(core.NewStdTimer(rate), softDuration)
		fmt.Fprintf(cmd.OutOrStdout(), "rate=%d ticks=%d millis=%d micros=%d real=%s\n",
			rate, m.Ticks, m.Millis, m.Micros, m.Real)
		return nil
	},
}

func init() {
	softCmd.Flags().Uint32VarP(&softRate, "rate", "r", 1_000_000, "ticks per second")
	softCmd.Flags().DurationVarP(&softDuration, "duration", "d", time.Second, "how long to sleep")
}

type softMeasurement struct {
	Ticks  uint32
	Millis uint64
	Micros uint64
	Real   time.Duration
}

// measureSoft sleeps for d and reports elapsed time on both clocks. The
// start is aligned to a tick edge so truncation only ever loses the partial
// tick at the end.
func measureSoft(timer core.StdTimer, d time.Duration) softMeasurement {
	first := timer.GetTicks()
	start := first
	for start == first {
		start = timer.GetTicks()
	}
	realStart := time.Now()

	time.Sleep(d)

	now := timer.GetTicks()
	wall := time.Since(realStart)
	return softMeasurement{
		Ticks:  now - start,
		Millis: core.TicksToMillis(now-start, timer.TicksPerSecond()),
		Micros: core.TicksToMicros(now-start, timer.TicksPerSecond()),
		Real:   wall,
	}
}
