//go:build rp2040

// Firmware that binds a hardware counter as the global timer and streams
// tick reports over USB.
//
// The counter is the TIMER peripheral by default. Build with
//
//	tinygo flash -target=pico -ldflags="-X main.counterSource=pio" ./targets/rp2040
//
// to count on PIO0 instead.
package main

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"rollclock/core"
	"rollclock/targets/report"
)

var counterSource = "timer"

func main() {
	// Disable any watchdog left over from before the reset
	_ = machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})

	if err := InitUSB(); err != nil {
		return
	}

	core.InitGlobalTimer(selectCounter())
	timer := core.NewGlobalTimer()

	reporter := report.New(usbWriter{}, timer)
	sched := core.NewScheduler(timer)
	reporter.Schedule(sched, report.DefaultPeriodMs)

	for {
		sched.Dispatch()
	}
}

func selectCounter() core.Counter {
	if counterSource == "pio" {
		c, err := NewPIOCounter(rp2pio.PIO0)
		if err == nil {
			return c
		}
		core.DebugPrintln("[TIMER] PIO counter unavailable: " + err.Error())
	}
	return TimerCounter{}
}
