//go:build rp2350

// Firmware that binds TIMER0 as the global timer and streams tick reports
// over USB. Debug output goes to UART1.
package main

import (
	"machine"
	"strconv"

	"tinygo.org/x/drivers"

	"rollclock/core"
	"rollclock/targets/report"
)

const heartbeatMs = 1000

// ledBlink blinks the LED a specific number of times for diagnostics
func ledBlink(timer core.GlobalTimer, count int) {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for i := 0; i < count; i++ {
		led.High()
		timer.DelayMillis(150)
		led.Low()
		timer.DelayMillis(150)
	}
	timer.DelayMillis(500) // Pause after blink sequence
}

func main() {
	// Disable any watchdog left over from before the reset
	_ = machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})

	InitDebugUART()
	if err := InitUSB(); err != nil {
		DebugPrintln("USB init failed: " + err.Error())
		return
	}

	core.InitGlobalTimer(TimerCounter{})
	timer := core.NewGlobalTimer()

	// DIAGNOSTIC: 1 blink = timer bound
	ledBlink(timer, 1)

	reporter := report.New(usbWriter{}, timer)
	sched := core.NewScheduler(timer)
	reporter.Schedule(sched, report.DefaultPeriodMs)

	sensor := core.NewTickSensor(timer)
	heartbeat := &core.Timer{
		ID: 2,
		Handler: func(t *core.Timer) uint8 {
			if err := sensor.Update(drivers.Time); err != nil {
				DebugPrintln(err.Error())
			} else {
				DebugPrintln("heartbeat us=" + strconv.FormatUint(sensor.ElapsedMicros(), 10) +
					" reports=" + strconv.FormatUint(uint64(reporter.Sent()), 10) +
					" failed=" + strconv.FormatUint(uint64(reporter.Failed()), 10))
			}
			t.WakeTime += heartbeatMs * 1000
			return core.SF_RESCHEDULE
		},
	}
	sched.ScheduleIn(heartbeat, heartbeatMs*1000)

	for {
		sched.Dispatch()
	}
}
