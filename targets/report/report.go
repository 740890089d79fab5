// Package report streams a device's rolling timer to the host as tick
// report frames. It is shared by the firmware targets and runs on the host
// in tests.
package report

import (
	"fmt"
	"io"

	"rollclock/core"
	"rollclock/protocol"
)

// DefaultPeriodMs is how often firmware sends a report by default
const DefaultPeriodMs = 10

// Reporter encodes the current tick of a timer into a frame and writes it
// to w. Frames are built in a fixed buffer, so Send does not allocate.
type Reporter struct {
	w     io.Writer
	timer core.RollingTimer[uint32]
	seq   uint8
	buf   [protocol.MessageLengthMax]byte

	sent   uint32
	failed uint32
}

// New creates a reporter for timer writing to w
func New(w io.Writer, timer core.RollingTimer[uint32]) *Reporter {
	return &Reporter{w: w, timer: timer}
}

// Send writes one report. Nothing is sent until the timer is initialized.
func (r *Reporter) Send() error {
	if !r.timer.IsInitialized() {
		return core.ErrTimerNotReady
	}

	frame := protocol.AppendTickReport(r.buf[:0], protocol.TickReport{
		Seq:   r.seq,
		Rate:  r.timer.TicksPerSecond(),
		Ticks: r.timer.GetTicks(),
	})
	r.seq = (r.seq + 1) & protocol.MessageSeqMask

	if _, err := r.w.Write(frame); err != nil {
		r.failed++
		return fmt.Errorf("sending tick report: %w", err)
	}
	r.sent++
	return nil
}

// Sent returns the number of reports written
func (r *Reporter) Sent() uint32 {
	return r.sent
}

// Failed returns the number of reports whose write failed
func (r *Reporter) Failed() uint32 {
	return r.failed
}

// Schedule sends a report every periodMs milliseconds from sched. The
// returned timer is owned by the scheduler until cancelled.
func (r *Reporter) Schedule(sched *core.Scheduler, periodMs uint32) *core.Timer {
	period := uint32(uint64(sched.Clock().TicksPerSecond()) * uint64(periodMs) / 1000)
	if period == 0 {
		period = 1
	}

	t := &core.Timer{
		ID: 1,
		Handler: func(t *core.Timer) uint8 {
			if err := r.Send(); err != nil {
				core.DebugPrintln("[REPORT] " + err.Error())
			}
			t.WakeTime += period
			return core.SF_RESCHEDULE
		},
	}
	sched.ScheduleIn(t, period)
	return t
}
