package core

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// GlobalTimerRate is the tick rate of the bound hardware counter (1MHz).
// At this rate a 32-bit counter wraps every 71m34s, which is also the
// longest interval GlobalTimer can measure.
const GlobalTimerRate = 1_000_000

// Counter is a free-running 32-bit hardware counter
type Counter interface {
	// Start configures the counter to free-run at GlobalTimerRate and wrap
	// on its own.
	Start()

	// Capture latches and returns the live count
	Capture() uint32

	// Clear resets the count to 0
	Clear()
}

// ErrCompareUnsupported is returned by the compare operations of the
// scheduler integration, which GlobalTimer does not implement.
var ErrCompareUnsupported = fmt.Errorf("global timer compare: %w", errors.ErrUnsupported)

type counterBinding struct {
	counter Counter
}

var (
	// bindClaimed is set by the first InitGlobalTimer caller, before the
	// counter is started.
	bindClaimed atomic.Bool

	// boundCounter is published once the counter is running. Readers may
	// run in interrupt context and never lock.
	boundCounter atomic.Pointer[counterBinding]
)

// InitGlobalTimer binds c as the process-wide hardware timer and starts it.
//
// The binding is permanent. Calling InitGlobalTimer a second time, from any
// goroutine, is a programming error and panics. If c.Start panics the claim
// is released, so a later call may bind another counter.
func InitGlobalTimer(c Counter) {
	if c == nil {
		panic("core: InitGlobalTimer with nil counter")
	}
	if !bindClaimed.CompareAndSwap(false, true) {
		panic("core: global timer already initialized")
	}

	bound := false
	defer func() {
		if !bound {
			bindClaimed.Store(false)
		}
	}()
	c.Start()
	boundCounter.Store(&counterBinding{counter: c})
	bound = true

	RecordTiming(EvtTimerBind, 0, c.Capture(), GlobalTimerRate, 0)
	DebugPrintln("[TIMER] global timer bound")
}

// GlobalTimer reads the counter bound by InitGlobalTimer.
//
// Before initialization it reports 0 ticks and IsInitialized returns false.
// GlobalTimer values are free to copy; they all read the same counter.
type GlobalTimer struct{}

// NewGlobalTimer returns a handle to the global hardware timer
func NewGlobalTimer() GlobalTimer {
	return GlobalTimer{}
}

// TicksPerSecond implements RollingTimer
func (GlobalTimer) TicksPerSecond() uint32 {
	return GlobalTimerRate
}

// GetTicks captures and returns the live hardware count, or 0 if no
// counter is bound yet.
func (GlobalTimer) GetTicks() uint32 {
	b := boundCounter.Load()
	if b == nil {
		return 0
	}
	return b.counter.Capture()
}

// IsInitialized implements RollingTimer
func (GlobalTimer) IsInitialized() bool {
	return boundCounter.Load() != nil
}

// TicksSince returns the ticks elapsed since ref
func (t GlobalTimer) TicksSince(ref uint32) uint32 {
	return TicksSince[uint32](t, ref)
}

// MillisSince returns the milliseconds elapsed since ref
func (t GlobalTimer) MillisSince(ref uint32) uint64 {
	return MillisSince[uint32](t, ref)
}

// MicrosSince returns the microseconds elapsed since ref
func (t GlobalTimer) MicrosSince(ref uint32) uint64 {
	return MicrosSince[uint32](t, ref)
}

// DelayMicros spins until us ticks have elapsed. One tick is one
// microsecond at GlobalTimerRate.
//
// It never returns if the timer is not initialized.
func (t GlobalTimer) DelayMicros(us uint32) {
	start := t.GetTicks()
	for t.TicksSince(start) < us {
	}
}

// DelayMillis spins for ms milliseconds as ms waits of 1000us, so no single
// measured interval gets near the counter range.
func (t GlobalTimer) DelayMillis(ms uint32) {
	for i := uint32(0); i < ms; i++ {
		t.DelayMicros(1000)
	}
}

// Instant is the scheduler's view of a GlobalTimer tick
type Instant int32

// Monotonic is the clock a cooperative task scheduler drives its
// deadlines from.
type Monotonic interface {
	Now() Instant
	Zero() Instant
	Reset()
	SetCompare(Instant) error
	ClearCompareFlag() error
}

var _ Monotonic = GlobalTimer{}

// Now returns the current tick as an Instant
func (t GlobalTimer) Now() Instant {
	return Instant(t.GetTicks())
}

// Zero returns the Instant of tick 0
func (GlobalTimer) Zero() Instant {
	return 0
}

// Reset clears the bound counter. It does nothing if no counter is bound.
func (GlobalTimer) Reset() {
	if b := boundCounter.Load(); b != nil {
		b.counter.Clear()
		RecordTiming(EvtTimerReset, 0, 0, 0, 0)
	}
}

// SetCompare is not supported by GlobalTimer
func (GlobalTimer) SetCompare(Instant) error {
	return ErrCompareUnsupported
}

// ClearCompareFlag is not supported by GlobalTimer
func (GlobalTimer) ClearCompareFlag() error {
	return ErrCompareUnsupported
}
