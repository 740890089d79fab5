package core

import (
	"sync"
	"time"
)

// Epoch returns the process-wide reference instant shared by every
// StdTimer. It is taken from the monotonic clock on first use and never
// changes afterwards.
var Epoch = sync.OnceValue(time.Now)

// StdTimer is a 32-bit rolling timer derived from the host monotonic clock.
//
// All StdTimers count from the same Epoch, so creating a new one never
// resets the counter. The zero value is not usable; call NewStdTimer.
type StdTimer struct {
	rate         uint32
	nanosPerTick uint64
}

// NewStdTimer returns a software timer counting rate ticks per second.
//
// Ticks are computed as elapsed nanoseconds / (1e9 / rate) with integer
// division, so rates that do not divide 1e9 run slightly fast. It panics if
// rate is 0 or above 1e9.
func NewStdTimer(rate uint32) StdTimer {
	if rate == 0 || rate > uint32(time.Second) {
		panic("core: software timer rate must be in [1, 1e9]")
	}
	// Establish the epoch now so the first GetTicks is not the one paying for it.
	Epoch()
	return StdTimer{
		rate:         rate,
		nanosPerTick: uint64(time.Second) / uint64(rate),
	}
}

// TicksPerSecond implements RollingTimer
func (t StdTimer) TicksPerSecond() uint32 {
	return t.rate
}

// GetTicks implements RollingTimer
func (t StdTimer) GetTicks() uint32 {
	elapsed := time.Since(Epoch())
	if elapsed < 0 {
		elapsed = 0
	}
	return uint32((uint64(elapsed) / t.nanosPerTick) & 0xFFFF_FFFF)
}

// IsInitialized always returns true; the software timer has no
// uninitialized state.
func (t StdTimer) IsInitialized() bool {
	return true
}

// TicksSince returns the ticks elapsed since ref
func (t StdTimer) TicksSince(ref uint32) uint32 {
	return TicksSince[uint32](t, ref)
}

// MillisSince returns the milliseconds elapsed since ref
func (t StdTimer) MillisSince(ref uint32) uint64 {
	return MillisSince[uint32](t, ref)
}

// MicrosSince returns the microseconds elapsed since ref
func (t StdTimer) MicrosSince(ref uint32) uint64 {
	return MicrosSince[uint32](t, ref)
}
