package core

import (
	"math"
	"math/bits"
	"time"
)

// Unsigned is the set of tick widths a rolling timer may count in
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// RollingTimer is a fixed-width tick counter that wraps to 0 after its
// maximum value.
//
// Tick values from two different timers are not comparable. Elapsed time
// between two readings of the same timer is only correct while the true
// elapsed tick count stays below the counter range (at most one wrap).
// Longer intervals alias to a smaller value and are not detected.
type RollingTimer[T Unsigned] interface {
	// TicksPerSecond returns the counter rate. It never changes.
	TicksPerSecond() T

	// GetTicks returns the current counter value, or 0 if the source
	// is not initialized yet.
	GetTicks() T

	// IsInitialized reports whether GetTicks returns real measurements
	IsInitialized() bool
}

// TicksSince returns the number of ticks elapsed since ref, modulo the
// counter width
func TicksSince[T Unsigned](t RollingTimer[T], ref T) T {
	return t.GetTicks() - ref
}

// MillisSince returns the milliseconds elapsed since ref, truncated
func MillisSince[T Unsigned](t RollingTimer[T], ref T) uint64 {
	return TicksToMillis(TicksSince(t, ref), t.TicksPerSecond())
}

// MicrosSince returns the microseconds elapsed since ref, truncated
func MicrosSince[T Unsigned](t RollingTimer[T], ref T) uint64 {
	return TicksToMicros(TicksSince(t, ref), t.TicksPerSecond())
}

// DurationSince returns the time elapsed since ref at nanosecond resolution
func DurationSince[T Unsigned](t RollingTimer[T], ref T) time.Duration {
	ns := scaleTicks(uint64(TicksSince(t, ref)), uint64(time.Second), uint64(t.TicksPerSecond()))
	if ns > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}

// TicksToMillis converts a tick count at rate ticks per second to
// milliseconds: floor(ticks * 1000 / rate)
func TicksToMillis[T Unsigned](ticks, rate T) uint64 {
	return scaleTicks(uint64(ticks), 1_000, uint64(rate))
}

// TicksToMicros converts a tick count at rate ticks per second to
// microseconds: floor(ticks * 1000000 / rate)
func TicksToMicros[T Unsigned](ticks, rate T) uint64 {
	return scaleTicks(uint64(ticks), 1_000_000, uint64(rate))
}

// scaleTicks computes floor(ticks * unit / rate) with a 128-bit intermediate.
// Results that do not fit in 64 bits saturate; that only happens for 64-bit
// counters at very low rates.
func scaleTicks(ticks, unit, rate uint64) uint64 {
	if rate == 0 {
		panic("core: rolling timer rate must be positive")
	}
	hi, lo := bits.Mul64(ticks, unit)
	if hi >= rate {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, rate)
	return q
}

// IsBefore reports whether tick a comes before tick b on the circular
// counter. Only meaningful while a and b are less than half the counter
// range apart.
func IsBefore[T Unsigned](a, b T) bool {
	d := a - b
	return d>>(bits.OnesCount64(uint64(^T(0)))-1) != 0
}

// Deadline returns the tick value ticks from now on timer t
func Deadline[T Unsigned](t RollingTimer[T], ticks T) T {
	return t.GetTicks() + ticks
}
