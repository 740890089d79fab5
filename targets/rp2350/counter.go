//go:build rp2350

package main

import (
	"runtime/volatile"
	"unsafe"
)

// RP2350 TIMER0 peripheral. It is NOT at the RP2040 TIMER address:
// - RP2040 TIMER:  0x40054000
// - RP2350 TIMER0: 0x400B0000
//
// Register offsets match the RP2040 apart from the base.
const (
	timerBase     = 0x400B0000
	timerTimeHW   = timerBase + 0x00 // Write high word, latches both
	timerTimeLW   = timerBase + 0x04 // Write low word; must come first
	timerTimeRawL = timerBase + 0x28 // Raw low word, no latching
	timerPause    = timerBase + 0x30
)

var (
	timerHW       = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTimeHW)))
	timerLW       = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTimeLW)))
	timerRawL     = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTimeRawL)))
	timerPauseReg = (*volatile.Register32)(unsafe.Pointer(uintptr(timerPause)))
)

// TimerCounter is the low 32 bits of TIMER0
type TimerCounter struct{}

// Start unpauses TIMER0 and discards the first readings, which can be
// unstable right after TinyGo's clks.initTicks().
func (TimerCounter) Start() {
	timerPauseReg.Set(0)
	_ = timerRawL.Get()
	_ = timerRawL.Get()
	_ = timerRawL.Get()
}

// Capture reads the raw low word (same register TinyGo's runtime uses)
func (TimerCounter) Capture() uint32 {
	return timerRawL.Get()
}

// Clear writes 0 to the whole 64-bit count
func (TimerCounter) Clear() {
	timerLW.Set(0)
	timerHW.Set(0)
}
