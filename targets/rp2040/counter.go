//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"
)

// RP2040 TIMER peripheral. It counts microseconds from the 1MHz tick
// generator, which TinyGo's runtime starts during clock setup.
const (
	timerBase     = 0x40054000
	timerTIMEHW   = timerBase + 0x00 // Write high word, latches both
	timerTIMELW   = timerBase + 0x04 // Write low word; must come first
	timerTIMERAWL = timerBase + 0x28 // Raw low word, no latching
	timerPAUSE    = timerBase + 0x30
)

var (
	timerHW    = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMEHW)))
	timerLW    = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMELW)))
	timerRAWL  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
	timerPause = (*volatile.Register32)(unsafe.Pointer(uintptr(timerPAUSE)))
)

// TimerCounter is the low 32 bits of the 64-bit TIMER peripheral. The
// peripheral keeps counting past 2^32; the low word wraps on its own.
type TimerCounter struct{}

// Start unpauses the timer. It is already running after reset.
func (TimerCounter) Start() {
	timerPause.Set(0)
}

// Capture reads the raw low word. Reading TIMERAWL does not latch TIMEHR,
// so it is safe from interrupt context.
func (TimerCounter) Capture() uint32 {
	return timerRAWL.Get()
}

// Clear writes 0 to the whole 64-bit count
func (TimerCounter) Clear() {
	timerLW.Set(0)
	timerHW.Set(0)
}
