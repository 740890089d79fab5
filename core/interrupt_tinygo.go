//go:build tinygo

package core

import "runtime/interrupt"

// State is the saved interrupt mask
type State = interrupt.State

// disableInterrupts masks interrupts so timer state shared with interrupt
// handlers can be updated, and returns the previous mask. Calls nest.
func disableInterrupts() State {
	return interrupt.Disable()
}

// restoreInterrupts restores the mask saved by disableInterrupts
func restoreInterrupts(state State) {
	interrupt.Restore(state)
}
