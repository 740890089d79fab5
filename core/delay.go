package core

// DelayMicros spins on t until us microseconds have elapsed.
//
// Works at any rate, but waits longer than the counter range alias like
// every other elapsed measurement; use DelayMillis for long waits.
func DelayMicros(t RollingTimer[uint32], us uint32) {
	start := t.GetTicks()
	for MicrosSince(t, start) < uint64(us) {
	}
}

// DelayMillis spins on t for ms milliseconds, one millisecond at a time
func DelayMillis(t RollingTimer[uint32], ms uint32) {
	for i := uint32(0); i < ms; i++ {
		DelayMicros(t, 1000)
	}
}
