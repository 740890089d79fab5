package core

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// alignedStart spins until timer moves to a new tick so a measurement starts
// on a tick edge
func alignedStart(timer StdTimer) uint32 {
	first := timer.GetTicks()
	for {
		if now := timer.GetTicks(); now != first {
			return now
		}
	}
}

func TestStdTimerTracksRealTime(t *testing.T) {
	if testing.Short() {
		t.Skip("sleeps for a second per rate")
	}

	for _, rate := range []uint32{1000, 1_000_000, 330} {
		t.Run(time.Duration(int64(time.Second)/int64(rate)).String(), func(t *testing.T) {
			timer := NewStdTimer(rate)
			start := alignedStart(timer)

			time.Sleep(time.Second)

			millis := timer.MillisSince(start)
			assert.InDelta(t, 1000, millis, 2, "rate %d", rate)
		})
	}
}

func TestStdTimerSharesEpoch(t *testing.T) {
	const callers = 16

	var wg sync.WaitGroup
	epochs := make([]time.Time, callers)
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			epochs[i] = Epoch()
		}()
	}
	wg.Wait()

	for _, e := range epochs {
		assert.True(t, e.Equal(epochs[0]))
	}
}

func TestStdTimerNewDoesNotReset(t *testing.T) {
	a := NewStdTimer(1000)
	time.Sleep(5 * time.Millisecond)
	b := NewStdTimer(1000)

	// Same rate, same epoch: b is not behind a
	ta := a.GetTicks()
	tb := b.GetTicks()
	assert.False(t, IsBefore(tb, ta))
}

func TestStdTimerBackToBack(t *testing.T) {
	timer := NewStdTimer(1_000_000)
	start := timer.GetTicks()
	elapsed := timer.TicksSince(start)
	assert.Less(t, elapsed, uint32(1000), "back-to-back reads %d ticks apart", elapsed)
	assert.Less(t, timer.MicrosSince(start), uint64(1000))
}

func TestStdTimerRate(t *testing.T) {
	timer := NewStdTimer(330)
	assert.Equal(t, uint32(330), timer.TicksPerSecond())
	assert.True(t, timer.IsInitialized())
	assert.Equal(t, uint64(3_030_303), timer.nanosPerTick)
}

func TestNewStdTimerRejectsBadRate(t *testing.T) {
	assert.Panics(t, func() { NewStdTimer(0) })
	assert.Panics(t, func() { NewStdTimer(1_000_000_001) })
	require.NotPanics(t, func() { NewStdTimer(1_000_000_000) })
}
