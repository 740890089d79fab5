package core

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// unbindGlobalTimer returns the global timer to its uninitialized state for
// the duration of a test
func unbindGlobalTimer(t *testing.T) {
	t.Helper()
	reset := func() {
		boundCounter.Store(nil)
		bindClaimed.Store(false)
	}
	reset()
	t.Cleanup(reset)
}

// stepCounter advances by step on every Capture
type stepCounter struct {
	count   atomic.Uint32
	step    uint32
	started atomic.Int32
}

func (c *stepCounter) Start() { c.started.Add(1) }
func (c *stepCounter) Capture() uint32 { return c.count.Add(c.step) }
func (c *stepCounter) Clear() { c.count.Store(0) }

func TestGlobalTimerUninitialized(t *testing.T) {
	unbindGlobalTimer(t)

	timer := NewGlobalTimer()
	for i := 0; i < 1000; i++ {
		assert.Equal(t, uint32(0), timer.GetTicks())
		assert.False(t, timer.IsInitialized())
	}
	assert.Equal(t, uint32(GlobalTimerRate), timer.TicksPerSecond())
	assert.Equal(t, Instant(0), timer.Now())

	// Reset before init is a no-op
	timer.Reset()
}

func TestInitGlobalTimer(t *testing.T) {
	unbindGlobalTimer(t)

	ctrl := gomock.NewController(t)
	counter := NewMockCounter(ctrl)
	gomock.InOrder(
		counter.EXPECT().Start(),
		counter.EXPECT().Capture().Return(uint32(0xFFFF_FFFB)),
		counter.EXPECT().Capture().Return(uint32(0xFFFF_FFFB)),
		counter.EXPECT().Capture().Return(uint32(3)),
	)

	InitGlobalTimer(counter)

	timer := NewGlobalTimer()
	require.True(t, timer.IsInitialized())
	start := timer.GetTicks()
	assert.Equal(t, uint32(0xFFFF_FFFB), start)
	assert.Equal(t, uint32(8), timer.TicksSince(start))
}

func TestGlobalTimerCopiesShareCounter(t *testing.T) {
	unbindGlobalTimer(t)

	ctrl := gomock.NewController(t)
	counter := NewMockCounter(ctrl)
	counter.EXPECT().Start()
	counter.EXPECT().Capture().Return(uint32(1_500_000)).AnyTimes()

	a := NewGlobalTimer()
	InitGlobalTimer(counter)
	b := NewGlobalTimer()

	assert.True(t, a.IsInitialized())
	assert.Equal(t, b.GetTicks(), a.GetTicks())
	assert.Equal(t, uint64(1500), a.MillisSince(0))
	assert.Equal(t, uint64(1_500_000), b.MicrosSince(0))
}

func TestInitGlobalTimerTwicePanics(t *testing.T) {
	unbindGlobalTimer(t)

	first := &stepCounter{step: 1}
	InitGlobalTimer(first)

	second := &stepCounter{step: 1}
	assert.Panics(t, func() { InitGlobalTimer(second) })
	assert.Equal(t, int32(0), second.started.Load())
	assert.Panics(t, func() { InitGlobalTimer(nil) })
}

func TestInitGlobalTimerStartPanicReleasesClaim(t *testing.T) {
	unbindGlobalTimer(t)

	ctrl := gomock.NewController(t)
	broken := NewMockCounter(ctrl)
	broken.EXPECT().Start().Do(func() { panic("counter clock not running") })

	assert.Panics(t, func() { InitGlobalTimer(broken) })
	assert.False(t, NewGlobalTimer().IsInitialized())

	working := &stepCounter{step: 1}
	require.NotPanics(t, func() { InitGlobalTimer(working) })
	assert.True(t, NewGlobalTimer().IsInitialized())
	assert.Equal(t, int32(1), working.started.Load())
}

func TestInitGlobalTimerConcurrent(t *testing.T) {
	unbindGlobalTimer(t)

	const callers = 8
	var (
		wg       sync.WaitGroup
		panics   atomic.Int32
		counters [callers]*stepCounter
	)
	for i := 0; i < callers; i++ {
		i := i
		counters[i] = &stepCounter{step: 1}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if recover() != nil {
					panics.Add(1)
				}
			}()
			InitGlobalTimer(counters[i])
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(callers-1), panics.Load())
	started := 0
	for _, c := range counters {
		started += int(c.started.Load())
	}
	assert.Equal(t, 1, started)
	assert.True(t, NewGlobalTimer().IsInitialized())
}

func TestGlobalTimerDelay(t *testing.T) {
	unbindGlobalTimer(t)

	counter := &stepCounter{step: 7}
	InitGlobalTimer(counter)
	timer := NewGlobalTimer()

	start := timer.GetTicks()
	timer.DelayMicros(100)
	assert.GreaterOrEqual(t, timer.TicksSince(start), uint32(100))

	start = timer.GetTicks()
	timer.DelayMillis(3)
	assert.GreaterOrEqual(t, timer.TicksSince(start), uint32(3000))

	// Delays across the wrap
	counter.count.Store(0xFFFF_FF00)
	start = timer.GetTicks()
	timer.DelayMicros(1000)
	assert.GreaterOrEqual(t, timer.TicksSince(start), uint32(1000))
	assert.Less(t, timer.GetTicks(), uint32(0xFFFF_FF00))
}

func TestGlobalTimerMonotonic(t *testing.T) {
	unbindGlobalTimer(t)

	ctrl := gomock.NewController(t)
	counter := NewMockCounter(ctrl)
	counter.EXPECT().Start()
	counter.EXPECT().Capture().Return(uint32(0x8000_0001)).Times(2)
	counter.EXPECT().Clear()

	InitGlobalTimer(counter)

	var timer Monotonic = NewGlobalTimer()
	assert.Equal(t, Instant(-0x7FFF_FFFF), timer.Now())
	assert.Equal(t, Instant(0), timer.Zero())
	timer.Reset()

	err := timer.SetCompare(timer.Zero())
	assert.True(t, errors.Is(err, errors.ErrUnsupported))
	assert.ErrorIs(t, timer.ClearCompareFlag(), ErrCompareUnsupported)
}
