package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// steppingTimer advances by step ticks on every read
type steppingTimer struct {
	rate  uint32
	ticks uint32
	step  uint32
	reads int
}

func (s *steppingTimer) TicksPerSecond() uint32 { return s.rate }
func (s *steppingTimer) IsInitialized() bool { return true }
func (s *steppingTimer) GetTicks() uint32 {
	s.ticks += s.step
	s.reads++
	return s.ticks
}

func TestDelayMicrosAnyRate(t *testing.T) {
	tests := []struct {
		name string
		rate uint32
		us   uint32
		want uint32 // minimum ticks that must pass
	}{
		{"1MHz", 1_000_000, 250, 250},
		{"1kHz", 1000, 5000, 5},
		{"330Hz", 330, 10_000, 4}, // 4 ticks = 12121us, 3 ticks = 9090us
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timer := &steppingTimer{rate: tt.rate, ticks: 0xFFFF_FFF0, step: 1}
			start := timer.ticks
			DelayMicros(timer, tt.us)
			assert.GreaterOrEqual(t, timer.ticks-start, tt.want)
		})
	}
}

func TestDelayMillis(t *testing.T) {
	timer := &steppingTimer{rate: 1_000_000, step: 10}
	DelayMillis(timer, 4)
	assert.GreaterOrEqual(t, timer.ticks, uint32(4000))
	assert.NotZero(t, timer.reads)
}
