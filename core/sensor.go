package core

import (
	"errors"

	"tinygo.org/x/drivers"
)

// ErrTimerNotReady is returned by TickSensor.Update before the underlying
// timer is initialized.
var ErrTimerNotReady = errors.New("tick sensor: timer not initialized")

// TickSensor exposes a rolling timer as a TinyGo driver sensor so it can be
// updated in the same loop as other sensors. Update latches the timer and
// the getters read the latched value.
type TickSensor struct {
	timer   RollingTimer[uint32]
	ticks   uint32
	elapsed uint32
	updated bool
}

var _ drivers.Sensor = (*TickSensor)(nil)

// NewTickSensor wraps timer
func NewTickSensor(timer RollingTimer[uint32]) *TickSensor {
	return &TickSensor{timer: timer}
}

// Update latches the current tick when which includes drivers.Time
func (s *TickSensor) Update(which drivers.Measurement) error {
	if which&drivers.Time == 0 {
		return nil
	}
	if !s.timer.IsInitialized() {
		return ErrTimerNotReady
	}

	now := s.timer.GetTicks()
	if s.updated {
		s.elapsed = now - s.ticks
	}
	s.ticks = now
	s.updated = true
	return nil
}

// Ticks returns the tick latched by the last Update
func (s *TickSensor) Ticks() uint32 {
	return s.ticks
}

// ElapsedTicks returns the ticks between the last two Updates
func (s *TickSensor) ElapsedTicks() uint32 {
	return s.elapsed
}

// ElapsedMicros returns the microseconds between the last two Updates
func (s *TickSensor) ElapsedMicros() uint64 {
	return TicksToMicros(s.elapsed, s.timer.TicksPerSecond())
}
