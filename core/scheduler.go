package core

// Timer represents a scheduled event
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) uint8
	ID       uint8 // Reported in timing events
	next     *Timer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// Scheduler runs timers in wake-time order against a rolling clock.
//
// Wake times are compared with IsBefore, so ordering survives counter
// wraparound as long as every pending wake time is within half the counter
// range of now.
type Scheduler struct {
	clock RollingTimer[uint32]
	list  *Timer
}

// NewScheduler creates a scheduler driven by clock
func NewScheduler(clock RollingTimer[uint32]) *Scheduler {
	return &Scheduler{clock: clock}
}

// Clock returns the timer the scheduler reads
func (s *Scheduler) Clock() RollingTimer[uint32] {
	return s.clock
}

// Schedule adds a timer to the schedule
func (s *Scheduler) Schedule(t *Timer) {
	state := disableInterrupts()
	s.insert(t)
	restoreInterrupts(state)

	RecordTiming(EvtTimerSchedule, t.ID, s.clock.GetTicks(), t.WakeTime, 0)
}

// ScheduleIn schedules t to wake ticks from now
func (s *Scheduler) ScheduleIn(t *Timer, ticks uint32) {
	t.WakeTime = Deadline(s.clock, ticks)
	s.Schedule(t)
}

// insert links t in sorted order by WakeTime, after any timer with the
// same WakeTime
func (s *Scheduler) insert(t *Timer) {
	if s.list == nil || IsBefore(t.WakeTime, s.list.WakeTime) {
		t.next = s.list
		s.list = t
		return
	}

	current := s.list
	for current.next != nil && !IsBefore(t.WakeTime, current.next.WakeTime) {
		current = current.next
	}

	t.next = current.next
	current.next = t
}

// Cancel removes t from the schedule. It returns false if t was not pending.
func (s *Scheduler) Cancel(t *Timer) bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	for link := &s.list; *link != nil; link = &(*link).next {
		if *link == t {
			*link = t.next
			t.next = nil
			return true
		}
	}
	return false
}

// Pending returns the number of scheduled timers
func (s *Scheduler) Pending() int {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	n := 0
	for t := s.list; t != nil; t = t.next {
		n++
	}
	return n
}

// NextWake returns the wake time of the earliest timer
func (s *Scheduler) NextWake() (uint32, bool) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if s.list == nil {
		return 0, false
	}
	return s.list.WakeTime, true
}

// Dispatch runs every timer whose WakeTime is not after the current tick
// and returns how many handlers ran.
//
// Handlers run outside the critical section and may schedule or cancel
// timers. A handler returning SF_RESCHEDULE must move WakeTime forward,
// otherwise it runs again in the same Dispatch.
func (s *Scheduler) Dispatch() int {
	now := s.clock.GetTicks()
	lateLimit := s.clock.TicksPerSecond() / 1000
	if lateLimit == 0 {
		lateLimit = 1 // Below 1kHz one tick is over 1ms
	}

	ran := 0
	for {
		state := disableInterrupts()
		timer := s.list
		if timer == nil || IsBefore(now, timer.WakeTime) {
			restoreInterrupts(state)
			return ran
		}
		s.list = timer.next
		timer.next = nil // Clear next pointer to avoid circular references
		restoreInterrupts(state)

		if late := now - timer.WakeTime; late > lateLimit {
			RecordTiming(EvtTimerPast, timer.ID, now, timer.WakeTime, late)
		}
		RecordTiming(EvtTimerFire, timer.ID, now, timer.WakeTime, 0)

		result := timer.Handler(timer)
		ran++

		if result == SF_RESCHEDULE {
			s.Schedule(timer)
		}
	}
}
