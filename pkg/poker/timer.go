package poker

import (
	"errors"
	"sync"
	"time"

	"github.com/decred/slog"
)

// ErrTimerNotArmed is returned when extending a deadline that is not live.
var ErrTimerNotArmed = errors.New("no armed deadline")

// TimerFired is delivered when an armed deadline elapses. Seq is the
// caller-supplied sequence of the arming (the table's stage or turn
// sequence), so consumers can drop firings for turns that already
// advanced. Seat is -1 for stage-advance timers.
type TimerFired struct {
	Seq  uint64
	Seat int
}

// TimerScheduler owns the single armed deadline of one table. Every Arm
// supersedes the previous arming, so a stale time.AfterFunc firing after
// the turn already advanced is detected and dropped instead of racily
// mutating state. time.AfterFunc runs on the runtime's monotonic clock,
// immune to wall-clock adjustment, and each arming fires at most once.
type TimerScheduler struct {
	mu      sync.Mutex
	log     slog.Logger
	deliver func(TimerFired)

	gen      uint64
	timer    *time.Timer
	seq      uint64
	seat     int
	deadline time.Time
	extended bool
}

// NewTimerScheduler creates a scheduler delivering firings through the
// given function, typically onto the table's serialized event queue.
func NewTimerScheduler(log slog.Logger, deliver func(TimerFired)) *TimerScheduler {
	return &TimerScheduler{log: log, deliver: deliver}
}

// Arm schedules a firing tagged (seq, seat) after d, cancelling any prior
// deadline. seq is echoed back in the TimerFired record.
func (s *TimerScheduler) Arm(seq uint64, seat int, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.gen++
	s.seq = seq
	s.seat = seat
	s.deadline = time.Now().Add(d)
	s.extended = false

	gen := s.gen
	s.timer = time.AfterFunc(d, func() { s.fire(gen, seq, seat) })
}

// fire delivers the timeout unless the arming has been superseded.
func (s *TimerScheduler) fire(gen, seq uint64, seat int) {
	s.mu.Lock()
	stale := gen != s.gen
	if !stale {
		s.timer = nil
	}
	s.mu.Unlock()

	if stale {
		if s.log != nil {
			s.log.Tracef("dropping stale timer firing seq=%d seat=%d", seq, seat)
		}
		return
	}
	s.deliver(TimerFired{Seq: seq, Seat: seat})
}

// Clear cancels the armed deadline, if any. Any in-flight firing becomes
// stale and is dropped.
func (s *TimerScheduler) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.gen++
}

func (s *TimerScheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Extend pushes the armed deadline back by d without changing its tag. At
// most one extension per arming; extending after the deadline elapsed
// fails.
func (s *TimerScheduler) Extend(d time.Duration) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer == nil {
		return time.Time{}, ErrTimerNotArmed
	}
	if s.extended {
		return time.Time{}, errors.New("deadline already extended this turn")
	}
	remaining := time.Until(s.deadline)
	if remaining < 0 {
		return time.Time{}, ErrTimerNotArmed
	}
	if !s.timer.Stop() {
		// Lost the race with the firing goroutine, which observed a
		// current generation and will deliver. Refuse the extension.
		return time.Time{}, ErrTimerNotArmed
	}

	s.deadline = s.deadline.Add(d)
	s.extended = true
	s.gen++
	gen, seq, seat := s.gen, s.seq, s.seat
	s.timer = time.AfterFunc(remaining+d, func() { s.fire(gen, seq, seat) })
	return s.deadline, nil
}

// Deadline returns the live deadline and whether one is armed.
func (s *TimerScheduler) Deadline() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadline, s.timer != nil
}
