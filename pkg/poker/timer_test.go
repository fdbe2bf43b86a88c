package poker

import (
	"sync"
	"testing"
	"time"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type firingRecorder struct {
	mu      sync.Mutex
	firings []TimerFired
	notify  chan struct{}
}

func newFiringRecorder() *firingRecorder {
	return &firingRecorder{notify: make(chan struct{}, 16)}
}

func (r *firingRecorder) deliver(f TimerFired) {
	r.mu.Lock()
	r.firings = append(r.firings, f)
	r.mu.Unlock()
	r.notify <- struct{}{}
}

func (r *firingRecorder) recorded() []TimerFired {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TimerFired{}, r.firings...)
}

func (r *firingRecorder) waitForFiring(t *testing.T) {
	t.Helper()
	select {
	case <-r.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestTimerFiresOnce(t *testing.T) {
	rec := newFiringRecorder()
	sched := NewTimerScheduler(slog.Disabled, rec.deliver)

	sched.Arm(7, 3, 10*time.Millisecond)
	rec.waitForFiring(t)

	// Give a hypothetical second firing time to show up.
	time.Sleep(50 * time.Millisecond)

	firings := rec.recorded()
	require.Len(t, firings, 1)
	assert.Equal(t, TimerFired{Seq: 7, Seat: 3}, firings[0])
}

func TestTimerRearmSupersedes(t *testing.T) {
	rec := newFiringRecorder()
	sched := NewTimerScheduler(slog.Disabled, rec.deliver)

	sched.Arm(1, 0, 200*time.Millisecond)
	sched.Arm(2, 1, 10*time.Millisecond)
	rec.waitForFiring(t)

	time.Sleep(300 * time.Millisecond)

	// Only the second arming delivers; the first was superseded.
	firings := rec.recorded()
	require.Len(t, firings, 1)
	assert.Equal(t, uint64(2), firings[0].Seq)
	assert.Equal(t, 1, firings[0].Seat)
}

func TestTimerClear(t *testing.T) {
	rec := newFiringRecorder()
	sched := NewTimerScheduler(slog.Disabled, rec.deliver)

	sched.Arm(1, 0, 20*time.Millisecond)
	sched.Clear()

	_, armed := sched.Deadline()
	assert.False(t, armed)

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, rec.recorded(), "Cleared timer must not deliver")
}

func TestTimerExtend(t *testing.T) {
	rec := newFiringRecorder()
	sched := NewTimerScheduler(slog.Disabled, rec.deliver)

	sched.Arm(5, 2, 50*time.Millisecond)
	before, armed := sched.Deadline()
	require.True(t, armed)

	deadline, err := sched.Extend(100 * time.Millisecond)
	require.NoError(t, err)
	assert.True(t, deadline.After(before), "Extension must push the deadline back")

	// One extension per arming.
	_, err = sched.Extend(100 * time.Millisecond)
	require.Error(t, err)

	rec.waitForFiring(t)
	firings := rec.recorded()
	require.Len(t, firings, 1)
	// The extension keeps the arming's tag.
	assert.Equal(t, TimerFired{Seq: 5, Seat: 2}, firings[0])
}

func TestTimerExtendAllowedAgainAfterRearm(t *testing.T) {
	rec := newFiringRecorder()
	sched := NewTimerScheduler(slog.Disabled, rec.deliver)

	sched.Arm(1, 0, time.Second)
	_, err := sched.Extend(time.Second)
	require.NoError(t, err)

	sched.Arm(2, 0, time.Second)
	_, err = sched.Extend(time.Second)
	require.NoError(t, err, "A fresh arming gets a fresh extension")
	sched.Clear()
}

func TestTimerExtendWithoutArming(t *testing.T) {
	sched := NewTimerScheduler(slog.Disabled, newFiringRecorder().deliver)

	_, err := sched.Extend(time.Second)
	assert.ErrorIs(t, err, ErrTimerNotArmed)
}

func TestTimerZeroDurationFiresImmediately(t *testing.T) {
	rec := newFiringRecorder()
	sched := NewTimerScheduler(slog.Disabled, rec.deliver)

	sched.Arm(9, 4, 0)
	rec.waitForFiring(t)

	firings := rec.recorded()
	require.Len(t, firings, 1)
	assert.Equal(t, TimerFired{Seq: 9, Seat: 4}, firings[0])
}
