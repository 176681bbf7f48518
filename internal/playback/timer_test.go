package playback

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestTimerSupervisor_Fires(t *testing.T) {
	supervisor := NewTimerSupervisor(zap.NewNop())
	defer supervisor.Stop()

	fired := make(chan struct{})
	supervisor.Schedule(1, TimerSettle, 10*time.Millisecond, func() {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}

	if supervisor.Pending(1, TimerSettle) {
		t.Error("fired timer still pending")
	}
}

func TestTimerSupervisor_CancelPreventsFire(t *testing.T) {
	supervisor := NewTimerSupervisor(zap.NewNop())
	defer supervisor.Stop()

	var fired atomic.Bool
	supervisor.Schedule(1, TimerIdleLeave, 20*time.Millisecond, func() {
		fired.Store(true)
	})
	supervisor.Cancel(1, TimerIdleLeave)

	time.Sleep(50 * time.Millisecond)
	if fired.Load() {
		t.Error("canceled timer fired")
	}
	if supervisor.Pending(1, TimerIdleLeave) {
		t.Error("canceled timer still pending")
	}
}

func TestTimerSupervisor_ScheduleReplacesPrevious(t *testing.T) {
	supervisor := NewTimerSupervisor(zap.NewNop())
	defer supervisor.Stop()

	var first, second atomic.Bool
	supervisor.Schedule(1, TimerIdleLeave, 20*time.Millisecond, func() {
		first.Store(true)
	})
	// Второй таймер того же вида заменяет первый
	supervisor.Schedule(1, TimerIdleLeave, 30*time.Millisecond, func() {
		second.Store(true)
	})

	time.Sleep(80 * time.Millisecond)
	if first.Load() {
		t.Error("replaced timer fired")
	}
	if !second.Load() {
		t.Error("replacing timer did not fire")
	}
}

func TestTimerSupervisor_KindsAreIndependent(t *testing.T) {
	supervisor := NewTimerSupervisor(zap.NewNop())
	defer supervisor.Stop()

	var settle, idle atomic.Bool
	supervisor.Schedule(1, TimerSettle, 10*time.Millisecond, func() {
		settle.Store(true)
	})
	supervisor.Schedule(1, TimerIdleLeave, 10*time.Millisecond, func() {
		idle.Store(true)
	})
	supervisor.Cancel(1, TimerSettle)

	time.Sleep(50 * time.Millisecond)
	if settle.Load() {
		t.Error("canceled settle timer fired")
	}
	if !idle.Load() {
		t.Error("idle timer must not be affected by settle cancel")
	}
}

func TestTimerSupervisor_CancelAll(t *testing.T) {
	supervisor := NewTimerSupervisor(zap.NewNop())
	defer supervisor.Stop()

	var count atomic.Int32
	supervisor.Schedule(1, TimerSettle, 20*time.Millisecond, func() { count.Add(1) })
	supervisor.Schedule(1, TimerIdleLeave, 20*time.Millisecond, func() { count.Add(1) })
	supervisor.Schedule(2, TimerIdleLeave, 20*time.Millisecond, func() { count.Add(1) })

	supervisor.CancelAll(1)

	time.Sleep(60 * time.Millisecond)
	if got := count.Load(); got != 1 {
		t.Errorf("fired count = %d, want 1 (only chat 2)", got)
	}
}
