// Package scheduler tests for the background sync scheduler.
package scheduler

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/swipeapp/catalog/internal/sync"
)

// stubRunner counts cycles and can block mid-cycle.
type stubRunner struct {
	mu      gosync.Mutex
	runs    int
	block   chan struct{} // when non-nil, RunCycle blocks until closed
	outcome sync.CycleOutcome
	err     error
}

func (r *stubRunner) RunCycle(ctx context.Context) (sync.CycleOutcome, error) {
	r.mu.Lock()
	r.runs++
	outcome, err := r.outcome, r.err
	block := r.block
	r.mu.Unlock()
	if block != nil {
		<-block // a closed channel never blocks again
	}
	return outcome, err
}

func (r *stubRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

// waitFor polls cond for up to two seconds.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting: %s", msg)
}

// TestTriggerSync verifies an immediate trigger runs a cycle long before the
// periodic timer would.
func TestTriggerSync(t *testing.T) {
	runner := &stubRunner{}
	s := New(runner, &Config{Interval: time.Hour})
	s.Start(context.Background())
	defer s.Stop()

	s.TriggerSync()

	waitFor(t, func() bool { return runner.count() == 1 }, "triggered cycle to run")
}

// TestTriggerSync_coalesces verifies rapid triggers merge: one in-flight run
// plus at most one queued run, no matter how many triggers fire.
func TestTriggerSync_coalesces(t *testing.T) {
	runner := &stubRunner{block: make(chan struct{})}
	s := New(runner, &Config{Interval: time.Hour})
	s.Start(context.Background())
	defer s.Stop()

	s.TriggerSync()
	waitFor(t, func() bool { return runner.count() == 1 }, "first cycle to start")

	// While the first run is blocked, these must collapse into one queued run.
	for i := 0; i < 5; i++ {
		s.TriggerSync()
	}
	close(runner.block)

	waitFor(t, func() bool { return runner.count() == 2 }, "queued cycle to run")
	time.Sleep(50 * time.Millisecond)
	if got := runner.count(); got != 2 {
		t.Errorf("Expected exactly 2 cycles after 6 triggers, got %d", got)
	}
}

// TestOfflineGate verifies no cycle runs while offline, and that the queued
// trigger fires once connectivity returns.
func TestOfflineGate(t *testing.T) {
	runner := &stubRunner{}
	s := New(runner, &Config{Interval: time.Hour})
	s.SetOnlineStatus(false)
	s.Start(context.Background())
	defer s.Stop()

	s.TriggerSync()
	time.Sleep(50 * time.Millisecond)
	if got := runner.count(); got != 0 {
		t.Fatalf("Expected no cycles while offline, got %d", got)
	}

	s.SetOnlineStatus(true)
	waitFor(t, func() bool { return runner.count() >= 1 }, "cycle after coming online")
}

// TestPeriodicRuns verifies the timer fires cycles without any trigger.
func TestPeriodicRuns(t *testing.T) {
	runner := &stubRunner{}
	s := New(runner, &Config{Interval: 20 * time.Millisecond})
	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, func() bool { return runner.count() >= 2 }, "at least two periodic cycles")
}

// TestFlexWindow verifies the computed wait never exceeds the interval and
// never fires more than flex early.
func TestFlexWindow(t *testing.T) {
	s := New(&stubRunner{}, &Config{Interval: 15 * time.Minute, Flex: 5 * time.Minute})
	for i := 0; i < 100; i++ {
		w := s.nextWait()
		if w > 15*time.Minute {
			t.Fatalf("Wait %v exceeds interval", w)
		}
		if w <= 10*time.Minute {
			t.Fatalf("Wait %v fires more than flex early", w)
		}
	}
}

// TestStartStop verifies lifecycle state and that Stop/Start are idempotent.
func TestStartStop(t *testing.T) {
	s := New(&stubRunner{}, &Config{Interval: time.Hour})

	if s.IsRunning() {
		t.Fatal("Expected not running before Start")
	}
	s.Start(context.Background())
	s.Start(context.Background()) // no-op
	if !s.IsRunning() {
		t.Fatal("Expected running after Start")
	}

	s.Stop()
	s.Stop() // no-op
	if s.IsRunning() {
		t.Fatal("Expected not running after Stop")
	}
}

// TestGetStatus verifies the last sync time is recorded only on success.
func TestGetStatus(t *testing.T) {
	runner := &stubRunner{outcome: sync.CycleRetryableFailure, err: errors.New("remote down")}
	s := New(runner, &Config{Interval: time.Hour})
	s.Start(context.Background())
	defer s.Stop()

	status := s.GetStatus()
	if !status.IsRunning || !status.IsOnline {
		t.Fatalf("Expected running and online, got %+v", status)
	}
	if status.LastSyncTime != nil {
		t.Fatal("Expected no last sync time before any successful cycle")
	}

	s.TriggerSync()
	waitFor(t, func() bool { return runner.count() == 1 }, "failed cycle to run")
	if got := s.GetStatus().LastSyncTime; got != nil {
		t.Fatal("Expected failed cycle not to record last sync time")
	}

	runner.mu.Lock()
	runner.outcome = sync.CycleSuccess
	runner.err = nil
	runner.mu.Unlock()

	s.TriggerSync()
	waitFor(t, func() bool { return s.GetStatus().LastSyncTime != nil }, "successful cycle to record time")
}
