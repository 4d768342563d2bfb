// Package scheduler provides background scheduling for sync cycles: a
// periodic timer plus an immediate, coalescing trigger fired after offline
// submissions. Both are gated on network availability.
package scheduler

import (
	"context"
	"math/rand"
	gosync "sync"
	"time"

	apperrors "github.com/swipeapp/catalog/internal/errors"
	"github.com/swipeapp/catalog/internal/logging"
	"github.com/swipeapp/catalog/internal/sync"
)

// CycleRunner abstracts the sync worker for scheduling.
type CycleRunner interface {
	RunCycle(ctx context.Context) (sync.CycleOutcome, error)
}

// Config holds scheduler configuration.
type Config struct {
	Interval time.Duration // periodic sync cadence (default: 15 minutes)
	Flex     time.Duration // a run may fire up to this much early (default: 5 minutes)
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() *Config {
	return &Config{
		Interval: 15 * time.Minute,
		Flex:     5 * time.Minute,
	}
}

// Scheduler drives the sync worker. Multiple rapid triggers coalesce into a
// single pending run; a trigger arriving while a run is queued is absorbed.
type Scheduler struct {
	worker   CycleRunner
	interval time.Duration
	flex     time.Duration

	trigger chan struct{} // capacity 1: at most one queued immediate run
	stopCh  chan struct{}
	wg      gosync.WaitGroup

	mu           gosync.RWMutex
	isRunning    bool
	isOnline     bool
	lastSyncTime time.Time
}

// New creates a new Scheduler.
func New(worker CycleRunner, config *Config) *Scheduler {
	if config == nil {
		config = DefaultConfig()
	}
	interval := config.Interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	flex := config.Flex
	if flex < 0 || flex >= interval {
		flex = 0
	}

	return &Scheduler{
		worker:   worker,
		interval: interval,
		flex:     flex,
		trigger:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		isOnline: true, // assume online until told otherwise
	}
}

// Start starts the scheduling loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)

	logging.Info("Sync scheduler started", map[string]interface{}{
		"interval_minutes": s.interval.Minutes(),
		"flex_minutes":     s.flex.Minutes(),
	})
}

// Stop stops the scheduler gracefully and waits for an in-flight cycle.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()

	logging.Info("Sync scheduler stopped", nil)
}

// SetOnlineStatus changes the connectivity gate. While offline no cycles run;
// queued triggers are kept and honored once connectivity returns.
func (s *Scheduler) SetOnlineStatus(isOnline bool) {
	s.mu.Lock()
	wasOnline := s.isOnline
	s.isOnline = isOnline
	s.mu.Unlock()

	if wasOnline != isOnline {
		logging.Info("Connectivity changed", map[string]interface{}{
			"is_online": isOnline,
		})
	}
	// Coming back online drains whatever accumulated while offline.
	if !wasOnline && isOnline {
		s.TriggerSync()
	}
}

// TriggerSync requests an immediate sync run. If a run is already queued the
// trigger merges with it instead of stacking a duplicate.
func (s *Scheduler) TriggerSync() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// loop waits for the periodic timer or an immediate trigger, whichever
// fires first, then runs one cycle.
func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	for {
		timer := time.NewTimer(s.nextWait())

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.stopCh:
			timer.Stop()
			return
		case <-timer.C:
		case <-s.trigger:
			timer.Stop()
		}

		if !s.IsOnline() {
			logging.Debug("Skipping sync cycle while offline", nil)
			continue
		}

		s.runCycle(ctx)
	}
}

// nextWait returns the delay until the next periodic run, up to flex early.
func (s *Scheduler) nextWait() time.Duration {
	if s.flex == 0 {
		return s.interval
	}
	return s.interval - time.Duration(rand.Int63n(int64(s.flex)))
}

// runCycle executes one cycle and interprets its outcome.
func (s *Scheduler) runCycle(ctx context.Context) {
	outcome, err := s.worker.RunCycle(ctx)

	switch outcome {
	case sync.CycleSuccess:
		s.mu.Lock()
		s.lastSyncTime = time.Now()
		s.mu.Unlock()
	case sync.CycleRetryableFailure:
		// Nothing to do now; the queue is drained again on the next tick.
		logging.Warn("Sync cycle will be retried", map[string]interface{}{
			"error": errString(err),
		})
	case sync.CycleFatalFailure:
		logging.ErrorWithCode("Sync cycle failed fatally",
			string(apperrors.ErrCycleFailed), err)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Status reports the current scheduler state.
type Status struct {
	IsRunning    bool
	IsOnline     bool
	LastSyncTime *time.Time
}

// GetStatus returns the current status of the scheduler.
func (s *Scheduler) GetStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{
		IsRunning: s.isRunning,
		IsOnline:  s.isOnline,
	}
	if !s.lastSyncTime.IsZero() {
		t := s.lastSyncTime
		status.LastSyncTime = &t
	}
	return status
}

// IsOnline returns whether the scheduler is in online mode.
func (s *Scheduler) IsOnline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isOnline
}

// IsRunning returns whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
