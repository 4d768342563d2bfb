// Package sync provides the background synchronization worker that drains
// the pending product queue against the remote product service.
package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/swipeapp/catalog/internal/db"
	apperrors "github.com/swipeapp/catalog/internal/errors"
	"github.com/swipeapp/catalog/internal/logging"
	"github.com/swipeapp/catalog/internal/models"
	"github.com/swipeapp/catalog/internal/telemetry"
)

// CycleOutcome is the result of one sync cycle, interpreted by the scheduler.
type CycleOutcome int

const (
	CycleSuccess CycleOutcome = iota
	CycleRetryableFailure
	CycleFatalFailure
)

// String returns the outcome name.
func (o CycleOutcome) String() string {
	switch o {
	case CycleSuccess:
		return "success"
	case CycleRetryableFailure:
		return "retryable_failure"
	case CycleFatalFailure:
		return "fatal_failure"
	}
	return "unknown"
}

// Submitter abstracts the remote upload of one submission. The worker does
// not retry within a single Submit call; retry happens across cycles.
type Submitter interface {
	Submit(ctx context.Context, p *models.PendingProduct) (int64, error)
}

// ImageReclaimer releases image files owned by purged submissions.
type ImageReclaimer interface {
	Remove(path string) error
}

// Worker drains actionable submissions through the sync state machine.
// At most one cycle runs at a time, system-wide.
type Worker struct {
	store     db.SubmissionStore
	submitter Submitter
	media     ImageReclaimer // may be nil

	// cycleMu serializes cycles; overlapping cycles could double-upload.
	cycleMu gosync.Mutex

	statusMu    gosync.RWMutex
	lastRun     time.Time
	lastOutcome CycleOutcome
}

// NewWorker creates a sync worker. media may be nil when image cleanup is
// handled elsewhere.
func NewWorker(store db.SubmissionStore, submitter Submitter, media ImageReclaimer) *Worker {
	return &Worker{
		store:     store,
		submitter: submitter,
		media:     media,
	}
}

// Reconcile resets rows left in SYNCING by an interrupted cycle back to
// FAILED. Run once at startup, before any cycle.
func (w *Worker) Reconcile() (int64, error) {
	n, err := w.store.ResetStuckSyncing()
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrCycleFailed, "startup reconciliation failed", err)
	}
	if n > 0 {
		logging.Warn("Reset submissions stuck in SYNCING",
			map[string]interface{}{"count": n})
	}
	return n, nil
}

// RunCycle drains all actionable submissions strictly in creation order.
// Per-item submit failures mark the item FAILED and never abort the cycle;
// only failures outside per-item scope (the store being unreachable) are
// returned, as a retryable outcome for the scheduler. A second caller blocks
// until the running cycle finishes, then drains whatever is left.
func (w *Worker) RunCycle(ctx context.Context) (CycleOutcome, error) {
	w.cycleMu.Lock()
	defer w.cycleMu.Unlock()

	outcome, err := w.runCycle(ctx)

	w.statusMu.Lock()
	w.lastRun = time.Now()
	w.lastOutcome = outcome
	w.statusMu.Unlock()

	telemetry.CyclesRun.WithLabelValues(outcome.String()).Inc()
	return outcome, err
}

// TryRunCycle runs a cycle unless one is already in progress, in which case
// it reports CYCLE_IN_PROGRESS without blocking.
func (w *Worker) TryRunCycle(ctx context.Context) (CycleOutcome, error) {
	if !w.cycleMu.TryLock() {
		return CycleRetryableFailure, apperrors.New(apperrors.ErrCycleInProgress, "sync cycle already running")
	}
	defer w.cycleMu.Unlock()

	outcome, err := w.runCycle(ctx)

	w.statusMu.Lock()
	w.lastRun = time.Now()
	w.lastOutcome = outcome
	w.statusMu.Unlock()

	telemetry.CyclesRun.WithLabelValues(outcome.String()).Inc()
	return outcome, err
}

func (w *Worker) runCycle(ctx context.Context) (CycleOutcome, error) {
	start := time.Now()
	defer func() {
		telemetry.CycleDuration.Observe(time.Since(start).Seconds())
	}()

	items, err := w.store.ListActionable()
	if err != nil {
		return CycleRetryableFailure, apperrors.Wrap(apperrors.ErrCycleFailed, "failed to list actionable submissions", err)
	}
	if len(items) == 0 {
		return CycleSuccess, nil
	}

	logging.Info("Sync cycle started", map[string]interface{}{"items": len(items)})

	for _, item := range items {
		// A cancelled cycle stops early; untouched rows keep their status
		// and re-enter the drain set next cycle.
		if ctx.Err() != nil {
			return CycleRetryableFailure, apperrors.Wrap(apperrors.ErrCycleFailed, "cycle cancelled", ctx.Err())
		}
		w.processItem(ctx, item)
	}

	purged, err := w.store.PurgeSynced()
	if err != nil {
		return CycleRetryableFailure, apperrors.Wrap(apperrors.ErrCycleFailed, "failed to purge synced submissions", err)
	}
	w.reclaimImages(purged)

	logging.Info("Sync cycle completed", map[string]interface{}{
		"processed": len(items),
		"purged":    len(purged),
	})
	return CycleSuccess, nil
}

// processItem drives one submission through SYNCING to SYNCED or FAILED.
// It never returns an error: per-item failure is isolated so one bad record
// cannot block the rest of the queue.
func (w *Worker) processItem(ctx context.Context, item *models.PendingProduct) {
	defer func() {
		// A panicking submitter must not kill the cycle or the host.
		if r := recover(); r != nil {
			logging.ErrorWithCode("Submitter panicked", string(apperrors.ErrSubmitFailed),
				fmt.Errorf("panic: %v", r), map[string]interface{}{"id": item.ID})
			w.markFailed(item.ID)
		}
	}()

	if err := w.store.UpdateSyncStatus(item.ID, models.StatusSyncing); err != nil {
		// Row vanished or store hiccup; leave it for the next cycle.
		logging.Error("Failed to mark submission SYNCING", err,
			map[string]interface{}{"id": item.ID})
		return
	}
	if err := w.store.IncrementAttempts(item.ID); err != nil {
		logging.Debug("Failed to bump attempt counter",
			map[string]interface{}{"id": item.ID, "error": err.Error()})
	}

	remoteID, err := w.submitter.Submit(ctx, item)
	if err != nil {
		logging.Warn("Submission upload failed",
			map[string]interface{}{"id": item.ID, "error": err.Error()})
		w.markFailed(item.ID)
		telemetry.ItemsProcessed.WithLabelValues("failed").Inc()
		return
	}

	if err := w.store.UpdateSyncStatus(item.ID, models.StatusSynced); err != nil {
		// The upload went through but the row could not be marked. Leaving it
		// non-SYNCED means it will be re-uploaded next cycle; that duplicate
		// risk is accepted, losing the row is not.
		logging.Error("Failed to mark submission SYNCED", err,
			map[string]interface{}{"id": item.ID, "remote_id": remoteID})
		return
	}

	telemetry.ItemsProcessed.WithLabelValues("synced").Inc()
	logging.Info("Submission synced", map[string]interface{}{
		"id":        item.ID,
		"remote_id": remoteID,
	})
}

func (w *Worker) markFailed(id int64) {
	if err := w.store.UpdateSyncStatus(id, models.StatusFailed); err != nil {
		logging.Error("Failed to mark submission FAILED", err,
			map[string]interface{}{"id": id})
	}
}

// reclaimImages removes image files owned by purged submissions, best-effort.
func (w *Worker) reclaimImages(purged []*models.PendingProduct) {
	if w.media == nil {
		return
	}
	for _, p := range purged {
		if p.ImagePath == "" {
			continue
		}
		if err := w.media.Remove(p.ImagePath); err != nil {
			logging.Warn("Failed to remove image of purged submission",
				map[string]interface{}{"id": p.ID, "path": p.ImagePath, "error": err.Error()})
		}
	}
}

// LastRun returns the completion time and outcome of the most recent cycle.
// The zero time means no cycle has run yet.
func (w *Worker) LastRun() (time.Time, CycleOutcome) {
	w.statusMu.RLock()
	defer w.statusMu.RUnlock()
	return w.lastRun, w.lastOutcome
}
