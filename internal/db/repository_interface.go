// Package db provides repository interfaces for the catalog data models.
package db

import (
	"github.com/swipeapp/catalog/internal/models"
)

// SubmissionStore defines the durable store operations consumed by the sync
// worker and the creation path. This interface allows mocking for testing.
type SubmissionStore interface {
	// InsertPendingProduct persists a new submission as PENDING and returns its id.
	InsertPendingProduct(p *models.PendingProduct) (int64, error)

	// GetPendingProduct retrieves a submission by id.
	GetPendingProduct(id int64) (*models.PendingProduct, error)

	// ListActionable returns all non-SYNCED submissions, oldest first.
	ListActionable() ([]*models.PendingProduct, error)

	// UpdateSyncStatus atomically updates a single submission's status.
	UpdateSyncStatus(id int64, status models.SyncStatus) error

	// IncrementAttempts bumps a submission's attempt counter.
	IncrementAttempts(id int64) error

	// PurgeSynced deletes all SYNCED rows and returns them.
	PurgeSynced() ([]*models.PendingProduct, error)

	// ResetStuckSyncing resets SYNCING rows to FAILED at startup.
	ResetStuckSyncing() (int64, error)

	// CountByStatus returns the number of submissions per status.
	CountByStatus() (map[models.SyncStatus]int, error)
}

// Ensure *Repository implements the interface at compile time.
var _ SubmissionStore = (*Repository)(nil)
