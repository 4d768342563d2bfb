// Package models provides data model definitions for the catalog core.
package models

import "fmt"

// SyncStatus represents the sync lifecycle state of a pending product.
type SyncStatus string

const (
	StatusPending SyncStatus = "PENDING"
	StatusSyncing SyncStatus = "SYNCING"
	StatusSynced  SyncStatus = "SYNCED"
	StatusFailed  SyncStatus = "FAILED"
)

// Valid reports whether s is a known sync status.
func (s SyncStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSyncing, StatusSynced, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal status. Only SYNCED is terminal;
// FAILED rows re-enter the drain set on the next cycle.
func (s SyncStatus) Terminal() bool {
	return s == StatusSynced
}

// CanTransition reports whether moving from one status to another is allowed.
// The lifecycle is PENDING -> SYNCING -> SYNCED | FAILED, with FAILED
// re-entering SYNCING on retry. There is no transition out of SYNCED.
func CanTransition(from, to SyncStatus) bool {
	switch from {
	case StatusPending, StatusFailed:
		return to == StatusSyncing
	case StatusSyncing:
		return to == StatusSynced || to == StatusFailed
	}
	return false
}

// PendingProduct represents a locally queued product submission awaiting
// upload to the remote catalog.
type PendingProduct struct {
	ID        int64      `db:"id" json:"id"`
	Name      string     `db:"product_name" json:"product_name"`
	Category  string     `db:"product_type" json:"product_type"`
	Price     float64    `db:"price" json:"price"`
	TaxRate   float64    `db:"tax" json:"tax"`
	ImagePath string     `db:"image_path" json:"image_path,omitempty"` // empty = no image
	CreatedAt int64      `db:"created_at" json:"created_at"`           // unix millis
	Status    SyncStatus `db:"sync_status" json:"sync_status"`
	Attempts  int        `db:"attempts" json:"attempts"`
}

// TableName returns the table name for PendingProduct.
func (PendingProduct) TableName() string {
	return "pending_products"
}

// Validate checks the user-entered payload fields.
func (p *PendingProduct) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("product name is required")
	}
	if p.Category == "" {
		return fmt.Errorf("product category is required")
	}
	if p.Price < 0 {
		return fmt.Errorf("price must be non-negative, got %v", p.Price)
	}
	if p.TaxRate < 0 {
		return fmt.Errorf("tax rate must be non-negative, got %v", p.TaxRate)
	}
	return nil
}
