// Package db provides the durable pending product repository.
package db

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/swipeapp/catalog/internal/errors"
	"github.com/swipeapp/catalog/internal/models"
)

// Repository provides CRUD operations for pending product submissions.
type Repository struct {
	db *sql.DB

	// Prepared statement cache for frequently used queries.
	// Statements are prepared on first use and cached for reuse.
	stmtCache sync.Map // map[string]*sql.Stmt
}

// NewRepository creates a new Repository instance.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// PrepareStmt gets or creates a prepared statement from cache.
func (r *Repository) PrepareStmt(query string) (*sql.Stmt, error) {
	if stmt, ok := r.stmtCache.Load(query); ok {
		return stmt.(*sql.Stmt), nil
	}

	stmt, err := r.db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	// If another goroutine already prepared this, use the existing one.
	actual, loaded := r.stmtCache.LoadOrStore(query, stmt)
	if loaded {
		stmt.Close()
		return actual.(*sql.Stmt), nil
	}

	return stmt, nil
}

// Close closes all cached prepared statements.
func (r *Repository) Close() error {
	var firstErr error
	r.stmtCache.Range(func(key, value interface{}) bool {
		stmt := value.(*sql.Stmt)
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}

// =====================================================
// PendingProduct Operations
// =====================================================

// InsertPendingProduct persists a new submission with status PENDING and
// returns the assigned id. Status and attempts supplied by the caller are
// ignored: every submission starts its lifecycle at PENDING.
func (r *Repository) InsertPendingProduct(p *models.PendingProduct) (int64, error) {
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().UnixMilli()
	}
	p.Status = models.StatusPending
	p.Attempts = 0

	query := `
	INSERT INTO pending_products (product_name, product_type, price, tax, image_path, created_at, sync_status, attempts)
	VALUES (?, ?, ?, ?, ?, ?, ?, 0)
	`
	var imagePath interface{}
	if p.ImagePath != "" {
		imagePath = p.ImagePath
	}

	res, err := r.db.Exec(query, p.Name, p.Category, p.Price, p.TaxRate,
		imagePath, p.CreatedAt, p.Status)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDatabase, "failed to insert pending product", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDatabase, "failed to read inserted id", err)
	}
	p.ID = id
	return id, nil
}

// GetPendingProduct retrieves a submission by id.
func (r *Repository) GetPendingProduct(id int64) (*models.PendingProduct, error) {
	query := `
	SELECT id, product_name, product_type, price, tax, image_path, created_at, sync_status, attempts
	FROM pending_products WHERE id = ?
	`
	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to prepare lookup", err)
	}

	p, err := scanPendingProduct(stmt.QueryRow(id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound(id)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to load pending product", err)
	}
	return p, nil
}

// ListActionable returns all submissions that still need syncing: every row
// whose status is not the terminal SYNCED, oldest first. FAILED rows re-enter
// this set, and so does any row left SYNCING by an interrupted cycle.
func (r *Repository) ListActionable() ([]*models.PendingProduct, error) {
	query := `
	SELECT id, product_name, product_type, price, tax, image_path, created_at, sync_status, attempts
	FROM pending_products
	WHERE sync_status != ?
	ORDER BY created_at ASC, id ASC
	`
	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to prepare listing", err)
	}

	rows, err := stmt.Query(models.StatusSynced)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to list actionable products", err)
	}
	defer rows.Close()

	var products []*models.PendingProduct
	for rows.Next() {
		p, err := scanPendingProduct(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to scan pending product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to iterate pending products", err)
	}
	return products, nil
}

// UpdateSyncStatus atomically updates the status of a single submission.
// Returns NOT_FOUND when the id does not exist; other rows are never touched.
func (r *Repository) UpdateSyncStatus(id int64, status models.SyncStatus) error {
	if !status.Valid() {
		return apperrors.New(apperrors.ErrInvalid, fmt.Sprintf("invalid sync status %q", status))
	}

	stmt, err := r.PrepareStmt("UPDATE pending_products SET sync_status = ? WHERE id = ?")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to prepare status update", err)
	}

	res, err := stmt.Exec(status, id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to update sync status", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to read affected rows", err)
	}
	if affected == 0 {
		return apperrors.NotFound(id)
	}
	return nil
}

// IncrementAttempts bumps the attempt counter of a submission. The counter is
// observational only; it does not gate retries.
func (r *Repository) IncrementAttempts(id int64) error {
	stmt, err := r.PrepareStmt("UPDATE pending_products SET attempts = attempts + 1 WHERE id = ?")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to prepare attempts update", err)
	}

	res, err := stmt.Exec(id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to increment attempts", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to read affected rows", err)
	}
	if affected == 0 {
		return apperrors.NotFound(id)
	}
	return nil
}

// PurgeSynced deletes all rows that reached SYNCED and returns the purged
// submissions so their image files can be reclaimed. Deleting zero rows is
// not an error, so the sweep is safe to call repeatedly.
func (r *Repository) PurgeSynced() ([]*models.PendingProduct, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to begin purge", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`
	SELECT id, product_name, product_type, price, tax, image_path, created_at, sync_status, attempts
	FROM pending_products WHERE sync_status = ?`, models.StatusSynced)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to select synced products", err)
	}

	var purged []*models.PendingProduct
	for rows.Next() {
		p, err := scanPendingProduct(rows)
		if err != nil {
			rows.Close()
			return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to scan synced product", err)
		}
		purged = append(purged, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to iterate synced products", err)
	}
	rows.Close()

	if _, err := tx.Exec("DELETE FROM pending_products WHERE sync_status = ?", models.StatusSynced); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to delete synced products", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to commit purge", err)
	}
	return purged, nil
}

// ResetStuckSyncing moves rows left in SYNCING by an interrupted cycle back
// to FAILED so they re-enter the drain set. Called once at startup, before
// the scheduler begins running cycles.
func (r *Repository) ResetStuckSyncing() (int64, error) {
	res, err := r.db.Exec("UPDATE pending_products SET sync_status = ? WHERE sync_status = ?",
		models.StatusFailed, models.StatusSyncing)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDatabase, "failed to reset stuck rows", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDatabase, "failed to read affected rows", err)
	}
	return affected, nil
}

// CountByStatus returns the number of submissions per sync status.
func (r *Repository) CountByStatus() (map[models.SyncStatus]int, error) {
	rows, err := r.db.Query("SELECT sync_status, COUNT(*) FROM pending_products GROUP BY sync_status")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to count by status", err)
	}
	defer rows.Close()

	counts := make(map[models.SyncStatus]int)
	for rows.Next() {
		var status models.SyncStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to scan status count", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPendingProduct(row rowScanner) (*models.PendingProduct, error) {
	var p models.PendingProduct
	var imagePath sql.NullString
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.TaxRate,
		&imagePath, &p.CreatedAt, &p.Status, &p.Attempts)
	if err != nil {
		return nil, err
	}
	if imagePath.Valid {
		p.ImagePath = imagePath.String
	}
	return &p, nil
}
