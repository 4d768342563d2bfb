// Package service implements the catalog application logic: creating offline
// product submissions, querying queue state, and listing remote products.
package service

import (
	"context"
	"io"

	"github.com/swipeapp/catalog/internal/db"
	apperrors "github.com/swipeapp/catalog/internal/errors"
	"github.com/swipeapp/catalog/internal/logging"
	"github.com/swipeapp/catalog/internal/models"
	"github.com/swipeapp/catalog/internal/telemetry"
)

// ImageSaver persists an uploaded image and returns its local path.
type ImageSaver interface {
	Save(r io.Reader, originalName string) (string, error)
	Remove(path string) error
}

// ProductFetcher lists products from the remote service.
type ProductFetcher interface {
	FetchProducts(ctx context.Context) ([]models.Product, error)
}

// SyncTrigger requests an immediate background sync.
type SyncTrigger interface {
	TriggerSync()
}

// CreateProductInput is the caller-facing shape of a new submission.
type CreateProductInput struct {
	Name     string
	Category string
	Price    float64
	TaxRate  float64

	// Optional image upload. ImageName carries the original filename so the
	// stored copy keeps its extension.
	Image     io.Reader
	ImageName string

	// ImagePath references an image already on local disk. Ignored when an
	// upload stream is provided.
	ImagePath string
}

// CatalogService wires the submission store, image store, remote client and
// sync trigger into the operations the HTTP surface exposes.
type CatalogService struct {
	store   db.SubmissionStore
	images  ImageSaver // may be nil when image storage is disabled
	remote  ProductFetcher
	trigger SyncTrigger // may be nil
}

// NewCatalogService creates the service. images and trigger may be nil.
func NewCatalogService(store db.SubmissionStore, images ImageSaver, remote ProductFetcher, trigger SyncTrigger) *CatalogService {
	return &CatalogService{
		store:   store,
		images:  images,
		remote:  remote,
		trigger: trigger,
	}
}

// CreatePendingProduct validates the input, stores the optional image, and
// enqueues a PENDING submission. The write is durable before this returns;
// upload happens later, in the background. A sync is triggered immediately so
// an online device uploads without waiting for the next periodic run.
func (s *CatalogService) CreatePendingProduct(ctx context.Context, input CreateProductInput) (*models.PendingProduct, error) {
	product := &models.PendingProduct{
		Name:     input.Name,
		Category: input.Category,
		Price:    input.Price,
		TaxRate:  input.TaxRate,
	}
	if err := product.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "invalid submission", err)
	}

	savedPath := ""
	switch {
	case input.Image != nil:
		if s.images == nil {
			return nil, apperrors.New(apperrors.ErrMediaStore, "image storage is not configured")
		}
		path, err := s.images.Save(input.Image, input.ImageName)
		if err != nil {
			return nil, err
		}
		savedPath = path
		product.ImagePath = path
	case input.ImagePath != "":
		// Caller-owned file; referenced as-is, never cleaned up here.
		product.ImagePath = input.ImagePath
	}

	id, err := s.store.InsertPendingProduct(product)
	if err != nil {
		// The submission was not recorded; an image this call stored must
		// not leak.
		if savedPath != "" {
			if rmErr := s.images.Remove(savedPath); rmErr != nil {
				logging.Warn("Failed to remove orphaned image",
					map[string]interface{}{"path": savedPath, "error": rmErr.Error()})
			}
		}
		return nil, err
	}
	product.ID = id

	telemetry.SubmissionsCreated.Inc()
	logging.Info("Submission queued", map[string]interface{}{
		"id":   id,
		"name": product.Name,
	})

	if s.trigger != nil {
		s.trigger.TriggerSync()
	}
	return product, nil
}

// GetSubmission returns one queued submission by id.
func (s *CatalogService) GetSubmission(id int64) (*models.PendingProduct, error) {
	return s.store.GetPendingProduct(id)
}

// ListQueue returns all submissions still awaiting upload, oldest first.
func (s *CatalogService) ListQueue() ([]*models.PendingProduct, error) {
	return s.store.ListActionable()
}

// QueueStats returns the number of submissions per sync status.
func (s *CatalogService) QueueStats() (map[models.SyncStatus]int, error) {
	return s.store.CountByStatus()
}

// ListProducts fetches the published product list from the remote service.
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.remote.FetchProducts(ctx)
}
