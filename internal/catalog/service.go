package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pcshop/internal/batch"
	"github.com/Skotchmaster/pcshop/internal/events"
	"github.com/Skotchmaster/pcshop/internal/logging"
	"github.com/Skotchmaster/pcshop/internal/models"
	"github.com/Skotchmaster/pcshop/internal/repo"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 409
)

type SearchIndex interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  SearchIndex
	Events events.Publisher

	// BatchLimit bounds concurrent row writes in batch operations.
	BatchLimit int
}

func (s *CatalogService) batchLimit() int {
	if s.BatchLimit > 0 {
		return s.BatchLimit
	}
	return batch.DefaultLimit
}

func (s *CatalogService) publish(ctx context.Context, key string, event map[string]any) {
	events.Publish(ctx, s.Events, events.TopicProducts, key, event)
}

func (s *CatalogService) reindex(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, *p); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) unindex(ctx context.Context, id uuid.UUID) {
	if s.Index == nil {
		return
	}
	if err := s.Index.DeleteProduct(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("search_unindex_error", "product_id", id, "error", err)
	}
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Join(ErrValidation, err)
	}
	return id, nil
}
