package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pcshop/internal/batch"
	"github.com/Skotchmaster/pcshop/internal/models"
	"github.com/Skotchmaster/pcshop/internal/query"
)

func (s *CatalogService) ListCategories(ctx context.Context, q *query.Query) ([]models.Category, error) {
	items, err := s.Repo.ListCategories(ctx, q)
	if errors.Is(err, query.ErrInvalid) {
		return nil, errors.Join(ErrValidation, err)
	}
	return items, err
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}

	cat := &models.Category{
		Name:        strings.TrimSpace(*in.Name),
		Description: trimmedOrNil(in.Description),
		ImageURL:    trimmedOrNil(in.ImageURL),
	}
	if _, err := s.Repo.CreateCategory(ctx, cat); err != nil {
		return nil, err
	}

	s.publish(ctx, cat.ID.String(), map[string]any{
		"type":       "category_created",
		"categoryID": cat.ID,
		"name":       cat.Name,
	})
	return cat, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) (*models.Category, error) {
	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		updates["name"] = name
	}
	if in.Description != nil {
		updates["description"] = trimmedOrNil(in.Description)
	}
	if in.ImageURL != nil {
		updates["image_url"] = trimmedOrNil(in.ImageURL)
	}

	cat, err := s.Repo.UpdateCategory(ctx, id, updates)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: category %s", ErrNotFound, id)
	}
	return cat, err
}

// DeleteCategory refuses categories that still have products.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	n, err := s.Repo.CountProductsInCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: cannot delete category with %d products", ErrConflict, n)
	}

	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: category %s", ErrNotFound, id)
		}
		return err
	}

	s.publish(ctx, id.String(), map[string]any{
		"type":       "category_deleted",
		"categoryID": id,
	})
	return nil
}

func (s *CatalogService) BulkDeleteCategories(ctx context.Context, ids []string) batch.Results {
	return batch.Run(ctx, ids, s.batchLimit(), func(ctx context.Context, raw string) (string, error) {
		id, err := parseID(raw)
		if err != nil {
			return raw, err
		}
		return raw, s.DeleteCategory(ctx, id)
	})
}
