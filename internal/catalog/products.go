package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pcshop/internal/batch"
	"github.com/Skotchmaster/pcshop/internal/builder"
	"github.com/Skotchmaster/pcshop/internal/logging"
	"github.com/Skotchmaster/pcshop/internal/models"
	"github.com/Skotchmaster/pcshop/internal/query"
)

func (s *CatalogService) ListProducts(ctx context.Context, q *query.Query) (int64, []models.Product, error) {
	total, items, err := s.Repo.ListProducts(ctx, q)
	if err != nil {
		if errors.Is(err, query.ErrInvalid) {
			return 0, nil, errors.Join(ErrValidation, err)
		}
		return 0, nil, err
	}
	return total, items, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return p, err
}

// SlotCandidates lists products whose category fits the builder slot.
func (s *CatalogService) SlotCandidates(ctx context.Context, slot builder.Slot, q *query.Query) ([]models.Product, error) {
	names, ok := builder.SlotCategories[slot]
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrValidation, builder.ErrUnknownSlot)
	}
	items, err := s.Repo.ProductsByCategoryNames(ctx, names, q)
	if errors.Is(err, query.ErrInvalid) {
		return nil, errors.Join(ErrValidation, err)
	}
	return items, err
}

// Search uses the search index when there is one and falls back to a name match.
func (s *CatalogService) Search(ctx context.Context, text string, offset, limit int) (int64, []models.Product, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil, fmt.Errorf("%w: empty search query", ErrValidation)
	}

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, text, offset, limit)
		if err == nil {
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_index_unavailable", "error", err)
	}

	q := query.New().ILike("name", text).Order("name", true)
	q.Offset, q.Limit = offset, limit
	return s.Repo.ListProducts(ctx, q)
}

func (s *CatalogService) categoryRef(ctx context.Context, raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(raw)
	if err != nil {
		return nil, err
	}
	if _, err := s.Repo.GetCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %s does not exist", ErrValidation, id)
		}
		return nil, err
	}
	return &id, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if in.Price == nil {
		return nil, fmt.Errorf("%w: price required", ErrValidation)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if in.Stock != nil && *in.Stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}

	specs, err := NormalizeSpecs(in.Specifications)
	if err != nil {
		return nil, err
	}

	prod := &models.Product{
		Name:           strings.TrimSpace(*in.Name),
		Price:          in.Price.Round(2),
		Specifications: specs,
	}
	if in.Description != nil {
		prod.Description = *in.Description
	}
	if in.ImageURL != nil {
		prod.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.Stock != nil {
		prod.Stock = *in.Stock
	}
	if in.CategoryID != nil {
		if prod.CategoryID, err = s.categoryRef(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	if _, err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.reindex(ctx, prod)
	s.publish(ctx, prod.ID.String(), map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	return prod, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*models.Product, error) {
	updates := map[string]any{}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		updates["name"] = name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
		}
		updates["price"] = in.Price.Round(2)
	}
	if in.ImageURL != nil {
		updates["image_url"] = strings.TrimSpace(*in.ImageURL)
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
		}
		updates["stock"] = *in.Stock
	}
	if in.CategoryID != nil {
		ref, err := s.categoryRef(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		updates["category_id"] = ref
	}
	if in.Specifications != nil {
		specs, err := NormalizeSpecs(in.Specifications)
		if err != nil {
			return nil, err
		}
		updates["specifications"] = specs
	}

	prod, err := s.Repo.UpdateProduct(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return nil, err
	}

	s.reindex(ctx, prod)
	s.publish(ctx, prod.ID.String(), map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	return prod, nil
}

// DeleteProduct refuses products that order lines still reference.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	refs, err := s.Repo.CountProductReferences(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("%w: product is referenced by %d order lines", ErrConflict, refs)
	}

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return err
	}

	s.unindex(ctx, id)
	s.publish(ctx, id.String(), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

func (s *CatalogService) BatchCreateProducts(ctx context.Context, rows []ProductInput) batch.Results {
	return batch.Run(ctx, rows, s.batchLimit(), func(ctx context.Context, in ProductInput) (string, error) {
		p, err := s.CreateProduct(ctx, in)
		if err != nil {
			return "", err
		}
		return p.ID.String(), nil
	})
}

func (s *CatalogService) BatchUpdateProducts(ctx context.Context, rows []ProductPatch) batch.Results {
	return batch.Run(ctx, rows, s.batchLimit(), func(ctx context.Context, row ProductPatch) (string, error) {
		id, err := parseID(row.ID)
		if err != nil {
			return row.ID, err
		}
		if _, err := s.UpdateProduct(ctx, id, row.ProductInput); err != nil {
			return row.ID, err
		}
		return row.ID, nil
	})
}

func (s *CatalogService) BulkDeleteProducts(ctx context.Context, ids []string) batch.Results {
	return batch.Run(ctx, ids, s.batchLimit(), func(ctx context.Context, raw string) (string, error) {
		id, err := parseID(raw)
		if err != nil {
			return raw, err
		}
		return raw, s.DeleteProduct(ctx, id)
	})
}

// ProductsByIDs loads every listed product, in the given order.
func (s *CatalogService) ProductsByIDs(ctx context.Context, raw []string) ([]models.Product, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := parseID(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	found, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := found[id]
		if !ok {
			return nil, fmt.Errorf("%w: product %s does not exist", ErrValidation, id)
		}
		out = append(out, p)
	}
	return out, nil
}
