package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pcshop/internal/models"
	"github.com/Skotchmaster/pcshop/internal/query"
)

func (r *GormRepo) ListProducts(ctx context.Context, q *query.Query) (int64, []models.Product, error) {
	filtered, err := q.Where(r.DB.WithContext(ctx).Model(&models.Product{}), ProductColumns)
	if err != nil {
		return 0, nil, err
	}

	var total int64
	if err := filtered.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	filtered, err = q.Where(r.DB.WithContext(ctx).Model(&models.Product{}), ProductColumns)
	if err != nil {
		return 0, nil, err
	}
	paged, err := q.Page(filtered, ProductColumns, "created_at DESC")
	if err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0)
	if err := paged.Preload("Category").Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, p := range items {
		out[p.ID] = p
	}
	return out, nil
}

func (r *GormRepo) ProductsByCategoryNames(ctx context.Context, names []string, q *query.Query) ([]models.Product, error) {
	categoryIDs := r.DB.WithContext(ctx).Model(&models.Category{}).
		Select("id").
		Where("LOWER(name) IN ?", names)
	base := r.DB.WithContext(ctx).Model(&models.Product{}).Where("category_id IN (?)", categoryIDs)

	filtered, err := q.Where(base, ProductColumns)
	if err != nil {
		return nil, err
	}
	paged, err := q.Page(filtered, ProductColumns, "price ASC")
	if err != nil {
		return nil, err
	}

	items := make([]models.Product, 0)
	if err := paged.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return nil, err
	}
	return prod, nil
}

// UpdateProduct writes only the given columns.
func (r *GormRepo) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Product, error) {
	var prod models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&prod, "id = ?", id).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&prod).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&prod, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &prod, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) CountProductReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&n).Error
	return n, err
}

func (r *GormRepo) AllProducts(ctx context.Context) ([]models.Product, error) {
	items := make([]models.Product, 0)
	if err := r.DB.WithContext(ctx).Preload("Category").Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
