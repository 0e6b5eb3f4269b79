package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pcshop/internal/models"
	"github.com/Skotchmaster/pcshop/internal/query"
)

// ErrStaleStatus means the order left the expected status before the update landed.
var ErrStaleStatus = errors.New("order status changed concurrently")

// CreateOrder inserts the order row and its line rows in one transaction.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	items := order.Items
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(order).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		return tx.Omit("Product", "Build").Create(&items).Error
	})
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *GormRepo) withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Preload("Items.Product").Preload("Items.Build")
}

func (r *GormRepo) ListOrders(ctx context.Context, q *query.Query) (int64, []models.Order, error) {
	filtered, err := q.Where(r.DB.WithContext(ctx).Model(&models.Order{}), OrderColumns)
	if err != nil {
		return 0, nil, err
	}

	var total int64
	if err := filtered.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	filtered, err = q.Where(r.DB.WithContext(ctx).Model(&models.Order{}), OrderColumns)
	if err != nil {
		return 0, nil, err
	}
	paged, err := q.Page(filtered, OrderColumns, "created_at DESC")
	if err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, 0)
	if err := r.withItems(paged).Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) ListUserOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	orders := make([]models.Order, 0)
	if err := r.withItems(q).Order("created_at DESC").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.withItems(r.DB.WithContext(ctx)).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus moves the order from -> to only if it is still in from.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}
