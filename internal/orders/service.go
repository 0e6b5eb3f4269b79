// Package orders is the order side of the shop: trusted server-side order
// creation, the customer and admin read paths and the admin status workflow.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pcshop/internal/events"
	"github.com/Skotchmaster/pcshop/internal/logging"
	"github.com/Skotchmaster/pcshop/internal/models"
	"github.com/Skotchmaster/pcshop/internal/payment"
	"github.com/Skotchmaster/pcshop/internal/query"
	"github.com/Skotchmaster/pcshop/internal/repo"
	"github.com/Skotchmaster/pcshop/internal/util"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 409
)

type OrderService struct {
	Repo     *repo.GormRepo
	Payments payment.Tokenizer
	Events   events.Publisher
}

type ItemInput struct {
	ProductID *string `json:"product_id"`
	BuildID   *string `json:"build_id"`
	Quantity  int     `json:"quantity"`
}

type CreateInput struct {
	Items        []ItemInput          `json:"items"`
	ShippingInfo *models.ShippingInfo `json:"shipping_info"`
	PaymentInfo  *payment.Details     `json:"payment_info"`
}

// ValidateShipping requires everything but the state.
func ValidateShipping(s models.ShippingInfo) error {
	var missing []string
	if strings.TrimSpace(s.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(s.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(s.Zip) == "" {
		missing = append(missing, "zip")
	}
	if strings.TrimSpace(s.Country) == "" {
		missing = append(missing, "country")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: shipping info missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// CreateOrder prices every line from the catalog, never from the caller.
// Products are charged their current price and builds their stored total.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, in CreateInput) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "orders.create")

	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: items required", ErrValidation)
	}
	if in.ShippingInfo == nil {
		return nil, fmt.Errorf("%w: shipping_info required", ErrValidation)
	}
	if in.PaymentInfo == nil {
		return nil, fmt.Errorf("%w: payment_info required", ErrValidation)
	}
	if err := ValidateShipping(*in.ShippingInfo); err != nil {
		return nil, err
	}
	pay, err := s.Payments.Tokenize(*in.PaymentInfo)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidCard) {
			return nil, errors.Join(ErrValidation, err)
		}
		return nil, err
	}

	productIDs := make([]uuid.UUID, 0, len(in.Items))
	buildIDs := make([]uuid.UUID, 0)
	refs := make([]uuid.UUID, len(in.Items))
	for i, it := range in.Items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d: quantity must be at least 1", ErrValidation, i)
		}
		hasProduct := it.ProductID != nil && *it.ProductID != ""
		hasBuild := it.BuildID != nil && *it.BuildID != ""
		if hasProduct == hasBuild {
			return nil, fmt.Errorf("%w: item %d: exactly one of product_id and build_id required", ErrValidation, i)
		}

		var raw string
		if hasProduct {
			raw = *it.ProductID
		} else {
			raw = *it.BuildID
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: malformed id %q", ErrValidation, i, raw)
		}
		refs[i] = id
		if hasProduct {
			productIDs = append(productIDs, id)
		} else {
			buildIDs = append(buildIDs, id)
		}
	}

	products, err := s.Repo.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	builds, err := s.Repo.GetBuildsByIDs(ctx, buildIDs)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:       userID,
		Status:       models.OrderStatusPlaced,
		ShippingInfo: datatypes.NewJSONType(*in.ShippingInfo),
		PaymentInfo:  datatypes.NewJSONType(pay),
	}
	total := decimal.Zero
	for i, it := range in.Items {
		id := refs[i]
		item := models.OrderItem{Quantity: it.Quantity}
		if it.ProductID != nil && *it.ProductID != "" {
			p, ok := products[id]
			if !ok {
				return nil, fmt.Errorf("%w: item %d: product %s does not exist", ErrValidation, i, id)
			}
			item.ProductID = &id
			item.UnitPrice = p.Price
		} else {
			b, ok := builds[id]
			if !ok || b.UserID != userID {
				return nil, fmt.Errorf("%w: item %d: build %s does not exist", ErrValidation, i, id)
			}
			item.BuildID = &id
			item.UnitPrice = b.TotalPrice
		}
		item.Price = item.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(item.Price)
		order.Items = append(order.Items, item)
	}
	order.TotalPrice = total

	if _, err := s.Repo.CreateOrder(ctx, order); err != nil {
		l.Error("create_order_error", "status", 500, "reason", "cannot insert order", "error", err)
		return nil, err
	}

	events.Publish(ctx, s.Events, events.TopicOrders, order.ID.String(), map[string]any{
		"type":    "order_created",
		"orderID": order.ID,
		"userID":  userID,
		"total":   order.TotalPrice,
		"items":   len(order.Items),
	})
	return order, nil
}

// ListAll is the admin view. An empty status means every status.
func (s *OrderService) ListAll(ctx context.Context, q *query.Query, status string) (int64, []models.Order, error) {
	if status != "" {
		st, ok := models.ParseOrderStatus(status)
		if !ok {
			return 0, nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
		}
		q.Eq("status", string(st))
	}

	total, items, err := s.Repo.ListOrders(ctx, q)
	if errors.Is(err, query.ErrInvalid) {
		return 0, nil, errors.Join(ErrValidation, err)
	}
	return total, items, err
}

func (s *OrderService) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error) {
	if limit <= 0 || limit > util.MaxPageSize {
		limit = util.DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.ListUserOrders(ctx, userID, limit, offset)
}

// GetForUser hides orders of other customers behind ErrNotFound.
func (s *OrderService) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	return order, nil
}
