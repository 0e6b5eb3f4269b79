// Package checkout turns a client cart into a persisted order and a builder
// session into a purchasable build line.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/Skotchmaster/pcshop/internal/builder"
	"github.com/Skotchmaster/pcshop/internal/cart"
	"github.com/Skotchmaster/pcshop/internal/events"
	"github.com/Skotchmaster/pcshop/internal/logging"
	"github.com/Skotchmaster/pcshop/internal/models"
	"github.com/Skotchmaster/pcshop/internal/orders"
	"github.com/Skotchmaster/pcshop/internal/payment"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidLine     = errors.New("invalid cart line")
	ErrInvalidDetails  = errors.New("invalid checkout details")
	ErrIncompleteBuild = errors.New("build is incomplete")
)

const BuildName = "PC Build"

// OrderWriter stores an order with all its lines atomically.
type OrderWriter interface {
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
}

type BuildWriter interface {
	CreateBuild(ctx context.Context, build *models.PCBuild) (*models.PCBuild, error)
}

type Service struct {
	Orders   OrderWriter
	Builds   BuildWriter
	Payments payment.Tokenizer
	Events   events.Publisher
}

// Checkout charges the cart as it stands: the total is the sum of line price
// times quantity. Every line is checked before anything is written.
func (s *Service) Checkout(ctx context.Context, userID uuid.UUID, lines []cart.Line, shipping models.ShippingInfo, pay payment.Details) (uuid.UUID, error) {
	l := logging.FromContext(ctx).With("svc", "checkout")

	if len(lines) == 0 {
		return uuid.Nil, ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero
	for i, line := range lines {
		item, err := orderItem(line)
		if err != nil {
			l.Warn("checkout_rejected", "line", i, "id", line.ID, "error", err)
			return uuid.Nil, fmt.Errorf("line %d (%s): %w", i, line.Name, err)
		}
		total = total.Add(item.Price)
		items = append(items, item)
	}

	if err := orders.ValidateShipping(shipping); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidDetails, err)
	}
	info, err := s.Payments.Tokenize(pay)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidCard) {
			return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidDetails, err)
		}
		return uuid.Nil, err
	}

	order := &models.Order{
		UserID:       userID,
		TotalPrice:   total,
		Status:       models.OrderStatusPlaced,
		ShippingInfo: datatypes.NewJSONType(shipping),
		PaymentInfo:  datatypes.NewJSONType(info),
		Items:        items,
	}
	if _, err := s.Orders.CreateOrder(ctx, order); err != nil {
		l.Error("checkout_error", "reason", "cannot store order", "error", err)
		return uuid.Nil, fmt.Errorf("create order: %w", err)
	}

	events.Publish(ctx, s.Events, events.TopicOrders, order.ID.String(), map[string]any{
		"type":    "order_created",
		"orderID": order.ID,
		"userID":  userID,
		"total":   total,
		"items":   len(items),
	})
	l.Info("order_placed", "order_id", order.ID, "lines", len(items))
	return order.ID, nil
}

// orderItem sets exactly one of product_id and build_id.
func orderItem(line cart.Line) (models.OrderItem, error) {
	if line.Quantity < 1 {
		return models.OrderItem{}, fmt.Errorf("%w: quantity %d", ErrInvalidLine, line.Quantity)
	}
	if line.Price.IsNegative() {
		return models.OrderItem{}, fmt.Errorf("%w: negative price", ErrInvalidLine)
	}

	item := models.OrderItem{
		Quantity:  line.Quantity,
		UnitPrice: line.Price,
		Price:     line.Subtotal(),
	}

	if line.IsBuild {
		raw := line.BuildID
		if raw == "" {
			raw = line.ID
		}
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return models.OrderItem{}, fmt.Errorf("%w: malformed build id %q", ErrInvalidLine, raw)
		}
		item.BuildID = &id
		return item, nil
	}

	id, err := uuid.Parse(strings.TrimSpace(line.ID))
	if err != nil {
		return models.OrderItem{}, fmt.Errorf("%w: malformed product id %q", ErrInvalidLine, line.ID)
	}
	item.ProductID = &id
	return item, nil
}

// PlaceCart checks out the cart and empties it once the order is stored.
func (s *Service) PlaceCart(ctx context.Context, userID uuid.UUID, c *cart.Store, shipping models.ShippingInfo, pay payment.Details) (uuid.UUID, error) {
	id, err := s.Checkout(ctx, userID, c.Items(), shipping, pay)
	if err != nil {
		return uuid.Nil, err
	}
	if err := c.Clear(); err != nil {
		return id, fmt.Errorf("order %s placed but the cart was not cleared: %w", id, err)
	}
	return id, nil
}

// CreateBuild stores a build row for the given components.
func (s *Service) CreateBuild(ctx context.Context, userID uuid.UUID, components []models.Product) (*models.PCBuild, error) {
	if len(components) == 0 {
		return nil, fmt.Errorf("%w: no components", ErrIncompleteBuild)
	}

	ids := make([]string, 0, len(components))
	total := decimal.Zero
	for _, p := range components {
		ids = append(ids, p.ID.String())
		total = total.Add(p.Price)
	}

	build := &models.PCBuild{
		UserID:       userID,
		Name:         BuildName,
		ComponentIDs: datatypes.JSONSlice[string](ids),
		TotalPrice:   total,
	}
	if _, err := s.Builds.CreateBuild(ctx, build); err != nil {
		return nil, fmt.Errorf("create build: %w", err)
	}
	return build, nil
}

// AddBuildToCart saves a complete build and puts it into the cart as a single line.
func (s *Service) AddBuildToCart(ctx context.Context, userID uuid.UUID, b *builder.Store, c *cart.Store) (*models.PCBuild, error) {
	if missing := b.Missing(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, slot := range missing {
			names[i] = string(slot)
		}
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteBuild, strings.Join(names, ", "))
	}

	components := b.Components()
	build, err := s.CreateBuild(ctx, userID, components)
	if err != nil {
		return nil, err
	}

	err = c.AddItem(cart.Item{
		ID:         build.ID.String(),
		Name:       BuildName,
		Price:      build.TotalPrice,
		ImageURL:   cart.DefaultBuildImage,
		IsBuild:    true,
		Components: components,
	}, 1)
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, s.Events, events.TopicOrders, build.ID.String(), map[string]any{
		"type":       "build_created",
		"buildID":    build.ID,
		"userID":     userID,
		"components": len(components),
	})
	return build, nil
}
