package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pcshop/internal/events"
	"github.com/Skotchmaster/pcshop/internal/logging"
	"github.com/Skotchmaster/pcshop/internal/models"
	"github.com/Skotchmaster/pcshop/internal/repo"
)

var rank = map[models.OrderStatus]int{
	models.OrderStatusPlaced:     0,
	models.OrderStatusProcessing: 1,
	models.OrderStatusShipped:    2,
	models.OrderStatusDelivered:  3,
}

// CanTransition allows forward moves, skips included, and cancelling any order
// that is not finished yet.
func CanTransition(from, to models.OrderStatus) bool {
	if from.Terminal() || from == to {
		return false
	}
	if to == models.OrderStatusCancelled {
		return true
	}
	fr, ok1 := rank[from]
	tr, ok2 := rank[to]
	return ok1 && ok2 && tr > fr
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, raw string) error {
	l := logging.FromContext(ctx).With("svc", "orders.update_status")

	if raw == "" {
		return fmt.Errorf("%w: status required", ErrValidation)
	}
	to, ok := models.ParseOrderStatus(raw)
	if !ok {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, raw)
	}

	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order %s", ErrNotFound, id)
		}
		return err
	}

	if !CanTransition(order.Status, to) {
		l.Warn("illegal_transition", "order_id", id, "from", order.Status, "to", to)
		return fmt.Errorf("%w: cannot move order from %s to %s", ErrConflict, order.Status, to)
	}

	if err := s.Repo.UpdateOrderStatus(ctx, id, order.Status, to); err != nil {
		if errors.Is(err, repo.ErrStaleStatus) {
			return fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return err
	}

	events.Publish(ctx, s.Events, events.TopicOrders, id.String(), map[string]any{
		"type":    "order_status_changed",
		"orderID": id,
		"from":    order.Status,
		"to":      to,
	})
	return nil
}
