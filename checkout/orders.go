package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/pizzeria/events"
	"github.com/ray-remotestate/pizzeria/models"
)

const defaultListLimit = 100

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.orders.Get(ctx, id)
}

// ListOrders backs the admin dashboard, which polls it. An empty status lists
// every order.
func (s *Service) ListOrders(ctx context.Context, status models.OrderStatus, limit int) ([]models.Order, error) {
	if status != "" && !status.IsValid() {
		return nil, ValidationErrors{"status": "unknown order status"}
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return s.orders.List(ctx, status, limit)
}

// Transition moves an order one step forward or cancels it. Any other target
// status fails with models.ErrInvalidTransition.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to models.OrderStatus) (*models.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if !from.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, from, to)
	}
	if err := s.orders.UpdateStatus(ctx, id, from, to); err != nil {
		return nil, err
	}

	order.Status = to
	order.UpdatedAt = s.now()
	statusTransitions.WithLabelValues(string(to)).Inc()

	logrus.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"from":         from,
		"to":           to,
	}).Info("order status changed")

	if err := s.events.PublishStatusChanged(ctx, events.StatusChanged{
		OrderID: order.ID.String(),
		From:    from,
		To:      to,
		At:      order.UpdatedAt,
	}); err != nil {
		logrus.WithError(err).WithField("order_number", order.OrderNumber).Error("failed to publish order.status_changed")
	}
	return order, nil
}
