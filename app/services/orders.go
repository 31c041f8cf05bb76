package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/app/repositories"
	"github.com/cupcakery/storefront/pkg/logger"
)

// OrderService serves order tracking to customers and status changes to
// staff.
type OrderService struct {
	orders *repositories.OrderRepository
}

func NewOrderService(orders *repositories.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

// List returns the user's orders, newest first.
func (s *OrderService) List(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.orders.ForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders of user %d: %w", userID, err)
	}
	return orders, nil
}

// Detail returns one of the user's orders with its items. Someone else's
// order is reported as ErrNotFound.
func (s *OrderService) Detail(ctx context.Context, userID, orderID uint) (models.Order, error) {
	o, err := s.orders.FindForUser(ctx, userID, orderID)
	if err != nil {
		return models.Order{}, notFound(err, "order", orderID)
	}
	return o, nil
}

// UpdateStatus moves an order to status.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, status string) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("status %q: %w", status, ErrValidation)
	}
	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return notFound(err, "order", orderID)
	}
	logger.WithCtx(ctx).Info("orders: status changed", "order_id", orderID, "status", status)
	return nil
}

// CountToday counts orders created since midnight UTC.
func (s *OrderService) CountToday(ctx context.Context, now time.Time) (int64, error) {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.orders.CountSince(ctx, midnight)
}
