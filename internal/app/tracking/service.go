package tracking

import (
	"context"

	"campus-canteen/internal/adapter/logger"
	"campus-canteen/internal/domain"
	"campus-canteen/internal/interfaces"
)

// Service answers order status queries from the local snapshot cache and
// advances it as platform status updates arrive.
type Service struct {
	repo   interfaces.OrderRepository
	logger logger.Logger
}

func NewService(repo interfaces.OrderRepository, lgr logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: lgr,
	}
}

func (s *Service) GetOrderStatus(ctx context.Context, orderNumber string) (*interfaces.TrackingOrderResponse, error) {
	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	return &interfaces.TrackingOrderResponse{
		OrderNumber:    order.Number,
		CurrentStatus:  order.Status,
		UpdatedAt:      order.UpdatedAt,
		EstimatedReady: order.EstimatedReady(),
		IsPreOrder:     order.IsPreOrder,
		WaitingMinutes: order.WaitingTime(),
	}, nil
}

func (s *Service) GetOrderHistory(ctx context.Context, orderNumber string) ([]*domain.StatusLog, error) {
	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	return s.repo.GetStatusHistory(ctx, order.ID)
}

func (s *Service) ListUserOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ApplyStatusUpdate advances the cached order. Updates for unknown orders,
// illegal transitions, and late or duplicate deliveries are dropped, not
// errors: the platform remains the order of record.
func (s *Service) ApplyStatusUpdate(ctx context.Context, msg interfaces.StatusUpdateMessage) error {
	order, err := s.repo.FindByNumber(ctx, msg.OrderNumber)
	if err != nil {
		s.logger.Debug("status_update_skipped", "Status update for unknown order", "", map[string]interface{}{
			"order_number": msg.OrderNumber,
		})
		return nil
	}

	if msg.Timestamp.Before(order.UpdatedAt) {
		s.logger.Debug("status_update_stale", "Stale status update dropped", "", map[string]interface{}{
			"order_number": msg.OrderNumber,
			"new_status":   msg.NewStatus,
		})
		return nil
	}

	if err := order.TransitionTo(msg.NewStatus); err != nil {
		s.logger.Debug("status_update_rejected", "Illegal status transition dropped", "", map[string]interface{}{
			"order_number": msg.OrderNumber,
			"from":         order.Status,
			"to":           msg.NewStatus,
		})
		return nil
	}
	order.UpdatedAt = msg.Timestamp

	if err := s.repo.UpdateStatus(ctx, order); err != nil {
		return err
	}

	var notes *string
	if msg.Notes != "" {
		n := msg.Notes
		notes = &n
	}
	if err := s.repo.LogStatus(ctx, order.ID, order.Status, msg.ChangedBy, notes); err != nil {
		return err
	}

	s.logger.Info("order_status_updated", "Order status advanced", "", map[string]interface{}{
		"order_number": order.Number,
		"status":       order.Status,
	})

	return nil
}
