package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-canteen/internal/adapter/logger"
	"campus-canteen/internal/domain"
	"campus-canteen/internal/interfaces"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrMixedCanteens = errors.New("cart holds items from more than one canteen")
)

// Service hands a cart off to the platform's order-creation mutation. The
// remote call is the commit point: on success the cart is cleared and a
// snapshot cached; on failure local state is left untouched.
type Service struct {
	carts     interfaces.CartStore
	remote    interfaces.RemoteAPI
	repo      interfaces.OrderRepository
	publisher interfaces.MessagePublisher
	logger    logger.Logger
}

func NewService(carts interfaces.CartStore, remote interfaces.RemoteAPI, repo interfaces.OrderRepository, publisher interfaces.MessagePublisher, lgr logger.Logger) *Service {
	return &Service{
		carts:     carts,
		remote:    remote,
		repo:      repo,
		publisher: publisher,
		logger:    lgr,
	}
}

func (s *Service) PlaceOrder(ctx context.Context, cmd interfaces.CheckoutCommand) (*domain.Order, error) {
	snap := s.carts.Snapshot(cmd.UserID)
	if snap.IsEmpty() {
		return nil, ErrEmptyCart
	}

	canteenID := cmd.CanteenID
	if canteenID == "" {
		canteenID = snap.Lines[0].CanteenID
	}
	// The platform creates one order per canteen; a cart that spans several
	// has to be checked out separately.
	for _, line := range snap.Lines {
		if line.CanteenID != canteenID {
			return nil, ErrMixedCanteens
		}
	}

	order, err := domain.NewOrder(cmd.UserID, canteenID, snap.Lines, cmd.PaymentMethod, cmd.Phone, cmd.CustomerNote, snap.ScheduledPickup)
	if err != nil {
		s.logger.Error("checkout_validation_failed", "Order validation failed", "", map[string]interface{}{
			"user_id": cmd.UserID,
		}, err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	input := interfaces.CreateOrderInput{
		UserID:        order.UserID,
		CanteenID:     order.CanteenID,
		Items:         order.Items,
		PaymentMethod: order.PaymentMethod,
		Phone:         order.Phone,
		CustomerNote:  cmd.CustomerNote,
		IsPreOrder:    order.IsPreOrder,
	}
	if order.Pickup != nil {
		input.PickupTime = order.Pickup.Date + " " + order.Pickup.Time
	}

	result, err := s.remote.CreateOrder(ctx, input)
	if err != nil {
		s.logger.Error("checkout_remote_failed", "Order creation rejected by platform API", "", map[string]interface{}{
			"user_id": cmd.UserID,
		}, err)
		return nil, err
	}
	order.Number = result.OrderID

	// The platform accepted the order; everything below is best-effort local
	// bookkeeping and must not resurrect the cart.
	if err := s.repo.Create(ctx, order); err != nil {
		s.logger.Error("order_cache_failed", "Failed to cache order snapshot", "", map[string]interface{}{
			"order_number": order.Number,
		}, err)
	}

	msg := interfaces.OrderPlacedMessage{
		OrderNumber: order.Number,
		UserID:      order.UserID,
		CanteenID:   order.CanteenID,
		TotalAmount: order.TotalAmount,
		IsPreOrder:  order.IsPreOrder,
		PlacedAt:    time.Now().UTC(),
	}
	if order.Pickup != nil {
		msg.PickupDate = order.Pickup.Date
		msg.PickupTime = order.Pickup.Time
	}
	if err := s.publisher.PublishOrderPlaced(ctx, msg); err != nil {
		s.logger.Error("order_publish_failed", "Failed to publish order placed event", "", map[string]interface{}{
			"order_number": order.Number,
		}, err)
	}

	s.carts.Clear(cmd.UserID)

	s.logger.Info("order_placed", "Order handed off to platform", "", map[string]interface{}{
		"order_number": order.Number,
		"total_amount": order.TotalAmount,
	})

	return order, nil
}
