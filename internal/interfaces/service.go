package interfaces

import (
	"context"
	"time"

	"campus-canteen/internal/domain"
)

// CartStore holds the authoritative local carts. All operations are
// synchronous and never fail on identifiers that are already gone; the UI may
// race a removal with a stale reference.
type CartStore interface {
	AddLine(userID string, line domain.CartLine) (domain.CartLine, error)
	RemoveLine(userID, lineID string)
	SetQuantity(userID, lineID string, quantity int) error
	SetCustomization(userID, lineID string, c *domain.Customization)
	SetScheduledPickup(userID string, pickup *domain.ScheduledPickup)
	Clear(userID string)
	TotalAmount(userID string) float64
	Snapshot(userID string) domain.Cart
	Revision(userID string) uint64
	SyncServerCart(userID string, lines []domain.CartLine, baseRevision uint64) bool
}

type CheckoutCommand struct {
	UserID        string
	CanteenID     string
	PaymentMethod string
	Phone         string
	CustomerNote  string
}

type CheckoutService interface {
	PlaceOrder(ctx context.Context, cmd CheckoutCommand) (*domain.Order, error)
}

type TrackingService interface {
	GetOrderStatus(ctx context.Context, orderNumber string) (*TrackingOrderResponse, error)
	GetOrderHistory(ctx context.Context, orderNumber string) ([]*domain.StatusLog, error)
	ListUserOrders(ctx context.Context, userID string) ([]*domain.Order, error)
	ApplyStatusUpdate(ctx context.Context, msg StatusUpdateMessage) error
}

type TrackingOrderResponse struct {
	OrderNumber    string
	CurrentStatus  domain.Status
	UpdatedAt      time.Time
	EstimatedReady *time.Time
	IsPreOrder     bool
	WaitingMinutes int
}

// SessionStore keeps the signed-in user snapshot across page reloads.
type SessionStore interface {
	Login(ctx context.Context, email string) (*domain.User, error)
	Logout()
	Current() (*domain.User, bool)
	UpdateUser(update domain.User)
	AddCredits(amount float64)
}
