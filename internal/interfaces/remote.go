package interfaces

import (
	"context"

	"campus-canteen/internal/domain"
)

// ServerCartLine is one entry of the user's server-side cart as the platform
// returns it. It carries no price; prices are resolved locally against the
// menu item before adoption.
type ServerCartLine struct {
	ItemID        string
	Quantity      int
	Customization *domain.Customization
}

// CreateOrderInput is the variable set for the createOrder mutation.
type CreateOrderInput struct {
	UserID        string
	CanteenID     string
	Items         []domain.OrderItem
	PaymentMethod string
	Phone         string
	CustomerNote  string
	IsPreOrder    bool
	PickupTime    string
}

// CreateOrderResult mirrors the mutation's {success, message, orderId} shape.
type CreateOrderResult struct {
	Success bool
	Message string
	OrderID string
}

// RemoteAPI is the GraphQL collaborator. Implementations must honor context
// cancellation so navigation away abandons in-flight requests.
type RemoteAPI interface {
	FetchCanteens(ctx context.Context) ([]*domain.Canteen, error)
	FetchAllMenuItems(ctx context.Context) ([]*domain.MenuItem, error)
	FetchMenuItems(ctx context.Context, canteenID string) ([]*domain.MenuItem, error)
	FetchMenuItem(ctx context.Context, itemID string) (*domain.MenuItem, error)
	FetchServerCart(ctx context.Context, userID string) ([]ServerCartLine, error)
	FetchUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.Status, actorUserID string) error
	CancelOrder(ctx context.Context, orderID, userID, reason string) error
}
