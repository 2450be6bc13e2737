package interfaces

import (
	"context"
	"time"

	"campus-canteen/internal/domain"
)

// OrderPlacedMessage announces a successful checkout handoff.
type OrderPlacedMessage struct {
	OrderNumber string    `json:"order_number"`
	UserID      string    `json:"user_id"`
	CanteenID   string    `json:"canteen_id"`
	TotalAmount float64   `json:"total_amount"`
	IsPreOrder  bool      `json:"is_pre_order"`
	PickupDate  string    `json:"pickup_date,omitempty"`
	PickupTime  string    `json:"pickup_time,omitempty"`
	PlacedAt    time.Time `json:"placed_at"`
}

// StatusUpdateMessage is published by the platform whenever a vendor moves an
// order through its lifecycle.
type StatusUpdateMessage struct {
	OrderNumber string        `json:"order_number"`
	OldStatus   domain.Status `json:"old_status"`
	NewStatus   domain.Status `json:"new_status"`
	ChangedBy   string        `json:"changed_by"`
	Timestamp   time.Time     `json:"timestamp"`
	Notes       string        `json:"notes,omitempty"`
}

type MessagePublisher interface {
	PublishOrderPlaced(ctx context.Context, msg OrderPlacedMessage) error
}

type MessageConsumer interface {
	ConsumeStatusUpdates(ctx context.Context, handler StatusUpdateHandler) error
}

type StatusUpdateHandler func(ctx context.Context, body []byte) error
