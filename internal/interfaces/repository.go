package interfaces

import (
	"context"

	"campus-canteen/internal/domain"
)

// OrderRepository caches placed-order snapshots for the tracking views.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByNumber(ctx context.Context, number string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, order *domain.Order) error
	LogStatus(ctx context.Context, orderID int, status domain.Status, changedBy string, notes *string) error
	GetStatusHistory(ctx context.Context, orderID int) ([]*domain.StatusLog, error)
}

// Snapshotter persists named state snapshots between runs. Load reports
// whether a snapshot existed for the key.
type Snapshotter interface {
	Save(key string, v any) error
	Load(key string, v any) (bool, error)
}
