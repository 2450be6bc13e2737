package domain

import (
	"errors"
	"time"
)

// Order is the locally cached snapshot of an order placed through the
// platform API. The API owns the order of record; this copy feeds the
// tracking views and is advanced by status-update messages.
type Order struct {
	ID                 int
	Number             string
	UserID             string
	CanteenID          string
	Items              []OrderItem
	TotalAmount        float64
	Status             Status
	PaymentMethod      string
	PaymentStatus      PaymentStatus
	Phone              string
	CustomerNote       *string
	CancellationReason *string
	IsPreOrder         bool
	Pickup             *ScheduledPickup
	PreparationTime    *int // minutes, set by the vendor after confirmation
	CreatedAt          time.Time
	UpdatedAt          time.Time
	CompletedAt        *time.Time
}

// OrderItem is one line of a placed order, frozen at checkout.
type OrderItem struct {
	ID            int
	OrderID       int
	ItemID        string
	Name          string
	Quantity      int
	UnitPrice     float64
	Customization *Customization
}

// NewOrder builds an order from cart lines with business rules applied.
func NewOrder(userID, canteenID string, lines []CartLine, paymentMethod, phone string, note string, pickup *ScheduledPickup) (*Order, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	if canteenID == "" {
		return nil, errors.New("canteen id is required")
	}
	if len(lines) < 1 {
		return nil, errors.New("order must have at least 1 item")
	}
	if paymentMethod == "" {
		return nil, errors.New("payment method is required")
	}
	if phone == "" {
		return nil, errors.New("contact phone is required")
	}

	items := make([]OrderItem, len(lines))
	for i, l := range lines {
		if l.Quantity < 1 {
			return nil, errors.New("item quantity must be at least 1")
		}
		if l.UnitPrice < 0 {
			return nil, errors.New("item price must not be negative")
		}
		items[i] = OrderItem{
			ItemID:        l.ItemID,
			Name:          l.Name,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			Customization: l.Customization.Clone(),
		}
	}

	order := &Order{
		UserID:        userID,
		CanteenID:     canteenID,
		Items:         items,
		Status:        StatusPending,
		PaymentMethod: paymentMethod,
		PaymentStatus: PaymentStatusPending,
		Phone:         phone,
		IsPreOrder:    pickup != nil,
		Pickup:        pickup,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if note != "" {
		order.CustomerNote = &note
	}

	order.CalculateTotal()

	return order, nil
}

// CalculateTotal recomputes the order total from its items.
func (o *Order) CalculateTotal() {
	total := 0.0
	for _, item := range o.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	o.TotalAmount = total
}

// TransitionTo advances the order to a new status.
func (o *Order) TransitionTo(newStatus Status) error {
	if !o.CanTransitionTo(newStatus) {
		return ErrInvalidStatusTransition
	}

	o.Status = newStatus
	o.UpdatedAt = time.Now()

	if newStatus == StatusCompleted || newStatus == StatusCancelled {
		now := time.Now()
		o.CompletedAt = &now
	}

	return nil
}

// CanTransitionTo checks if the order can transition to the new status.
func (o *Order) CanTransitionTo(newStatus Status) bool {
	validTransitions := map[Status][]Status{
		StatusPending:   {StatusConfirmed, StatusPreparing, StatusCancelled},
		StatusConfirmed: {StatusPreparing, StatusCancelled},
		StatusPreparing: {StatusReady, StatusCancelled},
		StatusReady:     {StatusCompleted, StatusCancelled},
		StatusCompleted: {},
		StatusCancelled: {},
	}

	allowed := validTransitions[o.Status]
	for _, s := range allowed {
		if s == newStatus {
			return true
		}
	}
	return false
}

// WaitingTime returns the minutes elapsed since the order was placed, zero
// once it reached a terminal status.
func (o *Order) WaitingTime() int {
	if o.Status == StatusCompleted || o.Status == StatusCancelled {
		return 0
	}
	return int(time.Since(o.CreatedAt).Minutes())
}

// EstimatedReady returns when the order is expected to be ready, if the
// vendor has committed to a preparation time.
func (o *Order) EstimatedReady() *time.Time {
	if o.PreparationTime == nil {
		return nil
	}
	if o.Status != StatusConfirmed && o.Status != StatusPreparing {
		return nil
	}
	est := o.UpdatedAt.Add(time.Duration(*o.PreparationTime) * time.Minute)
	return &est
}

var ErrInvalidStatusTransition = errors.New("invalid status transition")
