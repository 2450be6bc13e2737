package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"campus-canteen/internal/domain"
	"campus-canteen/internal/interfaces"
)

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) interfaces.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var pickupDate, pickupTime *string
	if order.Pickup != nil {
		pickupDate = &order.Pickup.Date
		pickupTime = &order.Pickup.Time
	}

	query := `
		INSERT INTO orders (number, user_id, canteen_id, total_amount, status,
		                    payment_method, payment_status, phone, customer_note,
		                    is_pre_order, pickup_date, pickup_time,
		                    created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	err = tx.QueryRow(ctx, query,
		order.Number, order.UserID, order.CanteenID, order.TotalAmount, order.Status,
		order.PaymentMethod, order.PaymentStatus, order.Phone, order.CustomerNote,
		order.IsPreOrder, pickupDate, pickupTime,
		order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		cust, err := encodeCustomization(order.Items[i].Customization)
		if err != nil {
			return err
		}

		itemQuery := `
			INSERT INTO order_items (order_id, item_id, name, quantity, unit_price, customization)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`
		err = tx.QueryRow(ctx, itemQuery,
			order.ID, order.Items[i].ItemID, order.Items[i].Name,
			order.Items[i].Quantity, order.Items[i].UnitPrice, cust,
		).Scan(&order.Items[i].ID)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
		order.Items[i].OrderID = order.ID
	}

	logQuery := `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.Exec(ctx, logQuery, order.ID, order.Status, "cart-service", time.Now()); err != nil {
		return fmt.Errorf("failed to log status: %w", err)
	}

	return tx.Commit(ctx)
}

const orderColumns = `
	id, number, user_id, canteen_id, total_amount, status,
	payment_method, payment_status, phone, customer_note, cancellation_reason,
	is_pre_order, pickup_date, pickup_time, preparation_time,
	created_at, updated_at, completed_at
`

func (r *orderRepository) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE number = $1`

	order, err := scanOrder(r.db.QueryRow(ctx, query, number))
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, item_id, name, quantity, unit_price, customization
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, itemsQuery, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		var cust *string
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ItemID, &item.Name, &item.Quantity, &item.UnitPrice, &cust); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if item.Customization, err = decodeCustomization(cust); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET status = $1, cancellation_reason = $2, updated_at = $3, completed_at = $4
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query,
		order.Status, order.CancellationReason, order.UpdatedAt, order.CompletedAt, order.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

func (r *orderRepository) LogStatus(ctx context.Context, orderID int, status domain.Status, changedBy string, notes *string) error {
	query := `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at, notes)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.Exec(ctx, query, orderID, status, changedBy, time.Now(), notes); err != nil {
		return fmt.Errorf("failed to log status: %w", err)
	}
	return nil
}

func (r *orderRepository) GetStatusHistory(ctx context.Context, orderID int) ([]*domain.StatusLog, error) {
	query := `
		SELECT id, order_id, status, changed_by, changed_at, notes
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY changed_at ASC
	`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var logs []*domain.StatusLog
	for rows.Next() {
		var log domain.StatusLog
		if err := rows.Scan(&log.ID, &log.OrderID, &log.Status, &log.ChangedBy, &log.ChangedAt, &log.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan status log: %w", err)
		}
		logs = append(logs, &log)
	}

	return logs, nil
}

func scanOrder(row Row) (*domain.Order, error) {
	var order domain.Order
	var pickupDate, pickupTime *string

	err := row.Scan(
		&order.ID, &order.Number, &order.UserID, &order.CanteenID, &order.TotalAmount, &order.Status,
		&order.PaymentMethod, &order.PaymentStatus, &order.Phone, &order.CustomerNote, &order.CancellationReason,
		&order.IsPreOrder, &pickupDate, &pickupTime, &order.PreparationTime,
		&order.CreatedAt, &order.UpdatedAt, &order.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	if pickupDate != nil && pickupTime != nil {
		order.Pickup = &domain.ScheduledPickup{Date: *pickupDate, Time: *pickupTime}
	}
	return &order, nil
}

func encodeCustomization(c *domain.Customization) (*string, error) {
	if c == nil {
		return nil, nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize customization: %w", err)
	}
	s := string(data)
	return &s, nil
}

func decodeCustomization(raw *string) (*domain.Customization, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	var c domain.Customization
	if err := json.Unmarshal([]byte(*raw), &c); err != nil {
		return nil, fmt.Errorf("failed to parse customization: %w", err)
	}
	return &c, nil
}
