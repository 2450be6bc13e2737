package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"campus-canteen/internal/adapter/logger"
	"campus-canteen/internal/domain"
	"campus-canteen/internal/interfaces"
)

// NotificationHandler turns status updates into user-facing notification
// lines, the console stand-in for the web client's toast banners.
type NotificationHandler struct {
	logger logger.Logger
}

func NewNotificationHandler(lgr logger.Logger) *NotificationHandler {
	return &NotificationHandler{logger: lgr}
}

func (h *NotificationHandler) HandleNotification(ctx context.Context, body []byte) error {
	var msg interfaces.StatusUpdateMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("failed to parse status update: %w", err)
	}

	h.logger.Info("notification", notificationText(msg), "", map[string]interface{}{
		"order_number": msg.OrderNumber,
		"old_status":   msg.OldStatus,
		"new_status":   msg.NewStatus,
	})
	return nil
}

func notificationText(msg interfaces.StatusUpdateMessage) string {
	switch msg.NewStatus {
	case domain.StatusConfirmed:
		return fmt.Sprintf("Order %s has been confirmed by the canteen", msg.OrderNumber)
	case domain.StatusPreparing:
		return fmt.Sprintf("Order %s is being prepared", msg.OrderNumber)
	case domain.StatusReady:
		return fmt.Sprintf("Order %s is ready for pickup", msg.OrderNumber)
	case domain.StatusCompleted:
		return fmt.Sprintf("Order %s has been completed", msg.OrderNumber)
	case domain.StatusCancelled:
		return fmt.Sprintf("Order %s was cancelled", msg.OrderNumber)
	default:
		return fmt.Sprintf("Order %s is now %s", msg.OrderNumber, msg.NewStatus)
	}
}
