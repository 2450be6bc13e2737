package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"campus-canteen/internal/adapter/logger"
	"campus-canteen/internal/interfaces"
)

// StatusHandler feeds platform status updates into the tracking cache.
type StatusHandler struct {
	tracking interfaces.TrackingService
	logger   logger.Logger
}

func NewStatusHandler(tracking interfaces.TrackingService, lgr logger.Logger) *StatusHandler {
	return &StatusHandler{
		tracking: tracking,
		logger:   lgr,
	}
}

func (h *StatusHandler) HandleStatusUpdate(ctx context.Context, body []byte) error {
	var msg interfaces.StatusUpdateMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("failed to parse status update: %w", err)
	}
	if msg.OrderNumber == "" || msg.NewStatus == "" {
		return fmt.Errorf("status update missing order number or status")
	}

	return h.tracking.ApplyStatusUpdate(ctx, msg)
}
