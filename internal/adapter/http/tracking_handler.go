package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"campus-canteen/internal/adapter/logger"
	"campus-canteen/internal/domain"
	"campus-canteen/internal/interfaces"
)

type TrackingHandler struct {
	service interfaces.TrackingService
	remote  interfaces.RemoteAPI
	logger  logger.Logger
}

func NewTrackingHandler(service interfaces.TrackingService, remote interfaces.RemoteAPI, logger logger.Logger) *TrackingHandler {
	return &TrackingHandler{
		service: service,
		remote:  remote,
		logger:  logger,
	}
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// HandleOrders routes /orders, /orders/{number}/status, /orders/{number}/history
// and /orders/{number}/cancel requests.
func (h *TrackingHandler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 1:
		h.listOrders(w, r)
	case len(parts) == 3 && parts[2] == "status" && r.Method == http.MethodPut:
		h.updateOrderStatus(w, r, parts[1])
	case len(parts) == 3 && parts[2] == "status":
		h.getOrderStatus(w, r, parts[1])
	case len(parts) == 3 && parts[2] == "history":
		h.getOrderHistory(w, r, parts[1])
	case len(parts) == 3 && parts[2] == "cancel":
		h.cancelOrder(w, r, parts[1])
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (h *TrackingHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := r.URL.Query().Get("user")
	if userID == "" {
		http.Error(w, "user query parameter is required", http.StatusBadRequest)
		return
	}

	orders, err := h.service.ListUserOrders(r.Context(), userID)
	if err != nil {
		h.logger.Error("orders_list_failed", "Failed to list orders", "", map[string]interface{}{
			"user_id": userID,
		}, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]map[string]interface{}, len(orders))
	for i, order := range orders {
		resp[i] = map[string]interface{}{
			"order_number": order.Number,
			"canteen_id":   order.CanteenID,
			"status":       order.Status,
			"total_amount": order.TotalAmount,
			"is_pre_order": order.IsPreOrder,
			"created_at":   order.CreatedAt,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *TrackingHandler) getOrderStatus(w http.ResponseWriter, r *http.Request, orderNumber string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := h.service.GetOrderStatus(r.Context(), orderNumber)
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	resp := map[string]interface{}{
		"order_number":    result.OrderNumber,
		"current_status":  result.CurrentStatus,
		"updated_at":      result.UpdatedAt,
		"estimated_ready": result.EstimatedReady,
		"is_pre_order":    result.IsPreOrder,
		"waiting_minutes": result.WaitingMinutes,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *TrackingHandler) getOrderHistory(w http.ResponseWriter, r *http.Request, orderNumber string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	history, err := h.service.GetOrderHistory(r.Context(), orderNumber)
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	resp := make([]map[string]interface{}, len(history))
	for i, log := range history {
		resp[i] = map[string]interface{}{
			"status":     log.Status,
			"timestamp":  log.ChangedAt,
			"changed_by": log.ChangedBy,
			"notes":      log.Notes,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// updateOrderStatus forwards a vendor's status change to the platform and, on
// success, advances the local snapshot immediately.
func (h *TrackingHandler) updateOrderStatus(w http.ResponseWriter, r *http.Request, orderNumber string) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		http.Error(w, "X-User-ID header is required", http.StatusUnauthorized)
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		http.Error(w, "status is required", http.StatusBadRequest)
		return
	}

	status := domain.Status(req.Status)
	if err := h.remote.UpdateOrderStatus(r.Context(), orderNumber, status, userID); err != nil {
		h.logger.Error("status_update_failed", "Platform rejected status update", "", map[string]interface{}{
			"order_number": orderNumber,
			"status":       req.Status,
		}, err)
		http.Error(w, "Failed to update order status", http.StatusBadGateway)
		return
	}

	update := interfaces.StatusUpdateMessage{
		OrderNumber: orderNumber,
		NewStatus:   status,
		ChangedBy:   userID,
		Timestamp:   time.Now().UTC(),
	}
	if err := h.service.ApplyStatusUpdate(r.Context(), update); err != nil {
		h.logger.Error("status_update_apply_failed", "Failed to record status update locally", "", map[string]interface{}{
			"order_number": orderNumber,
		}, err)
	}

	w.WriteHeader(http.StatusNoContent)
}

// cancelOrder asks the platform to cancel and, on success, advances the local
// snapshot so the tracking views do not wait for the fanout round-trip.
func (h *TrackingHandler) cancelOrder(w http.ResponseWriter, r *http.Request, orderNumber string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		http.Error(w, "X-User-ID header is required", http.StatusUnauthorized)
		return
	}

	var req CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.remote.CancelOrder(r.Context(), orderNumber, userID, req.Reason); err != nil {
		h.logger.Error("order_cancel_failed", "Platform rejected cancellation", "", map[string]interface{}{
			"order_number": orderNumber,
		}, err)
		http.Error(w, "Failed to cancel order", http.StatusBadGateway)
		return
	}

	update := interfaces.StatusUpdateMessage{
		OrderNumber: orderNumber,
		NewStatus:   domain.StatusCancelled,
		ChangedBy:   "customer",
		Timestamp:   time.Now().UTC(),
		Notes:       req.Reason,
	}
	if err := h.service.ApplyStatusUpdate(r.Context(), update); err != nil {
		h.logger.Error("order_cancel_apply_failed", "Failed to record cancellation locally", "", map[string]interface{}{
			"order_number": orderNumber,
		}, err)
	}

	w.WriteHeader(http.StatusNoContent)
}
