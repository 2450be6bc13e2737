package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"campus-canteen/internal/adapter/logger"
	"campus-canteen/internal/app/cart"
	"campus-canteen/internal/app/checkout"
	"campus-canteen/internal/domain"
	"campus-canteen/internal/interfaces"
)

type CartHandler struct {
	store    interfaces.CartStore
	remote   interfaces.RemoteAPI
	checkout interfaces.CheckoutService
	session  interfaces.SessionStore
	logger   logger.Logger
}

func NewCartHandler(store interfaces.CartStore, remote interfaces.RemoteAPI, checkoutSvc interfaces.CheckoutService, session interfaces.SessionStore, logger logger.Logger) *CartHandler {
	return &CartHandler{
		store:    store,
		remote:   remote,
		checkout: checkoutSvc,
		session:  session,
		logger:   logger,
	}
}

type AddItemRequest struct {
	ItemID        string                `json:"item_id"`
	Quantity      int                   `json:"quantity"`
	Customization *domain.Customization `json:"customization,omitempty"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type SetCustomizationRequest struct {
	Customization *domain.Customization `json:"customization"`
}

type SetPickupRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type CheckoutRequest struct {
	CanteenID     string `json:"canteen_id,omitempty"`
	PaymentMethod string `json:"payment_method"`
	Phone         string `json:"phone"`
	CustomerNote  string `json:"customer_note,omitempty"`
}

type CheckoutResponse struct {
	OrderNumber string  `json:"order_number"`
	Status      string  `json:"status"`
	TotalAmount float64 `json:"total_amount"`
	IsPreOrder  bool    `json:"is_pre_order"`
}

type CartResponse struct {
	Lines           []domain.CartLine       `json:"lines"`
	ScheduledPickup *domain.ScheduledPickup `json:"scheduled_pickup,omitempty"`
	TotalAmount     float64                 `json:"total_amount"`
	Revision        uint64                  `json:"revision"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// GetCart serves the current cart with its total recomputed from the lines.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed, nil)
		return
	}

	userID, ok := h.userID(r)
	if !ok {
		respondError(w, "Not authenticated", http.StatusUnauthorized, nil)
		return
	}

	respondJSON(w, http.StatusOK, h.cartResponse(userID))
}

// HandleItems routes /cart/items and /cart/items/{id}/... requests.
func (h *CartHandler) HandleItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(r)
	if !ok {
		respondError(w, "Not authenticated", http.StatusUnauthorized, nil)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 2 && r.Method == http.MethodPost:
		h.addItem(w, r, userID)
	case len(parts) == 3 && r.Method == http.MethodDelete:
		h.store.RemoveLine(userID, parts[2])
		respondJSON(w, http.StatusOK, h.cartResponse(userID))
	case len(parts) == 4 && parts[3] == "quantity" && r.Method == http.MethodPut:
		h.setQuantity(w, r, userID, parts[2])
	case len(parts) == 4 && parts[3] == "customization" && r.Method == http.MethodPut:
		h.setCustomization(w, r, userID, parts[2])
	default:
		respondError(w, "Not found", http.StatusNotFound, nil)
	}
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request, userID string) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if validationErrors := validateAddItemRequest(req); len(validationErrors) > 0 {
		respondError(w, "Validation failed", http.StatusBadRequest, validationErrors)
		return
	}

	item, err := h.remote.FetchMenuItem(r.Context(), req.ItemID)
	if err != nil {
		h.logger.Error("menu_item_fetch_failed", "Failed to fetch menu item", "", map[string]interface{}{
			"item_id": req.ItemID,
		}, err)
		respondError(w, "Menu item not found", http.StatusNotFound, nil)
		return
	}
	if !item.IsAvailable {
		respondError(w, "Menu item is currently unavailable", http.StatusConflict, nil)
		return
	}

	var size string
	var additions []string
	if req.Customization != nil {
		size = req.Customization.Size
		additions = req.Customization.Additions
	}

	line := domain.CartLine{
		ItemID:        item.ID,
		Name:          item.Name,
		CanteenID:     item.CanteenID,
		CanteenName:   item.CanteenName,
		UnitPrice:     domain.UnitPrice(item, size, additions),
		Quantity:      req.Quantity,
		Customization: req.Customization,
	}

	added, err := h.store.AddLine(userID, line)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"line": added,
		"cart": h.cartResponse(userID),
	})
}

func (h *CartHandler) setQuantity(w http.ResponseWriter, r *http.Request, userID, lineID string) {
	var req SetQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := h.store.SetQuantity(userID, lineID, req.Quantity); err != nil {
		if errors.Is(err, cart.ErrNegativeQuantity) {
			respondError(w, err.Error(), http.StatusBadRequest, nil)
			return
		}
		respondError(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}

	respondJSON(w, http.StatusOK, h.cartResponse(userID))
}

func (h *CartHandler) setCustomization(w http.ResponseWriter, r *http.Request, userID, lineID string) {
	var req SetCustomizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	h.store.SetCustomization(userID, lineID, req.Customization)
	respondJSON(w, http.StatusOK, h.cartResponse(userID))
}

// HandlePickup sets or clears the pre-order pickup slot.
func (h *CartHandler) HandlePickup(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(r)
	if !ok {
		respondError(w, "Not authenticated", http.StatusUnauthorized, nil)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req SetPickupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, "Invalid request body", http.StatusBadRequest, nil)
			return
		}
		if req.Date == "" || req.Time == "" {
			respondError(w, "Pickup date and time are required", http.StatusBadRequest, nil)
			return
		}
		h.store.SetScheduledPickup(userID, &domain.ScheduledPickup{Date: req.Date, Time: req.Time})

	case http.MethodDelete:
		h.store.SetScheduledPickup(userID, nil)

	default:
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed, nil)
		return
	}

	respondJSON(w, http.StatusOK, h.cartResponse(userID))
}

// SyncCart pulls the server-side cart and adopts it unless the local cart
// changed while the fetch was in flight. Prices are resolved locally because
// the server cart carries none.
func (h *CartHandler) SyncCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed, nil)
		return
	}

	userID, ok := h.userID(r)
	if !ok {
		respondError(w, "Not authenticated", http.StatusUnauthorized, nil)
		return
	}

	baseRevision := h.store.Revision(userID)

	serverLines, err := h.remote.FetchServerCart(r.Context(), userID)
	if err != nil {
		h.logger.Error("cart_fetch_failed", "Failed to fetch server cart", "", map[string]interface{}{
			"user_id": userID,
		}, err)
		respondError(w, "Failed to fetch server cart", http.StatusBadGateway, nil)
		return
	}

	lines := make([]domain.CartLine, 0, len(serverLines))
	for _, sl := range serverLines {
		item, err := h.remote.FetchMenuItem(r.Context(), sl.ItemID)
		if err != nil || !item.IsAvailable {
			h.logger.Debug("cart_sync_line_skipped", "Server cart line references an unknown or unavailable item", "", map[string]interface{}{
				"item_id": sl.ItemID,
			})
			continue
		}

		var size string
		var additions []string
		if sl.Customization != nil {
			size = sl.Customization.Size
			additions = sl.Customization.Additions
		}

		lines = append(lines, domain.CartLine{
			ItemID:        item.ID,
			Name:          item.Name,
			CanteenID:     item.CanteenID,
			CanteenName:   item.CanteenName,
			UnitPrice:     domain.UnitPrice(item, size, additions),
			Quantity:      sl.Quantity,
			Customization: sl.Customization,
		})
	}

	adopted := h.store.SyncServerCart(userID, lines, baseRevision)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"adopted": adopted,
		"cart":    h.cartResponse(userID),
	})
}

// Checkout hands the cart off to the platform API.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed, nil)
		return
	}

	userID, ok := h.userID(r)
	if !ok {
		respondError(w, "Not authenticated", http.StatusUnauthorized, nil)
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if validationErrors := validateCheckoutRequest(req); len(validationErrors) > 0 {
		respondError(w, "Validation failed", http.StatusBadRequest, validationErrors)
		return
	}

	order, err := h.checkout.PlaceOrder(r.Context(), interfaces.CheckoutCommand{
		UserID:        userID,
		CanteenID:     req.CanteenID,
		PaymentMethod: req.PaymentMethod,
		Phone:         strings.TrimSpace(req.Phone),
		CustomerNote:  strings.TrimSpace(req.CustomerNote),
	})
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) || errors.Is(err, checkout.ErrMixedCanteens) {
			respondError(w, err.Error(), http.StatusConflict, nil)
			return
		}
		h.logger.Error("checkout_failed", "Checkout failed", "", map[string]interface{}{
			"user_id": userID,
		}, err)
		respondError(w, err.Error(), http.StatusBadGateway, nil)
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponse{
		OrderNumber: order.Number,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
		IsPreOrder:  order.IsPreOrder,
	})
}

// HandleCanteens routes /canteens and /canteens/{id}/menu requests.
func (h *CartHandler) HandleCanteens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed, nil)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 1:
		h.listCanteens(w, r)
	case len(parts) == 3 && parts[2] == "menu":
		h.listMenu(w, r, parts[1])
	default:
		respondError(w, "Not found", http.StatusNotFound, nil)
	}
}

func (h *CartHandler) listCanteens(w http.ResponseWriter, r *http.Request) {
	canteens, err := h.remote.FetchCanteens(r.Context())
	if err != nil {
		h.logger.Error("canteens_fetch_failed", "Failed to fetch canteens", "", nil, err)
		respondError(w, "Failed to fetch canteens", http.StatusBadGateway, nil)
		return
	}

	resp := make([]map[string]interface{}, len(canteens))
	for i, c := range canteens {
		resp[i] = map[string]interface{}{
			"id":          c.ID,
			"name":        c.Name,
			"location":    c.Location,
			"description": c.Description,
			"phone":       c.Phone,
			"open_time":   c.OpenTime,
			"close_time":  c.CloseTime,
			"rating":      c.Rating,
			"is_open":     c.IsOpen,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *CartHandler) listMenu(w http.ResponseWriter, r *http.Request, canteenID string) {
	items, err := h.remote.FetchMenuItems(r.Context(), canteenID)
	if err != nil {
		h.logger.Error("menu_fetch_failed", "Failed to fetch menu", "", map[string]interface{}{
			"canteen_id": canteenID,
		}, err)
		respondError(w, "Failed to fetch menu", http.StatusBadGateway, nil)
		return
	}
	respondJSON(w, http.StatusOK, menuItemsResponse(items))
}

// HandleMenu serves the cross-canteen menu listing.
func (h *CartHandler) HandleMenu(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed, nil)
		return
	}

	items, err := h.remote.FetchAllMenuItems(r.Context())
	if err != nil {
		h.logger.Error("menu_fetch_failed", "Failed to fetch menu", "", nil, err)
		respondError(w, "Failed to fetch menu", http.StatusBadGateway, nil)
		return
	}
	respondJSON(w, http.StatusOK, menuItemsResponse(items))
}

func menuItemsResponse(items []*domain.MenuItem) []map[string]interface{} {
	resp := make([]map[string]interface{}, len(items))
	for i, item := range items {
		resp[i] = map[string]interface{}{
			"id":                    item.ID,
			"canteen_id":            item.CanteenID,
			"canteen_name":          item.CanteenName,
			"name":                  item.Name,
			"description":           item.Description,
			"price":                 item.Price,
			"category":              item.Category,
			"tags":                  item.Tags,
			"rating":                item.Rating,
			"is_available":          item.IsAvailable,
			"is_popular":            item.IsPopular,
			"preparation_time":      item.PreparationTime,
			"customization_options": item.CustomizationOptions,
			"needs_customization":   item.NeedsCustomization(),
		}
	}
	return resp
}

func validateAddItemRequest(req AddItemRequest) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(req.ItemID) == "" {
		errs = append(errs, ValidationError{
			Field:   "item_id",
			Message: "item id is required",
		})
	}
	if req.Quantity < 1 {
		errs = append(errs, ValidationError{
			Field:   "quantity",
			Message: "quantity must be at least 1",
		})
	} else if req.Quantity > 20 {
		errs = append(errs, ValidationError{
			Field:   "quantity",
			Message: "quantity must not exceed 20",
		})
	}
	if req.Customization != nil && len(req.Customization.Notes) > 200 {
		errs = append(errs, ValidationError{
			Field:   "customization.notes",
			Message: "notes must not exceed 200 characters",
		})
	}

	return errs
}

func validateCheckoutRequest(req CheckoutRequest) []ValidationError {
	var errs []ValidationError

	validPaymentMethods := map[string]bool{
		"cash":    true,
		"card":    true,
		"upi":     true,
		"credits": true,
	}
	if !validPaymentMethods[req.PaymentMethod] {
		errs = append(errs, ValidationError{
			Field:   "payment_method",
			Message: "payment method must be one of: cash, card, upi, credits",
		})
	}

	phone := strings.TrimSpace(req.Phone)
	if len(phone) < 7 {
		errs = append(errs, ValidationError{
			Field:   "phone",
			Message: "contact phone is required",
		})
	}

	if len(req.CustomerNote) > 500 {
		errs = append(errs, ValidationError{
			Field:   "customer_note",
			Message: "customer note must not exceed 500 characters",
		})
	}

	return errs
}

func (h *CartHandler) cartResponse(userID string) CartResponse {
	snap := h.store.Snapshot(userID)
	return CartResponse{
		Lines:           snap.Lines,
		ScheduledPickup: snap.ScheduledPickup,
		TotalAmount:     snap.Total(),
		Revision:        snap.Revision,
	}
}

// userID resolves the acting user: an explicit header wins, otherwise the
// signed-in session user.
func (h *CartHandler) userID(r *http.Request) (string, bool) {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id, true
	}
	if user, ok := h.session.Current(); ok {
		return user.ID, true
	}
	return "", false
}

func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, message string, statusCode int, validationErrors []ValidationError) {
	respondJSON(w, statusCode, ErrorResponse{
		Error:  message,
		Errors: validationErrors,
	})
}
