package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"campus-canteen/internal/adapter/logger"
	"campus-canteen/internal/config"
	"campus-canteen/internal/domain"
	"campus-canteen/internal/interfaces"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Client speaks GraphQL-over-HTTP to the platform API: POSTed
// {query, variables} bodies, {data, errors} responses. A circuit breaker
// keeps a flapping backend from being hammered by UI-driven retries.
type Client struct {
	http     *resty.Client
	breaker  *gobreaker.CircuitBreaker
	endpoint string
	logger   logger.Logger
}

func NewClient(cfg config.APIConfig, lgr logger.Logger) *Client {
	rc := resty.New().
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetRetryCount(0)

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "platform-api",
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			lgr.Info("circuit_state_changed", "Platform API circuit breaker state changed", "", map[string]interface{}{
				"from": from.String(),
				"to":   to.String(),
			})
		},
	})

	return &Client{
		http:     rc,
		breaker:  cb,
		endpoint: cfg.URL,
		logger:   lgr,
	}
}

func (c *Client) execute(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(gqlRequest{Query: query, Variables: vars}).
			Post(c.endpoint)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d from platform API", resp.StatusCode())
		}
		return resp.Body(), nil
	})
	if err != nil {
		return fmt.Errorf("platform API request failed: %w", err)
	}

	var parsed gqlResponse
	if err := json.Unmarshal(body.([]byte), &parsed); err != nil {
		return fmt.Errorf("failed to parse platform API response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return fmt.Errorf("platform API error: %s", parsed.Errors[0].Message)
	}
	if out != nil {
		if err := json.Unmarshal(parsed.Data, out); err != nil {
			return fmt.Errorf("failed to decode platform API data: %w", err)
		}
	}
	return nil
}

type canteenDTO struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Location      string  `json:"location"`
	Description   string  `json:"description"`
	ContactNumber string  `json:"contactNumber"`
	OpenTime      string  `json:"openTime"`
	CloseTime     string  `json:"closeTime"`
	Rating        float64 `json:"rating"`
	IsOpen        bool    `json:"isOpen"`
}

func (d canteenDTO) toDomain() *domain.Canteen {
	return &domain.Canteen{
		ID:          strconv.Itoa(d.ID),
		Name:        d.Name,
		Location:    d.Location,
		Description: d.Description,
		Phone:       d.ContactNumber,
		OpenTime:    d.OpenTime,
		CloseTime:   d.CloseTime,
		Rating:      d.Rating,
		IsOpen:      d.IsOpen,
	}
}

type menuItemDTO struct {
	ID                   int                     `json:"id"`
	CanteenID            int                     `json:"canteenId"`
	CanteenName          string                  `json:"canteenName"`
	Name                 string                  `json:"name"`
	Description          string                  `json:"description"`
	Price                float64                 `json:"price"`
	Category             string                  `json:"category"`
	Tags                 []string                `json:"tags"`
	Rating               float64                 `json:"rating"`
	RatingCount          int                     `json:"ratingCount"`
	IsAvailable          bool                    `json:"isAvailable"`
	IsPopular            bool                    `json:"isPopular"`
	PreparationTime      int                     `json:"preparationTime"`
	CustomizationOptions customizationOptionsDTO `json:"customizationOptions"`
}

// customizationOptionsDTO absorbs both wire shapes of customizationOptions:
// the platform serves the options object serialized into a JSON string, while
// older fixtures inline the object directly.
type customizationOptionsDTO struct {
	opts *domain.CustomizationOptions
}

func (d *customizationOptionsDTO) UnmarshalJSON(data []byte) error {
	d.opts = nil
	if string(data) == "null" {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		raw = strings.TrimSpace(raw)
		if raw == "" || raw == "null" {
			return nil
		}
		data = []byte(raw)
	}

	var opts domain.CustomizationOptions
	if err := json.Unmarshal(data, &opts); err != nil {
		return fmt.Errorf("failed to parse customization options: %w", err)
	}
	d.opts = &opts
	return nil
}

func (d menuItemDTO) toDomain() *domain.MenuItem {
	return &domain.MenuItem{
		ID:                   strconv.Itoa(d.ID),
		CanteenID:            strconv.Itoa(d.CanteenID),
		CanteenName:          d.CanteenName,
		Name:                 d.Name,
		Description:          d.Description,
		Price:                d.Price,
		Category:             d.Category,
		Tags:                 d.Tags,
		Rating:               d.Rating,
		RatingCount:          d.RatingCount,
		IsAvailable:          d.IsAvailable,
		IsPopular:            d.IsPopular,
		PreparationTime:      d.PreparationTime,
		CustomizationOptions: d.CustomizationOptions.opts,
	}
}

func (c *Client) FetchCanteens(ctx context.Context) ([]*domain.Canteen, error) {
	var data struct {
		GetCanteens []canteenDTO `json:"getCanteens"`
	}
	if err := c.execute(ctx, queryGetCanteens, nil, &data); err != nil {
		return nil, err
	}

	canteens := make([]*domain.Canteen, len(data.GetCanteens))
	for i, d := range data.GetCanteens {
		canteens[i] = d.toDomain()
	}
	return canteens, nil
}

func (c *Client) FetchAllMenuItems(ctx context.Context) ([]*domain.MenuItem, error) {
	var data struct {
		GetMenuItems []menuItemDTO `json:"getMenuItems"`
	}
	if err := c.execute(ctx, queryGetMenuItems, nil, &data); err != nil {
		return nil, err
	}

	items := make([]*domain.MenuItem, len(data.GetMenuItems))
	for i, d := range data.GetMenuItems {
		items[i] = d.toDomain()
	}
	return items, nil
}

func (c *Client) FetchMenuItems(ctx context.Context, canteenID string) ([]*domain.MenuItem, error) {
	id, err := strconv.Atoi(canteenID)
	if err != nil {
		return nil, fmt.Errorf("invalid canteen id %q: %w", canteenID, err)
	}

	var data struct {
		GetMenuItemsByCanteen []menuItemDTO `json:"getMenuItemsByCanteen"`
	}
	if err := c.execute(ctx, queryGetMenuItemsByCanteen, map[string]any{"canteenId": id}, &data); err != nil {
		return nil, err
	}

	items := make([]*domain.MenuItem, len(data.GetMenuItemsByCanteen))
	for i, d := range data.GetMenuItemsByCanteen {
		items[i] = d.toDomain()
	}
	return items, nil
}

func (c *Client) FetchMenuItem(ctx context.Context, itemID string) (*domain.MenuItem, error) {
	id, err := strconv.Atoi(itemID)
	if err != nil {
		return nil, fmt.Errorf("invalid item id %q: %w", itemID, err)
	}

	var data struct {
		GetMenuItemByID *menuItemDTO `json:"getMenuItemById"`
	}
	if err := c.execute(ctx, queryGetMenuItemByID, map[string]any{"itemId": id}, &data); err != nil {
		return nil, err
	}
	if data.GetMenuItemByID == nil {
		return nil, fmt.Errorf("menu item %s not found", itemID)
	}
	return data.GetMenuItemByID.toDomain(), nil
}

func (c *Client) FetchServerCart(ctx context.Context, userID string) ([]interfaces.ServerCartLine, error) {
	id, err := strconv.Atoi(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	var data struct {
		GetCartByUserID *struct {
			Items []struct {
				MenuItemID          int    `json:"menuItemId"`
				Quantity            int    `json:"quantity"`
				SelectedSize        string `json:"selectedSize"`
				SelectedExtras      string `json:"selectedExtras"`
				SpecialInstructions string `json:"specialInstructions"`
			} `json:"items"`
		} `json:"getCartByUserId"`
	}
	if err := c.execute(ctx, queryGetCartByUserID, map[string]any{"userId": id}, &data); err != nil {
		return nil, err
	}
	if data.GetCartByUserID == nil {
		return nil, nil
	}

	lines := make([]interfaces.ServerCartLine, 0, len(data.GetCartByUserID.Items))
	for _, it := range data.GetCartByUserID.Items {
		var cust *domain.Customization
		extras := parseExtras(it.SelectedExtras)
		if it.SelectedSize != "" || len(extras) > 0 || it.SpecialInstructions != "" {
			cust = &domain.Customization{
				Size:      it.SelectedSize,
				Additions: extras,
				Notes:     it.SpecialInstructions,
			}
		}
		lines = append(lines, interfaces.ServerCartLine{
			ItemID:        strconv.Itoa(it.MenuItemID),
			Quantity:      it.Quantity,
			Customization: cust,
		})
	}
	return lines, nil
}

// parseExtras decodes the selectedExtras wire field, a JSON array serialized
// into a string, with a comma-separated fallback for legacy carts.
func parseExtras(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var extras []string
	if err := json.Unmarshal([]byte(raw), &extras); err == nil {
		return extras
	}

	parts := strings.Split(raw, ",")
	extras = extras[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			extras = append(extras, p)
		}
	}
	return extras
}

func (c *Client) FetchUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var data struct {
		GetUserByEmail *struct {
			ID             int     `json:"id"`
			Name           string  `json:"name"`
			Email          string  `json:"email"`
			Role           string  `json:"role"`
			Department     string  `json:"department"`
			CanteenCredits float64 `json:"canteenCredits"`
			IsActive       bool    `json:"isActive"`
		} `json:"getUserByEmail"`
	}
	if err := c.execute(ctx, queryGetUserByEmail, map[string]any{"email": email}, &data); err != nil {
		return nil, err
	}
	u := data.GetUserByEmail
	if u == nil {
		return nil, fmt.Errorf("no user registered for %s", email)
	}
	if !u.IsActive {
		return nil, fmt.Errorf("account for %s is deactivated", email)
	}

	return &domain.User{
		ID:             strconv.Itoa(u.ID),
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		Department:     u.Department,
		CanteenCredits: u.CanteenCredits,
	}, nil
}

type mutationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OrderID int    `json:"orderId"`
}

func (c *Client) CreateOrder(ctx context.Context, input interfaces.CreateOrderInput) (*interfaces.CreateOrderResult, error) {
	userID, err := strconv.Atoi(input.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", input.UserID, err)
	}
	canteenID, err := strconv.Atoi(input.CanteenID)
	if err != nil {
		return nil, fmt.Errorf("invalid canteen id %q: %w", input.CanteenID, err)
	}

	items := make([]map[string]any, len(input.Items))
	for i, it := range input.Items {
		itemID, err := strconv.Atoi(it.ItemID)
		if err != nil {
			return nil, fmt.Errorf("invalid item id %q: %w", it.ItemID, err)
		}
		entry := map[string]any{
			"itemId":   itemID,
			"quantity": it.Quantity,
			"price":    it.UnitPrice,
		}
		if it.Customization != nil {
			cust, err := json.Marshal(it.Customization)
			if err != nil {
				return nil, fmt.Errorf("failed to serialize customization: %w", err)
			}
			entry["customizations"] = string(cust)
			if it.Customization.Notes != "" {
				entry["note"] = it.Customization.Notes
			}
		}
		items[i] = entry
	}

	vars := map[string]any{
		"userId":        userID,
		"canteenId":     canteenID,
		"items":         items,
		"paymentMethod": input.PaymentMethod,
		"phone":         input.Phone,
		"isPreOrder":    input.IsPreOrder,
	}
	if input.CustomerNote != "" {
		vars["customerNote"] = input.CustomerNote
	}
	if input.PickupTime != "" {
		vars["pickupTime"] = input.PickupTime
	}

	var data struct {
		CreateOrder mutationResult `json:"createOrder"`
	}
	if err := c.execute(ctx, mutationCreateOrder, vars, &data); err != nil {
		return nil, err
	}
	if !data.CreateOrder.Success {
		return nil, fmt.Errorf("order rejected: %s", data.CreateOrder.Message)
	}

	return &interfaces.CreateOrderResult{
		Success: true,
		Message: data.CreateOrder.Message,
		OrderID: strconv.Itoa(data.CreateOrder.OrderID),
	}, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status domain.Status, actorUserID string) error {
	oid, err := strconv.Atoi(orderID)
	if err != nil {
		return fmt.Errorf("invalid order id %q: %w", orderID, err)
	}
	uid, err := strconv.Atoi(actorUserID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", actorUserID, err)
	}

	var data struct {
		UpdateOrderStatus mutationResult `json:"updateOrderStatus"`
	}
	vars := map[string]any{"orderId": oid, "status": string(status), "currentUserId": uid}
	if err := c.execute(ctx, mutationUpdateOrderStatus, vars, &data); err != nil {
		return err
	}
	if !data.UpdateOrderStatus.Success {
		return fmt.Errorf("status update rejected: %s", data.UpdateOrderStatus.Message)
	}
	return nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID, userID, reason string) error {
	oid, err := strconv.Atoi(orderID)
	if err != nil {
		return fmt.Errorf("invalid order id %q: %w", orderID, err)
	}
	uid, err := strconv.Atoi(userID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	var data struct {
		CancelOrder mutationResult `json:"cancelOrder"`
	}
	vars := map[string]any{"orderId": oid, "userId": uid, "reason": reason}
	if err := c.execute(ctx, mutationCancelOrder, vars, &data); err != nil {
		return err
	}
	if !data.CancelOrder.Success {
		return fmt.Errorf("cancellation rejected: %s", data.CancelOrder.Message)
	}
	return nil
}
