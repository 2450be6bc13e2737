package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"campus-canteen/internal/app/cart"
	"campus-canteen/internal/app/checkout"
	"campus-canteen/internal/domain"
	"campus-canteen/internal/interfaces"
)

type nopLogger struct{}

func (nopLogger) Info(action, message, requestID string, details map[string]interface{})  {}
func (nopLogger) Debug(action, message, requestID string, details map[string]interface{}) {}
func (nopLogger) Error(action, message, requestID string, details map[string]interface{}, err error) {
}

type memorySnapshotter struct {
	data map[string][]byte
}

func (m *memorySnapshotter) Save(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *memorySnapshotter) Load(key string, v any) (bool, error) {
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, v)
}

type fakeRemote struct {
	interfaces.RemoteAPI
	items       map[string]*domain.MenuItem
	allItems    []*domain.MenuItem
	serverCart  []interfaces.ServerCartLine
	duringFetch func()
}

func (f *fakeRemote) FetchAllMenuItems(ctx context.Context) ([]*domain.MenuItem, error) {
	return f.allItems, nil
}

func (f *fakeRemote) FetchMenuItem(ctx context.Context, itemID string) (*domain.MenuItem, error) {
	item, ok := f.items[itemID]
	if !ok {
		return nil, errors.New("not found")
	}
	return item, nil
}

func (f *fakeRemote) FetchServerCart(ctx context.Context, userID string) ([]interfaces.ServerCartLine, error) {
	if f.duringFetch != nil {
		f.duringFetch()
	}
	return f.serverCart, nil
}

type fakeCheckout struct {
	err   error
	order *domain.Order
}

func (f *fakeCheckout) PlaceOrder(ctx context.Context, cmd interfaces.CheckoutCommand) (*domain.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

type fakeSession struct {
	user *domain.User
}

func (f *fakeSession) Login(ctx context.Context, email string) (*domain.User, error) {
	return f.user, nil
}
func (f *fakeSession) Logout() {}
func (f *fakeSession) Current() (*domain.User, bool) {
	if f.user == nil {
		return nil, false
	}
	return f.user, true
}
func (f *fakeSession) UpdateUser(update domain.User) {}
func (f *fakeSession) AddCredits(amount float64)     {}

func dosa() *domain.MenuItem {
	return &domain.MenuItem{
		ID:          "42",
		CanteenID:   "1",
		CanteenName: "North Mess",
		Name:        "Masala Dosa",
		Price:       60,
		IsAvailable: true,
		CustomizationOptions: &domain.CustomizationOptions{
			Sizes:     []domain.SizeOption{{Name: "large", Price: 10}},
			Additions: []domain.AdditionOption{{Name: "Extra Chutney", Price: 10}},
		},
	}
}

type handlerEnv struct {
	handler *CartHandler
	store   *cart.Store
	remote  *fakeRemote
}

func newEnv(t *testing.T, checkoutSvc interfaces.CheckoutService) *handlerEnv {
	t.Helper()

	store, err := cart.NewStore(&memorySnapshotter{data: make(map[string][]byte)}, nopLogger{})
	if err != nil {
		t.Fatalf("cart.NewStore: %v", err)
	}
	remote := &fakeRemote{items: map[string]*domain.MenuItem{"42": dosa()}}
	if checkoutSvc == nil {
		checkoutSvc = &fakeCheckout{}
	}

	return &handlerEnv{
		handler: NewCartHandler(store, remote, checkoutSvc, &fakeSession{}, nopLogger{}),
		store:   store,
		remote:  remote,
	}
}

func doRequest(handlerFn http.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	handlerFn(rec, req)
	return rec
}

func TestAddItemEndpoint(t *testing.T) {
	t.Run("prices the configured line from the catalog", func(t *testing.T) {
		env := newEnv(t, nil)

		body := `{"item_id":"42","quantity":2,"customization":{"size":"large","additions":["Extra Chutney"]}}`
		rec := doRequest(env.handler.HandleItems, http.MethodPost, "/cart/items", body)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := env.store.TotalAmount("u1"); got != 160 {
			t.Fatalf("expected total 160, got %v", got)
		}
	})

	t.Run("unknown item is 404", func(t *testing.T) {
		env := newEnv(t, nil)
		rec := doRequest(env.handler.HandleItems, http.MethodPost, "/cart/items", `{"item_id":"999","quantity":1}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("unavailable item is 409", func(t *testing.T) {
		env := newEnv(t, nil)
		item := dosa()
		item.IsAvailable = false
		env.remote.items["42"] = item

		rec := doRequest(env.handler.HandleItems, http.MethodPost, "/cart/items", `{"item_id":"42","quantity":1}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("invalid quantity is 400", func(t *testing.T) {
		env := newEnv(t, nil)
		rec := doRequest(env.handler.HandleItems, http.MethodPost, "/cart/items", `{"item_id":"42","quantity":0}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("missing user is 401", func(t *testing.T) {
		env := newEnv(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"item_id":"42","quantity":1}`))
		rec := httptest.NewRecorder()
		env.handler.HandleItems(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestLineEndpoints(t *testing.T) {
	env := newEnv(t, nil)
	added, _ := env.store.AddLine("u1", domain.CartLine{ItemID: "42", Name: "Masala Dosa", UnitPrice: 60, Quantity: 2})

	t.Run("negative quantity is 400", func(t *testing.T) {
		rec := doRequest(env.handler.HandleItems, http.MethodPut, "/cart/items/"+added.ID+"/quantity", `{"quantity":-1}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("quantity update changes the total", func(t *testing.T) {
		rec := doRequest(env.handler.HandleItems, http.MethodPut, "/cart/items/"+added.ID+"/quantity", `{"quantity":3}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := env.store.TotalAmount("u1"); got != 180 {
			t.Fatalf("expected total 180, got %v", got)
		}
	})

	t.Run("delete empties the cart", func(t *testing.T) {
		rec := doRequest(env.handler.HandleItems, http.MethodDelete, "/cart/items/"+added.ID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !env.store.Snapshot("u1").IsEmpty() {
			t.Fatal("expected empty cart")
		}
	})
}

func TestPickupEndpoint(t *testing.T) {
	env := newEnv(t, nil)

	rec := doRequest(env.handler.HandlePickup, http.MethodPut, "/cart/pickup", `{"date":"2026-09-01","time":"12:30"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env.store.Snapshot("u1").ScheduledPickup == nil {
		t.Fatal("expected pickup slot set")
	}

	rec = doRequest(env.handler.HandlePickup, http.MethodDelete, "/cart/pickup", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env.store.Snapshot("u1").ScheduledPickup != nil {
		t.Fatal("expected pickup slot cleared")
	}

	rec = doRequest(env.handler.HandlePickup, http.MethodPut, "/cart/pickup", `{"date":"2026-09-01"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing time, got %d", rec.Code)
	}
}

func TestSyncEndpoint(t *testing.T) {
	serverCart := []interfaces.ServerCartLine{
		{ItemID: "42", Quantity: 1, Customization: &domain.Customization{Size: "large"}},
	}

	t.Run("adopts and prices the server cart", func(t *testing.T) {
		env := newEnv(t, nil)
		env.remote.serverCart = serverCart

		rec := doRequest(env.handler.SyncCart, http.MethodPost, "/cart/sync", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var resp struct {
			Adopted bool `json:"adopted"`
		}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if !resp.Adopted {
			t.Fatal("expected adoption")
		}
		// Priced locally: 60 base + 10 large.
		if got := env.store.TotalAmount("u1"); got != 70 {
			t.Fatalf("expected total 70, got %v", got)
		}
	})

	t.Run("local edit during the fetch wins", func(t *testing.T) {
		env := newEnv(t, nil)
		env.remote.serverCart = serverCart
		env.remote.duringFetch = func() {
			env.store.AddLine("u1", domain.CartLine{ItemID: "7", Name: "Chai", UnitPrice: 15, Quantity: 1})
		}

		rec := doRequest(env.handler.SyncCart, http.MethodPost, "/cart/sync", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var resp struct {
			Adopted bool `json:"adopted"`
		}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Adopted {
			t.Fatal("expected stale fetch discarded")
		}
		snap := env.store.Snapshot("u1")
		if len(snap.Lines) != 1 || snap.Lines[0].ItemID != "7" {
			t.Fatalf("expected local edit preserved, got %+v", snap.Lines)
		}
	})

	t.Run("unknown items are skipped", func(t *testing.T) {
		env := newEnv(t, nil)
		env.remote.serverCart = []interfaces.ServerCartLine{
			{ItemID: "999", Quantity: 1},
			{ItemID: "42", Quantity: 1},
		}

		rec := doRequest(env.handler.SyncCart, http.MethodPost, "/cart/sync", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if snap := env.store.Snapshot("u1"); len(snap.Lines) != 1 {
			t.Fatalf("expected 1 line, got %d", len(snap.Lines))
		}
	})
}

func TestMenuEndpoint(t *testing.T) {
	env := newEnv(t, nil)
	env.remote.allItems = []*domain.MenuItem{
		dosa(),
		{ID: "7", CanteenID: "2", Name: "Chai", Price: 15, IsAvailable: true},
	}

	rec := doRequest(env.handler.HandleMenu, http.MethodGet, "/menu", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var items []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0]["canteen_id"] != "1" || items[1]["canteen_id"] != "2" {
		t.Fatalf("expected items across canteens, got %v", items)
	}
}

func TestCheckoutEndpoint(t *testing.T) {
	t.Run("invalid payment method is 400", func(t *testing.T) {
		env := newEnv(t, nil)
		rec := doRequest(env.handler.Checkout, http.MethodPost, "/checkout", `{"payment_method":"barter","phone":"5550001"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("empty cart is 409", func(t *testing.T) {
		env := newEnv(t, &fakeCheckout{err: checkout.ErrEmptyCart})
		rec := doRequest(env.handler.Checkout, http.MethodPost, "/checkout", `{"payment_method":"cash","phone":"5550001"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("mixed-canteen cart is 409", func(t *testing.T) {
		env := newEnv(t, &fakeCheckout{err: checkout.ErrMixedCanteens})
		rec := doRequest(env.handler.Checkout, http.MethodPost, "/checkout", `{"payment_method":"cash","phone":"5550001"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("placed order is 201", func(t *testing.T) {
		order := &domain.Order{Number: "1001", Status: domain.StatusPending, TotalAmount: 160}
		env := newEnv(t, &fakeCheckout{order: order})

		rec := doRequest(env.handler.Checkout, http.MethodPost, "/checkout", `{"payment_method":"cash","phone":"5550001"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp CheckoutResponse
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.OrderNumber != "1001" || resp.TotalAmount != 160 {
			t.Fatalf("unexpected response: %+v", resp)
		}
	})
}
