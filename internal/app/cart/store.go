package cart

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"campus-canteen/internal/adapter/logger"
	"campus-canteen/internal/domain"
	"campus-canteen/internal/interfaces"

	"github.com/google/uuid"
)

// storageKey names the durable snapshot the carts round-trip through,
// matching the key the web client persisted under.
const storageKey = "cart-storage"

var (
	ErrUnknownItem      = errors.New("item id is required")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrNegativeQuantity = errors.New("quantity must not be negative")
)

// Store owns the per-user carts. Every mutation serializes the full state to
// the snapshotter; construction deserializes it, so carts survive restarts.
type Store struct {
	mu     sync.Mutex
	carts  map[string]*domain.Cart
	snaps  interfaces.Snapshotter
	logger logger.Logger
}

func NewStore(snaps interfaces.Snapshotter, lgr logger.Logger) (*Store, error) {
	s := &Store{
		carts:  make(map[string]*domain.Cart),
		snaps:  snaps,
		logger: lgr,
	}

	var saved map[string]*domain.Cart
	ok, err := snaps.Load(storageKey, &saved)
	if err != nil {
		return nil, fmt.Errorf("failed to restore cart snapshot: %w", err)
	}
	if ok && saved != nil {
		s.carts = saved
	}

	return s, nil
}

// AddLine appends a configured item to the user's cart. A line with the same
// item and identical customization merges by summing quantity; any
// customization difference yields a distinct line.
func (s *Store) AddLine(userID string, line domain.CartLine) (domain.CartLine, error) {
	if line.ItemID == "" {
		return domain.CartLine{}, ErrUnknownItem
	}
	if line.Quantity < 1 {
		return domain.CartLine{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	key := line.MergeKey()
	for i := range c.Lines {
		if c.Lines[i].MergeKey() == key {
			c.Lines[i].Quantity += line.Quantity
			s.commit(userID, c)
			return c.Lines[i].Clone(), nil
		}
	}

	line.ID = uuid.NewString()
	line.Customization = line.Customization.Clone()
	c.Lines = append(c.Lines, line)
	s.commit(userID, c)

	return line.Clone(), nil
}

// RemoveLine deletes the line if present. Absent lines are a no-op.
func (s *Store) RemoveLine(userID, lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			s.commit(userID, c)
			return
		}
	}
}

// SetQuantity updates a line's quantity. Zero removes the line; negative
// input is rejected outright. Unknown lines are a no-op.
func (s *Store) SetQuantity(userID, lineID string, quantity int) error {
	if quantity < 0 {
		return ErrNegativeQuantity
	}
	if quantity == 0 {
		s.RemoveLine(userID, lineID)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines[i].Quantity = quantity
			s.commit(userID, c)
			return nil
		}
	}
	return nil
}

// SetCustomization replaces the customization payload of an existing line
// without re-keying it against other lines.
func (s *Store) SetCustomization(userID, lineID string, cust *domain.Customization) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines[i].Customization = cust.Clone()
			s.commit(userID, c)
			return
		}
	}
}

// SetScheduledPickup stores or clears the pre-order pickup slot. Opening-hour
// validation is the platform's concern.
func (s *Store) SetScheduledPickup(userID string, pickup *domain.ScheduledPickup) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	if pickup == nil {
		c.ScheduledPickup = nil
	} else {
		p := *pickup
		c.ScheduledPickup = &p
	}
	s.commit(userID, c)
}

// Clear empties the cart and the pickup slot. Invoked after a successful
// checkout handoff.
func (s *Store) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	c.Lines = nil
	c.ScheduledPickup = nil
	s.commit(userID, c)
}

// TotalAmount recomputes the cart total from its lines on every read.
func (s *Store) TotalAmount(userID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart(userID).Total()
}

// Snapshot returns a deep copy of the user's cart.
func (s *Store) Snapshot(userID string) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart(userID).Clone()
}

// Revision returns the cart's current generation. Callers record it before an
// async server-cart fetch and pass it back to SyncServerCart.
func (s *Store) Revision(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart(userID).Revision
}

// SyncServerCart adopts a server-side cart fetch. The fetch is discarded when
// any local mutation happened after baseRevision was observed: the local
// store stays authoritative for anything not yet synced.
func (s *Store) SyncServerCart(userID string, lines []domain.CartLine, baseRevision uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	if c.Revision != baseRevision {
		s.logger.Debug("cart_sync_discarded", "Stale server cart fetch discarded", "", map[string]interface{}{
			"user_id":       userID,
			"base_revision": baseRevision,
			"revision":      c.Revision,
		})
		return false
	}

	c.Lines = make([]domain.CartLine, 0, len(lines))
	byKey := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			continue
		}
		// Server carts may repeat an item; fold duplicates the same way
		// AddLine merges them.
		if i, ok := byKey[l.MergeKey()]; ok {
			c.Lines[i].Quantity += l.Quantity
			continue
		}
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		byKey[l.MergeKey()] = len(c.Lines)
		c.Lines = append(c.Lines, l.Clone())
	}
	s.commit(userID, c)
	return true
}

// cart returns the user's cart, creating an empty one lazily. Callers hold
// the lock.
func (s *Store) cart(userID string) *domain.Cart {
	c, ok := s.carts[userID]
	if !ok {
		c = &domain.Cart{}
		s.carts[userID] = c
	}
	return c
}

// commit bumps the revision and serializes the state. A failed write keeps
// the in-memory cart usable; durability is best effort.
func (s *Store) commit(userID string, c *domain.Cart) {
	c.Revision++
	c.UpdatedAt = time.Now().UTC()

	if err := s.snaps.Save(storageKey, s.carts); err != nil {
		s.logger.Error("cart_persist_failed", "Failed to persist cart snapshot", "", map[string]interface{}{
			"user_id": userID,
		}, err)
	}
}
