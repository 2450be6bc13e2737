package domain

import (
	"sort"
	"strings"
	"time"
)

// Customization is the size/addition/removal combination and free-text note
// chosen for one cart line.
type Customization struct {
	Size      string   `json:"size,omitempty"`
	Additions []string `json:"additions,omitempty"`
	Removals  []string `json:"removals,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// Signature returns a canonical key for the customization. Addition and
// removal order does not matter; two selections with the same choices produce
// the same signature.
func (c *Customization) Signature() string {
	if c == nil {
		return ""
	}

	additions := append([]string(nil), c.Additions...)
	removals := append([]string(nil), c.Removals...)
	sort.Strings(additions)
	sort.Strings(removals)

	return strings.Join([]string{
		c.Size,
		strings.Join(additions, "+"),
		strings.Join(removals, "+"),
		c.Notes,
	}, "|")
}

// Clone returns a deep copy, nil-safe.
func (c *Customization) Clone() *Customization {
	if c == nil {
		return nil
	}
	return &Customization{
		Size:      c.Size,
		Additions: append([]string(nil), c.Additions...),
		Removals:  append([]string(nil), c.Removals...),
		Notes:     c.Notes,
	}
}

// CartLine is one configured, quantified entry in a cart. UnitPrice is the
// effective per-unit price captured when the line was added.
type CartLine struct {
	ID            string         `json:"id"`
	ItemID        string         `json:"item_id"`
	Name          string         `json:"name"`
	CanteenID     string         `json:"canteen_id"`
	CanteenName   string         `json:"canteen_name"`
	UnitPrice     float64        `json:"unit_price"`
	Quantity      int            `json:"quantity"`
	Customization *Customization `json:"customization,omitempty"`
}

// MergeKey identifies a purchasable configuration. Lines merge only when both
// the item and the full customization match.
func (l *CartLine) MergeKey() string {
	return l.ItemID + "|" + l.Customization.Signature()
}

// Clone returns a deep copy of the line.
func (l CartLine) Clone() CartLine {
	l.Customization = l.Customization.Clone()
	return l
}

// ScheduledPickup is the pre-order pickup slot. Date and time are kept as the
// platform's wire strings; the API validates them against opening hours.
type ScheduledPickup struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Cart is the ordered collection of lines for one user, plus the optional
// pre-order pickup slot. Revision increases on every mutation and guards
// against stale server-cart fetches overwriting newer local edits.
type Cart struct {
	Lines           []CartLine       `json:"lines"`
	ScheduledPickup *ScheduledPickup `json:"scheduled_pickup,omitempty"`
	Revision        uint64           `json:"revision"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Total recomputes the cart total from its lines. Never cached.
func (c *Cart) Total() float64 {
	total := 0.0
	for _, l := range c.Lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Clone returns a deep copy safe to hand outside the store.
func (c *Cart) Clone() Cart {
	out := Cart{
		Revision:  c.Revision,
		UpdatedAt: c.UpdatedAt,
	}
	if c.ScheduledPickup != nil {
		p := *c.ScheduledPickup
		out.ScheduledPickup = &p
	}
	if len(c.Lines) > 0 {
		out.Lines = make([]CartLine, len(c.Lines))
		for i, l := range c.Lines {
			out.Lines[i] = l.Clone()
		}
	}
	return out
}
