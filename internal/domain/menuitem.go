package domain

// SizeOption is a mutually exclusive size choice. Price is the delta added to
// the item's base price when the size is selected.
type SizeOption struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// AdditionOption is an independently selectable extra with a non-negative
// price delta.
type AdditionOption struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// CustomizationOptions declares what a menu item can be customized with.
// Removals carry no price effect; they are informational for the vendor.
type CustomizationOptions struct {
	Sizes     []SizeOption     `json:"sizes,omitempty"`
	Additions []AdditionOption `json:"additions,omitempty"`
	Removals  []string         `json:"removals,omitempty"`
}

// MenuItem is read-only catalog data sourced from the platform API.
type MenuItem struct {
	ID                   string
	CanteenID            string
	CanteenName          string
	Name                 string
	Description          string
	Price                float64
	Category             string
	Tags                 []string
	Rating               float64
	RatingCount          int
	IsAvailable          bool
	IsPopular            bool
	PreparationTime      int // minutes
	CustomizationOptions *CustomizationOptions
}

// NeedsCustomization reports whether the item declares any customization
// options. Items without options go straight to the cart.
func (m *MenuItem) NeedsCustomization() bool {
	opts := m.CustomizationOptions
	if opts == nil {
		return false
	}
	return len(opts.Sizes) > 0 || len(opts.Additions) > 0 || len(opts.Removals) > 0
}
