package domain

// UnitPrice returns the effective price of a single unit of the item with the
// given size and addition labels applied. A label that matches no declared
// option is ignored.
func UnitPrice(item *MenuItem, size string, additions []string) float64 {
	price := item.Price
	opts := item.CustomizationOptions
	if opts == nil {
		return price
	}

	if size != "" {
		for _, s := range opts.Sizes {
			if s.Name == size {
				price += s.Price
				break
			}
		}
	}

	for _, name := range additions {
		for _, a := range opts.Additions {
			if a.Name == name {
				price += a.Price
				break
			}
		}
	}

	return price
}

// ResolvePrice returns the total price for a configuration of the item at the
// given quantity: quantity x (base price + size delta + sum of addition
// deltas). Pure and cheap; the UI recomputes it on every selection change.
func ResolvePrice(item *MenuItem, size string, additions []string, quantity int) float64 {
	if quantity < 1 {
		return 0
	}
	return float64(quantity) * UnitPrice(item, size, additions)
}
