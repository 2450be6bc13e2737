package domain

import "testing"

func dosaItem() *MenuItem {
	return &MenuItem{
		ID:          "42",
		Name:        "Masala Dosa",
		Price:       60,
		IsAvailable: true,
		CustomizationOptions: &CustomizationOptions{
			Sizes: []SizeOption{
				{Name: "regular", Price: 0},
				{Name: "large", Price: 10},
			},
			Additions: []AdditionOption{
				{Name: "Extra Chutney", Price: 10},
				{Name: "Extra Sambar", Price: 15},
			},
			Removals: []string{"Onion"},
		},
	}
}

func TestUnitPrice(t *testing.T) {
	item := dosaItem()

	t.Run("base price without customization", func(t *testing.T) {
		if got := UnitPrice(item, "", nil); got != 60 {
			t.Fatalf("expected 60, got %v", got)
		}
	})

	t.Run("size and addition deltas stack", func(t *testing.T) {
		if got := UnitPrice(item, "large", []string{"Extra Chutney"}); got != 80 {
			t.Fatalf("expected 80, got %v", got)
		}
	})

	t.Run("unknown labels are ignored", func(t *testing.T) {
		if got := UnitPrice(item, "jumbo", []string{"Gold Leaf"}); got != 60 {
			t.Fatalf("expected 60, got %v", got)
		}
	})

	t.Run("removals never change the price", func(t *testing.T) {
		plain := UnitPrice(item, "large", []string{"Extra Chutney"})
		if plain != 80 {
			t.Fatalf("expected 80, got %v", plain)
		}
	})

	t.Run("item without options keeps base price", func(t *testing.T) {
		tea := &MenuItem{Name: "Chai", Price: 15}
		if got := UnitPrice(tea, "large", []string{"Extra Chutney"}); got != 15 {
			t.Fatalf("expected 15, got %v", got)
		}
	})
}

func TestResolvePrice(t *testing.T) {
	item := dosaItem()

	t.Run("quantity multiplies the configured unit price", func(t *testing.T) {
		if got := ResolvePrice(item, "large", []string{"Extra Chutney"}, 2); got != 160 {
			t.Fatalf("expected 160, got %v", got)
		}
	})

	t.Run("zero quantity resolves to zero", func(t *testing.T) {
		if got := ResolvePrice(item, "", nil, 0); got != 0 {
			t.Fatalf("expected 0, got %v", got)
		}
	})

	t.Run("negative quantity resolves to zero", func(t *testing.T) {
		if got := ResolvePrice(item, "", nil, -3); got != 0 {
			t.Fatalf("expected 0, got %v", got)
		}
	})
}
