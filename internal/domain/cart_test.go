package domain

import "testing"

func TestCustomizationSignature(t *testing.T) {
	t.Run("order of additions and removals does not matter", func(t *testing.T) {
		a := &Customization{Size: "large", Additions: []string{"Extra Chutney", "Extra Sambar"}, Removals: []string{"Onion", "Chili"}}
		b := &Customization{Size: "large", Additions: []string{"Extra Sambar", "Extra Chutney"}, Removals: []string{"Chili", "Onion"}}

		if a.Signature() != b.Signature() {
			t.Fatalf("signatures differ: %q vs %q", a.Signature(), b.Signature())
		}
	})

	t.Run("different size yields a different signature", func(t *testing.T) {
		a := &Customization{Size: "large"}
		b := &Customization{Size: "regular"}
		if a.Signature() == b.Signature() {
			t.Fatal("expected distinct signatures")
		}
	})

	t.Run("different notes yield a different signature", func(t *testing.T) {
		a := &Customization{Notes: "less spicy"}
		b := &Customization{Notes: "extra spicy"}
		if a.Signature() == b.Signature() {
			t.Fatal("expected distinct signatures")
		}
	})

	t.Run("nil customization has a stable empty signature", func(t *testing.T) {
		var c *Customization
		if c.Signature() != "" {
			t.Fatalf("expected empty signature, got %q", c.Signature())
		}
	})
}

func TestCartLineMergeKey(t *testing.T) {
	base := CartLine{ItemID: "42", Customization: &Customization{Size: "large"}}

	t.Run("same item and customization share a key", func(t *testing.T) {
		other := CartLine{ItemID: "42", Customization: &Customization{Size: "large"}}
		if base.MergeKey() != other.MergeKey() {
			t.Fatal("expected matching merge keys")
		}
	})

	t.Run("customization difference splits the key", func(t *testing.T) {
		other := CartLine{ItemID: "42", Customization: &Customization{Size: "regular"}}
		if base.MergeKey() == other.MergeKey() {
			t.Fatal("expected distinct merge keys")
		}
	})

	t.Run("nil customization still keys on the item", func(t *testing.T) {
		a := CartLine{ItemID: "42"}
		b := CartLine{ItemID: "42"}
		if a.MergeKey() != b.MergeKey() {
			t.Fatal("expected matching merge keys")
		}
	})
}

func TestCartTotal(t *testing.T) {
	c := &Cart{Lines: []CartLine{
		{ItemID: "1", UnitPrice: 60, Quantity: 5},
		{ItemID: "2", UnitPrice: 15, Quantity: 2},
	}}

	if got := c.Total(); got != 330 {
		t.Fatalf("expected 330, got %v", got)
	}

	c.Lines[0].Quantity = 1
	if got := c.Total(); got != 90 {
		t.Fatalf("expected recomputed total 90, got %v", got)
	}
}

func TestCartClone(t *testing.T) {
	orig := &Cart{
		Lines: []CartLine{
			{ID: "l1", ItemID: "42", Quantity: 1, Customization: &Customization{Additions: []string{"Extra Chutney"}}},
		},
		ScheduledPickup: &ScheduledPickup{Date: "2026-09-01", Time: "12:30"},
	}

	clone := orig.Clone()
	clone.Lines[0].Quantity = 9
	clone.Lines[0].Customization.Additions[0] = "changed"
	clone.ScheduledPickup.Time = "13:00"

	if orig.Lines[0].Quantity != 1 {
		t.Fatal("clone mutation leaked into original quantity")
	}
	if orig.Lines[0].Customization.Additions[0] != "Extra Chutney" {
		t.Fatal("clone mutation leaked into original customization")
	}
	if orig.ScheduledPickup.Time != "12:30" {
		t.Fatal("clone mutation leaked into original pickup")
	}
}
