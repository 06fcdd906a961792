package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEffectiveUnitPrice(t *testing.T) {
	cases := []struct {
		name     string
		price    string
		discount int
		want     string
	}{
		{"no discount", "24.99", 0, "24.99"},
		{"fifteen percent", "89.99", 15, "76.49"},
		{"rounds half up", "19.99", 25, "14.99"},
		{"full discount", "10.00", 100, "0.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Product{Price: decimal.RequireFromString(tc.price), DiscountPercent: tc.discount}
			got := p.EffectiveUnitPrice()
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("effective price = %s, want %s", got, tc.want)
			}
		})
	}
}
