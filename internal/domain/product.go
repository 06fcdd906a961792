package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is immutable reference data loaded into the catalog at seed time.
// Checkout never mutates it; cart lines snapshot the price they saw.
type Product struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Description          string          `json:"description,omitempty"`
	Category             string          `json:"category,omitempty"`
	Price                decimal.Decimal `json:"price"`
	DiscountPercent      int             `json:"discountPercent,omitempty"`
	Stock                int             `json:"stock"`
	RequiresHardwareLock bool            `json:"requiresHardwareLock"`
	CompatibleTargets    []string        `json:"compatibleTargets,omitempty"`
	Badge                string          `json:"badge,omitempty"`
	Icon                 string          `json:"icon,omitempty"`
	UpdateCadence        string          `json:"updateCadence,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// EffectiveUnitPrice applies the product discount and rounds to 2 decimal
// places, half up. This is the price frozen onto a cart line at add time.
func (p Product) EffectiveUnitPrice() decimal.Decimal {
	if p.DiscountPercent <= 0 {
		return p.Price.Round(2)
	}
	factor := decimal.NewFromInt(int64(100 - p.DiscountPercent)).Div(decimal.NewFromInt(100))
	return p.Price.Mul(factor).Round(2)
}
