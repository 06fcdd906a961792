package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"-"`
	Currency  string     `json:"currency"`
	CreatedAt time.Time  `json:"createdAt"`
	Lines     []CartLine `json:"lineItems"`
}

// CartLine freezes the discounted unit price at add time. A line with
// quantity 0 is removed, never stored.
type CartLine struct {
	ID                   string          `json:"id"`
	CartID               string          `json:"-"`
	ProductID            string          `json:"productId"`
	ProductName          string          `json:"productName"`
	EffectiveUnitPrice   decimal.Decimal `json:"effectiveUnitPrice"`
	Quantity             int             `json:"quantity"`
	RequiresHardwareLock bool            `json:"requiresHardwareLock"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// Total is unit price times quantity, rounded to 2 decimal places half up.
func (l CartLine) Total() decimal.Decimal {
	return l.EffectiveUnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}
