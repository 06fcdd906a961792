package domain

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Draft statuses. A draft only ever moves pending -> completed or
// pending -> cancelled.
const (
	OrderPending   = "pending"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// Payment methods accepted at checkout.
const (
	MethodNone   = "none"
	MethodPayPal = "paypal"
	MethodCrypto = "crypto"
	MethodCard   = "card"
)

// OrderLine is a by-value snapshot of a cart line. Catalog changes after
// checkout must not alter it.
type OrderLine struct {
	ProductID            string          `json:"productId"`
	ProductName          string          `json:"productName"`
	UnitPrice            decimal.Decimal `json:"unitPrice"`
	Quantity             int             `json:"quantity"`
	RequiresHardwareLock bool            `json:"requiresHardwareLock"`
}

func (l OrderLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

// OrderDraft is an in-progress order. It becomes immutable once the status
// leaves pending.
type OrderDraft struct {
	ID            string          `json:"id"`
	OwnerID       string          `json:"-"`
	Lines         []OrderLine     `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	CreatedAt     time.Time       `json:"createdAt"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	CaptureID     string          `json:"paymentId,omitempty"`
}

// PersistedOrder is the append-only record written after settlement. Only
// the delivered flag and license statuses may change afterwards.
type PersistedOrder struct {
	OrderDraft
	Licenses  []LicenseRecord `json:"licenses"`
	UserID    *string         `json:"userId,omitempty"`
	Delivered bool            `json:"delivered"`
}

const orderIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewOrderID produces ids shaped ORD-<unix-ms>-<RANDOM9>.
func NewOrderID(now time.Time) string {
	var buf [9]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing means the platform is broken; fall back to
		// the timestamp so the id is still unique enough to proceed.
		return fmt.Sprintf("ORD-%d-%09d", now.UnixMilli(), now.Nanosecond())
	}
	for i, b := range buf {
		buf[i] = orderIDAlphabet[int(b)%len(orderIDAlphabet)]
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), string(buf[:]))
}
