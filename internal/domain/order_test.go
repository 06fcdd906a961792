package domain

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewOrderIDFormat(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	id := NewOrderID(now)

	re := regexp.MustCompile(`^ORD-1700000000000-[A-Z0-9]{9}$`)
	if !re.MatchString(id) {
		t.Fatalf("unexpected order id %q", id)
	}
}

func TestNewOrderIDUnique(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewOrderID(now)
		if seen[id] {
			t.Fatalf("duplicate order id %q", id)
		}
		seen[id] = true
	}
}

func TestPersistedOrderJSON(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	uid := "user-1"
	order := PersistedOrder{
		OrderDraft: OrderDraft{
			ID:      "ORD-1-AAAAAAAAA",
			OwnerID: "session:secret",
			Lines: []OrderLine{
				{ProductID: "p1", ProductName: "Profiler Pro", UnitPrice: decimal.RequireFromString("25.49"), Quantity: 2},
			},
			Subtotal:      decimal.RequireFromString("50.98"),
			Tax:           decimal.Zero,
			Total:         decimal.RequireFromString("50.98"),
			Currency:      "USD",
			CreatedAt:     now,
			Status:        OrderCompleted,
			PaymentMethod: MethodPayPal,
			CaptureID:     "CAP-1",
		},
		Licenses: []LicenseRecord{
			{LicenseKey: "CHT-AAAA-BBBB-CCCC-DDDD", ProductID: "p1", Status: LicenseActive},
		},
		UserID: &uid,
	}

	raw, err := json.Marshal(order)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(raw)
	if strings.Contains(s, "secret") {
		t.Fatalf("owner id leaked into JSON: %s", s)
	}
	for _, want := range []string{`"items"`, `"licenses"`, `"paymentId":"CAP-1"`, `"userId":"user-1"`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON missing %s: %s", want, s)
		}
	}

	var back PersistedOrder
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.ID != order.ID || len(back.Licenses) != 1 || back.UserID == nil || *back.UserID != uid {
		t.Fatalf("round trip mismatch: %+v", back)
	}
	if !back.Total.Equal(order.Total) {
		t.Fatalf("total mismatch: %s vs %s", back.Total, order.Total)
	}
}

func TestOrderLineTotal(t *testing.T) {
	line := OrderLine{UnitPrice: decimal.RequireFromString("19.99"), Quantity: 3}
	if got := line.Total(); !got.Equal(decimal.RequireFromString("59.97")) {
		t.Fatalf("total = %s, want 59.97", got)
	}
}
