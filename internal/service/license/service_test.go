package license

import (
	"context"
	"regexp"
	"testing"
	"time"

	"licensestore/internal/domain"
)

type memKeys struct {
	taken  map[string]bool
	checks int
}

func (m *memKeys) KeyExists(ctx context.Context, key string) (bool, error) {
	m.checks++
	return m.taken[key], nil
}

func draftWith(lines ...domain.OrderLine) domain.OrderDraft {
	return domain.OrderDraft{ID: "ORD-1-AAAAAAAAA", Lines: lines}
}

func TestIssueOnePerDistinctProduct(t *testing.T) {
	svc := New(&memKeys{}, "CHT", 30*24*time.Hour)

	records, err := svc.Issue(context.Background(), draftWith(
		domain.OrderLine{ProductID: "a", ProductName: "A", Quantity: 3},
		domain.OrderLine{ProductID: "b", ProductName: "B", Quantity: 1, RequiresHardwareLock: true},
	))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].ProductID != "a" || records[1].ProductID != "b" {
		t.Fatalf("records out of order: %+v", records)
	}
	if !records[1].HardwareLocked {
		t.Fatalf("hardware lock flag not carried: %+v", records[1])
	}
	for _, r := range records {
		if r.Status != domain.LicenseActive {
			t.Fatalf("status = %s, want active", r.Status)
		}
		if !r.ExpiresAt.Equal(r.IssuedAt.Add(30 * 24 * time.Hour)) {
			t.Fatalf("expiry window wrong: issued %s expires %s", r.IssuedAt, r.ExpiresAt)
		}
	}
}

func TestIssueDeduplicatesRepeatedProducts(t *testing.T) {
	svc := New(&memKeys{}, "CHT", time.Hour)

	records, err := svc.Issue(context.Background(), draftWith(
		domain.OrderLine{ProductID: "a", Quantity: 1},
		domain.OrderLine{ProductID: "b", Quantity: 1},
		domain.OrderLine{ProductID: "a", Quantity: 5},
	))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
}

func TestKeyFormat(t *testing.T) {
	svc := New(&memKeys{}, "CHT", time.Hour)
	re := regexp.MustCompile(`^CHT(-[A-Z0-9]{4}){4}$`)

	records, err := svc.Issue(context.Background(), draftWith(domain.OrderLine{ProductID: "a", Quantity: 1}))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !re.MatchString(records[0].LicenseKey) {
		t.Fatalf("key %q does not match format", records[0].LicenseKey)
	}
}

func TestFreshKeyConsultsStore(t *testing.T) {
	keys := &memKeys{}
	svc := New(keys, "CHT", time.Hour)

	if _, err := svc.Issue(context.Background(), draftWith(domain.OrderLine{ProductID: "a", Quantity: 1})); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if keys.checks == 0 {
		t.Fatal("key store was never consulted")
	}
}

type alwaysTaken struct{}

func (alwaysTaken) KeyExists(ctx context.Context, key string) (bool, error) { return true, nil }

func TestFreshKeyGivesUpAfterRetries(t *testing.T) {
	svc := New(alwaysTaken{}, "CHT", time.Hour)

	if _, err := svc.Issue(context.Background(), draftWith(domain.OrderLine{ProductID: "a", Quantity: 1})); err == nil {
		t.Fatal("expected error when every key collides")
	}
}
