package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"licensestore/internal/domain"
	adminrepo "licensestore/internal/repository/admin"
	"licensestore/internal/repository/order"
)

type memOrderStore struct {
	orders []domain.PersistedOrder
}

func (m *memOrderStore) Append(ctx context.Context, o domain.PersistedOrder) error {
	m.orders = append(m.orders, o)
	return nil
}

func (m *memOrderStore) FindByID(ctx context.Context, id string) (*domain.PersistedOrder, error) {
	for i := range m.orders {
		if m.orders[i].ID == id {
			out := m.orders[i]
			return &out, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

type sliceIterator struct {
	orders []domain.PersistedOrder
	pos    int
}

func (it *sliceIterator) Next(ctx context.Context) (*domain.PersistedOrder, bool, error) {
	if it.pos >= len(it.orders) {
		return nil, false, nil
	}
	o := it.orders[it.pos]
	it.pos++
	return &o, true, nil
}

func (it *sliceIterator) Close() {}

func (m *memOrderStore) All(ctx context.Context) (order.Iterator, error) {
	return &sliceIterator{orders: append([]domain.PersistedOrder(nil), m.orders...)}, nil
}

func (m *memOrderStore) Count(ctx context.Context) (int, error) {
	return len(m.orders), nil
}

func (m *memOrderStore) KeyExists(ctx context.Context, key string) (bool, error) {
	for _, o := range m.orders {
		for _, l := range o.Licenses {
			if l.LicenseKey == key {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *memOrderStore) LicenseCount(ctx context.Context) (int, error) {
	n := 0
	for _, o := range m.orders {
		n += len(o.Licenses)
	}
	return n, nil
}

func (m *memOrderStore) SetLicenseStatus(ctx context.Context, key, status string) error {
	for i := range m.orders {
		for j := range m.orders[i].Licenses {
			if m.orders[i].Licenses[j].LicenseKey == key {
				m.orders[i].Licenses[j].Status = status
				return nil
			}
		}
	}
	return domain.ErrLicenseNotFound
}

func (m *memOrderStore) MarkDelivered(ctx context.Context, id string) error {
	for i := range m.orders {
		if m.orders[i].ID == id {
			m.orders[i].Delivered = true
			return nil
		}
	}
	return domain.ErrOrderNotFound
}

type memSessions struct {
	sessions map[string]adminrepo.Session
	logs     []adminrepo.LogEntry
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: map[string]adminrepo.Session{}}
}

func (m *memSessions) CreateSession(ctx context.Context, s adminrepo.Session) error {
	m.sessions[s.Token] = s
	return nil
}

func (m *memSessions) GetSession(ctx context.Context, tok string) (*adminrepo.Session, error) {
	s, ok := m.sessions[tok]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *memSessions) TouchSession(ctx context.Context, tok string, at time.Time) error {
	s, ok := m.sessions[tok]
	if !ok {
		return domain.ErrNotFound
	}
	s.LastActiveAt = at
	m.sessions[tok] = s
	return nil
}

func (m *memSessions) DeleteSession(ctx context.Context, tok string) error {
	delete(m.sessions, tok)
	return nil
}

func (m *memSessions) AppendLog(ctx context.Context, action string, details map[string]interface{}) error {
	m.logs = append(m.logs, adminrepo.LogEntry{ID: int64(len(m.logs) + 1), Action: action, Details: details})
	return nil
}

func (m *memSessions) ListLogs(ctx context.Context, limit int) ([]adminrepo.LogEntry, error) {
	out := append([]adminrepo.LogEntry(nil), m.logs...)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memSessions) ClearLogs(ctx context.Context) error {
	m.logs = nil
	return nil
}

type fixedCount int

func (c fixedCount) Count(ctx context.Context) (int, error) { return int(c), nil }

type stubSettler struct {
	err error
}

func (s *stubSettler) CompleteManual(ctx context.Context, draftID string, userID *string) (*domain.PersistedOrder, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.PersistedOrder{OrderDraft: domain.OrderDraft{ID: draftID, Status: domain.OrderCompleted}}, nil
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func completedOrder(id string, total string, createdAt time.Time) domain.PersistedOrder {
	return domain.PersistedOrder{
		OrderDraft: domain.OrderDraft{
			ID:        id,
			Total:     money(total),
			Status:    domain.OrderCompleted,
			CreatedAt: createdAt,
		},
		Licenses: []domain.LicenseRecord{{LicenseKey: "CHT-" + id, Status: domain.LicenseActive}},
	}
}

func newTestService(orders *memOrderStore, sessions *memSessions) *Service {
	return New(orders, sessions, fixedCount(7), fixedCount(8), &stubSettler{}, []string{"open-sesame"}, time.Hour, nil)
}

func TestLoginAccessCodes(t *testing.T) {
	svc := newTestService(&memOrderStore{}, newMemSessions())
	ctx := context.Background()

	if _, err := svc.Login(ctx, "wrong"); !errors.Is(err, ErrBadAccessCode) {
		t.Fatalf("err = %v, want ErrBadAccessCode", err)
	}

	tok, err := svc.Login(ctx, "open-sesame")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Validate(ctx, tok); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateExpiredSession(t *testing.T) {
	sessions := newMemSessions()
	svc := newTestService(&memOrderStore{}, sessions)
	ctx := context.Background()

	tok, err := svc.Login(ctx, "open-sesame")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if err := svc.Validate(ctx, tok); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if _, ok := sessions.sessions[tok]; ok {
		t.Fatal("expired session not deleted")
	}
}

func TestValidateInactivityTimeout(t *testing.T) {
	svc := newTestService(&memOrderStore{}, newMemSessions())
	svc.ttl = 24 * time.Hour
	ctx := context.Background()

	tok, err := svc.Login(ctx, "open-sesame")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(inactivityTimeout + time.Minute) }
	if err := svc.Validate(ctx, tok); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
}

func TestValidateUnknownToken(t *testing.T) {
	svc := newTestService(&memOrderStore{}, newMemSessions())
	if err := svc.Validate(context.Background(), "ghost"); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
}

func TestDashboardAggregates(t *testing.T) {
	now := time.Now().UTC()
	orders := &memOrderStore{orders: []domain.PersistedOrder{
		completedOrder("ORD-1", "10.00", now.Add(-48*time.Hour)),
		completedOrder("ORD-2", "20.00", now),
		{
			OrderDraft: domain.OrderDraft{ID: "ORD-3", Total: money("99.00"), Status: domain.OrderCancelled, CreatedAt: now},
		},
	}}
	svc := newTestService(orders, newMemSessions())
	svc.now = func() time.Time { return now }

	d, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if !d.TotalRevenue.Equal(money("30.00")) {
		t.Fatalf("total revenue = %s, want 30.00", d.TotalRevenue)
	}
	if !d.TodayRevenue.Equal(money("20.00")) {
		t.Fatalf("today revenue = %s, want 20.00", d.TodayRevenue)
	}
	if d.OrderCount != 3 {
		t.Fatalf("order count = %d, want 3", d.OrderCount)
	}
	if d.UserCount != 7 || d.ProductCount != 8 {
		t.Fatalf("counts = %d users %d products", d.UserCount, d.ProductCount)
	}
	if d.LicenseCount != 2 {
		t.Fatalf("license count = %d, want 2", d.LicenseCount)
	}
	if len(d.RecentActivity) != 3 || d.RecentActivity[0].OrderID != "ORD-3" {
		t.Fatalf("recent activity wrong: %+v", d.RecentActivity)
	}
}

func TestRevokeLicenseLogsAction(t *testing.T) {
	now := time.Now().UTC()
	orders := &memOrderStore{orders: []domain.PersistedOrder{completedOrder("ORD-1", "10.00", now)}}
	sessions := newMemSessions()
	svc := newTestService(orders, sessions)

	if err := svc.RevokeLicense(context.Background(), "CHT-ORD-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if got := orders.orders[0].Licenses[0].Status; got != domain.LicenseRevoked {
		t.Fatalf("status = %s, want revoked", got)
	}
	if len(sessions.logs) != 1 || sessions.logs[0].Action != "license_revoked" {
		t.Fatalf("logs = %+v", sessions.logs)
	}

	if err := svc.RevokeLicense(context.Background(), "ghost"); !errors.Is(err, domain.ErrLicenseNotFound) {
		t.Fatalf("err = %v, want ErrLicenseNotFound", err)
	}
}

func TestMarkDelivered(t *testing.T) {
	now := time.Now().UTC()
	orders := &memOrderStore{orders: []domain.PersistedOrder{completedOrder("ORD-1", "10.00", now)}}
	svc := newTestService(orders, newMemSessions())

	if err := svc.MarkDelivered(context.Background(), "ORD-1"); err != nil {
		t.Fatalf("mark delivered: %v", err)
	}
	if !orders.orders[0].Delivered {
		t.Fatal("delivered flag not set")
	}
	if err := svc.MarkDelivered(context.Background(), "ghost"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}

func TestSettleCrypto(t *testing.T) {
	sessions := newMemSessions()
	svc := newTestService(&memOrderStore{}, sessions)

	o, err := svc.SettleCrypto(context.Background(), "ORD-9")
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if o.ID != "ORD-9" || o.Status != domain.OrderCompleted {
		t.Fatalf("order: %+v", o)
	}
	if len(sessions.logs) != 1 || sessions.logs[0].Action != "crypto_settled" {
		t.Fatalf("logs = %+v", sessions.logs)
	}
}
