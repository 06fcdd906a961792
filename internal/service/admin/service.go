package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"io"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"licensestore/internal/domain"
	adminrepo "licensestore/internal/repository/admin"
	"licensestore/internal/repository/order"
)

// ErrBadAccessCode rejects admin logins with an unknown code.
var ErrBadAccessCode = errors.New("invalid access code")

// ErrSessionExpired rejects stale or timed-out admin sessions.
var ErrSessionExpired = errors.New("admin session expired")

// inactivityTimeout logs an idle admin out before the session TTL runs out.
const inactivityTimeout = 30 * time.Minute

// Dashboard aggregates the numbers shown on the admin landing view.
type Dashboard struct {
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	TodayRevenue   decimal.Decimal `json:"todayRevenue"`
	OrderCount     int             `json:"orderCount"`
	UserCount      int             `json:"userCount"`
	LicenseCount   int             `json:"licenseCount"`
	ProductCount   int             `json:"productCount"`
	RecentActivity []Activity      `json:"recentActivity"`
}

// Activity is one recent order, newest first.
type Activity struct {
	OrderID   string          `json:"orderId"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

const recentActivityLimit = 10

// Service backs the admin panel: sessions, aggregates, license revocation
// and the action log.
type Service struct {
	orders    order.Repository
	sessions  adminrepo.Repository
	users     userCounter
	products  productCounter
	checkout  manualSettler
	codes     []string
	ttl       time.Duration
	logger    *log.Logger
	now       func() time.Time
}

type userCounter interface {
	Count(ctx context.Context) (int, error)
}

type productCounter interface {
	Count(ctx context.Context) (int, error)
}

type manualSettler interface {
	CompleteManual(ctx context.Context, draftID string, userID *string) (*domain.PersistedOrder, error)
}

func New(orders order.Repository, sessions adminrepo.Repository, users userCounter, products productCounter, checkout manualSettler, codes []string, ttl time.Duration, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{
		orders:   orders,
		sessions: sessions,
		users:    users,
		products: products,
		checkout: checkout,
		codes:    codes,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Login exchanges a configured access code for a session token. Codes are
// compared in constant time.
func (s *Service) Login(ctx context.Context, code string) (string, error) {
	ok := false
	for _, c := range s.codes {
		if subtle.ConstantTimeCompare([]byte(c), []byte(code)) == 1 {
			ok = true
		}
	}
	if !ok {
		s.logger.Printf("admin: rejected login attempt")
		return "", ErrBadAccessCode
	}

	var buf [24]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	tok := base64.RawURLEncoding.EncodeToString(buf[:])
	now := s.now()
	err := s.sessions.CreateSession(ctx, adminrepo.Session{
		Token:        tok,
		ExpiresAt:    now.Add(s.ttl),
		LastActiveAt: now,
	})
	if err != nil {
		return "", err
	}
	s.log(ctx, "admin_login", nil)
	return tok, nil
}

// Validate checks a session token and refreshes its activity stamp.
func (s *Service) Validate(ctx context.Context, tok string) error {
	session, err := s.sessions.GetSession(ctx, tok)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrSessionExpired
		}
		return err
	}
	now := s.now()
	if now.After(session.ExpiresAt) || now.Sub(session.LastActiveAt) > inactivityTimeout {
		_ = s.sessions.DeleteSession(ctx, tok)
		return ErrSessionExpired
	}
	return s.sessions.TouchSession(ctx, tok, now)
}

// Logout deletes the session.
func (s *Service) Logout(ctx context.Context, tok string) error {
	s.log(ctx, "admin_logout", nil)
	return s.sessions.DeleteSession(ctx, tok)
}

// Dashboard walks the order store oldest first and folds the aggregates.
// Revenue counts completed orders only.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	it, err := s.orders.All(ctx)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	d := &Dashboard{
		TotalRevenue: decimal.Zero,
		TodayRevenue: decimal.Zero,
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	var recent []Activity
	for {
		o, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		d.OrderCount++
		if o.Status == domain.OrderCompleted {
			d.TotalRevenue = d.TotalRevenue.Add(o.Total)
			if !o.CreatedAt.UTC().Before(today) {
				d.TodayRevenue = d.TodayRevenue.Add(o.Total)
			}
		}
		recent = append(recent, Activity{
			OrderID:   o.ID,
			Total:     o.Total,
			Status:    o.Status,
			CreatedAt: o.CreatedAt,
		})
	}

	// Newest first, capped.
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	if len(recent) > recentActivityLimit {
		recent = recent[:recentActivityLimit]
	}
	d.RecentActivity = recent

	if d.UserCount, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if d.LicenseCount, err = s.orders.LicenseCount(ctx); err != nil {
		return nil, err
	}
	if d.ProductCount, err = s.products.Count(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// Orders lists every persisted order oldest first.
func (s *Service) Orders(ctx context.Context) ([]domain.PersistedOrder, error) {
	it, err := s.orders.All(ctx)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []domain.PersistedOrder
	for {
		o, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, *o)
	}
}

// RevokeLicense deactivates a key. Revocation is terminal.
func (s *Service) RevokeLicense(ctx context.Context, key string) error {
	if err := s.orders.SetLicenseStatus(ctx, key, domain.LicenseRevoked); err != nil {
		return err
	}
	s.log(ctx, "license_revoked", map[string]interface{}{"licenseKey": key})
	return nil
}

// MarkDelivered flips the only mutable order flag.
func (s *Service) MarkDelivered(ctx context.Context, orderID string) error {
	if err := s.orders.MarkDelivered(ctx, orderID); err != nil {
		return err
	}
	s.log(ctx, "order_delivered", map[string]interface{}{"orderId": orderID})
	return nil
}

// SettleCrypto confirms an off-band transfer and completes the draft.
func (s *Service) SettleCrypto(ctx context.Context, draftID string) (*domain.PersistedOrder, error) {
	o, err := s.checkout.CompleteManual(ctx, draftID, nil)
	if err != nil {
		return nil, err
	}
	s.log(ctx, "crypto_settled", map[string]interface{}{"orderId": o.ID})
	return o, nil
}

// Logs returns the action log, newest first.
func (s *Service) Logs(ctx context.Context, limit int) ([]adminrepo.LogEntry, error) {
	return s.sessions.ListLogs(ctx, limit)
}

func (s *Service) log(ctx context.Context, action string, details map[string]interface{}) {
	if err := s.sessions.AppendLog(ctx, action, details); err != nil {
		s.logger.Printf("admin: append log %s: %v", action, err)
	}
}
