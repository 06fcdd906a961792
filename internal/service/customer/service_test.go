package customer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"licensestore/internal/domain"
	custrepo "licensestore/internal/repository/customer"
	tokenrepo "licensestore/internal/repository/token"
)

type memCustomers struct {
	nextID  int
	byEmail map[string]*custrepo.Customer
}

func newMemCustomers() *memCustomers {
	return &memCustomers{byEmail: map[string]*custrepo.Customer{}}
}

func (m *memCustomers) Create(ctx context.Context, c custrepo.Customer) (*custrepo.Customer, error) {
	if _, ok := m.byEmail[c.Email]; ok {
		return nil, domain.ErrAlreadyExists
	}
	m.nextID++
	c.ID = fmt.Sprintf("cust-%d", m.nextID)
	c.CreatedAt = time.Now()
	m.byEmail[c.Email] = &c
	out := c
	return &out, nil
}

func (m *memCustomers) GetByEmail(ctx context.Context, email string) (*custrepo.Customer, error) {
	c, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (m *memCustomers) GetByID(ctx context.Context, id string) (*custrepo.Customer, error) {
	for _, c := range m.byEmail {
		if c.ID == id {
			out := *c
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memCustomers) Count(ctx context.Context) (int, error) {
	return len(m.byEmail), nil
}

type memTokens struct {
	tokens map[string]tokenrepo.Token
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: map[string]tokenrepo.Token{}}
}

func (m *memTokens) Create(ctx context.Context, t tokenrepo.Token) error {
	if _, ok := m.tokens[t.Token]; ok {
		return domain.ErrAlreadyExists
	}
	m.tokens[t.Token] = t
	return nil
}

func (m *memTokens) Get(ctx context.Context, tok string) (*tokenrepo.Token, error) {
	t, ok := m.tokens[tok]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (m *memTokens) Delete(ctx context.Context, tok string) error {
	if _, ok := m.tokens[tok]; !ok {
		return domain.ErrNotFound
	}
	delete(m.tokens, tok)
	return nil
}

func newTestService() (*Service, *memCustomers, *memTokens) {
	customers := newMemCustomers()
	tokens := newMemTokens()
	return New(customers, tokens), customers, tokens
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "not-an-email", "Sup3rSecret", ""); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("err = %v, want ErrInvalidEmail", err)
	}
	if _, err := svc.Register(ctx, "a@example.com", "short1A", ""); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("err = %v, want ErrWeakPassword", err)
	}
	if _, err := svc.Register(ctx, "a@example.com", "alllowercase1", ""); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("err = %v, want ErrWeakPassword (no uppercase)", err)
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, _, _ := newTestService()

	account, err := svc.Register(context.Background(), "  User@Example.COM ", "Sup3rSecret", "User")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if account.Email != "user@example.com" {
		t.Fatalf("email = %q, want lowercase", account.Email)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@example.com", "Sup3rSecret", ""); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, "A@example.com", "Sup3rSecret", ""); !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("err = %v, want ErrEmailInUse", err)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@example.com", "Sup3rSecret", "A"); err != nil {
		t.Fatalf("register: %v", err)
	}

	account, token, err := svc.Login(ctx, "a@example.com", "Sup3rSecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatal("empty access token")
	}

	got, err := svc.LookupByToken(ctx, token)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.UID != account.UID {
		t.Fatalf("uid = %q, want %q", got.UID, account.UID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@example.com", "Sup3rSecret", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Login(ctx, "a@example.com", "WrongPass1"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("err = %v, want ErrWrongPassword", err)
	}
	if _, _, err := svc.Login(ctx, "ghost@example.com", "Sup3rSecret"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, customers, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@example.com", "Sup3rSecret", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	customers.byEmail["a@example.com"].Disabled = true

	if _, _, err := svc.Login(ctx, "a@example.com", "Sup3rSecret"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("err = %v, want ErrAccountDisabled", err)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@example.com", "Sup3rSecret", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, token, err := svc.Login(ctx, "a@example.com", "Sup3rSecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.LookupByToken(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
	// Logging out twice is not an error.
	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	svc, _, tokens := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@example.com", "Sup3rSecret", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, token, err := svc.Login(ctx, "a@example.com", "Sup3rSecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	stored := tokens.tokens[token]
	stored.ExpiresAt = time.Now().Add(-time.Minute)
	tokens.tokens[token] = stored

	if _, err := svc.LookupByToken(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}
