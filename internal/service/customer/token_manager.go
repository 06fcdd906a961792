package customer

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"licensestore/internal/domain"
	tokenrepo "licensestore/internal/repository/token"
)

type tokenManager struct {
	repo tokenrepo.Repository
}

func newTokenManager(repo tokenrepo.Repository) *tokenManager {
	return &tokenManager{repo: repo}
}

func (m *tokenManager) Issue(ctx context.Context, customerID, kind string, ttl time.Duration) (string, error) {
	expiresAt := time.Now().Add(ttl)
	for i := 0; i < 5; i++ {
		tok, err := randomToken()
		if err != nil {
			return "", err
		}
		err = m.repo.Create(ctx, tokenrepo.Token{
			Token:      tok,
			CustomerID: customerID,
			Kind:       kind,
			ExpiresAt:  expiresAt,
		})
		if err == nil {
			return tok, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return "", err
		}
	}
	return "", errors.New("token collision retries exhausted")
}

func (m *tokenManager) Validate(ctx context.Context, tok string) (string, bool) {
	stored, err := m.repo.Get(ctx, tok)
	if err != nil {
		return "", false
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = m.repo.Delete(ctx, tok)
		return "", false
	}
	return stored.CustomerID, true
}

func (m *tokenManager) Revoke(ctx context.Context, tok string) error {
	return m.repo.Delete(ctx, tok)
}

func randomToken() (string, error) {
	var buf [24]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf[:]), nil
}
