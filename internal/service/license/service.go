package license

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"licensestore/internal/domain"
)

const keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// maxAttempts bounds the collision retry loop. With 36^16 possible bodies a
// retry is already astronomically unlikely, but the contract requires the
// store to be consulted rather than assumed.
const maxAttempts = 5

// Service issues license records for completed orders.
type Service struct {
	keys     keyStore
	prefix   string
	validity time.Duration
	now      func() time.Time
}

type keyStore interface {
	KeyExists(ctx context.Context, licenseKey string) (bool, error)
}

func New(keys keyStore, prefix string, validity time.Duration) *Service {
	if prefix == "" {
		prefix = "CHT"
	}
	if validity <= 0 {
		validity = 30 * 24 * time.Hour
	}
	return &Service{keys: keys, prefix: prefix, validity: validity, now: time.Now}
}

// Issue creates one license per distinct product in the draft, in the order
// each product first appears. Quantity does not multiply license count: a
// line of quantity 3 still yields a single key.
func (s *Service) Issue(ctx context.Context, draft domain.OrderDraft) ([]domain.LicenseRecord, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.validity)

	seen := make(map[string]bool, len(draft.Lines))
	var records []domain.LicenseRecord
	for _, line := range draft.Lines {
		if seen[line.ProductID] {
			continue
		}
		seen[line.ProductID] = true

		key, err := s.freshKey(ctx)
		if err != nil {
			return nil, fmt.Errorf("issue license for product %s: %w", line.ProductID, err)
		}
		records = append(records, domain.LicenseRecord{
			LicenseKey:     key,
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			HardwareLocked: line.RequiresHardwareLock,
			IssuedAt:       issuedAt,
			ExpiresAt:      expiresAt,
			Status:         domain.LicenseActive,
		})
	}
	return records, nil
}

// freshKey draws keys until one is unused in the order store.
func (s *Service) freshKey(ctx context.Context) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		key, err := s.generate()
		if err != nil {
			return "", err
		}
		exists, err := s.keys.KeyExists(ctx, key)
		if err != nil {
			return "", err
		}
		if !exists {
			return key, nil
		}
	}
	return "", fmt.Errorf("no unique key after %d attempts", maxAttempts)
}

// generate produces <PREFIX>-XXXX-XXXX-XXXX-XXXX over a 36-symbol alphabet.
func (s *Service) generate() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	var b strings.Builder
	b.WriteString(s.prefix)
	for i, r := range buf {
		if i%4 == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(keyAlphabet[int(r)%len(keyAlphabet)])
	}
	return b.String(), nil
}
