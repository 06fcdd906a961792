package domain

import (
	"testing"
	"time"
)

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	active := LicenseRecord{Status: LicenseActive, ExpiresAt: now.Add(time.Hour)}
	if got := active.EffectiveStatus(now); got != LicenseActive {
		t.Fatalf("status = %s, want active", got)
	}

	past := LicenseRecord{Status: LicenseActive, ExpiresAt: now.Add(-time.Hour)}
	if got := past.EffectiveStatus(now); got != LicenseExpired {
		t.Fatalf("status = %s, want expired", got)
	}

	// Revocation is terminal even past the expiry window.
	revoked := LicenseRecord{Status: LicenseRevoked, ExpiresAt: now.Add(-time.Hour)}
	if got := revoked.EffectiveStatus(now); got != LicenseRevoked {
		t.Fatalf("status = %s, want revoked", got)
	}
}
