package domain

import "time"

// License statuses.
const (
	LicenseActive  = "active"
	LicenseRevoked = "revoked"
	LicenseExpired = "expired"
)

// LicenseRecord is an unlock token issued per distinct product line of a
// completed order. Keys are unique store-wide.
type LicenseRecord struct {
	LicenseKey     string    `json:"licenseKey"`
	ProductID      string    `json:"productId"`
	ProductName    string    `json:"productName"`
	HardwareLocked bool      `json:"hardwareLocked"`
	IssuedAt       time.Time `json:"issuedAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
	Status         string    `json:"status"`
}

// EffectiveStatus reports expired for active licenses past their window
// without mutating the stored record.
func (l LicenseRecord) EffectiveStatus(now time.Time) string {
	if l.Status == LicenseActive && now.After(l.ExpiresAt) {
		return LicenseExpired
	}
	return l.Status
}
