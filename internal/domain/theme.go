package domain

// Theme is a named color scheme offered by the storefront customizer.
type Theme struct {
	Name      string `json:"name"`
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

// Settings is the client preferences blob persisted as one JSON value.
type Settings struct {
	AutoUpdate    bool   `json:"autoUpdate"`
	Notifications bool   `json:"notifications"`
	SoundEffects  bool   `json:"soundEffects"`
	DarkMode      bool   `json:"darkMode"`
	Language      string `json:"language"`
	Currency      string `json:"currency"`
	Timezone      string `json:"timezone"`
}

// DefaultSettings mirrors the storefront defaults before a client saves
// anything.
func DefaultSettings() Settings {
	return Settings{
		AutoUpdate:    true,
		Notifications: true,
		SoundEffects:  false,
		DarkMode:      true,
		Language:      "en",
		Currency:      "USD",
		Timezone:      "UTC",
	}
}
