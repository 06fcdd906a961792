package theme

import (
	"context"
	"errors"

	"licensestore/internal/domain"
)

const (
	themeKey    = "theme"
	settingsKey = "settings"
)

// DefaultTheme is applied until a client picks another one.
const DefaultTheme = "Cyber Purple"

// catalog is the fixed set of color schemes the customizer offers.
var catalog = []domain.Theme{
	{Name: "Cyber Purple", Primary: "#6a11cb", Secondary: "#2575fc", Accent: "#00d2ff"},
	{Name: "Neon Red", Primary: "#ff416c", Secondary: "#ff4b2b", Accent: "#ffa62e"},
	{Name: "Toxic Green", Primary: "#11998e", Secondary: "#38ef7d", Accent: "#c6ff00"},
	{Name: "Deep Ocean", Primary: "#13547a", Secondary: "#80d0c7", Accent: "#b2fefa"},
	{Name: "Sunset Gold", Primary: "#f2994a", Secondary: "#f2c94c", Accent: "#ffe29f"},
	{Name: "Midnight", Primary: "#232526", Secondary: "#414345", Accent: "#8e9eab"},
	{Name: "Royal Blue", Primary: "#1a2a6c", Secondary: "#2a52be", Accent: "#4e9af1"},
	{Name: "Magenta Pulse", Primary: "#b24592", Secondary: "#f15f79", Accent: "#ff9ad5"},
}

// Service persists the active theme and the settings blob through the
// key-value state store.
type Service struct {
	state stateRepo
}

type stateRepo interface {
	Get(ctx context.Context, key string, out interface{}) error
	Put(ctx context.Context, key string, value interface{}) error
}

func New(state stateRepo) *Service {
	return &Service{state: state}
}

// Themes lists the catalog.
func (s *Service) Themes() []domain.Theme {
	out := make([]domain.Theme, len(catalog))
	copy(out, catalog)
	return out
}

// Active returns the applied theme, falling back to the default.
func (s *Service) Active(ctx context.Context) (*domain.Theme, error) {
	var name string
	if err := s.state.Get(ctx, themeKey, &name); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			name = DefaultTheme
		} else {
			return nil, err
		}
	}
	if t := lookup(name); t != nil {
		return t, nil
	}
	return lookup(DefaultTheme), nil
}

// Apply activates a catalog theme by name.
func (s *Service) Apply(ctx context.Context, name string) (*domain.Theme, error) {
	t := lookup(name)
	if t == nil {
		return nil, domain.ErrThemeNotFound
	}
	if err := s.state.Put(ctx, themeKey, t.Name); err != nil {
		return nil, err
	}
	return t, nil
}

// Settings returns the stored preferences blob or the defaults.
func (s *Service) Settings(ctx context.Context) (domain.Settings, error) {
	var settings domain.Settings
	if err := s.state.Get(ctx, settingsKey, &settings); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.DefaultSettings(), nil
		}
		return domain.Settings{}, err
	}
	return settings, nil
}

// SaveSettings replaces the preferences blob.
func (s *Service) SaveSettings(ctx context.Context, settings domain.Settings) error {
	return s.state.Put(ctx, settingsKey, settings)
}

func lookup(name string) *domain.Theme {
	for _, t := range catalog {
		if t.Name == name {
			out := t
			return &out
		}
	}
	return nil
}
