package theme

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"licensestore/internal/domain"
)

type memState struct {
	values map[string]json.RawMessage
}

func newMemState() *memState {
	return &memState{values: map[string]json.RawMessage{}}
}

func (m *memState) Get(ctx context.Context, key string, out interface{}) error {
	raw, ok := m.values[key]
	if !ok {
		return domain.ErrNotFound
	}
	return json.Unmarshal(raw, out)
}

func (m *memState) Put(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	return nil
}

func TestActiveDefaultsToCyberPurple(t *testing.T) {
	svc := New(newMemState())

	theme, err := svc.Active(context.Background())
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if theme.Name != DefaultTheme {
		t.Fatalf("theme = %q, want %q", theme.Name, DefaultTheme)
	}
}

func TestApplyPersistsTheme(t *testing.T) {
	state := newMemState()
	svc := New(state)
	ctx := context.Background()

	applied, err := svc.Apply(ctx, "Midnight")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if applied.Primary == "" {
		t.Fatal("applied theme missing colors")
	}

	active, err := svc.Active(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active.Name != "Midnight" {
		t.Fatalf("active = %q, want Midnight", active.Name)
	}
}

func TestApplyUnknownTheme(t *testing.T) {
	svc := New(newMemState())
	if _, err := svc.Apply(context.Background(), "Hot Pink"); !errors.Is(err, domain.ErrThemeNotFound) {
		t.Fatalf("err = %v, want ErrThemeNotFound", err)
	}
}

func TestActiveFallsBackOnUnknownStoredName(t *testing.T) {
	state := newMemState()
	if err := state.Put(context.Background(), "theme", "Removed Theme"); err != nil {
		t.Fatal(err)
	}
	svc := New(state)

	theme, err := svc.Active(context.Background())
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if theme.Name != DefaultTheme {
		t.Fatalf("theme = %q, want default", theme.Name)
	}
}

func TestSettingsDefaultsAndRoundTrip(t *testing.T) {
	svc := New(newMemState())
	ctx := context.Background()

	settings, err := svc.Settings(ctx)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if settings != domain.DefaultSettings() {
		t.Fatalf("settings = %+v, want defaults", settings)
	}

	settings.Language = "de"
	settings.DarkMode = false
	if err := svc.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("save: %v", err)
	}

	back, err := svc.Settings(ctx)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if back != settings {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, settings)
	}
}

func TestThemesCatalogIsCopied(t *testing.T) {
	svc := New(newMemState())

	themes := svc.Themes()
	if len(themes) == 0 {
		t.Fatal("empty catalog")
	}
	themes[0].Name = "mutated"
	if svc.Themes()[0].Name == "mutated" {
		t.Fatal("catalog slice shared with callers")
	}
}
