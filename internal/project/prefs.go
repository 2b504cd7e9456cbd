package project

import (
	"context"
	"errors"
	"strings"

	"github.com/jonathan/architect/internal/types"
)

// Prefs returns the current preferences.
func (s *Store) Prefs() types.UserPrefs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// SavePrefs replaces the preferences. Saving always marks onboarding complete.
func (s *Store) SavePrefs(ctx context.Context, prefs types.UserPrefs) error {
	if strings.TrimSpace(prefs.Language) == "" {
		return errors.New("language must not be empty")
	}
	prefs.OnboardingCompleted = true

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = prefs
	s.persist.SavePrefs(ctx, s.prefs)
	return nil
}

// SetLanguage changes the preferred language.
func (s *Store) SetLanguage(ctx context.Context, language string) error {
	prefs := s.Prefs()
	prefs.Language = language
	return s.SavePrefs(ctx, prefs)
}

// SetEInkMode switches the high-contrast display mode.
func (s *Store) SetEInkMode(on bool) {
	prefs := s.Prefs()
	prefs.IsEInkMode = on
	_ = s.SavePrefs(context.Background(), prefs)
}
