package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/forgo/hungry/internal/docstore"
	"github.com/forgo/hungry/internal/model"
)

// ThemeServiceConfig holds configuration for the theme service
type ThemeServiceConfig struct {
	Store  docstore.Store
	Logger *slog.Logger
}

// ThemeService holds the dark mode preference. It starts dark, follows the
// signed-in identity's stored preference and persists toggles for it.
type ThemeService struct {
	store  docstore.Store
	logger *slog.Logger

	mu       sync.Mutex
	dark     bool
	identity *model.Identity
	lastErr  error
}

// NewThemeService creates a new theme service
func NewThemeService(cfg ThemeServiceConfig) *ThemeService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ThemeService{
		store:  cfg.Store,
		logger: logger,
		dark:   true,
	}
}

// OnIdentityChange adopts the stored preference of identity when one exists
func (s *ThemeService) OnIdentityChange(ctx context.Context, identity *model.Identity) error {
	s.mu.Lock()
	s.identity = copyIdentity(identity)
	s.mu.Unlock()

	if identity == nil {
		return nil
	}

	raw, err := s.store.Get(ctx, model.UserPath(identity.ID))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Warn("failed to load theme preference",
			slog.String("user_id", identity.ID),
			slog.String("error", err.Error()))
		return err
	}

	flag := gjson.GetBytes(raw, model.FieldDarkMode)
	if !flag.IsBool() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity != nil && s.identity.ID == identity.ID {
		s.dark = flag.Bool()
	}
	return nil
}

// DarkMode reports the current preference
func (s *ThemeService) DarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dark
}

// SetLocal seeds the preference from the locally saved flag
func (s *ThemeService) SetLocal(dark bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dark = dark
}

// Toggle flips the preference and returns the new value. With an identity the
// value is also written to its document; a failed write is logged and kept in
// LastSyncError, the local value stays flipped.
func (s *ThemeService) Toggle(ctx context.Context) bool {
	s.mu.Lock()
	s.dark = !s.dark
	dark := s.dark
	identity := copyIdentity(s.identity)
	s.mu.Unlock()

	if identity == nil {
		return dark
	}

	fields := map[string]interface{}{model.FieldDarkMode: dark}
	err := s.store.Set(ctx, model.UserPath(identity.ID), fields, docstore.Merge)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		s.logger.Error("failed to persist theme preference",
			slog.String("user_id", identity.ID),
			slog.String("error", err.Error()))
	}
	return dark
}

// LastSyncError returns the error of the most recent preference write
func (s *ThemeService) LastSyncError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
