package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/hungry/internal/docstore"
	"github.com/forgo/hungry/internal/model"
)

// IdentityListener is notified with the active identity, nil when signed out
type IdentityListener func(ctx context.Context, identity *model.Identity)

// IdentityServiceConfig holds configuration for the identity service
type IdentityServiceConfig struct {
	Store      docstore.Store
	BcryptCost int // defaults to bcrypt.DefaultCost
	Logger     *slog.Logger
}

// IdentityService keeps local account sessions and fans identity changes out
// to subscribers.
type IdentityService struct {
	store  docstore.Store
	cost   int
	logger *slog.Logger

	mu        sync.Mutex
	current   *model.Identity
	listeners []*identitySubscription
}

type identitySubscription struct {
	fn IdentityListener
}

// NewIdentityService creates a new identity service
func NewIdentityService(cfg IdentityServiceConfig) *IdentityService {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityService{
		store:  cfg.Store,
		cost:   cost,
		logger: logger,
	}
}

// Subscribe registers fn for identity changes. fn is called once right away
// with the current identity, then after every change, on the goroutine that
// made the change and in subscription order. The returned function removes
// the subscription; calling it more than once is harmless.
func (s *IdentityService) Subscribe(ctx context.Context, fn IdentityListener) func() {
	sub := &identitySubscription{fn: fn}

	s.mu.Lock()
	s.listeners = append(s.listeners, sub)
	current := copyIdentity(s.current)
	s.mu.Unlock()

	fn(ctx, current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l == sub {
					s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Current returns the active identity or nil
func (s *IdentityService) Current() *model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyIdentity(s.current)
}

// SignUp creates an account and signs it in
func (s *IdentityService) SignUp(ctx context.Context, email, password string) (*model.Identity, error) {
	email = normalizeEmail(email)
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.store.Get(ctx, model.AccountPath(email)); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("failed to check account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := model.Account{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedOn:    time.Now().UTC(),
	}
	fields := map[string]interface{}{
		"user_id":       account.UserID,
		"email":         account.Email,
		"password_hash": account.PasswordHash,
		"created_on":    account.CreatedOn.Format(time.RFC3339Nano),
	}
	if err := s.store.Set(ctx, model.AccountPath(email), fields, docstore.SetOptions{}); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	identity := &model.Identity{ID: account.UserID, Email: email}
	s.logger.Info("account created", slog.String("user_id", identity.ID))
	s.setIdentity(ctx, identity)
	return copyIdentity(identity), nil
}

// SignIn verifies credentials and makes the account the active identity
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*model.Identity, error) {
	account, err := s.account(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	identity := &model.Identity{ID: account.UserID, Email: account.Email}
	s.setIdentity(ctx, identity)
	return copyIdentity(identity), nil
}

// Restore resumes a saved session after checking the account still exists
func (s *IdentityService) Restore(ctx context.Context, identity *model.Identity) error {
	if identity == nil || identity.ID == "" {
		return ErrNotAuthenticated
	}

	account, err := s.account(ctx, normalizeEmail(identity.Email))
	if err != nil {
		return err
	}
	if account.UserID != identity.ID {
		return ErrInvalidCredentials
	}

	s.setIdentity(ctx, &model.Identity{ID: account.UserID, Email: account.Email})
	return nil
}

// SignOut clears the active identity
func (s *IdentityService) SignOut(ctx context.Context) {
	s.setIdentity(ctx, nil)
}

func (s *IdentityService) account(ctx context.Context, email string) (*model.Account, error) {
	if !isValidEmail(email) {
		return nil, ErrInvalidCredentials
	}

	raw, err := s.store.Get(ctx, model.AccountPath(email))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	var account model.Account
	if err := json.Unmarshal(raw, &account); err != nil {
		return nil, fmt.Errorf("failed to decode account: %w", err)
	}
	if account.UserID == "" {
		return nil, ErrInvalidCredentials
	}
	return &account, nil
}

func (s *IdentityService) setIdentity(ctx context.Context, identity *model.Identity) {
	s.mu.Lock()
	s.current = copyIdentity(identity)
	listeners := make([]*identitySubscription, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(ctx, copyIdentity(identity))
	}
}

func copyIdentity(identity *model.Identity) *model.Identity {
	if identity == nil {
		return nil
	}
	c := *identity
	return &c
}

// Helper functions

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func validatePassword(password string) error {
	if len(password) < model.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > model.MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

func isValidEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	// the address is used as a document id
	if strings.ContainsAny(email, "/ \t") {
		return false
	}
	atIndex := strings.Index(email, "@")
	if atIndex < 1 {
		return false
	}
	dotIndex := strings.LastIndex(email, ".")
	if dotIndex < atIndex+2 {
		return false
	}
	return dotIndex < len(email)-1
}
