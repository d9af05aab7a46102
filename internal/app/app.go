// Package app wires the client-side services into one application context.
//
// The identity service fans sign-in and sign-out out to the favorites,
// theme and donation services. Start registers those subscriptions and
// Close removes them again, so nothing holds global auth or theme state.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/forgo/hungry/internal/docstore"
	"github.com/forgo/hungry/internal/model"
	"github.com/forgo/hungry/internal/service"
)

// ErrAlreadyStarted is returned by a second Start
var ErrAlreadyStarted = errors.New("app already started")

// Config holds the collaborators of the application context
type Config struct {
	Store  docstore.Store
	Search service.SearchClient

	PageSize     int
	KeyFunc      func(model.Restaurant) string // favorites identity, defaults to name
	WriteTimeout time.Duration
	BcryptCost   int
	Logger       *slog.Logger
}

// App is the client application context
type App struct {
	Identity  *service.IdentityService
	Favorites *service.FavoritesService
	Search    *service.SearchController
	Theme     *service.ThemeService
	Donations *service.DonationService

	logger *slog.Logger

	mu          sync.Mutex
	started     bool
	unsubscribe []func()
}

// identityAware is implemented by every service that follows the signed-in identity
type identityAware interface {
	OnIdentityChange(ctx context.Context, identity *model.Identity) error
}

// New builds the services. Nothing is subscribed until Start.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, errors.New("app: document store is required")
	}
	if cfg.Search == nil {
		return nil, errors.New("app: search client is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &App{
		Identity: service.NewIdentityService(service.IdentityServiceConfig{
			Store:      cfg.Store,
			BcryptCost: cfg.BcryptCost,
			Logger:     logger,
		}),
		Favorites: service.NewFavoritesService(service.FavoritesServiceConfig{
			Store:        cfg.Store,
			KeyFunc:      cfg.KeyFunc,
			WriteTimeout: cfg.WriteTimeout,
			Logger:       logger,
		}),
		Search: service.NewSearchController(service.SearchControllerConfig{
			Client:   cfg.Search,
			PageSize: cfg.PageSize,
			Logger:   logger,
		}),
		Theme:     service.NewThemeService(service.ThemeServiceConfig{Store: cfg.Store, Logger: logger}),
		Donations: service.NewDonationService(service.DonationServiceConfig{Store: cfg.Store, Logger: logger}),
		logger:    logger,
	}, nil
}

// Start subscribes the identity-aware services. Each is called once right
// away with the current identity.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return ErrAlreadyStarted
	}
	a.started = true

	components := []struct {
		name string
		svc  identityAware
	}{
		{"favorites", a.Favorites},
		{"theme", a.Theme},
		{"donations", a.Donations},
	}
	for _, c := range components {
		c := c
		a.unsubscribe = append(a.unsubscribe, a.Identity.Subscribe(ctx, func(ctx context.Context, identity *model.Identity) {
			if err := c.svc.OnIdentityChange(ctx, identity); err != nil {
				a.logger.Warn("identity change not applied",
					slog.String("component", c.name),
					slog.String("error", err.Error()))
			}
		}))
	}
	return nil
}

// Close deregisters every subscription and waits for pending favorite writes
func (a *App) Close() error {
	a.mu.Lock()
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.started = false
	a.mu.Unlock()

	for _, fn := range unsubscribe {
		fn()
	}
	a.Favorites.Wait()
	return nil
}
