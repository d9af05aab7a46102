package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/forgo/hungry/internal/docstore"
	"github.com/forgo/hungry/internal/model"
)

// DefaultWriteTimeout bounds one background favorites write
const DefaultWriteTimeout = 10 * time.Second

// FavoritesServiceConfig holds configuration for the favorites service
type FavoritesServiceConfig struct {
	Store docstore.Store

	// KeyFunc identifies a restaurant for membership; defaults to Restaurant.Key
	KeyFunc func(model.Restaurant) string

	WriteTimeout time.Duration
	Logger       *slog.Logger
}

// FavoritesService owns the favorites of the active identity. Toggles apply
// locally first and are written to the document store in the background.
type FavoritesService struct {
	store        docstore.Store
	keyFn        func(model.Restaurant) string
	writeTimeout time.Duration
	logger       *slog.Logger

	mu         sync.Mutex
	identity   *model.Identity
	favorites  []model.Restaurant
	generation uint64 // bumped on every identity change
	version    uint64 // bumped on every toggle
	lastErr    error

	// writeMu serializes writes so the version check and the write are atomic
	writeMu   sync.Mutex
	attempted map[string]uint64 // identity id -> newest version sent to the store
	writes    sync.WaitGroup
}

// NewFavoritesService creates a new favorites service
func NewFavoritesService(cfg FavoritesServiceConfig) *FavoritesService {
	keyFn := cfg.KeyFunc
	if keyFn == nil {
		keyFn = model.Restaurant.Key
	}
	timeout := cfg.WriteTimeout
	if timeout == 0 {
		timeout = DefaultWriteTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FavoritesService{
		store:        cfg.Store,
		keyFn:        keyFn,
		writeTimeout: timeout,
		logger:       logger,
		attempted:    make(map[string]uint64),
	}
}

// OnIdentityChange replaces the local favorites with those of identity.
// The previous identity's favorites are cleared before anything is read, and
// the new identity becomes active only once its document has loaded. A load
// overtaken by a later identity change is discarded.
func (s *FavoritesService) OnIdentityChange(ctx context.Context, identity *model.Identity) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.identity = nil
	s.favorites = nil
	s.mu.Unlock()

	if identity == nil {
		return nil
	}

	favorites, err := s.load(ctx, identity.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return nil
	}
	if err != nil {
		s.lastErr = err
		return err
	}

	s.identity = copyIdentity(identity)
	s.favorites = favorites
	return nil
}

func (s *FavoritesService) load(ctx context.Context, userID string) ([]model.Restaurant, error) {
	path := model.UserPath(userID)

	raw, err := s.store.Get(ctx, path)
	if errors.Is(err, docstore.ErrNotFound) {
		fields := map[string]interface{}{model.FieldFavorites: []model.Restaurant{}}
		if err := s.store.Set(ctx, path, fields, docstore.Merge); err != nil {
			// nothing persisted yet, so an empty set is still accurate
			s.logger.Warn("failed to create user document",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
		}
		return []model.Restaurant{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	return s.decode(raw), nil
}

// decode reads the favorites field, treating anything but an array as empty
// and skipping entries that are not restaurants.
func (s *FavoritesService) decode(raw json.RawMessage) []model.Restaurant {
	field := gjson.GetBytes(raw, model.FieldFavorites)
	favorites := []model.Restaurant{}
	if !field.IsArray() {
		return favorites
	}

	seen := make(map[string]bool)
	field.ForEach(func(_, entry gjson.Result) bool {
		if !entry.IsObject() {
			return true
		}
		var r model.Restaurant
		if err := json.Unmarshal([]byte(entry.Raw), &r); err != nil || r.Name == "" {
			return true
		}
		key := s.keyFn(r)
		if seen[key] {
			return true
		}
		seen[key] = true
		favorites = append(favorites, r)
		return true
	})
	return favorites
}

// Toggle flips membership of r and returns whether r is now a favorite.
// Without an active identity nothing changes and ErrNotAuthenticated is
// returned.
func (s *FavoritesService) Toggle(ctx context.Context, r model.Restaurant) (bool, error) {
	if r.Name == "" {
		return false, ErrRestaurantRequired
	}

	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return false, ErrNotAuthenticated
	}

	key := s.keyFn(r)
	idx := s.indexOf(key)
	member := idx < 0
	if member {
		s.favorites = append(s.favorites, r)
	} else {
		s.favorites = append(s.favorites[:idx:idx], s.favorites[idx+1:]...)
	}

	s.version++
	version := s.version
	userID := s.identity.ID
	snapshot := make([]model.Restaurant, len(s.favorites))
	copy(snapshot, s.favorites)
	s.mu.Unlock()

	s.writes.Add(1)
	go s.persist(context.WithoutCancel(ctx), userID, version, snapshot)

	return member, nil
}

func (s *FavoritesService) persist(ctx context.Context, userID string, version uint64, favorites []model.Restaurant) {
	defer s.writes.Done()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// a newer snapshot has been tried already, whatever its outcome
	if s.attempted[userID] >= version {
		return
	}
	s.attempted[userID] = version

	ctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	fields := map[string]interface{}{model.FieldFavorites: favorites}
	err := s.store.Set(ctx, model.UserPath(userID), fields, docstore.Merge)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = err
		s.logger.Error("failed to persist favorites",
			slog.String("user_id", userID),
			slog.Uint64("version", version),
			slog.String("error", err.Error()))
		return
	}
	if version == s.version {
		s.lastErr = nil
	}
}

func (s *FavoritesService) indexOf(key string) int {
	for i, f := range s.favorites {
		if s.keyFn(f) == key {
			return i
		}
	}
	return -1
}

// Favorites returns a copy of the current favorites in insertion order
func (s *FavoritesService) Favorites() []model.Restaurant {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Restaurant, len(s.favorites))
	copy(out, s.favorites)
	return out
}

// IsFavorite reports whether r is in the current favorites
func (s *FavoritesService) IsFavorite(r model.Restaurant) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(s.keyFn(r)) >= 0
}

// Identity returns the identity whose favorites are loaded, or nil
func (s *FavoritesService) Identity() *model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyIdentity(s.identity)
}

// LastSyncError returns the most recent persistence failure, cleared once the
// newest local state has been written.
func (s *FavoritesService) LastSyncError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Wait blocks until every outstanding favorites write has finished
func (s *FavoritesService) Wait() {
	s.writes.Wait()
}
