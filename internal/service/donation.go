package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/forgo/hungry/internal/docstore"
	"github.com/forgo/hungry/internal/model"
)

// DonationServiceConfig holds configuration for the donation service
type DonationServiceConfig struct {
	Store  docstore.Store
	Now    func() time.Time // defaults to time.Now
	Logger *slog.Logger
}

// DonationService records donations for the signed-in identity and keeps the
// running total.
type DonationService struct {
	store  docstore.Store
	now    func() time.Time
	logger *slog.Logger

	mu       sync.Mutex
	identity *model.Identity
	total    float64
}

// NewDonationService creates a new donation service
func NewDonationService(cfg DonationServiceConfig) *DonationService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DonationService{
		store:  cfg.Store,
		now:    now,
		logger: logger,
	}
}

// OnIdentityChange switches the ledger to identity and loads its total
func (s *DonationService) OnIdentityChange(ctx context.Context, identity *model.Identity) error {
	s.mu.Lock()
	s.identity = copyIdentity(identity)
	s.total = 0
	s.mu.Unlock()

	if identity == nil {
		return nil
	}
	_, err := s.Refresh(ctx)
	return err
}

// ParseAmount reads a donation amount the way the amount field accepts it:
// everything but digits and dots is dropped.
func ParseAmount(input string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, input)

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

// Donate records a donation, optionally for a restaurant, and returns the new total
func (s *DonationService) Donate(ctx context.Context, input, restaurant string) (float64, error) {
	identity := s.current()
	if identity == nil {
		return 0, ErrNotAuthenticated
	}

	amount, err := ParseAmount(input)
	if err != nil {
		return 0, err
	}

	donation := model.Donation{
		Amount:     amount,
		Restaurant: strings.TrimSpace(restaurant),
		Timestamp:  s.now(),
	}
	if _, err := s.store.Add(ctx, model.DonationsPath(identity.ID), donation.Fields()); err != nil {
		s.logger.Error("failed to record donation",
			slog.String("user_id", identity.ID),
			slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to record donation: %w", err)
	}

	return s.Refresh(ctx)
}

// DonateTo is Donate for a required restaurant
func (s *DonationService) DonateTo(ctx context.Context, input, restaurant string) (float64, error) {
	if s.current() == nil {
		return 0, ErrNotAuthenticated
	}
	if strings.TrimSpace(restaurant) == "" {
		return 0, ErrRestaurantRequired
	}
	return s.Donate(ctx, input, restaurant)
}

// Refresh re-sums the identity's donation collection
func (s *DonationService) Refresh(ctx context.Context) (float64, error) {
	identity := s.current()
	if identity == nil {
		return 0, ErrNotAuthenticated
	}

	docs, err := s.store.List(ctx, model.DonationsPath(identity.ID))
	if err != nil {
		s.logger.Warn("failed to load donations",
			slog.String("user_id", identity.ID),
			slog.String("error", err.Error()))
		return s.Total(), fmt.Errorf("failed to load donations: %w", err)
	}

	var sum float64
	for _, raw := range docs {
		// amounts that are not numbers count as zero
		if amount := gjson.GetBytes(raw, "amount"); amount.Type == gjson.Number {
			sum += amount.Float()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity != nil && s.identity.ID == identity.ID {
		s.total = sum
	}
	return sum, nil
}

// Total returns the last computed total
func (s *DonationService) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Presets returns the quick-pick amounts
func (s *DonationService) Presets() []float64 {
	return append([]float64(nil), model.DonationPresets...)
}

func (s *DonationService) current() *model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyIdentity(s.identity)
}
