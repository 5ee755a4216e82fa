package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultSweepInterval = 30 * time.Minute

	// Hosted checkout sessions expire after 24 hours, so a pending
	// order older than that will never be paid. The expired webhook is
	// the primary cleanup path; the sweeper catches missed deliveries.
	pendingOrderMaxAge = 24 * time.Hour

	// Registration profiles saved for a cart that never checked out
	orphanedRegistrationMaxAge = 48 * time.Hour
)

// CleanupOrderRepository is the slice of the order store the sweeper needs
type CleanupOrderRepository interface {
	CancelExpired(ctx context.Context, olderThan time.Duration) (int, error)
}

// CleanupRegistrationRepository is the slice of the registration store
// the sweeper needs
type CleanupRegistrationRepository interface {
	DeleteOrphaned(ctx context.Context, olderThan time.Duration) (int, error)
}

// CleanupService periodically clears out abandoned checkout state:
// pending orders whose payment session expired without a webhook, and
// registration profiles left behind by carts that never checked out.
type CleanupService struct {
	orderRepo        CleanupOrderRepository
	registrationRepo CleanupRegistrationRepository
	interval         time.Duration
	logger           zerolog.Logger
}

// NewCleanupService creates a new cleanup service. A zero interval uses
// the default sweep interval.
func NewCleanupService(orderRepo CleanupOrderRepository, registrationRepo CleanupRegistrationRepository, interval time.Duration, logger zerolog.Logger) *CleanupService {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &CleanupService{
		orderRepo:        orderRepo,
		registrationRepo: registrationRepo,
		interval:         interval,
		logger:           logger,
	}
}

// CleanupResult reports what a single sweep removed
type CleanupResult struct {
	ExpiredOrders         int `json:"expired_orders"`
	OrphanedRegistrations int `json:"orphaned_registrations"`
}

// Run sweeps immediately and then on every interval tick until the
// context is cancelled. Meant to be started in its own goroutine at
// server startup.
func (s *CleanupService) Run(ctx context.Context) {
	s.logger.Info().Dur("interval", s.interval).Msg("starting cleanup sweeper")

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("cleanup sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *CleanupService) sweep(ctx context.Context) {
	result, err := s.SweepOnce(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("cleanup sweep failed")
	}
	if result.ExpiredOrders > 0 || result.OrphanedRegistrations > 0 {
		s.logger.Info().
			Int("expired_orders", result.ExpiredOrders).
			Int("orphaned_registrations", result.OrphanedRegistrations).
			Msg("cleanup sweep completed")
	}
}

// SweepOnce runs a single cleanup pass. Each step runs independently so
// one failing store does not block the other.
func (s *CleanupService) SweepOnce(ctx context.Context) (CleanupResult, error) {
	var result CleanupResult
	var errs []error

	cancelled, err := s.orderRepo.CancelExpired(ctx, pendingOrderMaxAge)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to cancel expired orders: %w", err))
	} else {
		result.ExpiredOrders = cancelled
	}

	deleted, err := s.registrationRepo.DeleteOrphaned(ctx, orphanedRegistrationMaxAge)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to delete orphaned registrations: %w", err))
	} else {
		result.OrphanedRegistrations = deleted
	}

	return result, errors.Join(errs...)
}
