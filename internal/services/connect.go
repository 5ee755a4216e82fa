package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
)

// ConnectUserRepository is the slice of the user store the connect
// service needs
type ConnectUserRepository interface {
	UpdateStripeAccount(ctx context.Context, id int, accountID string) error
}

// ConnectClient is the slice of the payment client that manages
// connected payout accounts
type ConnectClient interface {
	CreateAccount(ctx context.Context, email string) (*Account, error)
	GetAccount(ctx context.Context, accountID string) (*Account, error)
	CreateAccountLink(ctx context.Context, accountID string) (*AccountLink, error)
}

// ConnectService handles payout account onboarding for organizers.
// Ticket revenue settles into each organizer's own connected account,
// so an organizer must finish onboarding before their events can sell.
type ConnectService struct {
	userRepo ConnectUserRepository
	payments ConnectClient
	logger   zerolog.Logger
}

// NewConnectService creates a new connect service
func NewConnectService(userRepo ConnectUserRepository, payments ConnectClient, logger zerolog.Logger) *ConnectService {
	return &ConnectService{
		userRepo: userRepo,
		payments: payments,
		logger:   logger,
	}
}

// ConnectStatus is the onboarding state shown on the organizer's
// payments page
type ConnectStatus struct {
	Connected        bool `json:"connected"`
	ChargesEnabled   bool `json:"charges_enabled"`
	PayoutsEnabled   bool `json:"payouts_enabled"`
	DetailsSubmitted bool `json:"details_submitted"`
}

// OnboardingLink is a single-use URL that sends the organizer to the
// hosted onboarding flow
type OnboardingLink struct {
	URL string `json:"url"`
}

// StartOnboarding creates the organizer's connected account on first
// use and returns a fresh onboarding link. Links are single-use and
// short-lived, so every visit to the payments page gets a new one.
func (s *ConnectService) StartOnboarding(ctx context.Context, user *models.User) (*OnboardingLink, error) {
	if !user.CanCreateEvents() {
		return nil, fmt.Errorf("%w: only organizers can connect a payout account", models.ErrUnauthorized)
	}

	if !user.HasStripeAccount() {
		account, err := s.payments.CreateAccount(ctx, user.Email)
		if err != nil {
			return nil, err
		}

		if err := s.userRepo.UpdateStripeAccount(ctx, user.ID, account.ID); err != nil {
			// The account now exists upstream but is not recorded here;
			// log the id so it can be reconciled by hand
			s.logger.Warn().Err(err).Int("user_id", user.ID).Str("account_id", account.ID).
				Msg("created connected account but failed to store it")
			return nil, fmt.Errorf("failed to store connected account: %w", err)
		}

		user.StripeAccountID = account.ID
		s.logger.Info().Int("user_id", user.ID).Str("account_id", account.ID).Msg("connected account created")
	}

	link, err := s.payments.CreateAccountLink(ctx, user.StripeAccountID)
	if err != nil {
		return nil, err
	}

	return &OnboardingLink{URL: link.URL}, nil
}

// Status reports the organizer's payout account onboarding state
func (s *ConnectService) Status(ctx context.Context, user *models.User) (*ConnectStatus, error) {
	if !user.HasStripeAccount() {
		return &ConnectStatus{}, nil
	}

	account, err := s.payments.GetAccount(ctx, user.StripeAccountID)
	if err != nil {
		return nil, err
	}

	return &ConnectStatus{
		Connected:        true,
		ChargesEnabled:   account.ChargesEnabled,
		PayoutsEnabled:   account.PayoutsEnabled,
		DetailsSubmitted: account.DetailsSubmitted,
	}, nil
}
