package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
)

type MockConnectUserRepository struct {
	mock.Mock
}

func (m *MockConnectUserRepository) UpdateStripeAccount(ctx context.Context, id int, accountID string) error {
	args := m.Called(ctx, id, accountID)
	return args.Error(0)
}

type MockConnectClient struct {
	mock.Mock
}

func (m *MockConnectClient) CreateAccount(ctx context.Context, email string) (*Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockConnectClient) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockConnectClient) CreateAccountLink(ctx context.Context, accountID string) (*AccountLink, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AccountLink), args.Error(1)
}

func TestConnectService_StartOnboarding(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an account on first use and returns a link", func(t *testing.T) {
		users := new(MockConnectUserRepository)
		payments := new(MockConnectClient)
		service := NewConnectService(users, payments, zerolog.Nop())

		payments.On("CreateAccount", ctx, "organizer@example.com").
			Return(&Account{ID: "acct_test_1"}, nil)
		users.On("UpdateStripeAccount", ctx, 7, "acct_test_1").Return(nil)
		payments.On("CreateAccountLink", ctx, "acct_test_1").
			Return(&AccountLink{URL: "https://connect.stripe.com/setup/s/abc"}, nil)

		organizer := testOrganizer()
		link, err := service.StartOnboarding(ctx, organizer)

		require.NoError(t, err)
		assert.Equal(t, "https://connect.stripe.com/setup/s/abc", link.URL)
		assert.Equal(t, "acct_test_1", organizer.StripeAccountID)
		users.AssertExpectations(t)
		payments.AssertExpectations(t)
	})

	t.Run("reuses an existing account", func(t *testing.T) {
		users := new(MockConnectUserRepository)
		payments := new(MockConnectClient)
		service := NewConnectService(users, payments, zerolog.Nop())

		payments.On("CreateAccountLink", ctx, "acct_existing").
			Return(&AccountLink{URL: "https://connect.stripe.com/setup/s/def"}, nil)

		organizer := testOrganizer()
		organizer.StripeAccountID = "acct_existing"
		link, err := service.StartOnboarding(ctx, organizer)

		require.NoError(t, err)
		assert.Equal(t, "https://connect.stripe.com/setup/s/def", link.URL)
		payments.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
	})

	t.Run("rejects a regular attendee", func(t *testing.T) {
		users := new(MockConnectUserRepository)
		payments := new(MockConnectClient)
		service := NewConnectService(users, payments, zerolog.Nop())

		attendee := &models.User{ID: 42, Role: models.RoleUser}
		_, err := service.StartOnboarding(ctx, attendee)

		assert.ErrorIs(t, err, models.ErrUnauthorized)
		payments.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
	})

	t.Run("fails when the account cannot be stored", func(t *testing.T) {
		users := new(MockConnectUserRepository)
		payments := new(MockConnectClient)
		service := NewConnectService(users, payments, zerolog.Nop())

		payments.On("CreateAccount", ctx, "organizer@example.com").
			Return(&Account{ID: "acct_test_1"}, nil)
		users.On("UpdateStripeAccount", ctx, 7, "acct_test_1").Return(assert.AnError)

		_, err := service.StartOnboarding(ctx, testOrganizer())

		assert.Error(t, err)
		payments.AssertNotCalled(t, "CreateAccountLink", mock.Anything, mock.Anything)
	})
}

func TestConnectService_Status(t *testing.T) {
	ctx := context.Background()

	t.Run("reports not connected without an account", func(t *testing.T) {
		users := new(MockConnectUserRepository)
		payments := new(MockConnectClient)
		service := NewConnectService(users, payments, zerolog.Nop())

		status, err := service.Status(ctx, testOrganizer())

		require.NoError(t, err)
		assert.False(t, status.Connected)
		payments.AssertNotCalled(t, "GetAccount", mock.Anything, mock.Anything)
	})

	t.Run("maps the account's onboarding state", func(t *testing.T) {
		users := new(MockConnectUserRepository)
		payments := new(MockConnectClient)
		service := NewConnectService(users, payments, zerolog.Nop())

		payments.On("GetAccount", ctx, "acct_existing").Return(&Account{
			ID:               "acct_existing",
			ChargesEnabled:   true,
			PayoutsEnabled:   false,
			DetailsSubmitted: true,
		}, nil)

		organizer := testOrganizer()
		organizer.StripeAccountID = "acct_existing"
		status, err := service.Status(ctx, organizer)

		require.NoError(t, err)
		assert.True(t, status.Connected)
		assert.True(t, status.ChargesEnabled)
		assert.False(t, status.PayoutsEnabled)
		assert.True(t, status.DetailsSubmitted)
	})
}
