package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCleanupOrderRepository struct {
	mock.Mock
}

func (m *MockCleanupOrderRepository) CancelExpired(ctx context.Context, olderThan time.Duration) (int, error) {
	args := m.Called(ctx, olderThan)
	return args.Int(0), args.Error(1)
}

type MockCleanupRegistrationRepository struct {
	mock.Mock
}

func (m *MockCleanupRegistrationRepository) DeleteOrphaned(ctx context.Context, olderThan time.Duration) (int, error) {
	args := m.Called(ctx, olderThan)
	return args.Int(0), args.Error(1)
}

func TestCleanupService_SweepOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("reports what each store removed", func(t *testing.T) {
		orders := new(MockCleanupOrderRepository)
		registrations := new(MockCleanupRegistrationRepository)
		service := NewCleanupService(orders, registrations, 0, zerolog.Nop())

		orders.On("CancelExpired", ctx, 24*time.Hour).Return(3, nil)
		registrations.On("DeleteOrphaned", ctx, 48*time.Hour).Return(2, nil)

		result, err := service.SweepOnce(ctx)

		require.NoError(t, err)
		assert.Equal(t, 3, result.ExpiredOrders)
		assert.Equal(t, 2, result.OrphanedRegistrations)
		orders.AssertExpectations(t)
		registrations.AssertExpectations(t)
	})

	t.Run("one failing store does not block the other", func(t *testing.T) {
		orders := new(MockCleanupOrderRepository)
		registrations := new(MockCleanupRegistrationRepository)
		service := NewCleanupService(orders, registrations, 0, zerolog.Nop())

		orders.On("CancelExpired", ctx, mock.Anything).Return(0, assert.AnError)
		registrations.On("DeleteOrphaned", ctx, mock.Anything).Return(4, nil)

		result, err := service.SweepOnce(ctx)

		assert.Error(t, err)
		assert.Equal(t, 4, result.OrphanedRegistrations)
		registrations.AssertCalled(t, "DeleteOrphaned", ctx, mock.Anything)
	})
}

func TestCleanupService_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orders := new(MockCleanupOrderRepository)
	registrations := new(MockCleanupRegistrationRepository)
	service := NewCleanupService(orders, registrations, 5*time.Millisecond, zerolog.Nop())

	var sweeps int32
	orders.On("CancelExpired", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			if atomic.AddInt32(&sweeps, 1) == 2 {
				cancel()
			}
		}).
		Return(0, nil)
	registrations.On("DeleteOrphaned", mock.Anything, mock.Anything).Return(0, nil)

	done := make(chan struct{})
	go func() {
		service.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}

	assert.GreaterOrEqual(t, atomic.LoadInt32(&sweeps), int32(2))
}
