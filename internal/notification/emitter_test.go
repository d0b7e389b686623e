package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"printdesk-be/internal/mailer"
	"printdesk-be/internal/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Insert(ctx context.Context, n *Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID string) ([]Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Notification), args.Error(1)
}

func (m *MockRepository) MarkRead(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, p mailer.Payload) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func sampleOrder() *order.Order {
	return &order.Order{
		ID:             "a1b2c3d4-0000-0000-0000-000000000000",
		CreatedBy:      "client-1",
		CreatedByEmail: "client@acme.test",
		Status:         order.StatusPendingConfirmation,
	}
}

func newTestEmitter(repo Repository, mail mailer.Mailer) *Emitter {
	e := NewEmitter(repo, mail)
	e.now = func() time.Time { return time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC) }
	return e
}

func TestEmitter_OrderCreated(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		mail := new(MockMailer)
		e := newTestEmitter(repo, mail)

		var stored *Notification
		repo.On("Insert", ctx, mock.AnythingOfType("*notification.Notification")).
			Run(func(args mock.Arguments) {
				stored = args.Get(1).(*Notification)
			}).
			Return(nil)
		mail.On("Send", ctx, mock.AnythingOfType("mailer.Payload")).Return(nil)

		err := e.OrderCreated(ctx, sampleOrder())
		require.NoError(t, err)

		require.NotNil(t, stored)
		assert.Equal(t, "client-1", stored.UserID)
		assert.Equal(t, TypeOrderCreated, stored.Type)
		assert.Contains(t, stored.Title, "#A1B2C3D4")
		assert.False(t, stored.Read)
		repo.AssertExpectations(t)
		mail.AssertExpectations(t)
	})

	t.Run("MailerFailureIsSwallowed", func(t *testing.T) {
		repo := new(MockRepository)
		mail := new(MockMailer)
		e := newTestEmitter(repo, mail)

		repo.On("Insert", ctx, mock.Anything).Return(nil)
		mail.On("Send", ctx, mock.Anything).Return(errors.New("broker unreachable"))

		err := e.OrderCreated(ctx, sampleOrder())
		assert.NoError(t, err)
	})

	t.Run("RepoFailurePropagates", func(t *testing.T) {
		repo := new(MockRepository)
		mail := new(MockMailer)
		e := newTestEmitter(repo, mail)

		repo.On("Insert", ctx, mock.Anything).Return(errors.New("db down"))

		err := e.OrderCreated(ctx, sampleOrder())
		assert.Error(t, err)
		mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})
}

func TestEmitter_OrderConfirmed(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	mail := new(MockMailer)
	e := newTestEmitter(repo, mail)

	var payload mailer.Payload
	repo.On("Insert", ctx, mock.Anything).Return(nil)
	mail.On("Send", ctx, mock.AnythingOfType("mailer.Payload")).
		Run(func(args mock.Arguments) {
			payload = args.Get(1).(mailer.Payload)
		}).
		Return(nil)

	err := e.OrderConfirmed(ctx, sampleOrder())
	require.NoError(t, err)

	assert.Equal(t, "client@acme.test", payload.Recipient)
	assert.Equal(t, "order_confirmed", payload.Template)
	assert.Equal(t, "#A1B2C3D4", payload.Params["order_ref"])
}
