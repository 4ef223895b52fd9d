package sender

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/do-yard/do-starter-kit-sub000/internal/models"
)

type EmailClientMock struct{ mock.Mock }

func (m *EmailClientMock) Send(ctx context.Context, msg models.EmailMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestService_HandleEmailMessage(t *testing.T) {
	t.Run("delivers parsed message", func(t *testing.T) {
		client := new(EmailClientMock)
		client.On("Send", mock.Anything, models.EmailMessage{
			To:      "u@example.com",
			Subject: "Verify your email",
			Body:    "token",
		}).Return(nil).Once()

		svc := New(client, newNoopLogger())
		err := svc.HandleEmailMessage([]byte(`{"to":"u@example.com","subject":"Verify your email","body":"token"}`))

		require.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("invalid json fails", func(t *testing.T) {
		svc := New(new(EmailClientMock), newNoopLogger())
		assert.Error(t, svc.HandleEmailMessage([]byte(`{`)))
	})

	t.Run("empty recipient fails", func(t *testing.T) {
		svc := New(new(EmailClientMock), newNoopLogger())
		assert.Error(t, svc.HandleEmailMessage([]byte(`{"subject":"s","body":"b"}`)))
	})

	t.Run("delivery error propagates for requeue", func(t *testing.T) {
		client := new(EmailClientMock)
		client.On("Send", mock.Anything, mock.Anything).
			Return(errors.New("smtp unavailable")).Once()

		svc := New(client, newNoopLogger())
		err := svc.HandleEmailMessage([]byte(`{"to":"u@example.com","subject":"s","body":"b"}`))

		assert.Error(t, err)
	})
}
