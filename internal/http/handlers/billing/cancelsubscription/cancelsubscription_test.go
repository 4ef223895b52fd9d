package cancelsubscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/do-yard/do-starter-kit-sub000/internal/http/middlewarectx"
	"github.com/do-yard/do-starter-kit-sub000/internal/models"
	"github.com/do-yard/do-starter-kit-sub000/internal/services/billing"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) CancelSubscription(ctx context.Context, userID, email string) error {
	return m.Called(ctx, userID, email).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newRequestWithIdentity() *http.Request {
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/billing/subscription", nil)
	ctx := context.WithValue(req.Context(), middlewarectx.IdentityKey, middlewarectx.Identity{
		ID:    "user-1",
		Role:  models.RoleUser,
		Email: "u@example.com",
	})
	return req.WithContext(ctx)
}

func TestCancelSubscriptionHandler(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "success",
			serviceErr: nil,
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"OK","data":{"canceled":true}}`,
		},
		{
			name:       "customer not found",
			serviceErr: billing.ErrCustomerNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   `{"status":"Error","error":"Customer not found"}`,
		},
		{
			name:       "no active subscription",
			serviceErr: billing.ErrNoActiveSubscription,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"status":"Error","error":"No active subscription"}`,
		},
		{
			name:       "local record missing",
			serviceErr: billing.ErrLocalSubscriptionMissing,
			wantStatus: http.StatusNotFound,
			wantBody:   `{"status":"Error","error":"Active subscription not found in database"}`,
		},
		{
			name:       "internal error",
			serviceErr: errors.New("billing api: 500"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"status":"Error","error":"could not cancel subscription"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(ServiceMock)
			service.On("CancelSubscription", mock.Anything, "user-1", "u@example.com").
				Return(tt.serviceErr).Once()
			handler := New(newNoopLogger(), service)

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, newRequestWithIdentity())

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
			service.AssertExpectations(t)
		})
	}
}

func TestCancelSubscriptionHandler_NoIdentity(t *testing.T) {
	service := new(ServiceMock)
	handler := New(newNoopLogger(), service)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/billing/subscription", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	service.AssertNotCalled(t, "CancelSubscription", mock.Anything, mock.Anything, mock.Anything)
}
