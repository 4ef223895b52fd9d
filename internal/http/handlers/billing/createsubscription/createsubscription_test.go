package createsubscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/do-yard/do-starter-kit-sub000/internal/http/middlewarectx"
	"github.com/do-yard/do-starter-kit-sub000/internal/models"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) CreateSubscription(ctx context.Context, userID, email, priceID string) (string, error) {
	args := m.Called(ctx, userID, email, priceID)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newRequestWithIdentity(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/subscription", strings.NewReader(body))
	ctx := context.WithValue(req.Context(), middlewarectx.IdentityKey, middlewarectx.Identity{
		ID:    "user-1",
		Role:  models.RoleUser,
		Email: "u@example.com",
	})
	return req.WithContext(ctx)
}

func TestCreateSubscriptionHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMocks func(s *ServiceMock)
		wantStatus int
		wantBody   string
	}{
		{
			name: "success returns client secret",
			body: `{"priceId":"price_pro"}`,
			setupMocks: func(s *ServiceMock) {
				s.On("CreateSubscription", mock.Anything, "user-1", "u@example.com", "price_pro").
					Return("secret_123", nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"OK","data":{"clientSecret":"secret_123"}}`,
		},
		{
			name:       "missing price id",
			body:       `{}`,
			setupMocks: func(_ *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"status":"Error","error":"priceId is required"}`,
		},
		{
			name:       "invalid json",
			body:       `{`,
			setupMocks: func(_ *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name: "service error",
			body: `{"priceId":"price_pro"}`,
			setupMocks: func(s *ServiceMock) {
				s.On("CreateSubscription", mock.Anything, "user-1", "u@example.com", "price_pro").
					Return("", errors.New("billing api: 500")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"status":"Error","error":"could not create subscription"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(ServiceMock)
			tt.setupMocks(service)
			handler := New(newNoopLogger(), service)

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, newRequestWithIdentity(tt.body))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
			service.AssertExpectations(t)
		})
	}
}
