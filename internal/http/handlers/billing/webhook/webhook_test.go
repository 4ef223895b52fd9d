package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/do-yard/do-starter-kit-sub000/internal/billing/reconcile"
)

type EngineMock struct{ mock.Mock }

func (m *EngineMock) Process(ctx context.Context, evt *reconcile.Event) error {
	return m.Called(ctx, evt).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestWebhookHandler(t *testing.T) {
	const secret = "test-secret"
	body := []byte(`{"type":"customer.subscription.created","data":{"object":{"id":"sub_1","customer":"cus_1","items":{"data":[{"price":{"id":"price_pro"}}]}}}}`)

	tests := []struct {
		name       string
		secret     string
		signature  string
		body       []byte
		setupMocks func(e *EngineMock)
		wantStatus int
	}{
		{
			name:      "valid signature processes event",
			secret:    secret,
			signature: sign(secret, body),
			body:      body,
			setupMocks: func(e *EngineMock) {
				e.On("Process", mock.Anything, mock.MatchedBy(func(evt *reconcile.Event) bool {
					return evt.Type == "customer.subscription.created" &&
						evt.CustomerID() == "cus_1" &&
						evt.PriceID() == "price_pro"
				})).Return(nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing secret fails closed",
			secret:     "",
			signature:  sign(secret, body),
			body:       body,
			setupMocks: func(_ *EngineMock) {},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "missing signature fails closed",
			secret:     secret,
			signature:  "",
			body:       body,
			setupMocks: func(_ *EngineMock) {},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "wrong signature fails closed",
			secret:     secret,
			signature:  sign("other-secret", body),
			body:       body,
			setupMocks: func(_ *EngineMock) {},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:      "engine error returns 500 for provider retry",
			secret:    secret,
			signature: sign(secret, body),
			body:      body,
			setupMocks: func(e *EngineMock) {
				e.On("Process", mock.Anything, mock.Anything).
					Return(errors.New("missing customer id in event payload")).Once()
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:      "unknown event type is acknowledged",
			secret:    secret,
			signature: sign(secret, []byte(`{"type":"invoice.paid"}`)),
			body:      []byte(`{"type":"invoice.paid"}`),
			setupMocks: func(e *EngineMock) {
				e.On("Process", mock.Anything, mock.Anything).Return(nil).Once()
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := new(EngineMock)
			tt.setupMocks(engine)
			handler := New(newNoopLogger(), engine, tt.secret)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhook", bytes.NewReader(tt.body))
			if tt.signature != "" {
				req.Header.Set(SignatureHeader, tt.signature)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"status":200}`, rr.Body.String())
			}
			engine.AssertExpectations(t)
		})
	}
}
