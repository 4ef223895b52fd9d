package middlewarectx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/do-yard/do-starter-kit-sub000/internal/lib/jwt"
	"github.com/do-yard/do-starter-kit-sub000/internal/models"
)

type panicParser struct{}

func (panicParser) ParseToken(string) (*jwt.CustomClaims, error) {
	panic("boom")
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestAuth(t *testing.T) {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	userToken, err := maker.GenerateToken("user-1", string(models.RoleUser), "user@example.com")
	require.NoError(t, err)
	adminToken, err := maker.GenerateToken("admin-1", string(models.RoleAdmin), "admin@example.com")
	require.NoError(t, err)

	tests := []struct {
		name         string
		header       string
		allowedRoles []models.Role
		wantStatus   int
		wantCalled   bool
		wantIdentity Identity
	}{
		{
			name:       "no header is unauthorized",
			header:     "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header is unauthorized",
			header:     "Token abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token is unauthorized",
			header:     "Bearer not-a-token",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:         "wrong role is forbidden",
			header:       "Bearer " + userToken,
			allowedRoles: []models.Role{models.RoleAdmin},
			wantStatus:   http.StatusForbidden,
		},
		{
			name:       "valid token passes identity",
			header:     "Bearer " + userToken,
			wantStatus: http.StatusOK,
			wantCalled: true,
			wantIdentity: Identity{
				ID:    "user-1",
				Role:  models.RoleUser,
				Email: "user@example.com",
			},
		},
		{
			name:         "allowed role passes",
			header:       "Bearer " + adminToken,
			allowedRoles: []models.Role{models.RoleAdmin},
			wantStatus:   http.StatusOK,
			wantCalled:   true,
			wantIdentity: Identity{
				ID:    "admin-1",
				Role:  models.RoleAdmin,
				Email: "admin@example.com",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int
			var got Identity
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				identity, ok := IdentityFromContext(r.Context())
				require.True(t, ok)
				got = identity
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			Auth(newNoopLogger(), maker, tt.allowedRoles...)(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantCalled {
				assert.Equal(t, 1, calls, "handler must be called exactly once")
				assert.Equal(t, tt.wantIdentity, got)
			} else {
				assert.Zero(t, calls, "handler must not be called")
			}
		})
	}
}

func TestAuth_PanicDuringResolution(t *testing.T) {
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rr := httptest.NewRecorder()

	Auth(newNoopLogger(), panicParser{})(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.False(t, called)
}
