// Package middlewarectx содержит HTTP middleware авторизации.
//
// Auth проверяет наличие и валидность JWT токена сессии в заголовке
// Authorization, извлекает из него идентификатор, роль и почту
// пользователя и кладет их в контекст запроса. Это единственная точка
// авторизации для всех конечных точек приложения: биллинга, заметок,
// пользователей и профиля.
//
// Отсутствующая или невалидная сессия — HTTP 401. Роль вне списка
// разрешенных — HTTP 403. Паника при разборе сессии — HTTP 500.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/do-yard/do-starter-kit-sub000/internal/http/response"
	"github.com/do-yard/do-starter-kit-sub000/internal/lib/jwt"
	"github.com/do-yard/do-starter-kit-sub000/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// IdentityKey — ключ личности пользователя в контексте.
	IdentityKey Key = "identity"
)

// Identity личность вызывающего, полученная из токена сессии.
// Middleware ее только читает и никогда не мутирует.
type Identity struct {
	ID    string
	Role  models.Role
	Email string
}

// TokenParser описывает интерфейс разбора токена сессии.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.CustomClaims, error)
}

// Auth возвращает HTTP middleware, который проверяет JWT в заголовке
// Authorization и ограничивает доступ списком ролей, если он задан.
//
// Обернутый обработчик вызывается ровно один раз и получает Identity
// через контекст. Паники самого обработчика — зона ответственности
// Recoverer роутера, не этого middleware.
func Auth(log *slog.Logger, parser TokenParser, allowedRoles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Auth"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic while resolving session", slog.Any("panic", rec))
					w.WriteHeader(http.StatusInternalServerError)
					render.JSON(w, r, response.Error("internal server error"))
				}
			}()

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := parser.ParseToken(tokenStr)
			if err != nil || claims.UserID == "" || claims.Role == "" {
				log.Error("invalid or expired session token")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}

			identity := Identity{
				ID:    claims.UserID,
				Role:  models.Role(claims.Role),
				Email: claims.Email,
			}

			if len(allowedRoles) > 0 && !slices.Contains(allowedRoles, identity.Role) {
				log.Error("role is not allowed",
					slog.String("user_id", identity.ID),
					slog.String("role", string(identity.Role)))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("forbidden"))
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext извлекает личность вызывающего из контекста запроса.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(Identity)
	return identity, ok
}
