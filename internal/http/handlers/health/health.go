// Package health реализует HTTP-обработчик проверки состояния сервиса.
//
// Ответ сообщает доступность базы данных и состояние настройки внешних
// клиентов. Ненастроенный клиент — не отказ сервиса: эндпоинт остается
// 200, чтобы отличать "не настроено" от "сломано".
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/do-yard/do-starter-kit-sub000/internal/lib/sl"
)

// DatabaseChecker проверяет доступность базы данных.
type DatabaseChecker interface {
	CheckDatabaseReady(ctx context.Context) error
}

// ConfigurationChecker сообщает, настроен ли внешний клиент.
type ConfigurationChecker interface {
	CheckConfiguration() error
}

// Handler управляет HTTP-запросами проверки состояния.
type Handler struct {
	log      *slog.Logger
	db       DatabaseChecker
	checkers map[string]ConfigurationChecker
}

// New создает новый Handler. Ключи checkers — имена компонентов в ответе.
func New(log *slog.Logger, db DatabaseChecker, checkers map[string]ConfigurationChecker) *Handler {
	return &Handler{
		log:      log,
		db:       db,
		checkers: checkers,
	}
}

// ServeHTTP godoc
// @Summary Состояние сервиса
// @Description Возвращает доступность базы данных и состояние настройки внешних клиентов.
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]any "Состояние компонентов"
// @Failure 503 {object} map[string]any "База данных недоступна"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	status := map[string]any{}

	dbErr := h.db.CheckDatabaseReady(r.Context())
	if dbErr != nil {
		log.Error("database is not ready", sl.Err(dbErr))
		status["database"] = "unavailable"
	} else {
		status["database"] = "ok"
	}

	for name, checker := range h.checkers {
		if err := checker.CheckConfiguration(); err != nil {
			status[name] = "not configured"
			continue
		}
		status[name] = "ok"
	}

	if dbErr != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	render.JSON(w, r, status)
}
