// Package upgrade реализует HTTP-обработчик перевода подписки на тариф PRO.
//
// Обработчик заменяет тариф первой позиции активной подписки у провайдера
// и выставляет локальной записи тариф PRO со статусом ACTIVE.
package upgrade

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/do-yard/do-starter-kit-sub000/internal/http/middlewarectx"
	"github.com/do-yard/do-starter-kit-sub000/internal/http/response"
	"github.com/do-yard/do-starter-kit-sub000/internal/lib/sl"
	"github.com/do-yard/do-starter-kit-sub000/internal/services/billing"
)

// Handler управляет HTTP-запросами на апгрейд подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики апгрейда подписки.
type Service interface {
	UpgradeToPro(ctx context.Context, userID, email string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Перевести подписку на тариф PRO
// @Description Меняет тариф активной подписки у провайдера на PRO.
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Подписка переведена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Клиент или активная подписка не найдены"
// @Failure 500 {object} response.ErrorResponse "Тариф PRO не настроен или ошибка сервера"
// @Router /billing/upgrade [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.upgrade"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, ok := middlewarectx.IdentityFromContext(r.Context())
	if !ok {
		log.Error("identity not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	err := h.service.UpgradeToPro(r.Context(), identity.ID, identity.Email)
	switch {
	case err == nil:
	case errors.Is(err, billing.ErrCustomerNotFound):
		log.Info("billing customer not found", slog.String("user_id", identity.ID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("Customer not found"))
		return
	case errors.Is(err, billing.ErrNoActiveSubscription):
		log.Info("no active subscription", slog.String("user_id", identity.ID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("No active subscription"))
		return
	case errors.Is(err, billing.ErrProPriceNotConfigured):
		log.Error("pro price id is not configured")
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("pro plan is not configured"))
		return
	default:
		log.Error("failed to upgrade subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not upgrade subscription"))
		return
	}

	log.Info("subscription upgraded", slog.String("user_id", identity.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{"upgraded": true}))
}
