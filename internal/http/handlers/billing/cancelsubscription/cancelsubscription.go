// Package cancelsubscription реализует HTTP-обработчик отмены подписки.
//
// Обработчик отображает ошибки бизнес-логики в контракт API: отсутствие
// клиента у провайдера — 404, отсутствие активной подписки у провайдера —
// 400, расхождение с локальным хранилищем — 404.
package cancelsubscription

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

// Handler управляет HTTP-запросами на отмену подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики отмены подписки.
type Service interface {
	CancelSubscription(ctx context.Context, userID, email string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отменить подписку
// @Description Отменяет активную подписку у провайдера и помечает локальную запись отмененной.
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Подписка отменена"
// @Failure 400 {object} response.ErrorResponse "Нет активной подписки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Клиент или локальная запись не найдены"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /billing/subscription [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.cancelsubscription"
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

	err := h.service.CancelSubscription(r.Context(), identity.ID, identity.Email)
	switch {
	case err == nil:
	case errors.Is(err, billing.ErrCustomerNotFound):
		log.Info("billing customer not found", slog.String("user_id", identity.ID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("Customer not found"))
		return
	case errors.Is(err, billing.ErrNoActiveSubscription):
		log.Info("no active subscription", slog.String("user_id", identity.ID))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("No active subscription"))
		return
	case errors.Is(err, billing.ErrLocalSubscriptionMissing):
		log.Error("active subscription missing in storage", slog.String("user_id", identity.ID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("Active subscription not found in database"))
		return
	default:
		log.Error("failed to cancel subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not cancel subscription"))
		return
	}

	log.Info("subscription canceled", slog.String("user_id", identity.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{"canceled": true}))
}
