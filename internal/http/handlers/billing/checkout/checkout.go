// Package checkout реализует HTTP-обработчик начала оформления тарифа PRO.
//
// Обработчик требует настроенного price id тарифа PRO и существующей
// локальной привязки к клиенту провайдера; возвращает client secret.
package checkout

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

// Handler управляет HTTP-запросами на оформление тарифа PRO.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики оформления тарифа PRO.
type Service interface {
	Checkout(ctx context.Context, userID string) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Начать оформление тарифа PRO
// @Description Создает подписку на тариф PRO и возвращает client secret для оплаты.
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Client secret"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Нет локальной записи подписки"
// @Failure 500 {object} response.ErrorResponse "Тариф PRO не настроен или ошибка сервера"
// @Router /billing/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkout"
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

	clientSecret, err := h.service.Checkout(r.Context(), identity.ID)
	switch {
	case err == nil:
	case errors.Is(err, billing.ErrProPriceNotConfigured):
		log.Error("pro price id is not configured")
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("pro plan is not configured"))
		return
	case errors.Is(err, billing.ErrNoSubscription):
		log.Info("no subscription record", slog.String("user_id", identity.ID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("No subscription found"))
		return
	default:
		log.Error("failed to start checkout", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not start checkout"))
		return
	}

	log.Info("checkout started", slog.String("user_id", identity.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{"clientSecret": clientSecret}))
}
