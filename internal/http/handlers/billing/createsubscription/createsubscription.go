// Package createsubscription реализует HTTP-обработчик оформления подписки.
//
// Обработчик принимает price id тарифа, оформляет подписку у провайдера и
// возвращает client secret для завершения оплаты на фронтенде.
package createsubscription

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/do-yard/do-starter-kit-sub000/internal/http/middlewarectx"
	"github.com/do-yard/do-starter-kit-sub000/internal/http/response"
	"github.com/do-yard/do-starter-kit-sub000/internal/lib/sl"
)

// Handler управляет HTTP-запросами на оформление подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики оформления подписки.
type Service interface {
	CreateSubscription(ctx context.Context, userID, email, priceID string) (string, error)
}

// Request структура запроса оформления подписки.
type Request struct {
	PriceID string `json:"priceId"`
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Оформить подписку
// @Description Создает подписку на указанный тариф и возвращает client secret для оплаты.
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Price id тарифа"
// @Success 200 {object} map[string]any "Client secret"
// @Failure 400 {object} response.ErrorResponse "Не указан price id"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /billing/subscription [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.createsubscription"
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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if req.PriceID == "" {
		log.Error("missing price id")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("priceId is required"))
		return
	}

	clientSecret, err := h.service.CreateSubscription(r.Context(), identity.ID, identity.Email, req.PriceID)
	if err != nil {
		log.Error("failed to create subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create subscription"))
		return
	}

	log.Info("subscription created", slog.String("user_id", identity.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{"clientSecret": clientSecret}))
}
