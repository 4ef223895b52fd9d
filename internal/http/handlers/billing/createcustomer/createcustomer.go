// Package createcustomer реализует HTTP-обработчик привязки пользователя
// к клиенту биллинг-провайдера.
//
// Обработчик сначала ищет существующего клиента по почте, затем создает
// нового; локальная запись подписки получает customer id с пустыми тарифом
// и статусом. Повторный вызов возвращает уже существующую привязку.
package createcustomer

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/do-yard/do-starter-kit-sub000/internal/http/middlewarectx"
	"github.com/do-yard/do-starter-kit-sub000/internal/http/response"
	"github.com/do-yard/do-starter-kit-sub000/internal/lib/sl"
)

// Handler управляет HTTP-запросами на привязку клиента биллинга.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики привязки клиента.
type Service interface {
	EnsureCustomer(ctx context.Context, userID, email string) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Привязать клиента биллинга
// @Description Находит или создает клиента у биллинг-провайдера для текущего пользователя.
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Идентификатор клиента"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /billing/customer [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.createcustomer"
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

	customerID, err := h.service.EnsureCustomer(r.Context(), identity.ID, identity.Email)
	if err != nil {
		log.Error("failed to ensure billing customer", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create billing customer"))
		return
	}

	log.Info("billing customer ensured", slog.String("customer_id", customerID))
	render.JSON(w, r, response.OKWithData(map[string]any{"customerId": customerID}))
}
