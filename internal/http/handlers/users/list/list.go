// Package list реализует административный HTTP-обработчик списка
// пользователей с фильтрами по имени, тарифу и статусу подписки.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/do-yard/do-starter-kit-sub000/internal/http/response"
	"github.com/do-yard/do-starter-kit-sub000/internal/lib/sl"
	"github.com/do-yard/do-starter-kit-sub000/internal/models"
)

// Handler управляет HTTP-запросами на список пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка пользователей.
type Service interface {
	List(ctx context.Context, filter models.UserFilter) ([]*models.User, int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// userView представление пользователя в ответе списка, без хеша пароля
// и токена подтверждения.
type userView struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Image         string      `json:"image,omitempty"`
	Role          models.Role `json:"role"`
	EmailVerified bool        `json:"emailVerified"`
}

// ServeHTTP godoc
// @Summary Список пользователей
// @Description Возвращает страницу пользователей с фильтрами. Только для администратора.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Номер страницы"
// @Param page_size query int false "Размер страницы"
// @Param search query string false "Подстрока имени"
// @Param plan query string false "Фильтр по тарифу"
// @Param status query string false "Фильтр по статусу подписки"
// @Success 200 {object} map[string]any "Страница пользователей"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	query := r.URL.Query()
	filter := models.UserFilter{Search: query.Get("search")}
	filter.Page, _ = strconv.Atoi(query.Get("page"))
	filter.PageSize, _ = strconv.Atoi(query.Get("page_size"))
	if plan := query.Get("plan"); plan != "" {
		filter.Plan = models.PlanPtr(models.Plan(plan))
	}
	if status := query.Get("status"); status != "" {
		filter.Status = models.StatusPtr(models.SubscriptionStatus(status))
	}

	users, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list users"))
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, userView{
			ID:            u.ID,
			Name:          u.Name,
			Email:         u.Email,
			Image:         u.Image,
			Role:          u.Role,
			EmailVerified: u.EmailVerified,
		})
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"users": views,
		"total": total,
	}))
}
