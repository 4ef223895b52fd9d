// Package remove реализует HTTP-обработчик удаления заметки.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/do-yard/do-starter-kit-sub000/internal/http/middlewarectx"
	"github.com/do-yard/do-starter-kit-sub000/internal/http/response"
	"github.com/do-yard/do-starter-kit-sub000/internal/lib/sl"
	"github.com/do-yard/do-starter-kit-sub000/internal/services/notes"
	"github.com/do-yard/do-starter-kit-sub000/internal/storage/repository"
)

// Handler управляет HTTP-запросами на удаление заметок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления заметки.
type Service interface {
	Delete(ctx context.Context, userID, noteID string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить заметку
// @Description Удаляет заметку текущего пользователя по ID.
// @Tags Notes
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID заметки"
// @Success 200 {object} map[string]any "Заметка удалена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Заметка принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Заметка не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /notes/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notes.remove"
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

	noteID := chi.URLParam(r, "id")
	err := h.service.Delete(r.Context(), identity.ID, noteID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNoteNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("note not found"))
		return
	case errors.Is(err, notes.ErrNotOwner):
		log.Info("foreign note access denied",
			slog.String("user_id", identity.ID), slog.String("note_id", noteID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("forbidden"))
		return
	default:
		log.Error("failed to delete note", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete note"))
		return
	}

	log.Info("note deleted", slog.String("note_id", noteID))
	render.JSON(w, r, response.OKWithData(map[string]any{"deleted": true}))
}
