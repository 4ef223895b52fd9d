// Package update реализует HTTP-обработчик частичного обновления заметки.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/do-yard/do-starter-kit-sub000/internal/http/middlewarectx"
	"github.com/do-yard/do-starter-kit-sub000/internal/http/response"
	"github.com/do-yard/do-starter-kit-sub000/internal/lib/sl"
	"github.com/do-yard/do-starter-kit-sub000/internal/models"
	"github.com/do-yard/do-starter-kit-sub000/internal/services/notes"
	"github.com/do-yard/do-starter-kit-sub000/internal/storage/repository"
)

// Handler управляет HTTP-запросами на обновление заметок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики обновления заметки.
type Service interface {
	Update(ctx context.Context, userID, noteID string, upd models.NoteUpdate) (*models.Note, error)
}

// Request структура запроса обновления заметки. Поле nil означает "не менять".
type Request struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Обновить заметку
// @Description Частично обновляет заметку текущего пользователя.
// @Tags Notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID заметки"
// @Param request body Request true "Изменяемые поля"
// @Success 200 {object} map[string]any "Обновленная заметка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Заметка принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Заметка не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /notes/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notes.update"
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

	noteID := chi.URLParam(r, "id")
	note, err := h.service.Update(r.Context(), identity.ID, noteID, models.NoteUpdate{
		Title:   req.Title,
		Content: req.Content,
	})
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
		log.Error("failed to update note", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update note"))
		return
	}

	log.Info("note updated", slog.String("note_id", noteID))
	render.JSON(w, r, response.OKWithData(note))
}
