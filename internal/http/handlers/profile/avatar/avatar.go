// Package avatar реализует HTTP-обработчик загрузки аватара пользователя.
//
// Файл принимается как multipart/form-data в поле file, загружается в
// объектное хранилище и его публичный URL сохраняется в профиле.
package avatar

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/do-yard/do-starter-kit-sub000/internal/http/middlewarectx"
	"github.com/do-yard/do-starter-kit-sub000/internal/http/response"
	"github.com/do-yard/do-starter-kit-sub000/internal/lib/sl"
	"github.com/do-yard/do-starter-kit-sub000/internal/objectstore"
)

// Максимальный размер загружаемого файла.
const maxUploadSize = 5 << 20

// Handler управляет HTTP-запросами на загрузку аватара.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики загрузки аватара.
type Service interface {
	UploadAvatar(ctx context.Context, userID, filename string, data []byte) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Загрузить аватар
// @Description Загружает аватар текущего пользователя в объектное хранилище.
// @Tags Profile
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Файл аватара"
// @Success 200 {object} map[string]any "URL загруженного файла"
// @Failure 400 {object} response.ErrorResponse "Файл отсутствует или слишком велик"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Хранилище не настроено или ошибка сервера"
// @Router /profile/avatar [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.avatar"
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

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid upload"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Error("file is missing in form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("file is required"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error("failed to read uploaded file", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read file"))
		return
	}

	url, err := h.service.UploadAvatar(r.Context(), identity.ID, header.Filename, data)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotConfigured) {
			log.Error("object storage is not configured")
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("storage is not configured"))
			return
		}
		log.Error("failed to upload avatar", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not upload avatar"))
		return
	}

	log.Info("avatar uploaded", slog.String("user_id", identity.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{"url": url}))
}
