// Package webhook реализует HTTP-обработчик вебхуков биллинг-провайдера.
//
// Подпись HMAC-SHA256 от сырого тела запроса передается в заголовке
// X-Webhook-Signature в base64. Обработчик закрыт по умолчанию: отсутствие
// настроенного секрета, отсутствие подписи или несовпадение — HTTP 500,
// чтобы провайдер повторил доставку и ни одно событие не потерялось молча.
// Ошибка движка сверки — тоже 500 по той же причине. Успешно обработанные
// и неизвестные события подтверждаются телом {"status":200}.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/do-yard/do-starter-kit-sub000/internal/billing/reconcile"
	"github.com/do-yard/do-starter-kit-sub000/internal/lib/sl"
)

// SignatureHeader заголовок с подписью тела вебхука.
const SignatureHeader = "X-Webhook-Signature"

// Engine описывает интерфейс движка сверки.
type Engine interface {
	Process(ctx context.Context, evt *reconcile.Event) error
}

// Handler управляет HTTP-запросами вебхуков биллинга.
type Handler struct {
	log    *slog.Logger
	engine Engine
	secret string
}

// New создает новый Handler с переданными логгером, движком и секретом подписи.
func New(log *slog.Logger, engine Engine, secret string) *Handler {
	return &Handler{
		log:    log,
		engine: engine,
		secret: secret,
	}
}

// verify проверяет подпись HMAC-SHA256 сырого тела запроса.
func (h *Handler) verify(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ServeHTTP godoc
// @Summary Принять событие биллинг-провайдера
// @Description Проверяет подпись тела и применяет событие к локальным записям подписок.
// @Tags Billing
// @Accept json
// @Produce json
// @Param X-Webhook-Signature header string true "Подпись HMAC-SHA256 тела в base64"
// @Success 200 {object} map[string]int "Событие принято"
// @Failure 500 {object} map[string]string "Подпись не проверена или событие не обработано"
// @Router /billing/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if h.secret == "" {
		log.Error("webhook secret is not configured")
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "webhook is not configured"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "failed to read body"})
		return
	}

	signature := r.Header.Get(SignatureHeader)
	if signature == "" || !h.verify(body, signature) {
		log.Error("webhook signature verification failed")
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "signature verification failed"})
		return
	}

	var evt reconcile.Event
	if err := json.Unmarshal(body, &evt); err != nil {
		log.Error("failed to decode webhook event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "invalid event payload"})
		return
	}

	if err := h.engine.Process(r.Context(), &evt); err != nil {
		log.Error("failed to process webhook event",
			slog.String("type", evt.Type), sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "failed to process event"})
		return
	}

	log.Info("webhook event accepted", slog.String("type", evt.Type))
	render.JSON(w, r, map[string]int{"status": http.StatusOK})
}
