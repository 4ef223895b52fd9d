// Package sender содержит бизнес-логику процесса-отправителя писем:
// разбор сообщений из очереди и доставку через почтовый клиент.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/do-yard/do-starter-kit-sub000/internal/models"
)

// EmailClient доставляет письмо получателю.
type EmailClient interface {
	Send(ctx context.Context, msg models.EmailMessage) error
}

// Service обрабатывает сообщения очереди исходящих писем.
type Service struct {
	client EmailClient
	log    *slog.Logger
}

// New создает новый экземпляр Service.
func New(client EmailClient, log *slog.Logger) *Service {
	return &Service{client: client, log: log}
}

// HandleEmailMessage разбирает сообщение очереди и отправляет письмо.
// Ошибка возвращается вызывающему, чтобы сообщение было переотправлено.
func (s *Service) HandleEmailMessage(body []byte) error {
	const op = "services.sender.HandleEmailMessage"

	var msg models.EmailMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if msg.To == "" {
		return fmt.Errorf("%s: empty recipient", op)
	}

	if err := s.client.Send(context.Background(), msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("email delivered", slog.String("to", msg.To), slog.String("subject", msg.Subject))
	return nil
}
