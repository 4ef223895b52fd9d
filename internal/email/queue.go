package email

import (
	"context"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/do-yard/do-starter-kit-sub000/internal/models"
	"github.com/do-yard/do-starter-kit-sub000/internal/rabbitmq"
)

// QueuePublisher публикует письма в очередь сообщений; доставкой
// занимается отдельный процесс-отправитель.
type QueuePublisher struct {
	ch *amqp.Channel
}

// NewQueuePublisher создает асинхронный клиент поверх канала RabbitMQ.
func NewQueuePublisher(ch *amqp.Channel) *QueuePublisher {
	return &QueuePublisher{ch: ch}
}

// CheckConfiguration возвращает ErrNotConfigured, если канал не открыт.
func (p *QueuePublisher) CheckConfiguration() error {
	if p.ch == nil {
		return ErrNotConfigured
	}
	return nil
}

// Send публикует письмо в очередь исходящих.
func (p *QueuePublisher) Send(ctx context.Context, msg models.EmailMessage) error {
	const op = "email.QueuePublisher.Send"
	if err := p.CheckConfiguration(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if err := rabbitmq.PublishMessage(p.ch, rabbitmq.EmailExchange, rabbitmq.EmailRoutingKey, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
