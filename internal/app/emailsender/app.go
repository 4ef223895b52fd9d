// Package emailsender собирает процесс-отправитель писем: подключение
// к брокеру сообщений, SMTP транспорт и потребитель очереди исходящих.
package emailsender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/do-yard/do-starter-kit-sub000/internal/config"
	"github.com/do-yard/do-starter-kit-sub000/internal/email"
	smtplib "github.com/do-yard/do-starter-kit-sub000/internal/lib/smtp"
	"github.com/do-yard/do-starter-kit-sub000/internal/rabbitmq"
	senderservice "github.com/do-yard/do-starter-kit-sub000/internal/services/sender"
)

// App процесс-отправитель писем.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

// New собирает отправителя из конфига.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitConnectionString, cfg.ConnectRetries, cfg.ConnectDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetEmailQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	transport := smtplib.NewTransport(cfg.SMTP, logger)
	client := email.NewSMTPClient(transport, cfg.SMTP.SMTPHost)
	senderService := senderservice.New(client, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run запускает потребителя очереди и работает до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.EmailQueue, a.senderService.HandleEmailMessage)
	if err != nil {
		a.logger.Error("failed to start email queue consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("email sender shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	return nil
}
