package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/do-yard/do-starter-kit-sub000/internal/lib/smtp"
	"github.com/do-yard/do-starter-kit-sub000/internal/models"
)

// ErrNotConfigured клиент создан без настроек почтового транспорта.
var ErrNotConfigured = errors.New("email client is not configured")

// SMTPClient отправляет письма напрямую через SMTP транспорт.
type SMTPClient struct {
	transport *smtp.Transport
	host      string
}

// NewSMTPClient создает синхронный SMTP клиент.
func NewSMTPClient(transport *smtp.Transport, host string) *SMTPClient {
	return &SMTPClient{transport: transport, host: host}
}

// CheckConfiguration возвращает ErrNotConfigured при отсутствии адреса сервера.
func (c *SMTPClient) CheckConfiguration() error {
	if c.host == "" {
		return ErrNotConfigured
	}
	return nil
}

// Send устанавливает соединение, отправляет письмо и закрывает сессию.
func (c *SMTPClient) Send(ctx context.Context, msg models.EmailMessage) error {
	const op = "email.SMTPClient.Send"
	if err := c.CheckConfiguration(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	client, err := c.transport.Connect()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = client.Close()
	}()

	from := c.transport.From()
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	content := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		from, msg.To, msg.Subject, msg.Body)
	if _, err := wc.Write([]byte(content)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return client.Quit()
}
