// Package email содержит клиент отправки писем и две его реализации:
// синхронную через SMTP и асинхронную через очередь сообщений. Веб-процесс
// обычно публикует письма в очередь, а доставляет их отдельный процесс.
package email

import (
	"context"

	"github.com/do-yard/do-starter-kit-sub000/internal/models"
)

// Client интерфейс отправки письма.
type Client interface {
	Send(ctx context.Context, msg models.EmailMessage) error
	// CheckConfiguration сообщает, настроен ли клиент.
	CheckConfiguration() error
}
