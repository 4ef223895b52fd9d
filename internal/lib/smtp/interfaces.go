package smtp

import "io"

// Client минимальный интерфейс SMTP клиента, достаточный для отправки письма.
// Выделен, чтобы сервис отправки можно было тестировать без реального сервера.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}
