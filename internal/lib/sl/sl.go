// Package sl содержит вспомогательные функции для логгера slog.
// Все обработчики и сервисы приложения логируют ошибки через sl.Err,
// чтобы поле "error" имело единый вид по всему логу.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
//
// Пример:
//
//	log.Error("failed to cancel subscription", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
