package reconcile

import "strings"

// EventType закрытое перечисление принимаемых типов событий вебхука.
// Провайдер может в любой момент добавить новые типы, поэтому парсер
// возвращает EventUnknown вместо ошибки, а движок явно его игнорирует.
type EventType int

const (
	// EventUnknown неизвестный или неподдерживаемый тип события.
	EventUnknown EventType = iota
	// EventSubscriptionCreated подписка создана у провайдера.
	EventSubscriptionCreated
	// EventSubscriptionUpdated подписка изменена у провайдера.
	EventSubscriptionUpdated
	// EventSubscriptionDeleted подписка удалена у провайдера.
	EventSubscriptionDeleted
)

// ParseEventType сопоставляет строковый тип события провайдера закрытому
// перечислению.
func ParseEventType(s string) EventType {
	switch strings.ToLower(s) {
	case "customer.subscription.created":
		return EventSubscriptionCreated
	case "customer.subscription.updated":
		return EventSubscriptionUpdated
	case "customer.subscription.deleted":
		return EventSubscriptionDeleted
	default:
		return EventUnknown
	}
}

// Event полезная нагрузка события вебхука в том виде, в котором ее шлет
// провайдер.
type Event struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string `json:"id"`
			Customer string `json:"customer"`
			Items    struct {
				Data []struct {
					Price struct {
						ID string `json:"id"`
					} `json:"price"`
				} `json:"data"`
			} `json:"items"`
		} `json:"object"`
	} `json:"data"`
}

// CustomerID возвращает внешний идентификатор клиента из события.
func (e *Event) CustomerID() string {
	return e.Data.Object.Customer
}

// PriceID возвращает price id первой позиции подписки из события.
func (e *Event) PriceID() string {
	items := e.Data.Object.Items.Data
	if len(items) == 0 {
		return ""
	}
	return items[0].Price.ID
}
