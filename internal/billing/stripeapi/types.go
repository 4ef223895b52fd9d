package stripeapi

// Customer клиент у биллинг-провайдера.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Price тариф провайдера; локальный план определяется сравнением Price.ID
// с настроенными идентификаторами.
type Price struct {
	ID string `json:"id"`
}

// SubscriptionItem позиция подписки.
type SubscriptionItem struct {
	ID    string `json:"id"`
	Price Price  `json:"price"`
}

// PaymentIntent платежное намерение; ClientSecret передается фронтенду
// для завершения авторизации платежа.
type PaymentIntent struct {
	ClientSecret string `json:"client_secret"`
}

// Invoice счет, выставленный при создании подписки.
type Invoice struct {
	PaymentIntent *PaymentIntent `json:"payment_intent"`
}

// Subscription подписка на стороне провайдера.
type Subscription struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Items  struct {
		Data []SubscriptionItem `json:"data"`
	} `json:"items"`
	LatestInvoice *Invoice `json:"latest_invoice"`
}

// ClientSecret возвращает секрет для завершения оплаты, если провайдер
// его вернул.
func (s *Subscription) ClientSecret() string {
	if s.LatestInvoice != nil && s.LatestInvoice.PaymentIntent != nil {
		return s.LatestInvoice.PaymentIntent.ClientSecret
	}
	return ""
}

type customerList struct {
	Data []Customer `json:"data"`
}

type subscriptionList struct {
	Data []Subscription `json:"data"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
