// Package models содержит доменные структуры приложения: пользователей,
// подписки и заметки, а также перечисления ролей, тарифных планов и
// статусов подписки. Структуры используются в бизнес-логике и при работе
// с хранилищем.
package models

import "time"

// Role роль пользователя в системе.
type Role string

const (
	// RoleUser — обычный пользователь.
	RoleUser Role = "USER"
	// RoleAdmin — администратор, первый зарегистрированный пользователь.
	RoleAdmin Role = "ADMIN"
)

// Plan локальный тарифный план, на который отображается price id
// внешнего биллинг-провайдера.
type Plan string

const (
	// PlanFree — бесплатный тариф.
	PlanFree Plan = "FREE"
	// PlanPro — платный тариф.
	PlanPro Plan = "PRO"
	// PlanGift — подарочный тариф, выдается только администратором.
	PlanGift Plan = "GIFT"
)

// SubscriptionStatus статус локальной записи подписки.
type SubscriptionStatus string

const (
	// StatusPending — оплата начата, но еще не подтверждена провайдером.
	StatusPending SubscriptionStatus = "PENDING"
	// StatusActive — подписка активна.
	StatusActive SubscriptionStatus = "ACTIVE"
	// StatusCanceled — подписка отменена.
	StatusCanceled SubscriptionStatus = "CANCELED"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID                string     // Уникальный идентификатор пользователя
	Name              string     // Отображаемое имя
	Email             string     // Электронная почта (уникальная)
	PasswordHash      string     // Хэш пароля пользователя
	Image             string     // URL аватара в объектном хранилище
	Role              Role       // Роль пользователя
	EmailVerified     bool       // Подтвержден ли адрес почты
	VerificationToken *string    // Токен подтверждения почты (nil после подтверждения)
	CreatedAt         time.Time  // Дата создания
}

// UserUpdate описывает частичное обновление пользователя.
// Поле nil означает "не менять".
type UserUpdate struct {
	Name              *string
	Email             *string
	PasswordHash      *string
	Image             *string
	Role              *Role
	EmailVerified     *bool
	VerificationToken *string
}

// Subscription локальная запись подписки пользователя. CustomerID —
// ссылка на клиента у внешнего биллинг-провайдера, заполняется при первом
// обращении к биллингу. Plan и Status равны nil, пока провайдер не
// подтвердил подписку. У пользователя одновременно не более одной
// отслеживаемой подписки.
type Subscription struct {
	ID         string
	UserID     string
	CustomerID *string
	Plan       *Plan
	Status     *SubscriptionStatus
	CreatedAt  time.Time
}

// SubscriptionUpdate описывает частичное обновление подписки.
// Поле nil означает "не менять".
type SubscriptionUpdate struct {
	CustomerID *string
	Plan       *Plan
	Status     *SubscriptionStatus
}

// Note заметка пользователя. Доступ к заметке имеет только владелец.
type Note struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	CreatedAt time.Time
}

// NoteUpdate описывает частичное обновление заметки.
type NoteUpdate struct {
	Title   *string
	Content *string
}

// UserFilter параметры выборки пользователей для административного списка.
// Фильтры объединяются по AND.
type UserFilter struct {
	Search   string              // Подстрока имени (без учета регистра)
	Plan     *Plan               // Фильтр по тарифу подписки
	Status   *SubscriptionStatus // Фильтр по статусу подписки
	Page     int
	PageSize int
}

// EmailMessage сообщение для отправки письма, публикуется в очередь
// и доставляется отдельным процессом.
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// PlanPtr возвращает указатель на значение тарифа.
func PlanPtr(p Plan) *Plan { return &p }

// StatusPtr возвращает указатель на значение статуса.
func StatusPtr(s SubscriptionStatus) *SubscriptionStatus { return &s }

// StringPtr возвращает указатель на строку.
func StringPtr(s string) *string { return &s }
