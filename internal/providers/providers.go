// Package providers содержит фабрики конкретных реализаций внешних
// зависимостей: базы данных, биллинга, объектного хранилища и почты.
//
// Выбор реализации — закрытое перечисление, проверяемое при старте:
// нераспознанное значение конфига — ошибка запуска, а не тихий дефолт.
// Фабрики чисты относительно конфига и не имеют побочных эффектов,
// кроме конструирования клиента. Реализация, которой не хватает учетных
// данных, создается в состоянии "не настроена" и сообщает об этом через
// CheckConfiguration — так "неправильные ключи" отличимы от "сломан код".
package providers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/do-yard/do-starter-kit-sub000/internal/billing/stripeapi"
	"github.com/do-yard/do-starter-kit-sub000/internal/config"
	"github.com/do-yard/do-starter-kit-sub000/internal/email"
	smtplib "github.com/do-yard/do-starter-kit-sub000/internal/lib/smtp"
	"github.com/do-yard/do-starter-kit-sub000/internal/models"
	"github.com/do-yard/do-starter-kit-sub000/internal/objectstore"
	"github.com/do-yard/do-starter-kit-sub000/internal/storage/repository"
)

// DatabaseProvider выбор реализации базы данных.
type DatabaseProvider string

// BillingProvider выбор биллинг-провайдера.
type BillingProvider string

// StorageProvider выбор объектного хранилища.
type StorageProvider string

// EmailProvider выбор способа отправки почты.
type EmailProvider string

const (
	// DatabasePostgres реляционное хранилище PostgreSQL.
	DatabasePostgres DatabaseProvider = "Postgres"
	// BillingStripe внешний биллинг-провайдер Stripe.
	BillingStripe BillingProvider = "Stripe"
	// StorageCloudinary объектное хранилище Cloudinary.
	StorageCloudinary StorageProvider = "Cloudinary"
	// EmailSMTP синхронная отправка через SMTP.
	EmailSMTP EmailProvider = "SMTP"
	// EmailRabbitMQ асинхронная отправка через очередь сообщений.
	EmailRabbitMQ EmailProvider = "RabbitMQ"
)

// Database типизированный интерфейс хранилища, от которого зависят
// обработчики и сервисы. Единственная реализация — PostgreSQL.
type Database interface {
	// CheckDatabaseReady проверяет готовность базы данных.
	CheckDatabaseReady(ctx context.Context) error

	// users
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CountUsers(ctx context.Context) (int, error)
	ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, int, error)
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate) error
	ClearVerificationToken(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error

	// subscriptions
	CreateSubscription(ctx context.Context, sub models.Subscription) (string, error)
	GetSubscriptionByUserID(ctx context.Context, userID string) (*models.Subscription, error)
	GetSubscriptionByUserAndStatus(ctx context.Context, userID string, status models.SubscriptionStatus) (*models.Subscription, error)
	UpdateSubscription(ctx context.Context, id string, upd models.SubscriptionUpdate) error
	UpdateSubscriptionByCustomerID(ctx context.Context, customerID string, upd models.SubscriptionUpdate) error
	DeleteSubscription(ctx context.Context, id string) error

	// notes
	CreateNote(ctx context.Context, note models.Note) (string, error)
	GetNoteByID(ctx context.Context, id string) (*models.Note, error)
	ListNotesByUser(ctx context.Context, userID string, limit, offset int, search string) ([]*models.Note, error)
	UpdateNote(ctx context.Context, id string, upd models.NoteUpdate) error
	DeleteNote(ctx context.Context, id string) error
}

// BillingClient типизированный интерфейс биллинг-провайдера.
// Все операции — тонкие проксирования к API провайдера без локальных записей.
type BillingClient interface {
	ListCustomersByEmail(ctx context.Context, email string) (*stripeapi.Customer, error)
	CreateCustomer(ctx context.Context, email string, metadata map[string]string) (*stripeapi.Customer, error)
	ListActiveSubscriptions(ctx context.Context, customerID string) ([]stripeapi.Subscription, error)
	CreateSubscription(ctx context.Context, customerID, priceID string) (*stripeapi.Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	UpdateSubscription(ctx context.Context, subscriptionID, itemID, newPriceID string) error
	CheckConfiguration() error
}

var databaseFactories = map[DatabaseProvider]func(cfg *config.Config) (Database, error){
	DatabasePostgres: func(cfg *config.Config) (Database, error) {
		return repository.New(cfg.StorageConnectionString)
	},
}

var billingFactories = map[BillingProvider]func(cfg *config.Config) (BillingClient, error){
	BillingStripe: func(cfg *config.Config) (BillingClient, error) {
		return stripeapi.NewClient(cfg.Billing.SecretKey, cfg.Billing.APIURL), nil
	},
}

var storageFactories = map[StorageProvider]func(cfg *config.Config) (objectstore.Client, error){
	StorageCloudinary: func(cfg *config.Config) (objectstore.Client, error) {
		return objectstore.NewCloudinary(cfg.Storage.CloudinaryURL)
	},
}

// NewDatabase создает реализацию базы данных, выбранную конфигом.
func NewDatabase(cfg *config.Config) (Database, error) {
	factory, ok := databaseFactories[DatabaseProvider(cfg.Providers.Database)]
	if !ok {
		return nil, fmt.Errorf("unknown database provider: %q", cfg.Providers.Database)
	}
	return factory(cfg)
}

// NewBilling создает клиента биллинг-провайдера, выбранного конфигом.
func NewBilling(cfg *config.Config) (BillingClient, error) {
	factory, ok := billingFactories[BillingProvider(cfg.Providers.Billing)]
	if !ok {
		return nil, fmt.Errorf("unknown billing provider: %q", cfg.Providers.Billing)
	}
	return factory(cfg)
}

// NewStorage создает клиента объектного хранилища, выбранного конфигом.
func NewStorage(cfg *config.Config) (objectstore.Client, error) {
	factory, ok := storageFactories[StorageProvider(cfg.Providers.Storage)]
	if !ok {
		return nil, fmt.Errorf("unknown storage provider: %q", cfg.Providers.Storage)
	}
	return factory(cfg)
}

// NewEmail создает клиента отправки почты, выбранного конфигом.
// Для асинхронного варианта требуется открытый канал RabbitMQ.
func NewEmail(cfg *config.Config, log *slog.Logger, ch *amqp.Channel) (email.Client, error) {
	switch EmailProvider(cfg.Providers.Email) {
	case EmailSMTP:
		transport := smtplib.NewTransport(cfg.SMTP, log)
		return email.NewSMTPClient(transport, cfg.SMTP.SMTPHost), nil
	case EmailRabbitMQ:
		return email.NewQueuePublisher(ch), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %q", cfg.Providers.Email)
	}
}
