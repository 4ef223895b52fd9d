// Package billing содержит бизнес-логику работы с подписками: привязку
// пользователя к клиенту биллинг-провайдера, оформление, отмену и апгрейд
// подписки. Локальная запись подписки — отражение состояния провайдера;
// провайдер всегда источник истины.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/do-yard/do-starter-kit-sub000/internal/billing/stripeapi"
	"github.com/do-yard/do-starter-kit-sub000/internal/lib/sl"
	"github.com/do-yard/do-starter-kit-sub000/internal/models"
	"github.com/do-yard/do-starter-kit-sub000/internal/storage/repository"
)

var (
	// ErrCustomerNotFound у пользователя нет клиента у биллинг-провайдера.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrNoActiveSubscription у клиента нет активных подписок у провайдера.
	ErrNoActiveSubscription = errors.New("no active subscription")
	// ErrLocalSubscriptionMissing активная подписка провайдера не нашла
	// отражения в локальном хранилище.
	ErrLocalSubscriptionMissing = errors.New("active subscription not found in database")
	// ErrNoSubscription у пользователя нет локальной записи подписки.
	ErrNoSubscription = errors.New("no subscription found")
	// ErrProPriceNotConfigured тариф PRO не привязан к price id провайдера.
	ErrProPriceNotConfigured = errors.New("pro price id is not configured")
)

const cacheTTL = 5 * time.Minute

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// CreateSubscription добавляет запись подписки и возвращает её ID.
	CreateSubscription(ctx context.Context, sub models.Subscription) (string, error)
	// GetSubscriptionByUserID возвращает отслеживаемую подписку пользователя.
	GetSubscriptionByUserID(ctx context.Context, userID string) (*models.Subscription, error)
	// GetSubscriptionByUserAndStatus возвращает подписку пользователя с указанным статусом.
	GetSubscriptionByUserAndStatus(ctx context.Context, userID string, status models.SubscriptionStatus) (*models.Subscription, error)
	// UpdateSubscription обновляет запись подписки по ID.
	UpdateSubscription(ctx context.Context, id string, upd models.SubscriptionUpdate) error
}

// ProviderClient определяет операции биллинг-провайдера, нужные сервису.
type ProviderClient interface {
	ListCustomersByEmail(ctx context.Context, email string) (*stripeapi.Customer, error)
	CreateCustomer(ctx context.Context, email string, metadata map[string]string) (*stripeapi.Customer, error)
	ListActiveSubscriptions(ctx context.Context, customerID string) ([]stripeapi.Subscription, error)
	CreateSubscription(ctx context.Context, customerID, priceID string) (*stripeapi.Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	UpdateSubscription(ctx context.Context, subscriptionID, itemID, newPriceID string) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// PriceIDs соответствие локальных тарифов price id провайдера.
type PriceIDs struct {
	Pro  string
	Free string
}

// Service реализует операции биллинга для пользователя.
type Service struct {
	repo     SubscriptionRepository
	provider ProviderClient
	cache    Cache
	prices   PriceIDs
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo SubscriptionRepository, provider ProviderClient, cache Cache, prices PriceIDs, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		cache:    cache,
		prices:   prices,
		log:      log,
	}
}

func subscriptionCacheKey(userID string) string {
	return "billing:sub:" + userID
}

// SubscriptionInfo представление подписки для ответов API.
type SubscriptionInfo struct {
	CustomerID string                     `json:"customerId,omitempty"`
	Plan       *models.Plan               `json:"plan"`
	Status     *models.SubscriptionStatus `json:"status"`
}

// EnsureCustomer гарантирует, что пользователь привязан к клиенту
// биллинг-провайдера, и возвращает customer id. Сначала ищется локальная
// привязка, затем клиент у провайдера по почте; если нет ни того ни
// другого — клиент создается.
func (s *Service) EnsureCustomer(ctx context.Context, userID, email string) (string, error) {
	const op = "services.billing.EnsureCustomer"

	sub, err := s.repo.GetSubscriptionByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrSubscriptionNotFound) {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if sub != nil && sub.CustomerID != nil && *sub.CustomerID != "" {
		return *sub.CustomerID, nil
	}

	customer, err := s.provider.ListCustomersByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if customer == nil {
		customer, err = s.provider.CreateCustomer(ctx, email, map[string]string{"user_id": userID})
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	if sub == nil {
		_, err = s.repo.CreateSubscription(ctx, models.Subscription{
			UserID:     userID,
			CustomerID: &customer.ID,
		})
	} else {
		err = s.repo.UpdateSubscription(ctx, sub.ID, models.SubscriptionUpdate{
			CustomerID: &customer.ID,
		})
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Invalidate(subscriptionCacheKey(userID)); err != nil {
		s.log.Warn("failed to invalidate subscription cache", sl.Err(err))
	}
	return customer.ID, nil
}

// CreateSubscription оформляет подписку у провайдера и возвращает client
// secret для завершения оплаты на фронтенде. Локальная запись сразу
// помечается активной с тарифом, соответствующим выбранному price id.
func (s *Service) CreateSubscription(ctx context.Context, userID, email, priceID string) (string, error) {
	const op = "services.billing.CreateSubscription"

	customerID, err := s.EnsureCustomer(ctx, userID, email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	sub, err := s.provider.CreateSubscription(ctx, customerID, priceID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	plan := models.PlanFree
	if s.prices.Pro != "" && priceID == s.prices.Pro {
		plan = models.PlanPro
	}
	local, err := s.repo.GetSubscriptionByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateSubscription(ctx, local.ID, models.SubscriptionUpdate{
		Plan:   &plan,
		Status: models.StatusPtr(models.StatusActive),
	}); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Invalidate(subscriptionCacheKey(userID)); err != nil {
		s.log.Warn("failed to invalidate subscription cache", sl.Err(err))
	}
	return sub.ClientSecret(), nil
}

// GetSubscription возвращает подписку пользователя или nil, если записи
// нет. Результат кешируется.
func (s *Service) GetSubscription(ctx context.Context, userID string) (*SubscriptionInfo, error) {
	const op = "services.billing.GetSubscription"

	key := subscriptionCacheKey(userID)
	var cached SubscriptionInfo
	found, err := s.cache.Get(key, &cached)
	if err != nil {
		s.log.Warn("failed to read subscription cache", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	sub, err := s.repo.GetSubscriptionByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	info := SubscriptionInfo{Plan: sub.Plan, Status: sub.Status}
	if sub.CustomerID != nil {
		info.CustomerID = *sub.CustomerID
	}
	if err := s.cache.Set(key, info, cacheTTL); err != nil {
		s.log.Warn("failed to cache subscription", sl.Err(err))
	}
	return &info, nil
}

// CancelSubscription отменяет активную подписку пользователя у провайдера
// и помечает локальную запись отмененной.
func (s *Service) CancelSubscription(ctx context.Context, userID, email string) error {
	const op = "services.billing.CancelSubscription"

	customer, err := s.provider.ListCustomersByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if customer == nil {
		return ErrCustomerNotFound
	}

	active, err := s.provider.ListActiveSubscriptions(ctx, customer.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(active) == 0 {
		return ErrNoActiveSubscription
	}

	if err := s.provider.CancelSubscription(ctx, active[0].ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Отсутствие локальной активной записи после отмены у провайдера
	// означает расхождение состояний и возвращается вызывающему, а не
	// скрывается: у провайдера подписка уже отменена.
	local, err := s.repo.GetSubscriptionByUserAndStatus(ctx, userID, models.StatusActive)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return ErrLocalSubscriptionMissing
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.UpdateSubscription(ctx, local.ID, models.SubscriptionUpdate{
		Status: models.StatusPtr(models.StatusCanceled),
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Invalidate(subscriptionCacheKey(userID)); err != nil {
		s.log.Warn("failed to invalidate subscription cache", sl.Err(err))
	}
	return nil
}

// Checkout начинает оформление тарифа PRO для существующего клиента и
// возвращает client secret. Требует настроенного price id тарифа PRO и
// локальной привязки к клиенту провайдера.
func (s *Service) Checkout(ctx context.Context, userID string) (string, error) {
	const op = "services.billing.Checkout"

	if s.prices.Pro == "" {
		return "", ErrProPriceNotConfigured
	}

	local, err := s.repo.GetSubscriptionByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return "", ErrNoSubscription
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if local.CustomerID == nil || *local.CustomerID == "" {
		return "", ErrNoSubscription
	}

	sub, err := s.provider.CreateSubscription(ctx, *local.CustomerID, s.prices.Pro)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.UpdateSubscription(ctx, local.ID, models.SubscriptionUpdate{
		Plan:   models.PlanPtr(models.PlanPro),
		Status: models.StatusPtr(models.StatusPending),
	}); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Invalidate(subscriptionCacheKey(userID)); err != nil {
		s.log.Warn("failed to invalidate subscription cache", sl.Err(err))
	}
	return sub.ClientSecret(), nil
}

// UpgradeToPro переводит активную подписку пользователя на тариф PRO,
// заменяя тариф первой позиции подписки у провайдера.
func (s *Service) UpgradeToPro(ctx context.Context, userID, email string) error {
	const op = "services.billing.UpgradeToPro"

	if s.prices.Pro == "" {
		return ErrProPriceNotConfigured
	}

	customer, err := s.provider.ListCustomersByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if customer == nil {
		return ErrCustomerNotFound
	}

	active, err := s.provider.ListActiveSubscriptions(ctx, customer.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(active) == 0 {
		return ErrNoActiveSubscription
	}
	sub := active[0]
	if len(sub.Items.Data) == 0 {
		return fmt.Errorf("%s: subscription %s has no items", op, sub.ID)
	}

	if err := s.provider.UpdateSubscription(ctx, sub.ID, sub.Items.Data[0].ID, s.prices.Pro); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	local, err := s.repo.GetSubscriptionByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return ErrLocalSubscriptionMissing
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateSubscription(ctx, local.ID, models.SubscriptionUpdate{
		Plan:   models.PlanPtr(models.PlanPro),
		Status: models.StatusPtr(models.StatusActive),
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Invalidate(subscriptionCacheKey(userID)); err != nil {
		s.log.Warn("failed to invalidate subscription cache", sl.Err(err))
	}
	return nil
}
