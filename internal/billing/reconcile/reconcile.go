// Package reconcile реализует движок сверки локальных записей подписок
// с событиями внешнего биллинг-провайдера.
//
// Каждый обработчик события пишет абсолютное целевое состояние, а не
// дельту, поэтому повторная доставка того же события безопасна: двукратное
// применение дает то же конечное состояние, что и однократное. Порядок
// доставки разных событий не гарантируется и не требуется.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/do-yard/do-starter-kit-sub000/internal/models"
)

// Ошибки обязательных полей события. Движок намеренно не ловит их сам:
// они поднимаются до диспетчера вебхука, который отвечает провайдеру 500,
// и провайдер повторяет доставку.
var (
	// ErrMissingCustomer в событии нет идентификатора клиента.
	ErrMissingCustomer = errors.New("missing customer id in event payload")
	// ErrMissingPrice в событии нет идентификатора тарифа.
	ErrMissingPrice = errors.New("missing price id in event payload")
)

// SubscriptionRepository определяет единственный метод записи, нужный
// движку: обновление по внешнему customer_id.
type SubscriptionRepository interface {
	UpdateSubscriptionByCustomerID(ctx context.Context, customerID string, upd models.SubscriptionUpdate) error
}

// PriceIDs идентификаторы тарифов провайдера, на которые отображаются
// локальные планы.
type PriceIDs struct {
	Pro  string
	Free string
}

// Engine движок сверки.
type Engine struct {
	repo   SubscriptionRepository
	prices PriceIDs
	log    *slog.Logger
}

// New создает движок сверки.
func New(repo SubscriptionRepository, prices PriceIDs, log *slog.Logger) *Engine {
	return &Engine{
		repo:   repo,
		prices: prices,
		log:    log,
	}
}

// Process обрабатывает одно событие вебхука. Неизвестные типы событий
// подтверждаются без побочных эффектов — провайдер вводит новые типы
// в любой момент, и система не должна падать на них.
func (e *Engine) Process(ctx context.Context, evt *Event) error {
	const op = "reconcile.Process"

	switch ParseEventType(evt.Type) {
	case EventSubscriptionCreated:
		return e.handleCreated(ctx, evt)
	case EventSubscriptionUpdated:
		return e.handleUpdated(ctx, evt)
	case EventSubscriptionDeleted:
		return e.handleDeleted(ctx, evt)
	case EventUnknown:
		fallthrough
	default:
		e.log.Info("unhandled webhook event", slog.String("op", op), slog.String("type", evt.Type))
		return nil
	}
}

func (e *Engine) handleCreated(ctx context.Context, evt *Event) error {
	const op = "reconcile.handleCreated"

	customerID := evt.CustomerID()
	if customerID == "" {
		return fmt.Errorf("%s: %w", op, ErrMissingCustomer)
	}

	upd := models.SubscriptionUpdate{
		Status: models.StatusPtr(models.StatusActive),
	}
	if e.prices.Pro != "" && evt.PriceID() == e.prices.Pro {
		upd.Plan = models.PlanPtr(models.PlanPro)
	}

	if err := e.repo.UpdateSubscriptionByCustomerID(ctx, customerID, upd); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	e.log.Info("subscription activated",
		slog.String("customer_id", customerID),
		slog.Any("plan", upd.Plan))
	return nil
}

func (e *Engine) handleUpdated(ctx context.Context, evt *Event) error {
	const op = "reconcile.handleUpdated"

	customerID := evt.CustomerID()
	if customerID == "" {
		return fmt.Errorf("%s: %w", op, ErrMissingCustomer)
	}
	priceID := evt.PriceID()
	if priceID == "" {
		return fmt.Errorf("%s: %w", op, ErrMissingPrice)
	}

	var plan models.Plan
	switch priceID {
	case e.prices.Pro:
		plan = models.PlanPro
	case e.prices.Free:
		plan = models.PlanFree
	default:
		// Неизвестный тариф: локальное состояние не трогаем.
		e.log.Warn("unknown price id, leaving local subscription untouched",
			slog.String("op", op),
			slog.String("customer_id", customerID),
			slog.String("price_id", priceID))
		return nil
	}

	upd := models.SubscriptionUpdate{
		Plan:   &plan,
		Status: models.StatusPtr(models.StatusActive),
	}
	if err := e.repo.UpdateSubscriptionByCustomerID(ctx, customerID, upd); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	e.log.Info("subscription updated",
		slog.String("customer_id", customerID),
		slog.String("plan", string(plan)))
	return nil
}

func (e *Engine) handleDeleted(ctx context.Context, evt *Event) error {
	const op = "reconcile.handleDeleted"

	customerID := evt.CustomerID()
	if customerID == "" {
		return fmt.Errorf("%s: %w", op, ErrMissingCustomer)
	}

	// План остается последним известным, меняется только статус.
	upd := models.SubscriptionUpdate{
		Status: models.StatusPtr(models.StatusCanceled),
	}
	if err := e.repo.UpdateSubscriptionByCustomerID(ctx, customerID, upd); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	e.log.Info("subscription canceled", slog.String("customer_id", customerID))
	return nil
}
