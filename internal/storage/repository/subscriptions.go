package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/do-yard/do-starter-kit-sub000/internal/models"
)

// CreateSubscription вставляет новую запись подписки и возвращает её ID.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (string, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO subscriptions (user_id, customer_id, plan, status)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		sub.UserID, sub.CustomerID, sub.Plan, sub.Status).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetSubscriptionByUserID возвращает первую (текущую) подписку пользователя.
// Порядок детерминированный: самая ранняя запись. Возвращает
// ErrSubscriptionNotFound, если записей нет.
func (s *Storage) GetSubscriptionByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByUserID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, customer_id, plan, status, created_at
			  FROM subscriptions
			  WHERE user_id = $1
			  ORDER BY created_at, id
			  LIMIT 1`
	return s.scanSubscription(s.DB.QueryRowContext(ctx, query, userID), op)
}

// GetSubscriptionByUserAndStatus возвращает первую подписку пользователя
// с указанным статусом.
func (s *Storage) GetSubscriptionByUserAndStatus(ctx context.Context, userID string, status models.SubscriptionStatus) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByUserAndStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, customer_id, plan, status, created_at
			  FROM subscriptions
			  WHERE user_id = $1 AND status = $2
			  ORDER BY created_at, id
			  LIMIT 1`
	return s.scanSubscription(s.DB.QueryRowContext(ctx, query, userID, status), op)
}

func (s *Storage) scanSubscription(row *sql.Row, op string) (*models.Subscription, error) {
	var sub models.Subscription
	var customerID, plan, status sql.NullString
	if err := row.Scan(&sub.ID, &sub.UserID, &customerID, &plan, &status, &sub.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if customerID.Valid {
		sub.CustomerID = &customerID.String
	}
	if plan.Valid {
		p := models.Plan(plan.String)
		sub.Plan = &p
	}
	if status.Valid {
		st := models.SubscriptionStatus(status.String)
		sub.Status = &st
	}
	return &sub, nil
}

// UpdateSubscription выполняет частичное обновление подписки по её ID.
func (s *Storage) UpdateSubscription(ctx context.Context, id string, upd models.SubscriptionUpdate) error {
	const op = "storage.UpdateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET customer_id = COALESCE($1, customer_id),
			      plan = COALESCE($2, plan),
			      status = COALESCE($3, status)
			  WHERE id = $4`
	result, err := s.DB.ExecContext(ctx, query, upd.CustomerID, upd.Plan, upd.Status, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}
	return nil
}

// UpdateSubscriptionByCustomerID выполняет частичное обновление подписки по
// внешнему customer_id. Это основной путь записи для сверки по вебхукам:
// вызывающая сторона знает только внешний идентификатор клиента.
// Отсутствие строки с таким customer_id — ErrSubscriptionNotFound.
func (s *Storage) UpdateSubscriptionByCustomerID(ctx context.Context, customerID string, upd models.SubscriptionUpdate) error {
	const op = "storage.UpdateSubscriptionByCustomerID"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET plan = COALESCE($1, plan),
			      status = COALESCE($2, status)
			  WHERE customer_id = $3`
	result, err := s.DB.ExecContext(ctx, query, upd.Plan, upd.Status, customerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}
	return nil
}

// DeleteSubscription удаляет подписку по ID.
func (s *Storage) DeleteSubscription(ctx context.Context, id string) error {
	const op = "storage.DeleteSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}
	return nil
}
