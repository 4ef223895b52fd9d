// Package users содержит бизнес-логику управления пользователями:
// административный список с фильтрами, редактирование профиля, загрузку
// аватара и принудительную смену тарифа администратором.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/do-yard/do-starter-kit-sub000/internal/lib/password"
	"github.com/do-yard/do-starter-kit-sub000/internal/models"
	"github.com/do-yard/do-starter-kit-sub000/internal/storage/repository"
)

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	// GetUserByID возвращает пользователя по ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// ListUsers возвращает страницу пользователей и общее количество по фильтру.
	ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, int, error)
	// UpdateUser частично обновляет пользователя по ID.
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate) error
	// DeleteUser удаляет пользователя по ID.
	DeleteUser(ctx context.Context, id string) error
}

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, sub models.Subscription) (string, error)
	GetSubscriptionByUserID(ctx context.Context, userID string) (*models.Subscription, error)
	UpdateSubscription(ctx context.Context, id string, upd models.SubscriptionUpdate) error
}

// ObjectStore загружает пользовательские файлы.
type ObjectStore interface {
	Upload(ctx context.Context, userID, filename string, data []byte) (string, error)
}

// Service реализует операции управления пользователями.
type Service struct {
	users   UserRepository
	subs    SubscriptionRepository
	storage ObjectStore
	log     *slog.Logger
}

// New создает новый экземпляр Service.
func New(users UserRepository, subs SubscriptionRepository, storage ObjectStore, log *slog.Logger) *Service {
	return &Service{
		users:   users,
		subs:    subs,
		storage: storage,
		log:     log,
	}
}

// List возвращает страницу пользователей и общее количество по фильтру.
func (s *Service) List(ctx context.Context, filter models.UserFilter) ([]*models.User, int, error) {
	const op = "services.users.List"

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 10
	}

	list, total, err := s.users.ListUsers(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return list, total, nil
}

// Get возвращает пользователя по ID.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	const op = "services.users.Get"

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// ProfileUpdate поля профиля, которые пользователь может изменить сам.
// Поле nil означает "не менять".
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Password *string
}

// UpdateProfile обновляет имя, почту и пароль текущего пользователя.
// Пароль хэшируется перед записью.
func (s *Service) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {
	const op = "services.users.UpdateProfile"

	fields := models.UserUpdate{
		Name:  upd.Name,
		Email: upd.Email,
	}
	if upd.Password != nil {
		hash, err := password.GetHash(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		fields.PasswordHash = &hash
	}

	if err := s.users.UpdateUser(ctx, userID, fields); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// UploadAvatar загружает аватар в объектное хранилище и сохраняет его URL
// в профиле пользователя.
func (s *Service) UploadAvatar(ctx context.Context, userID, filename string, data []byte) (string, error) {
	const op = "services.users.UploadAvatar"

	url, err := s.storage.Upload(ctx, userID, filename, data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdateUser(ctx, userID, models.UserUpdate{Image: &url}); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return url, nil
}

// Update частично обновляет пользователя (административная операция).
func (s *Service) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	const op = "services.users.Update"

	if err := s.users.UpdateUser(ctx, id, upd); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// UpdateUserSubscription принудительно выставляет тариф пользователя
// (административная операция, например выдача подарочного тарифа).
// Если записи подписки нет, она создается.
func (s *Service) UpdateUserSubscription(ctx context.Context, userID string, plan models.Plan) error {
	const op = "services.users.UpdateUserSubscription"

	sub, err := s.subs.GetSubscriptionByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			_, err = s.subs.CreateSubscription(ctx, models.Subscription{
				UserID: userID,
				Plan:   &plan,
				Status: models.StatusPtr(models.StatusActive),
			})
			if err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.subs.UpdateSubscription(ctx, sub.ID, models.SubscriptionUpdate{
		Plan:   &plan,
		Status: models.StatusPtr(models.StatusActive),
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Delete удаляет пользователя (административная операция).
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "services.users.Delete"

	if err := s.users.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
