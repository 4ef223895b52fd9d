// Package auth содержит бизнес-логику регистрации и входа пользователей.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/do-yard/do-starter-kit-sub000/internal/lib/password"
	"github.com/do-yard/do-starter-kit-sub000/internal/lib/sl"
	"github.com/do-yard/do-starter-kit-sub000/internal/models"
	"github.com/do-yard/do-starter-kit-sub000/internal/storage/repository"
)

var (
	// ErrUserExists пользователь с такой почтой уже зарегистрирован.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials почта или пароль не подходят.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	// CreateUser добавляет нового пользователя и возвращает его ID.
	CreateUser(ctx context.Context, user models.User) (string, error)
	// GetUserByEmail возвращает пользователя по почте.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// CountUsers возвращает количество пользователей.
	CountUsers(ctx context.Context) (int, error)
}

// TokenMaker выпускает токены сессии.
type TokenMaker interface {
	GenerateToken(userID, role, email string) (string, error)
}

// EmailSender отправляет письма пользователю.
type EmailSender interface {
	Send(ctx context.Context, msg models.EmailMessage) error
}

// Service реализует регистрацию и вход.
type Service struct {
	repo   UserRepository
	tokens TokenMaker
	email  EmailSender
	log    *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo UserRepository, tokens TokenMaker, email EmailSender, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		email:  email,
		log:    log,
	}
}

// RegisterResult результат регистрации.
type RegisterResult struct {
	UserID string
	Role   models.Role
}

// Register регистрирует нового пользователя. Первый зарегистрированный
// пользователь становится администратором. Письмо с токеном подтверждения
// отправляется по возможности: сбой почты не откатывает регистрацию.
func (s *Service) Register(ctx context.Context, name, email, rawPassword string) (*RegisterResult, error) {
	const op = "services.auth.Register"

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	total, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	role := models.RoleUser
	if total == 0 {
		role = models.RoleAdmin
	}

	token := uuid.NewString()
	id, err := s.repo.CreateUser(ctx, models.User{
		Name:              name,
		Email:             email,
		PasswordHash:      hash,
		Role:              role,
		VerificationToken: &token,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.email.Send(ctx, models.EmailMessage{
		To:      email,
		Subject: "Verify your email",
		Body:    fmt.Sprintf("Hello %s! Your verification token: %s", name, token),
	}); err != nil {
		s.log.Warn("failed to send verification email", sl.Err(err))
	}

	return &RegisterResult{UserID: id, Role: role}, nil
}

// Login проверяет учетные данные и выпускает токен сессии.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (string, error) {
	const op = "services.auth.Login"

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, string(user.Role), user.Email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}
