package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/do-yard/do-starter-kit-sub000/internal/lib/password"
	"github.com/do-yard/do-starter-kit-sub000/internal/models"
	"github.com/do-yard/do-starter-kit-sub000/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}
func (m *RepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type TokenMakerMock struct{ mock.Mock }

func (m *TokenMakerMock) GenerateToken(userID, role, email string) (string, error) {
	args := m.Called(userID, role, email)
	return args.String(0), args.Error(1)
}

type EmailMock struct{ mock.Mock }

func (m *EmailMock) Send(ctx context.Context, msg models.EmailMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestService_Register(t *testing.T) {
	t.Run("first user becomes admin", func(t *testing.T) {
		repo, tokens, email := new(RepoMock), new(TokenMakerMock), new(EmailMock)
		repo.On("GetUserByEmail", mock.Anything, "first@example.com").
			Return(nil, repository.ErrUserNotFound).Once()
		repo.On("CountUsers", mock.Anything).Return(0, nil).Once()
		repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Role == models.RoleAdmin && u.VerificationToken != nil && *u.VerificationToken != ""
		})).Return("user-1", nil).Once()
		email.On("Send", mock.Anything, mock.MatchedBy(func(msg models.EmailMessage) bool {
			return msg.To == "first@example.com"
		})).Return(nil).Once()

		svc := New(repo, tokens, email, newNoopLogger())
		result, err := svc.Register(context.Background(), "First", "first@example.com", "password123")

		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, result.Role)
		repo.AssertExpectations(t)
		email.AssertExpectations(t)
	})

	t.Run("subsequent users get user role", func(t *testing.T) {
		repo, tokens, email := new(RepoMock), new(TokenMakerMock), new(EmailMock)
		repo.On("GetUserByEmail", mock.Anything, "second@example.com").
			Return(nil, repository.ErrUserNotFound).Once()
		repo.On("CountUsers", mock.Anything).Return(3, nil).Once()
		repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Role == models.RoleUser
		})).Return("user-2", nil).Once()
		email.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

		svc := New(repo, tokens, email, newNoopLogger())
		result, err := svc.Register(context.Background(), "Second", "second@example.com", "password123")

		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, result.Role)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		repo, tokens, email := new(RepoMock), new(TokenMakerMock), new(EmailMock)
		repo.On("GetUserByEmail", mock.Anything, "dup@example.com").
			Return(&models.User{ID: "user-1", Email: "dup@example.com"}, nil).Once()

		svc := New(repo, tokens, email, newNoopLogger())
		_, err := svc.Register(context.Background(), "Dup", "dup@example.com", "password123")

		assert.ErrorIs(t, err, ErrUserExists)
		repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("email failure does not fail registration", func(t *testing.T) {
		repo, tokens, email := new(RepoMock), new(TokenMakerMock), new(EmailMock)
		repo.On("GetUserByEmail", mock.Anything, "u@example.com").
			Return(nil, repository.ErrUserNotFound).Once()
		repo.On("CountUsers", mock.Anything).Return(1, nil).Once()
		repo.On("CreateUser", mock.Anything, mock.Anything).Return("user-3", nil).Once()
		email.On("Send", mock.Anything, mock.Anything).
			Return(errors.New("queue unavailable")).Once()

		svc := New(repo, tokens, email, newNoopLogger())
		result, err := svc.Register(context.Background(), "U", "u@example.com", "password123")

		require.NoError(t, err)
		assert.Equal(t, "user-3", result.UserID)
	})
}

func TestService_Login(t *testing.T) {
	hash, err := password.GetHash("correct-password")
	require.NoError(t, err)
	user := &models.User{
		ID:           "user-1",
		Email:        "u@example.com",
		PasswordHash: hash,
		Role:         models.RoleUser,
	}

	t.Run("valid credentials mint token", func(t *testing.T) {
		repo, tokens, email := new(RepoMock), new(TokenMakerMock), new(EmailMock)
		repo.On("GetUserByEmail", mock.Anything, "u@example.com").Return(user, nil).Once()
		tokens.On("GenerateToken", "user-1", "USER", "u@example.com").
			Return("token-abc", nil).Once()

		svc := New(repo, tokens, email, newNoopLogger())
		token, err := svc.Login(context.Background(), "u@example.com", "correct-password")

		require.NoError(t, err)
		assert.Equal(t, "token-abc", token)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo, tokens, email := new(RepoMock), new(TokenMakerMock), new(EmailMock)
		repo.On("GetUserByEmail", mock.Anything, "u@example.com").Return(user, nil).Once()

		svc := New(repo, tokens, email, newNoopLogger())
		_, err := svc.Login(context.Background(), "u@example.com", "wrong-password")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo, tokens, email := new(RepoMock), new(TokenMakerMock), new(EmailMock)
		repo.On("GetUserByEmail", mock.Anything, "nobody@example.com").
			Return(nil, repository.ErrUserNotFound).Once()

		svc := New(repo, tokens, email, newNoopLogger())
		_, err := svc.Login(context.Background(), "nobody@example.com", "password")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
