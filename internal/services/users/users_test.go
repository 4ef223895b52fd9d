package users

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/do-yard/do-starter-kit-sub000/internal/models"
	"github.com/do-yard/do-starter-kit-sub000/internal/storage/repository"
)

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.User), args.Int(1), args.Error(2)
}

func (m *UserRepoMock) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) error {
	return m.Called(ctx, id, upd).Error(0)
}

func (m *UserRepoMock) DeleteUser(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type SubRepoMock struct{ mock.Mock }

func (m *SubRepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) (string, error) {
	args := m.Called(ctx, sub)
	return args.String(0), args.Error(1)
}

func (m *SubRepoMock) GetSubscriptionByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *SubRepoMock) UpdateSubscription(ctx context.Context, id string, upd models.SubscriptionUpdate) error {
	return m.Called(ctx, id, upd).Error(0)
}

type ObjectStoreMock struct{ mock.Mock }

func (m *ObjectStoreMock) Upload(ctx context.Context, userID, filename string, data []byte) (string, error) {
	args := m.Called(ctx, userID, filename, data)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newService(users *UserRepoMock, subs *SubRepoMock, store *ObjectStoreMock) *Service {
	return New(users, subs, store, newNoopLogger())
}

func TestService_List_PaginationDefaults(t *testing.T) {
	users := new(UserRepoMock)
	users.On("ListUsers", mock.Anything, models.UserFilter{Page: 1, PageSize: 10}).
		Return([]*models.User{{ID: "u1"}}, 1, nil).Once()

	svc := newService(users, new(SubRepoMock), new(ObjectStoreMock))
	list, total, err := svc.List(context.Background(), models.UserFilter{Page: 0, PageSize: -5})

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	users.AssertExpectations(t)
}

func TestService_UpdateProfile(t *testing.T) {
	t.Run("updates name only", func(t *testing.T) {
		users := new(UserRepoMock)
		users.On("UpdateUser", mock.Anything, "u1", mock.MatchedBy(func(upd models.UserUpdate) bool {
			return upd.Name != nil && *upd.Name == "New Name" &&
				upd.Email == nil && upd.PasswordHash == nil
		})).Return(nil).Once()
		users.On("GetUserByID", mock.Anything, "u1").
			Return(&models.User{ID: "u1", Name: "New Name"}, nil).Once()

		svc := newService(users, new(SubRepoMock), new(ObjectStoreMock))
		user, err := svc.UpdateProfile(context.Background(), "u1", ProfileUpdate{
			Name: models.StringPtr("New Name"),
		})

		require.NoError(t, err)
		assert.Equal(t, "New Name", user.Name)
		users.AssertExpectations(t)
	})

	t.Run("password is hashed before write", func(t *testing.T) {
		users := new(UserRepoMock)
		users.On("UpdateUser", mock.Anything, "u1", mock.MatchedBy(func(upd models.UserUpdate) bool {
			return upd.PasswordHash != nil && *upd.PasswordHash != "new-password-123"
		})).Return(nil).Once()
		users.On("GetUserByID", mock.Anything, "u1").
			Return(&models.User{ID: "u1"}, nil).Once()

		svc := newService(users, new(SubRepoMock), new(ObjectStoreMock))
		_, err := svc.UpdateProfile(context.Background(), "u1", ProfileUpdate{
			Password: models.StringPtr("new-password-123"),
		})

		require.NoError(t, err)
		users.AssertExpectations(t)
	})
}

func TestService_UploadAvatar(t *testing.T) {
	t.Run("uploads and saves url", func(t *testing.T) {
		users := new(UserRepoMock)
		store := new(ObjectStoreMock)
		data := []byte("png-bytes")

		store.On("Upload", mock.Anything, "u1", "avatar.png", data).
			Return("https://cdn.example.com/u1/avatar.png", nil).Once()
		users.On("UpdateUser", mock.Anything, "u1", mock.MatchedBy(func(upd models.UserUpdate) bool {
			return upd.Image != nil && *upd.Image == "https://cdn.example.com/u1/avatar.png"
		})).Return(nil).Once()

		svc := newService(users, new(SubRepoMock), store)
		url, err := svc.UploadAvatar(context.Background(), "u1", "avatar.png", data)

		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/u1/avatar.png", url)
		users.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("storage error does not touch profile", func(t *testing.T) {
		users := new(UserRepoMock)
		store := new(ObjectStoreMock)

		store.On("Upload", mock.Anything, "u1", "avatar.png", mock.Anything).
			Return("", errors.New("upload failed")).Once()

		svc := newService(users, new(SubRepoMock), store)
		_, err := svc.UploadAvatar(context.Background(), "u1", "avatar.png", []byte("x"))

		assert.Error(t, err)
		users.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_UpdateUserSubscription(t *testing.T) {
	t.Run("creates row when subscription is missing", func(t *testing.T) {
		subs := new(SubRepoMock)
		subs.On("GetSubscriptionByUserID", mock.Anything, "u1").
			Return(nil, repository.ErrSubscriptionNotFound).Once()
		subs.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
			return sub.UserID == "u1" &&
				sub.Plan != nil && *sub.Plan == models.PlanPro &&
				sub.Status != nil && *sub.Status == models.StatusActive
		})).Return("sub-1", nil).Once()

		svc := newService(new(UserRepoMock), subs, new(ObjectStoreMock))
		err := svc.UpdateUserSubscription(context.Background(), "u1", models.PlanPro)

		require.NoError(t, err)
		subs.AssertExpectations(t)
	})

	t.Run("updates existing row", func(t *testing.T) {
		subs := new(SubRepoMock)
		subs.On("GetSubscriptionByUserID", mock.Anything, "u1").
			Return(&models.Subscription{ID: "sub-1", UserID: "u1"}, nil).Once()
		subs.On("UpdateSubscription", mock.Anything, "sub-1", mock.MatchedBy(func(upd models.SubscriptionUpdate) bool {
			return upd.Plan != nil && *upd.Plan == models.PlanFree &&
				upd.Status != nil && *upd.Status == models.StatusActive
		})).Return(nil).Once()

		svc := newService(new(UserRepoMock), subs, new(ObjectStoreMock))
		err := svc.UpdateUserSubscription(context.Background(), "u1", models.PlanFree)

		require.NoError(t, err)
		subs.AssertExpectations(t)
	})

	t.Run("lookup error propagates", func(t *testing.T) {
		subs := new(SubRepoMock)
		subs.On("GetSubscriptionByUserID", mock.Anything, "u1").
			Return(nil, errors.New("db down")).Once()

		svc := newService(new(UserRepoMock), subs, new(ObjectStoreMock))
		err := svc.UpdateUserSubscription(context.Background(), "u1", models.PlanPro)

		assert.Error(t, err)
		subs.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("deletes user", func(t *testing.T) {
		users := new(UserRepoMock)
		users.On("DeleteUser", mock.Anything, "u1").Return(nil).Once()

		svc := newService(users, new(SubRepoMock), new(ObjectStoreMock))
		require.NoError(t, svc.Delete(context.Background(), "u1"))
		users.AssertExpectations(t)
	})

	t.Run("not found passes through unwrapped", func(t *testing.T) {
		users := new(UserRepoMock)
		users.On("DeleteUser", mock.Anything, "ghost").
			Return(repository.ErrUserNotFound).Once()

		svc := newService(users, new(SubRepoMock), new(ObjectStoreMock))
		err := svc.Delete(context.Background(), "ghost")

		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})
}
