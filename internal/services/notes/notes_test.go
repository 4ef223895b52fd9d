package notes

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/do-yard/do-starter-kit-sub000/internal/models"
	"github.com/do-yard/do-starter-kit-sub000/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateNote(ctx context.Context, note models.Note) (string, error) {
	args := m.Called(ctx, note)
	return args.String(0), args.Error(1)
}
func (m *RepoMock) GetNoteByID(ctx context.Context, id string) (*models.Note, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}
func (m *RepoMock) ListNotesByUser(ctx context.Context, userID string, limit, offset int, search string) ([]*models.Note, error) {
	args := m.Called(ctx, userID, limit, offset, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Note), args.Error(1)
}
func (m *RepoMock) UpdateNote(ctx context.Context, id string, upd models.NoteUpdate) error {
	return m.Called(ctx, id, upd).Error(0)
}
func (m *RepoMock) DeleteNote(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func ownNote() *models.Note {
	return &models.Note{ID: "note-1", UserID: "user-1", Title: "title", Content: "content"}
}

func foreignNote() *models.Note {
	return &models.Note{ID: "note-1", UserID: "user-2", Title: "title", Content: "content"}
}

func TestService_Get(t *testing.T) {
	t.Run("owner reads note", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetNoteByID", mock.Anything, "note-1").Return(ownNote(), nil).Once()

		svc := New(repo, newNoopLogger())
		note, err := svc.Get(context.Background(), "user-1", "note-1")

		require.NoError(t, err)
		assert.Equal(t, "title", note.Title)
	})

	t.Run("foreign note is rejected", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetNoteByID", mock.Anything, "note-1").Return(foreignNote(), nil).Once()

		svc := New(repo, newNoopLogger())
		_, err := svc.Get(context.Background(), "user-1", "note-1")

		assert.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("missing note", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetNoteByID", mock.Anything, "note-1").
			Return(nil, repository.ErrNoteNotFound).Once()

		svc := New(repo, newNoopLogger())
		_, err := svc.Get(context.Background(), "user-1", "note-1")

		assert.ErrorIs(t, err, repository.ErrNoteNotFound)
	})
}

func TestService_Update(t *testing.T) {
	t.Run("owner updates note", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetNoteByID", mock.Anything, "note-1").Return(ownNote(), nil).Twice()
		repo.On("UpdateNote", mock.Anything, "note-1",
			mock.MatchedBy(func(upd models.NoteUpdate) bool {
				return upd.Title != nil && *upd.Title == "new title" && upd.Content == nil
			})).Return(nil).Once()

		svc := New(repo, newNoopLogger())
		_, err := svc.Update(context.Background(), "user-1", "note-1", models.NoteUpdate{
			Title: models.StringPtr("new title"),
		})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("foreign note update does not touch storage", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetNoteByID", mock.Anything, "note-1").Return(foreignNote(), nil).Once()

		svc := New(repo, newNoopLogger())
		_, err := svc.Update(context.Background(), "user-1", "note-1", models.NoteUpdate{})

		assert.ErrorIs(t, err, ErrNotOwner)
		repo.AssertNotCalled(t, "UpdateNote", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("owner deletes note", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetNoteByID", mock.Anything, "note-1").Return(ownNote(), nil).Once()
		repo.On("DeleteNote", mock.Anything, "note-1").Return(nil).Once()

		svc := New(repo, newNoopLogger())
		require.NoError(t, svc.Delete(context.Background(), "user-1", "note-1"))
		repo.AssertExpectations(t)
	})

	t.Run("foreign note delete is rejected", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetNoteByID", mock.Anything, "note-1").Return(foreignNote(), nil).Once()

		svc := New(repo, newNoopLogger())
		err := svc.Delete(context.Background(), "user-1", "note-1")

		assert.ErrorIs(t, err, ErrNotOwner)
		repo.AssertNotCalled(t, "DeleteNote", mock.Anything, mock.Anything)
	})
}

func TestService_List_Pagination(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListNotesByUser", mock.Anything, "user-1", 10, 0, "").
		Return([]*models.Note{ownNote()}, nil).Once()

	svc := New(repo, newNoopLogger())
	// Невалидные параметры пагинации приводятся к дефолтным.
	notes, err := svc.List(context.Background(), "user-1", 0, -5, "")

	require.NoError(t, err)
	assert.Len(t, notes, 1)
	repo.AssertExpectations(t)
}
