// Package notes содержит бизнес-логику работы с заметками пользователя.
// Доступ к заметке имеет только владелец: чужая заметка неотличима для
// вызывающего от отсутствующей на уровне хранилища, но сервис различает
// эти случаи явной ошибкой.
package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/do-yard/do-starter-kit-sub000/internal/models"
)

// ErrNotOwner заметка принадлежит другому пользователю.
var ErrNotOwner = errors.New("note belongs to another user")

// NoteRepository определяет методы для работы с заметками в хранилище.
type NoteRepository interface {
	// CreateNote добавляет заметку и возвращает её ID.
	CreateNote(ctx context.Context, note models.Note) (string, error)
	// GetNoteByID возвращает заметку по ID.
	GetNoteByID(ctx context.Context, id string) (*models.Note, error)
	// ListNotesByUser возвращает заметки пользователя с пагинацией и поиском по заголовку.
	ListNotesByUser(ctx context.Context, userID string, limit, offset int, search string) ([]*models.Note, error)
	// UpdateNote обновляет заметку по ID.
	UpdateNote(ctx context.Context, id string, upd models.NoteUpdate) error
	// DeleteNote удаляет заметку по ID.
	DeleteNote(ctx context.Context, id string) error
}

// Service реализует операции с заметками.
type Service struct {
	repo NoteRepository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo NoteRepository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create создает заметку для пользователя и возвращает её ID.
func (s *Service) Create(ctx context.Context, userID, title, content string) (string, error) {
	const op = "services.notes.Create"

	id, err := s.repo.CreateNote(ctx, models.Note{
		UserID:  userID,
		Title:   title,
		Content: content,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// List возвращает страницу заметок пользователя с поиском по заголовку.
func (s *Service) List(ctx context.Context, userID string, page, pageSize int, search string) ([]*models.Note, error) {
	const op = "services.notes.List"

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	list, err := s.repo.ListNotesByUser(ctx, userID, pageSize, offset, search)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Get возвращает заметку пользователя, проверяя владение.
func (s *Service) Get(ctx context.Context, userID, noteID string) (*models.Note, error) {
	const op = "services.notes.Get"

	note, err := s.repo.GetNoteByID(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if note.UserID != userID {
		return nil, ErrNotOwner
	}
	return note, nil
}

// Update обновляет заметку пользователя, проверяя владение.
func (s *Service) Update(ctx context.Context, userID, noteID string, upd models.NoteUpdate) (*models.Note, error) {
	const op = "services.notes.Update"

	if _, err := s.Get(ctx, userID, noteID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateNote(ctx, noteID, upd); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	note, err := s.repo.GetNoteByID(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return note, nil
}

// Delete удаляет заметку пользователя, проверяя владение.
func (s *Service) Delete(ctx context.Context, userID, noteID string) error {
	const op = "services.notes.Delete"

	if _, err := s.Get(ctx, userID, noteID); err != nil {
		return err
	}
	if err := s.repo.DeleteNote(ctx, noteID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
