package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/do-yard/do-starter-kit-sub000/internal/models"
)

// CreateNote вставляет новую заметку и возвращает её ID.
func (s *Storage) CreateNote(ctx context.Context, note models.Note) (string, error) {
	const op = "storage.CreateNote"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO notes (user_id, title, content)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		note.UserID, note.Title, note.Content).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetNoteByID возвращает заметку по её ID.
func (s *Storage) GetNoteByID(ctx context.Context, id string) (*models.Note, error) {
	const op = "storage.GetNoteByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, title, content, created_at
			  FROM notes
			  WHERE id = $1`
	var note models.Note
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&note.ID, &note.UserID, &note.Title, &note.Content, &note.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNoteNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &note, nil
}

// ListNotesByUser возвращает страницу заметок пользователя с опциональным
// поиском по подстроке заголовка.
func (s *Storage) ListNotesByUser(ctx context.Context, userID string, limit, offset int, search string) ([]*models.Note, error) {
	const op = "storage.ListNotesByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, title, content, created_at
			  FROM notes
			  WHERE user_id = $1
			    AND ($2::text = '' OR title ILIKE '%' || $2 || '%')
			  ORDER BY created_at DESC, id
			  LIMIT $3 OFFSET $4`
	rows, err := s.DB.QueryContext(ctx, query, userID, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Note
	for rows.Next() {
		var note models.Note
		if err := rows.Scan(&note.ID, &note.UserID, &note.Title, &note.Content, &note.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &note)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateNote выполняет частичное обновление заметки.
func (s *Storage) UpdateNote(ctx context.Context, id string, upd models.NoteUpdate) error {
	const op = "storage.UpdateNote"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notes
			  SET title = COALESCE($1, title),
			      content = COALESCE($2, content)
			  WHERE id = $3`
	result, err := s.DB.ExecContext(ctx, query, upd.Title, upd.Content, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNoteNotFound)
	}
	return nil
}

// DeleteNote удаляет заметку по ID.
func (s *Storage) DeleteNote(ctx context.Context, id string) error {
	const op = "storage.DeleteNote"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNoteNotFound)
	}
	return nil
}
