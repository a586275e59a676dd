package repository

import (
	"context"
	"errors"
	"time"

	"mip-notes/internal/model"
)

// ErrNoteNotFound возвращается, когда заметка с указанным uuid не найдена
var ErrNoteNotFound = errors.New("note not found")

// NoteRepository интерфейс для работы с заметками в хранилище.
// Все операции адресуют заметку по uuid, а не по внутреннему ключу хранилища.
type NoteRepository interface {
	// Create сохраняет новую заметку и возвращает сохраненную заметку
	Create(ctx context.Context, note model.Note) (model.Note, error)

	// GetByUUID возвращает заметку по её uuid
	GetByUUID(ctx context.Context, uuid string) (model.Note, error)

	// List возвращает все заметки, отсортированные по CreatedAt (сначала новые)
	List(ctx context.Context) ([]model.Note, error)

	// Update атомарно применяет изменения, увеличивает NrOfEdits и возвращает обновленную заметку
	Update(ctx context.Context, uuid string, changes model.NoteChanges, now time.Time) (model.Note, error)

	// Delete удаляет заметку по uuid
	Delete(ctx context.Context, uuid string) error
}
