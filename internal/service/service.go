package service

import (
	"context"
	"errors"

	"mip-notes/internal/model"
)

// ErrValidation сигнальная ошибка валидации входных данных (HTTP 400).
// Конкретные ошибки имеют тип *ValidationError и сопоставляются через errors.Is.
var ErrValidation = errors.New("validation error")

// ValidationError ошибка валидации с сообщением для клиента
type ValidationError struct {
	Message string
}

// NewValidationError создает ошибку валидации
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is позволяет проверять ошибку через errors.Is(err, ErrValidation)
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NoteService интерфейс для бизнес-логики работы с заметками
type NoteService interface {
	// Create создает новую заметку с указанными text и color
	Create(ctx context.Context, text, color string) (model.Note, error)

	// Get возвращает заметку по её uuid
	Get(ctx context.Context, uuid string) (model.Note, error)

	// List возвращает список всех заметок, новые первыми
	List(ctx context.Context) ([]model.Note, error)

	// Update обновляет text заметки и color, если он передан
	Update(ctx context.Context, uuid, text string, color *string) (model.Note, error)

	// Delete удаляет заметку по uuid
	Delete(ctx context.Context, uuid string) error
}
