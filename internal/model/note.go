package model

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyText возвращается, когда текст заметки пустой
var ErrEmptyText = errors.New("text is required")

// Note представляет заметку (доменная модель)
type Note struct {
	UUID      string    // Внешний идентификатор заметки
	Text      string    // Текст заметки
	Color     string    // Цвет (произвольная строка, например CSS цвет)
	NrOfEdits int64     // Количество успешных обновлений
	CreatedAt time.Time // Дата создания
	UpdatedAt time.Time // Дата последнего обновления
}

// Validate проверяет валидность заметки
func (n *Note) Validate() error {
	if strings.TrimSpace(n.Text) == "" {
		return ErrEmptyText
	}
	return nil
}

// NoteChanges описывает изменения, применяемые к заметке при обновлении.
// Color == nil означает, что цвет остается прежним.
type NoteChanges struct {
	Text  string
	Color *string
}

// Apply применяет изменения к копии заметки и увеличивает счетчик правок
func (c NoteChanges) Apply(note Note, now time.Time) Note {
	note.Text = c.Text
	if c.Color != nil {
		note.Color = *c.Color
	}
	note.UpdatedAt = now
	note.NrOfEdits++
	return note
}

// Now возвращает текущее время в UTC с точностью до миллисекунд (точность хранилища)
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
