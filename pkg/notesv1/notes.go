// Package notesv1 описывает JSON контракт Notes API (HTTP и gRPC с JSON кодеком).
package notesv1

import "time"

// Note внешнее представление заметки
type Note struct {
	UUID      string    `json:"uuid"`
	Text      string    `json:"text"`
	Color     string    `json:"color"`
	NrOfEdits int64     `json:"nrOfEdits"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListNotesRequest запрос списка заметок
type ListNotesRequest struct{}

// ListNotesResponse ответ со списком заметок (gRPC; HTTP отдает массив напрямую)
type ListNotesResponse struct {
	Notes []Note `json:"notes"`
}

// CreateNoteRequest запрос на создание заметки
type CreateNoteRequest struct {
	Text  string `json:"text" validate:"required"`
	Color string `json:"color"`
}

// UpdateNoteRequest запрос на обновление заметки.
// В HTTP ID берется из пути, в gRPC из тела запроса.
type UpdateNoteRequest struct {
	ID    string  `json:"id,omitempty"`
	Text  string  `json:"text" validate:"required"`
	Color *string `json:"color,omitempty"`
}

// DeleteNoteRequest запрос на удаление заметки
type DeleteNoteRequest struct {
	ID string `json:"id"`
}

// DeleteNoteResponse подтверждение удаления
type DeleteNoteResponse struct {
	OK bool `json:"ok"`
}

// WatchNotesRequest запрос на подписку на события заметок
type WatchNotesRequest struct{}

// NoteEvent событие изменения заметки (created, updated, deleted)
type NoteEvent struct {
	Type string    `json:"type"`
	Note Note      `json:"note"`
	At   time.Time `json:"at"`
}

// ErrorResponse тело ответа об ошибке
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse ответ health check
type HealthResponse struct {
	Status string    `json:"status"`
	Uptime float64   `json:"uptime"`
	Now    time.Time `json:"now"`
}
