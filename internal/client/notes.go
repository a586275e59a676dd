package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	notesv1 "mip-notes/pkg/notesv1"
)

// UpdateInput параметры обновления заметки
type UpdateInput struct {
	ID    string
	Text  string
	Color *string
}

// NotesSnapshot состояние запроса списка заметок
type NotesSnapshot struct {
	Notes     []notesv1.Note
	IsLoading bool
	IsError   bool
}

// Notes клиент заметок: запрос списка в кэше и мутации, которые его инвалидируют
type Notes struct {
	api     *API
	queries *QueryClient

	CreateNote *Mutation[notesv1.CreateNoteRequest, notesv1.Note]
	UpdateNote *Mutation[UpdateInput, notesv1.Note]
	DeleteNote *Mutation[string, struct{}]
}

// NewNotes регистрирует запрос NotesKey в queries и создает мутации
func NewNotes(api *API, queries *QueryClient) *Notes {
	n := &Notes{api: api, queries: queries}

	queries.Register(NotesKey, func(ctx context.Context) (any, error) {
		return api.List(ctx)
	})

	invalidate := func() { queries.InvalidateQueries(NotesKey) }

	n.CreateNote = NewMutation(func(ctx context.Context, req notesv1.CreateNoteRequest) (notesv1.Note, error) {
		return api.Create(ctx, req)
	}, invalidate)

	n.UpdateNote = NewMutation(func(ctx context.Context, in UpdateInput) (notesv1.Note, error) {
		return api.Update(ctx, in.ID, notesv1.UpdateNoteRequest{Text: in.Text, Color: in.Color})
	}, invalidate)

	n.DeleteNote = NewMutation(func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, api.Delete(ctx, id)
	}, invalidate)

	return n
}

// List возвращает список заметок из кэша или загружает его
func (n *Notes) List(ctx context.Context) ([]notesv1.Note, error) {
	data, err := n.queries.Fetch(ctx, NotesKey)
	if err != nil {
		return nil, err
	}
	return asNotes(data)
}

// Find ищет заметку по uuid или его уникальному префиксу
func (n *Notes) Find(ctx context.Context, idOrPrefix string) (notesv1.Note, error) {
	if idOrPrefix == "" {
		return notesv1.Note{}, errors.New("note id is required")
	}

	list, err := n.List(ctx)
	if err != nil {
		return notesv1.Note{}, err
	}

	var found []notesv1.Note
	for _, note := range list {
		if note.UUID == idOrPrefix {
			return note, nil
		}
		if strings.HasPrefix(note.UUID, idOrPrefix) {
			found = append(found, note)
		}
	}

	switch len(found) {
	case 0:
		return notesv1.Note{}, &APIError{Status: http.StatusNotFound, Message: "note not found"}
	case 1:
		return found[0], nil
	default:
		return notesv1.Note{}, fmt.Errorf("prefix %q matches %d notes", idOrPrefix, len(found))
	}
}

// Snapshot текущее состояние списка заметок
func (n *Notes) Snapshot() NotesSnapshot {
	s := n.queries.Snapshot(NotesKey)
	notes, _ := asNotes(s.Data)
	return NotesSnapshot{Notes: notes, IsLoading: s.IsLoading, IsError: s.IsError}
}

// Subscribe сигналы об изменении списка заметок
func (n *Notes) Subscribe() (<-chan struct{}, func()) {
	return n.queries.Subscribe(NotesKey)
}

func asNotes(data any) ([]notesv1.Note, error) {
	if data == nil {
		return nil, nil
	}
	notes, ok := data.([]notesv1.Note)
	if !ok {
		return nil, fmt.Errorf("unexpected %s query data %T", NotesKey, data)
	}
	return notes, nil
}
