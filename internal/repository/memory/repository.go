package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"mip-notes/internal/model"
	"mip-notes/internal/repository"
)

var _ repository.NoteRepository = (*repo)(nil)

// entry хранит заметку вместе с порядковым номером вставки
type entry struct {
	note model.Note
	seq  uint64
}

type repo struct {
	mu    sync.RWMutex
	seq   uint64
	notes map[string]entry
}

// NewRepository создает новый экземпляр in-memory репозитория на основе map
func NewRepository() repository.NoteRepository {
	return &repo{
		notes: make(map[string]entry),
	}
}

// Create сохраняет новую заметку
func (r *repo) Create(ctx context.Context, note model.Note) (model.Note, error) {
	if err := ctx.Err(); err != nil {
		return model.Note{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.notes[note.UUID]; exists {
		return model.Note{}, fmt.Errorf("duplicate uuid %q", note.UUID)
	}

	r.seq++
	r.notes[note.UUID] = entry{note: note, seq: r.seq}

	return note, nil
}

// GetByUUID возвращает заметку по её uuid
func (r *repo) GetByUUID(ctx context.Context, uuid string) (model.Note, error) {
	if err := ctx.Err(); err != nil {
		return model.Note{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.notes[uuid]
	if !exists {
		return model.Note{}, repository.ErrNoteNotFound
	}

	return e.note, nil
}

// List возвращает список всех заметок, новые первыми
func (r *repo) List(ctx context.Context) ([]model.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	entries := make([]entry, 0, len(r.notes))
	for _, e := range r.notes {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	// При равном CreatedAt первой идет заметка, вставленная позже
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].note.CreatedAt.Equal(entries[j].note.CreatedAt) {
			return entries[i].note.CreatedAt.After(entries[j].note.CreatedAt)
		}
		return entries[i].seq > entries[j].seq
	})

	notes := make([]model.Note, len(entries))
	for i, e := range entries {
		notes[i] = e.note
	}

	return notes, nil
}

// Update применяет изменения к заметке под блокировкой
func (r *repo) Update(ctx context.Context, uuid string, changes model.NoteChanges, now time.Time) (model.Note, error) {
	if err := ctx.Err(); err != nil {
		return model.Note{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.notes[uuid]
	if !exists {
		return model.Note{}, repository.ErrNoteNotFound
	}

	e.note = changes.Apply(e.note, now)
	r.notes[uuid] = e

	return e.note, nil
}

// Delete удаляет заметку по uuid
func (r *repo) Delete(ctx context.Context, uuid string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.notes[uuid]; !exists {
		return repository.ErrNoteNotFound
	}

	delete(r.notes, uuid)

	return nil
}
