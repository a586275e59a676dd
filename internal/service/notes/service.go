package notes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"mip-notes/internal/model"
	"mip-notes/internal/repository"
	svc "mip-notes/internal/service"
)

var _ svc.NoteService = (*service)(nil)

type service struct {
	noteRepository repository.NoteRepository
	events         *EventService
	now            func() time.Time
	newID          func() string
}

// Option настраивает сервис заметок
type Option func(*service)

// WithEvents подключает публикацию событий изменения заметок
func WithEvents(events *EventService) Option {
	return func(s *service) { s.events = events }
}

// WithClock подменяет источник времени (используется в тестах)
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithIDGenerator подменяет генератор uuid (используется в тестах)
func WithIDGenerator(newID func() string) Option {
	return func(s *service) { s.newID = newID }
}

// NewNoteService создает новый экземпляр сервиса для работы с заметками
func NewNoteService(noteRepository repository.NoteRepository, opts ...Option) svc.NoteService {
	s := &service{
		noteRepository: noteRepository,
		now:            model.Now,
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create создает новую заметку с указанными text и color
func (s *service) Create(ctx context.Context, text, color string) (model.Note, error) {
	now := s.now()
	note := model.Note{
		UUID:      s.newID(),
		Text:      strings.TrimSpace(text),
		Color:     strings.TrimSpace(color),
		NrOfEdits: 0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := note.Validate(); err != nil {
		return model.Note{}, svc.NewValidationError(err.Error())
	}

	createdNote, err := s.noteRepository.Create(ctx, note)
	if err != nil {
		return model.Note{}, fmt.Errorf("create note: %w", err)
	}

	s.publish(EventCreated, createdNote)

	return createdNote, nil
}

// Get возвращает заметку по её uuid
func (s *service) Get(ctx context.Context, id string) (model.Note, error) {
	if err := validateID(id); err != nil {
		return model.Note{}, err
	}

	return s.noteRepository.GetByUUID(ctx, id)
}

// List возвращает список всех заметок
func (s *service) List(ctx context.Context) ([]model.Note, error) {
	notes, err := s.noteRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	return notes, nil
}

// Update обновляет заметку. Text обязателен, как и при создании;
// color == nil оставляет прежний цвет.
func (s *service) Update(ctx context.Context, id, text string, color *string) (model.Note, error) {
	if err := validateID(id); err != nil {
		return model.Note{}, err
	}

	changes := model.NoteChanges{Text: strings.TrimSpace(text)}
	if changes.Text == "" {
		return model.Note{}, svc.NewValidationError(model.ErrEmptyText.Error())
	}
	if color != nil {
		trimmed := strings.TrimSpace(*color)
		changes.Color = &trimmed
	}

	updatedNote, err := s.noteRepository.Update(ctx, id, changes, s.now())
	if err != nil {
		return model.Note{}, err
	}

	s.publish(EventUpdated, updatedNote)

	return updatedNote, nil
}

// Delete удаляет заметку по uuid
func (s *service) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	if err := s.noteRepository.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(EventDeleted, model.Note{UUID: id})

	return nil
}

func (s *service) publish(t EventType, note model.Note) {
	if s.events == nil {
		return
	}
	s.events.Publish(NoteEvent{Type: t, Note: note, At: s.now()})
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return svc.NewValidationError("id cannot be empty")
	}
	return nil
}
