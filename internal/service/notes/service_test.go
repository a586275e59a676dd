package notes

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"mip-notes/internal/model"
	"mip-notes/internal/repository"
	"mip-notes/internal/repository/memory"
	svc "mip-notes/internal/service"
)

// mockRepository - простой mock репозитория для тестирования ошибок хранилища
type mockRepository struct {
	repository.NoteRepository
	createError error
	listError   error
	updateError error
	deleteError error
	createCalls int
}

func (m *mockRepository) Create(ctx context.Context, note model.Note) (model.Note, error) {
	m.createCalls++
	if m.createError != nil {
		return model.Note{}, m.createError
	}
	return m.NoteRepository.Create(ctx, note)
}

func (m *mockRepository) List(ctx context.Context) ([]model.Note, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	return m.NoteRepository.List(ctx)
}

func (m *mockRepository) Update(ctx context.Context, id string, changes model.NoteChanges, now time.Time) (model.Note, error) {
	if m.updateError != nil {
		return model.Note{}, m.updateError
	}
	return m.NoteRepository.Update(ctx, id, changes, now)
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	return m.NoteRepository.Delete(ctx, id)
}

// Проверяем, что mockRepository реализует интерфейс
var _ repository.NoteRepository = (*mockRepository)(nil)

func newMockRepository() *mockRepository {
	return &mockRepository{NoteRepository: memory.NewRepository()}
}

// fakeClock возвращает монотонно растущее время с шагом в секунду
func fakeClock() func() time.Time {
	current := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func newTestService(repo repository.NoteRepository, opts ...Option) svc.NoteService {
	return NewNoteService(repo, append([]Option{WithClock(fakeClock())}, opts...)...)
}

func TestNoteService_Create_Success(t *testing.T) {
	ctx := context.Background()
	service := newTestService(newMockRepository())

	note, err := service.Create(ctx, "buy milk", "#ffeb3b")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if note.Text != "buy milk" {
		t.Errorf("Expected text %q, got %q", "buy milk", note.Text)
	}
	if note.Color != "#ffeb3b" {
		t.Errorf("Expected color %q, got %q", "#ffeb3b", note.Color)
	}
	if note.UUID == "" {
		t.Error("Expected note to have UUID")
	}
	if note.NrOfEdits != 0 {
		t.Errorf("Expected nrOfEdits 0, got %d", note.NrOfEdits)
	}
	if note.CreatedAt.IsZero() || !note.CreatedAt.Equal(note.UpdatedAt) {
		t.Errorf("Expected CreatedAt == UpdatedAt, got %v and %v", note.CreatedAt, note.UpdatedAt)
	}
}

func TestNoteService_Create_UniqueUUIDs(t *testing.T) {
	ctx := context.Background()
	service := NewNoteService(memory.NewRepository())

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		note, err := service.Create(ctx, fmt.Sprintf("note %d", i), "")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if seen[note.UUID] {
			t.Fatalf("Duplicate uuid %s", note.UUID)
		}
		seen[note.UUID] = true
	}
}

func TestNoteService_Create_EmptyText(t *testing.T) {
	ctx := context.Background()

	for _, text := range []string{"", "   "} {
		repo := newMockRepository()
		service := newTestService(repo)

		note, err := service.Create(ctx, text, "red")
		if !errors.Is(err, svc.ErrValidation) {
			t.Errorf("Expected ErrValidation for %q, got: %v", text, err)
		}
		if note != (model.Note{}) {
			t.Error("Expected empty note on error")
		}
		if repo.createCalls != 0 {
			t.Errorf("Expected nothing persisted, got %d create calls", repo.createCalls)
		}
	}
}

func TestNoteService_Create_StorageError(t *testing.T) {
	repo := newMockRepository()
	repo.createError = errors.New("connection refused")
	service := newTestService(repo)

	_, err := service.Create(context.Background(), "text", "")
	if err == nil || errors.Is(err, svc.ErrValidation) {
		t.Fatalf("Expected storage error, got: %v", err)
	}
	if !errors.Is(err, repo.createError) {
		t.Errorf("Expected wrapped storage error, got: %v", err)
	}
}

func TestNoteService_Create_PublishesEvent(t *testing.T) {
	events := NewEventService()
	sub := events.Subscribe()
	service := newTestService(newMockRepository(), WithEvents(events))

	note, err := service.Create(context.Background(), "buy milk", "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	select {
	case ev := <-sub:
		if ev.Type != EventCreated || ev.Note.UUID != note.UUID {
			t.Errorf("Unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected created event")
	}
}

func TestNoteService_Get(t *testing.T) {
	ctx := context.Background()
	service := newTestService(newMockRepository())

	created, _ := service.Create(ctx, "text", "")

	note, err := service.Get(ctx, created.UUID)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if note != created {
		t.Errorf("Expected %+v, got %+v", created, note)
	}

	if _, err := service.Get(ctx, ""); !errors.Is(err, svc.ErrValidation) {
		t.Errorf("Expected ErrValidation for empty id, got: %v", err)
	}
	if _, err := service.Get(ctx, "missing"); !errors.Is(err, repository.ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound, got: %v", err)
	}
}

func TestNoteService_List_Ordered(t *testing.T) {
	ctx := context.Background()
	service := newTestService(newMockRepository())

	for _, text := range []string{"first", "second", "third"} {
		if _, err := service.Create(ctx, text, ""); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	notes, err := service.List(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("Expected 3 notes, got %d", len(notes))
	}
	for i := 1; i < len(notes); i++ {
		if notes[i-1].CreatedAt.Before(notes[i].CreatedAt) {
			t.Errorf("Notes are not ordered by createdAt desc at %d", i)
		}
	}
	if notes[0].Text != "third" {
		t.Errorf("Expected newest note first, got %q", notes[0].Text)
	}
}

func TestNoteService_List_StorageError(t *testing.T) {
	repo := newMockRepository()
	repo.listError = errors.New("timeout")
	service := newTestService(repo)

	if _, err := service.List(context.Background()); !errors.Is(err, repo.listError) {
		t.Errorf("Expected storage error, got: %v", err)
	}
}

func TestNoteService_Update_Success(t *testing.T) {
	ctx := context.Background()
	service := newTestService(newMockRepository())

	created, _ := service.Create(ctx, "buy milk", "white")

	updated, err := service.Update(ctx, created.UUID, "buy oat milk", nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if updated.Text != "buy oat milk" {
		t.Errorf("Expected text %q, got %q", "buy oat milk", updated.Text)
	}
	if updated.Color != "white" {
		t.Errorf("Expected color to be preserved, got %q", updated.Color)
	}
	if updated.NrOfEdits != created.NrOfEdits+1 {
		t.Errorf("Expected nrOfEdits %d, got %d", created.NrOfEdits+1, updated.NrOfEdits)
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Errorf("Expected updatedAt >= previous, got %v < %v", updated.UpdatedAt, created.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("Expected createdAt to be unchanged")
	}

	color := "green"
	updated, err = service.Update(ctx, created.UUID, "buy oat milk", &color)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if updated.Color != "green" || updated.NrOfEdits != 2 {
		t.Errorf("Unexpected note after second update: %+v", updated)
	}
}

func TestNoteService_Update_EmptyText(t *testing.T) {
	ctx := context.Background()
	service := newTestService(newMockRepository())

	created, _ := service.Create(ctx, "keep me", "")

	if _, err := service.Update(ctx, created.UUID, "  ", nil); !errors.Is(err, svc.ErrValidation) {
		t.Errorf("Expected ErrValidation, got: %v", err)
	}

	note, _ := service.Get(ctx, created.UUID)
	if note.Text != "keep me" || note.NrOfEdits != 0 {
		t.Errorf("Expected note to be unchanged, got %+v", note)
	}
}

func TestNoteService_Update_EmptyID(t *testing.T) {
	service := newTestService(newMockRepository())

	if _, err := service.Update(context.Background(), "", "text", nil); !errors.Is(err, svc.ErrValidation) {
		t.Errorf("Expected ErrValidation, got: %v", err)
	}
}

func TestNoteService_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	service := newTestService(newMockRepository())
	existing, _ := service.Create(ctx, "other", "")

	_, err := service.Update(ctx, "non-existent-id", "text", nil)
	if !errors.Is(err, repository.ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound, got: %v", err)
	}

	notes, _ := service.List(ctx)
	if len(notes) != 1 || notes[0] != existing {
		t.Errorf("Expected store to be unchanged, got %+v", notes)
	}
}

func TestNoteService_Delete(t *testing.T) {
	ctx := context.Background()
	events := NewEventService()
	sub := events.Subscribe()
	service := newTestService(newMockRepository(), WithEvents(events))

	created, _ := service.Create(ctx, "text", "")
	<-sub

	if err := service.Delete(ctx, created.UUID); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	ev := <-sub
	if ev.Type != EventDeleted || ev.Note.UUID != created.UUID {
		t.Errorf("Unexpected event %+v", ev)
	}

	notes, _ := service.List(ctx)
	if len(notes) != 0 {
		t.Errorf("Expected no notes after delete, got %d", len(notes))
	}

	if err := service.Delete(ctx, created.UUID); !errors.Is(err, repository.ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound on second delete, got: %v", err)
	}
}

func TestNoteService_Delete_EmptyID(t *testing.T) {
	service := newTestService(newMockRepository())

	if err := service.Delete(context.Background(), " "); !errors.Is(err, svc.ErrValidation) {
		t.Errorf("Expected ErrValidation, got: %v", err)
	}
}

func TestNoteService_Delete_StorageError(t *testing.T) {
	repo := newMockRepository()
	repo.deleteError = errors.New("disk full")
	service := newTestService(repo)

	if err := service.Delete(context.Background(), "id"); !errors.Is(err, repo.deleteError) {
		t.Errorf("Expected storage error, got: %v", err)
	}
}
