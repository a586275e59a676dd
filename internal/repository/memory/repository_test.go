package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mip-notes/internal/model"
	"mip-notes/internal/repository"
)

func newNote(uuid, text string, createdAt time.Time) model.Note {
	return model.Note{UUID: uuid, Text: text, CreatedAt: createdAt, UpdatedAt: createdAt}
}

func TestRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	r := NewRepository()
	now := model.Now()

	created, err := r.Create(ctx, newNote("a", "first", now))
	require.NoError(t, err)
	assert.Equal(t, "a", created.UUID)

	got, err := r.GetByUUID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = r.Create(ctx, newNote("a", "dup", now))
	assert.Error(t, err, "uuid must be unique")
}

func TestRepository_GetByUUID_NotFound(t *testing.T) {
	_, err := NewRepository().GetByUUID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNoteNotFound)
}

func TestRepository_List_OrderedByCreatedAtDesc(t *testing.T) {
	ctx := context.Background()
	r := NewRepository()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	_, _ = r.Create(ctx, newNote("old", "old", base))
	_, _ = r.Create(ctx, newNote("newest", "newest", base.Add(2*time.Hour)))
	_, _ = r.Create(ctx, newNote("middle", "middle", base.Add(time.Hour)))
	// та же метка времени, но вставлена позже
	_, _ = r.Create(ctx, newNote("middle-2", "middle-2", base.Add(time.Hour)))

	notes, err := r.List(ctx)
	require.NoError(t, err)

	ids := make([]string, len(notes))
	for i, n := range notes {
		ids[i] = n.UUID
	}
	assert.Equal(t, []string{"newest", "middle-2", "middle", "old"}, ids)
}

func TestRepository_List_Empty(t *testing.T) {
	notes, err := NewRepository().List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, notes)
	assert.Empty(t, notes)
}

func TestRepository_Update(t *testing.T) {
	ctx := context.Background()
	r := NewRepository()
	created := model.Now()
	_, _ = r.Create(ctx, model.Note{UUID: "a", Text: "old", Color: "red", CreatedAt: created, UpdatedAt: created})

	later := created.Add(time.Second)
	updated, err := r.Update(ctx, "a", model.NoteChanges{Text: "new"}, later)
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Text)
	assert.Equal(t, "red", updated.Color)
	assert.Equal(t, int64(1), updated.NrOfEdits)
	assert.Equal(t, later, updated.UpdatedAt)

	stored, err := r.GetByUUID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestRepository_Update_NotFound(t *testing.T) {
	_, err := NewRepository().Update(context.Background(), "missing", model.NoteChanges{Text: "x"}, model.Now())
	assert.ErrorIs(t, err, repository.ErrNoteNotFound)
}

func TestRepository_Update_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	r := NewRepository()
	_, _ = r.Create(ctx, newNote("a", "text", model.Now()))

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Update(ctx, "a", model.NoteChanges{Text: "text"}, model.Now())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	note, err := r.GetByUUID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(workers), note.NrOfEdits)
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	r := NewRepository()
	_, _ = r.Create(ctx, newNote("a", "text", model.Now()))

	require.NoError(t, r.Delete(ctx, "a"))
	assert.ErrorIs(t, r.Delete(ctx, "a"), repository.ErrNoteNotFound)

	notes, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestRepository_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRepository().List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
