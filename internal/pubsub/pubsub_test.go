package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mip-notes/internal/logger"
	"mip-notes/internal/model"
	"mip-notes/internal/service/notes"
	notesv1 "mip-notes/pkg/notesv1"
)

type published struct {
	channel string
	payload []byte
}

// fakeRedis записывает опубликованные сообщения
type fakeRedis struct {
	mu       sync.Mutex
	messages []published
	err      error
	closed   bool
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.messages = append(f.messages, published{channel: channel, payload: message.([]byte)})
	return redis.NewIntResult(1, nil)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisPublisher_Publish(t *testing.T) {
	fake := &fakeRedis{}
	pub := newRedisPublisher(fake, "")

	err := pub.Publish(context.Background(), notesv1.NoteEvent{Type: "created", Note: notesv1.Note{UUID: "u1", Text: "t"}})
	require.NoError(t, err)

	require.Len(t, fake.messages, 1)
	assert.Equal(t, DefaultChannel, fake.messages[0].channel)

	var ev notesv1.NoteEvent
	require.NoError(t, json.Unmarshal(fake.messages[0].payload, &ev))
	assert.Equal(t, "created", ev.Type)
	assert.Equal(t, "u1", ev.Note.UUID)

	require.NoError(t, pub.Close())
	assert.True(t, fake.closed)
}

func TestRedisPublisher_PublishError(t *testing.T) {
	pub := newRedisPublisher(&fakeRedis{err: errors.New("connection refused")}, "custom")

	err := pub.Publish(context.Background(), notesv1.NoteEvent{Type: "deleted"})
	assert.ErrorContains(t, err, "failed to publish to Redis")
}

func TestNewRedisPublisher_BadURL(t *testing.T) {
	_, err := NewRedisPublisher(context.Background(), "not-a-url", "")
	assert.ErrorContains(t, err, "failed to parse Redis URL")
}

func TestForward_DeliversUntilClosed(t *testing.T) {
	events := notes.NewEventService()
	sub := events.Subscribe()

	fake := &fakeRedis{}
	pub := newRedisPublisher(fake, "notes")

	done := make(chan struct{})
	go func() {
		Forward(context.Background(), sub, pub.Publish, logger.Discard())
		close(done)
	}()

	events.Publish(notes.NoteEvent{Type: notes.EventCreated, Note: model.Note{UUID: "a"}})
	events.Publish(notes.NoteEvent{Type: notes.EventUpdated, Note: model.Note{UUID: "a", NrOfEdits: 1}})
	events.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Forward did not stop after channel close")
	}

	assert.Len(t, fake.messages, 2)
}

func TestForward_DrainsBufferAfterClose(t *testing.T) {
	events := notes.NewEventService()
	sub := events.Subscribe()

	// события опубликованы и канал закрыт до запуска потребителя
	for i := 0; i < 3; i++ {
		events.Publish(notes.NoteEvent{Type: notes.EventCreated})
	}
	events.Close()

	var handled []string
	Forward(context.Background(), sub, func(_ context.Context, ev notesv1.NoteEvent) error {
		handled = append(handled, ev.Type)
		return nil
	}, logger.Discard())

	assert.Equal(t, []string{"created", "created", "created"}, handled)
}

func TestAuditLog(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithOutput("notes", "info", "json", &buf)

	err := AuditLog(log)(context.Background(), notesv1.NoteEvent{Type: "created", Note: notesv1.Note{UUID: "u1"}})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"uuid":"u1"`)
	assert.Contains(t, buf.String(), "note created")
}
