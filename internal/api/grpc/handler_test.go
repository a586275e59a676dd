package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"mip-notes/internal/logger"
	"mip-notes/internal/repository"
	"mip-notes/internal/repository/memory"
	svc "mip-notes/internal/service"
	"mip-notes/internal/service/notes"
	notesv1 "mip-notes/pkg/notesv1"
)

type testEnv struct {
	client *NotesClient
	events *notes.EventService
	cancel context.CancelFunc
}

// newTestEnv поднимает gRPC сервер поверх bufconn с in-memory репозиторием
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	events := notes.NewEventService()
	service := notes.NewNoteService(memory.NewRepository(), notes.WithEvents(events))

	serverCtx, cancel := context.WithCancel(context.Background())
	server := NewServer(NewHandler(serverCtx, service, events, logger.Discard()), logger.Discard())

	lis := bufconn.Listen(1 << 20)
	go func() { _ = server.Serve(lis) }()

	opts := append(DialOptions(),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	conn, err := grpc.NewClient("passthrough:///bufnet", opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		cancel()
		_ = conn.Close()
		server.Stop()
	})

	return &testEnv{client: NewNotesClient(conn), events: events, cancel: cancel}
}

func errorReason(t *testing.T, err error) string {
	t.Helper()
	st := status.Convert(err)
	require.Len(t, st.Details(), 1, "Expected exactly one detail in error")
	info, ok := st.Details()[0].(*errdetails.ErrorInfo)
	require.True(t, ok, "Expected detail to be of type ErrorInfo")
	assert.Equal(t, errorDomain, info.Domain)
	return info.Reason
}

func TestNotesService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.client.CreateNote(ctx, &notesv1.CreateNoteRequest{Text: "buy milk"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), created.NrOfEdits)
	assert.NotEmpty(t, created.UUID)

	updated, err := env.client.UpdateNote(ctx, &notesv1.UpdateNoteRequest{ID: created.UUID, Text: "buy oat milk"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.NrOfEdits)
	assert.Equal(t, "buy oat milk", updated.Text)

	list, err := env.client.ListNotes(ctx, &notesv1.ListNotesRequest{})
	require.NoError(t, err)
	require.Len(t, list.Notes, 1)

	deleted, err := env.client.DeleteNote(ctx, &notesv1.DeleteNoteRequest{ID: created.UUID})
	require.NoError(t, err)
	assert.True(t, deleted.OK)

	list, err = env.client.ListNotes(ctx, &notesv1.ListNotesRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Notes)
}

func TestNotesService_ErrorCodes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.client.CreateNote(ctx, &notesv1.CreateNoteRequest{Text: " "})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, "VALIDATION_ERROR", errorReason(t, err))

	_, err = env.client.UpdateNote(ctx, &notesv1.UpdateNoteRequest{ID: "non-existent-id", Text: "x"})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, "NOTE_NOT_FOUND", errorReason(t, err))

	_, err = env.client.DeleteNote(ctx, &notesv1.DeleteNoteRequest{ID: "non-existent-id"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestNotesService_WatchNotes(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := env.client.WatchNotes(ctx, &notesv1.WatchNotesRequest{})
	require.NoError(t, err)

	// ждем, пока сервер подпишется на события
	require.Eventually(t, func() bool { return env.events.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	created, err := env.client.CreateNote(ctx, &notesv1.CreateNoteRequest{Text: "watched"})
	require.NoError(t, err)
	_, err = env.client.DeleteNote(ctx, &notesv1.DeleteNoteRequest{ID: created.UUID})
	require.NoError(t, err)

	ev, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "created", ev.Type)
	assert.Equal(t, created.UUID, ev.Note.UUID)

	ev, err = stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "deleted", ev.Type)

	// shutdown сервера завершает стрим
	env.cancel()
	_, err = stream.Recv()
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestHandleError(t *testing.T) {
	h := NewHandler(context.Background(), nil, nil, logger.Discard())

	tests := []struct {
		name   string
		err    error
		code   codes.Code
		reason string
	}{
		{"validation", svc.NewValidationError("text is required"), codes.InvalidArgument, "VALIDATION_ERROR"},
		{"not found", repository.ErrNoteNotFound, codes.NotFound, "NOTE_NOT_FOUND"},
		{"internal", errors.New("some internal error"), codes.Internal, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grpcErr := h.handleError(tt.err)
			assert.Equal(t, tt.code, status.Code(grpcErr))
			assert.Equal(t, tt.reason, errorReason(t, grpcErr))
		})
	}

	assert.NoError(t, h.handleError(nil))
	assert.NotContains(t, status.Convert(h.handleError(errors.New("secret dsn"))).Message(), "secret")
}
