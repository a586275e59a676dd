package grpc

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mip-notes/internal/converter"
	"mip-notes/internal/logger"
	"mip-notes/internal/repository"
	svc "mip-notes/internal/service"
	"mip-notes/internal/service/notes"
	notesv1 "mip-notes/pkg/notesv1"
)

// errorDomain домен для errdetails.ErrorInfo
const errorDomain = "notes.v1"

var _ NotesServiceServer = (*Handler)(nil)

// Handler реализует gRPC сервер для NotesService
type Handler struct {
	noteService svc.NoteService
	events      *notes.EventService
	log         *logger.Logger
	// serverCtx отменяется при shutdown, чтобы стримы WatchNotes завершились до GracefulStop
	serverCtx context.Context
}

// NewHandler создает новый экземпляр gRPC хэндлера
func NewHandler(serverCtx context.Context, noteService svc.NoteService, events *notes.EventService, log *logger.Logger) *Handler {
	return &Handler{
		noteService: noteService,
		events:      events,
		log:         log,
		serverCtx:   serverCtx,
	}
}

// ListNotes возвращает список всех заметок
func (h *Handler) ListNotes(ctx context.Context, _ *notesv1.ListNotesRequest) (*notesv1.ListNotesResponse, error) {
	list, err := h.noteService.List(ctx)
	if err != nil {
		return nil, h.handleError(err)
	}

	return &notesv1.ListNotesResponse{Notes: converter.ModelsToAPI(list)}, nil
}

// CreateNote создает новую заметку
func (h *Handler) CreateNote(ctx context.Context, req *notesv1.CreateNoteRequest) (*notesv1.Note, error) {
	note, err := h.noteService.Create(ctx, req.Text, req.Color)
	if err != nil {
		return nil, h.handleError(err)
	}

	out := converter.ModelToAPI(note)
	return &out, nil
}

// UpdateNote обновляет существующую заметку
func (h *Handler) UpdateNote(ctx context.Context, req *notesv1.UpdateNoteRequest) (*notesv1.Note, error) {
	note, err := h.noteService.Update(ctx, req.ID, req.Text, req.Color)
	if err != nil {
		return nil, h.handleError(err)
	}

	out := converter.ModelToAPI(note)
	return &out, nil
}

// DeleteNote удаляет заметку по uuid
func (h *Handler) DeleteNote(ctx context.Context, req *notesv1.DeleteNoteRequest) (*notesv1.DeleteNoteResponse, error) {
	if err := h.noteService.Delete(ctx, req.ID); err != nil {
		return nil, h.handleError(err)
	}

	return &notesv1.DeleteNoteResponse{OK: true}, nil
}

// WatchNotes отправляет клиенту события создания, изменения и удаления заметок,
// пока клиент не отключится или сервер не начнет shutdown
func (h *Handler) WatchNotes(_ *notesv1.WatchNotesRequest, stream NotesWatchServer) error {
	if h.events == nil {
		return status.Error(codes.Unimplemented, "note events are disabled")
	}

	sub := h.events.Subscribe()
	defer h.events.Unsubscribe(sub)

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.serverCtx.Done():
			return status.Error(codes.Unavailable, "server is shutting down")
		case ev, ok := <-sub:
			if !ok {
				return nil
			}
			out := converter.EventToAPI(ev)
			if err := stream.Send(&out); err != nil {
				return err
			}
		}
	}
}

// handleError конвертирует ошибки сервиса в gRPC статусы с детализацией
func (h *Handler) handleError(err error) error {
	if err == nil {
		return nil
	}

	var verr *svc.ValidationError
	switch {
	case errors.As(err, &verr):
		return withInfo(codes.InvalidArgument, verr.Message, "VALIDATION_ERROR")
	case errors.Is(err, repository.ErrNoteNotFound):
		return withInfo(codes.NotFound, "note not found", "NOTE_NOT_FOUND")
	default:
		h.log.WithError(err).Error("gRPC request failed with internal error")
		return withInfo(codes.Internal, "internal error", "INTERNAL_ERROR")
	}
}

func withInfo(code codes.Code, msg, reason string) error {
	st := status.New(code, msg)
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{Reason: reason, Domain: errorDomain})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}
