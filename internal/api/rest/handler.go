package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"mip-notes/internal/converter"
	"mip-notes/internal/logger"
	"mip-notes/internal/repository"
	svc "mip-notes/internal/service"
	notesv1 "mip-notes/pkg/notesv1"
)

// maxBodyBytes ограничение размера тела запроса
const maxBodyBytes = 1 << 20

// Handler реализует REST API заметок
type Handler struct {
	noteService svc.NoteService
	validate    *validator.Validate
	log         *logger.Logger
	startedAt   time.Time
}

// NewHandler создает новый экземпляр REST хэндлера
func NewHandler(noteService svc.NoteService, log *logger.Logger) *Handler {
	v := validator.New()
	// В сообщениях об ошибках используем имена полей из json тегов
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	return &Handler{
		noteService: noteService,
		validate:    v,
		log:         log,
		startedAt:   time.Now(),
	}
}

// ListNotes GET /list
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.noteService.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "failed to list notes")
		return
	}

	h.log.WithField("count", len(notes)).Debug("returning notes")
	writeJSON(w, http.StatusOK, converter.ModelsToAPI(notes))
}

// CreateNote POST /create
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req notesv1.CreateNoteRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	note, err := h.noteService.Create(r.Context(), req.Text, req.Color)
	if err != nil {
		h.writeServiceError(w, err, "failed to create note")
		return
	}

	writeJSON(w, http.StatusCreated, converter.ModelToAPI(note))
}

// UpdateNote PUT /update/{id}
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req notesv1.UpdateNoteRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	note, err := h.noteService.Update(r.Context(), id, req.Text, req.Color)
	if err != nil {
		h.writeServiceError(w, err, "failed to update note")
		return
	}

	writeJSON(w, http.StatusOK, converter.ModelToAPI(note))
}

// DeleteNote DELETE /delete/{id}
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.noteService.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err, "failed to delete note")
		return
	}

	writeJSON(w, http.StatusOK, notesv1.DeleteNoteResponse{OK: true})
}

// Health GET /health, используется readiness/liveness пробами
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, notesv1.HealthResponse{
		Status: "ok",
		Uptime: time.Since(h.startedAt).Seconds(),
		Now:    time.Now().UTC(),
	})
}

// decode читает JSON тело запроса и валидирует его по тегам validate
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		// детали декодера содержат имена Go типов и клиенту не отдаются
		h.log.WithError(err).WithField("path", r.URL.Path).Debug("invalid request body")
		return errors.New("invalid request body")
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return validationMessage(verrs[0])
		}
		return err
	}

	return nil
}

func validationMessage(fe validator.FieldError) error {
	if fe.Tag() == "required" {
		return fmt.Errorf("%s is required", fe.Field())
	}
	return fmt.Errorf("%s is invalid", fe.Field())
}

// writeServiceError конвертирует ошибки сервиса в HTTP статусы.
// Подробности внутренних ошибок только логируются, клиент получает общее сообщение.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, internalMsg string) {
	var verr *svc.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, svc.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNoteNotFound):
		writeError(w, http.StatusNotFound, "note not found")
	default:
		h.log.WithError(err).Error(internalMsg)
		writeError(w, http.StatusInternalServerError, internalMsg)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, notesv1.ErrorResponse{Error: msg})
}
