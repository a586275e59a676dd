package pubsub

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"mip-notes/internal/converter"
	"mip-notes/internal/logger"
	"mip-notes/internal/service/notes"
	notesv1 "mip-notes/pkg/notesv1"
)

// publishTimeout ограничение на публикацию одного события
const publishTimeout = 2 * time.Second

// EventHandler обработчик события заметки
type EventHandler func(ctx context.Context, event notesv1.NoteEvent) error

// Forward передает события подписки handler, пока канал не закрыт.
// Остаток буфера доставляется и после закрытия, поэтому события запросов, завершенных во время shutdown,
// не теряются. ctx ограничивает каждый вызов handler. Ошибки handler логируются и не прерывают цикл.
func Forward(ctx context.Context, sub <-chan notes.NoteEvent, handler EventHandler, log *logger.Logger) {
	for ev := range sub {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		err := handler(pubCtx, converter.EventToAPI(ev))
		cancel()

		if err != nil {
			log.WithError(err).WithField("event", ev.Type).Warn("failed to forward note event")
		}
	}
}

// AuditLog возвращает обработчик, который пишет события заметок в лог
func AuditLog(log *logger.Logger) EventHandler {
	return func(_ context.Context, event notesv1.NoteEvent) error {
		log.WithFields(logrus.Fields{
			"event":     event.Type,
			"uuid":      event.Note.UUID,
			"nrOfEdits": event.Note.NrOfEdits,
		}).Info("note " + event.Type)
		return nil
	}
}
