package converter

import (
	"mip-notes/internal/model"
	"mip-notes/internal/service/notes"
	notesv1 "mip-notes/pkg/notesv1"
)

// ModelToAPI конвертирует domain модель Note во внешнее представление
func ModelToAPI(note model.Note) notesv1.Note {
	return notesv1.Note{
		UUID:      note.UUID,
		Text:      note.Text,
		Color:     note.Color,
		NrOfEdits: note.NrOfEdits,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

// ModelsToAPI конвертирует слайс domain моделей. Пустой список остается пустым массивом, а не null.
func ModelsToAPI(notes []model.Note) []notesv1.Note {
	out := make([]notesv1.Note, len(notes))
	for i, note := range notes {
		out[i] = ModelToAPI(note)
	}

	return out
}

// EventToAPI конвертирует событие сервиса во внешнее представление
func EventToAPI(event notes.NoteEvent) notesv1.NoteEvent {
	return notesv1.NoteEvent{
		Type: string(event.Type),
		Note: ModelToAPI(event.Note),
		At:   event.At,
	}
}
