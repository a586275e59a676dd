package ui

import (
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	notesv1 "mip-notes/pkg/notesv1"
)

func init() {
	color.NoColor = true
}

func testNote() notesv1.Note {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return notesv1.Note{
		UUID:      "0f8b1d9e-6a43-4c1e-9a55-6c1f3a0b2d7e",
		Text:      "buy milk\nand bread",
		Color:     "red",
		NrOfEdits: 2,
		CreatedAt: now,
		UpdatedAt: now.Add(time.Hour),
	}
}

func TestFormatNoteListItem(t *testing.T) {
	out := FormatNoteListItem(testNote())

	assert.Contains(t, out, "0f8b1d9e")
	assert.NotContains(t, out, "6a43", "only the id prefix is shown")
	assert.Contains(t, out, "buy milk …")
	assert.Contains(t, out, "Edits: 2")
	assert.Contains(t, out, "Color: red")
}

func TestFormatNoteList_Empty(t *testing.T) {
	assert.Equal(t, "No notes found.\n", FormatNoteList(nil))
}

func TestFormatNote(t *testing.T) {
	out := FormatNote(testNote())

	assert.Contains(t, out, "0f8b1d9e-6a43-4c1e-9a55-6c1f3a0b2d7e")
	assert.Contains(t, out, "Edits: 2")
	assert.Contains(t, out, "buy milk\nand bread")
}

func TestFormatEvent(t *testing.T) {
	out := FormatEvent(notesv1.NoteEvent{Type: "deleted", Note: notesv1.Note{UUID: "abc"}, At: time.Now()})
	assert.Contains(t, out, "deleted abc")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", ShortID("abc"))
	assert.Equal(t, "12345678", ShortID("123456789"))
}

func TestSuccessAndError(t *testing.T) {
	assert.Equal(t, "✓ done", Success("done"))
	assert.Equal(t, "✗ failed", Error("failed"))
}
