// Package ui форматирует вывод notesctl в терминал.
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	notesv1 "mip-notes/pkg/notesv1"
)

const (
	idPrefixLen = 8
	timeLayout  = "2006-01-02 15:04"
)

var (
	faint = color.New(color.Faint).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

// noteColors цвета заметок, которые можно показать в терминале
var noteColors = map[string]color.Attribute{
	"red":     color.FgRed,
	"green":   color.FgGreen,
	"yellow":  color.FgYellow,
	"blue":    color.FgBlue,
	"magenta": color.FgMagenta,
	"purple":  color.FgMagenta,
	"cyan":    color.FgCyan,
}

// ShortID первые символы uuid для списка
func ShortID(id string) string {
	if len(id) <= idPrefixLen {
		return id
	}
	return id[:idPrefixLen]
}

// colorize красит текст цветом заметки, неизвестные цвета оставляет как есть
func colorize(noteColor, s string) string {
	attr, ok := noteColors[strings.ToLower(strings.TrimSpace(noteColor))]
	if !ok {
		return s
	}
	return color.New(attr).Sprint(s)
}

// FormatNoteListItem строка списка заметок
func FormatNoteListItem(note notesv1.Note) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("  %s  %s\n", faint(ShortID(note.UUID)), bold(colorize(note.Color, firstLine(note.Text)))))

	meta := fmt.Sprintf("Created: %s", note.CreatedAt.Local().Format(timeLayout))
	if note.NrOfEdits > 0 {
		meta += fmt.Sprintf("  Edits: %d", note.NrOfEdits)
	}
	if note.Color != "" {
		meta += "  Color: " + note.Color
	}
	sb.WriteString(fmt.Sprintf("            %s\n", faint(meta)))

	return sb.String()
}

// FormatNoteList список заметок или сообщение о пустом списке
func FormatNoteList(notes []notesv1.Note) string {
	if len(notes) == 0 {
		return "No notes found.\n"
	}

	var sb strings.Builder
	for _, n := range notes {
		sb.WriteString(FormatNoteListItem(n))
	}
	return sb.String()
}

// FormatNote подробный вывод заметки
func FormatNote(note notesv1.Note) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s %s\n", faint("ID:"), note.UUID))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Created:"), note.CreatedAt.Local().Format(timeLayout)))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Updated:"), note.UpdatedAt.Local().Format(timeLayout)))
	sb.WriteString(fmt.Sprintf("%s %d\n", faint("Edits:"), note.NrOfEdits))
	if note.Color != "" {
		sb.WriteString(fmt.Sprintf("%s %s\n", faint("Color:"), colorize(note.Color, note.Color)))
	}
	sb.WriteString(Separator())
	sb.WriteString(note.Text)
	sb.WriteString("\n")

	return sb.String()
}

// FormatEvent строка события из стрима WatchNotes
func FormatEvent(ev notesv1.NoteEvent) string {
	label := color.New(color.FgCyan).Sprint(ev.Type)
	switch ev.Type {
	case "created":
		label = color.New(color.FgGreen).Sprint(ev.Type)
	case "deleted":
		label = color.New(color.FgRed).Sprint(ev.Type)
	}
	return fmt.Sprintf("%s %s %s\n", faint(ev.At.Local().Format(timeLayout)), label, ShortID(ev.Note.UUID))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

func Separator() string {
	return faint(strings.Repeat("─", 50)) + "\n"
}

func Success(msg string) string {
	return color.New(color.FgGreen).Sprint("✓ ") + msg
}

func Error(msg string) string {
	return color.New(color.FgRed).Sprint("✗ ") + msg
}
