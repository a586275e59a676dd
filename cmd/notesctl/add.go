package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mip-notes/internal/ui"
	notesv1 "mip-notes/pkg/notesv1"
)

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add a new note",
	Long:  `Create a new note. Multiple arguments are joined with spaces.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		colorFlag, _ := cmd.Flags().GetString("color")

		text := strings.Join(args, " ")
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("note text cannot be empty")
		}

		note, err := notesClient.CreateNote.Mutate(cmd.Context(), notesv1.CreateNoteRequest{Text: text, Color: colorFlag})
		if err != nil {
			return fmt.Errorf("failed to create note: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Created note %s", ui.ShortID(note.UUID))))
		return nil
	},
}

func init() {
	addCmd.Flags().StringP("color", "c", "", "note color")
	rootCmd.AddCommand(addCmd)
}
