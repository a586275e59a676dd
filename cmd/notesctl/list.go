package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mip-notes/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	Long:  `List all notes, newest first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		notes, err := notesClient.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list notes: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), ui.FormatNoteList(notes))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
