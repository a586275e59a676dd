package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mip-notes/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show <id-prefix>",
	Short: "Show a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, err := notesClient.Find(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get note: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), ui.FormatNote(note))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
