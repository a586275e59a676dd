package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mip-notes/internal/client"
	"mip-notes/internal/ui"
)

var editCmd = &cobra.Command{
	Use:   "edit <id-prefix>",
	Short: "Edit a note",
	Long:  `Replace the text of a note. The color is kept unless --color is given.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		textFlag, _ := cmd.Flags().GetString("text")

		note, err := notesClient.Find(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get note: %w", err)
		}

		in := client.UpdateInput{ID: note.UUID, Text: textFlag}
		if in.Text == "" {
			in.Text = note.Text
		}
		if cmd.Flags().Changed("color") {
			colorFlag, _ := cmd.Flags().GetString("color")
			in.Color = &colorFlag
		}

		updated, err := notesClient.UpdateNote.Mutate(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("failed to update note: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Updated note %s (edits: %d)", ui.ShortID(updated.UUID), updated.NrOfEdits)))
		return nil
	},
}

func init() {
	editCmd.Flags().StringP("text", "t", "", "new note text")
	editCmd.Flags().StringP("color", "c", "", "new note color")
	rootCmd.AddCommand(editCmd)
}
