package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mip-notes/internal/ui"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id-prefix>",
	Short: "Remove a note",
	Long:  `Delete a note. Asks for confirmation unless --force is set.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		note, err := notesClient.Find(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get note: %w", err)
		}

		if !force {
			fmt.Fprintf(cmd.OutOrStdout(), "Delete note %q (%s)? [y/N] ", note.Text, ui.ShortID(note.UUID))
			reader := bufio.NewReader(cmd.InOrStdin())
			response, _ := reader.ReadString('\n')
			response = strings.TrimSpace(strings.ToLower(response))
			if response != "y" && response != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
		}

		if _, err := notesClient.DeleteNote.Mutate(cmd.Context(), note.UUID); err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Deleted note %s", ui.ShortID(note.UUID))))
		return nil
	},
}

func init() {
	rmCmd.Flags().BoolP("force", "f", false, "skip confirmation")
	rootCmd.AddCommand(rmCmd)
}
