package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mip-notes/internal/client"
	"mip-notes/internal/ui"
)

var (
	version = "dev"

	notesClient *client.Notes
	queries     *client.QueryClient
)

var rootCmd = &cobra.Command{
	Use:           "notesctl",
	Short:         "Command line client for the notes API",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		backendURL, _ := cmd.Flags().GetString("backend-url")
		runtimeConfig, _ := cmd.Flags().GetString("runtime-config")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		baseURL, err := client.ResolveBaseURL(client.BaseURLOptions{
			Override:          backendURL,
			RuntimeConfigFile: runtimeConfig,
		})
		if err != nil {
			return err
		}

		queries = client.NewQueryClient(client.WithRefetchTimeout(timeout))
		notesClient = client.NewNotes(client.NewAPI(baseURL, &http.Client{Timeout: timeout}), queries)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if queries != nil {
			queries.Close()
		}
	},
}

// Execute запускает корневую команду
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Error(err.Error()))
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().String("backend-url", "", "notes API base URL (overrides "+client.EnvBackendURL+")")
	rootCmd.PersistentFlags().String("runtime-config", "runtime-config.yaml", "runtime config file with "+client.EnvBackendURL)
	rootCmd.PersistentFlags().Duration("timeout", 10*time.Second, "request timeout")
}
