package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	grpcapi "mip-notes/internal/api/grpc"
	"mip-notes/internal/client"
	"mip-notes/internal/ui"
	notesv1 "mip-notes/pkg/notesv1"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream note changes",
	Long:  `Subscribe to note events over gRPC. Every event invalidates the cached list, which is then refetched over HTTP.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("grpc-addr")
		out := cmd.OutOrStdout()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := append(grpcapi.DialOptions(), grpc.WithTransportCredentials(insecure.NewCredentials()))
		conn, err := grpc.NewClient(addr, opts...)
		if err != nil {
			return fmt.Errorf("failed to connect to %s: %w", addr, err)
		}
		defer conn.Close()

		stream, err := grpcapi.NewNotesClient(conn).WatchNotes(ctx, &notesv1.WatchNotesRequest{})
		if err != nil {
			return fmt.Errorf("failed to watch notes: %w", err)
		}

		notes, err := notesClient.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list notes: %w", err)
		}
		fmt.Fprint(out, ui.FormatNoteList(notes))

		changes, unsubscribe := notesClient.Subscribe()
		defer unsubscribe()

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-changes:
					s := notesClient.Snapshot()
					switch {
					case s.IsError:
						fmt.Fprintln(out, ui.Error("Error loading notes"))
					case !s.IsLoading:
						fmt.Fprintln(out, color.New(color.Faint).Sprintf("  %d notes", len(s.Notes)))
					}
				}
			}
		}()

		for {
			ev, err := stream.Recv()
			switch {
			case err == nil:
			case ctx.Err() != nil, errors.Is(err, io.EOF):
				return nil
			case status.Code(err) == codes.Unavailable:
				return fmt.Errorf("server closed the stream: %s", status.Convert(err).Message())
			default:
				return fmt.Errorf("watch notes: %w", err)
			}

			fmt.Fprint(out, ui.FormatEvent(*ev))
			queries.InvalidateQueries(client.NotesKey)
		}
	},
}

func init() {
	watchCmd.Flags().String("grpc-addr", "localhost:50051", "notes gRPC address")
	rootCmd.AddCommand(watchCmd)
}
