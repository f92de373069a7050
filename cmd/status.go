package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	statusadapter "github.com/bnema/memefi-tapper/internal/adapters/render/status"
	"github.com/bnema/memefi-tapper/internal/domain"
	"github.com/spf13/cobra"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var (
		asJSON     bool
		staleAfter time.Duration
	)

	cmd := &cobra.Command{
		Use:   "status [session]",
		Short: "Show the last known state of each session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := wireApp(opts)
			if err != nil {
				return err
			}

			var snapshots []domain.SessionSnapshot
			if len(args) == 1 {
				snapshot, err := app.snapshots.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				snapshots = []domain.SessionSnapshot{snapshot}
			} else {
				snapshots, err = app.snapshots.List(cmd.Context())
				if err != nil {
					return err
				}
			}

			return writeSnapshotsOutput(cmd, app, snapshots, staleAfter, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print snapshots as JSON")
	cmd.Flags().DurationVar(&staleAfter, "stale-after", defaultStaleAfter, "mark sessions without a completed pass in this window")
	return cmd
}

func writeSnapshotsOutput(cmd *cobra.Command, app *app, snapshots []domain.SessionSnapshot, staleAfter time.Duration, asJSON bool) error {
	if asJSON {
		if snapshots == nil {
			snapshots = []domain.SessionSnapshot{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snapshots)
	}

	rendered, err := app.statusRenderer(snapshots, statusadapter.RenderOptions{
		Now:        app.clock.Now(),
		StaleAfter: staleAfter,
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
