package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bnema/memefi-tapper/internal/domain"
	"github.com/spf13/cobra"
)

func newSessionCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage stored Telegram credentials",
	}

	cmd.AddCommand(
		newSessionListCmd(opts),
		newSessionAddCmd(opts),
		newSessionDeleteCmd(opts),
	)

	return cmd
}

func newSessionListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := wireApp(opts)
			if err != nil {
				return err
			}

			lines, err := app.credentials.Load(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(lines) == 0 {
				_, err := fmt.Fprintln(out, "No sessions stored.")
				return err
			}

			for i, line := range lines {
				identity, err := domain.ParseIdentity(line)
				if err != nil {
					if _, err := fmt.Fprintf(out, "%d. invalid credential\n", i+1); err != nil {
						return err
					}
					continue
				}
				if _, err := fmt.Fprintf(out, "%d. %s (%d)\n", i+1, identity.SessionName(), identity.UserID); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func newSessionAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <token>",
		Short: "Validate and store a web app credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := wireApp(opts)
			if err != nil {
				return err
			}

			identity, err := domain.ParseIdentity(args[0])
			if err != nil {
				return err
			}

			if err := app.credentials.Append(cmd.Context(), strings.TrimSpace(args[0])); err != nil {
				return fmt.Errorf("store credential: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added session %s\n", identity.SessionName())
			return err
		},
	}
}

func newSessionDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a stored credential by session name or list position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := wireApp(opts)
			if err != nil {
				return err
			}

			lines, err := app.credentials.Load(cmd.Context())
			if err != nil {
				return err
			}

			index := findSession(lines, args[0])
			if index < 0 {
				return fmt.Errorf("session %q not found", args[0])
			}

			if _, err := app.credentials.RemoveAt(cmd.Context(), index); err != nil {
				return fmt.Errorf("remove credential: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
			return err
		},
	}
}

// findSession matches a session name first, then a 1-based list position.
func findSession(lines []string, name string) int {
	for i, line := range lines {
		identity, err := domain.ParseIdentity(line)
		if err != nil {
			continue
		}
		if identity.SessionName() == name {
			return i
		}
	}

	if position, err := strconv.Atoi(name); err == nil && position >= 1 && position <= len(lines) {
		return position - 1
	}

	return -1
}
