package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/fnevents/pkg/fnevents/recording"
)

type sessionsOptions struct {
	*rootOptions
	database string
	remove   string
}

func newSessionsCommand(root *rootOptions) *cobra.Command {
	opts := &sessionsOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions",
		Long: `List the sessions stored in a recording database.

Examples:
  fntrace sessions --db trace.db
  fntrace sessions --db trace.db --delete 5f0c...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSessions(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.database, "db", "", "path to SQLite recording database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.remove, "delete", "", "delete the session with this ID")

	return cmd
}

func runSessions(cmd *cobra.Command, opts *sessionsOptions) error {
	store, err := openRecording(opts.database)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if opts.remove != "" {
		if err := store.DeleteSession(opts.remove); err != nil {
			return err
		}
		opts.logger.Info("session deleted", "session_id", opts.remove)
		return nil
	}

	infos, err := store.Sessions()
	if err != nil {
		return err
	}

	if opts.format == "json" {
		if infos == nil {
			infos = []recording.SessionInfo{}
		}
		return writeJSON(out, infos)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tSTARTED\tEVENTS\tSPAN")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
			info.ID,
			info.StartedAt.Format(time.RFC3339),
			info.Events,
			info.LastAt.Sub(info.StartedAt).Round(time.Millisecond),
		)
	}
	return tw.Flush()
}
