package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/fnevents/pkg/fnevents/decode"
)

type decodeOptions struct {
	*rootOptions
	database string
	session  string
}

func newDecodeCommand(root *rootOptions) *cobra.Command {
	opts := &decodeOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Print a recorded session with function names",
		Long: `Decode a recorded session. Function identifiers are resolved through
the most recent catalog in the stream, and every block stop or cancel is
paired with its start.

Examples:
  fntrace decode --db trace.db --session 5f0c...
  fntrace decode --db trace.db --session 5f0c... --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDecode(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.database, "db", "", "path to SQLite recording database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.session, "session", "", "session ID to decode (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func runDecode(cmd *cobra.Command, opts *decodeOptions) error {
	store, err := openRecording(opts.database)
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.List(opts.session)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return commandError(fmt.Errorf("session %q has no events", opts.session))
	}

	report := decode.DecodeSession(recs)
	for _, p := range report.Problems {
		opts.logger.Warn("record skipped", "problem", p)
	}

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		if err := writeJSON(out, report); err != nil {
			return err
		}
		return problemsError(report.Problems)
	}

	for _, line := range report.Lines {
		fmt.Fprintln(out, line.Text())
	}
	for _, b := range report.Open {
		fmt.Fprintf(out, "open: function=%d block=%d %q\n", b.FunctionID, b.BlockID, b.Message)
	}
	for _, b := range report.Abandoned {
		fmt.Fprintf(out, "abandoned: function=%d block=%d %q\n", b.FunctionID, b.BlockID, b.Message)
	}
	return problemsError(report.Problems)
}

// problemsError reports undecodable records after the readable ones have
// been printed.
func problemsError(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &exitError{code: exitFailure, err: fmt.Errorf("%d records could not be decoded", len(problems))}
}
