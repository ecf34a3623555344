package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/fnevents/pkg/fnevents/config"
)

// Exit codes.
const (
	exitFailure      = 1 // findings (check problems, undecodable records)
	exitCommandError = 2 // bad input (missing files, bad flags)
)

// exitError carries an exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func commandError(err error) error { return &exitError{code: exitCommandError, err: err} }

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitFailure
}

// validFormats defines the allowed output formats.
var validFormats = []string{"text", "json"}

// rootOptions holds global flags for all commands.
type rootOptions struct {
	configPath string
	format     string
	logLevel   string

	settings config.Settings
	logger   *slog.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{settings: config.DefaultSettings}

	cmd := &cobra.Command{
		Use:   "fntrace",
		Short: "Inspect fnevents function catalogs and recorded traces",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "settings file (yaml, json or toml)")
	cmd.PersistentFlags().StringVar(&opts.format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error); overrides config")

	cmd.AddCommand(newCatalogCommand(opts))
	cmd.AddCommand(newCheckCommand(opts))
	cmd.AddCommand(newSessionsCommand(opts))
	cmd.AddCommand(newDecodeCommand(opts))

	return cmd
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	if !isValidFormat(o.format) {
		return commandError(fmt.Errorf("invalid format %q: must be one of %v", o.format, validFormats))
	}

	if o.configPath != "" {
		s, err := config.LoadSettings(o.configPath)
		if err != nil {
			return commandError(err)
		}
		o.settings = s
	}
	if o.logLevel != "" {
		o.settings.LogLevel = o.logLevel
	}

	level, err := o.settings.SlogLevel()
	if err != nil {
		return commandError(err)
	}
	o.logger = slog.New(slog.NewTextHandler(errWriter(cmd), &slog.HandlerOptions{Level: level}))
	return nil
}

func isValidFormat(format string) bool {
	for _, f := range validFormats {
		if f == format {
			return true
		}
	}
	return false
}

func errWriter(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stderr
	}
	return cmd.ErrOrStderr()
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
