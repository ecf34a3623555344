package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/fnevents/pkg/fnevents/catalog"
	"github.com/randalmurphal/fnevents/pkg/fnevents/funcid"
	"github.com/randalmurphal/fnevents/pkg/fnevents/version"
)

type catalogOptions struct {
	*rootOptions
	version string
	debug   bool
}

func newCatalogCommand(root *rootOptions) *cobra.Command {
	opts := &catalogOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "catalog [definitions-file]",
		Short: "Print the catalog document for a definitions file",
		Long: `Generate the catalog a running process would publish for the given
function definitions.

The definitions file defaults to the "definitions" setting. The version
defaults to the "product_version" setting, then the fntrace build version.

Examples:
  fntrace catalog functions.yaml --version 1.4.0
  fntrace catalog --config fnevents.toml --debug`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.version, "version", "", "product version stamped on the catalog")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "prefix names with the debug marker")

	return cmd
}

func runCatalog(cmd *cobra.Command, opts *catalogOptions, args []string) error {
	defs, err := loadDefinitions(opts.rootOptions, args)
	if err != nil {
		return err
	}

	catOpts := catalog.OptionsFromSettings(opts.settings)
	if cmd.Flags().Changed("debug") {
		catOpts.Debug = opts.debug
	}
	catOpts.Logger = opts.logger

	ver := version.Override(version.BuildInfo(), opts.settings.ProductVersion)
	ver = version.Override(ver, opts.version)

	text, err := catalog.NewGenerator(defs, ver, catOpts).Generate(cmd.Context())
	if err != nil {
		return commandError(err)
	}

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		parsed, err := catalog.Parse(text)
		if err != nil {
			return err
		}
		return writeJSON(out, parsed)
	}
	_, err = io.WriteString(out, text)
	return err
}

func loadDefinitions(opts *rootOptions, args []string) (funcid.Definitions, error) {
	path := opts.settings.Definitions
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return nil, commandError(fmt.Errorf("no definitions file: pass one or set \"definitions\" in the config"))
	}
	defs, err := funcid.LoadFile(path)
	if err != nil {
		return nil, commandError(err)
	}
	return defs, nil
}
