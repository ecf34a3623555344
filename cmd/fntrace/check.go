package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/fnevents/pkg/fnevents/funcid"
)

type checkResult struct {
	Definitions int      `json:"definitions"`
	Problems    []string `json:"problems"`
}

func newCheckCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [definitions-file]",
		Short: "Lint a definitions file",
		Long: `Report definitions that would be skipped from or break a catalog:
unresolvable values, duplicate values or names, and names containing
whitespace. Exits 1 when problems are found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := loadDefinitions(root, args)
			if err != nil {
				return err
			}

			res := checkResult{Definitions: len(defs), Problems: []string{}}
			for _, p := range funcid.Check(defs) {
				res.Problems = append(res.Problems, p.String())
			}

			out := cmd.OutOrStdout()
			if root.format == "json" {
				if err := writeJSON(out, res); err != nil {
					return err
				}
			} else {
				for _, p := range res.Problems {
					fmt.Fprintln(out, p)
				}
				fmt.Fprintf(out, "%d definitions, %d problems\n", res.Definitions, len(res.Problems))
			}

			if len(res.Problems) > 0 {
				return &exitError{code: exitFailure, err: fmt.Errorf("%d problems found", len(res.Problems))}
			}
			return nil
		},
	}
}
