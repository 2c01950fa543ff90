package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/portfolio"
)

var validateCmd = &cobra.Command{
	Use:   "validate [path|url]",
	Short: "Check a portfolio document against the expected shape",
	Long: `Fetch the document (PORTFOLIO_SOURCE by default) and report every
missing or mistyped field. Exits non-zero when the document is invalid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		location := cfg.Source
		if len(args) == 1 {
			location = args[0]
		}

		source, err := portfolio.NewSource(cmd.Context(), location, s3Options(cfg))
		if err != nil {
			return err
		}
		ctx, cancel := contextWithTimeout(cmd, cfg.FetchTimeout)
		defer cancel()

		doc, err := portfolio.Load(ctx, source)
		out := cmd.OutOrStdout()
		var verr *portfolio.ValidationError
		switch {
		case errors.As(err, &verr):
			for _, p := range verr.Problems {
				fmt.Fprintf(out, "  %s\n", p)
			}
			return fmt.Errorf("%s: %d problem(s)", location, len(verr.Problems))
		case err != nil:
			return fmt.Errorf("%s: %w", location, err)
		}

		fmt.Fprintf(out, "%s: ok (%d skills, %d education, %d experience, %d projects)\n",
			location, len(doc.Skills), len(doc.Education), len(doc.Experience), len(doc.Projects))
		return nil
	},
}
