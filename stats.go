package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/web"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print aggregate page-view counts from VISITS_DB",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.VisitsDB == "" {
			return errors.New("VISITS_DB is not set")
		}
		ctx, cancel := contextWithTimeout(cmd, 10*time.Second)
		defer cancel()

		visits, err := web.OpenVisitLog(ctx, cfg.VisitsDB, slog.Default())
		if err != nil {
			return err
		}
		defer visits.Close()

		stats, err := visits.Stats(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "total visits:     %d\n", stats.TotalVisits)
		fmt.Fprintf(out, "unique visitors:  %d\n", stats.UniqueVisitors)
		fmt.Fprintf(out, "visits today:     %d\n", stats.VisitsToday)
		fmt.Fprintf(out, "visits this week: %d\n", stats.VisitsThisWeek)
		return nil
	},
}

func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, d)
}
