package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlevkov/fastwell/internal/cli/formatter"
)

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show fasting statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			st, err := app.Stats.ComputeStats(ctx, app.User)
			if err != nil {
				return err
			}

			content := fmt.Sprintf(
				"Total fasts:      %s\nCompletion rate:  %s\nAverage length:   %s\nTotal fasted:     %s\nCurrent streak:   %s\nLongest streak:   %s",
				formatter.Bold(fmt.Sprintf("%d", st.TotalSessions)),
				formatter.Bold(fmt.Sprintf("%.0f%%", st.CompletionRate*100)),
				formatter.Bold(formatter.FormatHours(st.AverageDurationHours)),
				formatter.Bold(formatter.FormatHours(st.TotalCompletedHours)),
				formatter.Bold(streakDays(st.CurrentStreak)),
				formatter.Bold(streakDays(st.LongestStreak)),
			)
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderBox("Statistics", content))
			return nil
		},
	}
}

func streakDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
