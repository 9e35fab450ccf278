package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlevkov/fastwell/internal/cli/formatter"
	"github.com/mlevkov/fastwell/internal/domain"
)

func newFastCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fast",
		Short: "Manage fasting sessions",
	}

	start := newFastStartCmd(app)

	// "begin" predates "start" and is kept for existing scripts.
	begin := newFastStartCmd(app)
	begin.Use = "begin"
	begin.Deprecated = `use "fast start"`

	cmd.AddCommand(
		start,
		begin,
		newFastEndCmd(app),
		newFastCancelCmd(app),
		newFastStatusCmd(app),
		newFastHistoryCmd(app),
	)

	return cmd
}

func newFastStartCmd(app *App) *cobra.Command {
	var target float64

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a fasting session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			var targetPtr *float64
			if cmd.Flags().Changed("target") {
				targetPtr = &target
			}

			s, err := app.Sessions.Start(ctx, app.User, targetPtr)
			if err != nil {
				return err
			}

			msg := fmt.Sprintf("Fast started at %s", s.StartTime.Local().Format("15:04"))
			if s.TargetDurationHours != nil {
				msg += fmt.Sprintf(", target %s", formatter.FormatHours(*s.TargetDurationHours))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", msg, formatter.TruncID(s.ID))
			return nil
		},
	}

	cmd.Flags().Float64Var(&target, "target", 16, "Target duration in hours")

	return cmd
}

func newFastEndCmd(app *App) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "end",
		Short: "Complete the active fast",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			sessionID, err := resolveSessionID(ctx, app, id)
			if err != nil {
				return err
			}

			s, err := app.Sessions.End(ctx, sessionID, app.User)
			if err != nil {
				return err
			}

			d := s.ActualDuration()
			line := fmt.Sprintf("Fast completed after %s", formatter.FormatElapsed(d))
			if s.TargetDurationHours != nil {
				if s.MetTarget() {
					line += " " + formatter.StyleGreen.Render("(target met)")
				} else {
					line += " " + formatter.StyleYellow.Render(fmt.Sprintf("(target was %s)", formatter.FormatHours(*s.TargetDurationHours)))
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Session ID (defaults to the active fast)")

	return cmd
}

func newFastCancelCmd(app *App) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Abandon the active fast",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			sessionID, err := resolveSessionID(ctx, app, id)
			if err != nil {
				return err
			}

			s, err := app.Sessions.Cancel(ctx, sessionID, app.User)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Fast cancelled after %s\n", formatter.FormatElapsed(s.ActualDuration()))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Session ID (defaults to the active fast)")

	return cmd
}

func newFastStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active fast",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, err := app.Sessions.GetActive(ctx, app.User)
			if err != nil {
				return err
			}
			if s == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No active fast.")
				return nil
			}

			elapsed := s.Elapsed(time.Now().UTC())
			lines := fmt.Sprintf("%s\nStarted:  %s\nElapsed:  %s",
				formatter.StatusPill(s.Status),
				formatter.HumanDate(s.StartTime.Local()),
				formatter.Bold(formatter.FormatElapsed(elapsed)))
			if s.TargetDurationHours != nil {
				remaining := domain.HoursToDuration(*s.TargetDurationHours) - elapsed
				if remaining > 0 {
					lines += fmt.Sprintf("\nTarget:   %s (%s to go)",
						formatter.FormatHours(*s.TargetDurationHours),
						formatter.FormatElapsed(remaining))
				} else {
					lines += fmt.Sprintf("\nTarget:   %s %s",
						formatter.FormatHours(*s.TargetDurationHours),
						formatter.StyleGreen.Render("reached"))
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderBox("Current Fast", lines))
			return nil
		},
	}
}

func newFastHistoryCmd(app *App) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past fasting sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			var statuses []domain.SessionStatus
			if statusFilter != "" {
				st := domain.SessionStatus(statusFilter)
				switch st {
				case domain.SessionActive, domain.SessionCompleted, domain.SessionCancelled:
					statuses = append(statuses, st)
				default:
					return fmt.Errorf("unknown status %q", statusFilter)
				}
			}

			sessions, err := app.Sessions.History(ctx, app.User, statuses...)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions found.")
				return nil
			}

			headers := []string{"ID", "STATUS", "STARTED", "DURATION", "TARGET"}
			rows := make([][]string, 0, len(sessions))
			for _, s := range sessions {
				duration := "-"
				if s.Terminal() {
					duration = formatter.FormatElapsed(s.ActualDuration())
				}
				target := formatter.Dim("-")
				if s.TargetDurationHours != nil {
					target = formatter.FormatHours(*s.TargetDurationHours)
				}
				rows = append(rows, []string{
					formatter.TruncID(s.ID),
					formatter.StatusPill(s.Status),
					formatter.HumanTimestamp(s.StartTime.Local()),
					duration,
					target,
				})
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderBox("Fasting History", formatter.RenderTable(headers, rows)))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Filter by status (active|completed|cancelled)")

	return cmd
}

// resolveSessionID returns the explicit id when given, otherwise the user's
// active session.
func resolveSessionID(ctx context.Context, app *App, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	s, err := app.Sessions.GetActive(ctx, app.User)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", fmt.Errorf("no active fast")
	}
	return s.ID, nil
}
