package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlevkov/fastwell/internal/cli/formatter"
	"github.com/mlevkov/fastwell/internal/domain"
)

func newScheduleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage recurring fasts",
	}

	cmd.AddCommand(
		newScheduleAddCmd(app),
		newScheduleListCmd(app),
		newScheduleEnableCmd(app, true),
		newScheduleEnableCmd(app, false),
		newScheduleRemoveCmd(app),
	)

	return cmd
}

func newScheduleAddCmd(app *App) *cobra.Command {
	var days, at, tz string
	var duration float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a recurring fast",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			weekdays, err := parseWeekdays(days)
			if err != nil {
				return err
			}

			s := &domain.ScheduledFast{
				UserID:         app.User,
				Enabled:        true,
				DaysOfWeek:     weekdays,
				StartTimeOfDay: at,
				DurationHours:  duration,
				Timezone:       tz,
			}
			if err := app.Schedules.Create(ctx, s); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Schedule added: %s at %s for %s (%s)\n",
				formatter.Weekdays(s.DaysOfWeek), s.StartTimeOfDay,
				formatter.FormatHours(s.DurationHours), formatter.TruncID(s.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&days, "days", "", "Weekdays, e.g. mon,wed,fri")
	cmd.Flags().StringVar(&at, "at", "", "Start time of day, HH:MM")
	cmd.Flags().Float64Var(&duration, "duration", 16, "Fast duration in hours")
	cmd.Flags().StringVar(&tz, "tz", "", "IANA timezone (defaults to the engine timezone)")
	_ = cmd.MarkFlagRequired("days")
	_ = cmd.MarkFlagRequired("at")

	return cmd
}

func newScheduleListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recurring fasts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			schedules, err := app.Schedules.List(ctx, app.User)
			if err != nil {
				return err
			}
			if len(schedules) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No schedules found.")
				return nil
			}

			headers := []string{"ID", "STATE", "DAYS", "AT", "DURATION", "TZ", "LAST RUN"}
			rows := make([][]string, 0, len(schedules))
			for _, s := range schedules {
				tz := s.Timezone
				if tz == "" {
					tz = formatter.Dim("default")
				}
				lastRun := formatter.Dim("never")
				if s.LastTriggeredAt != nil {
					lastRun = formatter.HumanTimestamp(s.LastTriggeredAt.Local())
				}
				rows = append(rows, []string{
					formatter.TruncID(s.ID),
					formatter.EnabledPill(s.Enabled),
					formatter.Weekdays(s.DaysOfWeek),
					s.StartTimeOfDay,
					formatter.FormatHours(s.DurationHours),
					tz,
					lastRun,
				})
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderBox("Schedules", formatter.RenderTable(headers, rows)))
			return nil
		},
	}
}

func newScheduleEnableCmd(app *App, enable bool) *cobra.Command {
	use, short, verb := "enable <id>", "Enable a recurring fast", "enabled"
	if !enable {
		use, short, verb = "disable <id>", "Disable a recurring fast", "disabled"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := app.Schedules.SetEnabled(ctx, args[0], app.User, enable); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schedule %s %s\n", formatter.TruncID(args[0]), verb)
			return nil
		},
	}
}

func newScheduleRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a recurring fast",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := app.Schedules.Delete(ctx, args[0], app.User); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schedule %s removed\n", formatter.TruncID(args[0]))
			return nil
		},
	}
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday,
	"wed": time.Wednesday, "thu": time.Thursday, "fri": time.Friday,
	"sat": time.Saturday,
}

// parseWeekdays parses a comma-separated weekday list like "mon,wed,fri".
// Full names are accepted too.
func parseWeekdays(v string) ([]time.Weekday, error) {
	parts := strings.Split(v, ",")
	days := make([]time.Weekday, 0, len(parts))
	for _, p := range parts {
		name := strings.ToLower(strings.TrimSpace(p))
		if len(name) > 3 {
			name = name[:3]
		}
		d, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", strings.TrimSpace(p))
		}
		days = append(days, d)
	}
	return days, nil
}
