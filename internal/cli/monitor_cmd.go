package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newMonitorCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Run the schedule auto-start monitor",
		Long:  "Polls enabled schedules and starts fasting sessions when they come due. Runs until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.RunMonitor == nil {
				return fmt.Errorf("monitor is not configured")
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.RunMonitor(ctx)
		},
	}
}
