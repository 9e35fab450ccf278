// Package cli wires the fastwell command tree. Commands are thin: they
// parse flags, call a service, and format the result.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mlevkov/fastwell/internal/service"
)

// App holds references to all service interfaces used by CLI commands,
// plus the user the invocation acts as.
type App struct {
	Sessions  service.SessionService
	Schedules service.ScheduleService
	Stats     service.StatsService

	// RunMonitor blocks running the auto-start monitor; wired by main so
	// the command stays free of process-level concerns.
	RunMonitor func(ctx context.Context) error

	// User is bound to the root --user flag.
	User string
}

// NewRootCmd creates the top-level "fastwell" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "fastwell",
		Short: "Fasting session tracker and schedule engine",
	}

	root.PersistentFlags().StringVar(&app.User, "user", "default", "User the command acts as")

	root.AddCommand(
		newFastCmd(app),
		newScheduleCmd(app),
		newStatsCmd(app),
		newMonitorCmd(app),
	)

	return root
}
