package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mlevkov/fastwell/internal/cli"
	"github.com/mlevkov/fastwell/internal/clock"
	"github.com/mlevkov/fastwell/internal/config"
	"github.com/mlevkov/fastwell/internal/db"
	"github.com/mlevkov/fastwell/internal/monitor"
	"github.com/mlevkov/fastwell/internal/repository"
	"github.com/mlevkov/fastwell/internal/retry"
	"github.com/mlevkov/fastwell/internal/service"
	"github.com/mlevkov/fastwell/internal/stats"
	prom "github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories and the transactional unit of work
	sessionRepo := repository.NewSQLiteSessionRepo(database)
	scheduleRepo := repository.NewSQLiteScheduleRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)
	clk := clock.System{}

	// Wire services
	observer := service.NewLogUseCaseObserver(os.Stderr)
	sessionSvc := service.NewSessionService(sessionRepo, uow, clk, observer)

	app := &cli.App{
		Sessions:  sessionSvc,
		Schedules: service.NewScheduleService(scheduleRepo, clk),
		Stats:     service.NewStatsService(sessionRepo, clk, cfg.Location(), stats.DefaultPolicy()),
	}

	app.RunMonitor = func(ctx context.Context) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		registry := prom.NewRegistry()
		metrics := monitor.NewMetrics(registry)
		policy := retry.NewPolicy(retry.BackoffExponential, cfg.RetryBaseDelay, 5*time.Second, cfg.RetryMaxAttempts)

		m := monitor.New(sessionSvc, scheduleRepo, clk, cfg.Location(), cfg.MonitorInterval, policy, metrics, logger)
		if err := m.Start(ctx); err != nil {
			return err
		}

		var srv *monitor.MetricsServer
		if cfg.MetricsAddr != "" {
			srv = monitor.NewMetricsServer(cfg.MetricsAddr, registry, logger)
			srv.Start()
		}

		<-ctx.Done()

		if srv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(shutdownCtx)
		}
		return m.Stop()
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
