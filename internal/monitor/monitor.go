// Package monitor polls enabled schedules and auto-starts fasting sessions
// when they come due. One monitor process serves all users; per-user writes
// are sequential within a tick so a user's own schedules never race each
// other, while the store's active-session index settles races against
// manual starts.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/mlevkov/fastwell/internal/clock"
	"github.com/mlevkov/fastwell/internal/domain"
	"github.com/mlevkov/fastwell/internal/repository"
	"github.com/mlevkov/fastwell/internal/retry"
	"github.com/mlevkov/fastwell/internal/schedule"
	"github.com/mlevkov/fastwell/internal/service"
)

// AutoStartMonitor drives the schedule auto-start loop.
type AutoStartMonitor struct {
	sessions  service.SessionService
	schedules repository.ScheduleRepo
	clk       clock.Clock
	loc       *time.Location
	policy    retry.Policy
	metrics   *Metrics
	logger    *slog.Logger

	scheduler gocron.Scheduler
	interval  time.Duration
}

// New builds a monitor. loc is the fallback zone for schedules without one;
// metrics and logger may be nil.
func New(sessions service.SessionService, schedules repository.ScheduleRepo, clk clock.Clock, loc *time.Location, interval time.Duration, policy retry.Policy, metrics *Metrics, logger *slog.Logger) *AutoStartMonitor {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoStartMonitor{
		sessions:  sessions,
		schedules: schedules,
		clk:       clk,
		loc:       loc,
		policy:    policy,
		metrics:   metrics,
		logger:    logger,
		interval:  interval,
	}
}

// Start begins periodic polling. The first tick fires immediately so a due
// schedule is not left waiting a full interval after process start.
func (m *AutoStartMonitor) Start(ctx context.Context) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(m.interval),
		gocron.NewTask(func() { m.Tick(ctx) }),
		gocron.WithName("auto-start"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("creating auto-start job: %w", err)
	}
	m.scheduler = s
	m.logger.Info("monitor started", "interval", m.interval.String())
	s.Start()
	return nil
}

// Stop shuts the polling loop down, waiting for a running tick to finish.
func (m *AutoStartMonitor) Stop() error {
	if m.scheduler == nil {
		return nil
	}
	m.logger.Info("monitor stopping")
	return m.scheduler.Shutdown()
}

// Tick runs one poll cycle: load enabled schedules, evaluate due-ness, and
// auto-start each due schedule. A failure on one schedule never blocks the
// others; failed schedules are retried naturally on the next tick because
// their trigger guard was not advanced.
func (m *AutoStartMonitor) Tick(ctx context.Context) {
	started := time.Now()
	now := m.clk.Now()

	enabled, err := m.schedules.ListEnabled(ctx)
	if err != nil {
		m.logger.Error("listing enabled schedules", "error", err)
		m.metrics.IncError()
		m.metrics.ObserveTick(time.Since(started).Seconds(), 0)
		return
	}

	due := schedule.Due(enabled, now, m.loc)
	for _, byUser := range groupByUser(due) {
		for _, sched := range byUser {
			m.fire(ctx, sched)
		}
	}
	m.metrics.ObserveTick(time.Since(started).Seconds(), len(due))
}

func (m *AutoStartMonitor) fire(ctx context.Context, sched *domain.ScheduledFast) {
	var session *domain.FastingSession
	err := m.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		session, err = m.sessions.StartFromSchedule(ctx, sched)
		return err
	})
	if err != nil {
		m.logger.Error("auto-start failed",
			"schedule_id", sched.ID,
			"user_id", sched.UserID,
			"error", err)
		m.metrics.IncError()
		return
	}
	if session == nil {
		// A session was already active; the guard still advanced.
		m.logger.Info("auto-start skipped, session already active",
			"schedule_id", sched.ID,
			"user_id", sched.UserID)
		m.metrics.IncConflict()
		return
	}
	m.logger.Info("session auto-started",
		"schedule_id", sched.ID,
		"user_id", sched.UserID,
		"session_id", session.ID)
	m.metrics.IncAutoStart()
}

// groupByUser partitions schedules by owner, users in deterministic order.
func groupByUser(schedules []*domain.ScheduledFast) [][]*domain.ScheduledFast {
	byUser := map[string][]*domain.ScheduledFast{}
	for _, s := range schedules {
		byUser[s.UserID] = append(byUser[s.UserID], s)
	}
	users := make([]string, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	sort.Strings(users)
	groups := make([][]*domain.ScheduledFast, 0, len(users))
	for _, u := range users {
		groups = append(groups, byUser[u])
	}
	return groups
}
