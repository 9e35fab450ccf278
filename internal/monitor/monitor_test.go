package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlevkov/fastwell/internal/domain"
	"github.com/mlevkov/fastwell/internal/repository"
	"github.com/mlevkov/fastwell/internal/retry"
	"github.com/mlevkov/fastwell/internal/service"
	"github.com/mlevkov/fastwell/internal/testutil"
)

// monday evening, past the 20:00 fixture start time.
var tickNow = time.Date(2026, 3, 2, 20, 30, 0, 0, time.UTC)

type fixture struct {
	monitor   *AutoStartMonitor
	sessions  repository.SessionRepo
	schedules repository.ScheduleRepo
	svc       service.SessionService
	clk       *testutil.Clock
	metrics   *Metrics
}

func newFixture(t *testing.T) *fixture {
	database := testutil.NewTestDB(t)
	clk := testutil.NewClock(tickNow)
	sessions := repository.NewSQLiteSessionRepo(database)
	schedules := repository.NewSQLiteScheduleRepo(database)
	svc := service.NewSessionService(sessions, testutil.NewTestUoW(database), clk)
	metrics := NewMetrics(prom.NewRegistry())
	m := New(svc, schedules, clk, time.UTC, time.Minute, retry.DefaultPolicy(), metrics, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return &fixture{monitor: m, sessions: sessions, schedules: schedules, svc: svc, clk: clk, metrics: metrics}
}

func TestTick_StartsDueSchedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sched := testutil.NewTestSchedule("u1",
		testutil.WithDays(time.Monday),
		testutil.WithStartTimeOfDay("20:00"),
		testutil.WithDuration(16))
	require.NoError(t, f.schedules.Create(ctx, sched))

	f.monitor.Tick(ctx)

	active, err := f.sessions.GetActive(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, active)
	require.NotNil(t, active.TargetDurationHours)
	assert.InDelta(t, 16.0, *active.TargetDurationHours, 1e-9)

	got, err := f.schedules.GetByID(ctx, sched.ID, "u1")
	require.NoError(t, err)
	require.NotNil(t, got.LastTriggeredAt)

	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.autoStarts))
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.ticks))
}

func TestTick_DoesNotFireTwiceForSameOccurrence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sched := testutil.NewTestSchedule("u1",
		testutil.WithDays(time.Monday),
		testutil.WithStartTimeOfDay("20:00"))
	require.NoError(t, f.schedules.Create(ctx, sched))

	f.monitor.Tick(ctx)

	// End the auto-started session so a second fire would succeed if the
	// guard failed to suppress it.
	active, err := f.sessions.GetActive(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, active)
	f.clk.Advance(time.Hour)
	_, err = f.svc.End(ctx, active.ID, "u1")
	require.NoError(t, err)

	f.clk.Advance(time.Hour)
	f.monitor.Tick(ctx)

	active, err = f.sessions.GetActive(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.autoStarts))
}

func TestTick_ConflictAdvancesGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "u1", nil)
	require.NoError(t, err)

	sched := testutil.NewTestSchedule("u1",
		testutil.WithDays(time.Monday),
		testutil.WithStartTimeOfDay("20:00"))
	require.NoError(t, f.schedules.Create(ctx, sched))

	f.monitor.Tick(ctx)

	got, err := f.schedules.GetByID(ctx, sched.ID, "u1")
	require.NoError(t, err)
	assert.NotNil(t, got.LastTriggeredAt)
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.conflicts))
	assert.Zero(t, promtest.ToFloat64(f.metrics.autoStarts))
}

func TestTick_IgnoresDisabledAndOffDaySchedules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	disabled := testutil.NewTestSchedule("u1",
		testutil.WithDays(time.Monday),
		testutil.WithStartTimeOfDay("20:00"),
		testutil.WithEnabled(false))
	require.NoError(t, f.schedules.Create(ctx, disabled))

	offDay := testutil.NewTestSchedule("u1",
		testutil.WithDays(time.Tuesday),
		testutil.WithStartTimeOfDay("20:00"))
	require.NoError(t, f.schedules.Create(ctx, offDay))

	f.monitor.Tick(ctx)

	active, err := f.sessions.GetActive(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.Zero(t, promtest.ToFloat64(f.metrics.autoStarts))
}

// failOnUser wraps a SessionService and fails auto-starts for one user.
type failOnUser struct {
	service.SessionService
	userID string
}

func (f *failOnUser) StartFromSchedule(ctx context.Context, sched *domain.ScheduledFast) (*domain.FastingSession, error) {
	if sched.UserID == f.userID {
		return nil, errors.New("boom")
	}
	return f.SessionService.StartFromSchedule(ctx, sched)
}

func TestTick_FailureOnOneScheduleDoesNotBlockOthers(t *testing.T) {
	database := testutil.NewTestDB(t)
	clk := testutil.NewClock(tickNow)
	sessions := repository.NewSQLiteSessionRepo(database)
	schedules := repository.NewSQLiteScheduleRepo(database)
	svc := &failOnUser{
		SessionService: service.NewSessionService(sessions, testutil.NewTestUoW(database), clk),
		userID:         "broken",
	}
	metrics := NewMetrics(prom.NewRegistry())
	m := New(svc, schedules, clk, time.UTC, time.Minute, retry.DefaultPolicy(), metrics, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	for _, user := range []string{"broken", "healthy"} {
		sched := testutil.NewTestSchedule(user,
			testutil.WithDays(time.Monday),
			testutil.WithStartTimeOfDay("20:00"))
		require.NoError(t, schedules.Create(ctx, sched))
	}

	m.Tick(ctx)

	active, err := sessions.GetActive(ctx, "healthy")
	require.NoError(t, err)
	assert.NotNil(t, active)
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.autoStarts))
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.errors))
}

func TestGroupByUser_DeterministicOrder(t *testing.T) {
	groups := groupByUser([]*domain.ScheduledFast{
		{UserID: "b"}, {UserID: "a"}, {UserID: "b"}, {UserID: "c"},
	})
	require.Len(t, groups, 3)
	assert.Equal(t, "a", groups[0][0].UserID)
	assert.Equal(t, "b", groups[1][0].UserID)
	assert.Len(t, groups[1], 2)
	assert.Equal(t, "c", groups[2][0].UserID)
}
