package repository

import (
	"context"
	"testing"
	"time"

	"github.com/mlevkov/fastwell/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleCreateAndGet(t *testing.T) {
	repo := NewSQLiteScheduleRepo(newTestDB(t))
	ctx := context.Background()

	s := testutil.NewTestSchedule("u1",
		testutil.WithDays(time.Monday, time.Friday),
		testutil.WithTimezone("Europe/Berlin"),
	)
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.GetByID(ctx, s.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Monday, time.Friday}, got.DaysOfWeek)
	assert.Equal(t, "20:00", got.StartTimeOfDay)
	assert.Equal(t, "Europe/Berlin", got.Timezone)
	assert.True(t, got.Enabled)
	assert.Nil(t, got.LastTriggeredAt)

	_, err = repo.GetByID(ctx, s.ID, "u2")
	assert.ErrorIs(t, err, ErrNotFound, "foreign owner looks like absence")
}

func TestScheduleListEnabled(t *testing.T) {
	repo := NewSQLiteScheduleRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestSchedule("u2")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestSchedule("u1")))
	disabled := testutil.NewTestSchedule("u1", testutil.WithEnabled(false))
	require.NoError(t, repo.Create(ctx, disabled))

	enabled, err := repo.ListEnabled(ctx)
	require.NoError(t, err)
	require.Len(t, enabled, 2)
	assert.Equal(t, "u1", enabled[0].UserID, "grouped by user")
	assert.Equal(t, "u2", enabled[1].UserID)
}

func TestScheduleUpdate(t *testing.T) {
	repo := NewSQLiteScheduleRepo(newTestDB(t))
	ctx := context.Background()

	s := testutil.NewTestSchedule("u1")
	require.NoError(t, repo.Create(ctx, s))

	s.Enabled = false
	s.DaysOfWeek = []time.Weekday{time.Saturday, time.Sunday}
	s.StartTimeOfDay = "08:30"
	s.DurationHours = 24
	s.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Update(ctx, s))

	got, err := repo.GetByID(ctx, s.ID, "u1")
	require.NoError(t, err)
	assert.False(t, got.Enabled)
	assert.Equal(t, []time.Weekday{time.Sunday, time.Saturday}, got.DaysOfWeek, "stored sorted")
	assert.Equal(t, "08:30", got.StartTimeOfDay)
	assert.Equal(t, 24.0, got.DurationHours)

	s.ID = "no-such-id"
	assert.ErrorIs(t, repo.Update(ctx, s), ErrNotFound)
}

func TestScheduleUpdateLastTriggered(t *testing.T) {
	repo := NewSQLiteScheduleRepo(newTestDB(t))
	ctx := context.Background()

	s := testutil.NewTestSchedule("u1")
	require.NoError(t, repo.Create(ctx, s))

	at := time.Date(2026, 3, 2, 20, 5, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastTriggered(ctx, s.ID, at))

	got, err := repo.GetByID(ctx, s.ID, "u1")
	require.NoError(t, err)
	require.NotNil(t, got.LastTriggeredAt)
	assert.True(t, got.LastTriggeredAt.Equal(at))

	assert.ErrorIs(t, repo.UpdateLastTriggered(ctx, "no-such-id", at), ErrNotFound)
}

func TestScheduleDelete(t *testing.T) {
	repo := NewSQLiteScheduleRepo(newTestDB(t))
	ctx := context.Background()

	s := testutil.NewTestSchedule("u1")
	require.NoError(t, repo.Create(ctx, s))

	assert.ErrorIs(t, repo.Delete(ctx, s.ID, "u2"), ErrNotFound)
	require.NoError(t, repo.Delete(ctx, s.ID, "u1"))

	_, err := repo.GetByID(ctx, s.ID, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWeekdayRoundTrip(t *testing.T) {
	encoded := encodeWeekdays([]time.Weekday{time.Saturday, time.Monday, time.Wednesday})
	assert.Equal(t, "1,3,6", encoded)

	days, err := decodeWeekdays(encoded)
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Saturday}, days)

	_, err = decodeWeekdays("1,9")
	assert.Error(t, err)

	days, err = decodeWeekdays("")
	require.NoError(t, err)
	assert.Empty(t, days)
}
