package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/mlevkov/fastwell/internal/db"
	"github.com/mlevkov/fastwell/internal/domain"
	"github.com/mlevkov/fastwell/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestSessionInsertAndGet(t *testing.T) {
	repo := NewSQLiteSessionRepo(newTestDB(t))
	ctx := context.Background()

	s := testutil.NewTestSession("u1", testutil.WithTarget(16))
	require.NoError(t, repo.InsertIfNoneActive(ctx, s))

	got, err := repo.GetByID(ctx, s.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, domain.SessionActive, got.Status)
	assert.Nil(t, got.EndTime)
	require.NotNil(t, got.TargetDurationHours)
	assert.Equal(t, 16.0, *got.TargetDurationHours)
	assert.True(t, got.StartTime.Equal(s.StartTime.Truncate(time.Second)))
}

func TestSessionInsertConflict(t *testing.T) {
	repo := NewSQLiteSessionRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.InsertIfNoneActive(ctx, testutil.NewTestSession("u1")))

	err := repo.InsertIfNoneActive(ctx, testutil.NewTestSession("u1"))
	assert.ErrorIs(t, err, ErrConflict)

	// A different user is unaffected.
	assert.NoError(t, repo.InsertIfNoneActive(ctx, testutil.NewTestSession("u2")))
}

func TestSessionGetByID_OwnershipHidesExistence(t *testing.T) {
	repo := NewSQLiteSessionRepo(newTestDB(t))
	ctx := context.Background()

	s := testutil.NewTestSession("u1")
	require.NoError(t, repo.InsertIfNoneActive(ctx, s))

	// Unknown id and foreign id are indistinguishable.
	_, err := repo.GetByID(ctx, "no-such-id", "u1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByID(ctx, s.ID, "u2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionGetActive(t *testing.T) {
	repo := NewSQLiteSessionRepo(newTestDB(t))
	ctx := context.Background()

	got, err := repo.GetActive(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got, "no active session is a nil result, not an error")

	s := testutil.NewTestSession("u1")
	require.NoError(t, repo.InsertIfNoneActive(ctx, s))

	got, err = repo.GetActive(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s.ID, got.ID)
}

func TestSessionFinishIfActive(t *testing.T) {
	repo := NewSQLiteSessionRepo(newTestDB(t))
	ctx := context.Background()

	s := testutil.NewTestSession("u1")
	require.NoError(t, repo.InsertIfNoneActive(ctx, s))

	end := s.StartTime.Add(17 * time.Hour)
	finished, err := repo.FinishIfActive(ctx, s.ID, "u1", domain.SessionCompleted, end)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, finished.Status)
	require.NotNil(t, finished.EndTime)
	assert.Equal(t, 17*time.Hour, finished.ActualDuration())

	// A retried end against the now-terminal session is rejected.
	_, err = repo.FinishIfActive(ctx, s.ID, "u1", domain.SessionCompleted, end)
	assert.ErrorIs(t, err, ErrInvalidState)

	// So is a cancel.
	_, err = repo.FinishIfActive(ctx, s.ID, "u1", domain.SessionCancelled, end)
	assert.ErrorIs(t, err, ErrInvalidState)

	// Unknown session maps to not found, as does a foreign owner.
	_, err = repo.FinishIfActive(ctx, "no-such-id", "u1", domain.SessionCompleted, end)
	assert.ErrorIs(t, err, ErrNotFound)

	// After finishing, a fresh start is allowed again.
	assert.NoError(t, repo.InsertIfNoneActive(ctx, testutil.NewTestSession("u1")))
}

func TestSessionFinishRejectsNonTerminalTarget(t *testing.T) {
	repo := NewSQLiteSessionRepo(newTestDB(t))
	ctx := context.Background()

	s := testutil.NewTestSession("u1")
	require.NoError(t, repo.InsertIfNoneActive(ctx, s))

	_, err := repo.FinishIfActive(ctx, s.ID, "u1", domain.SessionActive, time.Now().UTC())
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSessionList(t *testing.T) {
	database := newTestDB(t)
	repo := NewSQLiteSessionRepo(database)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		s := testutil.NewTestSession("u1", testutil.WithStartTime(base.AddDate(0, 0, i)))
		require.NoError(t, repo.InsertIfNoneActive(ctx, s))
		if i < 2 {
			status := domain.SessionCompleted
			if i == 1 {
				status = domain.SessionCancelled
			}
			_, err := repo.FinishIfActive(ctx, s.ID, "u1", status, s.StartTime.Add(16*time.Hour))
			require.NoError(t, err)
		}
	}
	// Another user's data must not bleed in.
	require.NoError(t, repo.InsertIfNoneActive(ctx, testutil.NewTestSession("u2")))

	all, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].StartTime.Before(all[1].StartTime), "ordered by start time ascending")

	terminal, err := repo.List(ctx, "u1", domain.SessionCompleted, domain.SessionCancelled)
	require.NoError(t, err)
	assert.Len(t, terminal, 2)

	completed, err := repo.List(ctx, "u1", domain.SessionCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, domain.SessionCompleted, completed[0].Status)
}
