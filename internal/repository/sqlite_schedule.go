package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mlevkov/fastwell/internal/db"
	"github.com/mlevkov/fastwell/internal/domain"
)

const scheduleColumns = `id, user_id, enabled, days_of_week, start_time_of_day, duration_hours, timezone, last_triggered_at, created_at, updated_at`

// SQLiteScheduleRepo implements ScheduleRepo using a SQLite database.
type SQLiteScheduleRepo struct {
	db db.DBTX
}

// NewSQLiteScheduleRepo creates a new SQLiteScheduleRepo.
func NewSQLiteScheduleRepo(conn db.DBTX) *SQLiteScheduleRepo {
	return &SQLiteScheduleRepo{db: conn}
}

func (r *SQLiteScheduleRepo) Create(ctx context.Context, s *domain.ScheduledFast) error {
	query := `INSERT INTO scheduled_fasts (` + scheduleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		boolToInt(s.Enabled),
		encodeWeekdays(s.DaysOfWeek),
		s.StartTimeOfDay,
		s.DurationHours,
		s.Timezone,
		nullableTimeToString(s.LastTriggeredAt, time.RFC3339),
		s.CreatedAt.UTC().Format(time.RFC3339),
		s.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return wrapStoreErr("inserting scheduled fast", err)
	}
	return nil
}

func (r *SQLiteScheduleRepo) GetByID(ctx context.Context, id, userID string) (*domain.ScheduledFast, error) {
	query := `SELECT ` + scheduleColumns + ` FROM scheduled_fasts WHERE id = ? AND user_id = ?`
	row := r.db.QueryRowContext(ctx, query, id, userID)
	return r.scanSchedule(row)
}

func (r *SQLiteScheduleRepo) ListByUser(ctx context.Context, userID string) ([]*domain.ScheduledFast, error) {
	query := `SELECT ` + scheduleColumns + ` FROM scheduled_fasts WHERE user_id = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, wrapStoreErr("listing scheduled fasts", err)
	}
	defer rows.Close()
	return r.scanSchedules(rows)
}

func (r *SQLiteScheduleRepo) ListEnabled(ctx context.Context) ([]*domain.ScheduledFast, error) {
	// Ordered by user so the monitor can process one user's schedules
	// as a contiguous group.
	query := `SELECT ` + scheduleColumns + ` FROM scheduled_fasts WHERE enabled = 1 ORDER BY user_id, created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapStoreErr("listing enabled scheduled fasts", err)
	}
	defer rows.Close()
	return r.scanSchedules(rows)
}

func (r *SQLiteScheduleRepo) Update(ctx context.Context, s *domain.ScheduledFast) error {
	query := `UPDATE scheduled_fasts
		SET enabled = ?, days_of_week = ?, start_time_of_day = ?, duration_hours = ?, timezone = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		boolToInt(s.Enabled),
		encodeWeekdays(s.DaysOfWeek),
		s.StartTimeOfDay,
		s.DurationHours,
		s.Timezone,
		s.UpdatedAt.UTC().Format(time.RFC3339),
		s.ID,
		s.UserID,
	)
	if err != nil {
		return wrapStoreErr("updating scheduled fast", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return wrapStoreErr("updating scheduled fast", err)
	}
	if affected == 0 {
		return fmt.Errorf("scheduled fast %s: %w", s.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteScheduleRepo) UpdateLastTriggered(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE scheduled_fasts SET last_triggered_at = ?, updated_at = ? WHERE id = ?`
	now := at.UTC().Format(time.RFC3339)
	res, err := r.db.ExecContext(ctx, query, now, now, id)
	if err != nil {
		return wrapStoreErr("updating last triggered", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return wrapStoreErr("updating last triggered", err)
	}
	if affected == 0 {
		return fmt.Errorf("scheduled fast %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteScheduleRepo) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM scheduled_fasts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return wrapStoreErr("deleting scheduled fast", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return wrapStoreErr("deleting scheduled fast", err)
	}
	if affected == 0 {
		return fmt.Errorf("scheduled fast %s: %w", id, ErrNotFound)
	}
	return nil
}

// scanSchedule scans a single schedule from a *sql.Row.
func (r *SQLiteScheduleRepo) scanSchedule(row *sql.Row) (*domain.ScheduledFast, error) {
	var s domain.ScheduledFast
	var enabled int
	var daysStr, createdStr, updatedStr string
	var lastStr sql.NullString

	err := row.Scan(&s.ID, &s.UserID, &enabled, &daysStr, &s.StartTimeOfDay, &s.DurationHours, &s.Timezone, &lastStr, &createdStr, &updatedStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("scheduled fast: %w", ErrNotFound)
		}
		return nil, wrapStoreErr("scanning scheduled fast", err)
	}

	return r.populateSchedule(&s, enabled, daysStr, lastStr, createdStr, updatedStr)
}

// scanSchedules scans multiple schedules from *sql.Rows.
func (r *SQLiteScheduleRepo) scanSchedules(rows *sql.Rows) ([]*domain.ScheduledFast, error) {
	var schedules []*domain.ScheduledFast
	for rows.Next() {
		var s domain.ScheduledFast
		var enabled int
		var daysStr, createdStr, updatedStr string
		var lastStr sql.NullString

		if err := rows.Scan(&s.ID, &s.UserID, &enabled, &daysStr, &s.StartTimeOfDay, &s.DurationHours, &s.Timezone, &lastStr, &createdStr, &updatedStr); err != nil {
			return nil, wrapStoreErr("scanning schedule row", err)
		}

		schedule, err := r.populateSchedule(&s, enabled, daysStr, lastStr, createdStr, updatedStr)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("iterating schedules", err)
	}
	return schedules, nil
}

// populateSchedule fills in parsed fields on a ScheduledFast after scanning raw values.
func (r *SQLiteScheduleRepo) populateSchedule(s *domain.ScheduledFast, enabled int, daysStr string, lastStr sql.NullString, createdStr, updatedStr string) (*domain.ScheduledFast, error) {
	s.Enabled = intToBool(enabled)

	days, err := decodeWeekdays(daysStr)
	if err != nil {
		return nil, fmt.Errorf("parsing days_of_week: %w", err)
	}
	s.DaysOfWeek = days
	s.LastTriggeredAt = parseNullableTime(lastStr, time.RFC3339)

	s.CreatedAt, err = time.Parse(time.RFC3339, createdStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	s.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return s, nil
}
