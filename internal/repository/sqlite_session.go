package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mlevkov/fastwell/internal/db"
	"github.com/mlevkov/fastwell/internal/domain"
)

const sessionColumns = `id, user_id, status, start_time, end_time, target_duration_hours, created_at, updated_at`

// SQLiteSessionRepo implements SessionRepo using a SQLite database.
type SQLiteSessionRepo struct {
	db db.DBTX
}

// NewSQLiteSessionRepo creates a new SQLiteSessionRepo.
func NewSQLiteSessionRepo(conn db.DBTX) *SQLiteSessionRepo {
	return &SQLiteSessionRepo{db: conn}
}

func (r *SQLiteSessionRepo) InsertIfNoneActive(ctx context.Context, s *domain.FastingSession) error {
	query := `INSERT INTO fasting_sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		string(s.Status),
		s.StartTime.UTC().Format(time.RFC3339),
		nullableTimeToString(s.EndTime, time.RFC3339),
		nullableFloatToValue(s.TargetDurationHours),
		s.CreatedAt.UTC().Format(time.RFC3339),
		s.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		// The partial unique index on (user_id) WHERE status='active'
		// rejects a second active row.
		if uniqueViolation(err) {
			return fmt.Errorf("user %s: %w", s.UserID, ErrConflict)
		}
		return wrapStoreErr("inserting fasting session", err)
	}
	return nil
}

func (r *SQLiteSessionRepo) GetByID(ctx context.Context, id, userID string) (*domain.FastingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM fasting_sessions WHERE id = ? AND user_id = ?`
	row := r.db.QueryRowContext(ctx, query, id, userID)
	return r.scanSession(row)
}

func (r *SQLiteSessionRepo) GetActive(ctx context.Context, userID string) (*domain.FastingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM fasting_sessions WHERE user_id = ? AND status = 'active'`
	row := r.db.QueryRowContext(ctx, query, userID)
	s, err := r.scanSession(row)
	if err != nil {
		// Absence of an active session is a normal answer, not an error.
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func (r *SQLiteSessionRepo) List(ctx context.Context, userID string, statuses ...domain.SessionStatus) ([]*domain.FastingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM fasting_sessions WHERE user_id = ?`
	args := []any{userID}
	if len(statuses) > 0 {
		query += ` AND status IN (?` + strings.Repeat(",?", len(statuses)-1) + `)`
		for _, st := range statuses {
			args = append(args, string(st))
		}
	}
	query += ` ORDER BY start_time`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStoreErr("listing fasting sessions", err)
	}
	defer rows.Close()
	return r.scanSessions(rows)
}

func (r *SQLiteSessionRepo) FinishIfActive(ctx context.Context, id, userID string, status domain.SessionStatus, endTime time.Time) (*domain.FastingSession, error) {
	if status != domain.SessionCompleted && status != domain.SessionCancelled {
		return nil, fmt.Errorf("finish target must be terminal, got %q: %w", status, ErrInvalidState)
	}

	// Single-statement compare-and-swap on status. A double end/cancel race
	// resolves to one winner; the loser sees zero rows affected.
	query := `UPDATE fasting_sessions
		SET status = ?, end_time = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND status = 'active'`
	now := endTime.UTC().Format(time.RFC3339)
	res, err := r.db.ExecContext(ctx, query, string(status), now, now, id, userID)
	if err != nil {
		return nil, wrapStoreErr("finishing fasting session", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, wrapStoreErr("finishing fasting session", err)
	}
	if affected == 0 {
		// Disambiguate: unknown/not-owned vs already terminal.
		existing, getErr := r.GetByID(ctx, id, userID)
		if getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("session %s is %s: %w", id, existing.Status, ErrInvalidState)
	}

	return r.GetByID(ctx, id, userID)
}

// scanSession scans a single session from a *sql.Row.
func (r *SQLiteSessionRepo) scanSession(row *sql.Row) (*domain.FastingSession, error) {
	var s domain.FastingSession
	var status, startStr, createdStr, updatedStr string
	var endStr sql.NullString
	var target sql.NullFloat64

	err := row.Scan(&s.ID, &s.UserID, &status, &startStr, &endStr, &target, &createdStr, &updatedStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("fasting session: %w", ErrNotFound)
		}
		return nil, wrapStoreErr("scanning fasting session", err)
	}

	return r.populateSession(&s, status, startStr, endStr, target, createdStr, updatedStr)
}

// scanSessions scans multiple sessions from *sql.Rows.
func (r *SQLiteSessionRepo) scanSessions(rows *sql.Rows) ([]*domain.FastingSession, error) {
	var sessions []*domain.FastingSession
	for rows.Next() {
		var s domain.FastingSession
		var status, startStr, createdStr, updatedStr string
		var endStr sql.NullString
		var target sql.NullFloat64

		if err := rows.Scan(&s.ID, &s.UserID, &status, &startStr, &endStr, &target, &createdStr, &updatedStr); err != nil {
			return nil, wrapStoreErr("scanning session row", err)
		}

		session, err := r.populateSession(&s, status, startStr, endStr, target, createdStr, updatedStr)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("iterating sessions", err)
	}
	return sessions, nil
}

// populateSession fills in parsed fields on a FastingSession after scanning raw values.
func (r *SQLiteSessionRepo) populateSession(s *domain.FastingSession, status, startStr string, endStr sql.NullString, target sql.NullFloat64, createdStr, updatedStr string) (*domain.FastingSession, error) {
	s.Status = domain.SessionStatus(status)

	var err error
	s.StartTime, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		return nil, fmt.Errorf("parsing start_time: %w", err)
	}
	s.EndTime = parseNullableTime(endStr, time.RFC3339)
	if target.Valid {
		v := target.Float64
		s.TargetDurationHours = &v
	}
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
