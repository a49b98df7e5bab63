package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// SessionRepository provides PostgreSQL-backed session storage
type SessionRepository struct {
	pool *Pool
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(pool *Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create inserts a new session and returns its server-assigned ID. Sessions
// sharing date and semester are never deduplicated.
func (r *SessionRepository) Create(ctx context.Context, date time.Time, semester int) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO sessions (session_date, semester)
		VALUES ($1, $2)
		RETURNING id
	`, date.Format("2006-01-02"), semester).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

// Get retrieves a session by ID, returns ErrSessionNotFound if absent
func (r *SessionRepository) Get(ctx context.Context, id int64) (*database.Session, error) {
	var s database.Session
	err := r.pool.QueryRow(ctx, `
		SELECT id, session_date, semester, created_at
		FROM sessions
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Date, &s.Semester, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, database.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// ListByDate returns all sessions on the given calendar date
func (r *SessionRepository) ListByDate(ctx context.Context, date time.Time) ([]database.Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_date, semester, created_at
		FROM sessions
		WHERE session_date = $1
		ORDER BY id
	`, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query sessions by date: %w", err)
	}
	defer rows.Close()

	var sessions []database.Session
	for rows.Next() {
		var s database.Session
		if err := rows.Scan(&s.ID, &s.Date, &s.Semester, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Verify interface compliance.
var _ database.SessionStore = (*SessionRepository)(nil)
