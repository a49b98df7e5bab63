package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// AttendanceRepository provides PostgreSQL-backed attendance ledger storage.
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new PostgreSQL attendance repository.
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Mark upserts the status for (sessionID, usn). The (session_id, usn) primary
// key is the sole serialization point for concurrent marks of the same pair;
// the last writer wins. The xmax system column distinguishes a fresh insert
// (xmax = 0) from a conflict update, so callers can report 201 vs 200.
func (r *AttendanceRepository) Mark(ctx context.Context, sessionID int64, usn, status string) (database.MarkResult, error) {
	var inserted bool
	err := r.pool.QueryRow(ctx, `
		INSERT INTO attendance (session_id, usn, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id, usn) DO UPDATE SET
			status = EXCLUDED.status,
			marked_at = NOW()
		RETURNING (xmax = 0) AS inserted
	`, sessionID, usn, status).Scan(&inserted)
	if err != nil {
		return 0, fmt.Errorf("mark attendance: %w", err)
	}
	if inserted {
		return database.MarkInserted, nil
	}
	return database.MarkUpdated, nil
}

// SessionAttendance returns every registered student left joined against the
// session's records, ordered by USN ascending. Students without a record have
// an empty status.
func (r *AttendanceRepository) SessionAttendance(ctx context.Context, sessionID int64) ([]database.SessionAttendanceRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.usn, s.name, a.status
		FROM students s
		LEFT JOIN attendance a ON s.usn = a.usn AND a.session_id = $1
		ORDER BY s.usn
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session attendance: %w", err)
	}
	defer rows.Close()

	var result []database.SessionAttendanceRow
	for rows.Next() {
		var row database.SessionAttendanceRow
		var status sql.NullString
		if err := rows.Scan(&row.USN, &row.Name, &status); err != nil {
			return nil, fmt.Errorf("scan attendance row: %w", err)
		}
		if status.Valid {
			row.Status = status.String
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance rows: %w", err)
	}
	return result, nil
}

// Summary aggregates present/absent counts for a session. TotalStudents is
// the size of the full directory regardless of how many have records. Returns
// ErrNoAttendanceData when the session has zero records.
func (r *AttendanceRepository) Summary(ctx context.Context, sessionID int64) (*database.Summary, error) {
	var recordCount int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM attendance WHERE session_id = $1", sessionID,
	).Scan(&recordCount)
	if err != nil {
		return nil, fmt.Errorf("count attendance records: %w", err)
	}
	if recordCount == 0 {
		return nil, database.ErrNoAttendanceData
	}

	var s database.Summary
	err = r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE a.status = 'present') AS present_count,
			COUNT(*) FILTER (WHERE a.status = 'absent') AS absent_count,
			(SELECT COUNT(*) FROM students) AS total_students
		FROM attendance a
		WHERE a.session_id = $1
	`, sessionID).Scan(&s.PresentCount, &s.AbsentCount, &s.TotalStudents)
	if err != nil {
		return nil, fmt.Errorf("query attendance summary: %w", err)
	}
	return &s, nil
}

// StudentReport returns a student's history across sessions, most recent
// session date first.
func (r *AttendanceRepository) StudentReport(ctx context.Context, usn string) ([]database.ReportRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT se.session_date, se.semester, a.status
		FROM attendance a
		JOIN sessions se ON a.session_id = se.id
		WHERE a.usn = $1
		ORDER BY se.session_date DESC, se.id DESC
	`, usn)
	if err != nil {
		return nil, fmt.Errorf("query student report: %w", err)
	}
	defer rows.Close()

	var report []database.ReportRow
	for rows.Next() {
		var row database.ReportRow
		if err := rows.Scan(&row.SessionDate, &row.Semester, &row.Status); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report rows: %w", err)
	}
	return report, nil
}

// Verify interface compliance.
var _ database.AttendanceStore = (*AttendanceRepository)(nil)
