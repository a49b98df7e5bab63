package database

import (
	"context"
	"time"
)

// StudentReader provides read-only access to the student directory
type StudentReader interface {
	// Get retrieves a student by USN including the reference descriptor.
	// Returns ErrStudentNotFound if the USN is not registered
	Get(ctx context.Context, usn string) (*Student, error)
	// List returns all students ordered by USN, without descriptors.
	// When query is non-empty, results are filtered by normalized name match
	List(ctx context.Context, query string) ([]Student, error)
	// ListWithDescriptors returns all students including descriptors,
	// ordered by USN. Used to build the roster snapshot at session start
	ListWithDescriptors(ctx context.Context) ([]Student, error)
	// Count returns the total number of registered students
	Count(ctx context.Context) (int, error)
	// FindNearest returns the student whose descriptor is nearest to the
	// query by Euclidean distance, together with that distance
	FindNearest(ctx context.Context, descriptor []float32) (*Student, float64, error)
}

// StudentWriter provides write access to the student directory
type StudentWriter interface {
	StudentReader

	// Create registers a new student. Returns ErrDuplicateStudent when the
	// USN is already taken
	Create(ctx context.Context, student *Student) error
}

// SessionStore provides access to attendance sessions
type SessionStore interface {
	// Create inserts a new session for the given date and returns its ID.
	// Sessions are never deduplicated: every call creates a new partition
	Create(ctx context.Context, date time.Time, semester int) (int64, error)
	// Get retrieves a session by ID. Returns ErrSessionNotFound if absent
	Get(ctx context.Context, id int64) (*Session, error)
	// ListByDate returns all sessions on the given calendar date
	ListByDate(ctx context.Context, date time.Time) ([]Session, error)
}

// AttendanceStore provides access to the attendance ledger
type AttendanceStore interface {
	// Mark upserts the status for (sessionID, usn). The caller is expected
	// to have validated that both the student and session exist. Returns
	// whether the record was inserted or updated
	Mark(ctx context.Context, sessionID int64, usn, status string) (MarkResult, error)
	// SessionAttendance returns a row for every registered student, left
	// joined against the session's records, ordered by USN ascending
	SessionAttendance(ctx context.Context, sessionID int64) ([]SessionAttendanceRow, error)
	// Summary aggregates present/absent counts for a session against the
	// full directory size. Returns ErrNoAttendanceData when the session has
	// zero records
	Summary(ctx context.Context, sessionID int64) (*Summary, error)
	// StudentReport returns a student's history across sessions, most
	// recent session date first
	StudentReport(ctx context.Context, usn string) ([]ReportRow, error)
}
