package database

import (
	"time"
)

// Student represents a registered student with a reference face descriptor.
// Students are created at registration and immutable afterwards.
type Student struct {
	USN        string
	Name       string
	Descriptor []float32
	CreatedAt  time.Time
}

// Session represents one attendance-taking period. Sessions are never mutated
// or deleted; each "start session" action creates a new one even when date and
// semester repeat.
type Session struct {
	ID        int64
	Date      time.Time // calendar date, time component is zero
	Semester  int
	CreatedAt time.Time
}

// AttendanceRecord maps (session, student) to a status. The composite key is
// unique: at most one record per student per session, updated in place.
type AttendanceRecord struct {
	SessionID int64
	USN       string
	Status    string // present, absent, excused
	MarkedAt  time.Time
}

// SessionAttendanceRow is one row of the per-session listing: every registered
// student appears, with an empty Status for students without a record.
type SessionAttendanceRow struct {
	USN    string
	Name   string
	Status string // empty when the student has no record for the session
}

// Summary aggregates a session's ledger against the full student directory.
// TotalStudents counts every registered student, not just those with a record.
type Summary struct {
	PresentCount  int
	AbsentCount   int
	TotalStudents int
}

// ReportRow is one row of a student's attendance history across sessions.
type ReportRow struct {
	SessionDate time.Time
	Semester    int
	Status      string
}

// MarkResult reports whether a mark inserted a new record or updated an
// existing one. The HTTP layer maps this to 201 vs 200.
type MarkResult int

const (
	MarkInserted MarkResult = iota
	MarkUpdated
)
