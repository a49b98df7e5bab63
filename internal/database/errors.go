package database

import "errors"

// Sentinel errors returned by repositories. Handlers map these to HTTP status
// codes at the boundary; everything else is a storage failure (500).
var (
	ErrStudentNotFound  = errors.New("student not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrDuplicateStudent = errors.New("student with this USN already exists")
	ErrNoAttendanceData = errors.New("no attendance data for this session")
)
