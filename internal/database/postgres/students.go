package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/recognition"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// StudentRepository provides PostgreSQL-backed student directory storage.
type StudentRepository struct {
	pool *Pool
}

// NewStudentRepository creates a new PostgreSQL student repository.
func NewStudentRepository(pool *Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// Create registers a new student with a reference descriptor.
func (r *StudentRepository) Create(ctx context.Context, student *database.Student) error {
	vec := pgvector.NewVector(student.Descriptor)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO students (usn, name, descriptor)
		VALUES ($1, $2, $3::vector)
	`, student.USN, student.Name, vec)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return database.ErrDuplicateStudent
		}
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

// Get retrieves a student by USN including the reference descriptor.
func (r *StudentRepository) Get(ctx context.Context, usn string) (*database.Student, error) {
	var s database.Student
	var vec pgvector.Vector
	err := r.pool.QueryRow(ctx, `
		SELECT usn, name, descriptor, created_at
		FROM students
		WHERE usn = $1
	`, usn).Scan(&s.USN, &s.Name, &vec, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, database.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	s.Descriptor = vec.Slice()
	return &s, nil
}

// List returns all students ordered by USN, without descriptors. A non-empty
// query filters by normalized name match (lowercase, no diacritics, dashes to
// spaces), matching recognition.NormalizeStudentName on the Go side.
func (r *StudentRepository) List(ctx context.Context, query string) ([]database.Student, error) {
	var rows *sql.Rows
	var err error
	if query == "" {
		rows, err = r.pool.Query(ctx, `
			SELECT usn, name, created_at FROM students ORDER BY usn
		`)
	} else {
		normalized := recognition.NormalizeStudentName(query)
		rows, err = r.pool.Query(ctx, `
			SELECT usn, name, created_at FROM students
			WHERE LOWER(REPLACE(unaccent(name), '-', ' ')) LIKE '%' || $1 || '%'
			ORDER BY usn
		`, normalized)
	}
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var students []database.Student
	for rows.Next() {
		var s database.Student
		if err := rows.Scan(&s.USN, &s.Name, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return students, nil
}

// ListWithDescriptors returns all students including descriptors, ordered by
// USN. Used to build the roster snapshot at session start.
func (r *StudentRepository) ListWithDescriptors(ctx context.Context) ([]database.Student, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT usn, name, descriptor, created_at FROM students ORDER BY usn
	`)
	if err != nil {
		return nil, fmt.Errorf("query students with descriptors: %w", err)
	}
	defer rows.Close()

	var students []database.Student
	for rows.Next() {
		var s database.Student
		var vec pgvector.Vector
		if err := rows.Scan(&s.USN, &s.Name, &vec, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		s.Descriptor = vec.Slice()
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return students, nil
}

// Count returns the total number of registered students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM students").Scan(&count); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}

// FindNearest returns the student whose descriptor is nearest to the query by
// Euclidean distance, together with that distance. Uses the pgvector <->
// operator so the scan happens server-side.
func (r *StudentRepository) FindNearest(ctx context.Context, descriptor []float32) (*database.Student, float64, error) {
	vec := pgvector.NewVector(descriptor)
	var s database.Student
	var stored pgvector.Vector
	var distance float64
	err := r.pool.QueryRow(ctx, `
		SELECT usn, name, descriptor, created_at, descriptor <-> $1::vector AS distance
		FROM students
		ORDER BY distance
		LIMIT 1
	`, vec).Scan(&s.USN, &s.Name, &stored, &s.CreatedAt, &distance)
	if err == sql.ErrNoRows {
		return nil, 0, database.ErrStudentNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("find nearest student: %w", err)
	}
	s.Descriptor = stored.Slice()
	return &s, distance, nil
}

// Verify interface compliance.
var _ database.StudentReader = (*StudentRepository)(nil)
var _ database.StudentWriter = (*StudentRepository)(nil)
