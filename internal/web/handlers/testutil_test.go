package handlers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// memoryStore is an in-memory implementation of the storage interfaces for
// handler tests.
type memoryStore struct {
	students map[string]*database.Student
	sessions map[int64]*database.Session
	records  map[int64]map[string]string // sessionID -> usn -> status
	nextID   int64

	failWith error // when set, every call returns this error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		students: make(map[string]*database.Student),
		sessions: make(map[int64]*database.Session),
		records:  make(map[int64]map[string]string),
		nextID:   1,
	}
}

func (m *memoryStore) Create(_ context.Context, student *database.Student) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, exists := m.students[student.USN]; exists {
		return database.ErrDuplicateStudent
	}
	s := *student
	s.CreatedAt = time.Now()
	m.students[student.USN] = &s
	return nil
}

func (m *memoryStore) Get(_ context.Context, usn string) (*database.Student, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	s, ok := m.students[usn]
	if !ok {
		return nil, database.ErrStudentNotFound
	}
	return s, nil
}

func (m *memoryStore) List(_ context.Context, query string) ([]database.Student, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	normalized := recognition.NormalizeStudentName(query)
	var out []database.Student
	for _, s := range m.students {
		if query != "" && !containsNormalized(s.Name, normalized) {
			continue
		}
		entry := *s
		entry.Descriptor = nil
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].USN < out[j].USN })
	return out, nil
}

func containsNormalized(name, normalizedQuery string) bool {
	n := recognition.NormalizeStudentName(name)
	for i := 0; i+len(normalizedQuery) <= len(n); i++ {
		if n[i:i+len(normalizedQuery)] == normalizedQuery {
			return true
		}
	}
	return false
}

func (m *memoryStore) ListWithDescriptors(_ context.Context) ([]database.Student, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []database.Student
	for _, s := range m.students {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].USN < out[j].USN })
	return out, nil
}

func (m *memoryStore) Count(_ context.Context) (int, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	return len(m.students), nil
}

func (m *memoryStore) FindNearest(_ context.Context, descriptor []float32) (*database.Student, float64, error) {
	if m.failWith != nil {
		return nil, 0, m.failWith
	}
	var best *database.Student
	bestDist := math.Inf(1)
	for _, s := range m.students {
		if d := recognition.EuclideanDistance(descriptor, s.Descriptor); d < bestDist {
			best = s
			bestDist = d
		}
	}
	if best == nil {
		return nil, 0, database.ErrStudentNotFound
	}
	return best, bestDist, nil
}

func (m *memoryStore) CreateSession(_ context.Context, date time.Time, semester int) (int64, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	id := m.nextID
	m.nextID++
	m.sessions[id] = &database.Session{ID: id, Date: date, Semester: semester}
	return id, nil
}

func (m *memoryStore) GetSession(_ context.Context, id int64) (*database.Session, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, database.ErrSessionNotFound
	}
	return s, nil
}

func (m *memoryStore) ListByDate(_ context.Context, date time.Time) ([]database.Session, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []database.Session
	for _, s := range m.sessions {
		if s.Date.Format("2006-01-02") == date.Format("2006-01-02") {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) Mark(_ context.Context, sessionID int64, usn, status string) (database.MarkResult, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	if m.records[sessionID] == nil {
		m.records[sessionID] = make(map[string]string)
	}
	_, existed := m.records[sessionID][usn]
	m.records[sessionID][usn] = status
	if existed {
		return database.MarkUpdated, nil
	}
	return database.MarkInserted, nil
}

func (m *memoryStore) SessionAttendance(_ context.Context, sessionID int64) ([]database.SessionAttendanceRow, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []database.SessionAttendanceRow
	for _, s := range m.students {
		out = append(out, database.SessionAttendanceRow{
			USN:    s.USN,
			Name:   s.Name,
			Status: m.records[sessionID][s.USN],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].USN < out[j].USN })
	return out, nil
}

func (m *memoryStore) Summary(_ context.Context, sessionID int64) (*database.Summary, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	records := m.records[sessionID]
	if len(records) == 0 {
		return nil, database.ErrNoAttendanceData
	}
	summary := &database.Summary{TotalStudents: len(m.students)}
	for _, status := range records {
		switch status {
		case "present":
			summary.PresentCount++
		case "absent":
			summary.AbsentCount++
		}
	}
	return summary, nil
}

func (m *memoryStore) StudentReport(_ context.Context, usn string) ([]database.ReportRow, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []database.ReportRow
	for sessionID, records := range m.records {
		status, ok := records[usn]
		if !ok {
			continue
		}
		session := m.sessions[sessionID]
		out = append(out, database.ReportRow{
			SessionDate: session.Date,
			Semester:    session.Semester,
			Status:      status,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionDate.After(out[j].SessionDate) })
	return out, nil
}

// sessionStoreAdapter exposes memoryStore under the SessionStore method names.
type sessionStoreAdapter struct {
	*memoryStore
}

func (a sessionStoreAdapter) Create(ctx context.Context, date time.Time, semester int) (int64, error) {
	return a.CreateSession(ctx, date, semester)
}

func (a sessionStoreAdapter) Get(ctx context.Context, id int64) (*database.Session, error) {
	return a.GetSession(ctx, id)
}

var _ database.StudentWriter = (*memoryStore)(nil)
var _ database.SessionStore = sessionStoreAdapter{}
var _ database.AttendanceStore = (*memoryStore)(nil)

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

func descriptorOfDim(dim int, fill float32) []float32 {
	d := make([]float32, dim)
	for i := range d {
		d[i] = fill
	}
	return d
}
