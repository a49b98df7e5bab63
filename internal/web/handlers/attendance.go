package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/database"
)

// AttendanceHandler handles session and ledger requests
type AttendanceHandler struct {
	students   database.StudentReader
	sessions   database.SessionStore
	attendance database.AttendanceStore
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(students database.StudentReader, sessions database.SessionStore, attendance database.AttendanceStore) *AttendanceHandler {
	return &AttendanceHandler{
		students:   students,
		sessions:   sessions,
		attendance: attendance,
	}
}

type createSessionRequest struct {
	Date     string `json:"date"`
	Semester *int   `json:"semester"`
}

type sessionResponse struct {
	SessionID int64  `json:"session_id"`
	Date      string `json:"date"`
	Semester  int    `json:"semester"`
}

func toSessionResponse(s *database.Session) sessionResponse {
	return sessionResponse{
		SessionID: s.ID,
		Date:      s.Date.Format("2006-01-02"),
		Semester:  s.Semester,
	}
}

// CreateSession handles POST /attendance/sessions. Every call creates a new
// session even when date and semester repeat; sessions are never deduplicated.
func (h *AttendanceHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if req.Semester == nil {
		respondError(w, http.StatusBadRequest, "semester is required")
		return
	}
	if *req.Semester < 1 {
		respondError(w, http.StatusBadRequest, "semester must be a positive number")
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
			return
		}
		date = parsed
	}

	id, err := h.sessions.Create(r.Context(), date, *req.Semester)
	if err != nil {
		log.Printf("Failed to create session: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	respondJSON(w, http.StatusCreated, sessionResponse{
		SessionID: id,
		Date:      date.Format("2006-01-02"),
		Semester:  *req.Semester,
	})
}

// TodaySessions handles GET /attendance/sessions/today
func (h *AttendanceHandler) TodaySessions(w http.ResponseWriter, r *http.Request) {
	h.listSessions(w, r, time.Now())
}

// SessionsByDate handles GET /attendance/sessions/by-date/{date}
func (h *AttendanceHandler) SessionsByDate(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse("2006-01-02", chi.URLParam(r, "date"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
		return
	}
	h.listSessions(w, r, date)
}

func (h *AttendanceHandler) listSessions(w http.ResponseWriter, r *http.Request, date time.Time) {
	sessions, err := h.sessions.ListByDate(r.Context(), date)
	if err != nil {
		log.Printf("Failed to list sessions: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	resp := make([]sessionResponse, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, toSessionResponse(&sessions[i]))
	}
	respondJSON(w, http.StatusOK, map[string]any{"sessions": resp})
}

type markRequest struct {
	SessionID int64  `json:"session_id"`
	USN       string `json:"usn"`
	Status    string `json:"status"`
}

func validStatus(status string) (string, bool) {
	switch strings.ToLower(status) {
	case constants.StatusPresent:
		return constants.StatusPresent, true
	case constants.StatusAbsent:
		return constants.StatusAbsent, true
	case constants.StatusExcused:
		return constants.StatusExcused, true
	}
	return "", false
}

// Mark handles POST /attendance/mark. The record is upserted: marking the
// same student twice overwrites the status instead of duplicating the row.
// Replies 201 when a new record was inserted, 200 when an existing one was
// updated. The student is validated before the session.
func (h *AttendanceHandler) Mark(w http.ResponseWriter, r *http.Request) {
	var req markRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if req.SessionID < 1 || req.USN == "" {
		respondError(w, http.StatusBadRequest, "session_id and usn are required")
		return
	}
	status, ok := validStatus(req.Status)
	if !ok {
		respondError(w, http.StatusBadRequest, "status must be one of present, absent, excused")
		return
	}

	if _, err := h.students.Get(r.Context(), req.USN); err != nil {
		if errors.Is(err, database.ErrStudentNotFound) {
			respondError(w, http.StatusNotFound, database.ErrStudentNotFound.Error())
			return
		}
		log.Printf("Failed to look up student %s: %v", sanitizeForLog(req.USN), err)
		respondError(w, http.StatusInternalServerError, "failed to mark attendance")
		return
	}

	if _, err := h.sessions.Get(r.Context(), req.SessionID); err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, database.ErrSessionNotFound.Error())
			return
		}
		log.Printf("Failed to look up session %d: %v", req.SessionID, err)
		respondError(w, http.StatusInternalServerError, "failed to mark attendance")
		return
	}

	result, err := h.attendance.Mark(r.Context(), req.SessionID, req.USN, status)
	if err != nil {
		log.Printf("Failed to mark %s in session %d: %v", sanitizeForLog(req.USN), req.SessionID, err)
		respondError(w, http.StatusInternalServerError, "failed to mark attendance")
		return
	}

	if result == database.MarkInserted {
		respondJSON(w, http.StatusCreated, map[string]string{"message": "attendance marked"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "attendance updated"})
}

type attendanceRowResponse struct {
	USN    string  `json:"usn"`
	Name   string  `json:"name"`
	Status *string `json:"status"`
}

// SessionAttendance handles GET /attendance/sessions/{sessionId}: every
// registered student with their status for the session, null for students
// without a record.
func (h *AttendanceHandler) SessionAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "session id must be a positive number")
		return
	}

	rows, err := h.attendance.SessionAttendance(r.Context(), id)
	if err != nil {
		log.Printf("Failed to load attendance for session %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to load attendance")
		return
	}

	resp := make([]attendanceRowResponse, 0, len(rows))
	for _, row := range rows {
		out := attendanceRowResponse{USN: row.USN, Name: row.Name}
		if row.Status != "" {
			status := row.Status
			out.Status = &status
		}
		resp = append(resp, out)
	}
	respondJSON(w, http.StatusOK, map[string]any{"attendance": resp})
}

// Summary handles GET /attendance/summary/{sessionId}
func (h *AttendanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "session id must be a positive number")
		return
	}

	summary, err := h.attendance.Summary(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNoAttendanceData) {
			respondError(w, http.StatusNotFound, database.ErrNoAttendanceData.Error())
			return
		}
		log.Printf("Failed to load summary for session %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to load summary")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{
		"present_count":  summary.PresentCount,
		"absent_count":   summary.AbsentCount,
		"total_students": summary.TotalStudents,
	})
}

type reportRowResponse struct {
	SessionDate string `json:"session_date"`
	Semester    int    `json:"semester"`
	Status      string `json:"status"`
}

// Report handles GET /attendance/report/{usn}: the student's history across
// all sessions, most recent first.
func (h *AttendanceHandler) Report(w http.ResponseWriter, r *http.Request) {
	usn := chi.URLParam(r, "usn")
	if usn == "" {
		respondError(w, http.StatusBadRequest, "usn is required")
		return
	}

	rows, err := h.attendance.StudentReport(r.Context(), usn)
	if err != nil {
		log.Printf("Failed to load report for %s: %v", sanitizeForLog(usn), err)
		respondError(w, http.StatusInternalServerError, "failed to load report")
		return
	}

	resp := make([]reportRowResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, reportRowResponse{
			SessionDate: row.SessionDate.Format("2006-01-02"),
			Semester:    row.Semester,
			Status:      row.Status,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"report": resp})
}
