package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-attendance/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	studentsHandler := handlers.NewStudentsHandler(s.students, s.config.Recognition.DistanceThreshold)
	attendanceHandler := handlers.NewAttendanceHandler(s.students, s.sessions, s.attendance)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Student directory
		r.Post("/students/register", studentsHandler.Register)
		r.Post("/students/identify", studentsHandler.Identify)
		r.Get("/students", studentsHandler.List)
		r.Get("/students/{usn}", studentsHandler.Get)

		// Sessions and ledger
		r.Post("/attendance/sessions", attendanceHandler.CreateSession)
		r.Get("/attendance/sessions/today", attendanceHandler.TodaySessions)
		r.Get("/attendance/sessions/by-date/{date}", attendanceHandler.SessionsByDate)
		r.Get("/attendance/sessions/{sessionId}", attendanceHandler.SessionAttendance)
		r.Post("/attendance/mark", attendanceHandler.Mark)
		r.Get("/attendance/summary/{sessionId}", attendanceHandler.Summary)
		r.Get("/attendance/report/{usn}", attendanceHandler.Report)
	})
}
