package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/database"
)

// StudentsHandler handles student directory requests
type StudentsHandler struct {
	students  database.StudentWriter
	threshold float64
}

// NewStudentsHandler creates a new students handler
func NewStudentsHandler(students database.StudentWriter, threshold float64) *StudentsHandler {
	return &StudentsHandler{
		students:  students,
		threshold: threshold,
	}
}

type registerRequest struct {
	USN      string    `json:"usn"`
	Name     string    `json:"name"`
	FaceData []float32 `json:"face_data"`
}

type studentResponse struct {
	USN        string    `json:"usn"`
	Name       string    `json:"name"`
	Descriptor []float32 `json:"descriptor,omitempty"`
	CreatedAt  string    `json:"created_at"`
}

func toStudentResponse(s *database.Student, includeDescriptor bool) studentResponse {
	resp := studentResponse{
		USN:       s.USN,
		Name:      s.Name,
		CreatedAt: s.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if includeDescriptor {
		resp.Descriptor = s.Descriptor
	}
	return resp
}

// Register handles POST /students/register
func (h *StudentsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if req.USN == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "usn and name are required")
		return
	}
	if len(req.FaceData) != constants.DescriptorDim {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("face_data must contain %d values, got %d", constants.DescriptorDim, len(req.FaceData)))
		return
	}

	student := &database.Student{
		USN:        req.USN,
		Name:       req.Name,
		Descriptor: req.FaceData,
	}
	if err := h.students.Create(r.Context(), student); err != nil {
		if errors.Is(err, database.ErrDuplicateStudent) {
			respondError(w, http.StatusConflict, database.ErrDuplicateStudent.Error())
			return
		}
		log.Printf("Failed to register student %s: %v", sanitizeForLog(req.USN), err)
		respondError(w, http.StatusInternalServerError, "failed to register student")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message": "student registered",
		"usn":     student.USN,
	})
}

// List handles GET /students. The optional q parameter filters by normalized
// name; descriptors=true includes reference descriptors for roster loading.
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	includeDescriptors := r.URL.Query().Get("descriptors") == "true"
	query := r.URL.Query().Get("q")

	var (
		students []database.Student
		err      error
	)
	if includeDescriptors {
		students, err = h.students.ListWithDescriptors(r.Context())
	} else {
		students, err = h.students.List(r.Context(), query)
	}
	if err != nil {
		log.Printf("Failed to list students: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list students")
		return
	}

	resp := make([]studentResponse, 0, len(students))
	for i := range students {
		resp = append(resp, toStudentResponse(&students[i], includeDescriptors))
	}

	respondJSON(w, http.StatusOK, map[string]any{"students": resp})
}

// Get handles GET /students/{usn}, returning the entry with its descriptor.
func (h *StudentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	usn := chi.URLParam(r, "usn")

	student, err := h.students.Get(r.Context(), usn)
	if err != nil {
		if errors.Is(err, database.ErrStudentNotFound) {
			respondError(w, http.StatusNotFound, database.ErrStudentNotFound.Error())
			return
		}
		log.Printf("Failed to get student %s: %v", sanitizeForLog(usn), err)
		respondError(w, http.StatusInternalServerError, "failed to get student")
		return
	}

	respondJSON(w, http.StatusOK, toStudentResponse(student, true))
}

type identifyRequest struct {
	Descriptor []float32 `json:"descriptor"`
}

// Identify handles POST /students/identify: server-side nearest-neighbor
// lookup over stored descriptors. Returns the best match strictly below the
// distance threshold, or 404 when every registered face is too far away.
func (h *StudentsHandler) Identify(w http.ResponseWriter, r *http.Request) {
	var req identifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.Descriptor) != constants.DescriptorDim {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("descriptor must contain %d values, got %d", constants.DescriptorDim, len(req.Descriptor)))
		return
	}

	student, distance, err := h.students.FindNearest(r.Context(), req.Descriptor)
	if err != nil {
		if errors.Is(err, database.ErrStudentNotFound) {
			respondError(w, http.StatusNotFound, "no students registered")
			return
		}
		log.Printf("Failed to identify student: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to identify student")
		return
	}

	if distance >= h.threshold {
		respondError(w, http.StatusNotFound, "no matching student")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"usn":      student.USN,
		"name":     student.Name,
		"distance": distance,
	})
}
