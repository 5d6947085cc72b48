// Package handlers provides HTTP handlers for the web API.
// Handler methods are organized in separate files:
//   - students.go: Student CRUD operations
//   - descriptors.go: Descriptor enrollment and the cross-student audit
//   - match.go: Descriptor matching and attendance recognition
//   - attendance.go: Attendance listing and CSV export
//   - stats.go: Database statistics
//   - common.go: Shared response helpers
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jaydudhale/Attendance-system-Backend/internal/config"
	"github.com/jaydudhale/Attendance-system-Backend/internal/database"
)

// StudentsHandler handles student-related endpoints
type StudentsHandler struct {
	config   *config.Config
	students database.StudentWriter
	stats    *StatsHandler
}

// NewStudentsHandler creates a new students handler
func NewStudentsHandler(cfg *config.Config, stats *StatsHandler) *StudentsHandler {
	h := &StudentsHandler{
		config: cfg,
		stats:  stats,
	}
	// Try to get a student writer from PostgreSQL
	if writer, err := database.GetStudentWriter(context.Background()); err == nil {
		h.students = writer
	}
	return h
}

// invalidateStats drops the cached statistics after a registry change.
func (h *StudentsHandler) invalidateStats() {
	if h.stats != nil {
		h.stats.InvalidateCache()
	}
}

// StudentResponse represents a student in API responses
type StudentResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	RollNo          string `json:"roll_no"`
	Email           string `json:"email,omitempty"`
	DescriptorCount int    `json:"descriptor_count"`
	CreatedAt       string `json:"created_at,omitempty"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

func studentToResponse(s database.Student) StudentResponse {
	return StudentResponse{
		ID:              s.ID.String(),
		Name:            s.Name,
		RollNo:          s.RollNo,
		Email:           s.Email,
		DescriptorCount: s.DescriptorCount,
		CreatedAt:       s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       s.UpdatedAt.Format(time.RFC3339),
	}
}

// parseStudentID extracts and validates the student UUID from the URL.
// Writes an error response and returns false when the ID is invalid.
func parseStudentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid student id")
		return uuid.Nil, false
	}
	return id, true
}

// List returns all students ordered by roll number
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.students == nil {
		respondError(w, http.StatusServiceUnavailable, "student data not available")
		return
	}

	students, err := h.students.ListStudents(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list students")
		return
	}

	response := make([]StudentResponse, 0, len(students))
	for i := range students {
		response = append(response, studentToResponse(students[i]))
	}

	respondJSON(w, http.StatusOK, response)
}

// StudentCreateRequest represents the request body for creating a student
type StudentCreateRequest struct {
	Name   string `json:"name"`
	RollNo string `json:"roll_no"`
	Email  string `json:"email"`
}

// Create registers a new student
func (h *StudentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.students == nil {
		respondError(w, http.StatusServiceUnavailable, "student data not available")
		return
	}

	var req StudentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.RollNo == "" {
		respondError(w, http.StatusBadRequest, "roll_no is required")
		return
	}

	ctx := r.Context()
	existing, err := h.students.GetStudentByRollNo(ctx, req.RollNo)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create student")
		return
	}
	if existing != nil {
		respondError(w, http.StatusConflict, "a student with this roll number already exists")
		return
	}

	student, err := h.students.CreateStudent(ctx, req.Name, req.RollNo, req.Email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create student")
		return
	}

	h.invalidateStats()
	respondJSON(w, http.StatusCreated, studentToResponse(*student))
}

// Get returns a single student by ID
func (h *StudentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.students == nil {
		respondError(w, http.StatusServiceUnavailable, "student data not available")
		return
	}

	id, ok := parseStudentID(w, r)
	if !ok {
		return
	}

	student, err := h.students.GetStudent(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get student")
		return
	}
	if student == nil {
		respondError(w, http.StatusNotFound, "student not found")
		return
	}

	respondJSON(w, http.StatusOK, studentToResponse(*student))
}

// StudentUpdateRequest represents the request body for updating a student
type StudentUpdateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Update changes a student's name and email
func (h *StudentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h.students == nil {
		respondError(w, http.StatusServiceUnavailable, "student data not available")
		return
	}

	id, ok := parseStudentID(w, r)
	if !ok {
		return
	}

	var req StudentUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	student, err := h.students.UpdateStudent(r.Context(), id, req.Name, req.Email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update student")
		return
	}
	if student == nil {
		respondError(w, http.StatusNotFound, "student not found")
		return
	}

	respondJSON(w, http.StatusOK, studentToResponse(*student))
}

// Delete removes a student along with their descriptors and attendance
func (h *StudentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.students == nil {
		respondError(w, http.StatusServiceUnavailable, "student data not available")
		return
	}

	id, ok := parseStudentID(w, r)
	if !ok {
		return
	}

	if err := h.students.DeleteStudent(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete student")
		return
	}

	h.invalidateStats()
	respondJSON(w, http.StatusNoContent, nil)
}
