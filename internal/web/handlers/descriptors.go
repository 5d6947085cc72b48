package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jaydudhale/Attendance-system-Backend/internal/config"
	"github.com/jaydudhale/Attendance-system-Backend/internal/database"
)

// DescriptorsHandler handles descriptor enrollment endpoints
type DescriptorsHandler struct {
	config      *config.Config
	students    database.StudentReader
	descriptors database.DescriptorWriter
	stats       *StatsHandler
}

// NewDescriptorsHandler creates a new descriptors handler
func NewDescriptorsHandler(cfg *config.Config, stats *StatsHandler) *DescriptorsHandler {
	h := &DescriptorsHandler{
		config: cfg,
		stats:  stats,
	}
	if reader, err := database.GetStudentReader(context.Background()); err == nil {
		h.students = reader
	}
	if writer, err := database.GetDescriptorWriter(context.Background()); err == nil {
		h.descriptors = writer
	}
	return h
}

// invalidateStats drops the cached statistics after an enrollment change.
func (h *DescriptorsHandler) invalidateStats() {
	if h.stats != nil {
		h.stats.InvalidateCache()
	}
}

// DescriptorResponse represents a stored descriptor in API responses.
// The vector itself is not echoed back; it can be hundreds of values.
type DescriptorResponse struct {
	ID        int64  `json:"id"`
	StudentID string `json:"student_id"`
	Dim       int    `json:"dim"`
	Source    string `json:"source"`
	CreatedAt string `json:"created_at,omitempty"`
}

func descriptorToResponse(d database.StoredDescriptor) DescriptorResponse {
	return DescriptorResponse{
		ID:        d.ID,
		StudentID: d.StudentID.String(),
		Dim:       d.Dim,
		Source:    d.Source,
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	}
}

// EnrollRequest represents the request body for enrolling a descriptor
type EnrollRequest struct {
	Descriptor []float32 `json:"descriptor"`
	Source     string    `json:"source"`
}

// Enroll stores a face descriptor for a student
func (h *DescriptorsHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	if h.descriptors == nil {
		respondError(w, http.StatusServiceUnavailable, "descriptor data not available")
		return
	}

	id, ok := parseStudentID(w, r)
	if !ok {
		return
	}

	var req EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.Descriptor) == 0 {
		respondError(w, http.StatusBadRequest, "descriptor is required")
		return
	}
	if dim := h.config.Matching.DescriptorDim; dim > 0 && len(req.Descriptor) != dim {
		respondError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("descriptor has %d values, expected %d", len(req.Descriptor), dim))
		return
	}

	ctx := r.Context()
	if h.students != nil {
		student, err := h.students.GetStudent(ctx, id)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to get student")
			return
		}
		if student == nil {
			respondError(w, http.StatusNotFound, "student not found")
			return
		}
	}

	existing, err := h.descriptors.GetDescriptors(ctx, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get descriptors")
		return
	}
	if len(existing) >= database.MaxDescriptorsPerStudent {
		respondError(w, http.StatusConflict,
			fmt.Sprintf("descriptor limit of %d reached for this student", database.MaxDescriptorsPerStudent))
		return
	}

	stored, err := h.descriptors.AddDescriptor(ctx, id, req.Descriptor, req.Source)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to store descriptor")
		return
	}

	h.invalidateStats()
	respondJSON(w, http.StatusCreated, descriptorToResponse(*stored))
}

// List returns descriptor metadata for a student
func (h *DescriptorsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.descriptors == nil {
		respondError(w, http.StatusServiceUnavailable, "descriptor data not available")
		return
	}

	id, ok := parseStudentID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	if h.students != nil {
		student, err := h.students.GetStudent(ctx, id)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to get student")
			return
		}
		if student == nil {
			respondError(w, http.StatusNotFound, "student not found")
			return
		}
	}

	descriptors, err := h.descriptors.GetDescriptors(ctx, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get descriptors")
		return
	}

	response := make([]DescriptorResponse, 0, len(descriptors))
	for i := range descriptors {
		response = append(response, descriptorToResponse(descriptors[i]))
	}

	respondJSON(w, http.StatusOK, response)
}

// DeleteOne removes a single descriptor
func (h *DescriptorsHandler) DeleteOne(w http.ResponseWriter, r *http.Request) {
	if h.descriptors == nil {
		respondError(w, http.StatusServiceUnavailable, "descriptor data not available")
		return
	}

	id, ok := parseStudentID(w, r)
	if !ok {
		return
	}

	descriptorID, err := strconv.ParseInt(chi.URLParam(r, "descriptorId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid descriptor id")
		return
	}

	if err := h.descriptors.DeleteDescriptor(r.Context(), id, descriptorID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete descriptor")
		return
	}

	h.invalidateStats()
	respondJSON(w, http.StatusNoContent, nil)
}

// DeleteAll removes all descriptors for a student
func (h *DescriptorsHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if h.descriptors == nil {
		respondError(w, http.StatusServiceUnavailable, "descriptor data not available")
		return
	}

	id, ok := parseStudentID(w, r)
	if !ok {
		return
	}

	if err := h.descriptors.DeleteDescriptors(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete descriptors")
		return
	}

	h.invalidateStats()
	respondJSON(w, http.StatusNoContent, nil)
}

// NeighborResponse represents a pair of suspiciously close descriptors
// belonging to two different students.
type NeighborResponse struct {
	DescriptorID      int64   `json:"descriptor_id"`
	StudentID         string  `json:"student_id"`
	StudentName       string  `json:"student_name"`
	RollNo            string  `json:"roll_no"`
	OtherDescriptorID int64   `json:"other_descriptor_id"`
	OtherStudentID    string  `json:"other_student_id"`
	OtherStudentName  string  `json:"other_student_name"`
	OtherRollNo       string  `json:"other_roll_no"`
	Distance          float64 `json:"distance"`
}

// Audit reports descriptor pairs from different students that sit unusually
// close together. Such pairs are usually enrollment mistakes and would let
// one student be recognized as another.
func (h *DescriptorsHandler) Audit(w http.ResponseWriter, r *http.Request) {
	if h.descriptors == nil {
		respondError(w, http.StatusServiceUnavailable, "descriptor data not available")
		return
	}

	maxDistance := database.AuditDefaultMaxDistance
	if v := r.URL.Query().Get("max_distance"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "invalid max_distance")
			return
		}
		maxDistance = parsed
	}

	limit := database.AuditDefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	neighbors, err := h.descriptors.FindForeignNeighbors(r.Context(), maxDistance, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to audit descriptors")
		return
	}

	response := make([]NeighborResponse, 0, len(neighbors))
	for _, n := range neighbors {
		response = append(response, NeighborResponse{
			DescriptorID:      n.DescriptorID,
			StudentID:         n.StudentID.String(),
			StudentName:       n.StudentName,
			RollNo:            n.RollNo,
			OtherDescriptorID: n.OtherDescriptorID,
			OtherStudentID:    n.OtherStudentID.String(),
			OtherStudentName:  n.OtherStudentName,
			OtherRollNo:       n.OtherRollNo,
			Distance:          n.Distance,
		})
	}

	respondJSON(w, http.StatusOK, response)
}
