package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/jaydudhale/Attendance-system-Backend/internal/config"
	"github.com/jaydudhale/Attendance-system-Backend/internal/database"
)

const statsCacheTTL = 10 * time.Minute

// statsCache holds cached stats with expiry
type statsCache struct {
	mu        sync.RWMutex
	data      *StatsResponse
	expiresAt time.Time
}

func (c *statsCache) get() (*StatsResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil || time.Now().After(c.expiresAt) {
		return nil, false
	}
	return c.data, true
}

func (c *statsCache) set(data *StatsResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
	c.expiresAt = time.Now().Add(statsCacheTTL)
}

func (c *statsCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
}

// StatsHandler handles statistics endpoints
type StatsHandler struct {
	config      *config.Config
	students    database.StudentReader
	descriptors database.DescriptorReader
	attendance  database.AttendanceReader
	cache       statsCache
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(cfg *config.Config) *StatsHandler {
	h := &StatsHandler{
		config: cfg,
	}
	if reader, err := database.GetStudentReader(context.Background()); err == nil {
		h.students = reader
	}
	if reader, err := database.GetDescriptorReader(context.Background()); err == nil {
		h.descriptors = reader
	}
	if reader, err := database.GetAttendanceReader(context.Background()); err == nil {
		h.attendance = reader
	}
	return h
}

// InvalidateCache clears the cached stats so the next request fetches fresh data
func (h *StatsHandler) InvalidateCache() {
	h.cache.invalidate()
}

// StatsResponse represents the statistics response
type StatsResponse struct {
	Students          int `json:"students"`
	StudentsWithFaces int `json:"students_with_faces"`
	Descriptors       int `json:"descriptors"`
	AttendanceDays    int `json:"attendance_days"`
	RecordsToday      int `json:"records_today"`
}

// Get returns statistics about students, descriptors and attendance
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.students == nil || h.descriptors == nil || h.attendance == nil {
		respondError(w, http.StatusServiceUnavailable, "statistics not available")
		return
	}

	if cached, ok := h.cache.get(); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	ctx := r.Context()
	stats := &StatsResponse{}

	var err error
	if stats.Students, err = h.students.CountStudents(ctx); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to collect statistics")
		return
	}
	if stats.StudentsWithFaces, err = h.descriptors.CountStudentsWithDescriptors(ctx); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to collect statistics")
		return
	}
	if stats.Descriptors, err = h.descriptors.CountDescriptors(ctx); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to collect statistics")
		return
	}
	if stats.AttendanceDays, err = h.attendance.CountAttendanceDays(ctx); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to collect statistics")
		return
	}
	if stats.RecordsToday, err = h.attendance.CountAttendance(ctx, time.Now()); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to collect statistics")
		return
	}

	h.cache.set(stats)
	respondJSON(w, http.StatusOK, stats)
}
