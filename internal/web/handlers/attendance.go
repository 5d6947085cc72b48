package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jaydudhale/Attendance-system-Backend/internal/config"
	"github.com/jaydudhale/Attendance-system-Backend/internal/database"
)

// AttendanceHandler handles attendance listing endpoints
type AttendanceHandler struct {
	config     *config.Config
	attendance database.AttendanceReader
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(cfg *config.Config) *AttendanceHandler {
	h := &AttendanceHandler{
		config: cfg,
	}
	if reader, err := database.GetAttendanceReader(context.Background()); err == nil {
		h.attendance = reader
	}
	return h
}

// AttendanceRecordResponse represents an attendance record in API responses
type AttendanceRecordResponse struct {
	ID          int64   `json:"id"`
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	RollNo      string  `json:"roll_no"`
	Day         string  `json:"day"`
	MarkedAt    string  `json:"marked_at"`
	Distance    float64 `json:"distance"`
	Confidence  float64 `json:"confidence"`
	Source      string  `json:"source"`
}

func attendanceToResponse(rec database.AttendanceRecord) AttendanceRecordResponse {
	return AttendanceRecordResponse{
		ID:          rec.ID,
		StudentID:   rec.StudentID.String(),
		StudentName: rec.StudentName,
		RollNo:      rec.RollNo,
		Day:         rec.Day.Format(database.DayFormat),
		MarkedAt:    rec.MarkedAt.Format(time.RFC3339),
		Distance:    rec.Distance,
		Confidence:  rec.Confidence,
		Source:      rec.Source,
	}
}

// parseDayParam reads a day query parameter, defaulting to today.
// Returns false after writing an error response when the value is malformed.
func parseDayParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return time.Now(), true
	}
	day, err := time.Parse(database.DayFormat, value)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s, expected YYYY-MM-DD", name))
		return time.Time{}, false
	}
	return day, true
}

// List returns attendance records for a single day, today by default
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.attendance == nil {
		respondError(w, http.StatusServiceUnavailable, "attendance data not available")
		return
	}

	day, ok := parseDayParam(w, r, "day")
	if !ok {
		return
	}

	records, err := h.attendance.ListAttendance(r.Context(), day)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list attendance")
		return
	}

	response := make([]AttendanceRecordResponse, 0, len(records))
	for i := range records {
		response = append(response, attendanceToResponse(records[i]))
	}

	respondJSON(w, http.StatusOK, response)
}

// Export streams attendance records for a day range as CSV.
// Both from and to default to today, so a bare request exports today's sheet.
func (h *AttendanceHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h.attendance == nil {
		respondError(w, http.StatusServiceUnavailable, "attendance data not available")
		return
	}

	from, ok := parseDayParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := parseDayParam(w, r, "to")
	if !ok {
		return
	}
	fromKey := from.Format(database.DayFormat)
	toKey := to.Format(database.DayFormat)
	if fromKey > toKey {
		respondError(w, http.StatusBadRequest, "from must not be after to")
		return
	}

	records, err := h.attendance.ListAttendanceRange(r.Context(), from, to)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to export attendance")
		return
	}

	filename := fmt.Sprintf("attendance_%s_%s.csv", fromKey, toKey)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	cw.Write([]string{"day", "roll_no", "student_name", "marked_at", "distance", "confidence", "source"})
	for _, rec := range records {
		cw.Write([]string{
			rec.Day.Format(database.DayFormat),
			rec.RollNo,
			rec.StudentName,
			rec.MarkedAt.Format(time.RFC3339),
			strconv.FormatFloat(rec.Distance, 'f', 4, 64),
			strconv.FormatFloat(rec.Confidence, 'f', 4, 64),
			rec.Source,
		})
	}
	cw.Flush()
}
