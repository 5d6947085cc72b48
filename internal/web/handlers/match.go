package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jaydudhale/Attendance-system-Backend/internal/config"
	"github.com/jaydudhale/Attendance-system-Backend/internal/database"
	"github.com/jaydudhale/Attendance-system-Backend/internal/facematch"
)

// MatchHandler handles descriptor matching endpoints
type MatchHandler struct {
	config      *config.Config
	descriptors database.DescriptorReader
	attendance  database.AttendanceWriter
	stats       *StatsHandler
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(cfg *config.Config, stats *StatsHandler) *MatchHandler {
	h := &MatchHandler{
		config: cfg,
		stats:  stats,
	}
	if reader, err := database.GetDescriptorReader(context.Background()); err == nil {
		h.descriptors = reader
	}
	if writer, err := database.GetAttendanceWriter(context.Background()); err == nil {
		h.attendance = writer
	}
	return h
}

// MatchRequest represents a batch match request
type MatchRequest struct {
	Probes    [][]float32 `json:"probes"`
	Threshold float64     `json:"threshold"`
}

// MatchedStudent describes the student a probe resolved to
type MatchedStudent struct {
	StudentID  string  `json:"student_id"`
	Name       string  `json:"name"`
	RollNo     string  `json:"roll_no"`
	Email      string  `json:"email,omitempty"`
	Distance   float64 `json:"distance"`
	Confidence float64 `json:"confidence"`
}

// ProbeResult is the outcome for a single probe, in probe order
type ProbeResult struct {
	Matched bool            `json:"matched"`
	Match   *MatchedStudent `json:"match,omitempty"`
}

// MatchResponse represents the batch match response
type MatchResponse struct {
	Threshold   float64       `json:"threshold"`
	GallerySize int           `json:"gallery_size"`
	Results     []ProbeResult `json:"results"`
}

// parseMatchRequest parses a match request, returning an error message if invalid.
// An empty probe list is valid and yields an empty result list. A threshold
// at or below zero falls back to the configured default.
func parseMatchRequest(r *http.Request, defaultThreshold float64) (MatchRequest, string) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, errInvalidRequestBody
	}
	for _, probe := range req.Probes {
		if len(probe) == 0 {
			return req, "probes must not contain empty vectors"
		}
	}
	if req.Threshold <= 0 {
		req.Threshold = defaultThreshold
	}
	return req, ""
}

// runMatch loads the gallery and matches the probes against it.
// Returns an HTTP status and error message when matching cannot proceed.
func (h *MatchHandler) runMatch(ctx context.Context, probes [][]float32, threshold float64) ([]facematch.Identity, []*facematch.Result, int, string) {
	gallery, err := h.descriptors.LoadGallery(ctx)
	if err != nil {
		return nil, nil, http.StatusInternalServerError, "failed to load descriptor gallery"
	}

	batch := make([]facematch.Descriptor, len(probes))
	for i, probe := range probes {
		batch[i] = facematch.Descriptor(probe)
	}

	results, err := facematch.Match(gallery, batch, threshold)
	if err != nil {
		var dimErr *facematch.DimensionError
		if errors.As(err, &dimErr) {
			return nil, nil, http.StatusUnprocessableEntity, err.Error()
		}
		return nil, nil, http.StatusInternalServerError, "matching failed"
	}
	return gallery, results, 0, ""
}

func matchToProbeResult(result *facematch.Result) ProbeResult {
	if result == nil {
		return ProbeResult{Matched: false}
	}
	return ProbeResult{
		Matched: true,
		Match: &MatchedStudent{
			StudentID:  result.IdentityID,
			Name:       result.Name,
			RollNo:     result.Code,
			Email:      result.Email,
			Distance:   result.Distance,
			Confidence: result.Confidence,
		},
	}
}

// Match resolves a batch of probe descriptors against the enrolled gallery.
// Each probe gets exactly one result, in probe order. Attendance is not touched.
func (h *MatchHandler) Match(w http.ResponseWriter, r *http.Request) {
	if h.descriptors == nil {
		respondError(w, http.StatusServiceUnavailable, "descriptor data not available")
		return
	}

	req, errMsg := parseMatchRequest(r, h.config.Matching.Threshold)
	if errMsg != "" {
		respondError(w, http.StatusBadRequest, errMsg)
		return
	}

	gallery, results, status, errMsg := h.runMatch(r.Context(), req.Probes, req.Threshold)
	if errMsg != "" {
		respondError(w, status, errMsg)
		return
	}

	probeResults := make([]ProbeResult, len(results))
	for i, result := range results {
		probeResults[i] = matchToProbeResult(result)
	}

	respondJSON(w, http.StatusOK, MatchResponse{
		Threshold:   req.Threshold,
		GallerySize: len(gallery),
		Results:     probeResults,
	})
}

// RecognizeRequest represents an attendance recognition request
type RecognizeRequest struct {
	Probes    [][]float32 `json:"probes"`
	Threshold float64     `json:"threshold"`
	Day       string      `json:"day"`
}

// RecognizeResult is the outcome for a single probe including attendance state
type RecognizeResult struct {
	Matched        bool            `json:"matched"`
	Match          *MatchedStudent `json:"match,omitempty"`
	MarkedPresent  bool            `json:"marked_present"`
	AlreadyPresent bool            `json:"already_present"`
}

// RecognizeSummary provides counts over the whole batch
type RecognizeSummary struct {
	Recognized     int `json:"recognized"`
	Unrecognized   int `json:"unrecognized"`
	MarkedPresent  int `json:"marked_present"`
	AlreadyPresent int `json:"already_present"`
}

// RecognizeResponse represents the attendance recognition response
type RecognizeResponse struct {
	Day       string            `json:"day"`
	Threshold float64           `json:"threshold"`
	Results   []RecognizeResult `json:"results"`
	Summary   RecognizeSummary  `json:"summary"`
}

// Recognize matches a batch of probes and marks attendance for every student
// that was recognized. A student already marked for the day keeps the earlier
// record and is reported as already present.
func (h *MatchHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	if h.descriptors == nil {
		respondError(w, http.StatusServiceUnavailable, "descriptor data not available")
		return
	}
	if h.attendance == nil {
		respondError(w, http.StatusServiceUnavailable, "attendance data not available")
		return
	}

	var req RecognizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	for _, probe := range req.Probes {
		if len(probe) == 0 {
			respondError(w, http.StatusBadRequest, "probes must not contain empty vectors")
			return
		}
	}
	if req.Threshold <= 0 {
		req.Threshold = h.config.Matching.Threshold
	}

	day := time.Now()
	if req.Day != "" {
		parsed, err := time.Parse(database.DayFormat, req.Day)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid day, expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	ctx := r.Context()
	_, results, status, errMsg := h.runMatch(ctx, req.Probes, req.Threshold)
	if errMsg != "" {
		respondError(w, status, errMsg)
		return
	}

	var summary RecognizeSummary
	recognizeResults := make([]RecognizeResult, len(results))
	for i, result := range results {
		probeResult := matchToProbeResult(result)
		recognizeResults[i] = RecognizeResult{Matched: probeResult.Matched, Match: probeResult.Match}

		if result == nil {
			summary.Unrecognized++
			continue
		}
		summary.Recognized++

		studentID, err := uuid.Parse(result.IdentityID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to mark attendance")
			return
		}

		created, err := h.attendance.MarkAttendance(ctx, studentID, day, result.Distance, result.Confidence, database.AttendanceSourceRecognition)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to mark attendance")
			return
		}
		if created {
			recognizeResults[i].MarkedPresent = true
			summary.MarkedPresent++
			log.Printf("Marked %s (%s) present on %s", sanitizeForLog(result.Name), sanitizeForLog(result.Code), day.Format(database.DayFormat))
		} else {
			recognizeResults[i].AlreadyPresent = true
			summary.AlreadyPresent++
		}
	}

	if summary.MarkedPresent > 0 && h.stats != nil {
		h.stats.InvalidateCache()
	}

	respondJSON(w, http.StatusOK, RecognizeResponse{
		Day:       day.Format(database.DayFormat),
		Threshold: req.Threshold,
		Results:   recognizeResults,
		Summary:   summary,
	})
}
