package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jaydudhale/Attendance-system-Backend/internal/database"
	"github.com/jaydudhale/Attendance-system-Backend/internal/database/mock"
)

// createMatchHandlerWithMocks creates a MatchHandler with mock database dependencies.
func createMatchHandlerWithMocks(descriptors database.DescriptorReader, attendance database.AttendanceWriter) *MatchHandler {
	return &MatchHandler{
		config:      testConfig(),
		descriptors: descriptors,
		attendance:  attendance,
	}
}

// seedIdentity registers a student with descriptors in the mock gallery.
func seedIdentity(m *mock.MockDescriptorReader, name, rollNo string, vectors ...[]float32) uuid.UUID {
	id := uuid.New()
	m.AddIdentity(id, name, rollNo, "")
	descriptors := make([]database.StoredDescriptor, len(vectors))
	for i, v := range vectors {
		descriptors[i] = database.StoredDescriptor{ID: int64(i + 1), StudentID: id, Vector: v, Dim: len(v)}
	}
	m.AddDescriptors(id, descriptors)
	return id
}

func TestMatchHandler_Match_NoDatabase(t *testing.T) {
	handler := createMatchHandlerWithMocks(nil, nil)

	body := bytes.NewBufferString(`{"probes": [[0.1, 0.2]]}`)
	req := httptest.NewRequest("POST", "/api/v1/match", body)
	recorder := httptest.NewRecorder()

	handler.Match(recorder, req)

	assertStatusCode(t, recorder, http.StatusServiceUnavailable)
	assertJSONError(t, recorder, "descriptor data not available")
}

func TestMatchHandler_Match_InvalidJSON(t *testing.T) {
	handler := createMatchHandlerWithMocks(mock.NewMockDescriptorReader(), nil)

	body := bytes.NewBufferString(`{invalid json}`)
	req := httptest.NewRequest("POST", "/api/v1/match", body)
	recorder := httptest.NewRecorder()

	handler.Match(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "invalid request body")
}

func TestMatchHandler_Match_EmptyProbes(t *testing.T) {
	mockReader := mock.NewMockDescriptorReader()
	seedIdentity(mockReader, "Jan Novak", "CS101", []float32{0, 0})
	handler := createMatchHandlerWithMocks(mockReader, nil)

	body := bytes.NewBufferString(`{"probes": []}`)
	req := httptest.NewRequest("POST", "/api/v1/match", body)
	recorder := httptest.NewRecorder()

	handler.Match(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var response MatchResponse
	parseJSONResponse(t, recorder, &response)
	if len(response.Results) != 0 {
		t.Errorf("expected empty results, got %d", len(response.Results))
	}
	if response.Threshold != 0.6 {
		t.Errorf("expected default threshold 0.6, got %f", response.Threshold)
	}
	if response.GallerySize != 1 {
		t.Errorf("expected gallery_size 1, got %d", response.GallerySize)
	}
}

func TestMatchHandler_Match_EmptyProbeVector(t *testing.T) {
	handler := createMatchHandlerWithMocks(mock.NewMockDescriptorReader(), nil)

	body := bytes.NewBufferString(`{"probes": [[]]}`)
	req := httptest.NewRequest("POST", "/api/v1/match", body)
	recorder := httptest.NewRecorder()

	handler.Match(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "probes must not contain empty vectors")
}

func TestMatchHandler_Match_ClosestStudentWins(t *testing.T) {
	mockReader := mock.NewMockDescriptorReader()
	aliceID := seedIdentity(mockReader, "Alice Novak", "CS101", []float32{0, 0})
	seedIdentity(mockReader, "Bob Smith", "CS102", []float32{10, 10})
	handler := createMatchHandlerWithMocks(mockReader, nil)

	body := bytes.NewBufferString(`{"probes": [[0.1, 0.1]]}`)
	req := httptest.NewRequest("POST", "/api/v1/match", body)
	recorder := httptest.NewRecorder()

	handler.Match(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var response MatchResponse
	parseJSONResponse(t, recorder, &response)
	if len(response.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(response.Results))
	}

	result := response.Results[0]
	if !result.Matched || result.Match == nil {
		t.Fatal("expected probe to match")
	}
	if result.Match.StudentID != aliceID.String() {
		t.Errorf("expected student %s, got %s", aliceID, result.Match.StudentID)
	}
	if result.Match.RollNo != "CS101" {
		t.Errorf("expected roll_no CS101, got %s", result.Match.RollNo)
	}

	wantDist := math.Sqrt(0.02)
	if math.Abs(result.Match.Distance-wantDist) > 1e-6 {
		t.Errorf("expected distance ~%f, got %f", wantDist, result.Match.Distance)
	}
	if result.Match.Confidence != 1-result.Match.Distance {
		t.Errorf("expected confidence = 1 - distance, got %f", result.Match.Confidence)
	}
}

func TestMatchHandler_Match_NoMatchAboveThreshold(t *testing.T) {
	mockReader := mock.NewMockDescriptorReader()
	seedIdentity(mockReader, "Alice Novak", "CS101", []float32{0, 0})
	handler := createMatchHandlerWithMocks(mockReader, nil)

	body := bytes.NewBufferString(`{"probes": [[5, 5]]}`)
	req := httptest.NewRequest("POST", "/api/v1/match", body)
	recorder := httptest.NewRecorder()

	handler.Match(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var response MatchResponse
	parseJSONResponse(t, recorder, &response)
	if len(response.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(response.Results))
	}
	if response.Results[0].Matched {
		t.Error("expected no match above the threshold")
	}
	if response.Results[0].Match != nil {
		t.Errorf("expected nil match, got %+v", response.Results[0].Match)
	}
}

func TestMatchHandler_Match_ThresholdOverride(t *testing.T) {
	mockReader := mock.NewMockDescriptorReader()
	seedIdentity(mockReader, "Alice Novak", "CS101", []float32{0, 0})
	handler := createMatchHandlerWithMocks(mockReader, nil)

	// Distance is ~7.07, far beyond the default 0.6 but inside 50.
	body := bytes.NewBufferString(`{"probes": [[5, 5]], "threshold": 50}`)
	req := httptest.NewRequest("POST", "/api/v1/match", body)
	recorder := httptest.NewRecorder()

	handler.Match(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var response MatchResponse
	parseJSONResponse(t, recorder, &response)
	if response.Threshold != 50 {
		t.Errorf("expected threshold 50, got %f", response.Threshold)
	}
	if !response.Results[0].Matched {
		t.Error("expected match with the relaxed threshold")
	}
}

func TestMatchHandler_Match_DimensionMismatch(t *testing.T) {
	mockReader := mock.NewMockDescriptorReader()
	aliceID := seedIdentity(mockReader, "Alice Novak", "CS101", []float32{0, 0})
	handler := createMatchHandlerWithMocks(mockReader, nil)

	body := bytes.NewBufferString(`{"probes": [[0.1, 0.2, 0.3]]}`)
	req := httptest.NewRequest("POST", "/api/v1/match", body)
	recorder := httptest.NewRecorder()

	handler.Match(recorder, req)

	assertStatusCode(t, recorder, http.StatusUnprocessableEntity)
	expected := fmt.Sprintf("descriptor dimension mismatch: probe 0 has 3 values but descriptor 0 of identity %q has 2", aliceID.String())
	assertJSONError(t, recorder, expected)
}

func TestMatchHandler_Match_GalleryError(t *testing.T) {
	mockReader := mock.NewMockDescriptorReader()
	mockReader.LoadGalleryError = errors.New("connection lost")
	handler := createMatchHandlerWithMocks(mockReader, nil)

	body := bytes.NewBufferString(`{"probes": [[0.1, 0.2]]}`)
	req := httptest.NewRequest("POST", "/api/v1/match", body)
	recorder := httptest.NewRecorder()

	handler.Match(recorder, req)

	assertStatusCode(t, recorder, http.StatusInternalServerError)
	assertJSONError(t, recorder, "failed to load descriptor gallery")
}

func TestMatchHandler_Recognize_NoAttendanceWriter(t *testing.T) {
	handler := createMatchHandlerWithMocks(mock.NewMockDescriptorReader(), nil)

	body := bytes.NewBufferString(`{"probes": [[0.1, 0.2]]}`)
	req := httptest.NewRequest("POST", "/api/v1/attendance/recognize", body)
	recorder := httptest.NewRecorder()

	handler.Recognize(recorder, req)

	assertStatusCode(t, recorder, http.StatusServiceUnavailable)
	assertJSONError(t, recorder, "attendance data not available")
}

func TestMatchHandler_Recognize_MarksRecognizedStudents(t *testing.T) {
	mockReader := mock.NewMockDescriptorReader()
	aliceID := seedIdentity(mockReader, "Alice Novak", "CS101", []float32{0, 0})
	seedIdentity(mockReader, "Bob Smith", "CS102", []float32{10, 10})
	mockWriter := mock.NewMockAttendanceWriter()
	handler := createMatchHandlerWithMocks(mockReader, mockWriter)

	// First probe hits Alice, second matches nobody.
	body := bytes.NewBufferString(`{"probes": [[0.1, 0.1], [5, 5]], "day": "2025-09-01"}`)
	req := httptest.NewRequest("POST", "/api/v1/attendance/recognize", body)
	recorder := httptest.NewRecorder()

	handler.Recognize(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var response RecognizeResponse
	parseJSONResponse(t, recorder, &response)
	if response.Day != "2025-09-01" {
		t.Errorf("expected day 2025-09-01, got %s", response.Day)
	}
	if len(response.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(response.Results))
	}
	if !response.Results[0].Matched || !response.Results[0].MarkedPresent {
		t.Errorf("expected first probe marked present, got %+v", response.Results[0])
	}
	if response.Results[1].Matched || response.Results[1].MarkedPresent {
		t.Errorf("expected second probe unrecognized, got %+v", response.Results[1])
	}

	want := RecognizeSummary{Recognized: 1, Unrecognized: 1, MarkedPresent: 1}
	if response.Summary != want {
		t.Errorf("expected summary %+v, got %+v", want, response.Summary)
	}

	if len(mockWriter.MarkAttendanceCalls) != 1 {
		t.Fatalf("expected 1 mark call, got %d", len(mockWriter.MarkAttendanceCalls))
	}
	call := mockWriter.MarkAttendanceCalls[0]
	if call.StudentID != aliceID {
		t.Errorf("expected mark for %s, got %s", aliceID, call.StudentID)
	}
	if call.Day.Format(database.DayFormat) != "2025-09-01" {
		t.Errorf("expected day 2025-09-01, got %s", call.Day.Format(database.DayFormat))
	}
	if call.Source != database.AttendanceSourceRecognition {
		t.Errorf("expected source recognition, got %s", call.Source)
	}
}

func TestMatchHandler_Recognize_AlreadyPresent(t *testing.T) {
	mockReader := mock.NewMockDescriptorReader()
	aliceID := seedIdentity(mockReader, "Alice Novak", "CS101", []float32{0, 0})
	mockWriter := mock.NewMockAttendanceWriter()
	day := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	mockWriter.AddRecord(database.AttendanceRecord{ID: 1, StudentID: aliceID, Day: day})
	handler := createMatchHandlerWithMocks(mockReader, mockWriter)

	body := bytes.NewBufferString(`{"probes": [[0.1, 0.1]], "day": "2025-09-01"}`)
	req := httptest.NewRequest("POST", "/api/v1/attendance/recognize", body)
	recorder := httptest.NewRecorder()

	handler.Recognize(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var response RecognizeResponse
	parseJSONResponse(t, recorder, &response)
	if !response.Results[0].AlreadyPresent || response.Results[0].MarkedPresent {
		t.Errorf("expected already present, got %+v", response.Results[0])
	}
	if response.Summary.AlreadyPresent != 1 || response.Summary.MarkedPresent != 0 {
		t.Errorf("unexpected summary: %+v", response.Summary)
	}
}

func TestMatchHandler_Recognize_InvalidDay(t *testing.T) {
	handler := createMatchHandlerWithMocks(mock.NewMockDescriptorReader(), mock.NewMockAttendanceWriter())

	body := bytes.NewBufferString(`{"probes": [[0.1, 0.1]], "day": "September 1st"}`)
	req := httptest.NewRequest("POST", "/api/v1/attendance/recognize", body)
	recorder := httptest.NewRecorder()

	handler.Recognize(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "invalid day, expected YYYY-MM-DD")
}

func TestMatchHandler_Recognize_MarkError(t *testing.T) {
	mockReader := mock.NewMockDescriptorReader()
	seedIdentity(mockReader, "Alice Novak", "CS101", []float32{0, 0})
	mockWriter := mock.NewMockAttendanceWriter()
	mockWriter.MarkError = errors.New("connection lost")
	handler := createMatchHandlerWithMocks(mockReader, mockWriter)

	body := bytes.NewBufferString(`{"probes": [[0.1, 0.1]]}`)
	req := httptest.NewRequest("POST", "/api/v1/attendance/recognize", body)
	recorder := httptest.NewRecorder()

	handler.Recognize(recorder, req)

	assertStatusCode(t, recorder, http.StatusInternalServerError)
	assertJSONError(t, recorder, "failed to mark attendance")
}
