// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jaydudhale/Attendance-system-Backend/internal/database"
	"github.com/jaydudhale/Attendance-system-Backend/internal/facematch"
)

// MockStudentReader is a mock implementation of database.StudentReader
type MockStudentReader struct {
	mu       sync.RWMutex
	students map[uuid.UUID]*database.Student

	// Error injection
	GetError   error
	ListError  error
	CountError error
}

// NewMockStudentReader creates a new mock student reader
func NewMockStudentReader() *MockStudentReader {
	return &MockStudentReader{
		students: make(map[uuid.UUID]*database.Student),
	}
}

// AddStudent adds a student to the mock store
func (m *MockStudentReader) AddStudent(student database.Student) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students[student.ID] = &student
}

// GetStudent retrieves a student by ID
func (m *MockStudentReader) GetStudent(ctx context.Context, id uuid.UUID) (*database.Student, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.students[id], nil
}

// GetStudentByRollNo retrieves a student by roll number, case-insensitively
func (m *MockStudentReader) GetStudentByRollNo(ctx context.Context, rollNo string) (*database.Student, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.students {
		if strings.EqualFold(s.RollNo, rollNo) {
			return s, nil
		}
	}
	return nil, nil
}

// ListStudents returns all students ordered by roll number
func (m *MockStudentReader) ListStudents(ctx context.Context) ([]database.Student, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []database.Student
	for _, s := range m.students {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RollNo < result[j].RollNo
	})
	return result, nil
}

// CountStudents returns the total number of students
func (m *MockStudentReader) CountStudents(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.students), nil
}

// MockStudentWriter is a mock implementation of database.StudentWriter
type MockStudentWriter struct {
	*MockStudentReader

	// Track calls
	CreateStudentCalls []CreateStudentCall
	UpdateStudentCalls []UpdateStudentCall
	DeleteStudentCalls []uuid.UUID

	// Error injection
	CreateError error
	UpdateError error
	DeleteError error
}

// CreateStudentCall tracks a CreateStudent call
type CreateStudentCall struct {
	Name   string
	RollNo string
	Email  string
}

// UpdateStudentCall tracks an UpdateStudent call
type UpdateStudentCall struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// NewMockStudentWriter creates a new mock student writer
func NewMockStudentWriter() *MockStudentWriter {
	return &MockStudentWriter{
		MockStudentReader: NewMockStudentReader(),
	}
}

// CreateStudent stores a new student
func (m *MockStudentWriter) CreateStudent(ctx context.Context, name, rollNo, email string) (*database.Student, error) {
	if m.CreateError != nil {
		return nil, m.CreateError
	}
	m.CreateStudentCalls = append(m.CreateStudentCalls, CreateStudentCall{Name: name, RollNo: rollNo, Email: email})
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	student := &database.Student{
		ID:        uuid.New(),
		Name:      name,
		RollNo:    rollNo,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.students[student.ID] = student
	return student, nil
}

// UpdateStudent updates name and email of an existing student
func (m *MockStudentWriter) UpdateStudent(ctx context.Context, id uuid.UUID, name, email string) (*database.Student, error) {
	if m.UpdateError != nil {
		return nil, m.UpdateError
	}
	m.UpdateStudentCalls = append(m.UpdateStudentCalls, UpdateStudentCall{ID: id, Name: name, Email: email})
	m.mu.Lock()
	defer m.mu.Unlock()
	student, ok := m.students[id]
	if !ok {
		return nil, nil
	}
	student.Name = name
	student.Email = email
	student.UpdatedAt = time.Now()
	return student, nil
}

// DeleteStudent removes a student
func (m *MockStudentWriter) DeleteStudent(ctx context.Context, id uuid.UUID) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.DeleteStudentCalls = append(m.DeleteStudentCalls, id)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.students, id)
	return nil
}

// MockDescriptorReader is a mock implementation of database.DescriptorReader
type MockDescriptorReader struct {
	mu          sync.RWMutex
	order       []uuid.UUID
	identities  map[uuid.UUID]galleryIdentity
	descriptors map[uuid.UUID][]database.StoredDescriptor
	nextID      int64

	// Canned results for FindForeignNeighbors, filtered by maxDistance
	Neighbors []database.DescriptorNeighbor

	// Error injection
	GetError           error
	CountError         error
	LoadGalleryError   error
	FindNeighborsError error
}

type galleryIdentity struct {
	Name  string
	Code  string
	Email string
}

// NewMockDescriptorReader creates a new mock descriptor reader
func NewMockDescriptorReader() *MockDescriptorReader {
	return &MockDescriptorReader{
		identities:  make(map[uuid.UUID]galleryIdentity),
		descriptors: make(map[uuid.UUID][]database.StoredDescriptor),
	}
}

// AddIdentity registers a student in the gallery, in call order
func (m *MockDescriptorReader) AddIdentity(id uuid.UUID, name, code, email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.identities[id]; !ok {
		m.order = append(m.order, id)
	}
	m.identities[id] = galleryIdentity{Name: name, Code: code, Email: email}
}

// AddDescriptors adds stored descriptors for a student
func (m *MockDescriptorReader) AddDescriptors(studentID uuid.UUID, descriptors []database.StoredDescriptor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.descriptors[studentID] = descriptors
}

// GetDescriptors retrieves all descriptors for a student
func (m *MockDescriptorReader) GetDescriptors(ctx context.Context, studentID uuid.UUID) ([]database.StoredDescriptor, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.descriptors[studentID], nil
}

// CountDescriptors returns the total number of descriptors
func (m *MockDescriptorReader) CountDescriptors(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, d := range m.descriptors {
		count += len(d)
	}
	return count, nil
}

// CountStudentsWithDescriptors returns the number of students with at least one descriptor
func (m *MockDescriptorReader) CountStudentsWithDescriptors(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, d := range m.descriptors {
		if len(d) > 0 {
			count++
		}
	}
	return count, nil
}

// LoadGallery returns all registered identities with their descriptors
func (m *MockDescriptorReader) LoadGallery(ctx context.Context) ([]facematch.Identity, error) {
	if m.LoadGalleryError != nil {
		return nil, m.LoadGalleryError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var gallery []facematch.Identity
	for _, id := range m.order {
		info := m.identities[id]
		identity := facematch.Identity{
			ID:    id.String(),
			Name:  info.Name,
			Code:  info.Code,
			Email: info.Email,
		}
		for _, d := range m.descriptors[id] {
			identity.Descriptors = append(identity.Descriptors, facematch.Descriptor(d.Vector))
		}
		gallery = append(gallery, identity)
	}
	return gallery, nil
}

// FindForeignNeighbors returns seeded neighbor pairs below maxDistance
func (m *MockDescriptorReader) FindForeignNeighbors(ctx context.Context, maxDistance float64, limit int) ([]database.DescriptorNeighbor, error) {
	if m.FindNeighborsError != nil {
		return nil, m.FindNeighborsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []database.DescriptorNeighbor
	for _, n := range m.Neighbors {
		if n.Distance >= maxDistance {
			continue
		}
		results = append(results, n)
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// MockDescriptorWriter is a mock implementation of database.DescriptorWriter
type MockDescriptorWriter struct {
	*MockDescriptorReader

	// Track calls
	AddDescriptorCalls     []AddDescriptorCall
	DeleteDescriptorCalls  []int64
	DeleteDescriptorsCalls []uuid.UUID

	// Error injection
	AddError    error
	DeleteError error
}

// AddDescriptorCall tracks an AddDescriptor call
type AddDescriptorCall struct {
	StudentID uuid.UUID
	Vector    []float32
	Source    string
}

// NewMockDescriptorWriter creates a new mock descriptor writer
func NewMockDescriptorWriter() *MockDescriptorWriter {
	return &MockDescriptorWriter{
		MockDescriptorReader: NewMockDescriptorReader(),
	}
}

// AddDescriptor stores a descriptor for a registered student
func (m *MockDescriptorWriter) AddDescriptor(ctx context.Context, studentID uuid.UUID, vector []float32, source string) (*database.StoredDescriptor, error) {
	if m.AddError != nil {
		return nil, m.AddError
	}
	m.AddDescriptorCalls = append(m.AddDescriptorCalls, AddDescriptorCall{StudentID: studentID, Vector: vector, Source: source})
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.identities[studentID]; !ok {
		return nil, fmt.Errorf("student %s not found", studentID)
	}
	if source == "" {
		source = database.SourceEnrollment
	}
	m.nextID++
	stored := database.StoredDescriptor{
		ID:        m.nextID,
		StudentID: studentID,
		Vector:    vector,
		Dim:       len(vector),
		Source:    source,
		CreatedAt: time.Now(),
	}
	m.descriptors[studentID] = append(m.descriptors[studentID], stored)
	return &stored, nil
}

// DeleteDescriptor removes a single descriptor
func (m *MockDescriptorWriter) DeleteDescriptor(ctx context.Context, studentID uuid.UUID, descriptorID int64) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.DeleteDescriptorCalls = append(m.DeleteDescriptorCalls, descriptorID)
	m.mu.Lock()
	defer m.mu.Unlock()
	var remaining []database.StoredDescriptor
	for _, d := range m.descriptors[studentID] {
		if d.ID != descriptorID {
			remaining = append(remaining, d)
		}
	}
	m.descriptors[studentID] = remaining
	return nil
}

// DeleteDescriptors removes all descriptors for a student
func (m *MockDescriptorWriter) DeleteDescriptors(ctx context.Context, studentID uuid.UUID) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.DeleteDescriptorsCalls = append(m.DeleteDescriptorsCalls, studentID)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.descriptors, studentID)
	return nil
}

// MockAttendanceReader is a mock implementation of database.AttendanceReader
type MockAttendanceReader struct {
	mu      sync.RWMutex
	records []database.AttendanceRecord

	// Error injection
	ListError  error
	CountError error
}

// NewMockAttendanceReader creates a new mock attendance reader
func NewMockAttendanceReader() *MockAttendanceReader {
	return &MockAttendanceReader{}
}

// AddRecord adds an attendance record to the mock store
func (m *MockAttendanceReader) AddRecord(record database.AttendanceRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
}

// ListAttendance returns records for a single day in insertion order
func (m *MockAttendanceReader) ListAttendance(ctx context.Context, day time.Time) ([]database.AttendanceRecord, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := day.Format(database.DayFormat)
	var result []database.AttendanceRecord
	for _, r := range m.records {
		if r.Day.Format(database.DayFormat) == key {
			result = append(result, r)
		}
	}
	return result, nil
}

// ListAttendanceRange returns records between from and to, inclusive
func (m *MockAttendanceReader) ListAttendanceRange(ctx context.Context, from, to time.Time) ([]database.AttendanceRecord, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	fromKey := from.Format(database.DayFormat)
	toKey := to.Format(database.DayFormat)
	var result []database.AttendanceRecord
	for _, r := range m.records {
		key := r.Day.Format(database.DayFormat)
		if key >= fromKey && key <= toKey {
			result = append(result, r)
		}
	}
	return result, nil
}

// CountAttendance returns the number of records for a day
func (m *MockAttendanceReader) CountAttendance(ctx context.Context, day time.Time) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	records, err := m.ListAttendance(ctx, day)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// CountAttendanceDays returns the number of distinct days with records
func (m *MockAttendanceReader) CountAttendanceDays(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	days := make(map[string]struct{})
	for _, r := range m.records {
		days[r.Day.Format(database.DayFormat)] = struct{}{}
	}
	return len(days), nil
}

// MockAttendanceWriter is a mock implementation of database.AttendanceWriter
type MockAttendanceWriter struct {
	*MockAttendanceReader

	recordCounter int64

	// Track calls
	MarkAttendanceCalls []MarkAttendanceCall

	// Error injection
	MarkError error
}

// MarkAttendanceCall tracks a MarkAttendance call
type MarkAttendanceCall struct {
	StudentID  uuid.UUID
	Day        time.Time
	Distance   float64
	Confidence float64
	Source     string
}

// NewMockAttendanceWriter creates a new mock attendance writer
func NewMockAttendanceWriter() *MockAttendanceWriter {
	return &MockAttendanceWriter{
		MockAttendanceReader: NewMockAttendanceReader(),
	}
}

// MarkAttendance records attendance once per student per day
func (m *MockAttendanceWriter) MarkAttendance(ctx context.Context, studentID uuid.UUID, day time.Time, distance, confidence float64, source string) (bool, error) {
	if m.MarkError != nil {
		return false, m.MarkError
	}
	m.MarkAttendanceCalls = append(m.MarkAttendanceCalls, MarkAttendanceCall{
		StudentID:  studentID,
		Day:        day,
		Distance:   distance,
		Confidence: confidence,
		Source:     source,
	})
	m.mu.Lock()
	defer m.mu.Unlock()

	key := day.Format(database.DayFormat)
	for _, r := range m.records {
		if r.StudentID == studentID && r.Day.Format(database.DayFormat) == key {
			return false, nil
		}
	}
	if source == "" {
		source = database.AttendanceSourceRecognition
	}
	m.recordCounter++
	m.records = append(m.records, database.AttendanceRecord{
		ID:         m.recordCounter,
		StudentID:  studentID,
		Day:        day,
		MarkedAt:   time.Now(),
		Distance:   distance,
		Confidence: confidence,
		Source:     source,
	})
	return true, nil
}

// Verify interface compliance
var _ database.StudentReader = (*MockStudentReader)(nil)
var _ database.StudentWriter = (*MockStudentWriter)(nil)
var _ database.DescriptorReader = (*MockDescriptorReader)(nil)
var _ database.DescriptorWriter = (*MockDescriptorWriter)(nil)
var _ database.AttendanceReader = (*MockAttendanceReader)(nil)
var _ database.AttendanceWriter = (*MockAttendanceWriter)(nil)
