package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DayFormat is the canonical date layout for attendance days.
const DayFormat = "2006-01-02"

// Student represents a locally enrolled student
type Student struct {
	ID              uuid.UUID
	Name            string
	RollNo          string
	Email           string
	DescriptorCount int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DisplayLabel returns the student's name with roll number for CLI output and logs.
func (s Student) DisplayLabel() string {
	if s.RollNo == "" {
		return s.Name
	}
	return fmt.Sprintf("%s (%s)", s.Name, s.RollNo)
}

// StoredDescriptor represents one face descriptor stored for a student
type StoredDescriptor struct {
	ID        int64
	StudentID uuid.UUID
	Vector    []float32
	Dim       int
	Source    string // where the sample came from (enrollment, import)
	CreatedAt time.Time
}

// AttendanceRecord represents one student marked present on one day
type AttendanceRecord struct {
	ID          int64
	StudentID   uuid.UUID
	StudentName string
	RollNo      string
	Day         time.Time // date only
	MarkedAt    time.Time
	Distance    float64
	Confidence  float64
	Source      string // recognition or manual
}

// DescriptorNeighbor pairs two stored descriptors that belong to different
// students yet sit close together. Such pairs usually mean a sample was
// enrolled under the wrong student.
type DescriptorNeighbor struct {
	DescriptorID      int64
	StudentID         uuid.UUID
	StudentName       string
	RollNo            string
	OtherDescriptorID int64
	OtherStudentID    uuid.UUID
	OtherStudentName  string
	OtherRollNo       string
	Distance          float64
}

