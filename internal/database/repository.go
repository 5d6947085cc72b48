package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jaydudhale/Attendance-system-Backend/internal/facematch"
)

// StudentReader provides read-only access to enrolled students
type StudentReader interface {
	// GetStudent retrieves a student by ID, returns nil if not found
	GetStudent(ctx context.Context, id uuid.UUID) (*Student, error)
	// GetStudentByRollNo retrieves a student by roll number, returns nil if not found
	GetStudentByRollNo(ctx context.Context, rollNo string) (*Student, error)
	// ListStudents returns all students ordered by roll number
	ListStudents(ctx context.Context) ([]Student, error)
	// CountStudents returns the total number of enrolled students
	CountStudents(ctx context.Context) (int, error)
}

// StudentWriter provides write access to enrolled students
type StudentWriter interface {
	StudentReader

	// CreateStudent inserts a new student and returns it with the generated ID
	CreateStudent(ctx context.Context, name, rollNo, email string) (*Student, error)
	// UpdateStudent updates name and email of an existing student.
	// Returns nil if the student does not exist.
	UpdateStudent(ctx context.Context, id uuid.UUID, name, email string) (*Student, error)
	// DeleteStudent removes a student together with descriptors and attendance records
	DeleteStudent(ctx context.Context, id uuid.UUID) error
}

// DescriptorReader provides read-only access to stored face descriptors
type DescriptorReader interface {
	// GetDescriptors retrieves all descriptors of a student, oldest first
	GetDescriptors(ctx context.Context, studentID uuid.UUID) ([]StoredDescriptor, error)
	// CountDescriptors returns the total number of descriptors stored
	CountDescriptors(ctx context.Context) (int, error)
	// CountStudentsWithDescriptors returns the number of students holding
	// at least one descriptor
	CountStudentsWithDescriptors(ctx context.Context) (int, error)
	// LoadGallery returns every student with their descriptors as matcher
	// identities, ordered by roll number and sample age. Students without
	// stored descriptors appear with an empty descriptor list and can
	// therefore never match.
	LoadGallery(ctx context.Context) ([]facematch.Identity, error)
	// FindForeignNeighbors returns pairs of descriptors belonging to
	// different students closer than maxDistance, nearest pairs first
	FindForeignNeighbors(ctx context.Context, maxDistance float64, limit int) ([]DescriptorNeighbor, error)
}

// DescriptorWriter provides write access to stored face descriptors
type DescriptorWriter interface {
	DescriptorReader

	// AddDescriptor stores one descriptor sample for a student
	AddDescriptor(ctx context.Context, studentID uuid.UUID, vector []float32, source string) (*StoredDescriptor, error)
	// DeleteDescriptor removes a single descriptor owned by the student
	DeleteDescriptor(ctx context.Context, studentID uuid.UUID, descriptorID int64) error
	// DeleteDescriptors removes all descriptors of a student
	DeleteDescriptors(ctx context.Context, studentID uuid.UUID) error
}

// AttendanceReader provides read-only access to attendance records
type AttendanceReader interface {
	// ListAttendance returns records of a single day ordered by marked time
	ListAttendance(ctx context.Context, day time.Time) ([]AttendanceRecord, error)
	// ListAttendanceRange returns records between from and to inclusive,
	// ordered by day and marked time
	ListAttendanceRange(ctx context.Context, from, to time.Time) ([]AttendanceRecord, error)
	// CountAttendance returns the number of records for a single day
	CountAttendance(ctx context.Context, day time.Time) (int, error)
	// CountAttendanceDays returns the number of distinct days with records
	CountAttendanceDays(ctx context.Context) (int, error)
}

// AttendanceWriter provides write access to attendance records
type AttendanceWriter interface {
	AttendanceReader

	// MarkAttendance records a student present on a day. Marking the same
	// student twice on one day keeps the earlier record and reports false.
	MarkAttendance(ctx context.Context, studentID uuid.UUID, day time.Time, distance, confidence float64, source string) (bool, error)
}
