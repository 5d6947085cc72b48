package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jaydudhale/Attendance-system-Backend/internal/database"
)

// StudentRepository provides PostgreSQL-backed student storage.
type StudentRepository struct {
	pool *Pool
}

// NewStudentRepository creates a new PostgreSQL student repository.
func NewStudentRepository(pool *Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// studentColumns is the column list every student query selects, including
// the per-student descriptor count.
const studentColumns = `
	s.id, s.name, s.roll_no, s.email, s.created_at, s.updated_at,
	(SELECT COUNT(*) FROM descriptors d WHERE d.student_id = s.id) AS descriptor_count
`

// scanStudent scans one row in studentColumns order.
func scanStudent(scanner interface{ Scan(...any) error }) (database.Student, error) {
	var s database.Student
	err := scanner.Scan(&s.ID, &s.Name, &s.RollNo, &s.Email, &s.CreatedAt, &s.UpdatedAt, &s.DescriptorCount)
	if err != nil {
		return database.Student{}, err
	}
	return s, nil
}

// GetStudent retrieves a student by ID, returns nil if not found.
func (r *StudentRepository) GetStudent(ctx context.Context, id uuid.UUID) (*database.Student, error) {
	row := r.pool.QueryRow(ctx, "SELECT"+studentColumns+"FROM students s WHERE s.id = $1", id)

	student, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query student: %w", err)
	}
	return &student, nil
}

// GetStudentByRollNo retrieves a student by roll number, returns nil if not found.
// Roll numbers are compared case-insensitively to match roster reconciliation.
func (r *StudentRepository) GetStudentByRollNo(ctx context.Context, rollNo string) (*database.Student, error) {
	row := r.pool.QueryRow(
		ctx, "SELECT"+studentColumns+"FROM students s WHERE UPPER(s.roll_no) = UPPER($1)", rollNo,
	)

	student, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query student by roll number: %w", err)
	}
	return &student, nil
}

// ListStudents returns all students ordered by roll number.
func (r *StudentRepository) ListStudents(ctx context.Context) ([]database.Student, error) {
	rows, err := r.pool.Query(ctx, "SELECT"+studentColumns+"FROM students s ORDER BY s.roll_no")
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var students []database.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}

	return students, nil
}

// CountStudents returns the total number of enrolled students.
func (r *StudentRepository) CountStudents(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM students").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}

// CreateStudent inserts a new student and returns it with the generated ID.
func (r *StudentRepository) CreateStudent(ctx context.Context, name, rollNo, email string) (*database.Student, error) {
	student := database.Student{
		Name:   name,
		RollNo: rollNo,
		Email:  email,
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO students (name, roll_no, email)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, name, rollNo, email).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert student: %w", err)
	}

	return &student, nil
}

// UpdateStudent updates name and email of an existing student.
// Returns nil if the student does not exist.
func (r *StudentRepository) UpdateStudent(ctx context.Context, id uuid.UUID, name, email string) (*database.Student, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE students SET
			name = $1,
			email = $2,
			updated_at = NOW()
		WHERE id = $3
		RETURNING id, name, roll_no, email, created_at, updated_at,
		          (SELECT COUNT(*) FROM descriptors d WHERE d.student_id = students.id)
	`, name, email, id)

	student, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update student: %w", err)
	}
	return &student, nil
}

// DeleteStudent removes a student; descriptors and attendance records go
// with it through ON DELETE CASCADE. Deleting a missing student is a no-op.
func (r *StudentRepository) DeleteStudent(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM students WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// Verify interface compliance.
var _ database.StudentReader = (*StudentRepository)(nil)
var _ database.StudentWriter = (*StudentRepository)(nil)
