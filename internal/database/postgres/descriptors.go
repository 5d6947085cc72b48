package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/jaydudhale/Attendance-system-Backend/internal/database"
	"github.com/jaydudhale/Attendance-system-Backend/internal/facematch"
)

// DescriptorRepository provides PostgreSQL-backed face descriptor storage.
type DescriptorRepository struct {
	pool *Pool
}

// NewDescriptorRepository creates a new PostgreSQL descriptor repository.
func NewDescriptorRepository(pool *Pool) *DescriptorRepository {
	return &DescriptorRepository{pool: pool}
}

// GetDescriptors retrieves all descriptors of a student, oldest first.
func (r *DescriptorRepository) GetDescriptors(ctx context.Context, studentID uuid.UUID) ([]database.StoredDescriptor, error) {
	query := `
		SELECT id, student_id, vector, dim, source, created_at
		FROM descriptors
		WHERE student_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("query descriptors: %w", err)
	}
	defer rows.Close()

	var descriptors []database.StoredDescriptor
	for rows.Next() {
		var (
			d   database.StoredDescriptor
			vec pgvector.Vector
		)
		if err := rows.Scan(&d.ID, &d.StudentID, &vec, &d.Dim, &d.Source, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan descriptor row: %w", err)
		}
		d.Vector = vec.Slice()
		descriptors = append(descriptors, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate descriptors: %w", err)
	}

	return descriptors, nil
}

// CountDescriptors returns the total number of descriptors stored.
func (r *DescriptorRepository) CountDescriptors(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM descriptors").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count descriptors: %w", err)
	}
	return count, nil
}

// CountStudentsWithDescriptors returns the number of students holding at
// least one descriptor.
func (r *DescriptorRepository) CountStudentsWithDescriptors(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(DISTINCT student_id) FROM descriptors").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count students with descriptors: %w", err)
	}
	return count, nil
}

// AddDescriptor stores one descriptor sample for a student.
func (r *DescriptorRepository) AddDescriptor(
	ctx context.Context, studentID uuid.UUID, vector []float32, source string,
) (*database.StoredDescriptor, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("descriptor vector must not be empty")
	}
	if source == "" {
		source = database.SourceEnrollment
	}

	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Verify the student exists first for a readable error instead of a
	// foreign key violation.
	var exists bool
	err = tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)", studentID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check student exists: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("student %s not found", studentID)
	}

	var count int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM descriptors WHERE student_id = $1", studentID).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("count existing descriptors: %w", err)
	}
	if count >= database.MaxDescriptorsPerStudent {
		return nil, fmt.Errorf("student %s already has %d descriptors (limit %d)",
			studentID, count, database.MaxDescriptorsPerStudent)
	}

	descriptor := database.StoredDescriptor{
		StudentID: studentID,
		Vector:    vector,
		Dim:       len(vector),
		Source:    source,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO descriptors (student_id, vector, dim, source)
		VALUES ($1, $2::vector, $3, $4)
		RETURNING id, created_at
	`, studentID, pgvector.NewVector(vector), len(vector), source).Scan(&descriptor.ID, &descriptor.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert descriptor: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &descriptor, nil
}

// DeleteDescriptor removes a single descriptor owned by the student.
// Deleting a descriptor that does not exist is a no-op.
func (r *DescriptorRepository) DeleteDescriptor(ctx context.Context, studentID uuid.UUID, descriptorID int64) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM descriptors WHERE id = $1 AND student_id = $2", descriptorID, studentID)
	if err != nil {
		return fmt.Errorf("delete descriptor: %w", err)
	}
	return nil
}

// DeleteDescriptors removes all descriptors of a student.
func (r *DescriptorRepository) DeleteDescriptors(ctx context.Context, studentID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM descriptors WHERE student_id = $1", studentID); err != nil {
		return fmt.Errorf("delete descriptors: %w", err)
	}
	return nil
}

// LoadGallery returns every student with their descriptors as matcher
// identities, ordered by roll number and sample age. Students without
// stored descriptors appear with an empty descriptor list.
func (r *DescriptorRepository) LoadGallery(ctx context.Context) ([]facematch.Identity, error) {
	query := `
		SELECT s.id, s.name, s.roll_no, s.email, d.vector
		FROM students s
		LEFT JOIN descriptors d ON d.student_id = s.id
		ORDER BY s.roll_no, s.id, d.id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query gallery: %w", err)
	}
	defer rows.Close()

	var (
		identities []facematch.Identity
		current    *facematch.Identity
	)

	for rows.Next() {
		var (
			id     uuid.UUID
			name   string
			rollNo string
			email  string
			raw    sql.NullString
		)
		if err := rows.Scan(&id, &name, &rollNo, &email, &raw); err != nil {
			return nil, fmt.Errorf("scan gallery row: %w", err)
		}

		// Rows for one student are contiguous thanks to the ORDER BY.
		if current == nil || current.ID != id.String() {
			identities = append(identities, facematch.Identity{
				ID:    id.String(),
				Name:  name,
				Code:  rollNo,
				Email: email,
			})
			current = &identities[len(identities)-1]
		}

		if raw.Valid {
			var vec pgvector.Vector
			if err := vec.Scan(raw.String); err != nil {
				return nil, fmt.Errorf("parse descriptor vector: %w", err)
			}
			current.Descriptors = append(current.Descriptors, facematch.Descriptor(vec.Slice()))
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gallery rows: %w", err)
	}

	return identities, nil
}

// FindForeignNeighbors returns pairs of descriptors belonging to different
// students closer than maxDistance, nearest pairs first. Only vectors of
// equal dimension are compared, and each pair is reported once.
func (r *DescriptorRepository) FindForeignNeighbors(
	ctx context.Context, maxDistance float64, limit int,
) ([]database.DescriptorNeighbor, error) {
	query := `
		SELECT a.id, a.student_id, sa.name, sa.roll_no,
		       b.id, b.student_id, sb.name, sb.roll_no,
		       a.vector <-> b.vector AS distance
		FROM descriptors a
		JOIN descriptors b ON a.id < b.id AND a.student_id <> b.student_id AND a.dim = b.dim
		JOIN students sa ON sa.id = a.student_id
		JOIN students sb ON sb.id = b.student_id
		WHERE a.vector <-> b.vector < $1
		ORDER BY distance
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, maxDistance, limit)
	if err != nil {
		return nil, fmt.Errorf("query foreign neighbors: %w", err)
	}
	defer rows.Close()

	var neighbors []database.DescriptorNeighbor
	for rows.Next() {
		var n database.DescriptorNeighbor
		err := rows.Scan(
			&n.DescriptorID, &n.StudentID, &n.StudentName, &n.RollNo,
			&n.OtherDescriptorID, &n.OtherStudentID, &n.OtherStudentName, &n.OtherRollNo,
			&n.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("scan neighbor row: %w", err)
		}
		neighbors = append(neighbors, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate neighbor rows: %w", err)
	}

	return neighbors, nil
}

// Verify interface compliance.
var _ database.DescriptorReader = (*DescriptorRepository)(nil)
var _ database.DescriptorWriter = (*DescriptorRepository)(nil)
