package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jaydudhale/Attendance-system-Backend/internal/database"
)

// AttendanceRepository provides PostgreSQL-backed attendance storage.
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new PostgreSQL attendance repository.
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// attendanceColumns is the column list every attendance query selects.
const attendanceColumns = `
	a.id, a.student_id, s.name, s.roll_no, a.day, a.marked_at, a.distance, a.confidence, a.source
`

// scanAttendanceRows collects attendance records in attendanceColumns order.
func scanAttendanceRows(rows *sql.Rows) ([]database.AttendanceRecord, error) {
	var records []database.AttendanceRecord
	for rows.Next() {
		var rec database.AttendanceRecord
		err := rows.Scan(
			&rec.ID, &rec.StudentID, &rec.StudentName, &rec.RollNo,
			&rec.Day, &rec.MarkedAt, &rec.Distance, &rec.Confidence, &rec.Source,
		)
		if err != nil {
			return nil, fmt.Errorf("scan attendance row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance rows: %w", err)
	}

	return records, nil
}

// MarkAttendance records a student present on a day. The unique constraint
// keeps the earliest record; marking again reports false without touching
// the stored row. Days travel as date strings to avoid timezone drift on
// the DATE column.
func (r *AttendanceRepository) MarkAttendance(
	ctx context.Context, studentID uuid.UUID, day time.Time, distance, confidence float64, source string,
) (bool, error) {
	if source == "" {
		source = database.AttendanceSourceRecognition
	}

	// Verify the student exists first for a readable error instead of a
	// foreign key violation.
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)", studentID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check student exists: %w", err)
	}
	if !exists {
		return false, fmt.Errorf("student %s not found", studentID)
	}

	query := `
		INSERT INTO attendance (student_id, day, distance, confidence, source)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (student_id, day) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query, studentID, day.Format(database.DayFormat), distance, confidence, source)
	if err != nil {
		return false, fmt.Errorf("mark attendance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read affected rows: %w", err)
	}

	return affected > 0, nil
}

// ListAttendance returns records of a single day ordered by marked time.
func (r *AttendanceRepository) ListAttendance(ctx context.Context, day time.Time) ([]database.AttendanceRecord, error) {
	query := "SELECT" + attendanceColumns + `
		FROM attendance a
		JOIN students s ON s.id = a.student_id
		WHERE a.day = $1
		ORDER BY a.marked_at, a.id
	`

	rows, err := r.pool.Query(ctx, query, day.Format(database.DayFormat))
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	defer rows.Close()

	return scanAttendanceRows(rows)
}

// ListAttendanceRange returns records between from and to inclusive,
// ordered by day and marked time.
func (r *AttendanceRepository) ListAttendanceRange(ctx context.Context, from, to time.Time) ([]database.AttendanceRecord, error) {
	query := "SELECT" + attendanceColumns + `
		FROM attendance a
		JOIN students s ON s.id = a.student_id
		WHERE a.day BETWEEN $1 AND $2
		ORDER BY a.day, a.marked_at, a.id
	`

	rows, err := r.pool.Query(ctx, query, from.Format(database.DayFormat), to.Format(database.DayFormat))
	if err != nil {
		return nil, fmt.Errorf("query attendance range: %w", err)
	}
	defer rows.Close()

	return scanAttendanceRows(rows)
}

// CountAttendance returns the number of records for a single day.
func (r *AttendanceRepository) CountAttendance(ctx context.Context, day time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(
		ctx, "SELECT COUNT(*) FROM attendance WHERE day = $1", day.Format(database.DayFormat),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count attendance: %w", err)
	}
	return count, nil
}

// CountAttendanceDays returns the number of distinct days with records.
func (r *AttendanceRepository) CountAttendanceDays(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(DISTINCT day) FROM attendance").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count attendance days: %w", err)
	}
	return count, nil
}

// Verify interface compliance.
var _ database.AttendanceReader = (*AttendanceRepository)(nil)
var _ database.AttendanceWriter = (*AttendanceRepository)(nil)
