//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jaydudhale/Attendance-system-Backend/internal/config"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	cfg := &config.DatabaseConfig{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	// Run migrations
	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

// testDescriptor builds a 128-dim vector with a constant offset so different
// offsets produce vectors at a known distance from each other.
func testDescriptor(offset float32) []float32 {
	vec := make([]float32, 128)
	for i := range vec {
		vec[i] = float32(i)/128.0 + offset
	}
	return vec
}

func TestStudentRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewStudentRepository(pool)

	var created uuid.UUID

	t.Run("CreateAndGet", func(t *testing.T) {
		student, err := repo.CreateStudent(ctx, "Jan Novak", "CS101", "jan@example.edu")
		if err != nil {
			t.Fatalf("Failed to create student: %v", err)
		}
		if student.ID == uuid.Nil {
			t.Fatal("Expected generated ID, got nil UUID")
		}
		created = student.ID

		got, err := repo.GetStudent(ctx, created)
		if err != nil {
			t.Fatalf("Failed to get student: %v", err)
		}
		if got == nil {
			t.Fatal("Expected student, got nil")
		}
		if got.Name != "Jan Novak" {
			t.Errorf("Expected name 'Jan Novak', got '%s'", got.Name)
		}
		if got.RollNo != "CS101" {
			t.Errorf("Expected roll number 'CS101', got '%s'", got.RollNo)
		}
		if got.DescriptorCount != 0 {
			t.Errorf("Expected 0 descriptors, got %d", got.DescriptorCount)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		got, err := repo.GetStudent(ctx, uuid.New())
		if err != nil {
			t.Fatalf("Failed to get student: %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil for missing student, got %+v", got)
		}
	})

	t.Run("GetByRollNoCaseInsensitive", func(t *testing.T) {
		got, err := repo.GetStudentByRollNo(ctx, "cs101")
		if err != nil {
			t.Fatalf("Failed to get student by roll number: %v", err)
		}
		if got == nil || got.ID != created {
			t.Errorf("Expected CS101 student, got %+v", got)
		}
	})

	t.Run("ListOrderedByRollNo", func(t *testing.T) {
		if _, err := repo.CreateStudent(ctx, "Ada Lovelace", "CS001", "ada@example.edu"); err != nil {
			t.Fatalf("Failed to create student: %v", err)
		}

		students, err := repo.ListStudents(ctx)
		if err != nil {
			t.Fatalf("Failed to list students: %v", err)
		}
		if len(students) != 2 {
			t.Fatalf("Expected 2 students, got %d", len(students))
		}
		if students[0].RollNo != "CS001" || students[1].RollNo != "CS101" {
			t.Errorf("Expected roll number order CS001, CS101; got %s, %s", students[0].RollNo, students[1].RollNo)
		}
	})

	t.Run("Update", func(t *testing.T) {
		updated, err := repo.UpdateStudent(ctx, created, "Jan Dvorak", "dvorak@example.edu")
		if err != nil {
			t.Fatalf("Failed to update student: %v", err)
		}
		if updated == nil {
			t.Fatal("Expected updated student, got nil")
		}
		if updated.Name != "Jan Dvorak" || updated.Email != "dvorak@example.edu" {
			t.Errorf("Update not reflected: %+v", updated)
		}

		missing, err := repo.UpdateStudent(ctx, uuid.New(), "Nobody", "")
		if err != nil {
			t.Fatalf("Failed to update missing student: %v", err)
		}
		if missing != nil {
			t.Errorf("Expected nil for missing student, got %+v", missing)
		}
	})

	t.Run("Count", func(t *testing.T) {
		count, err := repo.CountStudents(ctx)
		if err != nil {
			t.Fatalf("Failed to count students: %v", err)
		}
		if count != 2 {
			t.Errorf("Expected 2, got %d", count)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.DeleteStudent(ctx, created); err != nil {
			t.Fatalf("Failed to delete student: %v", err)
		}

		got, err := repo.GetStudent(ctx, created)
		if err != nil {
			t.Fatalf("Failed to get student: %v", err)
		}
		if got != nil {
			t.Error("Expected student to be gone after delete")
		}
	})
}

func TestDescriptorRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	students := NewStudentRepository(pool)
	repo := NewDescriptorRepository(pool)

	alice, err := students.CreateStudent(ctx, "Alice Novak", "CS201", "alice@example.edu")
	if err != nil {
		t.Fatalf("Failed to create student: %v", err)
	}
	bob, err := students.CreateStudent(ctx, "Bob Smith", "CS202", "")
	if err != nil {
		t.Fatalf("Failed to create student: %v", err)
	}

	t.Run("AddAndGet", func(t *testing.T) {
		stored, err := repo.AddDescriptor(ctx, alice.ID, testDescriptor(0), "")
		if err != nil {
			t.Fatalf("Failed to add descriptor: %v", err)
		}
		if stored.Dim != 128 {
			t.Errorf("Expected dim 128, got %d", stored.Dim)
		}
		if stored.Source != "enrollment" {
			t.Errorf("Expected default source 'enrollment', got '%s'", stored.Source)
		}

		if _, err := repo.AddDescriptor(ctx, alice.ID, testDescriptor(0.001), "import"); err != nil {
			t.Fatalf("Failed to add second descriptor: %v", err)
		}

		got, err := repo.GetDescriptors(ctx, alice.ID)
		if err != nil {
			t.Fatalf("Failed to get descriptors: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Expected 2 descriptors, got %d", len(got))
		}
		if len(got[0].Vector) != 128 {
			t.Errorf("Expected 128 values, got %d", len(got[0].Vector))
		}
		if got[1].Source != "import" {
			t.Errorf("Expected source 'import', got '%s'", got[1].Source)
		}
	})

	t.Run("AddForMissingStudent", func(t *testing.T) {
		_, err := repo.AddDescriptor(ctx, uuid.New(), testDescriptor(0), "")
		if err == nil {
			t.Error("Expected error for missing student, got nil")
		}
	})

	t.Run("AddEmptyVector", func(t *testing.T) {
		_, err := repo.AddDescriptor(ctx, alice.ID, nil, "")
		if err == nil {
			t.Error("Expected error for empty vector, got nil")
		}
	})

	t.Run("Counts", func(t *testing.T) {
		count, err := repo.CountDescriptors(ctx)
		if err != nil {
			t.Fatalf("Failed to count descriptors: %v", err)
		}
		if count != 2 {
			t.Errorf("Expected 2 descriptors, got %d", count)
		}

		enrolled, err := repo.CountStudentsWithDescriptors(ctx)
		if err != nil {
			t.Fatalf("Failed to count students with descriptors: %v", err)
		}
		if enrolled != 1 {
			t.Errorf("Expected 1 student with descriptors, got %d", enrolled)
		}
	})

	t.Run("LoadGallery", func(t *testing.T) {
		gallery, err := repo.LoadGallery(ctx)
		if err != nil {
			t.Fatalf("Failed to load gallery: %v", err)
		}
		if len(gallery) != 2 {
			t.Fatalf("Expected 2 identities, got %d", len(gallery))
		}

		// Ordered by roll number; Bob has no samples but still appears.
		if gallery[0].Code != "CS201" || gallery[1].Code != "CS202" {
			t.Errorf("Expected gallery order CS201, CS202; got %s, %s", gallery[0].Code, gallery[1].Code)
		}
		if len(gallery[0].Descriptors) != 2 {
			t.Errorf("Expected 2 descriptors for CS201, got %d", len(gallery[0].Descriptors))
		}
		if len(gallery[1].Descriptors) != 0 {
			t.Errorf("Expected no descriptors for CS202, got %d", len(gallery[1].Descriptors))
		}
		if gallery[0].Name != "Alice Novak" {
			t.Errorf("Expected name 'Alice Novak', got '%s'", gallery[0].Name)
		}
	})

	t.Run("FindForeignNeighbors", func(t *testing.T) {
		// Bob's first sample sits within 0.2 of Alice's, the second far away.
		if _, err := repo.AddDescriptor(ctx, bob.ID, testDescriptor(0.01), ""); err != nil {
			t.Fatalf("Failed to add descriptor: %v", err)
		}
		if _, err := repo.AddDescriptor(ctx, bob.ID, testDescriptor(5), ""); err != nil {
			t.Fatalf("Failed to add descriptor: %v", err)
		}

		neighbors, err := repo.FindForeignNeighbors(ctx, 0.5, 10)
		if err != nil {
			t.Fatalf("Failed to find foreign neighbors: %v", err)
		}
		if len(neighbors) != 2 {
			t.Fatalf("Expected 2 close pairs, got %d", len(neighbors))
		}
		for _, n := range neighbors {
			if n.StudentID == n.OtherStudentID {
				t.Errorf("Pair within one student reported: %+v", n)
			}
			if n.Distance <= 0 || n.Distance >= 0.5 {
				t.Errorf("Distance out of range: %f", n.Distance)
			}
		}
		if neighbors[0].Distance > neighbors[1].Distance {
			t.Error("Neighbors not sorted by distance")
		}
	})

	t.Run("MixedDimensionsExcluded", func(t *testing.T) {
		short := make([]float32, 64)
		for i := range short {
			short[i] = float32(i) / 64.0
		}
		if _, err := repo.AddDescriptor(ctx, alice.ID, short, ""); err != nil {
			t.Fatalf("Failed to add 64-dim descriptor: %v", err)
		}

		// The 64-dim sample must never pair with 128-dim samples.
		neighbors, err := repo.FindForeignNeighbors(ctx, 10, 100)
		if err != nil {
			t.Fatalf("Failed to find foreign neighbors: %v", err)
		}
		for _, n := range neighbors {
			if n.DescriptorID == 0 || n.OtherDescriptorID == 0 {
				t.Errorf("Neighbor with zero descriptor ID: %+v", n)
			}
		}
	})

	t.Run("DeleteOne", func(t *testing.T) {
		descriptors, err := repo.GetDescriptors(ctx, alice.ID)
		if err != nil {
			t.Fatalf("Failed to get descriptors: %v", err)
		}

		if err := repo.DeleteDescriptor(ctx, alice.ID, descriptors[0].ID); err != nil {
			t.Fatalf("Failed to delete descriptor: %v", err)
		}

		remaining, err := repo.GetDescriptors(ctx, alice.ID)
		if err != nil {
			t.Fatalf("Failed to get descriptors: %v", err)
		}
		if len(remaining) != len(descriptors)-1 {
			t.Errorf("Expected %d descriptors, got %d", len(descriptors)-1, len(remaining))
		}

		// Deleting again is a no-op.
		if err := repo.DeleteDescriptor(ctx, alice.ID, descriptors[0].ID); err != nil {
			t.Errorf("Expected no-op delete, got error: %v", err)
		}
	})

	t.Run("DeleteAll", func(t *testing.T) {
		if err := repo.DeleteDescriptors(ctx, alice.ID); err != nil {
			t.Fatalf("Failed to delete descriptors: %v", err)
		}

		got, err := repo.GetDescriptors(ctx, alice.ID)
		if err != nil {
			t.Fatalf("Failed to get descriptors: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Expected no descriptors, got %d", len(got))
		}
	})

	t.Run("CascadeOnStudentDelete", func(t *testing.T) {
		if err := students.DeleteStudent(ctx, bob.ID); err != nil {
			t.Fatalf("Failed to delete student: %v", err)
		}

		// Alice's samples were already removed above, so Bob's cascade
		// leaves the table empty.
		count, err := repo.CountDescriptors(ctx)
		if err != nil {
			t.Fatalf("Failed to count descriptors: %v", err)
		}
		if count != 0 {
			t.Errorf("Expected 0 descriptors after cascade, got %d", count)
		}
	})
}

func TestAttendanceRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	students := NewStudentRepository(pool)
	repo := NewAttendanceRepository(pool)

	alice, err := students.CreateStudent(ctx, "Alice Novak", "CS301", "")
	if err != nil {
		t.Fatalf("Failed to create student: %v", err)
	}
	bob, err := students.CreateStudent(ctx, "Bob Smith", "CS302", "")
	if err != nil {
		t.Fatalf("Failed to create student: %v", err)
	}

	day1 := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)

	t.Run("MarkOncePerDay", func(t *testing.T) {
		created, err := repo.MarkAttendance(ctx, alice.ID, day1, 0.21, 0.79, "")
		if err != nil {
			t.Fatalf("Failed to mark attendance: %v", err)
		}
		if !created {
			t.Error("Expected first mark to create a record")
		}

		again, err := repo.MarkAttendance(ctx, alice.ID, day1, 0.15, 0.85, "")
		if err != nil {
			t.Fatalf("Failed to mark attendance twice: %v", err)
		}
		if again {
			t.Error("Expected second mark on the same day to be a no-op")
		}

		count, err := repo.CountAttendance(ctx, day1)
		if err != nil {
			t.Fatalf("Failed to count attendance: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected 1 record, got %d", count)
		}
	})

	t.Run("FirstRecordKept", func(t *testing.T) {
		records, err := repo.ListAttendance(ctx, day1)
		if err != nil {
			t.Fatalf("Failed to list attendance: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("Expected 1 record, got %d", len(records))
		}
		if records[0].Distance != 0.21 {
			t.Errorf("Expected first-mark distance 0.21, got %f", records[0].Distance)
		}
		if records[0].Source != "recognition" {
			t.Errorf("Expected default source 'recognition', got '%s'", records[0].Source)
		}
		if records[0].RollNo != "CS301" {
			t.Errorf("Expected roll number CS301, got '%s'", records[0].RollNo)
		}
	})

	t.Run("MarkMissingStudent", func(t *testing.T) {
		_, err := repo.MarkAttendance(ctx, uuid.New(), day1, 0.3, 0.7, "")
		if err == nil {
			t.Error("Expected error for missing student, got nil")
		}
	})

	t.Run("Range", func(t *testing.T) {
		if _, err := repo.MarkAttendance(ctx, bob.ID, day1, 0.3, 0.7, "manual"); err != nil {
			t.Fatalf("Failed to mark attendance: %v", err)
		}
		if _, err := repo.MarkAttendance(ctx, alice.ID, day2, 0.25, 0.75, ""); err != nil {
			t.Fatalf("Failed to mark attendance: %v", err)
		}

		records, err := repo.ListAttendanceRange(ctx, day1, day2)
		if err != nil {
			t.Fatalf("Failed to list attendance range: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("Expected 3 records, got %d", len(records))
		}
		if !records[0].Day.Before(records[2].Day) {
			t.Error("Expected records ordered by day")
		}

		days, err := repo.CountAttendanceDays(ctx)
		if err != nil {
			t.Fatalf("Failed to count attendance days: %v", err)
		}
		if days != 2 {
			t.Errorf("Expected 2 distinct days, got %d", days)
		}
	})
}

func TestMigrations(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()

	// Check migrations were applied
	applied, err := pool.MigrationsApplied(ctx)
	if err != nil {
		t.Fatalf("Failed to get applied migrations: %v", err)
	}

	expectedMigrations := []string{
		"001_students.sql",
		"002_descriptors.sql",
		"003_attendance.sql",
	}

	if len(applied) != len(expectedMigrations) {
		t.Errorf("Expected %d migrations, got %d", len(expectedMigrations), len(applied))
	}

	for i, expected := range expectedMigrations {
		if i < len(applied) && applied[i] != expected {
			t.Errorf("Migration %d: expected '%s', got '%s'", i, expected, applied[i])
		}
	}
}
