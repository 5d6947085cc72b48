package cmd

import (
	"errors"
	"fmt"

	"github.com/jaydudhale/Attendance-system-Backend/internal/config"
	"github.com/jaydudhale/Attendance-system-Backend/internal/database"
	"github.com/jaydudhale/Attendance-system-Backend/internal/database/postgres"
)

// initBackend connects to PostgreSQL, runs pending migrations and registers
// the repositories with the database package. Every command that touches
// the local database goes through here.
func initBackend(cfg *config.Config) (*postgres.Pool, error) {
	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}
	if err := postgres.Initialize(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	pool := postgres.GetGlobalPool()
	studentRepo := postgres.NewStudentRepository(pool)
	descriptorRepo := postgres.NewDescriptorRepository(pool)
	attendanceRepo := postgres.NewAttendanceRepository(pool)
	database.RegisterPostgresBackend(
		func() database.StudentWriter { return studentRepo },
		func() database.DescriptorWriter { return descriptorRepo },
		func() database.AttendanceWriter { return attendanceRepo },
	)
	return pool, nil
}
