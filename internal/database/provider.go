package database

import (
	"context"
	"fmt"
)

var (
	postgresStudentWriter    func() StudentWriter
	postgresDescriptorWriter func() DescriptorWriter
	postgresAttendanceWriter func() AttendanceWriter
	postgresInitialized      bool
)

// RegisterPostgresBackend registers PostgreSQL repository constructors.
// This is called by the postgres package to avoid import cycles.
func RegisterPostgresBackend(
	studentWriter func() StudentWriter,
	descriptorWriter func() DescriptorWriter,
	attendanceWriter func() AttendanceWriter,
) {
	postgresStudentWriter = studentWriter
	postgresDescriptorWriter = descriptorWriter
	postgresAttendanceWriter = attendanceWriter
	postgresInitialized = true
}

// GetStudentReader returns a StudentReader from the PostgreSQL backend
func GetStudentReader(ctx context.Context) (StudentReader, error) {
	return GetStudentWriter(ctx)
}

// GetStudentWriter returns a StudentWriter from the PostgreSQL backend
func GetStudentWriter(ctx context.Context) (StudentWriter, error) {
	if !postgresInitialized {
		return nil, fmt.Errorf("PostgreSQL backend not initialized: DATABASE_URL is required")
	}
	if postgresStudentWriter == nil {
		return nil, fmt.Errorf("PostgreSQL student writer not registered")
	}
	return postgresStudentWriter(), nil
}

// GetDescriptorReader returns a DescriptorReader from the PostgreSQL backend
func GetDescriptorReader(ctx context.Context) (DescriptorReader, error) {
	return GetDescriptorWriter(ctx)
}

// GetDescriptorWriter returns a DescriptorWriter from the PostgreSQL backend
func GetDescriptorWriter(ctx context.Context) (DescriptorWriter, error) {
	if !postgresInitialized {
		return nil, fmt.Errorf("PostgreSQL backend not initialized: DATABASE_URL is required")
	}
	if postgresDescriptorWriter == nil {
		return nil, fmt.Errorf("PostgreSQL descriptor writer not registered")
	}
	return postgresDescriptorWriter(), nil
}

// GetAttendanceReader returns an AttendanceReader from the PostgreSQL backend
func GetAttendanceReader(ctx context.Context) (AttendanceReader, error) {
	return GetAttendanceWriter(ctx)
}

// GetAttendanceWriter returns an AttendanceWriter from the PostgreSQL backend
func GetAttendanceWriter(ctx context.Context) (AttendanceWriter, error) {
	if !postgresInitialized {
		return nil, fmt.Errorf("PostgreSQL backend not initialized: DATABASE_URL is required")
	}
	if postgresAttendanceWriter == nil {
		return nil, fmt.Errorf("PostgreSQL attendance writer not registered")
	}
	return postgresAttendanceWriter(), nil
}
