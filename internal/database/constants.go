package database

// Descriptor storage constraints
const (
	// DefaultDescriptorDim is the descriptor length produced by the standard
	// 128-point face embedding pipeline.
	DefaultDescriptorDim = 128

	// MaxDescriptorsPerStudent caps stored samples per student.
	// Accuracy stops improving well before this many samples.
	MaxDescriptorsPerStudent = 20
)

// Source labels recorded with each stored descriptor
const (
	SourceEnrollment = "enrollment"
	SourceImport     = "import"
)

// Source labels recorded with each attendance record
const (
	AttendanceSourceRecognition = "recognition"
	AttendanceSourceManual      = "manual"
)

// Defaults for cross-student descriptor proximity audits
const (
	// AuditDefaultMaxDistance flags descriptor pairs from different students
	// that sit closer than even a strict match would require.
	AuditDefaultMaxDistance = 0.4

	// AuditDefaultLimit caps the number of reported pairs.
	AuditDefaultLimit = 50
)
