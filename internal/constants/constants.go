// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Processing constants
const (
	// WorkerPoolSize is the default number of parallel workers for bulk
	// descriptor enrollment
	WorkerPoolSize = 20
)
