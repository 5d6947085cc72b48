package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jaydudhale/Attendance-system-Backend/internal/config"
	"github.com/jaydudhale/Attendance-system-Backend/internal/constants"
	"github.com/jaydudhale/Attendance-system-Backend/internal/database"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <descriptors-file>",
	Short: "Bulk-enroll face descriptors from a JSON file",
	Long: `Bulk-enroll face descriptors for already registered students.

The input file is a JSON array of entries, each carrying a roll number
and one or more descriptor vectors:

  [
    {"roll_no": "CS101", "descriptors": [[0.12, -0.08, ...]]},
    {"roll_no": "CS102", "descriptors": [[...], [...]]}
  ]

Students are looked up by roll number; entries for unknown roll numbers
are skipped and reported. Vectors whose length does not match the
configured descriptor dimension are rejected.

Examples:
  # Enroll descriptors with default concurrency
  attendance-backend enroll descriptors.json

  # Limit concurrency
  attendance-backend enroll descriptors.json --concurrency 5

  # JSON output for scripting
  attendance-backend enroll descriptors.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().Int("concurrency", constants.WorkerPoolSize, "Number of parallel workers")
	enrollCmd.Flags().String("source", database.SourceImport, "Source label stored with each descriptor")
	enrollCmd.Flags().Bool("json", false, "Output as JSON instead of progress bar")
}

// enrollEntry is one student's worth of descriptors in the input file
type enrollEntry struct {
	RollNo      string      `json:"roll_no"`
	Descriptors [][]float32 `json:"descriptors"`
}

// EnrollResult represents the result of a bulk enrollment run
type EnrollResult struct {
	Success           bool   `json:"success"`
	StudentsProcessed int    `json:"students_processed"`
	StudentsNotFound  int    `json:"students_not_found"`
	DescriptorsAdded  int    `json:"descriptors_added"`
	Errors            int    `json:"errors"`
	DurationMs        int64  `json:"duration_ms"`
	DurationHuman     string `json:"duration_human,omitempty"`
}

func runEnroll(cmd *cobra.Command, args []string) error {
	concurrency := mustGetInt(cmd, "concurrency")
	source := mustGetString(cmd, "source")
	jsonOutput := mustGetBool(cmd, "json")

	ctx := context.Background()
	cfg := config.Load()
	startTime := time.Now()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read descriptors file: %w", err)
	}
	var entries []enrollEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse descriptors file: %w", err)
	}
	if len(entries) == 0 {
		return errors.New("descriptors file contains no entries")
	}

	if _, err := initBackend(cfg); err != nil {
		return err
	}

	writer, err := database.GetDescriptorWriter(ctx)
	if err != nil {
		return fmt.Errorf("failed to get descriptor writer: %w", err)
	}
	students, err := database.GetStudentReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to get student reader: %w", err)
	}

	if !jsonOutput {
		fmt.Printf("Enrolling descriptors for %d students\n\n", len(entries))
	}

	var bar *progressbar.ProgressBar
	if !jsonOutput {
		bar = progressbar.NewOptions(len(entries),
			progressbar.OptionSetDescription("Enrolling"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("students"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	var notFound int64
	var added int64
	var errorCount int64
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, entry := range entries {
		wg.Add(1)
		go func(entry enrollEntry) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			student, err := students.GetStudentByRollNo(ctx, entry.RollNo)
			if err != nil {
				atomic.AddInt64(&errorCount, 1)
			} else if student == nil {
				atomic.AddInt64(&notFound, 1)
			} else {
				for _, vector := range entry.Descriptors {
					if cfg.Matching.DescriptorDim > 0 && len(vector) != cfg.Matching.DescriptorDim {
						atomic.AddInt64(&errorCount, 1)
						continue
					}
					if _, err := writer.AddDescriptor(ctx, student.ID, vector, source); err != nil {
						atomic.AddInt64(&errorCount, 1)
					} else {
						atomic.AddInt64(&added, 1)
					}
				}
			}

			if bar != nil {
				bar.Add(1)
			}
		}(entry)
	}

	wg.Wait()

	if bar != nil {
		fmt.Println()
	}

	duration := time.Since(startTime)
	result := EnrollResult{
		Success:           true,
		StudentsProcessed: len(entries),
		StudentsNotFound:  int(notFound),
		DescriptorsAdded:  int(added),
		Errors:            int(errorCount),
		DurationMs:        duration.Milliseconds(),
		DurationHuman:     formatDuration(duration),
	}

	if jsonOutput {
		// Remove human-readable duration for JSON output
		result.DurationHuman = ""
		return outputJSON(result)
	}

	fmt.Println("\nEnrollment complete!")
	fmt.Printf("  Students processed: %d\n", result.StudentsProcessed)
	fmt.Printf("  Descriptors added:  %d\n", result.DescriptorsAdded)
	if result.StudentsNotFound > 0 {
		fmt.Printf("  Unknown roll numbers: %d\n", result.StudentsNotFound)
	}
	if result.Errors > 0 {
		fmt.Printf("  Errors:             %d\n", result.Errors)
	}
	fmt.Printf("  Duration:           %s\n", result.DurationHuman)

	return nil
}

// formatDuration formats a duration as a human-readable string
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
