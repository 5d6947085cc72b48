package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jaydudhale/Attendance-system-Backend/internal/config"
	"github.com/jaydudhale/Attendance-system-Backend/internal/database"
	"github.com/spf13/cobra"
)

var attendanceExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export attendance records as CSV",
	Long: `Export attendance records for a day range as CSV.

Both --from and --to default to today, so a bare invocation exports
today's sheet. Output goes to stdout unless --output names a file.

Examples:
  # Today's sheet to stdout
  attendance-backend attendance export

  # A whole week to a file
  attendance-backend attendance export --from 2025-09-01 --to 2025-09-05 --output week36.csv`,
	RunE: runAttendanceExport,
}

func init() {
	attendanceCmd.AddCommand(attendanceExportCmd)

	attendanceExportCmd.Flags().String("from", "", "First day to export (YYYY-MM-DD, default today)")
	attendanceExportCmd.Flags().String("to", "", "Last day to export (YYYY-MM-DD, default today)")
	attendanceExportCmd.Flags().String("output", "", "Write CSV to this file instead of stdout")
}

// parseDayFlag parses a YYYY-MM-DD flag value, defaulting to today.
func parseDayFlag(value, name string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	day, err := time.Parse(database.DayFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s, expected YYYY-MM-DD", name)
	}
	return day, nil
}

func runAttendanceExport(cmd *cobra.Command, args []string) error {
	output := mustGetString(cmd, "output")

	ctx := context.Background()
	cfg := config.Load()

	from, err := parseDayFlag(mustGetString(cmd, "from"), "from")
	if err != nil {
		return err
	}
	to, err := parseDayFlag(mustGetString(cmd, "to"), "to")
	if err != nil {
		return err
	}
	fromKey := from.Format(database.DayFormat)
	toKey := to.Format(database.DayFormat)
	if fromKey > toKey {
		return fmt.Errorf("--from %s must not be after --to %s", fromKey, toKey)
	}

	if _, err := initBackend(cfg); err != nil {
		return err
	}

	reader, err := database.GetAttendanceReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to get attendance reader: %w", err)
	}

	records, err := reader.ListAttendanceRange(ctx, from, to)
	if err != nil {
		return fmt.Errorf("failed to list attendance: %w", err)
	}

	var out io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	cw := csv.NewWriter(out)
	cw.Write([]string{"day", "roll_no", "student_name", "marked_at", "distance", "confidence", "source"})
	for _, rec := range records {
		cw.Write([]string{
			rec.Day.Format(database.DayFormat),
			rec.RollNo,
			rec.StudentName,
			rec.MarkedAt.Format(time.RFC3339),
			strconv.FormatFloat(rec.Distance, 'f', 4, 64),
			strconv.FormatFloat(rec.Confidence, 'f', 4, 64),
			rec.Source,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}

	if output != "" {
		fmt.Printf("Exported %d records (%s to %s) to %s\n", len(records), fromKey, toKey, output)
	}
	return nil
}
