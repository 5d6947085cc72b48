package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/jaydudhale/Attendance-system-Backend/internal/config"
	"github.com/jaydudhale/Attendance-system-Backend/internal/database"
	"github.com/jaydudhale/Attendance-system-Backend/internal/database/sis"
	"github.com/jaydudhale/Attendance-system-Backend/internal/roster"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var rosterImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import active enrollments from the registrar roster",
	Long: `Import the registrar roster from the student information system.

This command fetches all active enrollments from the SIS MySQL database,
compares them with the local registry and creates missing students and
updates changed names and emails. Students no longer on the roster are
reported but never deleted; their descriptors and attendance history
stay intact.

Examples:
  # Preview what would change
  attendance-backend roster import --dry-run

  # Apply the roster
  attendance-backend roster import

  # JSON output for scripting
  attendance-backend roster import --json`,
	RunE: runRosterImport,
}

func init() {
	rosterCmd.AddCommand(rosterImportCmd)

	rosterImportCmd.Flags().Bool("dry-run", false, "Preview changes without applying them")
	rosterImportCmd.Flags().Bool("json", false, "Output as JSON instead of progress bar")
}

// RosterImportResult represents the result of a roster import run
type RosterImportResult struct {
	Success       bool   `json:"success"`
	DryRun        bool   `json:"dry_run"`
	RosterSize    int    `json:"roster_size"`
	Created       int    `json:"created"`
	Updated       int    `json:"updated"`
	Unchanged     int    `json:"unchanged"`
	Missing       int    `json:"missing"`
	Duplicates    int    `json:"duplicates"`
	Errors        int    `json:"errors"`
	DurationMs    int64  `json:"duration_ms"`
	DurationHuman string `json:"duration_human,omitempty"`
}

func runRosterImport(cmd *cobra.Command, args []string) error {
	dryRun := mustGetBool(cmd, "dry-run")
	jsonOutput := mustGetBool(cmd, "json")

	ctx := context.Background()
	cfg := config.Load()
	startTime := time.Now()

	if cfg.SIS.DatabaseURL == "" {
		return errors.New("SIS_DATABASE_URL environment variable is required")
	}

	if _, err := initBackend(cfg); err != nil {
		return err
	}
	writer, err := database.GetStudentWriter(ctx)
	if err != nil {
		return fmt.Errorf("failed to get student writer: %w", err)
	}

	if !jsonOutput {
		fmt.Println("Connecting to SIS database...")
	}
	sisPool, err := sis.NewPool(cfg.SIS.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to SIS: %w", err)
	}
	defer sisPool.Close()

	active, err := sisPool.CountActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to count active enrollments: %w", err)
	}
	if !jsonOutput {
		fmt.Printf("Registrar lists %d active enrollments\n", active)
	}

	entries, err := sisPool.FetchRoster(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch roster: %w", err)
	}

	students, err := writer.ListStudents(ctx)
	if err != nil {
		return fmt.Errorf("failed to list students: %w", err)
	}

	local := make([]roster.Record, 0, len(students))
	for _, s := range students {
		local = append(local, roster.Record{
			ID:     s.ID.String(),
			RollNo: s.RollNo,
			Name:   s.Name,
			Email:  s.Email,
		})
	}
	remote := make([]roster.Entry, 0, len(entries))
	for _, e := range entries {
		remote = append(remote, roster.Entry{
			RollNo: e.RollNo,
			Name:   e.Name,
			Email:  e.Email,
		})
	}

	plan := roster.BuildPlan(local, remote)

	var created, updated, errorCount int
	if !dryRun {
		created, updated, errorCount = applyRosterPlan(ctx, writer, plan, jsonOutput)
	}

	duration := time.Since(startTime)
	result := RosterImportResult{
		Success:       true,
		DryRun:        dryRun,
		RosterSize:    len(entries),
		Created:       created,
		Updated:       updated,
		Unchanged:     plan.Unchanged,
		Missing:       len(plan.Missing),
		Duplicates:    len(plan.Duplicates),
		Errors:        errorCount,
		DurationMs:    duration.Milliseconds(),
		DurationHuman: formatDuration(duration),
	}
	if dryRun {
		result.Created = len(plan.Creates)
		result.Updated = len(plan.Updates)
	}

	if jsonOutput {
		// Remove human-readable duration for JSON output
		result.DurationHuman = ""
		return outputJSON(result)
	}

	if dryRun {
		printRosterPlan(plan)
		return nil
	}

	fmt.Println("\nRoster import complete!")
	fmt.Printf("  Students created: %d\n", result.Created)
	fmt.Printf("  Students updated: %d\n", result.Updated)
	fmt.Printf("  Unchanged:        %d\n", result.Unchanged)
	if result.Missing > 0 {
		fmt.Printf("  Missing locally enrolled students (kept): %d\n", result.Missing)
	}
	if result.Duplicates > 0 {
		fmt.Printf("  Duplicate roster rows ignored: %d\n", result.Duplicates)
	}
	if result.Errors > 0 {
		fmt.Printf("  Errors:           %d\n", result.Errors)
	}
	fmt.Printf("  Duration:         %s\n", result.DurationHuman)

	return nil
}

// applyRosterPlan executes the creates and updates of a roster plan.
func applyRosterPlan(ctx context.Context, writer database.StudentWriter, plan roster.Plan, jsonOutput bool) (int, int, int) {
	total := len(plan.Creates) + len(plan.Updates)
	if total == 0 {
		return 0, 0, 0
	}

	var bar *progressbar.ProgressBar
	if !jsonOutput {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Applying roster"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("students"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	var created, updated, errorCount int
	for _, c := range plan.Creates {
		if _, err := writer.CreateStudent(ctx, c.Name, c.RollNo, c.Email); err != nil {
			errorCount++
		} else {
			created++
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	for _, u := range plan.Updates {
		id, err := uuid.Parse(u.ID)
		if err != nil {
			errorCount++
		} else if _, err := writer.UpdateStudent(ctx, id, u.Name, u.Email); err != nil {
			errorCount++
		} else {
			updated++
		}
		if bar != nil {
			bar.Add(1)
		}
	}

	if bar != nil {
		fmt.Println()
	}
	return created, updated, errorCount
}

// printRosterPlan prints a dry-run preview of the reconciliation plan.
func printRosterPlan(plan roster.Plan) {
	fmt.Printf("\nDry run, nothing applied. Plan:\n")
	fmt.Printf("  Create:    %d\n", len(plan.Creates))
	fmt.Printf("  Update:    %d\n", len(plan.Updates))
	fmt.Printf("  Unchanged: %d\n", plan.Unchanged)
	fmt.Printf("  Missing:   %d\n", len(plan.Missing))
	if len(plan.Duplicates) > 0 {
		fmt.Printf("  Duplicate roster rows ignored: %d\n", len(plan.Duplicates))
	}

	if len(plan.Creates) > 0 {
		fmt.Println("\nStudents to create:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ROLL\tNAME\tEMAIL")
		for _, c := range plan.Creates {
			email := c.Email
			if email == "" {
				email = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.RollNo, c.Name, email)
		}
		w.Flush()
	}

	if len(plan.Updates) > 0 {
		fmt.Println("\nStudents to update:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ROLL\tNEW NAME\tNEW EMAIL")
		for _, u := range plan.Updates {
			email := u.Email
			if email == "" {
				email = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", u.RollNo, u.Name, email)
		}
		w.Flush()
	}

	if len(plan.Missing) > 0 {
		fmt.Println("\nLocally enrolled but missing from the roster (kept):")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ROLL\tNAME")
		for _, m := range plan.Missing {
			fmt.Fprintf(w, "%s\t%s\n", m.RollNo, m.Name)
		}
		w.Flush()
	}
}
