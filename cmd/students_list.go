package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jaydudhale/Attendance-system-Backend/internal/config"
	"github.com/jaydudhale/Attendance-system-Backend/internal/database"
	"github.com/spf13/cobra"
)

var studentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled students with their descriptor counts",
	RunE:  runStudentsList,
}

func init() {
	studentsCmd.AddCommand(studentsListCmd)

	studentsListCmd.Flags().Bool("json", false, "Output as JSON")
}

// StudentRow is one student in the list output
type StudentRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	RollNo      string `json:"roll_no"`
	Email       string `json:"email,omitempty"`
	Descriptors int    `json:"descriptors"`
	CreatedAt   string `json:"created_at"`
}

func runStudentsList(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")

	ctx := context.Background()
	cfg := config.Load()

	if _, err := initBackend(cfg); err != nil {
		return err
	}

	reader, err := database.GetStudentReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to get student reader: %w", err)
	}

	students, err := reader.ListStudents(ctx)
	if err != nil {
		return fmt.Errorf("failed to list students: %w", err)
	}

	rows := make([]StudentRow, 0, len(students))
	for _, s := range students {
		rows = append(rows, StudentRow{
			ID:          s.ID.String(),
			Name:        s.Name,
			RollNo:      s.RollNo,
			Email:       s.Email,
			Descriptors: s.DescriptorCount,
			CreatedAt:   s.CreatedAt.Format(database.DayFormat),
		})
	}

	if jsonOutput {
		return outputJSON(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No students enrolled.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROLL\tNAME\tEMAIL\tDESCRIPTORS\tENROLLED")
	fmt.Fprintln(w, "----\t----\t-----\t-----------\t--------")
	for _, row := range rows {
		email := row.Email
		if email == "" {
			email = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			row.RollNo, row.Name, email, row.Descriptors, row.CreatedAt)
	}
	w.Flush()

	fmt.Printf("\n%d students\n", len(rows))
	return nil
}
