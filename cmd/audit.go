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

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report suspiciously similar descriptors across students",
	Long: `Report descriptor pairs that are close to each other but belong to
different students.

Such pairs usually mean a face was enrolled under the wrong student, or
two registry entries describe the same person. The report is read-only;
use the API or the database to remove a bad descriptor.

Examples:
  # Default report (distance < 0.40, up to 50 pairs)
  attendance-backend audit

  # Wider net
  attendance-backend audit --max-distance 0.5 --limit 200

  # JSON output for scripting
  attendance-backend audit --json`,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().Float64("max-distance", database.AuditDefaultMaxDistance, "Maximum distance between reported pairs")
	auditCmd.Flags().Int("limit", database.AuditDefaultLimit, "Maximum number of pairs to report")
	auditCmd.Flags().Bool("json", false, "Output as JSON")
}

// AuditPair is one cross-student descriptor pair in the report
type AuditPair struct {
	StudentName      string  `json:"student_name"`
	RollNo           string  `json:"roll_no"`
	DescriptorID     int64   `json:"descriptor_id"`
	OtherStudentName string  `json:"other_student_name"`
	OtherRollNo      string  `json:"other_roll_no"`
	OtherDescriptor  int64   `json:"other_descriptor_id"`
	Distance         float64 `json:"distance"`
}

func runAudit(cmd *cobra.Command, args []string) error {
	maxDistance := mustGetFloat64(cmd, "max-distance")
	limit := mustGetInt(cmd, "limit")
	jsonOutput := mustGetBool(cmd, "json")

	ctx := context.Background()
	cfg := config.Load()

	if _, err := initBackend(cfg); err != nil {
		return err
	}

	reader, err := database.GetDescriptorReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to get descriptor reader: %w", err)
	}

	neighbors, err := reader.FindForeignNeighbors(ctx, maxDistance, limit)
	if err != nil {
		return fmt.Errorf("failed to find neighbor descriptors: %w", err)
	}

	pairs := make([]AuditPair, 0, len(neighbors))
	for _, n := range neighbors {
		pairs = append(pairs, AuditPair{
			StudentName:      n.StudentName,
			RollNo:           n.RollNo,
			DescriptorID:     n.DescriptorID,
			OtherStudentName: n.OtherStudentName,
			OtherRollNo:      n.OtherRollNo,
			OtherDescriptor:  n.OtherDescriptorID,
			Distance:         n.Distance,
		})
	}

	if jsonOutput {
		return outputJSON(pairs)
	}

	if len(pairs) == 0 {
		fmt.Printf("No cross-student descriptor pairs within distance %.2f.\n", maxDistance)
		return nil
	}

	fmt.Printf("Found %d cross-student descriptor pairs within distance %.2f:\n\n", len(pairs), maxDistance)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STUDENT\tROLL\tDESCRIPTOR\tOTHER STUDENT\tOTHER ROLL\tOTHER DESCRIPTOR\tDISTANCE")
	fmt.Fprintln(w, "-------\t----\t----------\t-------------\t----------\t----------------\t--------")
	for _, p := range pairs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%d\t%.4f\n",
			p.StudentName, p.RollNo, p.DescriptorID,
			p.OtherStudentName, p.OtherRollNo, p.OtherDescriptor, p.Distance)
	}
	w.Flush()

	return nil
}
