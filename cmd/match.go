package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jaydudhale/Attendance-system-Backend/internal/config"
	"github.com/jaydudhale/Attendance-system-Backend/internal/database"
	"github.com/jaydudhale/Attendance-system-Backend/internal/facematch"
	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match <probes-file>",
	Short: "Match probe descriptors against the enrolled gallery",
	Long: `Match probe face descriptors against all enrolled students.

The probes file is a JSON array of descriptor vectors, one per detected
face. Every probe is compared exhaustively against every stored
descriptor and reported with its closest student, or as unmatched when
no descriptor falls under the distance threshold.

Examples:
  # Match probes with the configured profile threshold
  attendance-backend match probes.json

  # Use the strict profile for this run only
  attendance-backend match probes.json --profile strict

  # Explicit threshold, overriding any profile
  attendance-backend match probes.json --threshold 0.45

  # JSON output for scripting
  attendance-backend match probes.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("profile", "", "Matching profile for this run (strict, standard, lenient)")
	matchCmd.Flags().Float64("threshold", 0, "Maximum distance for a positive match (0 = profile threshold)")
	matchCmd.Flags().Bool("json", false, "Output as JSON")
}

// MatchResult represents the outcome for a single probe descriptor
type MatchResult struct {
	Probe      int     `json:"probe"`
	Matched    bool    `json:"matched"`
	StudentID  string  `json:"student_id,omitempty"`
	Name       string  `json:"name,omitempty"`
	RollNo     string  `json:"roll_no,omitempty"`
	Distance   float64 `json:"distance,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// MatchOutput represents the JSON output structure
type MatchOutput struct {
	Threshold   float64       `json:"threshold"`
	GallerySize int           `json:"gallery_size"`
	Probes      int           `json:"probes"`
	Results     []MatchResult `json:"results"`
	Summary     MatchSummary  `json:"summary"`
}

// MatchSummary provides match counts for the whole batch
type MatchSummary struct {
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
}

// readProbesFile parses a JSON array of descriptor vectors.
func readProbesFile(path string) ([]facematch.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read probes file: %w", err)
	}
	var vectors [][]float32
	if err := json.Unmarshal(data, &vectors); err != nil {
		return nil, fmt.Errorf("failed to parse probes file: %w", err)
	}
	probes := make([]facematch.Descriptor, len(vectors))
	for i, v := range vectors {
		probes[i] = facematch.Descriptor(v)
	}
	return probes, nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	profileName := mustGetString(cmd, "profile")
	threshold := mustGetFloat64(cmd, "threshold")
	jsonOutput := mustGetBool(cmd, "json")

	ctx := context.Background()
	cfg := config.Load()

	probes, err := readProbesFile(args[0])
	if err != nil {
		return err
	}

	if _, err := initBackend(cfg); err != nil {
		return err
	}

	reader, err := database.GetDescriptorReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to get descriptor reader: %w", err)
	}

	gallery, err := reader.LoadGallery(ctx)
	if err != nil {
		return fmt.Errorf("failed to load descriptor gallery: %w", err)
	}

	// Explicit --threshold wins, then --profile, then the configured profile.
	if threshold <= 0 {
		if profileName != "" {
			threshold = cfg.GetProfile(profileName).Threshold
		} else {
			threshold = cfg.Matching.Threshold
		}
	}

	results, err := facematch.Match(gallery, probes, threshold)
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}

	output := MatchOutput{
		Threshold:   threshold,
		GallerySize: len(gallery),
		Probes:      len(probes),
		Results:     make([]MatchResult, 0, len(results)),
	}
	for i, r := range results {
		row := MatchResult{Probe: i}
		if r != nil {
			row.Matched = true
			row.StudentID = r.IdentityID
			row.Name = r.Name
			row.RollNo = r.Code
			row.Distance = r.Distance
			row.Confidence = r.Confidence
			output.Summary.Matched++
		} else {
			output.Summary.Unmatched++
		}
		output.Results = append(output.Results, row)
	}

	if jsonOutput {
		return outputJSON(output)
	}

	fmt.Printf("Gallery: %d students, threshold %.2f\n\n", output.GallerySize, threshold)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROBE\tSTUDENT\tROLL\tDISTANCE\tCONFIDENCE")
	fmt.Fprintln(w, "-----\t-------\t----\t--------\t----------")
	for _, row := range output.Results {
		if row.Matched {
			fmt.Fprintf(w, "%d\t%s\t%s\t%.4f\t%.4f\n",
				row.Probe, row.Name, row.RollNo, row.Distance, row.Confidence)
		} else {
			fmt.Fprintf(w, "%d\t-\t-\t-\t-\n", row.Probe)
		}
	}
	w.Flush()

	fmt.Printf("\nMatched %d of %d probes\n", output.Summary.Matched, output.Probes)
	return nil
}

func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
