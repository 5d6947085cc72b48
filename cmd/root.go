package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "attendance-backend",
	Short: "Face descriptor attendance backend for classrooms",
	Long: `Attendance Backend keeps a registry of students with their enrolled face
descriptors and marks classroom attendance by matching probe descriptors
against the gallery. It serves a JSON API and ships CLI commands for
enrollment, registrar roster sync and attendance exports.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
