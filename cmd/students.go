package cmd

import (
	"github.com/spf13/cobra"
)

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "Student registry operations",
	Long:  `Commands for inspecting the locally enrolled student registry.`,
}

func init() {
	rootCmd.AddCommand(studentsCmd)
}
