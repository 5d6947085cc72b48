package cmd

import (
	"github.com/spf13/cobra"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Attendance sheet operations",
	Long:  `Commands for inspecting and exporting recorded attendance.`,
}

func init() {
	rootCmd.AddCommand(attendanceCmd)
}
