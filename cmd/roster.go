package cmd

import (
	"github.com/spf13/cobra"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Registrar roster operations",
	Long:  `Commands for reconciling the local registry with the university registrar roster.`,
}

func init() {
	rootCmd.AddCommand(rosterCmd)
}
