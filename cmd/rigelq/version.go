package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/rigel/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of rigelq",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rigelq %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
