package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/scripter"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of scripter",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "scripter version %s\n", strings.TrimSpace(scripter.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
