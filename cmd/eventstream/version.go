package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/eventstream/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
	},
}
