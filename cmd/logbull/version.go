package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// set with -ldflags at release time
var (
	ReleaseVersion = "dev"
	ReleaseCommit  = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "version: %s, commit: %s\n", ReleaseVersion, ReleaseCommit)
		},
	}
}
