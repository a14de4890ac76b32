package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(c.out, "sapai %s\n", Version)
			fmt.Fprintf(c.out, "  Build Time: %s\n", BuildTime)
			fmt.Fprintf(c.out, "  Git Commit: %s\n", GitCommit)
			fmt.Fprintf(c.out, "  Go Version: %s\n", runtime.Version())
		},
	}
}
