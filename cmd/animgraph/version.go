package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := map[string]string{
				"version":   version,
				"commit":    commit,
				"buildDate": buildDate,
				"goVersion": runtime.Version(),
			}

			out := cmd.OutOrStdout()
			if opts.output != textFormat {
				return writeStructured(out, opts.output, info)
			}
			fmt.Fprintf(out, "animgraph version %s\n", version)
			if version != "dev" {
				fmt.Fprintf(out, "  commit:     %s\n", commit)
				fmt.Fprintf(out, "  built:      %s\n", buildDate)
				fmt.Fprintf(out, "  go version: %s\n", info["goVersion"])
			}
			return nil
		},
	}
}
