package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-anim/engine/telemetry"
	"github.com/spf13/cobra"
)

// Output format constants.
const (
	jsonFormat = "json"
	yamlFormat = "yaml"
	textFormat = "text"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	output string
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "animgraph",
		Short: "Animation graph runtime tooling",
		Long: `animgraph works with animation graph documents: it validates them against the
document schema, summarizes and queries them, and runs them headless against skeletal
assets to inspect transitions, root motion and performance.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case textFormat, jsonFormat, yamlFormat:
			default:
				return fmt.Errorf("unknown output format %q", opts.output)
			}
			opts.logger = telemetry.SetupLogger(os.Stderr)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.output, "output", textFormat, "Output format (text, json, yaml)")
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(
		newValidateCmd(opts),
		newInspectCmd(opts),
		newQueryCmd(opts),
		newSimulateCmd(opts),
		newBenchCmd(opts),
		newVersionCmd(opts),
	)
	return cmd
}
