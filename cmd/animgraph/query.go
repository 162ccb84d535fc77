package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

func newQueryCmd(opts *options) *cobra.Command {
	var first bool

	cmd := &cobra.Command{
		Use:   "query FILE JSONPATH",
		Short: "Evaluate a JSONPath expression against a graph document",
		Example: `  animgraph query character.yaml '$.parameters[*].name'
  animgraph query character.yaml '$..nodes[?(@.type == "animation")].properties.clip'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := jp.ParseString(args[1])
			if err != nil {
				return fmt.Errorf("invalid JSONPath expression: %w", err)
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			js, err := yaml.YAMLToJSON(raw)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			data, err := oj.Parse(js)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			results := expr.Get(data)
			if first && len(results) > 1 {
				results = results[:1]
			}

			out := cmd.OutOrStdout()
			if opts.output != textFormat {
				return writeStructured(out, opts.output, results)
			}
			for _, r := range results {
				if s, ok := r.(string); ok {
					fmt.Fprintln(out, s)
					continue
				}
				fmt.Fprintln(out, oj.JSON(r, &oj.Options{Sort: true}))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&first, "first", false, "Print only the first match")
	return cmd
}
