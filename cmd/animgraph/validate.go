package main

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/engine/document"
	"github.com/Carmen-Shannon/oxy-anim/engine/loader"
	"github.com/Carmen-Shannon/oxy-anim/engine/nodes"
	"github.com/spf13/cobra"
)

type validateResult struct {
	File  string `json:"file" yaml:"file"`
	Valid bool   `json:"valid" yaml:"valid"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

func newValidateCmd(opts *options) *cobra.Command {
	var modelPath string

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate graph documents",
		Long: `Validate checks each document against the document schema and rebuilds its graph.
With --model, every clip the document references must also exist in the asset.`,
		Example: `  animgraph validate character.yaml
  animgraph validate --model hero.gltf character.yaml npc.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var l loader.Loader
			if modelPath != "" {
				l = loader.NewLoader(loader.WithLogger(opts.logger))
				if _, err := l.Load(modelPath); err != nil {
					return err
				}
			}

			results := make([]validateResult, 0, len(args))
			failed := 0
			for _, path := range args {
				res := validateResult{File: path, Valid: true}
				if err := validateFile(path, l, modelPath); err != nil {
					res.Valid = false
					res.Error = err.Error()
					failed++
				}
				results = append(results, res)
			}

			out := cmd.OutOrStdout()
			if opts.output == textFormat {
				for _, r := range results {
					if r.Valid {
						fmt.Fprintf(out, "ok   %s\n", r.File)
					} else {
						fmt.Fprintf(out, "FAIL %s: %s\n", r.File, r.Error)
					}
				}
			} else if err := writeStructured(out, opts.output, results); err != nil {
				return err
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d documents invalid", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "Asset whose clips the documents must reference")
	return cmd
}

func validateFile(path string, l loader.Loader, modelPath string) error {
	doc, err := document.ReadFile(path)
	if err != nil {
		return err
	}
	if _, _, err := document.Decode(doc, nodes.NewRegistry()); err != nil {
		return err
	}
	if l == nil {
		return nil
	}
	m, err := l.Load(modelPath)
	if err != nil {
		return err
	}
	if missing := missingClips(doc, m); len(missing) > 0 {
		return fmt.Errorf("clips missing from %s: %v", modelPath, missing)
	}
	return nil
}
