package main

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/document"
	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
	"github.com/spf13/cobra"
)

type inspectParameter struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type" yaml:"type"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`
}

type inspectMachine struct {
	Name        string   `json:"name" yaml:"name"`
	States      []string `json:"states" yaml:"states"`
	Transitions int      `json:"transitions" yaml:"transitions"`
}

type inspectSummary struct {
	Name       string             `json:"name" yaml:"name"`
	Version    int                `json:"version" yaml:"version"`
	Nodes      int                `json:"nodes" yaml:"nodes"`
	Depth      int                `json:"depth" yaml:"depth"`
	Kinds      map[string]int     `json:"kinds" yaml:"kinds"`
	Clips      []string           `json:"clips" yaml:"clips"`
	Parameters []inspectParameter `json:"parameters" yaml:"parameters"`
	Machines   []inspectMachine   `json:"machines,omitempty" yaml:"machines,omitempty"`
}

func newInspectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Summarize a graph document",
		Example: `  animgraph inspect character.yaml
  animgraph inspect --output json character.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.ReadFile(args[0])
			if err != nil {
				return err
			}
			s := summarize(doc)

			out := cmd.OutOrStdout()
			if opts.output != textFormat {
				return writeStructured(out, opts.output, s)
			}

			fmt.Fprintf(out, "name:    %s\n", s.Name)
			fmt.Fprintf(out, "version: %d\n", s.Version)
			fmt.Fprintf(out, "nodes:   %d (depth %d)\n", s.Nodes, s.Depth)

			for _, k := range common.SortedKeys(s.Kinds) {
				fmt.Fprintf(out, "  %-18s %d\n", k, s.Kinds[k])
			}

			fmt.Fprintf(out, "clips:   %s\n", strings.Join(s.Clips, ", "))
			for _, p := range s.Parameters {
				fmt.Fprintf(out, "param:   %s %s = %v\n", p.Name, p.Type, p.Value)
			}
			for _, m := range s.Machines {
				fmt.Fprintf(out, "machine: %s states=[%s] transitions=%d\n", m.Name, strings.Join(m.States, ", "), m.Transitions)
			}
			return nil
		},
	}
}

func summarize(doc *document.Document) inspectSummary {
	s := inspectSummary{
		Name:    doc.Name,
		Version: doc.Version,
		Kinds:   map[string]int{},
		Clips:   documentClips(doc),
		Depth:   graphDepth(&doc.Graph),
	}
	if s.Name == "" {
		s.Name = doc.Graph.Name
	}
	for _, p := range doc.Parameters {
		s.Parameters = append(s.Parameters, inspectParameter(p))
	}

	walkNodes(&doc.Graph, func(n *document.NodeDoc) {
		s.Nodes++
		s.Kinds[n.Type]++
		if n.Type != graph.KindStateMachine.String() || n.Subgraph == nil {
			return
		}
		m := inspectMachine{Name: n.Name}
		for _, child := range n.Subgraph.Nodes {
			switch child.Type {
			case graph.KindState.String():
				m.States = append(m.States, child.Name)
			case graph.KindTransition.String():
				m.Transitions++
			}
		}
		s.Machines = append(s.Machines, m)
	})
	return s
}

func graphDepth(gd *document.GraphDoc) int {
	depth := 0
	for i := range gd.Nodes {
		if sub := gd.Nodes[i].Subgraph; sub != nil {
			depth = max(depth, graphDepth(sub))
		}
	}
	return depth + 1
}
