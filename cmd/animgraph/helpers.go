package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/document"
	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
	"github.com/Carmen-Shannon/oxy-anim/engine/loader"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/Carmen-Shannon/oxy-anim/engine/nodes"
	"github.com/goccy/go-yaml"
)

// writeStructured prints v as JSON or YAML. Text output is handled by each command.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case jsonFormat:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal output: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case yamlFormat:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal output: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unknown output format %q", format)
}

// character is a decoded graph document paired with the asset it animates.
type character struct {
	doc   *document.Document
	model model.Model
}

// loadCharacter reads the graph document and the model asset and checks that every clip
// the document references exists in the model.
func loadCharacter(graphPath, modelPath string, logger *slog.Logger) (*character, error) {
	doc, err := document.ReadFile(graphPath)
	if err != nil {
		return nil, err
	}
	if _, _, err := document.Decode(doc, nodes.NewRegistry()); err != nil {
		return nil, fmt.Errorf("%s: %w", graphPath, err)
	}

	l := loader.NewLoader(loader.WithLogger(logger))
	m, err := l.Load(modelPath)
	if err != nil {
		return nil, err
	}
	if missing := missingClips(doc, m); len(missing) > 0 {
		return nil, fmt.Errorf("%s references clips missing from %s: %s", graphPath, modelPath, strings.Join(missing, ", "))
	}
	return &character{doc: doc, model: m}, nil
}

// instantiate decodes a fresh graph and blackboard. Graphs carry per-entity playback state
// and cannot be shared between game objects.
func (c *character) instantiate() (graph.Graph, *graph.Parameters, error) {
	return document.Decode(c.doc, nodes.NewRegistry())
}

// documentClips returns the sorted set of clip names referenced by animation nodes.
func documentClips(doc *document.Document) []string {
	set := map[string]struct{}{}
	walkNodes(&doc.Graph, func(n *document.NodeDoc) {
		if n.Type != graph.KindAnimation.String() {
			return
		}
		if clip, ok := n.Properties["clip"].(string); ok && clip != "" {
			set[clip] = struct{}{}
		}
	})
	return common.SortedKeys(set)
}

func missingClips(doc *document.Document, m model.Model) []string {
	var missing []string
	for _, clip := range documentClips(doc) {
		if m.Animation(clip) == nil {
			missing = append(missing, clip)
		}
	}
	return missing
}

// walkNodes visits every node of gd and its nested subgraphs depth-first.
func walkNodes(gd *document.GraphDoc, visit func(n *document.NodeDoc)) {
	for i := range gd.Nodes {
		n := &gd.Nodes[i]
		visit(n)
		if n.Subgraph != nil {
			walkNodes(n.Subgraph, visit)
		}
	}
}

// parseAssignment splits "name=value" and converts value to the parameter's declared type.
func parseAssignment(params *graph.Parameters, s string) (string, graph.Value, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", graph.Value{}, fmt.Errorf("parameter assignment %q: want name=value", s)
	}
	var decoded any
	if err := yaml.Unmarshal([]byte(raw), &decoded); err != nil {
		return "", graph.Value{}, fmt.Errorf("parameter %s: %w", name, err)
	}
	v, err := coerceParameter(params, name, decoded)
	return name, v, err
}

// coerceParameter converts a decoded YAML scalar or list to the type of the existing parameter.
func coerceParameter(params *graph.Parameters, name string, raw any) (graph.Value, error) {
	cur, ok := params.Get(name)
	if !ok {
		return graph.Value{}, fmt.Errorf("unknown parameter %q", name)
	}
	v, err := graph.FromInterface(cur.Type, raw)
	if err != nil {
		return graph.Value{}, fmt.Errorf("parameter %s: %w", name, err)
	}
	return v, nil
}
