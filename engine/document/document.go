// Package document saves and loads animation graphs as versioned YAML documents.
//
// Every node is reconstructed from its kind tag through a graph.Registry, then receives its
// properties, its input defaults, its subgraph and finally its connections.
package document

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
	"github.com/google/uuid"
)

// Encode converts a graph and its parameter blackboard into a Document.
//
// Parameters:
//   - g: the graph to encode
//   - params: the blackboard to store alongside the graph, or nil
//
// Returns:
//   - *Document: the encoded document
//   - error: an error if a node has no persistable kind
func Encode(g graph.Graph, params *graph.Parameters) (*Document, error) {
	gd, err := encodeGraph(g)
	if err != nil {
		return nil, err
	}
	doc := &Document{Version: FormatVersion, Name: g.Name(), Graph: *gd}
	if params != nil {
		snap := params.Snapshot()
		for _, name := range params.Names() {
			v := snap[name]
			if v.Type == graph.TypePose || v.Type == graph.TypeBoneMask {
				continue
			}
			doc.Parameters = append(doc.Parameters, ParameterDoc{Name: name, Type: v.Type.String(), Value: v.Interface()})
		}
	}
	return doc, nil
}

func encodeGraph(g graph.Graph) (*GraphDoc, error) {
	gd := &GraphDoc{Name: g.Name(), Output: uint32(g.OutputNode()), Nodes: []NodeDoc{}}
	for _, n := range g.Nodes() {
		if _, err := graph.ParseKind(n.Kind().String()); err != nil {
			return nil, fmt.Errorf("encode node %d: %w", n.ID(), err)
		}
		nd := NodeDoc{
			ID:   uint32(n.ID()),
			UUID: n.UUID().String(),
			Type: n.Kind().String(),
			Name: n.Name(),
		}
		if c, ok := n.(graph.Configurable); ok {
			if props := c.Properties(); len(props) > 0 {
				nd.Properties = props
			}
		}
		for _, ep := range n.Inputs() {
			if ep.Type() == graph.TypePose {
				continue
			}
			if nd.Inputs == nil {
				nd.Inputs = map[string]any{}
			}
			nd.Inputs[ep.Name()] = ep.Default().Interface()
		}
		if owner, ok := n.(graph.SubgraphOwner); ok {
			sub, err := encodeGraph(owner.Subgraph())
			if err != nil {
				return nil, fmt.Errorf("encode subgraph of %q: %w", n.Name(), err)
			}
			nd.Subgraph = sub
		}
		gd.Nodes = append(gd.Nodes, nd)
	}
	for _, c := range g.Connections() {
		gd.Connections = append(gd.Connections, ConnectionDoc{
			From:         uint32(c.From),
			FromEndpoint: c.FromEndpoint,
			To:           uint32(c.To),
			ToEndpoint:   c.ToEndpoint,
		})
	}
	return gd, nil
}

// Decode rebuilds a graph and its parameter blackboard from a Document.
//
// Parameters:
//   - doc: the document to decode
//   - registry: the node factories, usually nodes.NewRegistry()
//   - options: options applied to the top-level graph
//
// Returns:
//   - graph.Graph: the reconstructed graph
//   - *graph.Parameters: the reconstructed blackboard
//   - error: an error if the document references unknown kinds, endpoints or nodes
func Decode(doc *Document, registry *graph.Registry, options ...graph.GraphBuilderOption) (graph.Graph, *graph.Parameters, error) {
	if doc.Version < 1 || doc.Version > FormatVersion {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}

	params := graph.NewParameters()
	for _, p := range doc.Parameters {
		t, err := graph.ParseValueType(p.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		v, err := graph.FromInterface(t, p.Value)
		if err != nil {
			return nil, nil, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		params.Set(p.Name, v)
	}

	name := doc.Graph.Name
	if name == "" {
		name = doc.Name
	}
	g := graph.NewGraph(append([]graph.GraphBuilderOption{graph.WithName(name)}, options...)...)
	if err := decodeInto(g, &doc.Graph, registry); err != nil {
		return nil, nil, err
	}
	return g, params, nil
}

// decodeInto fills an empty graph from gd.
func decodeInto(g graph.Graph, gd *GraphDoc, registry *graph.Registry) error {
	for i := range gd.Nodes {
		nd := &gd.Nodes[i]
		n, err := decodeNode(nd, registry)
		if err != nil {
			return fmt.Errorf("node %d (%s): %w", nd.ID, nd.Name, err)
		}
		if err := g.AddNodeWithID(graph.NodeID(nd.ID), n); err != nil {
			return fmt.Errorf("node %d (%s): %w", nd.ID, nd.Name, err)
		}
	}
	for _, c := range gd.Connections {
		if err := g.Connect(graph.NodeID(c.From), c.FromEndpoint, graph.NodeID(c.To), c.ToEndpoint); err != nil {
			return fmt.Errorf("connection %d.%d -> %d.%d: %w", c.From, c.FromEndpoint, c.To, c.ToEndpoint, err)
		}
	}
	if gd.Output != 0 {
		if err := g.SetOutputNode(graph.NodeID(gd.Output)); err != nil {
			return err
		}
	}
	return nil
}

func decodeNode(nd *NodeDoc, registry *graph.Registry) (graph.Node, error) {
	kind, err := graph.ParseKind(nd.Type)
	if err != nil {
		return nil, err
	}
	n, err := registry.New(kind)
	if err != nil {
		return nil, err
	}
	n.SetName(nd.Name)
	if nd.UUID != "" {
		id, err := uuid.Parse(nd.UUID)
		if err != nil {
			return nil, fmt.Errorf("%w: uuid: %w", ErrInvalidDocument, err)
		}
		n.SetUUID(id)
	}

	// Properties may add endpoints, so they are applied before input defaults.
	if c, ok := n.(graph.Configurable); ok && len(nd.Properties) > 0 {
		if err := c.SetProperties(nd.Properties); err != nil {
			return nil, err
		}
	}
	for name, raw := range nd.Inputs {
		ep := findInput(n, name)
		if ep == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownInput, name)
		}
		v, err := graph.FromInterface(ep.Type(), raw)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", name, err)
		}
		if err := ep.SetDefault(v); err != nil {
			return nil, fmt.Errorf("input %q: %w", name, err)
		}
	}

	if owner, ok := n.(graph.SubgraphOwner); ok && nd.Subgraph != nil {
		sub := owner.Subgraph()
		// Drop the nodes the factory created so saved handles can be restored.
		for _, child := range sub.Nodes() {
			if err := sub.RemoveNode(child.ID()); err != nil {
				return nil, err
			}
		}
		if err := decodeInto(sub, nd.Subgraph, registry); err != nil {
			return nil, fmt.Errorf("subgraph: %w", err)
		}
	}
	return n, nil
}

func findInput(n graph.Node, name string) *graph.Endpoint {
	for _, ep := range n.Inputs() {
		if ep.Name() == name {
			return ep
		}
	}
	return nil
}
