package document

// FormatVersion is the document version written by Encode. Decode accepts versions up to it.
const FormatVersion = 1

// Document is the persisted form of an animation graph and its parameter blackboard.
type Document struct {
	Version    int            `yaml:"version" json:"version"`
	Name       string         `yaml:"name,omitempty" json:"name,omitempty"`
	Parameters []ParameterDoc `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Graph      GraphDoc       `yaml:"graph" json:"graph"`
}

// ParameterDoc is one blackboard entry.
type ParameterDoc struct {
	Name  string `yaml:"name" json:"name"`
	Type  string `yaml:"type" json:"type"`
	Value any    `yaml:"value,omitempty" json:"value,omitempty"`
}

// GraphDoc is the persisted form of one graph: its nodes, connections and output node.
// Node IDs are the graph's own handles and are restored as-is, so transitions keep pointing at their states.
type GraphDoc struct {
	Name        string          `yaml:"name,omitempty" json:"name,omitempty"`
	Output      uint32          `yaml:"output,omitempty" json:"output,omitempty"`
	Nodes       []NodeDoc       `yaml:"nodes" json:"nodes"`
	Connections []ConnectionDoc `yaml:"connections,omitempty" json:"connections,omitempty"`
}

// NodeDoc is the persisted form of one node: its kind tag, settings, unconnected input defaults
// and, for nodes owning a subgraph, the subgraph.
type NodeDoc struct {
	ID         uint32         `yaml:"id" json:"id"`
	UUID       string         `yaml:"uuid,omitempty" json:"uuid,omitempty"`
	Type       string         `yaml:"type" json:"type"`
	Name       string         `yaml:"name,omitempty" json:"name,omitempty"`
	Properties map[string]any `yaml:"properties,omitempty" json:"properties,omitempty"`
	Inputs     map[string]any `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Subgraph   *GraphDoc      `yaml:"subgraph,omitempty" json:"subgraph,omitempty"`
}

// ConnectionDoc is the persisted form of one connection.
type ConnectionDoc struct {
	From         uint32 `yaml:"from" json:"from"`
	FromEndpoint int    `yaml:"from_endpoint" json:"from_endpoint"`
	To           uint32 `yaml:"to" json:"to"`
	ToEndpoint   int    `yaml:"to_endpoint" json:"to_endpoint"`
}
