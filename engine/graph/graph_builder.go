package graph

import "log/slog"

// GraphBuilderOption is a functional option for configuring a Graph via NewGraph.
type GraphBuilderOption func(*graph)

// WithName is an option builder that sets the display name of the Graph.
//
// Parameters:
//   - name: the graph name
//
// Returns:
//   - GraphBuilderOption: a function that applies the name option to a graph
func WithName(name string) GraphBuilderOption {
	return func(g *graph) {
		g.name = name
	}
}

// WithLogger is an option builder that sets the logger used for structural diagnostics.
//
// Parameters:
//   - logger: the logger to use; nil keeps slog.Default()
//
// Returns:
//   - GraphBuilderOption: a function that applies the logger option to a graph
func WithLogger(logger *slog.Logger) GraphBuilderOption {
	return func(g *graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}
