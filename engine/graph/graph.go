package graph

import (
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
)

var scopeSeq atomic.Uint64

// Connection makes the input ToEndpoint of node To read the output FromEndpoint of node From.
type Connection struct {
	From         NodeID
	FromEndpoint int
	To           NodeID
	ToEndpoint   int
}

type inputKey struct {
	node NodeID
	ep   int
}

// graph is the implementation of the Graph interface.
type graph struct {
	name    string
	logger  *slog.Logger
	scope   uint64
	nodes   map[NodeID]Node
	order   []NodeID
	nextID  NodeID
	conns   map[inputKey]Connection
	output  NodeID
	pass    uint64
	version uint64
}

// Graph is a typed dataflow graph of nodes stored in an arena keyed by NodeID.
//
// Connections alias an input endpoint to an upstream output's storage, so evaluation is a
// post-order walk from the output node: every upstream node evaluates once, then the node itself.
// Connections that would form a cycle are rejected. A Graph is not safe for concurrent use.
type Graph interface {
	// Name returns the graph's display name.
	Name() string

	// AddNode inserts a node and assigns it the next free handle.
	//
	// Parameters:
	//   - n: the node to insert
	//
	// Returns:
	//   - NodeID: the node's handle
	AddNode(n Node) NodeID

	// AddNodeWithID inserts a node under a caller-chosen handle, used when reconstructing a saved graph.
	//
	// Parameters:
	//   - id: the handle to use, which must be non-zero and unused
	//   - n: the node to insert
	//
	// Returns:
	//   - error: ErrDuplicateNode if the handle is zero or taken
	AddNodeWithID(id NodeID, n Node) error

	// RemoveNode disconnects every connection touching the node and removes it.
	// Other handles remain valid.
	//
	// Parameters:
	//   - id: the node to remove
	//
	// Returns:
	//   - error: ErrNodeNotFound if the handle is unknown
	RemoveNode(id NodeID) error

	// Node looks up a node by handle.
	Node(id NodeID) (Node, bool)

	// NodeByName returns the first node, in insertion order, with the given name.
	NodeByName(name string) (Node, bool)

	// Nodes returns every node in insertion order.
	Nodes() []Node

	// Len returns the number of nodes.
	Len() int

	// Rename sets a node's display name.
	//
	// Parameters:
	//   - id: the node to rename
	//   - name: the new name
	//
	// Returns:
	//   - error: ErrNodeNotFound if the handle is unknown
	Rename(id NodeID, name string) error

	// Connect makes an input endpoint alias an output endpoint. An existing connection on the
	// input is replaced. On error the graph is unchanged.
	//
	// Parameters:
	//   - from: the upstream node
	//   - fromEp: the upstream output index
	//   - to: the downstream node
	//   - toEp: the downstream input index
	//
	// Returns:
	//   - error: ErrNodeNotFound, ErrEndpointOutOfRange, ErrTypeMismatch or ErrCycle
	Connect(from NodeID, fromEp int, to NodeID, toEp int) error

	// Disconnect removes the connection feeding an input endpoint and restores its default.
	//
	// Parameters:
	//   - to: the downstream node
	//   - toEp: the downstream input index
	//
	// Returns:
	//   - error: ErrNodeNotFound, ErrEndpointOutOfRange or ErrNotConnected
	Disconnect(to NodeID, toEp int) error

	// Connections returns every connection ordered by destination node and endpoint.
	Connections() []Connection

	// ConnectionTo returns the connection feeding an input endpoint.
	ConnectionTo(to NodeID, toEp int) (Connection, bool)

	// SetOutputNode selects the node evaluation starts from.
	//
	// Parameters:
	//   - id: the output node
	//
	// Returns:
	//   - error: ErrNodeNotFound if the handle is unknown
	SetOutputNode(id NodeID) error

	// OutputNode returns the node evaluation starts from, or InvalidNodeID.
	OutputNode() NodeID

	// ProcessBranch evaluates every node upstream of id, then id itself, skipping nodes already
	// evaluated during the current pass.
	//
	// Parameters:
	//   - id: the branch root
	//   - ctx: the evaluation context
	ProcessBranch(id NodeID, ctx *Context)

	// Evaluate starts a new pass and processes the output node's branch.
	//
	// Parameters:
	//   - ctx: the evaluation context
	//
	// Returns:
	//   - *animator.Pose: the first pose on the output node's inputs or outputs, or nil
	Evaluate(ctx *Context) *animator.Pose

	// Duration returns the longest duration reported by any node in the graph, in seconds.
	Duration(ctx *Context) float32

	// Version increases on every structural change.
	Version() uint64

	// Scope returns the process-unique identity of the graph, used to salt pose-cache keys.
	Scope() uint64
}

var _ Graph = &graph{}

// NewGraph creates a new empty Graph with the specified options applied.
//
// Parameters:
//   - options: a variadic list of GraphBuilderOption functions to configure the Graph
//
// Returns:
//   - Graph: a new instance of Graph configured with the provided options
func NewGraph(options ...GraphBuilderOption) Graph {
	g := &graph{
		logger: slog.Default(),
		scope:  scopeSeq.Add(1),
		nodes:  make(map[NodeID]Node),
		nextID: 1,
		conns:  make(map[inputKey]Connection),
		pass:   1,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

func (g *graph) Name() string {
	return g.name
}

func (g *graph) AddNode(n Node) NodeID {
	id := g.nextID
	g.insert(id, n)
	return id
}

func (g *graph) AddNodeWithID(id NodeID, n Node) error {
	if id == InvalidNodeID {
		return fmt.Errorf("%w: %d", ErrDuplicateNode, id)
	}
	if _, ok := g.nodes[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateNode, id)
	}
	g.insert(id, n)
	return nil
}

func (g *graph) insert(id NodeID, n Node) {
	b := n.base()
	b.id = id
	b.scope = g.scope
	b.pass = 0
	g.nodes[id] = n
	g.order = append(g.order, id)
	if id >= g.nextID {
		g.nextID = id + 1
	}
	g.version++
}

func (g *graph) RemoveNode(id NodeID) error {
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	for _, c := range g.Connections() {
		if c.To == id || c.From == id {
			g.disconnect(c)
		}
	}
	delete(g.nodes, id)
	for i, o := range g.order {
		if o == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	if g.output == id {
		g.output = InvalidNodeID
	}
	g.version++
	g.logger.Debug("removed node", "graph", g.name, "id", id)
	return nil
}

func (g *graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

func (g *graph) NodeByName(name string) (Node, bool) {
	for _, id := range g.order {
		if n := g.nodes[id]; n.Name() == name {
			return n, true
		}
	}
	return nil, false
}

func (g *graph) Nodes() []Node {
	out := make([]Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

func (g *graph) Len() int {
	return len(g.nodes)
}

func (g *graph) Rename(id NodeID, name string) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	n.SetName(name)
	return nil
}

func (g *graph) Connect(from NodeID, fromEp int, to NodeID, toEp int) error {
	src, ok := g.nodes[from]
	if !ok {
		return fmt.Errorf("connect source %d: %w", from, ErrNodeNotFound)
	}
	dst, ok := g.nodes[to]
	if !ok {
		return fmt.Errorf("connect destination %d: %w", to, ErrNodeNotFound)
	}
	outs, ins := src.Outputs(), dst.Inputs()
	if fromEp < 0 || fromEp >= len(outs) {
		return fmt.Errorf("%s output %d: %w", src.Name(), fromEp, ErrEndpointOutOfRange)
	}
	if toEp < 0 || toEp >= len(ins) {
		return fmt.Errorf("%s input %d: %w", dst.Name(), toEp, ErrEndpointOutOfRange)
	}
	if outs[fromEp].Type() != ins[toEp].Type() {
		return fmt.Errorf("%w: %s.%s is %s, %s.%s is %s", ErrTypeMismatch,
			src.Name(), outs[fromEp].Name(), outs[fromEp].Type(),
			dst.Name(), ins[toEp].Name(), ins[toEp].Type())
	}
	if g.reaches(from, to) {
		return fmt.Errorf("%w: %d -> %d", ErrCycle, from, to)
	}

	key := inputKey{to, toEp}
	if old, ok := g.conns[key]; ok {
		g.disconnect(old)
	}
	ins[toEp].alias(outs[fromEp])
	c := Connection{From: from, FromEndpoint: fromEp, To: to, ToEndpoint: toEp}
	g.conns[key] = c
	g.version++
	g.logger.Debug("connected endpoints", "graph", g.name,
		"from", src.Name(), "output", outs[fromEp].Name(), "to", dst.Name(), "input", ins[toEp].Name())
	dst.OnConnect(Input, toEp)
	src.OnConnect(Output, fromEp)
	return nil
}

// reaches reports whether target is upstream of (or equal to) start.
func (g *graph) reaches(start, target NodeID) bool {
	seen := map[NodeID]bool{}
	stack := []NodeID{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == target {
			return true
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		n := g.nodes[cur]
		if n == nil {
			continue
		}
		for i := range n.Inputs() {
			if c, ok := g.conns[inputKey{cur, i}]; ok {
				stack = append(stack, c.From)
			}
		}
	}
	return false
}

func (g *graph) Disconnect(to NodeID, toEp int) error {
	dst, ok := g.nodes[to]
	if !ok {
		return fmt.Errorf("disconnect %d: %w", to, ErrNodeNotFound)
	}
	if toEp < 0 || toEp >= len(dst.Inputs()) {
		return fmt.Errorf("%s input %d: %w", dst.Name(), toEp, ErrEndpointOutOfRange)
	}
	c, ok := g.conns[inputKey{to, toEp}]
	if !ok {
		return fmt.Errorf("%s input %d: %w", dst.Name(), toEp, ErrNotConnected)
	}
	g.disconnect(c)
	g.version++
	return nil
}

func (g *graph) disconnect(c Connection) {
	delete(g.conns, inputKey{c.To, c.ToEndpoint})
	if dst, ok := g.nodes[c.To]; ok {
		ep := dst.Inputs()[c.ToEndpoint]
		ep.detach()
		ep.Restore()
		dst.OnDisconnect(Input, c.ToEndpoint)
	}
	if src, ok := g.nodes[c.From]; ok {
		src.OnDisconnect(Output, c.FromEndpoint)
	}
}

func (g *graph) Connections() []Connection {
	out := make([]Connection, 0, len(g.conns))
	for _, c := range g.conns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].To != out[j].To {
			return out[i].To < out[j].To
		}
		return out[i].ToEndpoint < out[j].ToEndpoint
	})
	return out
}

func (g *graph) ConnectionTo(to NodeID, toEp int) (Connection, bool) {
	c, ok := g.conns[inputKey{to, toEp}]
	return c, ok
}

func (g *graph) SetOutputNode(id NodeID) error {
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("output %d: %w", id, ErrNodeNotFound)
	}
	g.output = id
	g.version++
	return nil
}

func (g *graph) OutputNode() NodeID {
	return g.output
}

func (g *graph) ProcessBranch(id NodeID, ctx *Context) {
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	b := n.base()
	if b.pass == g.pass {
		return
	}
	// Stamp before recursing so a malformed graph cannot recurse forever.
	b.pass = g.pass
	for i := range b.inputs {
		if c, ok := g.conns[inputKey{id, i}]; ok {
			g.ProcessBranch(c.From, ctx)
		}
	}
	n.Evaluate(ctx)
}

func (g *graph) Evaluate(ctx *Context) *animator.Pose {
	g.pass++
	if g.output == InvalidNodeID {
		return nil
	}
	g.ProcessBranch(g.output, ctx)
	n := g.nodes[g.output]
	for _, ep := range n.Inputs() {
		if ep.Type() == TypePose {
			return ep.Value().Pose
		}
	}
	for _, ep := range n.Outputs() {
		if ep.Type() == TypePose {
			return ep.Value().Pose
		}
	}
	return nil
}

func (g *graph) Duration(ctx *Context) float32 {
	var d float32
	for _, id := range g.order {
		if dn, ok := g.nodes[id].(Durationer); ok {
			d = max(d, dn.Duration(ctx))
		}
	}
	return d
}

func (g *graph) Version() uint64 {
	return g.version
}

func (g *graph) Scope() uint64 {
	return g.scope
}
