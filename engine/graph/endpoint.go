package graph

// Direction distinguishes input endpoints from output endpoints.
type Direction uint8

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// Endpoint is a typed input or output slot on a node.
// An input connected to an upstream output aliases that output's storage, so reading it after
// the upstream node evaluates yields the value written this pass.
type Endpoint struct {
	name  string
	typ   ValueType
	def   Value
	local Value
	ptr   *Value
}

func newEndpoint(name string, def Value) *Endpoint {
	ep := &Endpoint{name: name, typ: def.Type, def: def, local: def}
	ep.ptr = &ep.local
	return ep
}

// Name returns the endpoint's display name.
func (e *Endpoint) Name() string { return e.name }

// Type returns the endpoint's value type.
func (e *Endpoint) Type() ValueType { return e.typ }

// Default returns the value restored when the endpoint is disconnected.
func (e *Endpoint) Default() Value { return e.def }

// Value returns the endpoint's current value, following the connection if there is one.
func (e *Endpoint) Value() Value { return *e.ptr }

// Connected reports whether the endpoint reads another endpoint's storage.
func (e *Endpoint) Connected() bool { return e.ptr != &e.local }

// SetDefault replaces the endpoint's default value. An unconnected endpoint also takes the new value.
//
// Parameters:
//   - v: the new default, which must have the endpoint's type
//
// Returns:
//   - error: ErrTypeMismatch if the types differ
func (e *Endpoint) SetDefault(v Value) error {
	if v.Type != e.typ {
		return ErrTypeMismatch
	}
	e.def = v
	if !e.Connected() {
		e.local = v
	}
	return nil
}

// Set writes a value into the endpoint's own storage.
// Writes to a connected input are not visible until it is disconnected.
func (e *Endpoint) Set(v Value) {
	v.Type = e.typ
	e.local = v
}

// Restore resets the endpoint's own storage to its default value.
func (e *Endpoint) Restore() {
	e.local = e.def
}

func (e *Endpoint) alias(src *Endpoint) {
	e.ptr = src.ptr
}

func (e *Endpoint) detach() {
	e.ptr = &e.local
}
