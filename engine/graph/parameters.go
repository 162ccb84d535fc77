package graph

import (
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Parameters is a named, typed blackboard shared by every sub-graph of one animation graph.
// It is safe for concurrent use so gameplay code may write while a scene updates.
type Parameters struct {
	mu     sync.RWMutex
	values map[string]Value
}

// NewParameters creates an empty blackboard.
func NewParameters() *Parameters {
	return &Parameters{values: make(map[string]Value)}
}

// Set stores a value under name.
func (p *Parameters) Set(name string, v Value) {
	p.mu.Lock()
	p.values[name] = v
	p.mu.Unlock()
}

// Get returns the value stored under name.
func (p *Parameters) Get(name string) (Value, bool) {
	p.mu.RLock()
	v, ok := p.values[name]
	p.mu.RUnlock()
	return v, ok
}

// Delete removes a value.
func (p *Parameters) Delete(name string) {
	p.mu.Lock()
	delete(p.values, name)
	p.mu.Unlock()
}

func (p *Parameters) SetFloat(name string, v float32) { p.Set(name, FloatValue(v)) }

func (p *Parameters) SetInt(name string, v int64) { p.Set(name, IntValue(v)) }

func (p *Parameters) SetBool(name string, v bool) { p.Set(name, BoolValue(v)) }

func (p *Parameters) SetString(name string, v string) { p.Set(name, StringValue(v)) }

func (p *Parameters) SetVector2(name string, v mgl32.Vec2) { p.Set(name, Vector2Value(v)) }

// Names returns every parameter name in sorted order.
func (p *Parameters) Names() []string {
	p.mu.RLock()
	out := make([]string, 0, len(p.values))
	for k := range p.values {
		out = append(out, k)
	}
	p.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Snapshot returns a copy of every stored value.
func (p *Parameters) Snapshot() map[string]Value {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]Value, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}
