package graph

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// Context carries the per-pass inputs every node may read.
type Context struct {
	// DeltaTime is the frame time in seconds.
	DeltaTime float32

	// TimeMultiplier scales DeltaTime for clip playback; transitions adjust it per side.
	TimeMultiplier float32

	// Frame is a monotonically increasing frame counter.
	Frame uint64

	Controller animator.Controller
	Model      model.Model
	Parameters *Parameters
	Observer   Observer
	Logger     *slog.Logger
}

// NewContext creates a context with a unit time multiplier.
//
// Parameters:
//   - dt: the frame time in seconds
//   - controller: the pose controller of the evaluating entity
//   - m: the model providing the skeleton and clips
//   - params: the parameter blackboard, or nil
//
// Returns:
//   - *Context: the new context
func NewContext(dt float32, controller animator.Controller, m model.Model, params *Parameters) *Context {
	if params == nil {
		params = NewParameters()
	}
	return &Context{
		DeltaTime:      dt,
		TimeMultiplier: 1,
		Controller:     controller,
		Model:          m,
		Parameters:     params,
		Observer:       NopObserver{},
		Logger:         slog.Default(),
	}
}

// Skeleton returns the model's skeleton, or nil.
func (c *Context) Skeleton() *model.Skeleton {
	if c.Model == nil {
		return nil
	}
	return c.Model.Skeleton()
}

// ScaledDelta returns DeltaTime * TimeMultiplier.
func (c *Context) ScaledDelta() float32 {
	return c.DeltaTime * c.TimeMultiplier
}

// WithTimeMultiplier returns a copy of the context whose time multiplier is scaled by m.
//
// Parameters:
//   - m: the factor to apply
//
// Returns:
//   - *Context: the derived context
func (c *Context) WithTimeMultiplier(m float32) *Context {
	cp := *c
	cp.TimeMultiplier = c.TimeMultiplier * m
	return &cp
}

// Log returns the context logger, falling back to slog.Default().
func (c *Context) Log() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Notify forwards a transition event to the observer, if any.
func (c *Context) Notify(e TransitionEvent) {
	if c.Observer != nil {
		c.Observer.OnTransition(e)
	}
}
