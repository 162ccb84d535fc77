package nodes

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
)

func propFloat(props map[string]any, key string, dst *float32) error {
	raw, ok := props[key]
	if !ok {
		return nil
	}
	v, err := graph.FromInterface(graph.TypeFloat, raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", graph.ErrInvalidProperty, key, err)
	}
	*dst = v.Float
	return nil
}

func propBool(props map[string]any, key string, dst *bool) error {
	raw, ok := props[key]
	if !ok {
		return nil
	}
	b, ok := raw.(bool)
	if !ok {
		return fmt.Errorf("%w: %s must be a bool, got %T", graph.ErrInvalidProperty, key, raw)
	}
	*dst = b
	return nil
}

func propString(props map[string]any, key string, dst *string) error {
	raw, ok := props[key]
	if !ok {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		return fmt.Errorf("%w: %s must be a string, got %T", graph.ErrInvalidProperty, key, raw)
	}
	*dst = s
	return nil
}

func propNodeID(props map[string]any, key string, dst *graph.NodeID) error {
	raw, ok := props[key]
	if !ok {
		return nil
	}
	v, err := graph.FromInterface(graph.TypeInt, raw)
	if err != nil || v.Int < 0 {
		return fmt.Errorf("%w: %s must be a node id, got %v", graph.ErrInvalidProperty, key, raw)
	}
	*dst = graph.NodeID(v.Int)
	return nil
}

func propFloats(props map[string]any, key string, dst *[]float32) error {
	raw, ok := props[key]
	if !ok {
		return nil
	}
	var items []any
	switch xs := raw.(type) {
	case nil:
		*dst = nil
		return nil
	case []float32:
		*dst = append([]float32(nil), xs...)
		return nil
	case []float64:
		for _, x := range xs {
			items = append(items, x)
		}
	case []any:
		items = xs
	default:
		return fmt.Errorf("%w: %s must be a list of numbers, got %T", graph.ErrInvalidProperty, key, raw)
	}
	out := make([]float32, len(items))
	for i, item := range items {
		v, err := graph.FromInterface(graph.TypeFloat, item)
		if err != nil {
			return fmt.Errorf("%w: %s[%d]: %w", graph.ErrInvalidProperty, key, i, err)
		}
		out[i] = v.Float
	}
	*dst = out
	return nil
}
