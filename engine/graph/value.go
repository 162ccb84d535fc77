package graph

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/go-gl/mathgl/mgl32"
)

// ValueType tags the payload held by a Value.
type ValueType uint8

const (
	TypeInt ValueType = iota
	TypeFloat
	TypeBool
	TypeString
	TypeVector2
	TypePose
	TypeBoneMask
)

var valueTypeNames = [...]string{
	TypeInt:      "int",
	TypeFloat:    "float",
	TypeBool:     "bool",
	TypeString:   "string",
	TypeVector2:  "vector2",
	TypePose:     "pose",
	TypeBoneMask: "bone_mask",
}

func (t ValueType) String() string {
	if int(t) < len(valueTypeNames) {
		return valueTypeNames[t]
	}
	return fmt.Sprintf("ValueType(%d)", t)
}

// ParseValueType converts a type name back into a ValueType.
//
// Parameters:
//   - s: the type name as produced by ValueType.String
//
// Returns:
//   - ValueType: the parsed type
//   - error: ErrUnknownValueType if the name is not recognized
func ParseValueType(s string) (ValueType, error) {
	for i, n := range valueTypeNames {
		if n == s {
			return ValueType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownValueType, s)
}

// Value is the unit of data that flows along graph connections.
// Only the field matching Type is meaningful.
type Value struct {
	Type    ValueType
	Int     int64
	Float   float32
	Bool    bool
	String  string
	Vector2 mgl32.Vec2
	Pose    *animator.Pose
	Mask    *animator.BoneMask
}

// IntValue wraps an integer.
func IntValue(v int64) Value { return Value{Type: TypeInt, Int: v} }

// FloatValue wraps a float.
func FloatValue(v float32) Value { return Value{Type: TypeFloat, Float: v} }

// BoolValue wraps a boolean.
func BoolValue(v bool) Value { return Value{Type: TypeBool, Bool: v} }

// StringValue wraps a string.
func StringValue(v string) Value { return Value{Type: TypeString, String: v} }

// Vector2Value wraps a 2D vector.
func Vector2Value(v mgl32.Vec2) Value { return Value{Type: TypeVector2, Vector2: v} }

// PoseValue wraps a pose reference. A nil pose is the neutral value.
func PoseValue(p *animator.Pose) Value { return Value{Type: TypePose, Pose: p} }

// BoneMaskValue wraps a bone mask reference. A nil mask weighs every bone at 1.
func BoneMaskValue(m *animator.BoneMask) Value { return Value{Type: TypeBoneMask, Mask: m} }

// Zero returns the neutral value of a type.
//
// Parameters:
//   - t: the value type
//
// Returns:
//   - Value: the zero value tagged with t
func Zero(t ValueType) Value {
	return Value{Type: t}
}

// Interface returns the payload as a plain Go value for serialization.
// Pose and bone-mask references have no serialized form and yield nil.
//
// Returns:
//   - any: the payload
func (v Value) Interface() any {
	switch v.Type {
	case TypeInt:
		return v.Int
	case TypeFloat:
		return v.Float
	case TypeBool:
		return v.Bool
	case TypeString:
		return v.String
	case TypeVector2:
		return []float32{v.Vector2[0], v.Vector2[1]}
	case TypeBoneMask:
		if v.Mask != nil {
			return v.Mask.Weights()
		}
	}
	return nil
}

// FromInterface converts a plain Go value into a Value of the requested type.
// Numeric inputs are coerced between integer and float kinds.
//
// Parameters:
//   - t: the target type
//   - raw: the decoded payload
//
// Returns:
//   - Value: the converted value
//   - error: ErrTypeMismatch if raw cannot represent t
func FromInterface(t ValueType, raw any) (Value, error) {
	if raw == nil {
		return Zero(t), nil
	}
	switch t {
	case TypeInt:
		if f, ok := toFloat64(raw); ok {
			return IntValue(int64(f)), nil
		}
	case TypeFloat:
		if f, ok := toFloat64(raw); ok {
			return FloatValue(float32(f)), nil
		}
	case TypeBool:
		if b, ok := raw.(bool); ok {
			return BoolValue(b), nil
		}
	case TypeString:
		if s, ok := raw.(string); ok {
			return StringValue(s), nil
		}
	case TypeVector2:
		if xs, ok := toFloats(raw); ok && len(xs) == 2 {
			return Vector2Value(mgl32.Vec2{xs[0], xs[1]}), nil
		}
	case TypePose:
		return Zero(t), nil
	case TypeBoneMask:
		if xs, ok := toFloats(raw); ok {
			m := &animator.BoneMask{}
			m.SetWeights(xs)
			return BoneMaskValue(m), nil
		}
	}
	return Value{}, fmt.Errorf("%w: cannot use %T as %s", ErrTypeMismatch, raw, t)
}

func toFloat64(raw any) (float64, bool) {
	switch n := raw.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toFloats(raw any) ([]float32, bool) {
	switch xs := raw.(type) {
	case []float32:
		return xs, true
	case []any:
		out := make([]float32, len(xs))
		for i, x := range xs {
			f, ok := toFloat64(x)
			if !ok {
				return nil, false
			}
			out[i] = float32(f)
		}
		return out, true
	}
	return nil, false
}
