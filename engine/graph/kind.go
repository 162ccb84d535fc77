package graph

import "fmt"

// Kind is the closed set of node types understood by the runtime and its persistence layer.
type Kind uint8

const (
	KindOutputPose Kind = iota + 1
	KindAnimation
	KindParameter
	KindConstInt
	KindConstFloat
	KindConstBool
	KindConstVector2
	KindCompare
	KindAnd
	KindOr
	KindNot
	KindBlend2D
	KindBlendTree2D
	KindStateMachine
	KindState
	KindTransition
	KindOutputTransition
)

var kindNames = map[Kind]string{
	KindOutputPose:       "output_pose",
	KindAnimation:        "animation",
	KindParameter:        "parameter",
	KindConstInt:         "const_int",
	KindConstFloat:       "const_float",
	KindConstBool:        "const_bool",
	KindConstVector2:     "const_vector2",
	KindCompare:          "compare",
	KindAnd:              "and",
	KindOr:               "or",
	KindNot:              "not",
	KindBlend2D:          "blend_2d",
	KindBlendTree2D:      "blend_tree_2d",
	KindStateMachine:     "state_machine",
	KindState:            "state",
	KindTransition:       "transition",
	KindOutputTransition: "output_transition",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind converts a kind name back into a Kind.
//
// Parameters:
//   - s: the kind name as produced by Kind.String
//
// Returns:
//   - Kind: the parsed kind
//   - error: ErrUnknownKind if the name is not recognized
func ParseKind(s string) (Kind, error) {
	for k, n := range kindNames {
		if n == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := KindOutputPose; k <= KindOutputTransition; k++ {
		out = append(out, k)
	}
	return out
}
