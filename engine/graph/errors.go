package graph

import "errors"

var (
	ErrNodeNotFound       = errors.New("node not found")
	ErrDuplicateNode      = errors.New("node id already in use")
	ErrEndpointOutOfRange = errors.New("endpoint index out of range")
	ErrTypeMismatch       = errors.New("endpoint types do not match")
	ErrCycle              = errors.New("connection would create a cycle")
	ErrNotConnected       = errors.New("endpoint is not connected")
	ErrUnknownKind        = errors.New("unknown node kind")
	ErrUnknownValueType   = errors.New("unknown value type")
	ErrInvalidProperty    = errors.New("invalid node property")
)
