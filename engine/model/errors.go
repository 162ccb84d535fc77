package model

import "errors"

var (
	ErrNoBones         = errors.New("skeleton has no bones")
	ErrTooManyBones    = errors.New("skeleton exceeds the maximum bone count")
	ErrInvalidParent   = errors.New("bone parent is out of range")
	ErrMultipleRoots   = errors.New("skeleton has more than one root bone")
	ErrBoneOrder       = errors.New("bone appears before its parent")
	ErrDuplicateBone   = errors.New("duplicate bone name")
	ErrEmptyName       = errors.New("name is empty")
	ErrUnsortedKeys    = errors.New("channel keys are not sorted by time")
	ErrInvalidDuration = errors.New("animation duration must be positive")
	ErrDuplicateClip   = errors.New("duplicate animation name")
)
