package document

import "errors"

var (
	ErrUnsupportedVersion = errors.New("unsupported document version")
	ErrInvalidDocument    = errors.New("invalid document")
	ErrUnknownInput       = errors.New("unknown input endpoint")
)
