package builder

import "errors"

var (
	ErrNoSession         = errors.New("builder is not bound to a session")
	ErrInvalidProjection = errors.New("invalid projection")
	ErrMissingTable      = errors.New("statement needs a table")
	ErrMissingRelation   = errors.New("relation is nil")
)
