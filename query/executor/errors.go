package executor

import "errors"

var (
	ErrDuplicatePrepared = errors.New("prepared statement name already in use")
	ErrShapeMismatch     = errors.New("result columns do not match the compiled selection")
	ErrNoExecutor        = errors.New("session has no executor")
)
