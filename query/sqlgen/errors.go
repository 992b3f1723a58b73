package sqlgen

import "errors"

var (
	ErrUnknownProvider     = errors.New("unknown provider")
	ErrMissingPlaceholder  = errors.New("missing value for placeholder")
	ErrTemplateArgs        = errors.New("template argument count mismatch")
	ErrUnresolvedColumn    = errors.New("column references a relation that is not part of the query")
	ErrUnaliasedField      = errors.New("subquery field has no alias")
	ErrNoStatementRenderer = errors.New("no statement renderer configured")
)
