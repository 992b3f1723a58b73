package ast

import "errors"

var (
	ErrMissingFrom       = errors.New("select has no from relation")
	ErrUnknownRelation   = errors.New("relation has no known fields")
	ErrUnaliasedSubquery = errors.New("subquery used as a relation needs an alias")
	ErrUnknownField      = errors.New("subquery has no such field")
)
