package psl

import "errors"

var (
	ErrSyntax            = errors.New("schema syntax error")
	ErrDuplicateTable    = errors.New("duplicate table")
	ErrDuplicateEnum     = errors.New("duplicate enum")
	ErrUnknownAttribute  = errors.New("unknown attribute")
	ErrInvalidArgument   = errors.New("invalid attribute argument")
	ErrUnknownReference  = errors.New("unknown referenced column")
	ErrInvalidTypeParams = errors.New("invalid type parameters")
)
