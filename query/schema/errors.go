package schema

import "errors"

var (
	ErrDuplicateColumn     = errors.New("duplicate column")
	ErrMalformedConstraint = errors.New("malformed constraint")
	ErrUnknownColumn       = errors.New("unknown column")
	ErrInvalidEnumValue    = errors.New("value is not a member of the enum")
	ErrDecode              = errors.New("cannot decode column value")
	ErrArrayLiteral        = errors.New("malformed array literal")
)
