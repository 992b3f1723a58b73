package compiler

import "errors"

var (
	ErrUnsupportedQuery     = errors.New("unsupported query type")
	ErrUnsupported          = errors.New("not supported by dialect")
	ErrConflictTarget       = errors.New("on conflict do update requires a target")
	ErrMissingJoinCondition = errors.New("join requires an on condition")
	ErrEmptySet             = errors.New("update requires at least one assignment")
	ErrEmptyInsert          = errors.New("insert requires at least one row")
	ErrInvalidCount         = errors.New("limit and offset must be non-negative integers or placeholders")
	ErrEmptyProjection      = errors.New("projection selects no fields")
	ErrMissingTable         = errors.New("statement has no target table")
	ErrDuplicateRelation    = errors.New("relation name used twice in one statement")
	ErrLockRelation         = errors.New("locked relation is not part of the statement")
)
