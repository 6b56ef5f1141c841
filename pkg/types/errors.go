package types

import (
	"errors"
	"fmt"
)

// Precondition and lookup errors
var (
	ErrMissingTable   = errors.New("required table is missing")
	ErrMissingField   = errors.New("required field is missing")
	ErrInvalidValue   = errors.New("invalid value")
	ErrUnknownVariant = errors.New("unknown variant")
	ErrNodeNotFound   = errors.New("node not found")
	ErrNilNode        = errors.New("cannot merge nil node")
	ErrNilEdge        = errors.New("cannot merge nil edge")
	ErrEmptyUniqueID  = errors.New("unique_id cannot be empty")
)

// RowError locates a failure in an input table.
type RowError struct {
	Table  string
	Row    int // 1-based, header excluded
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("table %q row %d column %q: %v", e.Table, e.Row, e.Column, e.Err)
	}
	return fmt.Sprintf("table %q row %d: %v", e.Table, e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
