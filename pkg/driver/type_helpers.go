package driver

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// TypeConversionError represents an error during type conversion from store values.
type TypeConversionError struct {
	Expected string
	Actual   string
	Field    string
}

func (e *TypeConversionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("type conversion error for field %q: expected %s, got %s", e.Field, e.Expected, e.Actual)
	}
	return fmt.Sprintf("type conversion error: expected %s, got %s", e.Expected, e.Actual)
}

// NewTypeConversionError creates a new TypeConversionError.
func NewTypeConversionError(expected, actual, field string) *TypeConversionError {
	return &TypeConversionError{
		Expected: expected,
		Actual:   actual,
		Field:    field,
	}
}

// AsRecord converts v to *db.Record.
func AsRecord(v any) (*db.Record, bool) {
	record, ok := v.(*db.Record)
	return record, ok && record != nil
}

// AsRecordSlice converts v to []*db.Record.
func AsRecordSlice(v any) ([]*db.Record, bool) {
	records, ok := v.([]*db.Record)
	return records, ok
}

// AsDBNode converts v to dbtype.Node.
func AsDBNode(v any) (dbtype.Node, bool) {
	node, ok := v.(dbtype.Node)
	return node, ok
}

// AsString converts v to string.
func AsString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// AsInt64 converts v to int64. Every signed integer width is accepted since embedded stores
// return narrower types than Neo4j.
func AsInt64(v any) (int64, bool) {
	switch i := v.(type) {
	case int64:
		return i, true
	case int:
		return int64(i), true
	case int32:
		return int64(i), true
	case int16:
		return int64(i), true
	case int8:
		return int64(i), true
	case uint64:
		return int64(i), true
	}
	return 0, false
}

// AsBool converts v to bool.
func AsBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// MustRecord converts v to *db.Record or returns an error.
func MustRecord(v any, field string) (*db.Record, error) {
	record, ok := AsRecord(v)
	if !ok {
		return nil, NewTypeConversionError("*db.Record", fmt.Sprintf("%T", v), field)
	}
	return record, nil
}

// MustRecordSlice converts v to []*db.Record or returns an error.
func MustRecordSlice(v any, field string) ([]*db.Record, error) {
	records, ok := AsRecordSlice(v)
	if !ok {
		return nil, NewTypeConversionError("[]*db.Record", fmt.Sprintf("%T", v), field)
	}
	return records, nil
}

// MustDBNode converts v to dbtype.Node or returns an error.
func MustDBNode(v any, field string) (dbtype.Node, error) {
	node, ok := AsDBNode(v)
	if !ok {
		return dbtype.Node{}, NewTypeConversionError("dbtype.Node", fmt.Sprintf("%T", v), field)
	}
	return node, nil
}

// MustString converts v to string or returns an error.
func MustString(v any, field string) (string, error) {
	s, ok := AsString(v)
	if !ok {
		return "", NewTypeConversionError("string", fmt.Sprintf("%T", v), field)
	}
	return s, nil
}

// MustInt64 converts v to int64 or returns an error.
func MustInt64(v any, field string) (int64, error) {
	i, ok := AsInt64(v)
	if !ok {
		return 0, NewTypeConversionError("int64", fmt.Sprintf("%T", v), field)
	}
	return i, nil
}
