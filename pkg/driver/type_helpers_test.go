package driver

import (
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeConversionError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *TypeConversionError
		expected string
	}{
		{
			name:     "with field",
			err:      NewTypeConversionError("string", "int64", "unique_id"),
			expected: `type conversion error for field "unique_id": expected string, got int64`,
		},
		{
			name:     "without field",
			err:      NewTypeConversionError("dbtype.Node", "nil", ""),
			expected: "type conversion error: expected dbtype.Node, got nil",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAsInt64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  any
		want   int64
		wantOK bool
	}{
		{"int64", int64(42), 42, true},
		{"int", 7, 7, true},
		{"int32", int32(-3), -3, true},
		{"uint64", uint64(9), 9, true},
		{"string", "42", 0, false},
		{"float", 4.2, 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := AsInt64(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMustHelpers(t *testing.T) {
	t.Parallel()

	s, err := MustString("AcademicDay", "label")
	require.NoError(t, err)
	assert.Equal(t, "AcademicDay", s)

	_, err = MustString(3, "label")
	var convErr *TypeConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "label", convErr.Field)
	assert.Equal(t, "int", convErr.Actual)

	_, err = MustInt64("x", "count")
	assert.ErrorAs(t, err, &convErr)

	node, err := MustDBNode(dbtype.Node{Labels: []string{"AcademicDay"}}, "n")
	require.NoError(t, err)
	assert.Equal(t, []string{"AcademicDay"}, node.Labels)

	_, err = MustDBNode("nope", "n")
	assert.Error(t, err)

	_, err = MustRecord(nil, "record")
	assert.Error(t, err)
}

func TestDecodeProperties(t *testing.T) {
	t.Parallel()

	props, err := decodeProperties(`{"unique_id":"x","year":2024}`)
	require.NoError(t, err)
	assert.Equal(t, "x", props["unique_id"])
	assert.Equal(t, float64(2024), props["year"])

	props, err = decodeProperties([]byte(`{"name":"Spring"}`))
	require.NoError(t, err)
	assert.Equal(t, "Spring", props["name"])

	for _, empty := range []any{nil, ""} {
		props, err = decodeProperties(empty)
		require.NoError(t, err)
		assert.Empty(t, props)
	}

	_, err = decodeProperties(42)
	assert.Error(t, err)
	_, err = decodeProperties("{broken")
	assert.Error(t, err)
}
