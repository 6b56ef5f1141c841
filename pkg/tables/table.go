// Package tables reads and normalizes the five input tables (school, terms, weeks, days,
// periods) that describe a school timetable.
package tables

import (
	"strings"
)

// Table names expected in a Set.
const (
	TableSchool  = "school"
	TableTerms   = "terms"
	TableWeeks   = "weeks"
	TableDays    = "days"
	TablePeriods = "periods"
)

// Names lists the required tables in processing order.
var Names = []string{TableSchool, TableTerms, TableWeeks, TableDays, TablePeriods}

// Row is one table row keyed by column header. Cell values are whatever the reader produced:
// strings, numbers, time.Time values or nil for empty cells.
type Row map[string]any

// Value returns the cell for column, matching headers case-insensitively and ignoring
// spaces and underscores.
func (r Row) Value(column string) (any, bool) {
	if v, ok := r[column]; ok {
		return v, !isBlank(v)
	}
	want := normalizeHeader(column)
	for k, v := range r {
		if normalizeHeader(k) == want {
			return v, !isBlank(v)
		}
	}
	return nil, false
}

// String returns the cell for column as a trimmed string.
func (r Row) String(column string) string {
	v, ok := r.Value(column)
	if !ok {
		return ""
	}
	return asString(v)
}

// Table is a named, ordered set of rows.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// NewTable builds a table from a header and positional records.
func NewTable(name string, header []string, records [][]any) *Table {
	t := &Table{Name: name, Columns: header}
	for _, rec := range records {
		row := make(Row, len(header))
		empty := true
		for i, col := range header {
			if i >= len(rec) {
				break
			}
			row[col] = rec[i]
			if !isBlank(rec[i]) {
				empty = false
			}
		}
		if !empty {
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

// Set is the mapping of table name to table that a build consumes.
type Set map[string]*Table

// Get returns a table by name, ignoring case.
func (s Set) Get(name string) (*Table, bool) {
	if t, ok := s[name]; ok && t != nil {
		return t, true
	}
	for k, t := range s {
		if strings.EqualFold(k, name) && t != nil {
			return t, true
		}
	}
	return nil, false
}

// byteOrderMark prefixes files saved as "CSV UTF-8" by spreadsheet tools.
const byteOrderMark = "\ufeff"

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, byteOrderMark)))
	h = strings.ReplaceAll(h, " ", "")
	return strings.ReplaceAll(h, "_", "")
}
