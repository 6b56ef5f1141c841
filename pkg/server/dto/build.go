package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/soundprediction/scholia/pkg/tables"
	"github.com/soundprediction/scholia/pkg/types"
)

// Validation errors
var (
	ErrEmptyTables     = errors.New("tables cannot be empty")
	ErrTooManyRows     = errors.New("table exceeds maximum row count")
	ErrDatabaseTooLong = errors.New("database exceeds maximum length (256)")
	ErrSchoolIDMissing = errors.New("school.unique_id is required when school is given")
)

// MaxFieldLengths defines maximum sizes for request fields
const (
	MaxDatabaseLength = 256
	MaxRowsPerTable   = 20000
)

// BuildRequest asks for a timetable build from inline tables.
type BuildRequest struct {
	// Tables maps a table name (school, terms, weeks, days, periods) to its rows.
	Tables   map[string][]map[string]any `json:"tables" binding:"required"`
	Database string                      `json:"database,omitempty"`
	School   *types.SchoolRef            `json:"school,omitempty"`
}

// Validate performs validation on BuildRequest
func (r *BuildRequest) Validate() error {
	if len(r.Tables) == 0 {
		return ErrEmptyTables
	}
	for name, rows := range r.Tables {
		if len(rows) > MaxRowsPerTable {
			return fmt.Errorf("%w: %s has %d rows", ErrTooManyRows, name, len(rows))
		}
	}
	if len(r.Database) > MaxDatabaseLength {
		return ErrDatabaseTooLong
	}
	if r.School != nil && strings.TrimSpace(r.School.UniqueID) == "" {
		return ErrSchoolIDMissing
	}
	return nil
}

// Set converts the inline tables into a table Set.
func (r *BuildRequest) Set() tables.Set {
	return tables.FromRecords(r.Tables)
}

// BuildResponse summarizes a finished build.
type BuildResponse struct {
	RunID        string         `json:"run_id"`
	TimetableID  string         `json:"timetable_id"`
	DryRun       bool           `json:"dry_run"`
	NodesWritten int            `json:"nodes_written"`
	EdgesWritten int            `json:"edges_written"`
	Counts       map[string]int `json:"counts"`
	SkippedDays  []string       `json:"skipped_days,omitempty"`
	Ambiguities  int            `json:"ambiguities"`
}
