package scholia

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/soundprediction/scholia/pkg/calendar"
	"github.com/soundprediction/scholia/pkg/checkpoint"
	"github.com/soundprediction/scholia/pkg/driver"
	"github.com/soundprediction/scholia/pkg/tables"
	"github.com/soundprediction/scholia/pkg/timetable"
	"github.com/soundprediction/scholia/pkg/types"
)

// BuildResult is the outcome of one timetable build.
type BuildResult struct {
	RunID string `json:"run_id"`

	// School is the owning school node, nil when none was given.
	School *types.Node `json:"school,omitempty"`
	// Calendar holds the calendar layer keyed by role (calendar_node, calendar_year_nodes, ...).
	Calendar map[string][]*types.Node `json:"calendar"`
	// Timetable holds the timetable layer keyed by role (timetable_node, academic_year_nodes, ...).
	Timetable map[string][]*types.Node `json:"timetable"`

	Report timetable.Report `json:"report"`

	// NodesWritten and EdgesWritten count merges sent to the store; zero on dry runs.
	NodesWritten int `json:"nodes_written"`
	EdgesWritten int `json:"edges_written"`
	DryRun       bool `json:"dry_run"`

	// Batch holds every calendar and timetable node and edge in write order.
	Batch *types.Batch `json:"-"`

	CalendarLayer  *calendar.Result  `json:"-"`
	TimetableLayer *timetable.Result `json:"-"`
}

// BuildTimetable implements Scholia. Precondition failures in the tables abort before anything
// is written; a store failure aborts the persistence pass and is returned unchanged in the
// error chain. Nothing is retried: re-running the build is safe because every write merges.
func (c *Client) BuildTimetable(ctx context.Context, set tables.Set, database string, school *types.SchoolRef) (*BuildResult, error) {
	runID := uuid.New().String()
	ctx = context.WithValue(ctx, types.ContextKeyRunID, runID)
	logger := c.logger.With("run_id", runID)
	started := time.Now()
	j := c.newJournal(ctx, runID, database, logger)

	in, err := tables.Normalize(set, school)
	if err != nil {
		logger.ErrorContext(ctx, "Invalid timetable tables", "error", err)
		j.fail(ctx, nil, err)
		return nil, fmt.Errorf("failed to normalize tables: %w", err)
	}
	j.normalized(ctx, in.School.ID)
	logger.InfoContext(ctx, "Normalized timetable tables",
		"school", in.School.ID,
		"start", in.School.Start.Format(types.DateLayout),
		"end", in.School.End.Format(types.DateLayout),
		"terms", len(in.Terms),
		"weeks", len(in.Weeks),
		"days", len(in.Days),
		"periods", len(in.Periods))

	cal := calendar.NewBuilder(logger).Build(in.School.Start, in.School.End)

	tt, err := timetable.NewBuilder(logger).Build(in, cal, school)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to build timetable", "error", err)
		j.fail(ctx, nil, err)
		return nil, err
	}

	batch := types.NewBatch()
	batch.Merge(cal.Batch)
	batch.Merge(tt.Batch)

	result := &BuildResult{
		RunID:          runID,
		School:         tt.School,
		Calendar:       cal.Collections(),
		Timetable:      tt.Collections(),
		Report:         tt.Report,
		Batch:          batch,
		CalendarLayer:  cal,
		TimetableLayer: tt,
		DryRun:         c.store == nil || c.config.DryRun,
	}
	j.step(ctx, checkpoint.StepBuilt, result)

	if result.DryRun {
		logger.InfoContext(ctx, "Dry run, skipping persistence",
			"nodes", len(batch.Nodes),
			"edges", len(batch.Edges))
		j.step(ctx, checkpoint.StepCompleted, result)
		return result, nil
	}

	if c.workspace != nil {
		if err := c.materialize(tt, in.School.ID, school); err != nil {
			logger.ErrorContext(ctx, "Failed to prepare workspace", "error", err)
			j.fail(ctx, result, err)
			return nil, err
		}
		j.step(ctx, checkpoint.StepMaterialized, result)
	}

	store := c.storeFor(database)
	if c.config.CreateIndices {
		if err := store.CreateIndices(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to create indices", "error", err)
			j.fail(ctx, result, err)
			return nil, fmt.Errorf("failed to create indices: %w", err)
		}
		j.step(ctx, checkpoint.StepIndexed, result)
	}

	if err := c.persist(ctx, store, result, j); err != nil {
		logger.ErrorContext(ctx, "Build aborted", "error", err,
			"nodes_written", result.NodesWritten,
			"edges_written", result.EdgesWritten)
		j.fail(ctx, result, err)
		return nil, err
	}
	j.step(ctx, checkpoint.StepCompleted, result)

	logger.InfoContext(ctx, "Built timetable graph",
		"timetable", tt.Timetable.UniqueID,
		"nodes_written", result.NodesWritten,
		"edges_written", result.EdgesWritten,
		"duration", time.Since(started))
	return result, nil
}

// storeFor returns the store bound to database when the store supports selection.
func (c *Client) storeFor(database string) driver.GraphStore {
	if database == "" {
		return c.store
	}
	if sel, ok := c.store.(driver.DatabaseSelector); ok {
		return sel.WithDatabase(database)
	}
	c.logger.Warn("Store does not support database selection, ignoring",
		"provider", c.store.Provider(),
		"database", database)
	return c.store
}

// materialize assigns workspace paths to directory-backed timetable nodes, creating each
// directory and its companion file.
func (c *Client) materialize(tt *timetable.Result, schoolID string, school *types.SchoolRef) error {
	root := c.workspace.TimetableDir(schoolID, school)

	nodes := []*types.Node{tt.Timetable}
	nodes = append(nodes, tt.Years...)
	nodes = append(nodes, tt.Terms...)
	nodes = append(nodes, tt.Weeks...)
	nodes = append(nodes, tt.Days...)
	nodes = append(nodes, tt.Periods...)

	for _, n := range nodes {
		var day *types.Node
		if n.Kind.IsPeriod() {
			day, _ = tt.DayOf(n.UniqueID)
		}
		dir, ok := c.workspace.NodeDir(root, n, day)
		if !ok {
			continue
		}
		if err := c.workspace.Materialize(dir, n); err != nil {
			return err
		}
	}
	return nil
}
