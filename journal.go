package scholia

import (
	"context"
	"log/slog"

	"github.com/soundprediction/scholia/pkg/checkpoint"
	"github.com/soundprediction/scholia/pkg/types"
)

// journal records the progress of one build in the checkpoint directory. A nil manager makes
// every call a no-op, and a journal write that fails is logged without failing the build.
type journal struct {
	manager *checkpoint.CheckpointManager
	record  *checkpoint.BuildCheckpoint
	logger  *slog.Logger
}

func (c *Client) newJournal(ctx context.Context, runID, database string, logger *slog.Logger) *journal {
	j := &journal{manager: c.checkpoints, logger: logger}
	if j.manager == nil {
		return j
	}
	j.record = checkpoint.NewCheckpoint(runID)
	j.record.Database = database
	if source, ok := ctx.Value(types.ContextKeyRequestSource).(string); ok {
		j.record.Source = source
	}
	j.save(ctx)
	return j
}

// normalized records the school the tables belong to.
func (j *journal) normalized(ctx context.Context, schoolID string) {
	if j.record == nil {
		return
	}
	j.record.SchoolID = schoolID
	j.step(ctx, checkpoint.StepNormalized, nil)
}

// step records that the build reached step, copying the counts of result when given.
func (j *journal) step(ctx context.Context, step checkpoint.BuildStep, result *BuildResult) {
	if j.record == nil {
		return
	}
	if result != nil {
		j.record.DryRun = result.DryRun
		j.record.NodesTotal = len(result.Batch.Nodes)
		j.record.EdgesTotal = len(result.Batch.Edges)
		j.record.NodesWritten = result.NodesWritten
		j.record.EdgesWritten = result.EdgesWritten
		if result.TimetableLayer != nil && result.TimetableLayer.Timetable != nil {
			j.record.TimetableID = result.TimetableLayer.Timetable.UniqueID
		}
	}
	j.record.Step = step
	j.save(ctx)
}

// fail records err against the step the build last reached.
func (j *journal) fail(ctx context.Context, result *BuildResult, err error) {
	if j.record == nil {
		return
	}
	if result != nil {
		j.record.NodesWritten = result.NodesWritten
		j.record.EdgesWritten = result.EdgesWritten
	}
	// the build context may already be cancelled
	if saveErr := j.manager.SaveWithError(context.WithoutCancel(ctx), j.record, err); saveErr != nil {
		j.logger.Warn("Failed to save build checkpoint", "error", saveErr)
	}
}

func (j *journal) save(ctx context.Context) {
	if err := j.manager.Save(ctx, j.record); err != nil {
		j.logger.Warn("Failed to save build checkpoint", "step", j.record.Step, "error", err)
	}
}
