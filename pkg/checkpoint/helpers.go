package checkpoint

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"
)

// NewCheckpoint creates a checkpoint for a run at the initial step
func NewCheckpoint(runID string) *BuildCheckpoint {
	now := time.Now()
	return &BuildCheckpoint{
		RunID:         runID,
		Step:          StepInitial,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
}

// GetProgress returns a human-readable progress description
func (c *BuildCheckpoint) GetProgress() string {
	currentIdx := -1
	for i, step := range Steps {
		if step == c.Step {
			currentIdx = i
			break
		}
	}
	if currentIdx == -1 {
		return "Unknown step"
	}

	percentage := (float64(currentIdx) / float64(len(Steps)-1)) * 100
	return fmt.Sprintf("%.0f%% (%s)", percentage, c.Step)
}

// Failed reports whether the run stopped on an error.
func (c *BuildCheckpoint) Failed() bool {
	return c.LastError != "" && c.Step != StepCompleted
}

// PartiallyWritten reports whether the run stopped after some merges had landed. Such a graph
// is partially linked until the build is re-run.
func (c *BuildCheckpoint) PartiallyWritten() bool {
	if c.Step == StepCompleted {
		return false
	}
	return c.NodesWritten > 0 || c.EdgesWritten > 0
}

// SaveWithStep is a helper that updates the step and saves in one operation
func (m *CheckpointManager) SaveWithStep(ctx context.Context, checkpoint *BuildCheckpoint, step BuildStep) error {
	checkpoint.Step = step
	return m.Save(ctx, checkpoint)
}

// SaveWithError is a helper that records an error and saves in one operation
func (m *CheckpointManager) SaveWithError(ctx context.Context, checkpoint *BuildCheckpoint, err error) error {
	checkpoint.LastError = err.Error()
	checkpoint.LastErrorStack = string(debug.Stack())
	return m.Save(ctx, checkpoint)
}

// GetNextStep returns the next step in the pipeline after the current step
func GetNextStep(current BuildStep) (BuildStep, error) {
	for i, step := range Steps {
		if step == current && i+1 < len(Steps) {
			return Steps[i+1], nil
		}
	}
	return "", fmt.Errorf("unknown current step: %s", current)
}

// Summary provides a human-readable summary of the checkpoint
func (c *BuildCheckpoint) Summary() string {
	summary := fmt.Sprintf("Run: %s\n", c.RunID)
	if c.SchoolID != "" {
		summary += fmt.Sprintf("School: %s\n", c.SchoolID)
	}
	if c.TimetableID != "" {
		summary += fmt.Sprintf("Timetable: %s\n", c.TimetableID)
	}
	summary += fmt.Sprintf("Progress: %s\n", c.GetProgress())
	summary += fmt.Sprintf("Created: %s\n", c.CreatedAt.Format(time.RFC3339))
	summary += fmt.Sprintf("Last Updated: %s\n", c.LastUpdatedAt.Format(time.RFC3339))
	summary += fmt.Sprintf("Nodes: %d/%d\n", c.NodesWritten, c.NodesTotal)
	summary += fmt.Sprintf("Edges: %d/%d\n", c.EdgesWritten, c.EdgesTotal)

	if c.LastError != "" {
		summary += fmt.Sprintf("Last Error: %s\n", c.LastError)
	}
	return summary
}

// FindFailed returns checkpoints of runs that stopped on an error
func (m *CheckpointManager) FindFailed(ctx context.Context) ([]*BuildCheckpoint, error) {
	checkpoints, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	var failed []*BuildCheckpoint
	for _, checkpoint := range checkpoints {
		if checkpoint.Failed() {
			failed = append(failed, checkpoint)
		}
	}
	return failed, nil
}

// FindStalled returns checkpoints of unfinished runs that haven't been updated recently, such
// as builds killed mid-way.
func (m *CheckpointManager) FindStalled(ctx context.Context, stalledDuration time.Duration) ([]*BuildCheckpoint, error) {
	checkpoints, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-stalledDuration)
	var stalled []*BuildCheckpoint
	for _, checkpoint := range checkpoints {
		if checkpoint.Step != StepCompleted && checkpoint.LastError == "" && checkpoint.LastUpdatedAt.Before(cutoff) {
			stalled = append(stalled, checkpoint)
		}
	}
	return stalled, nil
}
