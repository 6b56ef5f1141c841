// Package checkpoint journals timetable builds. A build is not atomic: a store failure midway
// leaves part of the graph written. Each run therefore keeps a small JSON record of the step
// it reached and how many merges landed, so an operator can see what to re-run.
package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrInvalidRunID is returned when a run ID contains invalid characters
var ErrInvalidRunID = errors.New("invalid run ID: contains path traversal or invalid characters")

// BuildStep represents a step in the build pipeline
type BuildStep string

const (
	StepInitial      BuildStep = "initial"
	StepNormalized   BuildStep = "normalized"
	StepBuilt        BuildStep = "built"
	StepMaterialized BuildStep = "materialized"
	StepIndexed      BuildStep = "indexed"
	StepMergedNodes  BuildStep = "merged_nodes"
	StepMergedEdges  BuildStep = "merged_edges"
	StepCompleted    BuildStep = "completed"
)

// Steps lists the build steps in pipeline order.
var Steps = []BuildStep{
	StepInitial,
	StepNormalized,
	StepBuilt,
	StepMaterialized,
	StepIndexed,
	StepMergedNodes,
	StepMergedEdges,
	StepCompleted,
}

// BuildCheckpoint is the journal record of one build run
type BuildCheckpoint struct {
	RunID       string    `json:"run_id"`
	SchoolID    string    `json:"school_id,omitempty"`
	TimetableID string    `json:"timetable_id,omitempty"`
	Database    string    `json:"database,omitempty"`
	Source      string    `json:"source,omitempty"`
	Step        BuildStep `json:"step"`
	DryRun      bool      `json:"dry_run"`

	CreatedAt     time.Time `json:"created_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`

	NodesTotal   int `json:"nodes_total"`
	EdgesTotal   int `json:"edges_total"`
	NodesWritten int `json:"nodes_written"`
	EdgesWritten int `json:"edges_written"`

	LastError      string `json:"last_error,omitempty"`
	LastErrorStack string `json:"last_error_stack,omitempty"`
}

// CheckpointManager manages build checkpoints
type CheckpointManager struct {
	checkpointDir string
}

// NewCheckpointManager creates a new checkpoint manager
// If checkpointDir is empty, uses os.TempDir()/scholia-checkpoints
func NewCheckpointManager(checkpointDir string) (*CheckpointManager, error) {
	if checkpointDir == "" {
		checkpointDir = filepath.Join(os.TempDir(), "scholia-checkpoints")
	}

	if err := os.MkdirAll(checkpointDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	return &CheckpointManager{
		checkpointDir: checkpointDir,
	}, nil
}

// validateRunID checks that the run ID is safe for use in file paths.
func validateRunID(runID string) error {
	if runID == "" {
		return ErrInvalidRunID
	}
	if strings.Contains(runID, "..") {
		return ErrInvalidRunID
	}
	if strings.ContainsAny(runID, `/\`) {
		return ErrInvalidRunID
	}
	if strings.ContainsRune(runID, '\x00') {
		return ErrInvalidRunID
	}
	return nil
}

// isPathWithinDirectory checks that the resolved path is within the expected directory.
func isPathWithinDirectory(path, directory string) bool {
	cleanPath := filepath.Clean(path)
	cleanDir := filepath.Clean(directory)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}

	return strings.HasPrefix(cleanPath, cleanDir) || cleanPath == filepath.Clean(directory)
}

// GetCheckpointPath returns the file path for a run's checkpoint.
func (m *CheckpointManager) GetCheckpointPath(runID string) (string, error) {
	if err := validateRunID(runID); err != nil {
		return "", err
	}

	fullPath := filepath.Join(m.checkpointDir, fmt.Sprintf("build_%s.json", runID))
	if !isPathWithinDirectory(fullPath, m.checkpointDir) {
		return "", ErrInvalidRunID
	}
	return fullPath, nil
}

// Save persists the checkpoint to disk
func (m *CheckpointManager) Save(ctx context.Context, checkpoint *BuildCheckpoint) error {
	checkpoint.LastUpdatedAt = time.Now()

	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	checkpointPath, err := m.GetCheckpointPath(checkpoint.RunID)
	if err != nil {
		return fmt.Errorf("invalid run ID: %w", err)
	}

	// Write to a temporary file first, then rename for atomic write
	tmpPath := checkpointPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint file: %w", err)
	}
	if err := os.Rename(tmpPath, checkpointPath); err != nil {
		return fmt.Errorf("failed to rename checkpoint file: %w", err)
	}
	return nil
}

// Load retrieves a checkpoint from disk. A missing checkpoint is (nil, nil).
func (m *CheckpointManager) Load(ctx context.Context, runID string) (*BuildCheckpoint, error) {
	checkpointPath, err := m.GetCheckpointPath(runID)
	if err != nil {
		return nil, fmt.Errorf("invalid run ID: %w", err)
	}

	data, err := os.ReadFile(checkpointPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	var checkpoint BuildCheckpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return &checkpoint, nil
}

// Delete removes a checkpoint from disk
func (m *CheckpointManager) Delete(ctx context.Context, runID string) error {
	checkpointPath, err := m.GetCheckpointPath(runID)
	if err != nil {
		return fmt.Errorf("invalid run ID: %w", err)
	}

	if err := os.Remove(checkpointPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete checkpoint file: %w", err)
	}
	return nil
}

// List returns every checkpoint in the directory, most recently updated first.
func (m *CheckpointManager) List(ctx context.Context) ([]*BuildCheckpoint, error) {
	entries, err := os.ReadDir(m.checkpointDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint directory: %w", err)
	}

	var checkpoints []*BuildCheckpoint
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(m.checkpointDir, entry.Name()))
		if err != nil {
			continue
		}
		var checkpoint BuildCheckpoint
		if err := json.Unmarshal(data, &checkpoint); err != nil {
			continue
		}
		checkpoints = append(checkpoints, &checkpoint)
	}

	sort.SliceStable(checkpoints, func(i, j int) bool {
		return checkpoints[i].LastUpdatedAt.After(checkpoints[j].LastUpdatedAt)
	})
	return checkpoints, nil
}

// GetCheckpointDir returns the checkpoint directory path
func (m *CheckpointManager) GetCheckpointDir() string {
	return m.checkpointDir
}

// CleanOld removes checkpoints older than maxAge and reports how many were removed.
func (m *CheckpointManager) CleanOld(ctx context.Context, maxAge time.Duration) (int, error) {
	checkpoints, err := m.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, checkpoint := range checkpoints {
		if checkpoint.LastUpdatedAt.Before(cutoff) {
			if err := m.Delete(ctx, checkpoint.RunID); err != nil {
				continue
			}
			removed++
		}
	}
	return removed, nil
}
