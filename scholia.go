package scholia

import (
	"context"
	"errors"
	"log/slog"

	"github.com/soundprediction/scholia/pkg/checkpoint"
	"github.com/soundprediction/scholia/pkg/driver"
	"github.com/soundprediction/scholia/pkg/tables"
	"github.com/soundprediction/scholia/pkg/types"
	"github.com/soundprediction/scholia/pkg/workspace"
)

// Scholia is the interface served by Client: building timetables and reading the graph back.
type Scholia interface {
	// BuildTimetable normalizes set, builds the calendar and timetable layers and merges them
	// into the store. database selects a store database when the store supports it; school
	// optionally names the owning school node.
	BuildTimetable(ctx context.Context, set tables.Set, database string, school *types.SchoolRef) (*BuildResult, error)

	// GetNode retrieves a node by unique_id.
	GetNode(ctx context.Context, uniqueID string) (*types.Node, error)

	// ListNodes lists nodes of kind; an empty kind lists every node.
	ListNodes(ctx context.Context, kind types.NodeKind, limit int) ([]*types.Node, error)

	// GetNeighbors returns the nodes directly linked to uniqueID.
	GetNeighbors(ctx context.Context, uniqueID string) ([]types.Neighbor, error)

	// GetStats returns node and relationship counts.
	GetStats(ctx context.Context) (*driver.GraphStats, error)

	// CreateIndices creates uniqueness constraints for every node kind.
	CreateIndices(ctx context.Context) error

	// Close closes the store.
	Close(ctx context.Context) error
}

// Config holds configuration for the scholia client.
type Config struct {
	// DryRun builds results without writing to the store or the workspace.
	DryRun bool
	// CreateIndices creates store constraints before the first write of every build.
	CreateIndices bool
	// CheckpointDir journals every build to this directory when non-empty.
	CheckpointDir string
}

// Client is the main implementation of the Scholia interface.
type Client struct {
	store     driver.GraphStore
	workspace *workspace.Workspace
	config    *Config
	logger    *slog.Logger

	checkpoints *checkpoint.CheckpointManager
}

// ErrNoStore is returned by read operations on a client created without a store.
var ErrNoStore = errors.New("no graph store configured")

// NewClient creates a client. store and ws may be nil: without a store builds are dry runs,
// without a workspace no directories or companion files are written.
func NewClient(store driver.GraphStore, ws *workspace.Workspace, config *Config, logger *slog.Logger) (*Client, error) {
	if config == nil {
		config = &Config{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	client := &Client{
		store:     store,
		workspace: ws,
		config:    config,
		logger:    logger,
	}
	if config.CheckpointDir != "" {
		manager, err := checkpoint.NewCheckpointManager(config.CheckpointDir)
		if err != nil {
			return nil, err
		}
		client.checkpoints = manager
	}
	return client, nil
}

// GetStore returns the underlying graph store
func (c *Client) GetStore() driver.GraphStore {
	return c.store
}

// GetWorkspace returns the workspace, which may be nil
func (c *Client) GetWorkspace() *workspace.Workspace {
	return c.workspace
}

// GetCheckpoints returns the build journal, nil unless Config.CheckpointDir is set
func (c *Client) GetCheckpoints() *checkpoint.CheckpointManager {
	return c.checkpoints
}

// GetNode implements Scholia
func (c *Client) GetNode(ctx context.Context, uniqueID string) (*types.Node, error) {
	if c.store == nil {
		return nil, ErrNoStore
	}
	return c.store.GetNode(ctx, uniqueID)
}

// ListNodes implements Scholia
func (c *Client) ListNodes(ctx context.Context, kind types.NodeKind, limit int) ([]*types.Node, error) {
	if c.store == nil {
		return nil, ErrNoStore
	}
	return c.store.ListNodes(ctx, kind, limit)
}

// GetNeighbors implements Scholia
func (c *Client) GetNeighbors(ctx context.Context, uniqueID string) ([]types.Neighbor, error) {
	if c.store == nil {
		return nil, ErrNoStore
	}
	return c.store.GetNeighbors(ctx, uniqueID)
}

// GetStats implements Scholia
func (c *Client) GetStats(ctx context.Context) (*driver.GraphStats, error) {
	if c.store == nil {
		return nil, ErrNoStore
	}
	return c.store.GetStats(ctx)
}

// CreateIndices implements Scholia
func (c *Client) CreateIndices(ctx context.Context) error {
	if c.store == nil {
		return ErrNoStore
	}
	return c.store.CreateIndices(ctx)
}

// Close implements Scholia
func (c *Client) Close(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	return c.store.Close(ctx)
}
