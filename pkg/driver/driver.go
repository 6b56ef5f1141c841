package driver

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/soundprediction/scholia/pkg/types"
)

// GraphProvider represents the type of graph store backend.
type GraphProvider string

const (
	GraphProviderNeo4j   GraphProvider = "neo4j"
	GraphProviderLadybug GraphProvider = "ladybug"
	GraphProviderBadger  GraphProvider = "badger"
)

// GraphStore is the store contract used by the build and read-back paths.
type GraphStore interface {
	// MergeNode creates the node or updates its properties, keyed on (label, unique_id).
	MergeNode(ctx context.Context, node *types.Node) error
	// MergeEdge creates the relationship between two existing nodes unless it already exists.
	MergeEdge(ctx context.Context, edge *types.Edge) error

	GetNode(ctx context.Context, uniqueID string) (*types.Node, error)
	// ListNodes returns nodes of kind ordered by unique_id. An empty kind lists every node.
	ListNodes(ctx context.Context, kind types.NodeKind, limit int) ([]*types.Node, error)
	GetNeighbors(ctx context.Context, uniqueID string) ([]types.Neighbor, error)

	CreateIndices(ctx context.Context) error
	GetStats(ctx context.Context) (*GraphStats, error)

	Provider() GraphProvider
	Close(ctx context.Context) error
}

// DatabaseSelector is implemented by stores that host several named databases.
type DatabaseSelector interface {
	// WithDatabase returns a store bound to database sharing the same connection.
	WithDatabase(database string) GraphStore
}

// GraphStats holds statistics about the graph.
type GraphStats struct {
	NodeCount   int64            `json:"node_count"`
	EdgeCount   int64            `json:"edge_count"`
	NodesByType map[string]int64 `json:"nodes_by_type"`
	EdgesByType map[string]int64 `json:"edges_by_type"`
	LastUpdated time.Time        `json:"last_updated"`
}

func newGraphStats() *GraphStats {
	return &GraphStats{
		NodesByType: make(map[string]int64),
		EdgesByType: make(map[string]int64),
		LastUpdated: time.Now(),
	}
}

// Config selects and configures a store.
type Config struct {
	Driver   string
	URI      string
	Username string
	Password string
	Database string

	// Path is the on-disk location of embedded stores. Empty means in-memory.
	Path string
}

// NewGraphStore opens the store named by cfg.Driver.
func NewGraphStore(ctx context.Context, cfg *Config, logger *slog.Logger) (GraphStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("graph store config is required")
	}
	switch GraphProvider(cfg.Driver) {
	case GraphProviderNeo4j, "":
		d, err := NewNeo4jDriver(cfg.URI, cfg.Username, cfg.Password, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if err := d.VerifyConnectivity(ctx); err != nil {
			_ = d.Close(ctx)
			return nil, fmt.Errorf("failed to connect to neo4j at %s: %w", cfg.URI, err)
		}
		return d, nil
	case GraphProviderLadybug:
		return NewLadybugDriver(cfg.Path, logger)
	case GraphProviderBadger:
		return NewBadgerDriver(cfg.Path, logger)
	}
	return nil, fmt.Errorf("%w: graph driver %q", types.ErrUnknownVariant, cfg.Driver)
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// checkIdentifier guards labels and relationship types interpolated into queries.
func checkIdentifier(s string) error {
	if !identifierPattern.MatchString(s) {
		return fmt.Errorf("%w: identifier %q", types.ErrInvalidValue, s)
	}
	return nil
}

func validateNode(node *types.Node) error {
	if err := node.Validate(); err != nil {
		return err
	}
	return checkIdentifier(node.Kind.Label())
}

func validateEdge(edge *types.Edge) error {
	if err := edge.Validate(); err != nil {
		return err
	}
	return checkIdentifier(string(edge.Type))
}
