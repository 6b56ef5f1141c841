//go:build !cgo

package driver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/soundprediction/scholia/pkg/types"
)

// ErrCGORequired is returned when Ladybug operations are called without CGO support
var ErrCGORequired = errors.New("ladybug driver requires CGO; build with CGO_ENABLED=1")

// LadybugDriver is a stub implementation when CGO is disabled.
// All methods return ErrCGORequired.
type LadybugDriver struct{}

// NewLadybugDriver returns an error when CGO is disabled
func NewLadybugDriver(dbPath string, logger *slog.Logger) (*LadybugDriver, error) {
	return nil, ErrCGORequired
}

// MergeNode returns ErrCGORequired
func (k *LadybugDriver) MergeNode(ctx context.Context, node *types.Node) error {
	return ErrCGORequired
}

// MergeEdge returns ErrCGORequired
func (k *LadybugDriver) MergeEdge(ctx context.Context, edge *types.Edge) error {
	return ErrCGORequired
}

// GetNode returns ErrCGORequired
func (k *LadybugDriver) GetNode(ctx context.Context, uniqueID string) (*types.Node, error) {
	return nil, ErrCGORequired
}

// ListNodes returns ErrCGORequired
func (k *LadybugDriver) ListNodes(ctx context.Context, kind types.NodeKind, limit int) ([]*types.Node, error) {
	return nil, ErrCGORequired
}

// GetNeighbors returns ErrCGORequired
func (k *LadybugDriver) GetNeighbors(ctx context.Context, uniqueID string) ([]types.Neighbor, error) {
	return nil, ErrCGORequired
}

// CreateIndices returns ErrCGORequired
func (k *LadybugDriver) CreateIndices(ctx context.Context) error {
	return ErrCGORequired
}

// GetStats returns ErrCGORequired
func (k *LadybugDriver) GetStats(ctx context.Context) (*GraphStats, error) {
	return nil, ErrCGORequired
}

// Provider returns GraphProviderLadybug
func (k *LadybugDriver) Provider() GraphProvider {
	return GraphProviderLadybug
}

// Close returns nil
func (k *LadybugDriver) Close(ctx context.Context) error {
	return nil
}
