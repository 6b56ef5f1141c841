package scholia

import (
	"context"
	"fmt"

	"github.com/soundprediction/scholia/pkg/checkpoint"
	"github.com/soundprediction/scholia/pkg/driver"
	"github.com/soundprediction/scholia/pkg/types"
)

// persist merges every node of the result batch, then every edge. Nodes come first so that
// each edge finds both endpoints. The first failure stops the pass.
func (c *Client) persist(ctx context.Context, store driver.GraphStore, result *BuildResult, j *journal) error {
	batch := result.Batch

	c.logger.InfoContext(ctx, "Merging nodes", "count", len(batch.Nodes), "provider", store.Provider())
	for _, n := range batch.Nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := store.MergeNode(ctx, n); err != nil {
			return fmt.Errorf("failed to merge node %s: %w", n.UniqueID, err)
		}
		result.NodesWritten++
	}
	c.logger.InfoContext(ctx, "Merged nodes", "count", result.NodesWritten)
	j.step(ctx, checkpoint.StepMergedNodes, result)

	counts := batch.CountByCategory()
	c.logger.InfoContext(ctx, "Merging edges",
		"has", counts[types.CategoryHas],
		"is", counts[types.CategoryIs],
		"follows", counts[types.CategoryFollows])
	for _, e := range batch.Edges {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := store.MergeEdge(ctx, e); err != nil {
			return fmt.Errorf("failed to merge edge %s: %w", e.Key(), err)
		}
		result.EdgesWritten++
	}
	c.logger.InfoContext(ctx, "Merged edges", "count", result.EdgesWritten)
	j.step(ctx, checkpoint.StepMergedEdges, result)
	return nil
}
