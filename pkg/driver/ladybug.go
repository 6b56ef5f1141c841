//go:build cgo

package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	ladybug "github.com/LadybugDB/go-ladybug"

	"github.com/soundprediction/scholia/pkg/types"
)

// LadybugDriver implements GraphStore on an embedded Ladybug database. Every node lives in the
// TimetableNode table and every relationship in LINKS, keyed by label and rel_type columns.
type LadybugDriver struct {
	db     *ladybug.Database
	client *ladybug.Connection
	dbPath string
	logger *slog.Logger

	// Ladybug connections are not safe for concurrent use.
	mu sync.Mutex
}

// NewLadybugDriver opens (or creates) a Ladybug database at dbPath. An empty path opens an
// in-memory database.
func NewLadybugDriver(dbPath string, logger *slog.Logger) (*LadybugDriver, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}
	if logger == nil {
		logger = slog.Default()
	}

	systemConfig := ladybug.SystemConfig{
		BufferPoolSize:    256 * 1024 * 1024,
		MaxNumThreads:     1,
		EnableCompression: true,
		ReadOnly:          false,
		MaxDbSize:         1 << 40,
	}
	database, err := ladybug.OpenDatabase(dbPath, systemConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open ladybug database: %w", err)
	}
	client, err := ladybug.OpenConnection(database)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to open ladybug connection: %w", err)
	}

	d := &LadybugDriver{db: database, client: client, dbPath: dbPath, logger: logger}
	if err := d.setupSchema(); err != nil {
		d.Close(context.Background())
		return nil, err
	}
	return d, nil
}

func (k *LadybugDriver) setupSchema() error {
	for _, query := range LadybugSchemaQueries {
		res, err := k.client.Query(query)
		if err != nil {
			return fmt.Errorf("failed to create ladybug schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// execute runs a parameterized query and returns its rows keyed by column name. The caller
// must hold k.mu.
func (k *LadybugDriver) execute(query string, params map[string]any) ([]map[string]any, error) {
	stmt, err := k.client.Prepare(query)
	if err != nil {
		k.logger.Error("Error preparing ladybug query", "error", err, "query", query)
		return nil, err
	}
	results, err := k.client.Execute(stmt, params)
	if err != nil {
		k.logger.Error("Error executing ladybug query", "error", err, "query", query)
		return nil, err
	}
	defer results.Close()

	columns := results.GetColumnNames()
	var rows []map[string]any
	for results.HasNext() {
		tuple, err := results.Next()
		if err != nil {
			return nil, err
		}
		values, err := tuple.GetAsSlice()
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(values))
		for i, v := range values {
			if i < len(columns) {
				row[columns[i]] = v
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// MergeNode creates the node or merges its properties into the stored ones.
func (k *LadybugDriver) MergeNode(ctx context.Context, node *types.Node) error {
	if err := validateNode(node); err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	props := node.Properties()
	rows, err := k.execute(ladybugGetNode, map[string]any{"unique_id": node.UniqueID})
	if err != nil {
		return fmt.Errorf("failed to merge node %s: %w", node.UniqueID, err)
	}
	if len(rows) > 0 {
		existing, err := decodeProperties(rows[0]["properties"])
		if err != nil {
			return err
		}
		for key, v := range props {
			existing[key] = v
		}
		props = existing
	}

	encoded, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("failed to encode properties of %s: %w", node.UniqueID, err)
	}
	_, err = k.execute(ladybugMergeNode, map[string]any{
		"unique_id":  node.UniqueID,
		"label":      node.Kind.Label(),
		"properties": string(encoded),
	})
	if err != nil {
		return fmt.Errorf("failed to merge node %s: %w", node.UniqueID, err)
	}
	return nil
}

// MergeEdge creates the relationship unless it exists. Both endpoints must already exist.
func (k *LadybugDriver) MergeEdge(ctx context.Context, edge *types.Edge) error {
	if err := validateEdge(edge); err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	for _, id := range []string{edge.SourceID, edge.TargetID} {
		rows, err := k.execute(ladybugGetNode, map[string]any{"unique_id": id})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("%w: %s", types.ErrNodeNotFound, id)
		}
	}

	params := map[string]any{
		"source_id": edge.SourceID,
		"target_id": edge.TargetID,
		"rel_type":  string(edge.Type),
	}
	rows, err := k.execute(ladybugEdgeExists, params)
	if err != nil {
		return fmt.Errorf("failed to merge edge %s: %w", edge.Key(), err)
	}
	if len(rows) > 0 {
		if n, _ := AsInt64(rows[0]["existing"]); n > 0 {
			return nil
		}
	}
	if _, err := k.execute(ladybugCreateEdge, params); err != nil {
		return fmt.Errorf("failed to merge edge %s: %w", edge.Key(), err)
	}
	return nil
}

// GetNode retrieves a node by unique_id.
func (k *LadybugDriver) GetNode(ctx context.Context, uniqueID string) (*types.Node, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	rows, err := k.execute(ladybugGetNode, map[string]any{"unique_id": uniqueID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrNodeNotFound, uniqueID)
	}
	return nodeFromRow(rows[0])
}

// ListNodes returns up to limit nodes of kind ordered by unique_id.
func (k *LadybugDriver) ListNodes(ctx context.Context, kind types.NodeKind, limit int) ([]*types.Node, error) {
	if limit <= 0 {
		limit = 100
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	rows, err := k.execute(fmt.Sprintf(ladybugListNodes, limit), map[string]any{"label": string(kind)})
	if err != nil {
		return nil, err
	}
	nodes := make([]*types.Node, 0, len(rows))
	for _, row := range rows {
		node, err := nodeFromRow(row)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// GetNeighbors returns the nodes directly connected to uniqueID in either direction.
func (k *LadybugDriver) GetNeighbors(ctx context.Context, uniqueID string) ([]types.Neighbor, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	rows, err := k.execute(ladybugNeighbors, map[string]any{"unique_id": uniqueID})
	if err != nil {
		return nil, err
	}
	neighbors := make([]types.Neighbor, 0, len(rows))
	for _, row := range rows {
		node, err := nodeFromRow(row)
		if err != nil {
			return nil, err
		}
		relType, err := MustString(row["rel_type"], "rel_type")
		if err != nil {
			return nil, err
		}
		outgoing, _ := AsBool(row["outgoing"])
		neighbors = append(neighbors, types.Neighbor{Node: node, RelType: types.RelType(relType), Outgoing: outgoing})
	}
	return neighbors, nil
}

// CreateIndices is a no-op: the primary key on unique_id is created with the schema.
func (k *LadybugDriver) CreateIndices(ctx context.Context) error {
	return nil
}

// GetStats counts nodes per label and relationships per type.
func (k *LadybugDriver) GetStats(ctx context.Context) (*GraphStats, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	stats := newGraphStats()
	nodeRows, err := k.execute(ladybugNodeStats, map[string]any{})
	if err != nil {
		return nil, err
	}
	for _, row := range nodeRows {
		label, _ := AsString(row["label"])
		count, err := MustInt64(row["node_count"], "node_count")
		if err != nil {
			return nil, err
		}
		stats.NodesByType[label] = count
		stats.NodeCount += count
	}

	edgeRows, err := k.execute(ladybugEdgeStats, map[string]any{})
	if err != nil {
		return nil, err
	}
	for _, row := range edgeRows {
		relType, _ := AsString(row["rel_type"])
		count, err := MustInt64(row["edge_count"], "edge_count")
		if err != nil {
			return nil, err
		}
		stats.EdgesByType[relType] = count
		stats.EdgeCount += count
	}
	return stats, nil
}

// Provider returns the provider type.
func (k *LadybugDriver) Provider() GraphProvider {
	return GraphProviderLadybug
}

// Close releases the connection and the database lock.
func (k *LadybugDriver) Close(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.client != nil {
		k.client.Close()
		k.client = nil
	}
	if k.db != nil {
		k.db.Close()
		k.db = nil
	}
	return nil
}

func nodeFromRow(row map[string]any) (*types.Node, error) {
	label, err := MustString(row["label"], "label")
	if err != nil {
		return nil, err
	}
	kind, err := types.ParseKind(label)
	if err != nil {
		return nil, err
	}
	props, err := decodeProperties(row["properties"])
	if err != nil {
		return nil, err
	}
	return types.NodeFromProperties(kind, props)
}
