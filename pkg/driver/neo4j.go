package driver

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/soundprediction/scholia/pkg/types"
)

// Neo4jDriver implements GraphStore for Neo4j. Each node kind is a label and each relationship
// type a native relationship type.
type Neo4jDriver struct {
	client   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewNeo4jDriver creates a new Neo4j driver instance.
func NewNeo4jDriver(uri, username, password, database string, logger *slog.Logger) (*Neo4jDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Neo4jDriver{
		client:   driver,
		database: database,
		logger:   logger,
	}, nil
}

// WithDatabase returns a driver bound to database that shares this driver's connection pool.
func (n *Neo4jDriver) WithDatabase(database string) GraphStore {
	if database == "" || database == n.database {
		return n
	}
	return &Neo4jDriver{client: n.client, database: database, logger: n.logger}
}

// Database returns the database name queries run against.
func (n *Neo4jDriver) Database() string {
	return n.database
}

func (n *Neo4jDriver) session(ctx context.Context) neo4j.SessionWithContext {
	return n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
}

// MergeNode creates the node or sets its properties.
func (n *Neo4jDriver) MergeNode(ctx context.Context, node *types.Node) error {
	if err := validateNode(node); err != nil {
		return err
	}

	session := n.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, MergeNodeQuery(node.Kind.Label()), map[string]any{
			"unique_id":  node.UniqueID,
			"properties": node.Properties(),
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to merge node %s: %w", node.UniqueID, err)
	}
	n.logger.Debug("Merged node", "unique_id", node.UniqueID, "label", node.Kind)
	return nil
}

// MergeEdge creates the relationship unless it exists. Both endpoints must already exist.
func (n *Neo4jDriver) MergeEdge(ctx context.Context, edge *types.Edge) error {
	if err := validateEdge(edge); err != nil {
		return err
	}
	var sourceLabel, targetLabel string
	if edge.SourceKind.Valid() {
		sourceLabel = edge.SourceKind.Label()
	}
	if edge.TargetKind.Valid() {
		targetLabel = edge.TargetKind.Label()
	}

	session := n.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, MergeEdgeQuery(sourceLabel, string(edge.Type), targetLabel), map[string]any{
			"source_id": edge.SourceID,
			"target_id": edge.TargetID,
		})
		if err != nil {
			return nil, err
		}
		return res.Single(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to merge edge %s: %w", edge.Key(), err)
	}

	record, err := MustRecord(result, "merged")
	if err != nil {
		return err
	}
	merged, _ := record.Get("merged")
	if count, ok := AsInt64(merged); !ok || count == 0 {
		return fmt.Errorf("%w: edge %s endpoints", types.ErrNodeNotFound, edge.Key())
	}
	n.logger.Debug("Merged edge", "type", edge.Type, "source", edge.SourceID, "target", edge.TargetID)
	return nil
}

// GetNode retrieves a node by unique_id.
func (n *Neo4jDriver) GetNode(ctx context.Context, uniqueID string) (*types.Node, error) {
	session := n.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (n {unique_id: $unique_id}) RETURN n LIMIT 1", map[string]any{
			"unique_id": uniqueID,
		})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	records, err := MustRecordSlice(result, "n")
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrNodeNotFound, uniqueID)
	}
	value, _ := records[0].Get("n")
	dbNode, err := MustDBNode(value, "n")
	if err != nil {
		return nil, err
	}
	return nodeFromDBNode(dbNode)
}

// ListNodes returns up to limit nodes of kind ordered by unique_id.
func (n *Neo4jDriver) ListNodes(ctx context.Context, kind types.NodeKind, limit int) ([]*types.Node, error) {
	query := "MATCH (n) WHERE n.unique_id IS NOT NULL RETURN n ORDER BY n.unique_id LIMIT $limit"
	if kind != "" {
		if err := checkIdentifier(kind.Label()); err != nil {
			return nil, err
		}
		query = fmt.Sprintf("MATCH (n:`%s`) RETURN n ORDER BY n.unique_id LIMIT $limit", kind.Label())
	}
	if limit <= 0 {
		limit = 100
	}

	session := n.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"limit": int64(limit)})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	records, err := MustRecordSlice(result, "n")
	if err != nil {
		return nil, err
	}
	nodes := make([]*types.Node, 0, len(records))
	for _, record := range records {
		value, _ := record.Get("n")
		dbNode, err := MustDBNode(value, "n")
		if err != nil {
			return nil, err
		}
		node, err := nodeFromDBNode(dbNode)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// GetNeighbors returns the nodes directly connected to uniqueID in either direction.
func (n *Neo4jDriver) GetNeighbors(ctx context.Context, uniqueID string) ([]types.Neighbor, error) {
	session := n.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (n {unique_id: $unique_id})-[r]-(m)
			RETURN m, type(r) AS rel_type, startNode(r) = n AS outgoing
			ORDER BY m.unique_id
		`
		res, err := tx.Run(ctx, query, map[string]any{"unique_id": uniqueID})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	records, err := MustRecordSlice(result, "m")
	if err != nil {
		return nil, err
	}
	neighbors := make([]types.Neighbor, 0, len(records))
	for _, record := range records {
		value, _ := record.Get("m")
		dbNode, err := MustDBNode(value, "m")
		if err != nil {
			return nil, err
		}
		node, err := nodeFromDBNode(dbNode)
		if err != nil {
			return nil, err
		}
		relValue, _ := record.Get("rel_type")
		relType, err := MustString(relValue, "rel_type")
		if err != nil {
			return nil, err
		}
		outValue, _ := record.Get("outgoing")
		outgoing, _ := AsBool(outValue)
		neighbors = append(neighbors, types.Neighbor{Node: node, RelType: types.RelType(relType), Outgoing: outgoing})
	}
	return neighbors, nil
}

// CreateIndices creates a unique_id constraint for every node kind.
func (n *Neo4jDriver) CreateIndices(ctx context.Context) error {
	session := n.session(ctx)
	defer session.Close(ctx)

	for _, query := range GetUniqueConstraints(GraphProviderNeo4j, types.AllKinds) {
		_, err := session.Run(ctx, query, nil)
		if err != nil {
			if !strings.Contains(err.Error(), "already exists") && !strings.Contains(err.Error(), "An equivalent") {
				return err
			}
		}
	}
	return nil
}

// GetStats counts nodes per label and relationships per type.
func (n *Neo4jDriver) GetStats(ctx context.Context) (*GraphStats, error) {
	session := n.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		nodeRes, err := tx.Run(ctx, `
			MATCH (n) WHERE n.unique_id IS NOT NULL
			UNWIND labels(n) AS label
			RETURN label AS key, count(n) AS count
		`, nil)
		if err != nil {
			return nil, err
		}
		nodeRecords, err := nodeRes.Collect(ctx)
		if err != nil {
			return nil, err
		}

		edgeRes, err := tx.Run(ctx, `
			MATCH ()-[r]->()
			RETURN type(r) AS key, count(r) AS count
		`, nil)
		if err != nil {
			return nil, err
		}
		edgeRecords, err := edgeRes.Collect(ctx)
		if err != nil {
			return nil, err
		}
		return [2]any{nodeRecords, edgeRecords}, nil
	})
	if err != nil {
		return nil, err
	}

	pair := result.([2]any)
	stats := newGraphStats()
	for i, target := range []map[string]int64{stats.NodesByType, stats.EdgesByType} {
		records, err := MustRecordSlice(pair[i], "count")
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			keyValue, _ := record.Get("key")
			countValue, _ := record.Get("count")
			key, err := MustString(keyValue, "key")
			if err != nil {
				return nil, err
			}
			count, err := MustInt64(countValue, "count")
			if err != nil {
				return nil, err
			}
			target[key] = count
			if i == 0 {
				stats.NodeCount += count
			} else {
				stats.EdgeCount += count
			}
		}
	}
	return stats, nil
}

// Provider returns the provider type.
func (n *Neo4jDriver) Provider() GraphProvider {
	return GraphProviderNeo4j
}

// Close closes the Neo4j driver.
func (n *Neo4jDriver) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}

// VerifyConnectivity checks if the driver can connect to the database.
func (n *Neo4jDriver) VerifyConnectivity(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return n.client.VerifyConnectivity(ctx)
}

// nodeFromDBNode converts a Neo4j node into a types.Node using its first known label.
func nodeFromDBNode(node dbtype.Node) (*types.Node, error) {
	labels := append([]string(nil), node.Labels...)
	sort.Strings(labels)
	for _, label := range labels {
		kind := types.NodeKind(label)
		if kind.Valid() {
			return types.NodeFromProperties(kind, node.Props)
		}
	}
	return nil, NewTypeConversionError("known node label", strings.Join(node.Labels, ","), "labels")
}
