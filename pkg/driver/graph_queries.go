package driver

import (
	"fmt"
	"strings"

	"github.com/soundprediction/scholia/pkg/types"
)

// Labels and relationship types are interpolated, never parameterized; callers validate them
// with checkIdentifier first.

// MergeNodeQuery returns the Cypher upsert for a node with label.
func MergeNodeQuery(label string) string {
	return fmt.Sprintf("MERGE (n:`%s` {unique_id: $unique_id}) SET n += $properties", label)
}

// MergeEdgeQuery returns the Cypher upsert for a relationship between two nodes matched by
// unique_id. Empty labels match any node. The query returns the number of matched pairs.
func MergeEdgeQuery(sourceLabel, relType, targetLabel string) string {
	return fmt.Sprintf(`MATCH (a%s {unique_id: $source_id}), (b%s {unique_id: $target_id})
MERGE (a)-[r:`+"`%s`"+`]->(b)
RETURN count(r) AS merged`, labelPattern(sourceLabel), labelPattern(targetLabel), relType)
}

func labelPattern(label string) string {
	if label == "" {
		return ""
	}
	return ":`" + label + "`"
}

// GetUniqueConstraints returns provider-specific unique_id constraint statements for kinds.
func GetUniqueConstraints(provider GraphProvider, kinds []types.NodeKind) []string {
	switch provider {
	case GraphProviderNeo4j:
		queries := make([]string, 0, len(kinds))
		for _, k := range kinds {
			queries = append(queries, fmt.Sprintf(
				"CREATE CONSTRAINT %s_unique_id IF NOT EXISTS FOR (n:`%s`) REQUIRE n.unique_id IS UNIQUE",
				strings.ToLower(k.RelPrefix()), k.Label()))
		}
		return queries
	default:
		// Ladybug enforces uniqueness through its primary key; Badger through its key layout.
		return []string{}
	}
}

// LadybugSchemaQueries defines the Ladybug schema. Ladybug requires explicit tables, so every
// node kind shares one node table and every relationship type one relationship table, with the
// kind and type stored as columns.
var LadybugSchemaQueries = []string{
	`CREATE NODE TABLE IF NOT EXISTS TimetableNode (
        unique_id STRING PRIMARY KEY,
        label STRING,
        properties STRING
    );`,
	`CREATE REL TABLE IF NOT EXISTS LINKS(
        FROM TimetableNode TO TimetableNode,
        rel_type STRING
    );`,
}

const (
	ladybugMergeNode = `MERGE (n:TimetableNode {unique_id: $unique_id})
SET n.label = $label, n.properties = $properties`

	ladybugGetNode = `MATCH (n:TimetableNode {unique_id: $unique_id})
RETURN n.unique_id AS unique_id, n.label AS label, n.properties AS properties`

	ladybugEdgeExists = `MATCH (a:TimetableNode {unique_id: $source_id})-[r:LINKS]->(b:TimetableNode {unique_id: $target_id})
WHERE r.rel_type = $rel_type
RETURN count(r) AS existing`

	ladybugCreateEdge = `MATCH (a:TimetableNode {unique_id: $source_id}), (b:TimetableNode {unique_id: $target_id})
CREATE (a)-[:LINKS {rel_type: $rel_type}]->(b)`

	ladybugListNodes = `MATCH (n:TimetableNode)
WHERE $label = '' OR n.label = $label
RETURN n.unique_id AS unique_id, n.label AS label, n.properties AS properties
ORDER BY n.unique_id
LIMIT %d`

	ladybugNeighbors = `MATCH (n:TimetableNode {unique_id: $unique_id})-[r:LINKS]->(m:TimetableNode)
RETURN m.unique_id AS unique_id, m.label AS label, m.properties AS properties, r.rel_type AS rel_type, true AS outgoing
UNION ALL
MATCH (n:TimetableNode {unique_id: $unique_id})<-[r:LINKS]-(m:TimetableNode)
RETURN m.unique_id AS unique_id, m.label AS label, m.properties AS properties, r.rel_type AS rel_type, false AS outgoing`

	ladybugNodeStats = `MATCH (n:TimetableNode) RETURN n.label AS label, count(n) AS node_count`
	ladybugEdgeStats = `MATCH ()-[r:LINKS]->() RETURN r.rel_type AS rel_type, count(r) AS edge_count`
)
