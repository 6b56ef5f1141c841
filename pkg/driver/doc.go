// Package driver provides the graph store implementations scholia persists timetables into.
//
// All stores implement GraphStore, whose writes are merges keyed on the unique_id property:
// writing the same node or edge twice leaves a single copy.
//
// # Supported Stores
//
//   - Neo4j: server database, one label per node kind and one relationship type per edge
//   - Ladybug: embedded graph database (requires CGO)
//   - Badger: embedded key-value store, on disk or in memory
//
// # Usage
//
//	store, err := driver.NewGraphStore(ctx, &driver.Config{
//		Driver:   "neo4j",
//		URI:      "bolt://localhost:7687",
//		Username: "neo4j",
//		Password: "password",
//	}, logger)
//
// Wrap a store with NewBreakerStore to fail fast while the backend is unavailable; the optional
// alert.Alerter is notified when the breaker opens.
//
// # Type Helpers
//
// type_helpers.go holds checked conversions for Neo4j record values.
package driver
