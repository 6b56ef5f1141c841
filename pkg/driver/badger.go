package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/soundprediction/scholia/pkg/types"
)

// Badger key layout. sep cannot appear in unique ids or relationship types.
const (
	sep = "\x00"

	prefixNode     = "n" + sep // n|id -> badgerRecord
	prefixKind     = "k" + sep // k|label|id
	prefixOutgoing = "e" + sep // e|src|type|dst
	prefixIncoming = "i" + sep // i|dst|type|src
)

type badgerRecord struct {
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties"`
}

// BadgerDriver implements GraphStore on an embedded Badger key-value store. It backs dry runs,
// local inspection and tests.
type BadgerDriver struct {
	db     *badger.DB
	path   string
	logger *slog.Logger
}

// NewBadgerDriver opens a Badger store at path. An empty path keeps everything in memory.
func NewBadgerDriver(path string, logger *slog.Logger) (*BadgerDriver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &BadgerDriver{db: db, path: path, logger: logger}, nil
}

func nodeKey(id string) []byte { return []byte(prefixNode + id) }

func kindKey(label, id string) []byte { return []byte(prefixKind + label + sep + id) }

func checkKeyPart(s string) error {
	if strings.Contains(s, sep) {
		return fmt.Errorf("%w: key part %q", types.ErrInvalidValue, s)
	}
	return nil
}

func readRecord(txn *badger.Txn, id string) (*badgerRecord, error) {
	item, err := txn.Get(nodeKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", types.ErrNodeNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var rec badgerRecord
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode node %s: %w", id, err)
	}
	if rec.Properties == nil {
		rec.Properties = make(map[string]any)
	}
	return &rec, nil
}

func (r *badgerRecord) node() (*types.Node, error) {
	kind, err := types.ParseKind(r.Label)
	if err != nil {
		return nil, err
	}
	return types.NodeFromProperties(kind, r.Properties)
}

// MergeNode creates the node or merges its properties into the stored ones.
func (b *BadgerDriver) MergeNode(ctx context.Context, node *types.Node) error {
	if err := validateNode(node); err != nil {
		return err
	}
	if err := checkKeyPart(node.UniqueID); err != nil {
		return err
	}

	return b.db.Update(func(txn *badger.Txn) error {
		rec, err := readRecord(txn, node.UniqueID)
		switch {
		case errors.Is(err, types.ErrNodeNotFound):
			rec = &badgerRecord{Properties: make(map[string]any)}
		case err != nil:
			return err
		}
		if rec.Label != "" && rec.Label != node.Kind.Label() {
			if err := txn.Delete(kindKey(rec.Label, node.UniqueID)); err != nil {
				return err
			}
		}
		rec.Label = node.Kind.Label()
		for k, v := range node.Properties() {
			rec.Properties[k] = v
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode node %s: %w", node.UniqueID, err)
		}
		if err := txn.Set(nodeKey(node.UniqueID), data); err != nil {
			return err
		}
		return txn.Set(kindKey(rec.Label, node.UniqueID), nil)
	})
}

// MergeEdge stores the relationship unless it exists. Both endpoints must already exist.
func (b *BadgerDriver) MergeEdge(ctx context.Context, edge *types.Edge) error {
	if err := validateEdge(edge); err != nil {
		return err
	}
	for _, part := range []string{edge.SourceID, edge.TargetID} {
		if err := checkKeyPart(part); err != nil {
			return err
		}
	}

	return b.db.Update(func(txn *badger.Txn) error {
		for _, id := range []string{edge.SourceID, edge.TargetID} {
			if _, err := txn.Get(nodeKey(id)); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("%w: edge %s endpoint %s", types.ErrNodeNotFound, edge.Key(), id)
				}
				return err
			}
		}
		rel := string(edge.Type)
		if err := txn.Set([]byte(prefixOutgoing+edge.SourceID+sep+rel+sep+edge.TargetID), nil); err != nil {
			return err
		}
		return txn.Set([]byte(prefixIncoming+edge.TargetID+sep+rel+sep+edge.SourceID), nil)
	})
}

// GetNode retrieves a node by unique_id.
func (b *BadgerDriver) GetNode(ctx context.Context, uniqueID string) (*types.Node, error) {
	var node *types.Node
	err := b.db.View(func(txn *badger.Txn) error {
		rec, err := readRecord(txn, uniqueID)
		if err != nil {
			return err
		}
		node, err = rec.node()
		return err
	})
	return node, err
}

// ListNodes returns up to limit nodes of kind ordered by unique_id.
func (b *BadgerDriver) ListNodes(ctx context.Context, kind types.NodeKind, limit int) ([]*types.Node, error) {
	if limit <= 0 {
		limit = 100
	}
	prefix := []byte(prefixNode)
	if kind != "" {
		prefix = []byte(prefixKind + kind.Label() + sep)
	}

	var nodes []*types.Node
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix) && len(nodes) < limit; it.Next() {
			id := strings.TrimPrefix(string(it.Item().Key()), string(prefix))
			rec, err := readRecord(txn, id)
			if err != nil {
				return err
			}
			node, err := rec.node()
			if err != nil {
				return err
			}
			nodes = append(nodes, node)
		}
		return nil
	})
	return nodes, err
}

// GetNeighbors returns the nodes directly connected to uniqueID in either direction.
func (b *BadgerDriver) GetNeighbors(ctx context.Context, uniqueID string) ([]types.Neighbor, error) {
	var neighbors []types.Neighbor
	err := b.db.View(func(txn *badger.Txn) error {
		for _, dir := range []struct {
			prefix   string
			outgoing bool
		}{
			{prefixOutgoing, true},
			{prefixIncoming, false},
		} {
			prefix := []byte(dir.prefix + uniqueID + sep)
			it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				rest := strings.TrimPrefix(string(it.Item().Key()), string(prefix))
				relType, otherID, ok := strings.Cut(rest, sep)
				if !ok {
					continue
				}
				rec, err := readRecord(txn, otherID)
				if err != nil {
					it.Close()
					return err
				}
				node, err := rec.node()
				if err != nil {
					it.Close()
					return err
				}
				neighbors = append(neighbors, types.Neighbor{
					Node:     node,
					RelType:  types.RelType(relType),
					Outgoing: dir.outgoing,
				})
			}
			it.Close()
		}
		return nil
	})
	return neighbors, err
}

// CreateIndices is a no-op: the key layout already indexes unique_id and kind.
func (b *BadgerDriver) CreateIndices(ctx context.Context) error {
	return nil
}

// GetStats counts nodes per label and relationships per type.
func (b *BadgerDriver) GetStats(ctx context.Context) (*GraphStats, error) {
	stats := newGraphStats()
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		kindPrefix := []byte(prefixKind)
		opts.Prefix = kindPrefix
		it := txn.NewIterator(opts)
		for it.Seek(kindPrefix); it.ValidForPrefix(kindPrefix); it.Next() {
			label, _, _ := strings.Cut(strings.TrimPrefix(string(it.Item().Key()), prefixKind), sep)
			stats.NodesByType[label]++
			stats.NodeCount++
		}
		it.Close()

		edgePrefix := []byte(prefixOutgoing)
		opts.Prefix = edgePrefix
		it = txn.NewIterator(opts)
		for it.Seek(edgePrefix); it.ValidForPrefix(edgePrefix); it.Next() {
			parts := strings.SplitN(strings.TrimPrefix(string(it.Item().Key()), prefixOutgoing), sep, 3)
			if len(parts) == 3 {
				stats.EdgesByType[parts[1]]++
				stats.EdgeCount++
			}
		}
		it.Close()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Provider returns the provider type.
func (b *BadgerDriver) Provider() GraphProvider {
	return GraphProviderBadger
}

// Close flushes and closes the store.
func (b *BadgerDriver) Close(ctx context.Context) error {
	return b.db.Close()
}
