package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/soundprediction/scholia/pkg/alert"
	"github.com/soundprediction/scholia/pkg/config"
	"github.com/soundprediction/scholia/pkg/types"
)

// BreakerStore wraps a GraphStore with a circuit breaker so a failing database is not hammered
// by a long merge run. Failures are surfaced unchanged; nothing is retried.
type BreakerStore struct {
	store  GraphStore
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// NewBreakerStore wraps store. When cfg is disabled the store is returned unwrapped. alerter,
// which may be nil, is notified when the breaker opens.
func NewBreakerStore(store GraphStore, cfg config.CircuitBreakerConfig, alerter alert.Alerter, logger *slog.Logger) GraphStore {
	if !cfg.Enabled {
		return store
	}
	if logger == nil {
		logger = slog.Default()
	}

	st := gobreaker.Settings{
		Name:        "graph-" + string(store.Provider()),
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 3 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.ReadyToTripRatio
		},
		// Missing nodes and rejected input are caller errors, not database failures.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, types.ErrNodeNotFound) ||
				errors.Is(err, types.ErrInvalidValue)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker changed state",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
			if to == gobreaker.StateOpen && alerter != nil {
				msg := fmt.Sprintf("Circuit breaker %q changed from %s to %s. Builds fail fast until the store recovers.", name, from, to)
				if err := alerter.Alert("Graph store unavailable: "+name, msg); err != nil {
					logger.Warn("Failed to send alert", "breaker", name, "error", err)
				}
			}
		},
	}

	return &BreakerStore{
		store:  store,
		cb:     gobreaker.NewCircuitBreaker(st),
		logger: logger,
	}
}

// State reports the breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

// Unwrap returns the wrapped store.
func (b *BreakerStore) Unwrap() GraphStore {
	return b.store
}

// WithDatabase selects a database on the wrapped store, keeping the same breaker.
func (b *BreakerStore) WithDatabase(database string) GraphStore {
	sel, ok := b.store.(DatabaseSelector)
	if !ok {
		return b
	}
	return &BreakerStore{store: sel.WithDatabase(database), cb: b.cb, logger: b.logger}
}

func (b *BreakerStore) run(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

// MergeNode implements GraphStore
func (b *BreakerStore) MergeNode(ctx context.Context, node *types.Node) error {
	return b.run(func() error { return b.store.MergeNode(ctx, node) })
}

// MergeEdge implements GraphStore
func (b *BreakerStore) MergeEdge(ctx context.Context, edge *types.Edge) error {
	return b.run(func() error { return b.store.MergeEdge(ctx, edge) })
}

// GetNode implements GraphStore
func (b *BreakerStore) GetNode(ctx context.Context, uniqueID string) (*types.Node, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.store.GetNode(ctx, uniqueID)
	})
	if err != nil {
		return nil, err
	}
	return res.(*types.Node), nil
}

// ListNodes implements GraphStore
func (b *BreakerStore) ListNodes(ctx context.Context, kind types.NodeKind, limit int) ([]*types.Node, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.store.ListNodes(ctx, kind, limit)
	})
	if err != nil {
		return nil, err
	}
	return res.([]*types.Node), nil
}

// GetNeighbors implements GraphStore
func (b *BreakerStore) GetNeighbors(ctx context.Context, uniqueID string) ([]types.Neighbor, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.store.GetNeighbors(ctx, uniqueID)
	})
	if err != nil {
		return nil, err
	}
	return res.([]types.Neighbor), nil
}

// CreateIndices implements GraphStore
func (b *BreakerStore) CreateIndices(ctx context.Context) error {
	return b.run(func() error { return b.store.CreateIndices(ctx) })
}

// GetStats implements GraphStore
func (b *BreakerStore) GetStats(ctx context.Context) (*GraphStats, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.store.GetStats(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.(*GraphStats), nil
}

// Provider implements GraphStore
func (b *BreakerStore) Provider() GraphProvider {
	return b.store.Provider()
}

// Close implements GraphStore
func (b *BreakerStore) Close(ctx context.Context) error {
	return b.store.Close(ctx)
}
