package driver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/scholia/pkg/config"
	"github.com/soundprediction/scholia/pkg/driver"
	"github.com/soundprediction/scholia/pkg/types"
)

var errUnavailable = errors.New("database unavailable")

// flakyStore fails every write while down is set.
type flakyStore struct {
	*driver.BadgerDriver
	down  bool
	calls int
}

func (f *flakyStore) MergeNode(ctx context.Context, node *types.Node) error {
	f.calls++
	if f.down {
		return errUnavailable
	}
	return f.BadgerDriver.MergeNode(ctx, node)
}

type recordingAlerter struct {
	subjects []string
}

func (r *recordingAlerter) Alert(subject, message string) error {
	r.subjects = append(r.subjects, subject)
	return nil
}

func breakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         60,
		Timeout:          60,
		ReadyToTripRatio: 0.5,
	}
}

func TestBreakerStoreDisabledReturnsStore(t *testing.T) {
	store := newTestBadger(t)
	wrapped := driver.NewBreakerStore(store, config.CircuitBreakerConfig{}, nil, nil)
	assert.Same(t, store, wrapped)
}

func TestBreakerStoreTripsAndFailsFast(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{BadgerDriver: newTestBadger(t), down: true}
	alerts := &recordingAlerter{}
	wrapped := driver.NewBreakerStore(store, breakerConfig(), alerts, nil)
	bs, ok := wrapped.(*driver.BreakerStore)
	require.True(t, ok)

	node := &types.Node{UniqueID: "CalendarYear_2024", Kind: types.KindCalendarYear, Year: 2024}
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, bs.MergeNode(ctx, node), errUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, bs.State())

	store.down = false
	err := bs.MergeNode(ctx, node)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, store.calls, "open breaker must not reach the store")
	require.Len(t, alerts.subjects, 1)
	assert.Contains(t, alerts.subjects[0], "graph-badger")
}

func TestBreakerStoreIgnoresCallerErrors(t *testing.T) {
	ctx := context.Background()
	wrapped := driver.NewBreakerStore(newTestBadger(t), breakerConfig(), nil, nil)
	bs := wrapped.(*driver.BreakerStore)

	for i := 0; i < 5; i++ {
		_, err := bs.GetNode(ctx, "missing")
		assert.ErrorIs(t, err, types.ErrNodeNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, bs.State())

	node := &types.Node{UniqueID: "CalendarYear_2024", Kind: types.KindCalendarYear, Year: 2024}
	require.NoError(t, bs.MergeNode(ctx, node))
	got, err := bs.GetNode(ctx, node.UniqueID)
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year)
	assert.Equal(t, driver.GraphProviderBadger, bs.Provider())
}
