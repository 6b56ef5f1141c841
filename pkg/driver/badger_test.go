package driver_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/scholia/pkg/driver"
	"github.com/soundprediction/scholia/pkg/types"
)

func newTestBadger(t *testing.T) *driver.BadgerDriver {
	t.Helper()
	d, err := driver.NewBadgerDriver("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close(context.Background()) })
	return d
}

func sampleNodes() (*types.Node, *types.Node) {
	term := &types.Node{
		UniqueID:   "AcademicTerm_S1_2024_2024_1",
		Kind:       types.KindAcademicTerm,
		Name:       "Spring",
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC),
		TermNumber: 1,
	}
	week := &types.Node{
		UniqueID:   "AcademicWeek_S1_2024-01-01",
		Kind:       types.KindAcademicWeek,
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		WeekNumber: 1,
		WeekType:   "A",
	}
	return term, week
}

func TestBadgerMergeNode(t *testing.T) {
	ctx := context.Background()
	d := newTestBadger(t)
	term, _ := sampleNodes()

	require.NoError(t, d.MergeNode(ctx, term))
	got, err := d.GetNode(ctx, term.UniqueID)
	require.NoError(t, err)
	assert.Equal(t, types.KindAcademicTerm, got.Kind)
	assert.Equal(t, "Spring", got.Name)
	assert.Equal(t, 1, got.TermNumber)
	assert.True(t, term.StartDate.Equal(got.StartDate))

	t.Run("sparse merge keeps existing properties", func(t *testing.T) {
		require.NoError(t, d.MergeNode(ctx, &types.Node{
			UniqueID: term.UniqueID,
			Kind:     types.KindAcademicTerm,
			Path:     "/tmp/terms/term_1",
		}))
		got, err := d.GetNode(ctx, term.UniqueID)
		require.NoError(t, err)
		assert.Equal(t, "Spring", got.Name)
		assert.Equal(t, "/tmp/terms/term_1", got.Path)
	})

	t.Run("rejects invalid nodes", func(t *testing.T) {
		assert.ErrorIs(t, d.MergeNode(ctx, nil), types.ErrNilNode)
		assert.ErrorIs(t, d.MergeNode(ctx, &types.Node{Kind: types.KindAcademicTerm}), types.ErrEmptyUniqueID)
		assert.ErrorIs(t, d.MergeNode(ctx, &types.Node{UniqueID: "x", Kind: "Bogus"}), types.ErrUnknownVariant)
	})

	t.Run("missing node", func(t *testing.T) {
		_, err := d.GetNode(ctx, "nope")
		assert.ErrorIs(t, err, types.ErrNodeNotFound)
	})
}

func TestBadgerMergeEdgeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	d := newTestBadger(t)
	term, week := sampleNodes()
	require.NoError(t, d.MergeNode(ctx, term))
	require.NoError(t, d.MergeNode(ctx, week))

	edge := types.NewEdge(types.HasRelation(term.Kind, week.Kind), types.CategoryHas, term, week)
	require.NoError(t, d.MergeEdge(ctx, edge))
	require.NoError(t, d.MergeEdge(ctx, edge))

	stats, err := d.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.NodeCount)
	assert.Equal(t, int64(1), stats.EdgeCount)
	assert.Equal(t, int64(1), stats.EdgesByType["ACADEMIC_TERM_HAS_ACADEMIC_WEEK"])
	assert.Equal(t, int64(1), stats.NodesByType["AcademicWeek"])

	neighbors, err := d.GetNeighbors(ctx, term.UniqueID)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, week.UniqueID, neighbors[0].Node.UniqueID)
	assert.True(t, neighbors[0].Outgoing)

	neighbors, err = d.GetNeighbors(ctx, week.UniqueID)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.False(t, neighbors[0].Outgoing)
	assert.Equal(t, types.RelType("ACADEMIC_TERM_HAS_ACADEMIC_WEEK"), neighbors[0].RelType)
}

func TestBadgerMergeEdgeRequiresEndpoints(t *testing.T) {
	ctx := context.Background()
	d := newTestBadger(t)
	term, week := sampleNodes()
	require.NoError(t, d.MergeNode(ctx, term))

	edge := types.NewEdge(types.HasRelation(term.Kind, week.Kind), types.CategoryHas, term, week)
	err := d.MergeEdge(ctx, edge)
	assert.ErrorIs(t, err, types.ErrNodeNotFound)

	stats, err := d.GetStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.EdgeCount)
}

func TestBadgerListNodes(t *testing.T) {
	ctx := context.Background()
	d := newTestBadger(t)
	for _, id := range []string{"CalendarDay_2024-01-03", "CalendarDay_2024-01-01", "CalendarDay_2024-01-02"} {
		require.NoError(t, d.MergeNode(ctx, &types.Node{UniqueID: id, Kind: types.KindCalendarDay}))
	}
	require.NoError(t, d.MergeNode(ctx, &types.Node{UniqueID: "CalendarYear_2024", Kind: types.KindCalendarYear, Year: 2024}))

	days, err := d.ListNodes(ctx, types.KindCalendarDay, 0)
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, "CalendarDay_2024-01-01", days[0].UniqueID)
	assert.Equal(t, "CalendarDay_2024-01-03", days[2].UniqueID)

	limited, err := d.ListNodes(ctx, types.KindCalendarDay, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	all, err := d.ListNodes(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestBadgerPersistsOnDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	term, _ := sampleNodes()

	d, err := driver.NewBadgerDriver(dir, nil)
	require.NoError(t, err)
	require.NoError(t, d.MergeNode(ctx, term))
	require.NoError(t, d.Close(ctx))

	d, err = driver.NewBadgerDriver(dir, nil)
	require.NoError(t, err)
	defer d.Close(ctx)

	got, err := d.GetNode(ctx, term.UniqueID)
	require.NoError(t, err)
	assert.Equal(t, term.Name, got.Name)
	assert.Equal(t, driver.GraphProviderBadger, d.Provider())
}
